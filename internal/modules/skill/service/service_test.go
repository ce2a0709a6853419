package service

import (
	"context"
	"testing"

	"anoa.com/skillswap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanNames(t *testing.T) {
	got := CleanNames([]string{" Guitar ", "React, react ,", "", "  "})
	assert.Equal(t, []string{"Guitar", "React", "react"}, got)
	assert.Nil(t, CleanNames(nil))
}

func TestResolve(t *testing.T) {
	store := testutil.NewStore()
	svc := NewSkillService(store.Skills())
	ctx := context.Background()

	first, err := svc.Resolve(ctx, []string{"Guitar", "Spanish"})
	require.NoError(t, err)
	require.Len(t, first, 2)

	again, err := svc.Resolve(ctx, []string{" Guitar", "guitar"})
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, first[0].ID, again[0].ID)
	assert.NotEqual(t, first[0].ID, again[1].ID, "names are case sensitive")
	assert.Equal(t, 3, store.Count("skills"))
}

func TestList(t *testing.T) {
	store := testutil.NewStore()
	svc := NewSkillService(store.Skills())
	ctx := context.Background()

	_, err := svc.Resolve(ctx, []string{"Spanish", "Guitar", "Bass Guitar"})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Bass Guitar", all[0].Name)

	guitars, err := svc.List(ctx, "  guitar ")
	require.NoError(t, err)
	assert.Len(t, guitars, 2)
}
