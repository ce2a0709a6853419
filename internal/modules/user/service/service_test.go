package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/internal/modules/user/dto"
	"anoa.com/skillswap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWithoutSession(t *testing.T) {
	store := testutil.NewStore()
	svc := NewIdentityService(store.Users())

	for _, session := range []*dto.Session{nil, {}, {Email: "   "}} {
		id, err := svc.Resolve(context.Background(), session)
		require.NoError(t, err)
		assert.Nil(t, id)
	}
	assert.Equal(t, 0, store.Count("users"))
}

func TestResolveCreatesUser(t *testing.T) {
	store := testutil.NewStore()
	svc := NewIdentityService(store.Users())
	ctx := context.Background()

	id, err := svc.Resolve(ctx, &dto.Session{
		Subject:   "google|42",
		Email:     " Ana@Example.COM ",
		FullName:  "Ana Lima",
		AvatarURL: "https://cdn.example.com/ana.png",
	})
	require.NoError(t, err)
	require.NotNil(t, id)

	user, err := store.Users().FindByID(ctx, *id)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Ana Lima", user.Name)
	require.NotNil(t, user.AvatarURL)
	require.NotNil(t, user.ExternalID)
	assert.Equal(t, "google|42", *user.ExternalID)

	again, err := svc.Resolve(ctx, &dto.Session{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, *id, *again)
	assert.Equal(t, 1, store.Count("users"))
}

func TestResolveDefaultsName(t *testing.T) {
	store := testutil.NewStore()
	svc := NewIdentityService(store.Users())

	id, err := svc.Resolve(context.Background(), &dto.Session{Email: "ben@example.com"})
	require.NoError(t, err)

	user, err := store.Users().FindByID(context.Background(), *id)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultUserName, user.Name)
	assert.Nil(t, user.ExternalID)
}

func TestResolveLinksExternalID(t *testing.T) {
	store := testutil.NewStore()
	svc := NewIdentityService(store.Users())
	ctx := context.Background()
	existing := store.AddUser("Cara", "cara@example.com")

	id, err := svc.Resolve(ctx, &dto.Session{Subject: "github|7", Email: "cara@example.com"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, *id)

	user, err := store.Users().FindByID(ctx, existing.ID)
	require.NoError(t, err)
	require.NotNil(t, user.ExternalID)
	assert.Equal(t, "github|7", *user.ExternalID)
}

func TestResolveIgnoresLinkFailure(t *testing.T) {
	store := testutil.NewStore()
	svc := NewIdentityService(store.Users())
	existing := store.AddUser("Cara", "cara@example.com")
	store.Fail["users.Update"] = errors.New("db down")

	id, err := svc.Resolve(context.Background(), &dto.Session{Subject: "github|7", Email: "cara@example.com"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, *id)
}
