package service

import (
	"testing"
	"time"

	"anoa.com/skillswap/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilter(t *testing.T) {
	assert.Equal(t, `status = "OPEN"`, buildFilter(SearchFilter{}))

	want := uuid.MustParse("0190c6a4-0000-7000-8000-000000000001")
	have := uuid.MustParse("0190c6a4-0000-7000-8000-000000000002")
	got := buildFilter(SearchFilter{
		Modality:     entity.ModalityRemote,
		WantSkillIDs: []uuid.UUID{want},
		HaveSkillIDs: []uuid.UUID{have},
	})
	assert.Equal(t, `status = "OPEN" AND modality = "REMOTE" AND needed_skill_ids IN ["`+want.String()+`"] AND offered_skill_ids IN ["`+have.String()+`"]`, got)
}

func TestToDocument(t *testing.T) {
	guitar := entity.Skill{ID: uuid.New(), Name: "Guitar"}
	spanish := entity.Skill{ID: uuid.New(), Name: "Spanish"}
	p := &entity.Proposal{
		ID:            uuid.New(),
		Title:         "Guitar for <b>Spanish</b>",
		Description:   "I teach   guitar\nand want Spanish",
		Modality:      entity.ModalityInPerson,
		Status:        entity.ProposalStatusOpen,
		Owner:         entity.User{Name: "Ana"},
		OfferedSkills: []entity.Skill{guitar},
		NeededSkills:  []entity.Skill{spanish},
		CreatedAt:     time.Unix(1700000000, 0),
	}

	doc := toDocument(p)
	assert.Equal(t, "Guitar for Spanish", doc.Title)
	assert.Equal(t, "I teach guitar and want Spanish", doc.Description)
	assert.Equal(t, []string{"Guitar"}, doc.OfferedSkills)
	assert.Equal(t, []string{spanish.ID.String()}, doc.NeededSkillIDs)
	assert.Equal(t, "Ana", doc.OwnerName)
	assert.Equal(t, int64(1700000000), doc.CreatedAt)
}

func TestDecodeIDs(t *testing.T) {
	id := uuid.New()
	hits := []map[string]any{{"id": id.String()}, {"id": "not-a-uuid"}}

	ids, err := decodeIDs(hits)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, ids)
}
