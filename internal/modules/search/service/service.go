package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"anoa.com/skillswap/internal/entity"
	"anoa.com/skillswap/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const proposalsIndex = "proposals"

type SearchFilter struct {
	Modality     entity.Modality
	WantSkillIDs []uuid.UUID
	HaveSkillIDs []uuid.UUID
}

// ProposalIndex keeps OPEN proposals searchable. Only OPEN proposals are matched.
type ProposalIndex interface {
	IndexProposal(proposal *entity.Proposal) error
	DeleteProposal(id uuid.UUID) error
	SearchProposals(query string, filter SearchFilter, offset, limit int) ([]uuid.UUID, int64, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

func NewMeiliSearchService(client meilisearch.ServiceManager) ProposalIndex {
	s := &meiliSearchService{client: client}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	index := s.client.Index(proposalsIndex)

	filterableAttrs := []string{"status", "modality", "offered_skill_ids", "needed_skill_ids"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := index.UpdateFilterableAttributes(&filterableInterface); err != nil {
		zap.L().Warn("failed to update proposals filterable attributes", zap.Error(err))
	}

	sortableAttrs := []string{"created_at"}
	if _, err := index.UpdateSortableAttributes(&sortableAttrs); err != nil {
		zap.L().Warn("failed to update proposals sortable attributes", zap.Error(err))
	}

	searchableAttrs := []string{"title", "offered_skills", "needed_skills", "description", "owner_name"}
	if _, err := index.UpdateSearchableAttributes(&searchableAttrs); err != nil {
		zap.L().Warn("failed to update proposals searchable attributes", zap.Error(err))
	}

	zap.L().Info("meilisearch indexes initialized")
}

type proposalDoc struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Modality        string   `json:"modality"`
	Status          string   `json:"status"`
	OwnerName       string   `json:"owner_name"`
	OfferedSkills   []string `json:"offered_skills"`
	NeededSkills    []string `json:"needed_skills"`
	OfferedSkillIDs []string `json:"offered_skill_ids"`
	NeededSkillIDs  []string `json:"needed_skill_ids"`
	CreatedAt       int64    `json:"created_at"`
}

func toDocument(p *entity.Proposal) proposalDoc {
	doc := proposalDoc{
		ID:          p.ID.String(),
		Title:       sanitize.Inline(p.Title),
		Description: sanitize.Inline(p.Description),
		Modality:    string(p.Modality),
		Status:      string(p.Status),
		OwnerName:   p.Owner.Name,
		CreatedAt:   p.CreatedAt.Unix(),
	}
	for _, sk := range p.OfferedSkills {
		doc.OfferedSkills = append(doc.OfferedSkills, sk.Name)
		doc.OfferedSkillIDs = append(doc.OfferedSkillIDs, sk.ID.String())
	}
	for _, sk := range p.NeededSkills {
		doc.NeededSkills = append(doc.NeededSkills, sk.Name)
		doc.NeededSkillIDs = append(doc.NeededSkillIDs, sk.ID.String())
	}
	return doc
}

func (s *meiliSearchService) IndexProposal(p *entity.Proposal) error {
	task, err := s.client.Index(proposalsIndex).AddDocuments([]proposalDoc{toDocument(p)}, strPtr("id"))
	if err != nil {
		return err
	}
	zap.L().Debug("indexed proposal", zap.String("proposal_id", p.ID.String()), zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (s *meiliSearchService) DeleteProposal(id uuid.UUID) error {
	_, err := s.client.Index(proposalsIndex).DeleteDocument(id.String())
	return err
}

func (s *meiliSearchService) SearchProposals(query string, filter SearchFilter, offset, limit int) ([]uuid.UUID, int64, error) {
	resp, err := s.client.Index(proposalsIndex).Search(query, &meilisearch.SearchRequest{
		Filter:               buildFilter(filter),
		AttributesToRetrieve: []string{"id"},
		Offset:               int64(offset),
		Limit:                int64(limit),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("meilisearch query failed: %w", err)
	}

	ids, err := decodeIDs(resp.Hits)
	if err != nil {
		return nil, 0, err
	}
	return ids, resp.EstimatedTotalHits, nil
}

func buildFilter(f SearchFilter) string {
	clauses := []string{fmt.Sprintf("status = %q", entity.ProposalStatusOpen)}
	if f.Modality != "" {
		clauses = append(clauses, fmt.Sprintf("modality = %q", f.Modality))
	}
	if len(f.WantSkillIDs) > 0 {
		clauses = append(clauses, "needed_skill_ids IN "+quoteList(f.WantSkillIDs))
	}
	if len(f.HaveSkillIDs) > 0 {
		clauses = append(clauses, "offered_skill_ids IN "+quoteList(f.HaveSkillIDs))
	}
	return strings.Join(clauses, " AND ")
}

func quoteList(ids []uuid.UUID) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id.String())
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// decodeIDs reads the id attribute from raw hits.
func decodeIDs(hits any) ([]uuid.UUID, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, fmt.Errorf("failed to read search hits: %w", err)
	}

	var docs []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to read search hits: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(docs))
	for _, d := range docs {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
