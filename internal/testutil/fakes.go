package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"anoa.com/skillswap/internal/entity"
	search "anoa.com/skillswap/internal/modules/search/service"
	"anoa.com/skillswap/pkg/mailer"
	"anoa.com/skillswap/pkg/storage"
	"github.com/google/uuid"
)

// Index records what would be pushed to the search engine.
type Index struct {
	mu      sync.Mutex
	Docs    map[uuid.UUID]entity.Proposal
	Deleted []uuid.UUID
	Hits    []uuid.UUID
	Err     error
}

func NewIndex() *Index {
	return &Index{Docs: map[uuid.UUID]entity.Proposal{}}
}

var _ search.ProposalIndex = (*Index)(nil)

func (i *Index) IndexProposal(p *entity.Proposal) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.Err != nil {
		return i.Err
	}
	i.Docs[p.ID] = *p
	return nil
}

func (i *Index) DeleteProposal(id uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.Docs, id)
	i.Deleted = append(i.Deleted, id)
	return i.Err
}

// SearchProposals returns Hits verbatim, paged by offset and limit.
func (i *Index) SearchProposals(_ string, _ search.SearchFilter, offset, limit int) ([]uuid.UUID, int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.Err != nil {
		return nil, 0, i.Err
	}
	start := min(offset, len(i.Hits))
	end := min(start+limit, len(i.Hits))
	return i.Hits[start:end], int64(len(i.Hits)), nil
}

func (i *Index) Has(id uuid.UUID) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	_, ok := i.Docs[id]
	return ok
}

// Mailer captures outgoing messages. Recipients listed in FailFor are rejected.
type Mailer struct {
	mu      sync.Mutex
	Sent    []mailer.Message
	FailFor map[string]error
}

func NewMailer() *Mailer {
	return &Mailer{FailFor: map[string]error{}}
}

func (m *Mailer) Send(_ context.Context, msg mailer.Message) mailer.Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.FailFor[msg.To]; ok {
		return mailer.Result{Success: false, Error: err}
	}
	m.Sent = append(m.Sent, msg)
	return mailer.Result{Success: true}
}

var _ storage.ImageStorage = (*Images)(nil)

// Images is an ImageStorage that hands out predictable URLs.
type Images struct {
	mu       sync.Mutex
	Uploaded []string
	Deleted  []string
}

func (i *Images) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://images.test/%s/%d-%s", folder, len(i.Uploaded)+1, fileName)
	i.Uploaded = append(i.Uploaded, url)
	return url, nil
}

func (i *Images) DeleteImage(_ context.Context, fileURL string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.Deleted = append(i.Deleted, fileURL)
	return nil
}
