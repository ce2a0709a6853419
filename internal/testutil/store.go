// Package testutil provides in-memory repositories for service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"anoa.com/skillswap/internal/entity"
	appRepo "anoa.com/skillswap/internal/modules/application/repository"
	messageRepo "anoa.com/skillswap/internal/modules/message/repository"
	notifRepo "anoa.com/skillswap/internal/modules/notification/repository"
	proposalRepo "anoa.com/skillswap/internal/modules/proposal/repository"
	reviewRepo "anoa.com/skillswap/internal/modules/review/repository"
	skillRepo "anoa.com/skillswap/internal/modules/skill/repository"
	swapRepo "anoa.com/skillswap/internal/modules/swap/repository"
	userRepo "anoa.com/skillswap/internal/modules/user/repository"
	"anoa.com/skillswap/pkg/apperror"
	"github.com/google/uuid"
)

type storedProposal struct {
	entity.Proposal
	offered []uuid.UUID
	needed  []uuid.UUID
}

type tables struct {
	users         map[uuid.UUID]entity.User
	skills        map[uuid.UUID]entity.Skill
	userSkills    map[uuid.UUID]entity.UserSkill
	proposals     map[uuid.UUID]storedProposal
	applications  map[uuid.UUID]entity.Application
	swaps         map[uuid.UUID]entity.Swap
	messages      map[uuid.UUID]entity.Message
	reviews       map[uuid.UUID]entity.Review
	notifications map[uuid.UUID]entity.Notification
	seq           map[uuid.UUID]int64
	next          int64
}

func newTables() tables {
	return tables{
		users:         map[uuid.UUID]entity.User{},
		skills:        map[uuid.UUID]entity.Skill{},
		userSkills:    map[uuid.UUID]entity.UserSkill{},
		proposals:     map[uuid.UUID]storedProposal{},
		applications:  map[uuid.UUID]entity.Application{},
		swaps:         map[uuid.UUID]entity.Swap{},
		messages:      map[uuid.UUID]entity.Message{},
		reviews:       map[uuid.UUID]entity.Review{},
		notifications: map[uuid.UUID]entity.Notification{},
		seq:           map[uuid.UUID]int64{},
	}
}

func (t tables) clone() tables {
	return tables{
		users:         maps.Clone(t.users),
		skills:        maps.Clone(t.skills),
		userSkills:    maps.Clone(t.userSkills),
		proposals:     maps.Clone(t.proposals),
		applications:  maps.Clone(t.applications),
		swaps:         maps.Clone(t.swaps),
		messages:      maps.Clone(t.messages),
		reviews:       maps.Clone(t.reviews),
		notifications: maps.Clone(t.notifications),
		seq:           maps.Clone(t.seq),
		next:          t.next,
	}
}

// Store keeps every table in memory and enforces the same unique keys as the
// schema. Each creation advances Now by one second so orderings are stable.
type Store struct {
	mu   sync.Mutex
	t    tables
	Now  time.Time
	Fail map[string]error
}

func NewStore() *Store {
	return &Store{
		t:    newTables(),
		Now:  time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		Fail: map[string]error{},
	}
}

func (s *Store) tick(id uuid.UUID) time.Time {
	s.Now = s.Now.Add(time.Second)
	s.t.next++
	s.t.seq[id] = s.t.next
	return s.Now
}

func (s *Store) fail(op string) error {
	return s.Fail[op]
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

func notFound(name string) error {
	return fmt.Errorf("%s not found: %w", name, apperror.ErrNotFound)
}

func duplicate(name string) error {
	return fmt.Errorf("%s already exists: %w", name, apperror.ErrConflict)
}

// Tx returns a Transactor that rolls the store back when fn fails.
func (s *Store) Tx() *Transactor {
	return &Transactor{store: s}
}

type Transactor struct {
	store *Store
	Calls int
}

func (tx *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.Calls++
	tx.store.mu.Lock()
	snapshot := tx.store.t.clone()
	tx.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		tx.store.mu.Lock()
		tx.store.t = snapshot
		tx.store.mu.Unlock()
		return err
	}
	return nil
}

// AddUser inserts a user directly and returns it.
func (s *Store) AddUser(name, email string) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := entity.User{ID: newID(), Name: name, Email: email}
	u.CreatedAt = s.tick(u.ID)
	s.t.users[u.ID] = u
	return u
}

// AddProposal inserts an OPEN remote proposal with the named skills.
func (s *Store) AddProposal(ownerID uuid.UUID, title string, offered, needed []string) entity.Proposal {
	ctx := context.Background()
	offeredSkills, _ := s.Skills().FindOrCreateByNames(ctx, offered)
	neededSkills, _ := s.Skills().FindOrCreateByNames(ctx, needed)

	p := &entity.Proposal{
		OwnerID:       ownerID,
		Title:         title,
		Description:   "A proposal description long enough to pass validation.",
		Modality:      entity.ModalityRemote,
		Status:        entity.ProposalStatusOpen,
		OfferedSkills: offeredSkills,
		NeededSkills:  neededSkills,
	}
	_ = s.Proposals().Create(ctx, p)

	out, _ := s.Proposal(p.ID)
	return out
}

// AddUserSkill gives userID a visible MANUAL skill.
func (s *Store) AddUserSkill(userID uuid.UUID, name string) entity.UserSkill {
	ctx := context.Background()
	skills, _ := s.Skills().FindOrCreateByNames(ctx, []string{name})

	us := &entity.UserSkill{UserID: userID, SkillID: skills[0].ID, Source: entity.SkillSourceManual, IsVisible: true}
	_ = s.Skills().CreateUserSkill(ctx, us)
	us.Skill = skills[0]
	return *us
}

// UserSkill returns the (user, skill name) row if present.
func (s *Store) UserSkill(userID uuid.UUID, skillName string) (entity.UserSkill, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, us := range s.t.userSkills {
		if us.UserID == userID && s.t.skills[us.SkillID].Name == skillName {
			us.Skill = s.t.skills[us.SkillID]
			return us, true
		}
	}
	return entity.UserSkill{}, false
}

// Notifications returns every notification addressed to userID, oldest first.
func (s *Store) Notifications(userID uuid.UUID) []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.Notification
	for _, n := range s.t.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	s.sortAsc(out, func(n entity.Notification) uuid.UUID { return n.ID })
	return out
}

// SetNotificationCreatedAt rewrites a timestamp for digest cutoff tests.
func (s *Store) SetNotificationCreatedAt(id uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.t.notifications[id]
	n.CreatedAt = at
	s.t.notifications[id] = n
}

// Proposal returns the stored proposal with its relations.
func (s *Store) Proposal(id uuid.UUID) (entity.Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.t.proposals[id]
	if !ok {
		return entity.Proposal{}, false
	}
	return s.hydrateProposal(p), true
}

func (s *Store) Count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch table {
	case "users":
		return len(s.t.users)
	case "skills":
		return len(s.t.skills)
	case "proposals":
		return len(s.t.proposals)
	case "applications":
		return len(s.t.applications)
	case "swaps":
		return len(s.t.swaps)
	case "messages":
		return len(s.t.messages)
	case "reviews":
		return len(s.t.reviews)
	case "notifications":
		return len(s.t.notifications)
	}
	panic("unknown table " + table)
}

func sortBy[T any](s *Store, items []T, id func(T) uuid.UUID, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := s.t.seq[id(items[i])], s.t.seq[id(items[j])]
		if desc {
			return a > b
		}
		return a < b
	})
}

func (s *Store) sortAsc(items []entity.Notification, id func(entity.Notification) uuid.UUID) {
	sortBy(s, items, id, false)
}

func (s *Store) skillsByID(ids []uuid.UUID) []entity.Skill {
	out := make([]entity.Skill, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.t.skills[id])
	}
	return out
}

func (s *Store) hydrateProposal(p storedProposal) entity.Proposal {
	out := p.Proposal
	out.Owner = s.t.users[p.OwnerID]
	out.OfferedSkills = s.skillsByID(p.offered)
	out.NeededSkills = s.skillsByID(p.needed)
	return out
}

func (s *Store) userWithVisibleSkills(id uuid.UUID) entity.User {
	u := s.t.users[id]
	var skills []entity.UserSkill
	for _, us := range s.t.userSkills {
		if us.UserID == id && us.IsVisible {
			us.Skill = s.t.skills[us.SkillID]
			skills = append(skills, us)
		}
	}
	sortBy(s, skills, func(us entity.UserSkill) uuid.UUID { return us.ID }, false)
	u.Skills = skills
	return u
}

func (s *Store) hydrateSwap(sw entity.Swap) entity.Swap {
	if p, ok := s.t.proposals[sw.ProposalID]; ok {
		sw.Proposal = s.hydrateProposal(p)
	}
	sw.Teacher = s.t.users[sw.TeacherID]
	sw.Student = s.t.users[sw.StudentID]
	return sw
}

// Users

func (s *Store) Users() userRepo.UserRepository { return userStore{s} }

type userStore struct{ s *Store }

func (r userStore) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.t.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (r userStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.t.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (r userStore) CreateIfAbsent(_ context.Context, user *entity.User) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.t.users {
		if u.Email == user.Email {
			return false, nil
		}
	}
	if user.ID == uuid.Nil {
		user.ID = newID()
	}
	user.CreatedAt = r.s.tick(user.ID)
	stored := *user
	stored.Skills = nil
	r.s.t.users[user.ID] = stored
	return true, nil
}

func (r userStore) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("users.Update"); err != nil {
		return err
	}
	u, ok := r.s.t.users[user.ID]
	if !ok {
		return nil
	}
	u.ExternalID = user.ExternalID
	u.Name = user.Name
	u.Bio = user.Bio
	u.Industry = user.Industry
	u.AvatarURL = user.AvatarURL
	u.PhoneNumber = user.PhoneNumber
	r.s.t.users[user.ID] = u
	return nil
}

// Skills

func (s *Store) Skills() skillRepo.SkillRepository { return skillStore{s} }

type skillStore struct{ s *Store }

func (r skillStore) FindOrCreateByNames(_ context.Context, names []string) ([]entity.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.Skill, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		var found *entity.Skill
		for _, sk := range r.s.t.skills {
			if sk.Name == name {
				found = &sk
				break
			}
		}
		if found == nil {
			sk := entity.Skill{ID: newID(), Name: name}
			sk.CreatedAt = r.s.tick(sk.ID)
			r.s.t.skills[sk.ID] = sk
			found = &sk
		}
		out = append(out, *found)
	}
	return out, nil
}

func (r skillStore) List(_ context.Context, search string, limit int) ([]entity.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Skill
	for _, sk := range r.s.t.skills {
		if search == "" || strings.Contains(strings.ToLower(sk.Name), strings.ToLower(search)) {
			out = append(out, sk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r skillStore) FindUserSkillByID(_ context.Context, id uuid.UUID) (*entity.UserSkill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	us, ok := r.s.t.userSkills[id]
	if !ok {
		return nil, notFound("user skill")
	}
	us.Skill = r.s.t.skills[us.SkillID]
	return &us, nil
}

func (r skillStore) ListUserSkills(_ context.Context, userID uuid.UUID, visibleOnly bool) ([]entity.UserSkill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.UserSkill
	for _, us := range r.s.t.userSkills {
		if us.UserID != userID || (visibleOnly && !us.IsVisible) {
			continue
		}
		us.Skill = r.s.t.skills[us.SkillID]
		out = append(out, us)
	}
	sortBy(r.s, out, func(us entity.UserSkill) uuid.UUID { return us.ID }, false)
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndorsementCount > out[j].EndorsementCount })
	return out, nil
}

func (r skillStore) CreateUserSkill(_ context.Context, userSkill *entity.UserSkill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, us := range r.s.t.userSkills {
		if us.UserID == userSkill.UserID && us.SkillID == userSkill.SkillID {
			return duplicate("user skill")
		}
	}
	if userSkill.ID == uuid.Nil {
		userSkill.ID = newID()
	}
	if userSkill.Source == "" {
		userSkill.Source = entity.SkillSourceManual
	}
	userSkill.CreatedAt = r.s.tick(userSkill.ID)
	stored := *userSkill
	stored.Skill = entity.Skill{}
	r.s.t.userSkills[stored.ID] = stored
	return nil
}

func (r skillStore) SetUserSkillVisibility(_ context.Context, id uuid.UUID, visible bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if us, ok := r.s.t.userSkills[id]; ok {
		us.IsVisible = visible
		r.s.t.userSkills[id] = us
	}
	return nil
}

func (r skillStore) Endorse(_ context.Context, userID uuid.UUID, skillIDs []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("skills.Endorse"); err != nil {
		return 0, err
	}
	wanted := map[uuid.UUID]bool{}
	for _, id := range skillIDs {
		wanted[id] = true
	}
	var touched int64
	for id, us := range r.s.t.userSkills {
		if us.UserID == userID && wanted[us.SkillID] {
			us.EndorsementCount++
			us.Source = entity.SkillSourceEndorsed
			r.s.t.userSkills[id] = us
			touched++
		}
	}
	return touched, nil
}

func (r skillStore) CountEndorsed(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, us := range r.s.t.userSkills {
		if us.UserID == userID && us.Source == entity.SkillSourceEndorsed {
			n++
		}
	}
	return n, nil
}

// Proposals

func (s *Store) Proposals() proposalRepo.ProposalRepository { return proposalStore{s} }

type proposalStore struct{ s *Store }

func skillIDs(skills []entity.Skill) []uuid.UUID {
	ids := make([]uuid.UUID, len(skills))
	for i, sk := range skills {
		ids[i] = sk.ID
	}
	return ids
}

func (r proposalStore) Create(_ context.Context, p *entity.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("proposals.Create"); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = entity.ProposalStatusOpen
	}
	p.CreatedAt = r.s.tick(p.ID)
	p.UpdatedAt = p.CreatedAt

	stored := storedProposal{Proposal: *p, offered: skillIDs(p.OfferedSkills), needed: skillIDs(p.NeededSkills)}
	stored.Owner = entity.User{}
	stored.OfferedSkills = nil
	stored.NeededSkills = nil
	r.s.t.proposals[p.ID] = stored
	return nil
}

func (r proposalStore) FindByID(_ context.Context, id uuid.UUID) (*entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.t.proposals[id]
	if !ok {
		return nil, notFound("proposal")
	}
	out := r.s.hydrateProposal(p)
	return &out, nil
}

func (r proposalStore) FindByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.Proposal, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.t.proposals[id]; ok {
			out = append(out, r.s.hydrateProposal(p))
		}
	}
	return out, nil
}

func containsAny(have []uuid.UUID, want []uuid.UUID) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func (r proposalStore) matches(p entity.Proposal, f proposalRepo.ListFilter) bool {
	if p.Status != entity.ProposalStatusOpen {
		return false
	}
	if f.Modality != "" && p.Modality != f.Modality {
		return false
	}
	if len(f.WantSkillIDs) > 0 && !containsAny(skillIDs(p.NeededSkills), f.WantSkillIDs) {
		return false
	}
	if len(f.HaveSkillIDs) > 0 && !containsAny(skillIDs(p.OfferedSkills), f.HaveSkillIDs) {
		return false
	}
	if f.Search == "" {
		return true
	}

	q := strings.ToLower(f.Search)
	fields := []string{p.Title, p.Description, p.Owner.Name}
	for _, sk := range p.OfferedSkills {
		fields = append(fields, sk.Name)
	}
	for _, sk := range p.NeededSkills {
		fields = append(fields, sk.Name)
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (r proposalStore) ListOpen(_ context.Context, f proposalRepo.ListFilter) ([]entity.Proposal, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []entity.Proposal
	for _, sp := range r.s.t.proposals {
		p := r.s.hydrateProposal(sp)
		if r.matches(p, f) {
			all = append(all, p)
		}
	}
	sortBy(r.s, all, func(p entity.Proposal) uuid.UUID { return p.ID }, true)

	total := int64(len(all))
	start := min(f.Offset, len(all))
	end := len(all)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(all))
	}
	return all[start:end], total, nil
}

func (r proposalStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Proposal
	for _, sp := range r.s.t.proposals {
		if sp.OwnerID == ownerID {
			out = append(out, r.s.hydrateProposal(sp))
		}
	}
	sortBy(r.s, out, func(p entity.Proposal) uuid.UUID { return p.ID }, true)
	return out, nil
}

func (r proposalStore) UpdateStatus(_ context.Context, id uuid.UUID, status entity.ProposalStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p, ok := r.s.t.proposals[id]; ok {
		p.Status = status
		p.UpdatedAt = r.s.Now
		r.s.t.proposals[id] = p
	}
	return nil
}

func (r proposalStore) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.t.proposals, id)
	for appID, a := range r.s.t.applications {
		if a.ProposalID == id {
			delete(r.s.t.applications, appID)
		}
	}
	for swapID, sw := range r.s.t.swaps {
		if sw.ProposalID != id {
			continue
		}
		delete(r.s.t.swaps, swapID)
		for msgID, m := range r.s.t.messages {
			if m.SwapID == swapID {
				delete(r.s.t.messages, msgID)
			}
		}
		for reviewID, rv := range r.s.t.reviews {
			if rv.SwapID == swapID {
				delete(r.s.t.reviews, reviewID)
			}
		}
	}
	return nil
}

func (r proposalStore) Counts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]proposalRepo.Counts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wanted := map[uuid.UUID]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	counts := map[uuid.UUID]proposalRepo.Counts{}
	for _, a := range r.s.t.applications {
		if wanted[a.ProposalID] {
			c := counts[a.ProposalID]
			c.Applications++
			counts[a.ProposalID] = c
		}
	}
	for _, sw := range r.s.t.swaps {
		if wanted[sw.ProposalID] {
			c := counts[sw.ProposalID]
			c.Swaps++
			counts[sw.ProposalID] = c
		}
	}
	return counts, nil
}

// Applications

func (s *Store) Applications() appRepo.ApplicationRepository { return applicationStore{s} }

type applicationStore struct{ s *Store }

func (r applicationStore) Create(_ context.Context, a *entity.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.t.applications {
		if existing.ProposalID == a.ProposalID && existing.ApplicantID == a.ApplicantID {
			return duplicate("application")
		}
	}
	if a.ID == uuid.Nil {
		a.ID = newID()
	}
	if a.Status == "" {
		a.Status = entity.ApplicationStatusPending
	}
	a.CreatedAt = r.s.tick(a.ID)
	stored := *a
	stored.Proposal = entity.Proposal{}
	stored.Applicant = entity.User{}
	r.s.t.applications[a.ID] = stored
	return nil
}

func (r applicationStore) find(id uuid.UUID, hydrate bool) (*entity.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.t.applications[id]
	if !ok {
		return nil, notFound("application")
	}
	if hydrate {
		a.Applicant = r.s.t.users[a.ApplicantID]
		if p, ok := r.s.t.proposals[a.ProposalID]; ok {
			a.Proposal = r.s.hydrateProposal(p)
		}
	}
	return &a, nil
}

func (r applicationStore) FindByID(_ context.Context, id uuid.UUID) (*entity.Application, error) {
	return r.find(id, true)
}

func (r applicationStore) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*entity.Application, error) {
	return r.find(id, false)
}

func (r applicationStore) Exists(_ context.Context, proposalID, applicantID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.t.applications {
		if a.ProposalID == proposalID && a.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (r applicationStore) ListByProposal(_ context.Context, proposalID uuid.UUID) ([]entity.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Application
	for _, a := range r.s.t.applications {
		if a.ProposalID == proposalID {
			a.Applicant = r.s.userWithVisibleSkills(a.ApplicantID)
			out = append(out, a)
		}
	}
	sortBy(r.s, out, func(a entity.Application) uuid.UUID { return a.ID }, true)
	return out, nil
}

func (r applicationStore) ListByApplicant(_ context.Context, applicantID uuid.UUID) ([]entity.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Application
	for _, a := range r.s.t.applications {
		if a.ApplicantID == applicantID {
			if p, ok := r.s.t.proposals[a.ProposalID]; ok {
				a.Proposal = r.s.hydrateProposal(p)
			}
			out = append(out, a)
		}
	}
	sortBy(r.s, out, func(a entity.Application) uuid.UUID { return a.ID }, true)
	return out, nil
}

func (r applicationStore) ListForOwner(_ context.Context, ownerID uuid.UUID, limit int) ([]entity.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Application
	for _, a := range r.s.t.applications {
		p, ok := r.s.t.proposals[a.ProposalID]
		if !ok || p.OwnerID != ownerID {
			continue
		}
		a.Proposal = r.s.hydrateProposal(p)
		a.Applicant = r.s.userWithVisibleSkills(a.ApplicantID)
		out = append(out, a)
	}
	sortBy(r.s, out, func(a entity.Application) uuid.UUID { return a.ID }, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r applicationStore) UpdateStatus(_ context.Context, id uuid.UUID, status entity.ApplicationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a, ok := r.s.t.applications[id]; ok {
		a.Status = status
		r.s.t.applications[id] = a
	}
	return nil
}

// Swaps

func (s *Store) Swaps() swapRepo.SwapRepository { return swapStore{s} }

type swapStore struct{ s *Store }

func (r swapStore) Create(_ context.Context, sw *entity.Swap) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("swaps.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.t.swaps {
		if existing.ApplicationID == sw.ApplicationID {
			return duplicate("swap")
		}
	}
	if sw.ID == uuid.Nil {
		sw.ID = newID()
	}
	if sw.Status == "" {
		sw.Status = entity.SwapStatusActive
	}
	at := r.s.tick(sw.ID)
	if sw.StartedAt.IsZero() {
		sw.StartedAt = at
	}
	stored := *sw
	stored.Proposal = entity.Proposal{}
	stored.Teacher = entity.User{}
	stored.Student = entity.User{}
	r.s.t.swaps[sw.ID] = stored
	return nil
}

func (r swapStore) FindByID(_ context.Context, id uuid.UUID) (*entity.Swap, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("swaps.FindByID"); err != nil {
		return nil, err
	}
	sw, ok := r.s.t.swaps[id]
	if !ok {
		return nil, notFound("swap")
	}
	out := r.s.hydrateSwap(sw)
	return &out, nil
}

func (r swapStore) ExistsForApplication(_ context.Context, applicationID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, sw := range r.s.t.swaps {
		if sw.ApplicationID == applicationID {
			return true, nil
		}
	}
	return false, nil
}

func (r swapStore) ListByParticipant(_ context.Context, userID uuid.UUID, limit int) ([]entity.Swap, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Swap
	for _, sw := range r.s.t.swaps {
		if sw.IsParticipant(userID) {
			out = append(out, r.s.hydrateSwap(sw))
		}
	}
	sortBy(r.s, out, func(sw entity.Swap) uuid.UUID { return sw.ID }, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r swapStore) UpdateStatus(_ context.Context, id uuid.UUID, status entity.SwapStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sw, ok := r.s.t.swaps[id]
	if !ok {
		return nil
	}
	sw.Status = status
	if status == entity.SwapStatusCompleted && sw.CompletedAt == nil {
		completed := at
		sw.CompletedAt = &completed
	}
	r.s.t.swaps[id] = sw
	return nil
}

func (r swapStore) CountCompleted(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, sw := range r.s.t.swaps {
		if sw.IsParticipant(userID) && sw.Status == entity.SwapStatusCompleted {
			n++
		}
	}
	return n, nil
}

// Messages

func (s *Store) Messages() messageRepo.MessageRepository { return messageStore{s} }

type messageStore struct{ s *Store }

func (r messageStore) Create(_ context.Context, m *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = newID()
	}
	m.CreatedAt = r.s.tick(m.ID)
	stored := *m
	stored.Sender = entity.User{}
	stored.Swap = nil
	r.s.t.messages[m.ID] = stored
	return nil
}

func (r messageStore) ListBySwap(_ context.Context, swapID uuid.UUID) ([]entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Message
	for _, m := range r.s.t.messages {
		if m.SwapID == swapID {
			sender := r.s.t.users[m.SenderID]
			m.Sender = entity.User{ID: sender.ID, Name: sender.Name, AvatarURL: sender.AvatarURL}
			out = append(out, m)
		}
	}
	sortBy(r.s, out, func(m entity.Message) uuid.UUID { return m.ID }, false)
	return out, nil
}

// Reviews

func (s *Store) Reviews() reviewRepo.ReviewRepository { return reviewStore{s} }

type reviewStore struct{ s *Store }

func (r reviewStore) Create(_ context.Context, rv *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.t.reviews {
		if existing.SwapID == rv.SwapID && existing.AuthorID == rv.AuthorID {
			return duplicate("review")
		}
	}
	if rv.ID == uuid.Nil {
		rv.ID = newID()
	}
	rv.CreatedAt = r.s.tick(rv.ID)
	stored := *rv
	stored.Author = entity.User{}
	stored.Swap = nil
	r.s.t.reviews[rv.ID] = stored
	return nil
}

func (r reviewStore) Exists(_ context.Context, swapID, authorID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rv := range r.s.t.reviews {
		if rv.SwapID == swapID && rv.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r reviewStore) ListByReceiver(_ context.Context, receiverID uuid.UUID) ([]entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Review
	for _, rv := range r.s.t.reviews {
		if rv.ReceiverID != receiverID {
			continue
		}
		rv.Author = r.s.t.users[rv.AuthorID]
		if sw, ok := r.s.t.swaps[rv.SwapID]; ok {
			hydrated := r.s.hydrateSwap(sw)
			rv.Swap = &hydrated
		}
		out = append(out, rv)
	}
	sortBy(r.s, out, func(rv entity.Review) uuid.UUID { return rv.ID }, true)
	return out, nil
}

func (r reviewStore) StatsForReceiver(_ context.Context, receiverID uuid.UUID) (reviewRepo.Stats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var stats reviewRepo.Stats
	var sum int
	for _, rv := range r.s.t.reviews {
		if rv.ReceiverID != receiverID {
			continue
		}
		stats.Total++
		sum += rv.Rating
		if rv.IsPositive() {
			stats.Positive++
		}
	}
	if stats.Total > 0 {
		stats.Average = float64(sum) / float64(stats.Total)
	}
	return stats, nil
}

func (r reviewStore) ReviewedSwapIDs(_ context.Context, authorID uuid.UUID, swapIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wanted := map[uuid.UUID]bool{}
	for _, id := range swapIDs {
		wanted[id] = true
	}
	out := map[uuid.UUID]bool{}
	for _, rv := range r.s.t.reviews {
		if rv.AuthorID == authorID && wanted[rv.SwapID] {
			out[rv.SwapID] = true
		}
	}
	return out, nil
}

// Notifications

func (s *Store) NotificationRepo() notifRepo.NotificationRepository { return notificationStore{s} }

type notificationStore struct{ s *Store }

func (r notificationStore) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fail("notifications.Create"); err != nil {
		return err
	}
	if n.ID == uuid.Nil {
		n.ID = newID()
	}
	n.CreatedAt = r.s.tick(n.ID)
	stored := *n
	stored.User = nil
	r.s.t.notifications[n.ID] = stored
	return nil
}

func (r notificationStore) FindByID(_ context.Context, id uuid.UUID) (*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.t.notifications[id]
	if !ok {
		return nil, notFound("notification")
	}
	return &n, nil
}

func (r notificationStore) GetByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Notification
	for _, n := range r.s.t.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sortBy(r.s, out, func(n entity.Notification) uuid.UUID { return n.ID }, true)
	start := min(offset, len(out))
	end := len(out)
	if limit > 0 {
		end = min(start+limit, len(out))
	}
	return out[start:end], nil
}

func (r notificationStore) MarkAsRead(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if n, ok := r.s.t.notifications[id]; ok {
		n.IsRead = true
		r.s.t.notifications[id] = n
	}
	return nil
}

func (r notificationStore) MarkAllAsRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, notif := range r.s.t.notifications {
		if notif.UserID == userID && !notif.IsRead {
			notif.IsRead = true
			r.s.t.notifications[id] = notif
			n++
		}
	}
	return n, nil
}

func (r notificationStore) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, notif := range r.s.t.notifications {
		if notif.UserID == userID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (r notificationStore) ListPendingDigest(_ context.Context, notifType entity.NotificationType, cutoff time.Time, limit int) ([]entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Notification
	for _, n := range r.s.t.notifications {
		if n.Type != notifType || n.IsRead || n.EmailedAt != nil || n.CreatedAt.After(cutoff) {
			continue
		}
		u := r.s.t.users[n.UserID]
		n.User = &u
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DigestAttempts != out[j].DigestAttempts {
			return out[i].DigestAttempts < out[j].DigestAttempts
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return r.s.t.seq[out[i].ID] < r.s.t.seq[out[j].ID]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r notificationStore) MarkEmailed(_ context.Context, ids []uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		if n, ok := r.s.t.notifications[id]; ok {
			emailed := at
			n.EmailedAt = &emailed
			r.s.t.notifications[id] = n
		}
	}
	return nil
}

func (r notificationStore) RecordDigestFailure(_ context.Context, ids []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range ids {
		if n, ok := r.s.t.notifications[id]; ok {
			n.DigestAttempts++
			r.s.t.notifications[id] = n
		}
	}
	return nil
}
