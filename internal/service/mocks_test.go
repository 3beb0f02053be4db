package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/haierkeys/site-text-service/internal/domain"
)

// --- Mocks ---

// textStore in-memory blocks plus history shared by the block and history mocks
type textStore struct {
	mu      sync.Mutex
	blocks  map[string]*domain.TextBlock
	history []*domain.VersionRecord

	err    error // returned by every call when set
	calls  int
	writes int
}

func newTextStore() *textStore {
	return &textStore{blocks: map[string]*domain.TextBlock{}}
}

func (s *textStore) hit() error {
	s.calls++
	return s.err
}

type textMockBlockRepo struct {
	domain.TextBlockRepository
	store *textStore
}

func (m *textMockBlockRepo) Get(ctx context.Context, id string) (*domain.TextBlock, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if err := m.store.hit(); err != nil {
		return nil, err
	}
	if b, ok := m.store.blocks[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (m *textMockBlockRepo) List(ctx context.Context, filter domain.TextBlockFilter) ([]*domain.TextBlock, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if err := m.store.hit(); err != nil {
		return nil, err
	}
	out := []*domain.TextBlock{}
	for _, b := range m.store.blocks {
		if filter.Page != "" && b.Page != filter.Page {
			continue
		}
		if filter.Section != "" && b.Section != filter.Section {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *textMockBlockRepo) Mutate(ctx context.Context, id string, fn domain.MutateFunc) (*domain.TextBlock, *domain.VersionRecord, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if err := m.store.hit(); err != nil {
		return nil, nil, err
	}

	var current *domain.TextBlock
	var last int64
	if b, ok := m.store.blocks[id]; ok {
		cp := *b
		current = &cp
		last = b.Version
	} else {
		for _, r := range m.store.history {
			if r.TextBlockID == id && r.Version > last {
				last = r.Version
			}
		}
	}

	next, rec, err := fn(current, last)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return next, nil, nil
	}
	m.store.writes++
	stored := *next
	m.store.blocks[id] = &stored
	recCopy := *rec
	m.store.history = append(m.store.history, &recCopy)
	return next, rec, nil
}

func (m *textMockBlockRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if err := m.store.hit(); err != nil {
		return false, err
	}
	if _, ok := m.store.blocks[id]; !ok {
		return false, nil
	}
	m.store.writes++
	delete(m.store.blocks, id)
	return true, nil
}

type textMockHistoryRepo struct {
	domain.TextHistoryRepository
	store *textStore
}

func (m *textMockHistoryRepo) ListByTextBlockID(ctx context.Context, textBlockID string, limit int) ([]*domain.VersionRecord, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if err := m.store.hit(); err != nil {
		return nil, err
	}
	out := []*domain.VersionRecord{}
	for _, r := range m.store.history {
		if r.TextBlockID == textBlockID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *textMockHistoryRepo) GetByVersion(ctx context.Context, textBlockID string, version int64) (*domain.VersionRecord, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if err := m.store.hit(); err != nil {
		return nil, err
	}
	for _, r := range m.store.history {
		if r.TextBlockID == textBlockID && r.Version == version {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *textMockHistoryRepo) All(ctx context.Context) ([]*domain.VersionRecord, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if err := m.store.hit(); err != nil {
		return nil, err
	}
	out := make([]*domain.VersionRecord, len(m.store.history))
	copy(out, m.store.history)
	return out, nil
}

// recordingNotifier captures published events
type recordingNotifier struct {
	mu      sync.Mutex
	changed []string
	deleted []string
}

func (n *recordingNotifier) TextBlockChanged(ctx context.Context, block *domain.TextBlock, changeType domain.ChangeType) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, block.ID+":"+string(changeType))
}

func (n *recordingNotifier) TextBlockDeleted(ctx context.Context, id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, id)
}

type authMockAdminRepo struct {
	domain.AdminRepository
	admins    map[string]*domain.Admin
	lastLogin map[string]time.Time
}

func newAuthMockAdminRepo() *authMockAdminRepo {
	return &authMockAdminRepo{admins: map[string]*domain.Admin{}, lastLogin: map[string]time.Time{}}
}

func (m *authMockAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	if a, ok := m.admins[email]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *authMockAdminRepo) List(ctx context.Context) ([]*domain.Admin, error) {
	out := []*domain.Admin{}
	for _, a := range m.admins {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *authMockAdminRepo) Save(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	cp := *admin
	if existing, ok := m.admins[admin.Email]; ok && cp.PasswordHash == "" {
		cp.PasswordHash = existing.PasswordHash
	}
	m.admins[admin.Email] = &cp
	out := cp
	return &out, nil
}

func (m *authMockAdminRepo) Delete(ctx context.Context, email string) (bool, error) {
	if _, ok := m.admins[email]; !ok {
		return false, nil
	}
	delete(m.admins, email)
	return true, nil
}

func (m *authMockAdminRepo) UpdateLastLogin(ctx context.Context, email string, at time.Time) error {
	m.lastLogin[email] = at
	return nil
}
