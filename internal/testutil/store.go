package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/repository"
)

// Store is an in-memory user registry with the same conditional-transition
// semantics as repository.UserRepository. It also serves role claims.
type Store struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
	seq   time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{users: map[uuid.UUID]*model.User{}, seq: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Add inserts u directly, defaulting the status to pending. CreatedAt
// increases by one minute per call.
func (m *Store) Add(u model.User) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = model.StatusPending
	}
	m.seq = m.seq.Add(time.Minute)
	u.CreatedAt = m.seq
	m.users[u.ID] = &u
	cp := u
	return &cp
}

func (m *Store) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return repository.ErrDuplicateUsername
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.seq = m.seq.Add(time.Minute)
	u.CreatedAt, u.UpdatedAt = m.seq, m.seq
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Store) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Store) find(pred func(*model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if pred(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *Store) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *Store) GetByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	return m.find(func(u *model.User) bool {
		return strings.EqualFold(u.Email, identifier) || strings.EqualFold(u.Username, identifier)
	})
}

func (m *Store) sorted(status *model.UserStatus) []model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.User{}
	for _, u := range m.users {
		if status == nil || strings.EqualFold(string(u.Status), string(*status)) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *Store) ListByStatus(_ context.Context, status model.UserStatus) ([]model.User, error) {
	return m.sorted(&status), nil
}

func (m *Store) List(_ context.Context, status *model.UserStatus, limit, offset int) ([]model.User, error) {
	all := m.sorted(status)
	if offset >= len(all) {
		return []model.User{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *Store) ListRoster(_ context.Context, limit, offset int) ([]model.User, error) {
	approved := model.StatusApproved
	roster := []model.User{}
	for _, u := range m.sorted(&approved) {
		if !u.Staff {
			roster = append(roster, u)
		}
	}
	sort.SliceStable(roster, func(i, j int) bool {
		if roster[i].Name != roster[j].Name {
			return roster[i].Name < roster[j].Name
		}
		return roster[i].Surname < roster[j].Surname
	})
	if offset >= len(roster) {
		return []model.User{}, nil
	}
	roster = roster[offset:]
	if len(roster) > limit {
		roster = roster[:limit]
	}
	return roster, nil
}

func (m *Store) Transition(_ context.Context, d model.Decision) (*model.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[d.UserID]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	if !strings.EqualFold(string(u.Status), string(model.StatusPending)) {
		cp := *u
		cp.Status = model.UserStatus(strings.ToLower(string(cp.Status)))
		return &cp, false, nil
	}
	now := time.Now()
	by := d.DecidedBy
	u.Status = d.To
	u.RejectionReason = d.Reason
	u.DecidedBy = &by
	u.DecidedAt = &now
	cp := *u
	return &cp, true, nil
}

func (m *Store) SetRole(_ context.Context, email string, role model.AdminRole) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u.AdminRole = role
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *Store) ListAdmins(_ context.Context) ([]model.AdminSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.AdminSummary{}
	for _, u := range m.users {
		if u.AdminRole != model.RoleNone {
			out = append(out, model.AdminSummary{ID: u.ID, Email: u.Email, Name: u.Name, Surname: u.Surname, Role: u.AdminRole})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
