package repository

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lesechos/accounts/internal/models"
)

// InMemoryRepository keeps users in maps. Records are copied on the way in
// and out so callers never share state with the store.
type InMemoryRepository struct {
	users       map[string]*models.User
	usersByName map[string]*models.User
	mu          sync.RWMutex
	now         func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:       make(map[string]*models.User),
		usersByName: make(map[string]*models.User),
		now:         time.Now,
	}
}

func (r *InMemoryRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByName[user.Username]; exists {
		return nil, ErrUserExists
	}

	stored := clone(user)
	stored.ID = uuid.Must(uuid.NewV7()).String()
	stored.CreatedAt = r.now().UTC()
	stored.UpdatedAt = stored.CreatedAt

	r.users[stored.ID] = stored
	r.usersByName[stored.Username] = stored
	return clone(stored), nil
}

func (r *InMemoryRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.usersByName[username]
	if !exists {
		return nil, ErrUserNotFound
	}
	return clone(user), nil
}

func (r *InMemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	return clone(user), nil
}

func (r *InMemoryRepository) ListUsers(ctx context.Context, q models.ListQuery) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		if matchesFilters(u, q.Filters) {
			matched = append(matched, u)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, s := range q.Sort {
			c := compareField(matched[i], matched[j], s.Field)
			if c == 0 {
				continue
			}
			if s.Descending {
				return c > 0
			}
			return c < 0
		}
		return matched[i].ID < matched[j].ID
	})

	start := q.Offset()
	if start >= len(matched) {
		return []*models.User{}, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]*models.User, 0, end-start)
	for _, u := range matched[start:end] {
		page = append(page, clone(u))
	}
	return page, nil
}

func (r *InMemoryRepository) UpdateUser(ctx context.Context, id string, patch *models.UserPatch) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}

	patch.Apply(user)
	if patch.Address != nil {
		user.Address = maps.Clone(patch.Address)
	}
	user.UpdatedAt = r.now().UTC()
	return clone(user), nil
}

func (r *InMemoryRepository) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}

	delete(r.users, id)
	delete(r.usersByName, user.Username)
	return user, nil
}

func clone(u *models.User) *models.User {
	c := *u
	c.Address = maps.Clone(u.Address)
	return &c
}

func fieldValue(u *models.User, field string) string {
	switch field {
	case models.FieldUsername:
		return u.Username
	case models.FieldEmail:
		return u.Email
	case models.FieldRole:
		return string(u.Role)
	case models.FieldName:
		return u.Name
	}
	return ""
}

func matchesFilters(u *models.User, filters map[string]string) bool {
	for field, want := range filters {
		if fieldValue(u, field) != want {
			return false
		}
	}
	return true
}

func compareField(a, b *models.User, field string) int {
	switch field {
	case models.FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case models.FieldUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return strings.Compare(fieldValue(a, field), fieldValue(b, field))
}
