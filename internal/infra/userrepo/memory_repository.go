package userrepo

import (
	"context"
	"errors"
	"sync"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	"github.com/yanqian/rencard-user/internal/domain/user"
	"github.com/yanqian/rencard-user/pkg/util"
)

var errUserNotFound = errors.New("user not found")

// MemoryRepository provides an in-memory user store for tests/dev.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[string]user.User
	emailIndex map[string]string
	phoneIndex map[string]string
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[string]user.User),
		emailIndex: make(map[string]string),
		phoneIndex: make(map[string]string),
	}
}

// Create stores the user record.
func (r *MemoryRepository) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emailIndex[u.Email]; exists {
		return user.User{}, auth.ErrEmailExists
	}
	if _, exists := r.phoneIndex[u.PhoneNumber]; exists {
		return user.User{}, auth.ErrPhoneExists
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = util.NowUTC()
		u.UpdatedAt = u.CreatedAt
	}
	r.users[u.ID] = u
	r.emailIndex[u.Email] = u.ID
	r.phoneIndex[u.PhoneNumber] = u.ID
	return u, nil
}

// GetByEmail returns a user by email.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.users[id], true, nil
	}
	return user.User{}, false, nil
}

// GetByID fetches by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok, nil
}

func (r *MemoryRepository) PhoneTaken(_ context.Context, phone, exceptID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.phoneIndex[phone]
	return ok && id != exceptID, nil
}

func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = util.NowUTC()
	r.users[id] = u
	return nil
}

func (r *MemoryRepository) UpdateDemographics(_ context.Context, id string, d user.Demographics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errUserNotFound
	}
	if owner, taken := r.phoneIndex[d.PhoneNumber]; taken && owner != id {
		return auth.ErrPhoneExists
	}
	delete(r.phoneIndex, u.PhoneNumber)
	u.PhoneNumber = d.PhoneNumber
	u.Sex = d.Sex
	u.BirthDate = d.BirthDate
	u.UpdatedAt = util.NowUTC()
	r.users[id] = u
	r.phoneIndex[u.PhoneNumber] = id
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	delete(r.users, id)
	delete(r.emailIndex, u.Email)
	delete(r.phoneIndex, u.PhoneNumber)
	return nil
}

var _ user.Repository = (*MemoryRepository)(nil)
