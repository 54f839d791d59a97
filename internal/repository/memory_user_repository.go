package repository

import (
	"context"
	"sync"

	apperrors "krishi/internal/errors"
	"krishi/internal/model"
)

type memoryUserRepository struct {
	mu       sync.RWMutex
	accounts []model.Account
	hasher   hasher
}

// NewMemoryUserRepository builds a process-local store holding seeds. Records added later are
// lost when the process exits. A zero cost selects DefaultBcryptCost.
func NewMemoryUserRepository(seeds []SeedUser, cost int) (UserRepository, error) {
	h, err := newHasher(cost)
	if err != nil {
		return nil, err
	}
	r := &memoryUserRepository{hasher: h}
	for _, s := range seeds {
		if err := r.Insert(context.Background(), &s.User, s.Password); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *memoryUserRepository) FindByEmailAndPassword(_ context.Context, email, password string) (*model.User, error) {
	email = NormalizeEmail(email)
	r.mu.RLock()
	var found *model.Account
	for i := range r.accounts {
		if r.accounts[i].Email == email {
			a := r.accounts[i]
			a.User = *a.User.Clone()
			found = &a
			break
		}
	}
	r.mu.RUnlock()

	if found == nil {
		r.hasher.miss(password)
		return nil, ErrUserNotFound
	}
	if !r.hasher.matches(found.PasswordHash, password) {
		return nil, ErrUserNotFound
	}
	return &found.User, nil
}

func (r *memoryUserRepository) Exists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOfEmail(NormalizeEmail(email)) >= 0, nil
}

func (r *memoryUserRepository) Insert(_ context.Context, user *model.User, password string) error {
	hashed, err := r.hasher.hash(password)
	if err != nil {
		return err
	}
	account := model.Account{User: *user.Clone(), PasswordHash: hashed}
	account.Email = NormalizeEmail(account.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOfEmail(account.Email) >= 0 {
		return apperrors.ErrDuplicateEmail
	}
	r.accounts = append(r.accounts, account)
	return nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *model.User) error {
	updated := user.Clone()
	updated.Email = NormalizeEmail(updated.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i := range r.accounts {
		if r.accounts[i].ID == updated.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUserNotFound
	}
	if other := r.indexOfEmail(updated.Email); other >= 0 && other != idx {
		return apperrors.ErrDuplicateEmail
	}
	r.accounts[idx].User = *updated
	return nil
}

// indexOfEmail expects a normalized email and the lock held.
func (r *memoryUserRepository) indexOfEmail(email string) int {
	for i := range r.accounts {
		if r.accounts[i].Email == email {
			return i
		}
	}
	return -1
}
