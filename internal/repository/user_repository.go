package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"krishi/internal/model"
)

// DefaultBcryptCost is the hashing cost used outside tests.
const DefaultBcryptCost = 10

// ErrUserNotFound is returned when no record matches. Credential lookups return it for both an
// unknown email and a wrong password.
var ErrUserNotFound = errors.New("user not found")

// UserRepository holds the known users and their credentials.
type UserRepository interface {
	// FindByEmailAndPassword returns the profile whose email and password both match.
	FindByEmailAndPassword(ctx context.Context, email, password string) (*model.User, error)
	Exists(ctx context.Context, email string) (bool, error)
	// Insert adds a user with the given plaintext password. It fails with
	// errors.ErrDuplicateEmail when the email is already taken.
	Insert(ctx context.Context, user *model.User, password string) error
	// Update replaces the profile of an existing user, keeping its credential.
	Update(ctx context.Context, user *model.User) error
}

// NormalizeEmail is the form emails are stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hasher owns the bcrypt cost and a throwaway hash compared against on unknown emails,
// so a miss costs the same as a wrong password.
type hasher struct {
	cost     int
	missHash []byte
}

func newHasher(cost int) (hasher, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	miss, err := bcrypt.GenerateFromPassword([]byte("no-such-user"), cost)
	if err != nil {
		return hasher{}, fmt.Errorf("hash password: %w", err)
	}
	return hasher{cost: cost, missHash: miss}, nil
}

func (h hasher) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (h hasher) matches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h hasher) miss(password string) {
	_ = bcrypt.CompareHashAndPassword(h.missHash, []byte(password))
}
