package service

import (
	"context"

	"krishi/internal/model"
	"krishi/internal/session"
)

// SessionService exposes the per-scope session managers to the HTTP layer.
type SessionService interface {
	// Current returns the scope's snapshot without waiting for restore to finish.
	Current(scope string) session.Snapshot
	Login(ctx context.Context, scope, email, password string) (*model.User, error)
	Signup(ctx context.Context, scope string, profile model.SignupProfile, password string) (*model.User, error)
	Logout(ctx context.Context, scope string)
	UpdateProfile(ctx context.Context, scope string, patch model.ProfilePatch) (*model.User, error)
	// Watch streams snapshots of scope until the returned function is called.
	Watch(scope string) (<-chan session.Snapshot, func())
}

type sessionService struct {
	registry *session.Registry
}

// NewSessionService creates a session service backed by registry.
func NewSessionService(registry *session.Registry) SessionService {
	return &sessionService{registry: registry}
}

func (s *sessionService) Current(scope string) session.Snapshot {
	return s.registry.Get(scope).Snapshot()
}

func (s *sessionService) Login(ctx context.Context, scope, email, password string) (*model.User, error) {
	return s.registry.Get(scope).Login(ctx, email, password)
}

func (s *sessionService) Signup(ctx context.Context, scope string, profile model.SignupProfile, password string) (*model.User, error) {
	return s.registry.Get(scope).Signup(ctx, profile, password)
}

func (s *sessionService) Logout(ctx context.Context, scope string) {
	s.registry.Get(scope).Logout(ctx)
}

func (s *sessionService) UpdateProfile(ctx context.Context, scope string, patch model.ProfilePatch) (*model.User, error) {
	return s.registry.Get(scope).UpdateProfile(ctx, patch)
}

func (s *sessionService) Watch(scope string) (<-chan session.Snapshot, func()) {
	return s.registry.Get(scope).Subscribe()
}
