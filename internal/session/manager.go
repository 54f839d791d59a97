package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "krishi/internal/errors"
	"krishi/internal/model"
	"krishi/internal/repository"
)

// DefaultLatency is the simulated round trip of Login and Signup.
const DefaultLatency = time.Second

// Slot is the single persisted copy of the session user.
type Slot interface {
	LoadUser(ctx context.Context) (*model.User, bool)
	SaveUser(ctx context.Context, user *model.User) error
	ClearUser(ctx context.Context) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithLatency sets the simulated round trip of Login and Signup. Zero disables it.
func WithLatency(d time.Duration) Option {
	return func(m *Manager) { m.latency = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithIDGenerator sets how signup identifiers are made.
func WithIDGenerator(f func() string) Option {
	return func(m *Manager) { m.newID = f }
}

// Manager is the sign-in state machine of one session scope. It is safe for concurrent use.
type Manager struct {
	users   repository.UserRepository
	slot    Slot
	latency time.Duration
	newID   func() string
	logger  *zap.Logger

	initOnce sync.Once
	ready    chan struct{}

	mu       sync.Mutex
	state    State
	user     *model.User
	inFlight bool
	// epoch advances on every committed transition; an in-flight request whose epoch
	// went stale while it was suspended is discarded instead of committed.
	epoch   uint64
	subs    map[int]chan Snapshot
	nextSub int
}

// NewManager creates a Manager in StateInitializing. Call Init before use; Login and Signup do so
// implicitly.
func NewManager(users repository.UserRepository, slot Slot, opts ...Option) *Manager {
	m := &Manager{
		users:   users,
		slot:    slot,
		latency: DefaultLatency,
		newID:   uuid.NewString,
		logger:  zap.NewNop(),
		ready:   make(chan struct{}),
		state:   StateInitializing,
		subs:    make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init restores the persisted user, once per Manager. Later calls return immediately.
func (m *Manager) Init(ctx context.Context) {
	m.initOnce.Do(func() {
		// A cancelled caller must not leave the scope permanently anonymous.
		ctx := context.WithoutCancel(ctx)
		user, ok := m.slot.LoadUser(ctx)

		m.mu.Lock()
		if ok {
			m.state, m.user = StateAuthenticated, user
		} else {
			m.state = StateAnonymous
		}
		m.epoch++
		m.notifyLocked()
		m.mu.Unlock()

		m.logger.Debug("session restored", zap.Bool("authenticated", ok))
		close(m.ready)
	})
}

// Ready is closed once Init has finished.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Login authenticates with email and password. A miss leaves the previous state in place and
// returns errors.ErrInvalidCredentials, without saying whether the email exists.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.User, error) {
	m.Init(ctx)
	req, err := m.begin()
	if err != nil {
		return nil, err
	}
	if err := m.pause(ctx); err != nil {
		m.abort(req)
		return nil, err
	}

	user, err := m.users.FindByEmailAndPassword(ctx, email, password)
	if errors.Is(err, repository.ErrUserNotFound) {
		m.abort(req)
		m.logger.Info("login rejected")
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		m.abort(req)
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := m.commit(ctx, req, user); err != nil {
		return nil, err
	}
	m.logger.Info("login succeeded", zap.String("user_id", user.ID))
	return user.Clone(), nil
}

// Signup creates a user from profile and password and signs it in. It fails with
// errors.ErrDuplicateEmail when the email is taken, leaving the existing record untouched.
func (m *Manager) Signup(ctx context.Context, profile model.SignupProfile, password string) (*model.User, error) {
	profile.Email = repository.NormalizeEmail(profile.Email)
	if profile.Email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperrors.ErrValidation)
	}

	m.Init(ctx)
	req, err := m.begin()
	if err != nil {
		return nil, err
	}
	if err := m.pause(ctx); err != nil {
		m.abort(req)
		return nil, err
	}

	exists, err := m.users.Exists(ctx, profile.Email)
	if err != nil {
		m.abort(req)
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		m.abort(req)
		return nil, apperrors.ErrDuplicateEmail
	}

	user := profile.NewUser(m.newID())
	if err := m.users.Insert(ctx, user, password); err != nil {
		m.abort(req)
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := m.commit(ctx, req, user); err != nil {
		return nil, err
	}
	m.logger.Info("signup succeeded", zap.String("user_id", user.ID))
	return user.Clone(), nil
}

// Logout drops the session and clears the persisted copy. It always succeeds, and discards the
// result of any login or signup still in flight.
func (m *Manager) Logout(ctx context.Context) {
	m.Init(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.slot.ClearUser(ctx); err != nil {
		m.logger.Warn("clear session slot", zap.Error(err))
	}
	m.state, m.user = StateAnonymous, nil
	m.inFlight = false
	m.epoch++
	m.notifyLocked()
}

// UpdateProfile shallow-merges patch into the signed-in user and persists the result. Outside
// StateAuthenticated it returns errors.ErrNotAuthenticated and changes nothing.
func (m *Manager) UpdateProfile(ctx context.Context, patch model.ProfilePatch) (*model.User, error) {
	m.Init(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAuthenticated || m.user == nil {
		return nil, apperrors.ErrNotAuthenticated
	}
	if patch.Empty() {
		return m.user.Clone(), nil
	}

	updated := patch.Apply(m.user)
	updated.Email = repository.NormalizeEmail(updated.Email)
	if updated.Email == "" {
		return nil, fmt.Errorf("%w: email must not be empty", apperrors.ErrValidation)
	}

	err := m.users.Update(ctx, updated)
	switch {
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		return nil, err
	case errors.Is(err, repository.ErrUserNotFound):
		// Restored sessions can outlive in-memory signups; the session copy still updates.
		m.logger.Warn("profile update for user missing from store", zap.String("user_id", updated.ID))
	case err != nil:
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := m.slot.SaveUser(ctx, updated); err != nil {
		m.logger.Warn("save session slot", zap.Error(err))
	}
	m.user = updated
	m.epoch++
	m.notifyLocked()
	return updated.Clone(), nil
}

// Subscribe returns a channel that receives the latest Snapshot after every transition, and a
// function that ends the subscription. Slow readers only see the most recent snapshot.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- m.snapshotLocked()
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
}

// Idle reports whether the Manager holds nothing a rebuild from its slot would lose: restore has
// finished, no login or signup is in flight and nobody is subscribed.
func (m *Manager) Idle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != StateInitializing && !m.inFlight && len(m.subs) == 0
}

type request struct {
	epoch     uint64
	prevState State
	prevUser  *model.User
}

func (m *Manager) begin() (request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return request{}, apperrors.ErrBusy
	}
	req := request{prevState: m.state, prevUser: m.user}
	m.inFlight = true
	m.state, m.user = StateAuthenticating, nil
	m.epoch++
	req.epoch = m.epoch
	m.notifyLocked()
	return req, nil
}

// abort restores the state seen by begin, unless the request was overtaken.
func (m *Manager) abort(req request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != req.epoch {
		return
	}
	m.inFlight = false
	m.state, m.user = req.prevState, req.prevUser
	m.epoch++
	m.notifyLocked()
}

// commit persists user and moves to StateAuthenticated, unless the request was overtaken.
func (m *Manager) commit(ctx context.Context, req request, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != req.epoch {
		return apperrors.ErrSessionChanged
	}
	if err := m.slot.SaveUser(ctx, user); err != nil {
		m.logger.Warn("save session slot", zap.Error(err))
	}
	m.inFlight = false
	m.state, m.user = StateAuthenticated, user.Clone()
	m.epoch++
	m.notifyLocked()
	return nil
}

// pause is the simulated network round trip.
func (m *Manager) pause(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{State: m.state}
	if m.state == StateAuthenticated {
		s.User = m.user.Clone()
	}
	return s
}

func (m *Manager) notifyLocked() {
	s := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
