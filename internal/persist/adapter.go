// Package persist stores the per-scope session slots: the signed-in user record and the chat
// transcript. Each scope has exactly one slot of each kind; writes overwrite.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"krishi/internal/cache"
	"krishi/internal/model"
)

const (
	userKeyPrefix = "karnataka-krishi-user:"
	chatKeyPrefix = "karnataka-krishi-chat-history:"
)

// UserKey is the storage slot holding the session user of scope.
func UserKey(scope string) string { return userKeyPrefix + scope }

// ChatKey is the storage slot holding the chat transcript of scope.
func ChatKey(scope string) string { return chatKeyPrefix + scope }

// Adapter reads and writes the slots of one scope.
type Adapter struct {
	store  cache.Store
	scope  string
	ttl    time.Duration
	logger *zap.Logger
}

// NewAdapter binds store to scope. A zero ttl keeps slots until cleared.
func NewAdapter(store cache.Store, scope string, ttl time.Duration, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		store:  store,
		scope:  scope,
		ttl:    ttl,
		logger: logger.With(zap.String("scope", scope)),
	}
}

// Scope returns the scope this adapter is bound to.
func (a *Adapter) Scope() string { return a.scope }

// LoadUser returns the stored session user. Missing, unreadable or malformed slots yield
// (nil, false); a malformed slot is cleared.
func (a *Adapter) LoadUser(ctx context.Context) (*model.User, bool) {
	key := UserKey(a.scope)
	data, err := a.store.Get(ctx, key)
	if err != nil || data == nil {
		return nil, false
	}
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil || user.ID == "" {
		a.logger.Warn("discarding malformed session slot", zap.Error(err))
		_ = a.store.Delete(ctx, key)
		return nil, false
	}
	return &user, true
}

// SaveUser overwrites the session slot.
func (a *Adapter) SaveUser(ctx context.Context, user *model.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}
	return a.store.Set(ctx, UserKey(a.scope), payload, a.ttl)
}

// ClearUser removes the session slot.
func (a *Adapter) ClearUser(ctx context.Context) error {
	return a.store.Delete(ctx, UserKey(a.scope))
}

// LoadChat returns the stored transcript, or an empty one when the slot is missing or malformed.
func (a *Adapter) LoadChat(ctx context.Context) []model.ChatMessage {
	key := ChatKey(a.scope)
	data, err := a.store.Get(ctx, key)
	if err != nil || data == nil {
		return []model.ChatMessage{}
	}
	var msgs []model.ChatMessage
	if err := json.Unmarshal(data, &msgs); err != nil || msgs == nil {
		a.logger.Warn("discarding malformed chat history", zap.Error(err))
		_ = a.store.Delete(ctx, key)
		return []model.ChatMessage{}
	}
	return msgs
}

// SaveChat overwrites the transcript slot.
func (a *Adapter) SaveChat(ctx context.Context, msgs []model.ChatMessage) error {
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	payload, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("marshal chat history: %w", err)
	}
	return a.store.Set(ctx, ChatKey(a.scope), payload, a.ttl)
}

// ClearChat removes the transcript slot.
func (a *Adapter) ClearChat(ctx context.Context) error {
	return a.store.Delete(ctx, ChatKey(a.scope))
}

// Slots opens adapters that share one store and TTL.
type Slots struct {
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewSlots creates an adapter opener over store.
func NewSlots(store cache.Store, ttl time.Duration, logger *zap.Logger) *Slots {
	return &Slots{store: store, ttl: ttl, logger: logger}
}

// Open returns the adapter of scope.
func (s *Slots) Open(scope string) *Adapter {
	return NewAdapter(s.store, scope, s.ttl, s.logger)
}
