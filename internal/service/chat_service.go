package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"krishi/internal/chat"
	apperrors "krishi/internal/errors"
	"krishi/internal/model"
	"krishi/internal/persist"
)

// ChatService keeps one assistant transcript per scope.
type ChatService interface {
	History(ctx context.Context, scope string) []model.ChatMessage
	// Send appends text and the assistant's reply to the transcript and returns both entries.
	Send(ctx context.Context, scope, text string) ([]model.ChatMessage, error)
	Clear(ctx context.Context, scope string) error
}

// TranscriptStore opens the transcript slot of a scope.
type TranscriptStore func(scope string) Transcript

// Transcript is the persisted chat history of one scope.
type Transcript interface {
	LoadChat(ctx context.Context) []model.ChatMessage
	SaveChat(ctx context.Context, msgs []model.ChatMessage) error
	ClearChat(ctx context.Context) error
}

// AdapterTranscripts opens transcripts through persist adapters.
func AdapterTranscripts(open func(scope string) *persist.Adapter) TranscriptStore {
	return func(scope string) Transcript { return open(scope) }
}

type chatService struct {
	transcripts TranscriptStore
	responder   chat.Responder
	timeout     time.Duration
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewChatService creates a chat service. timeout bounds each assistant call; zero means no bound
// beyond the responder's own.
func NewChatService(transcripts TranscriptStore, responder chat.Responder, timeout time.Duration, logger *zap.Logger) ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &chatService{
		transcripts: transcripts,
		responder:   responder,
		timeout:     timeout,
		logger:      logger,
		now:         time.Now,
		inFlight:    make(map[string]bool),
	}
}

func (s *chatService) History(ctx context.Context, scope string) []model.ChatMessage {
	return s.transcripts(scope).LoadChat(ctx)
}

func (s *chatService) Send(ctx context.Context, scope, text string) ([]model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrEmptyMessage
	}
	if !s.acquire(scope) {
		return nil, apperrors.ErrBusy
	}
	defer s.release(scope)

	// A caller going away does not cut the exchange short.
	ctx = context.WithoutCancel(ctx)
	transcript := s.transcripts(scope)

	question := s.message(model.ChatRoleUser, text)
	history := append(transcript.LoadChat(ctx), question)
	if err := transcript.SaveChat(ctx, history); err != nil {
		s.logger.Warn("save chat history", zap.String("scope", scope), zap.Error(err))
	}

	reply, err := s.ask(ctx, history)
	if err != nil {
		s.logger.Warn("assistant unavailable", zap.String("scope", scope), zap.Error(err))
		reply = chat.FailureReply
	}

	answer := s.message(model.ChatRoleAssistant, reply)
	history = append(history, answer)
	if err := transcript.SaveChat(ctx, history); err != nil {
		s.logger.Warn("save chat history", zap.String("scope", scope), zap.Error(err))
	}
	return []model.ChatMessage{question, answer}, nil
}

// Clear empties the transcript. It is refused while a send is in flight.
func (s *chatService) Clear(ctx context.Context, scope string) error {
	if !s.acquire(scope) {
		return apperrors.ErrBusy
	}
	defer s.release(scope)
	return s.transcripts(scope).ClearChat(ctx)
}

func (s *chatService) ask(ctx context.Context, history []model.ChatMessage) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.responder.Reply(ctx, chat.Turns(history))
}

func (s *chatService) message(role model.ChatRole, content string) model.ChatMessage {
	return model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UnixMilli(),
	}
}

func (s *chatService) acquire(scope string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[scope] {
		return false
	}
	s.inFlight[scope] = true
	return true
}

func (s *chatService) release(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, scope)
}
