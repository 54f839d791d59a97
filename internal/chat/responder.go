// Package chat produces assistant replies, either from a configured HTTP endpoint or from a
// built-in keyword responder.
package chat

import (
	"context"

	"krishi/internal/model"
)

const (
	// FailureReply is added to the transcript when the assistant endpoint cannot be reached.
	FailureReply = "There was an error reaching the AI service. Please try again later."
	// UnclearReply is used when the endpoint answers without a reply or message field.
	UnclearReply = "Sorry, I could not understand. Please try again."
)

// Turn is one transcript entry as sent to the assistant endpoint.
type Turn struct {
	Role    model.ChatRole `json:"role"`
	Content string         `json:"content"`
}

// Responder answers the last user turn of a transcript.
type Responder interface {
	Reply(ctx context.Context, turns []Turn) (string, error)
}

// Turns strips a transcript down to what the assistant sees.
func Turns(msgs []model.ChatMessage) []Turn {
	turns := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}
