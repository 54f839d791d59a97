package chat

import (
	"context"
	"strings"
	"time"

	"krishi/internal/model"
)

// DefaultMockDelay imitates the think time of a real assistant.
const DefaultMockDelay = 500 * time.Millisecond

// MockResponder answers from a fixed set of keyword rules.
type MockResponder struct {
	Delay time.Duration
}

// Reply answers the most recent user turn.
func (m MockResponder) Reply(ctx context.Context, turns []Turn) (string, error) {
	prompt := ""
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == model.ChatRoleUser {
			prompt = turns[i].Content
			break
		}
	}
	answer := Answer(prompt)

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return answer, nil
}

// Answer picks the canned reply for prompt. Rules are checked in order; the first match wins.
func Answer(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "crop") && strings.Contains(lower, "best"):
		return "Based on typical Karnataka conditions, consider ragi, paddy, or tur dal. For specific advice, share your district, soil type, and season."
	case strings.Contains(lower, "price") || strings.Contains(lower, "market"):
		return "Crop prices vary by APMC market. Check today’s MSP and local mandi rates. You can also look at our Market Intelligence section for trends."
	case strings.Contains(lower, "disease") || strings.Contains(lower, "leaf"):
		return "For disease issues, inspect for spots, discoloration, or wilting. Share a photo in the AI Predictions section for precise detection, and isolate affected plants meanwhile."
	case strings.Contains(lower, "fertilizer") || strings.Contains(lower, "urea"):
		return "Use balanced NPK as per soil test. Without a test, start low and observe. Ensure proper irrigation and avoid overuse to prevent burn."
	default:
		return "I am here to help with crops, soil, weather, prices, and diseases. Ask anything or tell me your district and crop for tailored guidance."
	}
}
