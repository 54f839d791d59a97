package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxReplyBytes caps how much of an endpoint response is read.
const maxReplyBytes = 1 << 20

type remoteRequest struct {
	Messages []Turn `json:"messages"`
}

type remoteResponse struct {
	Reply   *string `json:"reply"`
	Message *string `json:"message"`
}

// RemoteResponder posts the transcript to an assistant endpoint.
type RemoteResponder struct {
	endpoint string
	client   *http.Client
}

// NewRemoteResponder creates a responder for endpoint. Every call is bounded by timeout.
func NewRemoteResponder(endpoint string, timeout time.Duration) *RemoteResponder {
	return &RemoteResponder{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Reply sends turns and returns the endpoint's "reply", else its "message", else UnclearReply.
// Transport errors, non-2xx statuses and malformed bodies are all reported as errors.
func (r *RemoteResponder) Reply(ctx context.Context, turns []Turn) (string, error) {
	payload, err := json.Marshal(remoteRequest{Messages: turns})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("chat endpoint returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var out remoteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	switch {
	case out.Reply != nil:
		return *out.Reply, nil
	case out.Message != nil:
		return *out.Message, nil
	default:
		return UnclearReply, nil
	}
}
