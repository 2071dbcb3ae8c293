// Package aiclient implements the AI Client (§4.5): a single stateless
// HTTP call to a conversation's configured CoreAI endpoint.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/chatrelay/history"
)

// Config is the subset of store.CoreAI the AI Client needs, kept
// independent of the store package so aiclient has no persistence
// dependency.
type Config struct {
	APIEndpoint    string
	AuthRequired   bool
	AuthToken      string
	TimeoutSeconds int
}

// Request is the AI Client's input (§4.5).
type Request struct {
	ConversationID string
	LockIndex      int64
	Messages       []history.Message
	Resources      map[string]any
	Config         Config
}

// Result is the AI Client's output (§4.5); never an error return — a
// dependency failure is represented as Success=false with Error set.
type Result struct {
	Success          bool
	Action           string
	Data             json.RawMessage
	ProcessingTimeMs int64
	Error            string
}

// Client is the stateless HTTP caller. It holds no per-conversation state.
type Client struct{}

func NewClient() *Client {
	return &Client{}
}

type wirePayload struct {
	Index    int64          `json:"index"`
	Messages []wireMessage  `json:"messages"`
	Resource map[string]any `json:"resource"`
}

type wireMessage struct {
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Timestamp float64 `json:"timestamp"`
}

type wireResponse struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// roleForWire maps the history package's tag-derived roles to the AI
// endpoint's expected role vocabulary (§6.3): "bot" becomes "assistant".
func roleForWire(role string) string {
	if role == history.RoleBot {
		return "assistant"
	}
	return role
}

// Call invokes the configured AI endpoint for req (§4.5 steps 1-5).
func (c *Client) Call(ctx context.Context, req Request) *Result {
	endpoint := strings.ReplaceAll(req.Config.APIEndpoint, "{session_id}", req.ConversationID)

	resources := req.Resources
	if resources == nil {
		resources = map[string]any{}
	}

	wireMessages := make([]wireMessage, len(req.Messages))
	for i, m := range req.Messages {
		wireMessages[i] = wireMessage{Role: roleForWire(m.Role), Content: m.Content, Timestamp: m.Timestamp}
	}

	body, err := json.Marshal(wirePayload{Index: req.LockIndex, Messages: wireMessages, Resource: resources})
	if err != nil {
		return &Result{Error: errors.Wrap(err, "failed to marshal AI request").Error()}
	}

	timeout := time.Duration(req.Config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &Result{Error: errors.Wrap(err, "failed to construct AI request").Error()}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Config.AuthRequired {
		httpReq.Header.Set("Authorization", "Bearer "+req.Config.AuthToken)
	}

	client := &http.Client{Timeout: timeout}
	start := time.Now()
	resp, err := client.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return &Result{Error: errorsTimeoutMessage(req.Config.TimeoutSeconds)}
		}
		return &Result{Error: errors.Wrapf(err, "failed to call AI endpoint %s", endpoint).Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{Error: errors.Wrap(err, "failed to read AI response").Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		truncated := respBody
		if len(truncated) > 100 {
			truncated = truncated[:100]
		}
		return &Result{Error: errorsStatusMessage(resp.StatusCode, string(truncated))}
	}

	var parsed wireResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return &Result{Error: errors.Wrap(err, "failed to unmarshal AI response").Error()}
	}

	return &Result{
		Success:          true,
		Action:           parsed.Action,
		Data:             parsed.Data,
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	var t timeouter
	return errors.As(err, &t) && t.Timeout()
}

func errorsStatusMessage(code int, body string) string {
	return fmt.Sprintf("AI service returned %d: %s", code, body)
}

func errorsTimeoutMessage(timeoutSeconds int) string {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return fmt.Sprintf("AI service timeout after %ds", timeoutSeconds)
}
