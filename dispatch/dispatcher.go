// Package dispatch implements the Platform Dispatcher (spec §4.6): it
// routes an AI decision (CHAT, CREATE_ORDER, NOTIFY) to the conversation's
// configured Platform over HTTP, behind a per-platform sliding-window rate
// limiter and a supersession guard that discards stale jobs before they
// reach the wire.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	rateLimitWindow = time.Minute
	httpTimeout     = 30 * time.Second
)

// Config is the subset of store.Platform the dispatcher needs.
type Config struct {
	ID                 string
	BaseURL            string
	RateLimitPerMinute int
	AuthRequired       bool
	AuthToken          string
}

// LockChecker lets the dispatcher re-read the conversation's lock
// immediately before executing an action (§4.6 "Supersession guard").
type LockChecker interface {
	CurrentJobID(ctx context.Context, conversationID string) (jobID string, ok bool, err error)
}

// Request is one dispatch attempt.
type Request struct {
	ConversationID string
	JobID          string
	Action         string
	Data           json.RawMessage
	Platform       Config
}

// Result is the outcome of a dispatch attempt (§4.6, §7).
type Result struct {
	Success bool
	Status  string // "completed", "superseded", "rate_limited", "dispatch_error"
	Error   string
}

const (
	StatusCompleted  = "completed"
	StatusSuperseded = "superseded"
	StatusRateLimit  = "rate_limited"
	StatusDispatch   = "dispatch_error"
)

// Recorder is the optional metrics hook Dispatch calls for each routed
// action (RecordDispatch) and each rate-limited attempt (RecordRateLimited);
// superseded, lock-lookup-error and unknown-action attempts are not recorded.
// Satisfied by *metrics.PrometheusExporter; nil by default in tests.
type Recorder interface {
	RecordDispatch(action, status string, latency time.Duration)
	RecordRateLimited(platformID string)
}

// Dispatcher routes AI decisions to platforms.
type Dispatcher struct {
	locks    LockChecker
	client   *http.Client
	limiters sync.Map // platform id -> *SlidingWindowLimiter
	metrics  Recorder
}

// New constructs a Dispatcher. locks must be non-nil.
func New(locks LockChecker) *Dispatcher {
	return &Dispatcher{
		locks:  locks,
		client: &http.Client{Timeout: httpTimeout},
	}
}

// WithMetrics attaches a Recorder, returning the Dispatcher for chaining.
func (d *Dispatcher) WithMetrics(m Recorder) *Dispatcher {
	d.metrics = m
	return d
}

func (d *Dispatcher) limiterFor(platform Config) *SlidingWindowLimiter {
	if l, ok := d.limiters.Load(platform.ID); ok {
		return l.(*SlidingWindowLimiter)
	}
	l := NewSlidingWindowLimiter(platform.RateLimitPerMinute, rateLimitWindow)
	actual, _ := d.limiters.LoadOrStore(platform.ID, l)
	return actual.(*SlidingWindowLimiter)
}

// Dispatch executes req.Action against req.Platform, guarding on
// supersession and rate limiting (§4.6).
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) *Result {
	if superseded, err := d.isSuperseded(ctx, req); err != nil {
		return &Result{Status: StatusDispatch, Error: err.Error()}
	} else if superseded {
		return &Result{Status: StatusSuperseded}
	}

	limiter := d.limiterFor(req.Platform)
	now := time.Now()
	if !limiter.Allow(now) {
		if d.metrics != nil {
			d.metrics.RecordRateLimited(req.Platform.ID)
		}
		return &Result{Success: false, Status: StatusRateLimit, Error: "Rate limit exceeded"}
	}

	start := time.Now()
	var result *Result
	switch req.Action {
	case "CHAT":
		result = d.doChat(ctx, req)
	case "CREATE_ORDER":
		result = d.doCreateOrder(ctx, req)
	case "NOTIFY":
		result = d.doNotify(ctx, req)
	default:
		return &Result{Success: false, Status: StatusDispatch, Error: "Unknown action type: " + req.Action}
	}
	if d.metrics != nil {
		d.metrics.RecordDispatch(req.Action, result.Status, time.Since(start))
	}

	if result.Success {
		limiter.Record(now)
	}
	return result
}

// isSuperseded re-reads the conversation's lock and compares its current
// ai_job_id against req.JobID (§4.6 "Supersession guard").
func (d *Dispatcher) isSuperseded(ctx context.Context, req Request) (bool, error) {
	jobID, ok, err := d.locks.CurrentJobID(ctx, req.ConversationID)
	if err != nil {
		return false, errors.Wrap(err, "dispatch: lock lookup failed")
	}
	if !ok {
		return true, nil
	}
	return jobID != req.JobID, nil
}

func (d *Dispatcher) doRequest(ctx context.Context, platform Config, path string, body any) ([]byte, int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to marshal dispatch request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, platform.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to construct dispatch request")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	if platform.AuthRequired {
		httpReq.Header.Set("Authorization", "Bearer "+platform.AuthToken)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to call platform endpoint %s", path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "failed to read platform response")
	}
	return respBody, resp.StatusCode, nil
}
