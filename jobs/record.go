// Package jobs implements the Job Registry (§4.4): tracking background
// AI jobs through pending → processing → completed/failed/cancelled,
// persisted as JSON in the shared store.
package jobs

import (
	"time"

	"github.com/hrygo/chatrelay/aiclient"
	"github.com/hrygo/chatrelay/dispatch"
)

// Status is a Job's lifecycle state (§3).
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// TTL is how long a terminal job record survives in the shared store (§3).
const TTL = time.Hour

// BotInfo is the bookkeeping subset of store.Bot carried in a job's
// payload; jobs does not depend on store to avoid a persistence import
// in the background-processing path.
type BotInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Payload is the job's input snapshot, fixed at CreateJob time (§4.7 step 6).
type Payload struct {
	ConversationID string          `json:"conversation_id"`
	LockID         string          `json:"lock_id"`
	Messages       []MessageInput  `json:"messages"`
	Bot            BotInfo         `json:"bot"`
	AIConfig       aiclient.Config `json:"ai_config"`
	PlatformConfig dispatch.Config `json:"platform_config"`
	Resources      map[string]any  `json:"resources,omitempty"`
	// FullHistory is the complete history string that produced Messages;
	// the worker advances the processed-history cache to this value on
	// successful completion (§4.4 step 4).
	FullHistory string `json:"full_history"`
}

// MessageInput is one message handed to the job, independent of the
// history package's richer internal representation.
type MessageInput struct {
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Timestamp float64 `json:"timestamp"`
}

// Record is the persisted job state (§3).
type Record struct {
	JobID            string  `json:"job_id"`
	ConversationID   string  `json:"conversation_id"`
	LockID           string  `json:"lock_id"`
	Status           Status  `json:"status"`
	Payload          Payload `json:"payload"`
	CreatedAt        int64   `json:"created_at"`
	UpdatedAt        int64   `json:"updated_at"`
	Result           any     `json:"result,omitempty"`
	Error            string  `json:"error,omitempty"`
	ProcessingTimeMs int64   `json:"processing_time_ms,omitempty"`
}

func (r *Record) IsTerminal() bool {
	switch r.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}
