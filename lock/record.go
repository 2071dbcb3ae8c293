// Package lock implements the per-conversation distributed mutex with
// attached job metadata described in §4.3: CheckAndAcquire, AttachJob,
// Release, GetInfo, CleanupStale, backed by a composite Backend that
// prefers a distributed store and falls back to an in-process map.
package lock

import "time"

// TTL is the lock record's lifetime in the shared store (§3: 1 hour,
// self-healing on crash per §5).
const TTL = time.Hour

// Record is the shared-store lock record (§3, not a DB entity).
type Record struct {
	ConversationID   string `json:"conversation_id"`
	LockID           string `json:"lock_id"`
	HistoryHash      string `json:"history_hash"`
	CreatedAt        int64  `json:"created_at"`
	UpdatedAt        int64  `json:"updated_at"`
	AIJobID          string `json:"ai_job_id,omitempty"`
	PreviousAIJobID  string `json:"previous_ai_job_id,omitempty"`
	ConsolidatedCount int   `json:"consolidated_count"`
}

// DecisionKind distinguishes the two CheckAndAcquire outcomes.
type DecisionKind string

const (
	DecisionAcquired   DecisionKind = "acquired"
	DecisionSuperseded DecisionKind = "superseded"
)

// Decision is the result of CheckAndAcquire (§4.3).
type Decision struct {
	Kind              DecisionKind
	LockID            string
	PreviousAIJobID   string // set only when Kind == DecisionSuperseded
	ConsolidatedCount int
	UsedFallbackLock  bool // true when the CAS was contested and a fallback lock_id was minted
}
