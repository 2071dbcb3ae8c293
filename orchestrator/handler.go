// Package orchestrator implements the Message Handler (spec §4.7): the
// top-level, state-free pipeline that diffs a conversation's incoming
// history, resolves its Bot/CoreAI/Platform configuration, makes the
// lock decision, and schedules (or supersedes) the AI job that will
// eventually dispatch an action to the platform.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hrygo/chatrelay/configstore"
	"github.com/hrygo/chatrelay/dispatch"
	"github.com/hrygo/chatrelay/history"
	"github.com/hrygo/chatrelay/historycache"
	"github.com/hrygo/chatrelay/jobs"
	"github.com/hrygo/chatrelay/lock"
	"github.com/hrygo/chatrelay/store"
)

// Request is the Handle() input (spec §6.1 body).
type Request struct {
	ConversationID string
	History        string
	Resources      map[string]any
	BotID          string
}

// Response is the Handle() output (spec §4.7 step 8, §6.1 response shape).
type Response struct {
	Success              bool
	Status               string
	Error                string
	AIJobID              string
	LockID               string
	ConversationID        string
	ConsolidatedMessages int
	ConsolidatedCount    int
	BotName              string
	Message              string
	CancelledPreviousJob string
	Reprocessing         bool
}

const (
	StatusStarted      = "ai_processing_started"
	StatusReprocessing = "reprocessing"
	StatusFailed       = "failed"
)

// Launcher starts a job's background worker run; satisfied by
// *worker.Worker, swappable in tests.
type Launcher interface {
	Launch(jobID string)
}

// Handler is the Message Handler. Constructed once at startup with
// explicit dependencies (spec §9: no global singletons).
type Handler struct {
	store   *store.Store
	config  *configstore.Store
	locks   *lock.Manager
	jobs    *jobs.Registry
	history *historycache.Cache
	worker  Launcher
}

// New wires the Message Handler's dependencies.
func New(db *store.Store, config *configstore.Store, locks *lock.Manager, registry *jobs.Registry, hc *historycache.Cache, w Launcher) *Handler {
	return &Handler{store: db, config: config, locks: locks, jobs: registry, history: hc, worker: w}
}

// Handle runs the pipeline described in spec §4.7 and §2's control flow.
func (h *Handler) Handle(ctx context.Context, req Request) *Response {
	convID := req.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}

	h0, err := h.processedHistory(ctx, convID)
	if err != nil {
		slog.Error("orchestrator: failed to resolve processed history", "conversation_id", convID, "error", err)
		h.releaseOnFailure(ctx, convID)
		return &Response{Success: false, Status: StatusFailed, Error: err.Error(), ConversationID: convID}
	}

	delta := history.Diff(req.History, h0)
	messages := history.Parse(delta)

	bot := h.resolveBot(ctx, req.BotID, convID)
	coreAI := h.config.GetCoreAI(ctx, bot.CoreAIID)
	platform := h.config.GetPlatform(ctx, bot.PlatformID)

	decision, err := h.locks.CheckAndAcquire(ctx, convID, delta)
	if err != nil {
		slog.Error("orchestrator: lock acquisition failed", "conversation_id", convID, "error", err)
		h.releaseOnFailure(ctx, convID)
		return &Response{Success: false, Status: StatusFailed, Error: err.Error(), ConversationID: convID}
	}

	var cancelledPrevious string
	if decision.Kind == lock.DecisionSuperseded && decision.PreviousAIJobID != "" {
		if _, err := h.jobs.CancelJob(ctx, decision.PreviousAIJobID); err != nil {
			slog.Warn("orchestrator: failed to cancel superseded job", "conversation_id", convID, "job_id", decision.PreviousAIJobID, "error", err)
		}
		cancelledPrevious = decision.PreviousAIJobID
	}

	jobMessages := make([]jobs.MessageInput, len(messages))
	for i, m := range messages {
		jobMessages[i] = jobs.MessageInput{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
	}

	jobID, err := h.jobs.CreateJob(ctx, jobs.Payload{
		ConversationID: convID,
		LockID:         decision.LockID,
		Messages:       jobMessages,
		Bot:            jobs.BotInfo{ID: bot.ID, Name: bot.Name},
		AIConfig: aiclientConfig(coreAI),
		PlatformConfig: dispatch.Config{
			ID:                 platform.ID,
			BaseURL:            platform.BaseURL,
			RateLimitPerMinute: platform.RateLimitPerMinute,
			AuthRequired:       platform.AuthRequired,
			AuthToken:          platform.AuthToken,
		},
		Resources:   req.Resources,
		FullHistory: req.History,
	})
	if err != nil {
		slog.Error("orchestrator: failed to create job", "conversation_id", convID, "error", err)
		h.releaseOnFailure(ctx, convID)
		return &Response{Success: false, Status: StatusFailed, Error: err.Error(), ConversationID: convID}
	}

	if err := h.locks.AttachJob(ctx, convID, jobID); err != nil {
		slog.Error("orchestrator: failed to attach job to lock", "conversation_id", convID, "job_id", jobID, "error", err)
		h.releaseOnFailure(ctx, convID)
		return &Response{Success: false, Status: StatusFailed, Error: err.Error(), ConversationID: convID}
	}

	// Cache the full history, not the delta (§4.7 step 7).
	if err := h.history.Set(ctx, convID, req.History); err != nil {
		slog.Warn("orchestrator: failed to cache processed history", "conversation_id", convID, "error", err)
	}

	h.worker.Launch(jobID)

	status := StatusStarted
	reprocessing := false
	if decision.Kind == lock.DecisionSuperseded {
		status = StatusReprocessing
		reprocessing = true
	}

	return &Response{
		Success:              true,
		Status:               status,
		AIJobID:              jobID,
		LockID:               decision.LockID,
		ConversationID:       convID,
		ConsolidatedMessages: len(messages),
		ConsolidatedCount:    decision.ConsolidatedCount,
		BotName:              bot.Name,
		Message:              "accepted",
		CancelledPreviousJob: cancelledPrevious,
		Reprocessing:         reprocessing,
	}
}

// processedHistory resolves H0: the cache first, the Conversation row on
// a cache miss, or "" for a conversation never seen before (§4.7 step 1).
func (h *Handler) processedHistory(ctx context.Context, convID string) (string, error) {
	if cached, ok, err := h.history.Get(ctx, convID); err != nil {
		return "", err
	} else if ok {
		return cached, nil
	}

	conv, err := h.store.GetConversationByExternalID(ctx, convID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return conv.History, nil
}

// resolveBot honors an explicit bot_id (spec §6.1 request shape) before
// falling back to the conversation's bound Bot.
func (h *Handler) resolveBot(ctx context.Context, botIDHint, convID string) *store.Bot {
	if botIDHint != "" {
		return h.config.GetBotByID(ctx, botIDHint)
	}
	return h.config.GetBotForConversation(ctx, convID)
}

func (h *Handler) releaseOnFailure(ctx context.Context, convID string) {
	if _, err := h.locks.Release(ctx, convID); err != nil {
		slog.Error("orchestrator: failed to release lock on failure path", "conversation_id", convID, "error", err)
	}
}
