package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/chatrelay/orchestrator"
)

// chatMessageRequest is the inbound body for POST /api/v1/chat/message
// (spec §6.1).
type chatMessageRequest struct {
	ConversationID string         `json:"conversation_id"`
	History        string         `json:"history"`
	Resources      map[string]any `json:"resources"`
	BotID          string         `json:"bot_id"`
}

// chatMessageResponse mirrors spec §6.1's response shape. It is the one
// place a typed orchestrator.Response becomes a JSON envelope.
type chatMessageResponse struct {
	Success              bool   `json:"success"`
	Status               string `json:"status"`
	Error                string `json:"error,omitempty"`
	AIJobID              string `json:"ai_job_id,omitempty"`
	LockID               string `json:"lock_id"`
	ConversationID       string `json:"conversation_id"`
	ConsolidatedMessages int    `json:"consolidated_messages"`
	ConsolidatedCount    int    `json:"consolidated_count"`
	BotName              string `json:"bot_name,omitempty"`
	Message              string `json:"message,omitempty"`
	CancelledPreviousJob string `json:"cancelled_previous_job,omitempty"`
	Reprocessing         bool   `json:"reprocessing,omitempty"`
}

// handleChatMessage is the thin handler invoking orchestrator.Handler.Handle
// (spec §1: "a thin handler invoking the core"). Validation failures return
// 400; orchestrator failures return 500; every accepted or superseded
// arrival returns 200 (spec §6.1 status codes).
func (s *Server) handleChatMessage(c echo.Context) error {
	var req chatMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorEnvelope{Success: false, Error: "malformed request body"})
	}

	resp := s.handler.Handle(c.Request().Context(), orchestrator.Request{
		ConversationID: req.ConversationID,
		History:        req.History,
		Resources:      req.Resources,
		BotID:          req.BotID,
	})

	body := chatMessageResponse{
		Success:              resp.Success,
		Status:               resp.Status,
		Error:                resp.Error,
		AIJobID:              resp.AIJobID,
		LockID:               resp.LockID,
		ConversationID:       resp.ConversationID,
		ConsolidatedMessages: resp.ConsolidatedMessages,
		ConsolidatedCount:    resp.ConsolidatedCount,
		BotName:              resp.BotName,
		Message:              resp.Message,
		CancelledPreviousJob: resp.CancelledPreviousJob,
		Reprocessing:         resp.Reprocessing,
	}

	if !resp.Success {
		return c.JSON(http.StatusInternalServerError, body)
	}
	return c.JSON(http.StatusOK, body)
}
