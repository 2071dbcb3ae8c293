package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/chatrelay/store"
)

// Conversations are chiefly created by the core's intake paths
// (orchestrator, channel plugins); the admin surface here covers the
// inspection/maintenance operations an operator needs (spec §9 Design
// Notes: "whether [the admin conversation module] is a planned surface
// or dead code is unclear" — SPEC_FULL §9 resolves this as a thin CRUD
// surface, not a commented-out stub).

type createConversationRequest struct {
	ConversationID string         `json:"conversation_id"`
	BotID          string         `json:"bot_id"`
	Context        map[string]any `json:"context"`
}

func (h *adminHandlers) createConversation(c echo.Context) error {
	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if req.ConversationID == "" || req.BotID == "" {
		return badRequest(c, "conversation_id and bot_id are required")
	}
	created, err := h.store.CreateConversation(c.Request().Context(), &store.Conversation{
		ConversationID: req.ConversationID,
		BotID:          req.BotID,
		Context:        req.Context,
	})
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, created)
}

func (h *adminHandlers) getConversation(c echo.Context) error {
	conv, err := h.store.GetConversation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, conv)
}

func (h *adminHandlers) listConversation(c echo.Context) error {
	var find store.FindConversation
	if botID := c.QueryParam("bot_id"); botID != "" {
		find.BotID = &botID
	}
	if status := c.QueryParam("status"); status != "" {
		s := store.ConversationStatus(status)
		find.Status = &s
	}
	list, err := h.store.ListConversations(c.Request().Context(), &find)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

type updateConversationRequest struct {
	Status  *string        `json:"status"`
	Context map[string]any `json:"context"`
}

func (h *adminHandlers) updateConversation(c echo.Context) error {
	var req updateConversationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	update := &store.UpdateConversation{ID: c.Param("id"), Context: req.Context}
	if req.Status != nil {
		s := store.ConversationStatus(*req.Status)
		update.Status = &s
	}
	updated, err := h.store.UpdateConversation(c.Request().Context(), update)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *adminHandlers) deleteConversation(c echo.Context) error {
	if err := h.store.DeleteConversation(c.Request().Context(), c.Param("id")); err != nil {
		return respondStoreError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
