package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/chatrelay/store"
)

type createBotRequest struct {
	Name       string `json:"name"`
	Language   string `json:"language"`
	IsActive   bool   `json:"is_active"`
	CoreAIID   string `json:"core_ai_id"`
	PlatformID string `json:"platform_id"`
}

// createBot enforces spec §3's Bot creation invariant: both the
// referenced CoreAI and Platform must be active at create time.
func (h *adminHandlers) createBot(c echo.Context) error {
	var req createBotRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if req.Name == "" || req.CoreAIID == "" || req.PlatformID == "" {
		return badRequest(c, "name, core_ai_id and platform_id are required")
	}

	ctx := c.Request().Context()
	ai, err := h.store.GetCoreAI(ctx, req.CoreAIID)
	if err != nil {
		return respondStoreError(c, err)
	}
	if !ai.IsActive {
		return badRequest(c, "core_ai_id must reference an active CoreAI")
	}
	platform, err := h.store.GetPlatform(ctx, req.PlatformID)
	if err != nil {
		return respondStoreError(c, err)
	}
	if !platform.IsActive {
		return badRequest(c, "platform_id must reference an active Platform")
	}

	created, err := h.store.CreateBot(ctx, &store.Bot{
		Name:       req.Name,
		Language:   req.Language,
		IsActive:   req.IsActive,
		CoreAIID:   req.CoreAIID,
		PlatformID: req.PlatformID,
	})
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, created)
}

func (h *adminHandlers) getBot(c echo.Context) error {
	b, err := h.store.GetBot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *adminHandlers) listBot(c echo.Context) error {
	var find store.FindBot
	if name := c.QueryParam("name"); name != "" {
		find.Name = &name
	}
	if active := c.QueryParam("is_active"); active != "" {
		v := active == "true"
		find.IsActive = &v
	}
	list, err := h.store.ListBots(c.Request().Context(), &find)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

type updateBotRequest struct {
	Name       *string `json:"name"`
	Language   *string `json:"language"`
	IsActive   *bool   `json:"is_active"`
	CoreAIID   *string `json:"core_ai_id"`
	PlatformID *string `json:"platform_id"`
}

func (h *adminHandlers) updateBot(c echo.Context) error {
	var req updateBotRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	updated, err := h.store.UpdateBot(c.Request().Context(), &store.UpdateBot{
		ID:         c.Param("id"),
		Name:       req.Name,
		Language:   req.Language,
		IsActive:   req.IsActive,
		CoreAIID:   req.CoreAIID,
		PlatformID: req.PlatformID,
	})
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// deleteBot fails with ErrConflict if any Conversation still references
// the bot (spec §3). The Driver enforces this.
func (h *adminHandlers) deleteBot(c echo.Context) error {
	if err := h.store.DeleteBot(c.Request().Context(), c.Param("id")); err != nil {
		return respondStoreError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
