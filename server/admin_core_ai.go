package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/chatrelay/store"
)

type createCoreAIRequest struct {
	Name           string         `json:"name"`
	APIEndpoint    string         `json:"api_endpoint"`
	AuthRequired   bool           `json:"auth_required"`
	AuthToken      string         `json:"auth_token"`
	TimeoutSeconds int            `json:"timeout_seconds"`
	IsActive       bool           `json:"is_active"`
	MetaData       map[string]any `json:"meta_data"`
}

func (h *adminHandlers) createCoreAI(c echo.Context) error {
	var req createCoreAIRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if req.Name == "" || req.APIEndpoint == "" {
		return badRequest(c, "name and api_endpoint are required")
	}
	if req.TimeoutSeconds <= 0 {
		req.TimeoutSeconds = 30
	}
	created, err := h.store.CreateCoreAI(c.Request().Context(), &store.CoreAI{
		Name:           req.Name,
		APIEndpoint:    req.APIEndpoint,
		AuthRequired:   req.AuthRequired,
		AuthToken:      req.AuthToken,
		TimeoutSeconds: req.TimeoutSeconds,
		IsActive:       req.IsActive,
		MetaData:       req.MetaData,
	})
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, created)
}

func (h *adminHandlers) getCoreAI(c echo.Context) error {
	ai, err := h.store.GetCoreAI(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, ai)
}

func (h *adminHandlers) listCoreAI(c echo.Context) error {
	var find store.FindCoreAI
	if name := c.QueryParam("name"); name != "" {
		find.Name = &name
	}
	if active := c.QueryParam("is_active"); active != "" {
		v := active == "true"
		find.IsActive = &v
	}
	list, err := h.store.ListCoreAIs(c.Request().Context(), &find)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

type updateCoreAIRequest struct {
	Name           *string        `json:"name"`
	APIEndpoint    *string        `json:"api_endpoint"`
	AuthRequired   *bool          `json:"auth_required"`
	AuthToken      *string        `json:"auth_token"`
	TimeoutSeconds *int           `json:"timeout_seconds"`
	IsActive       *bool          `json:"is_active"`
	MetaData       map[string]any `json:"meta_data"`
}

func (h *adminHandlers) updateCoreAI(c echo.Context) error {
	var req updateCoreAIRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	updated, err := h.store.UpdateCoreAI(c.Request().Context(), &store.UpdateCoreAI{
		ID:             c.Param("id"),
		Name:           req.Name,
		APIEndpoint:    req.APIEndpoint,
		AuthRequired:   req.AuthRequired,
		AuthToken:      req.AuthToken,
		TimeoutSeconds: req.TimeoutSeconds,
		IsActive:       req.IsActive,
		MetaData:       req.MetaData,
	})
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// deleteCoreAI hard-deletes a CoreAI. Spec §3: only when no active Bot
// references it; the Driver enforces the FK and returns ErrConflict.
func (h *adminHandlers) deleteCoreAI(c echo.Context) error {
	if err := h.store.DeleteCoreAI(c.Request().Context(), c.Param("id")); err != nil {
		return respondStoreError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
