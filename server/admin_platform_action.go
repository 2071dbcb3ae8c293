package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/chatrelay/store"
)

type createPlatformActionRequest struct {
	Name     string `json:"name"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	IsActive bool   `json:"is_active"`
}

func (h *adminHandlers) createPlatformAction(c echo.Context) error {
	var req createPlatformActionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if req.Name == "" || req.Path == "" {
		return badRequest(c, "name and path are required")
	}
	method := store.PlatformActionMethod(req.Method)
	switch method {
	case store.PlatformActionMethodGet, store.PlatformActionMethodPost, store.PlatformActionMethodPut, store.PlatformActionMethodDelete:
	default:
		return badRequest(c, "method must be one of GET, POST, PUT, DELETE")
	}
	created, err := h.store.CreatePlatformAction(c.Request().Context(), &store.PlatformAction{
		PlatformID: c.Param("id"),
		Name:       req.Name,
		Method:     method,
		Path:       req.Path,
		IsActive:   req.IsActive,
	})
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, created)
}

func (h *adminHandlers) listPlatformActions(c echo.Context) error {
	platformID := c.Param("id")
	list, err := h.store.ListPlatformActions(c.Request().Context(), &store.FindPlatformAction{PlatformID: &platformID})
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

type updatePlatformActionRequest struct {
	Name     *string `json:"name"`
	Method   *string `json:"method"`
	Path     *string `json:"path"`
	IsActive *bool   `json:"is_active"`
}

func (h *adminHandlers) updatePlatformAction(c echo.Context) error {
	var req updatePlatformActionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	update := &store.UpdatePlatformAction{ID: c.Param("id"), Name: req.Name, Path: req.Path, IsActive: req.IsActive}
	if req.Method != nil {
		m := store.PlatformActionMethod(*req.Method)
		update.Method = &m
	}
	updated, err := h.store.UpdatePlatformAction(c.Request().Context(), update)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *adminHandlers) deletePlatformAction(c echo.Context) error {
	if err := h.store.DeletePlatformAction(c.Request().Context(), c.Param("id")); err != nil {
		return respondStoreError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
