package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/chatrelay/store"
)

type createPlatformRequest struct {
	Name               string         `json:"name"`
	BaseURL            string         `json:"base_url"`
	RateLimitPerMinute int            `json:"rate_limit_per_minute"`
	AuthRequired       bool           `json:"auth_required"`
	AuthToken          string         `json:"auth_token"`
	IsActive           bool           `json:"is_active"`
	MetaData           map[string]any `json:"meta_data"`
}

func (h *adminHandlers) createPlatform(c echo.Context) error {
	var req createPlatformRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if req.Name == "" || req.BaseURL == "" {
		return badRequest(c, "name and base_url are required")
	}
	if req.RateLimitPerMinute <= 0 {
		req.RateLimitPerMinute = 60
	}
	created, err := h.store.CreatePlatform(c.Request().Context(), &store.Platform{
		Name:               req.Name,
		BaseURL:            req.BaseURL,
		RateLimitPerMinute: req.RateLimitPerMinute,
		AuthRequired:       req.AuthRequired,
		AuthToken:          req.AuthToken,
		IsActive:           req.IsActive,
		MetaData:           req.MetaData,
	})
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, created)
}

func (h *adminHandlers) getPlatform(c echo.Context) error {
	p, err := h.store.GetPlatform(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *adminHandlers) listPlatform(c echo.Context) error {
	var find store.FindPlatform
	if name := c.QueryParam("name"); name != "" {
		find.Name = &name
	}
	if active := c.QueryParam("is_active"); active != "" {
		v := active == "true"
		find.IsActive = &v
	}
	list, err := h.store.ListPlatforms(c.Request().Context(), &find)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

type updatePlatformRequest struct {
	Name               *string        `json:"name"`
	BaseURL            *string        `json:"base_url"`
	RateLimitPerMinute *int           `json:"rate_limit_per_minute"`
	AuthRequired       *bool          `json:"auth_required"`
	AuthToken          *string        `json:"auth_token"`
	IsActive           *bool          `json:"is_active"`
	MetaData           map[string]any `json:"meta_data"`
}

func (h *adminHandlers) updatePlatform(c echo.Context) error {
	var req updatePlatformRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	updated, err := h.store.UpdatePlatform(c.Request().Context(), &store.UpdatePlatform{
		ID:                 c.Param("id"),
		Name:               req.Name,
		BaseURL:            req.BaseURL,
		RateLimitPerMinute: req.RateLimitPerMinute,
		AuthRequired:       req.AuthRequired,
		AuthToken:          req.AuthToken,
		IsActive:           req.IsActive,
		MetaData:           req.MetaData,
	})
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *adminHandlers) deletePlatform(c echo.Context) error {
	if err := h.store.DeletePlatform(c.Request().Context(), c.Param("id")); err != nil {
		return respondStoreError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
