package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// bearerAuth rejects requests whose Authorization header does not carry
// the expected bearer token. It guards /api/v1/admin/* (ADMIN_ACCESS_TOKEN)
// and /api/v1/chat/* (PLATFORM_ACCESS_TOKEN) per spec §6.6.
func bearerAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) || strings.TrimPrefix(header, prefix) != token {
				return c.JSON(http.StatusUnauthorized, errorEnvelope{Success: false, Error: "unauthorized"})
			}
			return next(c)
		}
	}
}

// errorEnvelope is the JSON shape for a failed request (spec §9: "prefer
// a generic Result<T, E> sum type; keep the envelope only at the HTTP
// boundary").
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
