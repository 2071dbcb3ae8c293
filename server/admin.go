package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/chatrelay/store"
)

// registerAdminRoutes wires the standard REST surface over the §3 data
// model (spec §6.1 "Admin CRUD"). It is out of scope for correctness per
// spec.md §1 — included only because the core needs some write path to
// read through (spec §9 Design Notes, SPEC_FULL §6.7).
func registerAdminRoutes(g *echo.Group, db *store.Store) {
	h := &adminHandlers{store: db}

	g.POST("/core-ai", h.createCoreAI)
	g.GET("/core-ai/:id", h.getCoreAI)
	g.GET("/core-ai", h.listCoreAI)
	g.PATCH("/core-ai/:id", h.updateCoreAI)
	g.DELETE("/core-ai/:id", h.deleteCoreAI)

	g.POST("/platform", h.createPlatform)
	g.GET("/platform/:id", h.getPlatform)
	g.GET("/platform", h.listPlatform)
	g.PATCH("/platform/:id", h.updatePlatform)
	g.DELETE("/platform/:id", h.deletePlatform)

	g.POST("/platform/:id/action", h.createPlatformAction)
	g.GET("/platform/:id/action", h.listPlatformActions)
	g.PATCH("/platform-action/:id", h.updatePlatformAction)
	g.DELETE("/platform-action/:id", h.deletePlatformAction)

	g.POST("/bot", h.createBot)
	g.GET("/bot/:id", h.getBot)
	g.GET("/bot", h.listBot)
	g.PATCH("/bot/:id", h.updateBot)
	g.DELETE("/bot/:id", h.deleteBot)

	g.POST("/conversation", h.createConversation)
	g.GET("/conversation/:id", h.getConversation)
	g.GET("/conversation", h.listConversation)
	g.PATCH("/conversation/:id", h.updateConversation)
	g.DELETE("/conversation/:id", h.deleteConversation)
}

type adminHandlers struct {
	store *store.Store
}

// storeErrorStatus maps a store error to the HTTP status spec §7 assigns
// it at the admin edge: Not-found -> 404, Conflict -> 400, anything else
// is a Dependency failure -> 500.
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondStoreError(c echo.Context, err error) error {
	return c.JSON(storeErrorStatus(err), errorEnvelope{Success: false, Error: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorEnvelope{Success: false, Error: msg})
}
