// Package httpapi exposes the chat backend over HTTP.
package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dbchat/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers all routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.POST("/chat", h.Chat)
	e.GET("/session-stats", h.SessionStats)
	e.GET("/session/:session_id/history", h.SessionHistory)
	e.DELETE("/session/:session_id", h.ClearSession)
	e.GET("/health", h.Health)
}

// Index describes the API.
func (h *Handler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message": "chat API is running",
		"endpoints": map[string]string{
			"chat":            "POST /chat - Send chat messages",
			"session_stats":   "GET /session-stats - Get session statistics",
			"session_history": "GET /session/{session_id}/history - Get session history",
			"clear_session":   "DELETE /session/{session_id} - Clear specific session",
		},
	})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
