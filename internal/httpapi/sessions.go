package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SessionStats returns aggregate session counts.
// GET /session-stats
func (h *Handler) SessionStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.SessionStats())
}

// SessionHistory returns the ordered turn sequence for a session; unknown
// sessions yield an empty history.
// GET /session/:session_id/history
func (h *Handler) SessionHistory(c echo.Context) error {
	sessionID := c.Param("session_id")
	turns := h.service.HistorySnapshot(sessionID)

	return c.JSON(http.StatusOK, map[string]any{
		"session_id": sessionID,
		"turn_count": len(turns),
		"history":    turns,
	})
}

// ClearSession removes a session. Succeeds even if it never existed.
// DELETE /session/:session_id
func (h *Handler) ClearSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	h.service.ClearSession(sessionID)

	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("session %s cleared", sessionID),
	})
}
