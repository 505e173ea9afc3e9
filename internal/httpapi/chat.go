package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"dbchat/internal/protocol"
)

// Chat accepts one user_message envelope and answers with one outbound
// envelope. Malformed envelopes are rejected before any session mutation.
// POST /chat
func (h *Handler) Chat(c echo.Context) error {
	var env protocol.Envelope
	if err := c.Bind(&env); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
	}

	req, err := protocol.DecodeUserMessage(env)
	if err != nil {
		if errors.Is(err, protocol.ErrMalformedRequest) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	out := h.service.Chat(c.Request().Context(), req)
	return c.JSON(http.StatusOK, out)
}
