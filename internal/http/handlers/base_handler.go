// README: Shared handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mensa/internal/modules/ticket"
	"mensa/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidTicketID ensures ids are hex and at most 32 chars (matches the
// ticket id generator).
func isValidTicketID(v string) bool {
	if v == "" || len(v) > 32 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') {
			continue
		}
		return false
	}
	return true
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func ticketStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ticket.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ticket.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ticket.ErrNotConnected),
		errors.Is(err, ticket.ErrStaleOrder),
		errors.Is(err, ticket.ErrMissingAddress),
		errors.Is(err, ticket.ErrLocationUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ticket.ErrGateway),
		errors.Is(err, ticket.ErrAllOwnersUnreachable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeTicketResult renders the status-tag convention of the ticket surface.
func writeTicketResult(c *gin.Context, actor types.ChatID, err error) {
	c.JSON(ticketStatus(err), ticket.Describe(err, actor))
}
