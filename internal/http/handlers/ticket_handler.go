// README: Ticket surface handlers: checkout plus the status-button actions.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"mensa/internal/modules/ticket"
	"mensa/internal/types"
)

// TicketService is the slice of the ticket entry points the HTTP surface
// needs.
type TicketService interface {
	MakeTicket(ctx context.Context, cmd ticket.CreateCommand) (*ticket.Ticket, error)
	CancelTicket(ctx context.Context, actor types.ChatID, id types.TicketID) error
	NextTicket(ctx context.Context, actor types.ChatID, id types.TicketID) error
	ConfirmTicket(ctx context.Context, actor types.ChatID, id types.TicketID) error
}

type TicketHandler struct {
	svc TicketService
}

func NewTicketHandler(svc TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

type makeTicketReq struct {
	CustomerID      int64 `json:"customer_id"`
	NodeID          int64 `json:"node_id"`
	AnchorMessageID int   `json:"anchor_message_id"`
}

func (h *TicketHandler) Create(c *gin.Context) {
	var req makeTicketReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CustomerID == 0 || req.NodeID == 0 || req.AnchorMessageID == 0 {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	actor := types.ChatID(req.CustomerID)
	tk, err := h.svc.MakeTicket(c.Request.Context(), ticket.CreateCommand{
		Customer:      actor,
		Node:          types.NodeID(req.NodeID),
		AnchorMessage: types.MessageID(req.AnchorMessageID),
	})
	if tk == nil {
		writeTicketResult(c, actor, err)
		return
	}
	// A ticket exists even when the first broadcast degraded; the caller
	// gets the id either way and the tag says what happened.
	res := ticket.Describe(err, actor)
	c.JSON(http.StatusCreated, gin.H{
		"ticket_id": tk.ID,
		"stage":     tk.Stage,
		"status":    res.Tag,
		"reason":    res.Reason,
	})
}

type actionReq struct {
	ActorID int64 `json:"actor_id"`
}

func (h *TicketHandler) Cancel(c *gin.Context) {
	h.action(c, h.svc.CancelTicket)
}

func (h *TicketHandler) Next(c *gin.Context) {
	h.action(c, h.svc.NextTicket)
}

func (h *TicketHandler) Confirm(c *gin.Context) {
	h.action(c, h.svc.ConfirmTicket)
}

func (h *TicketHandler) action(c *gin.Context, op func(context.Context, types.ChatID, types.TicketID) error) {
	id := c.Param("id")
	if !isValidTicketID(id) {
		writeError(c, http.StatusBadRequest, "invalid ticket id")
		return
	}
	var req actionReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ActorID == 0 {
		writeError(c, http.StatusBadRequest, "missing actor_id")
		return
	}
	actor := types.ChatID(req.ActorID)
	err := op(c.Request.Context(), actor, types.TicketID(id))
	writeTicketResult(c, actor, err)
}
