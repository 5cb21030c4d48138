// README: Delivery profile handlers.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mensa/internal/modules/session"
	"mensa/internal/types"
)

// ProfileStore is the session-store slice the HTTP surface needs.
type ProfileStore interface {
	Save(ctx context.Context, p *session.Profile) error
	Get(ctx context.Context, customer types.ChatID) (*session.Profile, error)
	Delete(ctx context.Context, customer types.ChatID) error
}

type ProfileHandler struct {
	store ProfileStore
}

func NewProfileHandler(store ProfileStore) *ProfileHandler {
	return &ProfileHandler{store: store}
}

func customerParam(c *gin.Context) (types.ChatID, bool) {
	id, err := strconv.ParseInt(c.Param("customer"), 10, 64)
	if err != nil || id == 0 {
		writeError(c, http.StatusBadRequest, "invalid customer id")
		return 0, false
	}
	return types.ChatID(id), true
}

type profileReq struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Mode              string `json:"mode"`
	Address           string `json:"address"`
	LocationMessageID int    `json:"location_message_id"`
}

func (h *ProfileHandler) Put(c *gin.Context) {
	customer, ok := customerParam(c)
	if !ok {
		return
	}
	var req profileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	mode := session.DeliveryMode(req.Mode)
	switch mode {
	case session.ModePickup, session.ModeAddress, session.ModeGeolocation:
	default:
		writeError(c, http.StatusBadRequest, "unknown delivery mode")
		return
	}
	p := &session.Profile{
		Customer:        customer,
		Name:            req.Name,
		Phone:           req.Phone,
		Mode:            mode,
		Address:         req.Address,
		LocationMessage: types.MessageID(req.LocationMessageID),
	}
	if err := h.store.Save(c.Request.Context(), p); err != nil {
		writeError(c, http.StatusInternalServerError, "profile not saved")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	customer, ok := customerParam(c)
	if !ok {
		return
	}
	p, err := h.store.Get(c.Request.Context(), customer)
	if err != nil {
		if errors.Is(err, session.ErrNoProfile) {
			writeError(c, http.StatusNotFound, "no profile")
			return
		}
		writeError(c, http.StatusInternalServerError, "profile lookup failed")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	customer, ok := customerParam(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), customer); err != nil {
		writeError(c, http.StatusInternalServerError, "profile not deleted")
		return
	}
	c.Status(http.StatusNoContent)
}
