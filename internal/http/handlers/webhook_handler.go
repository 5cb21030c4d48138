// README: Telegram webhook endpoint; routes status-button callbacks.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"mensa/internal/modules/stage"
	"mensa/internal/modules/ticket"
	"mensa/internal/types"
)

type WebhookHandler struct {
	svc TicketService
	log *logrus.Logger
}

func NewWebhookHandler(svc TicketService, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, log: log}
}

// Handle consumes one webhook update. Only status-button callbacks are acted
// on; everything else is acknowledged so Telegram stops redelivering it. The
// response is always 200 for the same reason, with the outcome tag in the
// body.
func (h *WebhookHandler) Handle(c *gin.Context) {
	var upd tgbotapi.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		writeError(c, http.StatusBadRequest, "invalid update")
		return
	}
	if upd.CallbackQuery == nil || upd.CallbackQuery.From == nil || upd.CallbackQuery.Data == "" {
		c.Status(http.StatusOK)
		return
	}

	parts := strings.SplitN(upd.CallbackQuery.Data, ":", 3)
	if len(parts) != 3 || parts[0] != "ticket" || !isValidTicketID(parts[2]) {
		c.Status(http.StatusOK)
		return
	}
	actor := types.ChatID(upd.CallbackQuery.From.ID)
	id := types.TicketID(parts[2])

	var err error
	switch stage.Action(parts[1]) {
	case stage.ActionCancel:
		err = h.svc.CancelTicket(c.Request.Context(), actor, id)
	case stage.ActionAdvance:
		err = h.svc.NextTicket(c.Request.Context(), actor, id)
	case stage.ActionConfirm:
		err = h.svc.ConfirmTicket(c.Request.Context(), actor, id)
	default:
		c.Status(http.StatusOK)
		return
	}

	res := ticket.Describe(err, actor)
	if res.Tag != "ok" {
		h.log.WithFields(logrus.Fields{
			"ticket": string(id),
			"actor":  int64(actor),
			"tag":    res.Tag,
		}).Warn("callback action failed")
	}
	c.JSON(http.StatusOK, res)
}
