// README: Telegram Bot API implementation of the messaging gateway.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"mensa/internal/modules/stage"
	"mensa/internal/modules/ticket"
	"mensa/internal/types"
)

// Gateway adapts the Bot API to the lifecycle's messaging contract. All
// methods are safe for concurrent use; the underlying client serializes
// HTTP calls per request.
type Gateway struct {
	bot *tgbotapi.BotAPI
	// probeChat receives short-lived forwards when a message's text has to
	// be read back; the Bot API has no direct message fetch. Usually the
	// audit channel.
	probeChat types.ChatID
	log       *logrus.Logger
}

func NewGateway(token string, probeChat types.ChatID, log *logrus.Logger) (*Gateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("bot api init: %w", err)
	}
	return &Gateway{bot: bot, probeChat: probeChat, log: log}, nil
}

func (g *Gateway) Send(ctx context.Context, to types.ChatID, text string, replyTo types.MessageID, markup *ticket.Markup) (types.MessageID, error) {
	msg := tgbotapi.NewMessage(int64(to), text)
	if replyTo != 0 {
		msg.ReplyToMessageID = replyTo.Int()
	}
	if markup != nil && len(markup.Actions) > 0 {
		msg.ReplyMarkup = keyboardFor(markup)
	}
	sent, err := g.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return types.MessageID(sent.MessageID), nil
}

func (g *Gateway) Edit(ctx context.Context, chat types.ChatID, msg types.MessageID, text string) (types.MessageID, error) {
	edited, err := g.bot.Send(tgbotapi.NewEditMessageText(int64(chat), msg.Int(), text))
	if err != nil {
		return 0, err
	}
	return types.MessageID(edited.MessageID), nil
}

func (g *Gateway) Delete(ctx context.Context, chat types.ChatID, msg types.MessageID) error {
	_, err := g.bot.Request(tgbotapi.NewDeleteMessage(int64(chat), msg.Int()))
	return err
}

func (g *Gateway) Forward(ctx context.Context, from, to types.ChatID, msg types.MessageID) (types.MessageID, error) {
	sent, err := g.bot.Send(tgbotapi.NewForward(int64(to), int64(from), msg.Int()))
	if err != nil {
		return 0, err
	}
	return types.MessageID(sent.MessageID), nil
}

// Text reads a message's current text by forwarding it to the probe chat
// and deleting the copy. A forward that the API refuses (message too old,
// chat unreachable) surfaces as an error, which is exactly the staleness
// signal the checkout preconditions need.
func (g *Gateway) Text(ctx context.Context, chat types.ChatID, msg types.MessageID) (string, error) {
	probe := g.probeChat
	if probe == 0 {
		probe = chat
	}
	copied, err := g.bot.Send(tgbotapi.NewForward(int64(probe), int64(chat), msg.Int()))
	if err != nil {
		return "", fmt.Errorf("probe forward: %w", err)
	}
	if _, err := g.bot.Request(tgbotapi.NewDeleteMessage(int64(probe), copied.MessageID)); err != nil {
		g.log.Debugf("probe copy not deleted in chat %d: %v", int64(probe), err)
	}
	return copied.Text, nil
}

func keyboardFor(m *ticket.Markup) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, a := range m.Actions {
		var label string
		switch a {
		case stage.ActionCancel:
			label = "Cancel"
		case stage.ActionAdvance:
			label = "Next stage"
		case stage.ActionConfirm:
			label = "Received"
		default:
			continue
		}
		data := fmt.Sprintf("ticket:%s:%s", a, m.TicketID)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
