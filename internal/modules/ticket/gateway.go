// README: Messaging gateway contract consumed by the ticket lifecycle.
package ticket

import (
	"context"

	"mensa/internal/modules/stage"
	"mensa/internal/types"
)

// Markup describes the action buttons attached to a status message. The
// gateway implementation decides how to render them.
type Markup struct {
	TicketID types.TicketID
	Actions  []stage.Action
}

// Gateway is the chat transport. Every call is independently fallible; the
// lifecycle code decides per call whether a failure is tolerated, recorded
// as a nil message id, or escalated.
type Gateway interface {
	// Send delivers text to a chat, optionally replying to an anchor
	// message (replyTo 0 means no reply) and attaching action buttons.
	Send(ctx context.Context, to types.ChatID, text string, replyTo types.MessageID, markup *Markup) (types.MessageID, error)
	// Edit rewrites an existing message in place and returns its id.
	Edit(ctx context.Context, chat types.ChatID, msg types.MessageID, text string) (types.MessageID, error)
	// Delete removes a message.
	Delete(ctx context.Context, chat types.ChatID, msg types.MessageID) error
	// Forward copies a message from one chat into another and returns the
	// id of the new copy.
	Forward(ctx context.Context, from, to types.ChatID, msg types.MessageID) (types.MessageID, error)
	// Text retrieves the current text of a message, failing when the
	// message is too old for the transport to reach.
	Text(ctx context.Context, chat types.ChatID, msg types.MessageID) (string, error)
}
