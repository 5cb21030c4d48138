// README: Ticket fulfillment stages, transitions, and per-party message/markup tables.
package stage

import "fmt"

type Stage string

const (
	OwnersConfirmation   Stage = "owners_confirmation"
	Cooking              Stage = "cooking"
	Delivery             Stage = "delivery"
	CustomerConfirmation Stage = "customer_confirmation"
	Finished             Stage = "finished"
	CanceledByCustomer   Stage = "canceled_by_customer"
	CanceledByOwner      Stage = "canceled_by_owner"
)

// All lists every stage; the message and markup tables must cover each one
// for both perspectives.
var All = []Stage{
	OwnersConfirmation,
	Cooking,
	Delivery,
	CustomerConfirmation,
	Finished,
	CanceledByCustomer,
	CanceledByOwner,
}

// next represents the happy path as code; terminal stages have no entry.
var next = map[Stage]Stage{
	OwnersConfirmation:   Cooking,
	Cooking:              Delivery,
	Delivery:             CustomerConfirmation,
	CustomerConfirmation: Finished,
}

// Terminal reports whether the stage admits no further transitions.
func (s Stage) Terminal() bool {
	switch s {
	case Finished, CanceledByCustomer, CanceledByOwner:
		return true
	}
	return false
}

// Advance moves one step along the happy path. It returns the same stage and
// false when the stage is already terminal.
func Advance(s Stage) (Stage, bool) {
	n, ok := next[s]
	if !ok {
		return s, false
	}
	return n, true
}

// Cancel maps the acting side to its terminal cancel stage. It is callable
// from any stage; re-cancelling a terminal ticket is accepted as a no-op
// rewrite of the same terminal family.
func Cancel(s Stage, actorIsCustomer bool) Stage {
	if actorIsCustomer {
		return CanceledByCustomer
	}
	return CanceledByOwner
}

// Perspective selects whose status message is being composed.
type Perspective string

const (
	ForCustomer Perspective = "customer"
	ForOwner    Perspective = "owner"
)

// TemplateID names a status-message template. Rendering to localized text is
// a presentation concern; Text provides the built-in wording.
type TemplateID string

type tableKey struct {
	stage Stage
	view  Perspective
}

var messages = map[tableKey]TemplateID{
	{OwnersConfirmation, ForCustomer}:   "status.customer.awaiting_confirmation",
	{OwnersConfirmation, ForOwner}:      "status.owner.new_order",
	{Cooking, ForCustomer}:              "status.customer.cooking",
	{Cooking, ForOwner}:                 "status.owner.cooking",
	{Delivery, ForCustomer}:             "status.customer.delivery",
	{Delivery, ForOwner}:                "status.owner.delivery",
	{CustomerConfirmation, ForCustomer}: "status.customer.confirm_receipt",
	{CustomerConfirmation, ForOwner}:    "status.owner.awaiting_receipt",
	{Finished, ForCustomer}:             "status.customer.completed",
	{Finished, ForOwner}:                "status.owner.completed",
	{CanceledByCustomer, ForCustomer}:   "status.customer.canceled_by_you",
	{CanceledByCustomer, ForOwner}:      "status.owner.canceled_by_customer",
	{CanceledByOwner, ForCustomer}:      "status.customer.canceled_by_owner",
	{CanceledByOwner, ForOwner}:         "status.owner.canceled_by_you",
}

var texts = map[TemplateID]string{
	"status.customer.awaiting_confirmation": "Your order has been sent to the kitchen. Waiting for confirmation.",
	"status.owner.new_order":                "New order. Please confirm to start cooking.",
	"status.customer.cooking":               "Your order is confirmed and is being cooked.",
	"status.owner.cooking":                  "Order in progress: cooking.",
	"status.customer.delivery":              "Your order is on its way.",
	"status.owner.delivery":                 "Order handed over for delivery.",
	"status.customer.confirm_receipt":       "Your order has been delivered. Please confirm receipt.",
	"status.owner.awaiting_receipt":         "Delivered. Waiting for the customer to confirm receipt.",
	"status.customer.completed":             "Order completed. Thank you!",
	"status.owner.completed":                "Order completed.",
	"status.customer.canceled_by_you":       "You canceled this order.",
	"status.owner.canceled_by_customer":     "The customer canceled this order.",
	"status.customer.canceled_by_owner":     "The kitchen canceled this order. Sorry!",
	"status.owner.canceled_by_you":          "Order canceled by the kitchen.",
}

// Action names a status-message button offered to a party.
type Action string

const (
	ActionCancel  Action = "cancel"
	ActionAdvance Action = "advance"
	ActionConfirm Action = "confirm"
)

// MessageFor returns the status template for a stage as seen by one party.
// The table is total: every (stage, perspective) pair resolves.
func MessageFor(s Stage, view Perspective) TemplateID {
	return messages[tableKey{s, view}]
}

// Text renders a template id to its built-in wording.
func Text(id TemplateID) string {
	return texts[id]
}

// MarkupFor returns the actions offered on the status message: cancel in all
// non-terminal stages, advance for owners up to delivery, confirm for the
// customer only when awaiting receipt. Terminal stages offer nothing.
func MarkupFor(s Stage, view Perspective) []Action {
	if s.Terminal() {
		return nil
	}
	var actions []Action
	if view == ForOwner {
		switch s {
		case OwnersConfirmation, Cooking, Delivery:
			actions = append(actions, ActionAdvance)
		}
	}
	if view == ForCustomer && s == CustomerConfirmation {
		actions = append(actions, ActionConfirm)
	}
	actions = append(actions, ActionCancel)
	return actions
}

func init() {
	// The tables must cover every stage/perspective pair and every template
	// must have wording; a gap here is a programming error, so fail fast.
	for _, s := range All {
		for _, view := range []Perspective{ForCustomer, ForOwner} {
			id, ok := messages[tableKey{s, view}]
			if !ok {
				panic(fmt.Sprintf("stage: no message template for (%s, %s)", s, view))
			}
			if _, ok := texts[id]; !ok {
				panic(fmt.Sprintf("stage: no wording for template %s", id))
			}
		}
	}
}
