// README: Ticket aggregate: the persisted record of one placed order.
package ticket

import (
	"time"

	"mensa/internal/modules/catalog"
	"mensa/internal/modules/stage"
	"mensa/internal/types"
)

// MessageSlots is a fixed-capacity ordered collection of optional message
// ids, one per owner slot. Index i always corresponds to owner slot i of the
// node's OwnerSet.
type MessageSlots [catalog.MaxOwners]*types.MessageID

// At returns the id in slot i, nil when unset.
func (m MessageSlots) At(i int) *types.MessageID { return m[i] }

// Set stores id into slot i; nil clears it.
func (m *MessageSlots) Set(i int, id *types.MessageID) { m[i] = id }

// Any reports whether at least one slot is set.
func (m MessageSlots) Any() bool {
	for _, v := range m {
		if v != nil {
			return true
		}
	}
	return false
}

// Count returns the number of set slots.
func (m MessageSlots) Count() int {
	n := 0
	for _, v := range m {
		if v != nil {
			n++
		}
	}
	return n
}

// Ticket is the permanent audit trail of one order. It is created once at
// checkout, mutated only by stage transitions and status-message
// bookkeeping, and never deleted. Once the stage is terminal the record is
// immutable.
//
// Invariants: Customer and CustomerAnchor are always present; at least one
// owner anchor is present.
type Ticket struct {
	ID       types.TicketID
	Node     types.NodeID
	Customer types.ChatID

	// CustomerAnchor is the customer's locked order message; owner anchors
	// are the per-owner forwards of it. Status messages reply to these.
	CustomerAnchor types.MessageID
	OwnerAnchors   MessageSlots

	Stage stage.Stage
	// StageVersion guards concurrent stage writes; every persisted stage
	// change increments it.
	StageVersion int

	// Live status-message bookkeeping: at most one per reachable party.
	CustomerStatus *types.MessageID
	OwnerStatus    MessageSlots

	// AuditMessage is the optional mirror in the audit channel.
	AuditMessage *types.MessageID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event records one stage transition for the ticket's history.
type Event struct {
	ID        int64
	TicketID  types.TicketID
	FromStage stage.Stage
	ToStage   stage.Stage
	Actor     types.ChatID
	CreatedAt time.Time
}
