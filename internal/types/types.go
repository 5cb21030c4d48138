// README: Shared identifier and value types used across modules.
package types

import "strconv"

// ChatID identifies a chat participant (customer, owner, or channel) on the
// messaging side. Zero means "unset placeholder".
type ChatID int64

// MessageID identifies a single message within a chat.
type MessageID int

// NodeID identifies a sellable menu node supplied by the catalog.
type NodeID int64

// TicketID identifies a persisted order ticket.
type TicketID string

func (c ChatID) String() string  { return strconv.FormatInt(int64(c), 10) }
func (n NodeID) String() string  { return strconv.FormatInt(int64(n), 10) }
func (m MessageID) Int() int     { return int(m) }
func (t TicketID) String() string { return string(t) }
