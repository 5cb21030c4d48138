// README: Menu node aggregate and the bounded owner set.
package catalog

import (
	"mensa/internal/types"
)

// MaxOwners bounds the vendor-side fan-out per node.
const MaxOwners = 3

// OwnerSet is a fixed-capacity ordered collection of stakeholder identities.
// A zero slot is an unset placeholder, not a real chat identity.
type OwnerSet [MaxOwners]types.ChatID

// At returns the identity in slot i.
func (o OwnerSet) At(i int) types.ChatID { return o[i] }

// ValidAt reports whether slot i holds a real chat identity. Identities at
// or below the threshold are placeholders left by incomplete node setup.
func (o OwnerSet) ValidAt(i int, threshold int64) bool {
	return int64(o[i]) > threshold
}

// AnyValid reports whether the node is routable at all.
func (o OwnerSet) AnyValid(threshold int64) bool {
	for i := range o {
		if o.ValidAt(i, threshold) {
			return true
		}
	}
	return false
}

// Contains reports whether id occupies any slot, valid or not.
func (o OwnerSet) Contains(id types.ChatID) bool {
	for _, v := range o {
		if v == id && id != 0 {
			return true
		}
	}
	return false
}

// Item is a sellable menu node. Immutable from the ordering core's view.
type Item struct {
	Node  types.NodeID
	Title string
	Price types.Money
	// OwnerNode is the vendor node this item is sold under; cart entries
	// group by it and a checkout consumes exactly one such group.
	OwnerNode types.NodeID
	// Address is the vendor's pickup point, used for delivery estimates.
	Address string
	Owners  OwnerSet
}
