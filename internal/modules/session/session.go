// README: Customer delivery profile kept in Redis for the checkout preconditions.
package session

import (
	"mensa/internal/types"
)

// DeliveryMode selects which checkout precondition applies: pickup needs
// nothing, address needs a non-empty address text, geolocation needs a
// stored location message that can still be re-forwarded.
type DeliveryMode string

const (
	ModePickup      DeliveryMode = "pickup"
	ModeAddress     DeliveryMode = "address"
	ModeGeolocation DeliveryMode = "geolocation"
)

// Profile is the per-customer delivery state gathered during browsing. It is
// ephemeral session data; losing it only forces the customer to re-enter
// their delivery details.
type Profile struct {
	Customer        types.ChatID    `json:"customer"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone"`
	Mode            DeliveryMode    `json:"mode"`
	Address         string          `json:"address,omitempty"`
	LocationMessage types.MessageID `json:"location_message,omitempty"`
}

// NeedsAddress reports whether the mode requires a delivery destination.
func (p *Profile) NeedsAddress() bool {
	return p.Mode == ModeAddress || p.Mode == ModeGeolocation
}

// DeliveryDescription renders the human line shown to owners in the
// customer-info summary.
func (p *Profile) DeliveryDescription() string {
	switch p.Mode {
	case ModePickup:
		return "Pickup at the counter"
	case ModeAddress:
		return "Deliver to: " + p.Address
	case ModeGeolocation:
		return "Deliver to the shared location (forwarded separately)"
	}
	return "Delivery mode not set"
}
