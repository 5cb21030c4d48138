// README: Error taxonomy and the status-tag convention of the ticket surface.
package ticket

import (
	"errors"
	"fmt"

	"mensa/internal/types"
)

// Validation failures: surfaced to the customer, no persistence mutation,
// retryable after the customer corrects their input.
var (
	ErrNotConnected        = errors.New("node has no connected owner")
	ErrStaleOrder          = errors.New("source order message is no longer available")
	ErrMissingAddress      = errors.New("delivery address is empty")
	ErrLocationUnavailable = errors.New("stored location can no longer be forwarded")
)

// Gateway and aggregate failures.
var (
	ErrGateway              = errors.New("messaging gateway failure")
	ErrAllOwnersUnreachable = errors.New("no owner could be reached")
)

// Store failures.
var (
	ErrNotFound = errors.New("ticket not found")
	ErrConflict = errors.New("ticket stage conflict")
)

// Result is what the produced surface hands to upstream command routing: a
// short machine tag plus a reason the caller displays directly.
type Result struct {
	Tag    string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Describe maps an operation outcome to the tag convention. The acting
// identity is embedded in every failure reason for traceability in the
// audit channel.
func Describe(err error, actor types.ChatID) Result {
	if err == nil {
		return Result{Tag: "ok"}
	}
	tag := "internal_error"
	switch {
	case errors.Is(err, ErrNotConnected):
		tag = "not_connected"
	case errors.Is(err, ErrStaleOrder):
		tag = "stale_order"
	case errors.Is(err, ErrMissingAddress):
		tag = "missing_address"
	case errors.Is(err, ErrLocationUnavailable):
		tag = "location_unavailable"
	case errors.Is(err, ErrAllOwnersUnreachable):
		tag = "owners_unreachable"
	case errors.Is(err, ErrGateway):
		tag = "gateway_error"
	case errors.Is(err, ErrNotFound):
		tag = "not_found"
	case errors.Is(err, ErrConflict):
		tag = "conflict"
	}
	return Result{Tag: tag, Reason: fmt.Sprintf("%v (actor %d)", err, int64(actor))}
}
