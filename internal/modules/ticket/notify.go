// README: Notification synchronizer: rebroadcasts the current-stage status to every party.
package ticket

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"mensa/internal/modules/catalog"
	"mensa/internal/modules/stage"
	"mensa/internal/types"
)

// StatusWriter persists the status-message bookkeeping after a broadcast.
type StatusWriter interface {
	UpdateStatusMessages(ctx context.Context, t *Ticket) error
}

// Broadcaster resends the current-stage status message to the customer and
// every reachable owner, replacing whatever status message each party had
// before. It is safe to call repeatedly for the same ticket: each pass
// converges to exactly one live status message per reachable party.
type Broadcaster struct {
	gw    Gateway
	store StatusWriter
	log   *logrus.Logger
}

func NewBroadcaster(gw Gateway, store StatusWriter, log *logrus.Logger) *Broadcaster {
	return &Broadcaster{gw: gw, store: store, log: log}
}

type branchResult struct {
	id        *types.MessageID
	err       error
	attempted bool
}

// Broadcast runs the four party branches concurrently, joins them without
// short-circuiting, persists the updated status ids in a single write, and
// then applies the aggregation policy: a customer failure is an overall
// failure, and so is the failure of every attempted owner branch (the order
// would have no reachable fulfiller). Partial owner failure is tolerated.
func (b *Broadcaster) Broadcast(ctx context.Context, t *Ticket, owners catalog.OwnerSet) error {
	var wg sync.WaitGroup
	var customer branchResult
	var owner [catalog.MaxOwners]branchResult

	wg.Add(1)
	go func() {
		defer wg.Done()
		customer.attempted = true
		customer.id, customer.err = b.syncParty(ctx, t, t.Customer, t.CustomerAnchor, t.CustomerStatus, stage.ForCustomer)
	}()

	for i := 0; i < catalog.MaxOwners; i++ {
		anchor := t.OwnerAnchors.At(i)
		if anchor == nil {
			// unused owner slot
			continue
		}
		wg.Add(1)
		go func(i int, anchor types.MessageID) {
			defer wg.Done()
			owner[i].attempted = true
			owner[i].id, owner[i].err = b.syncParty(ctx, t, owners.At(i), anchor, t.OwnerStatus.At(i), stage.ForOwner)
		}(i, *anchor)
	}

	wg.Wait()

	t.CustomerStatus = customer.id
	attempted, failed := 0, 0
	for i := 0; i < catalog.MaxOwners; i++ {
		if !owner[i].attempted {
			continue
		}
		attempted++
		if owner[i].err != nil {
			failed++
			b.log.WithFields(logrus.Fields{
				"ticket": t.ID,
				"owner":  int64(owners.At(i)),
			}).Warnf("owner status branch failed: %v", owner[i].err)
		}
		t.OwnerStatus.Set(i, owner[i].id)
	}

	// One write for the whole set, even after partial failure: the nil
	// slots are the record of what needs repair on the next broadcast.
	if err := b.store.UpdateStatusMessages(ctx, t); err != nil {
		return fmt.Errorf("persist status messages for %s: %w", t.ID, err)
	}

	if customer.err != nil {
		return fmt.Errorf("customer status branch: %w", customer.err)
	}
	if attempted > 0 && failed == attempted {
		return fmt.Errorf("ticket %s: %w", t.ID, ErrAllOwnersUnreachable)
	}
	return nil
}

// syncParty runs one party's three-step sequence: delete the previous
// status message, compose the stage text and markup, send the replacement
// replying to the party's anchor.
func (b *Broadcaster) syncParty(ctx context.Context, t *Ticket, chat types.ChatID, anchor types.MessageID, prev *types.MessageID, view stage.Perspective) (*types.MessageID, error) {
	if prev != nil {
		if err := b.gw.Delete(ctx, chat, *prev); err != nil {
			// A stale status message is cosmetic; tell the party about it.
			// Owners may miss this notice, the customer must not.
			_, exErr := b.gw.Send(ctx, chat, "The previous status message could not be removed; please disregard it.", 0, nil)
			if exErr != nil {
				if view == stage.ForCustomer {
					return nil, fmt.Errorf("%w: stale-status notice: %v", ErrGateway, exErr)
				}
				b.log.WithField("chat", int64(chat)).Debugf("stale-status notice dropped: %v", exErr)
			}
		}
	}

	text := stage.Text(stage.MessageFor(t.Stage, view))
	markup := &Markup{TicketID: t.ID, Actions: stage.MarkupFor(t.Stage, view)}

	id, err := b.gw.Send(ctx, chat, text, anchor, markup)
	if err != nil {
		return nil, fmt.Errorf("%w: send status: %v", ErrGateway, err)
	}
	return &id, nil
}
