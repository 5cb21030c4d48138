// README: Ticket lifecycle service: checkout factory and the cancel/advance/confirm entry points.
package ticket

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mensa/internal/config"
	"mensa/internal/modules/cart"
	"mensa/internal/modules/catalog"
	"mensa/internal/modules/session"
	"mensa/internal/modules/stage"
	"mensa/internal/types"
)

// Store is the persistence surface the lifecycle needs. *PGStore implements it.
type Store interface {
	Create(ctx context.Context, t *Ticket) error
	Load(ctx context.Context, id types.TicketID) (*Ticket, catalog.OwnerSet, error)
	UpdateStage(ctx context.Context, id types.TicketID, from, to stage.Stage, version int) (bool, error)
	UpdateStatusMessages(ctx context.Context, t *Ticket) error
	AppendEvent(ctx context.Context, e *Event) error
}

// Resolver supplies node owners, price, and title.
type Resolver interface {
	Resolve(ctx context.Context, id types.NodeID) (*catalog.Item, error)
}

// Profiles supplies the customer's delivery profile.
type Profiles interface {
	Get(ctx context.Context, customer types.ChatID) (*session.Profile, error)
}

// Estimator renders a human travel estimate between two addresses. Optional.
type Estimator interface {
	TravelEstimate(ctx context.Context, origin, destination string) (string, error)
}

// Publisher emits stage-change events for downstream consumers. Optional;
// publish failures are logged, never escalated.
type Publisher interface {
	StageChanged(ctx context.Context, t *Ticket, from stage.Stage, actor types.ChatID) error
}

type Deps struct {
	Store       Store
	Gateway     Gateway
	Resolver    Resolver
	Profiles    Profiles
	Cart        *cart.Cart
	Broadcaster *Broadcaster
	Auditor     *Auditor
	Publisher   Publisher
	Estimator   Estimator
	Chat        config.ChatConfig
	Log         *logrus.Logger
}

type Service struct {
	store       Store
	gw          Gateway
	resolver    Resolver
	profiles    Profiles
	cart        *cart.Cart
	broadcaster *Broadcaster
	auditor     *Auditor
	publisher   Publisher
	estimator   Estimator
	chat        config.ChatConfig
	log         *logrus.Logger
}

func NewService(deps Deps) *Service {
	return &Service{
		store:       deps.Store,
		gw:          deps.Gateway,
		resolver:    deps.Resolver,
		profiles:    deps.Profiles,
		cart:        deps.Cart,
		broadcaster: deps.Broadcaster,
		auditor:     deps.Auditor,
		publisher:   deps.Publisher,
		estimator:   deps.Estimator,
		chat:        deps.Chat,
		log:         deps.Log,
	}
}

type CreateCommand struct {
	Customer      types.ChatID
	Node          types.NodeID
	AnchorMessage types.MessageID
}

// cancelTokens matches embedded per-item cancel tokens: a space, the token,
// and a numeric node id.
var cancelTokens = regexp.MustCompile(` /del\d+`)

func lockOrderText(text string) string {
	return cancelTokens.ReplaceAllString(text, "")
}

// MakeTicket validates the checkout preconditions, converts the customer's
// cart group into a persisted ticket, and establishes the initial status
// messages. Validation failures leave no trace; once the ticket row exists
// it is never rolled back.
func (s *Service) MakeTicket(ctx context.Context, cmd CreateCommand) (*Ticket, error) {
	item, err := s.resolver.Resolve(ctx, cmd.Node)
	if err != nil {
		return nil, fmt.Errorf("resolve node %d: %w", int64(cmd.Node), err)
	}
	if !item.Owners.AnyValid(s.chat.OwnerIDThreshold) {
		return nil, fmt.Errorf("node %d: %w", int64(cmd.Node), ErrNotConnected)
	}

	orderText, err := s.gw.Text(ctx, cmd.Customer, cmd.AnchorMessage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStaleOrder, err)
	}

	profile := s.loadProfile(ctx, cmd.Customer)
	if profile.NeedsAddress() {
		switch profile.Mode {
		case session.ModeGeolocation:
			if err := s.forwardLocation(ctx, profile, item.Owners); err != nil {
				return nil, err
			}
		case session.ModeAddress:
			if strings.TrimSpace(profile.Address) == "" {
				return nil, fmt.Errorf("customer %d: %w", int64(cmd.Customer), ErrMissingAddress)
			}
		}
	}

	locked := lockOrderText(orderText)
	anchor, err := s.gw.Edit(ctx, cmd.Customer, cmd.AnchorMessage, locked)
	if err != nil {
		return nil, fmt.Errorf("%w: lock order message: %v", ErrGateway, err)
	}

	summary := s.customerInfo(ctx, profile, item)
	var anchors MessageSlots
	forwarded := 0
	for i := 0; i < catalog.MaxOwners; i++ {
		if !item.Owners.ValidAt(i, s.chat.OwnerIDThreshold) {
			continue
		}
		owner := item.Owners.At(i)
		if _, err := s.gw.Send(ctx, owner, summary, 0, nil); err != nil {
			s.log.WithField("owner", int64(owner)).Warnf("customer-info summary not delivered: %v", err)
		}
		id, err := s.gw.Forward(ctx, cmd.Customer, owner, anchor)
		if err != nil {
			s.log.WithField("owner", int64(owner)).Warnf("order forward failed: %v", err)
			continue
		}
		anchors.Set(i, &id)
		forwarded++
	}
	if forwarded == 0 {
		return nil, fmt.Errorf("forward order for customer %d: %w", int64(cmd.Customer), ErrAllOwnersUnreachable)
	}

	t := &Ticket{
		ID:             newID(),
		Node:           cmd.Node,
		Customer:       cmd.Customer,
		CustomerAnchor: anchor,
		OwnerAnchors:   anchors,
		Stage:          stage.OwnersConfirmation,
		CreatedAt:      time.Now().UTC(),
	}
	t.AuditMessage = s.auditor.Mirror(ctx, summary+"\n\n"+locked)

	if err := s.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("persist ticket: %w", err)
	}
	s.cart.ConsumeGroup(cmd.Customer, cmd.Node)
	s.appendEvent(ctx, t, "", cmd.Customer)

	if err := s.broadcaster.Broadcast(ctx, t, item.Owners); err != nil {
		// the ticket stands; a later broadcast can repair the statuses
		return t, err
	}
	return t, nil
}

// CancelTicket terminates the ticket on behalf of the acting side. A cancel
// of an already-terminal ticket is accepted and only re-syncs statuses.
func (s *Service) CancelTicket(ctx context.Context, actor types.ChatID, id types.TicketID) error {
	t, owners, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	target := stage.Cancel(t.Stage, actor == t.Customer)
	if err := s.transition(ctx, t, target, actor); err != nil {
		return err
	}
	bErr := s.broadcaster.Broadcast(ctx, t, owners)
	s.auditor.Mirror(ctx, fmt.Sprintf("Ticket %s: %s (actor %d)", t.ID, stage.Text(stage.MessageFor(t.Stage, stage.ForOwner)), int64(actor)))
	return bErr
}

// NextTicket advances one stage. When the ticket is already terminal the
// stage is untouched but the statuses are still re-broadcast, so a repeated
// press or a crash retry converges instead of erroring.
func (s *Service) NextTicket(ctx context.Context, actor types.ChatID, id types.TicketID) error {
	t, owners, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if target, changed := stage.Advance(t.Stage); changed {
		if err := s.transition(ctx, t, target, actor); err != nil {
			return err
		}
	}
	return s.broadcaster.Broadcast(ctx, t, owners)
}

// ConfirmTicket forces the ticket to Finished. Confirming a finished ticket
// only re-syncs; confirming a canceled one is rejected, terminal tickets
// are immutable.
func (s *Service) ConfirmTicket(ctx context.Context, actor types.ChatID, id types.TicketID) error {
	t, owners, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.transition(ctx, t, stage.Finished, actor); err != nil {
		return err
	}
	bErr := s.broadcaster.Broadcast(ctx, t, owners)
	s.auditor.Mirror(ctx, fmt.Sprintf("Ticket %s completed (actor %d)", t.ID, int64(actor)))
	return bErr
}

// load fetches the ticket and verifies the actor is a party to it: the
// customer, one of the node's owners, or a configured administrator.
// Callback data arrives over the webhook and is forgeable, so a stranger
// gets the same answer as a missing ticket.
func (s *Service) load(ctx context.Context, actor types.ChatID, id types.TicketID) (*Ticket, catalog.OwnerSet, error) {
	t, owners, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, catalog.OwnerSet{}, err
	}
	if actor != t.Customer && !owners.Contains(actor) && !s.chat.IsAdmin(int64(actor)) {
		return nil, catalog.OwnerSet{}, fmt.Errorf("actor %d on ticket %s: %w", int64(actor), t.ID, ErrNotFound)
	}
	return t, owners, nil
}

// transition persists a stage change guarded by the version read, records
// the history event, and publishes the change. Writing the stage the ticket
// already has is a no-op; any other write on a terminal ticket is rejected.
func (s *Service) transition(ctx context.Context, t *Ticket, target stage.Stage, actor types.ChatID) error {
	if target == t.Stage {
		return nil
	}
	if t.Stage.Terminal() {
		return fmt.Errorf("ticket %s is %s: %w", t.ID, t.Stage, ErrConflict)
	}
	ok, err := s.store.UpdateStage(ctx, t.ID, t.Stage, target, t.StageVersion)
	if err != nil {
		return fmt.Errorf("persist stage: %w", err)
	}
	if !ok {
		return fmt.Errorf("ticket %s: %w", t.ID, ErrConflict)
	}
	from := t.Stage
	t.Stage = target
	t.StageVersion++
	s.appendEvent(ctx, t, from, actor)
	return nil
}

func (s *Service) appendEvent(ctx context.Context, t *Ticket, from stage.Stage, actor types.ChatID) {
	e := &Event{
		TicketID:  t.ID,
		FromStage: from,
		ToStage:   t.Stage,
		Actor:     actor,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AppendEvent(ctx, e); err != nil {
		s.log.WithField("ticket", t.ID).Warnf("stage event not recorded: %v", err)
	}
	if s.publisher != nil {
		if err := s.publisher.StageChanged(ctx, t, from, actor); err != nil {
			s.log.WithField("ticket", t.ID).Warnf("stage event not published: %v", err)
		}
	}
}

// loadProfile falls back to a bare pickup profile when the customer never
// entered delivery details; pickup needs none.
func (s *Service) loadProfile(ctx context.Context, customer types.ChatID) *session.Profile {
	p, err := s.profiles.Get(ctx, customer)
	if err != nil {
		if !errors.Is(err, session.ErrNoProfile) {
			s.log.WithField("customer", int64(customer)).Warnf("profile lookup failed: %v", err)
		}
		return &session.Profile{
			Customer: customer,
			Name:     fmt.Sprintf("Customer %d", int64(customer)),
			Mode:     session.ModePickup,
		}
	}
	return p
}

// forwardLocation re-forwards the stored location message to every valid
// owner. It doubles as a liveness check on the stored message: when no
// owner receives it the checkout must not proceed.
func (s *Service) forwardLocation(ctx context.Context, p *session.Profile, owners catalog.OwnerSet) error {
	if p.LocationMessage == 0 {
		return fmt.Errorf("customer %d has no stored location: %w", int64(p.Customer), ErrLocationUnavailable)
	}
	delivered := 0
	for i := 0; i < catalog.MaxOwners; i++ {
		if !owners.ValidAt(i, s.chat.OwnerIDThreshold) {
			continue
		}
		if _, err := s.gw.Forward(ctx, p.Customer, owners.At(i), p.LocationMessage); err != nil {
			s.log.WithField("owner", int64(owners.At(i))).Warnf("location forward failed: %v", err)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("customer %d: %w", int64(p.Customer), ErrLocationUnavailable)
	}
	return nil
}

// customerInfo builds the summary sent to owners ahead of the forwarded
// order: who ordered, how to reach them, where it goes.
func (s *Service) customerInfo(ctx context.Context, p *session.Profile, item *catalog.Item) string {
	var sb strings.Builder
	sb.WriteString("Order from: ")
	sb.WriteString(p.Name)
	if p.Phone != "" {
		sb.WriteString("\nContact: ")
		sb.WriteString(p.Phone)
	}
	sb.WriteString("\n")
	sb.WriteString(p.DeliveryDescription())

	if s.estimator != nil && p.Mode == session.ModeAddress && item.Address != "" {
		if est, err := s.estimator.TravelEstimate(ctx, item.Address, p.Address); err == nil {
			sb.WriteString("\n")
			sb.WriteString(est)
		} else {
			s.log.Debugf("travel estimate unavailable: %v", err)
		}
	}
	return sb.String()
}

func newID() types.TicketID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.TicketID(hex.EncodeToString(b[:]))
}
