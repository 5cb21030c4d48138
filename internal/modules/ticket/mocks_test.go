// README: In-memory test doubles for the gateway, store, resolver, and profiles.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"mensa/internal/modules/catalog"
	"mensa/internal/modules/session"
	"mensa/internal/modules/stage"
	"mensa/internal/types"
)

// SentMessage records one Gateway.Send call.
type SentMessage struct {
	ID      types.MessageID
	Chat    types.ChatID
	Text    string
	ReplyTo types.MessageID
	Markup  *Markup
}

// ForwardedMessage records one Gateway.Forward call.
type ForwardedMessage struct {
	ID   types.MessageID
	From types.ChatID
	To   types.ChatID
	Msg  types.MessageID
}

// DeletedMessage records one Gateway.Delete call.
type DeletedMessage struct {
	Chat types.ChatID
	Msg  types.MessageID
}

// MockGateway is a thread-safe recorder for all gateway traffic. Failures
// are injected per destination chat.
type MockGateway struct {
	mu     sync.Mutex
	nextID int

	Sent     []SentMessage
	Edited   []SentMessage
	Deleted  []DeletedMessage
	Forwards []ForwardedMessage

	SourceText string
	TextErr    error
	EditErr    error

	FailSendTo    map[types.ChatID]bool
	FailDeleteAt  map[types.ChatID]bool
	FailForwardTo map[types.ChatID]bool
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		nextID:        1000,
		SourceText:    "order text",
		FailSendTo:    make(map[types.ChatID]bool),
		FailDeleteAt:  make(map[types.ChatID]bool),
		FailForwardTo: make(map[types.ChatID]bool),
	}
}

func (g *MockGateway) newID() types.MessageID {
	g.nextID++
	return types.MessageID(g.nextID)
}

func (g *MockGateway) Send(ctx context.Context, to types.ChatID, text string, replyTo types.MessageID, markup *Markup) (types.MessageID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailSendTo[to] {
		return 0, fmt.Errorf("send to %d refused", int64(to))
	}
	id := g.newID()
	g.Sent = append(g.Sent, SentMessage{ID: id, Chat: to, Text: text, ReplyTo: replyTo, Markup: markup})
	return id, nil
}

func (g *MockGateway) Edit(ctx context.Context, chat types.ChatID, msg types.MessageID, text string) (types.MessageID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.EditErr != nil {
		return 0, g.EditErr
	}
	g.Edited = append(g.Edited, SentMessage{ID: msg, Chat: chat, Text: text})
	return msg, nil
}

func (g *MockGateway) Delete(ctx context.Context, chat types.ChatID, msg types.MessageID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailDeleteAt[chat] {
		return fmt.Errorf("delete in %d refused", int64(chat))
	}
	g.Deleted = append(g.Deleted, DeletedMessage{Chat: chat, Msg: msg})
	return nil
}

func (g *MockGateway) Forward(ctx context.Context, from, to types.ChatID, msg types.MessageID) (types.MessageID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailForwardTo[to] {
		return 0, fmt.Errorf("forward to %d refused", int64(to))
	}
	id := g.newID()
	g.Forwards = append(g.Forwards, ForwardedMessage{ID: id, From: from, To: to, Msg: msg})
	return id, nil
}

func (g *MockGateway) Text(ctx context.Context, chat types.ChatID, msg types.MessageID) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.TextErr != nil {
		return "", g.TextErr
	}
	return g.SourceText, nil
}

// SentTo returns all plain sends to one chat, in order.
func (g *MockGateway) SentTo(chat types.ChatID) []SentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []SentMessage
	for _, m := range g.Sent {
		if m.Chat == chat {
			out = append(out, m)
		}
	}
	return out
}

// LastSentTo returns the most recent send to one chat, or nil.
func (g *MockGateway) LastSentTo(chat types.ChatID) *SentMessage {
	msgs := g.SentTo(chat)
	if len(msgs) == 0 {
		return nil
	}
	return &msgs[len(msgs)-1]
}

// MockStore is a map-backed in-memory Store that counts every write so
// tests can assert "zero persistence on validation failure".
type MockStore struct {
	mu      sync.Mutex
	tickets map[types.TicketID]*Ticket
	owners  map[types.TicketID]catalog.OwnerSet
	events  []*Event

	CreateCalls  int
	StageWrites  int
	StatusWrites int

	StatusWriteErr error
}

func NewMockStore() *MockStore {
	return &MockStore{
		tickets: make(map[types.TicketID]*Ticket),
		owners:  make(map[types.TicketID]catalog.OwnerSet),
	}
}

func (m *MockStore) Create(ctx context.Context, t *Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	cp := *t
	m.tickets[t.ID] = &cp
	return nil
}

func (m *MockStore) Load(ctx context.Context, id types.TicketID) (*Ticket, catalog.OwnerSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, catalog.OwnerSet{}, ErrNotFound
	}
	cp := *t
	return &cp, m.owners[id], nil
}

func (m *MockStore) UpdateStage(ctx context.Context, id types.TicketID, from, to stage.Stage, version int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return false, errors.New("ticket missing")
	}
	if t.Stage != from || t.StageVersion != version {
		return false, nil
	}
	m.StageWrites++
	t.Stage = to
	t.StageVersion++
	return true, nil
}

func (m *MockStore) UpdateStatusMessages(ctx context.Context, t *Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatusWriteErr != nil {
		return m.StatusWriteErr
	}
	m.StatusWrites++
	stored, ok := m.tickets[t.ID]
	if !ok {
		cp := *t
		m.tickets[t.ID] = &cp
		return nil
	}
	stored.CustomerStatus = t.CustomerStatus
	stored.OwnerStatus = t.OwnerStatus
	stored.AuditMessage = t.AuditMessage
	return nil
}

func (m *MockStore) AppendEvent(ctx context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Writes is the total number of mutating calls the store has seen.
func (m *MockStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CreateCalls + m.StageWrites + m.StatusWrites
}

// Seed installs a ticket with its node owners, bypassing the counters.
func (m *MockStore) Seed(t *Ticket, owners catalog.OwnerSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tickets[t.ID] = &cp
	m.owners[t.ID] = owners
}

// Stored returns the persisted state of a ticket.
func (m *MockStore) Stored(id types.TicketID) *Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

// MockResolver serves items from a map.
type MockResolver struct {
	Items map[types.NodeID]*catalog.Item
}

func (r *MockResolver) Resolve(ctx context.Context, id types.NodeID) (*catalog.Item, error) {
	it, ok := r.Items[id]
	if !ok {
		return nil, catalog.ErrNodeNotFound
	}
	cp := *it
	return &cp, nil
}

// MockProfiles serves delivery profiles from a map.
type MockProfiles struct {
	Profiles map[types.ChatID]*session.Profile
}

func (p *MockProfiles) Get(ctx context.Context, customer types.ChatID) (*session.Profile, error) {
	prof, ok := p.Profiles[customer]
	if !ok {
		return nil, session.ErrNoProfile
	}
	cp := *prof
	return &cp, nil
}
