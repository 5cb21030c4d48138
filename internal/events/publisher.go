// README: NATS publisher for ticket stage-change events.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"mensa/internal/modules/stage"
	"mensa/internal/modules/ticket"
	"mensa/internal/types"
)

const stageSubject = "mensa.tickets.stage_changed"

type StageChanged struct {
	OccurredAt time.Time   `json:"occurred_at"`
	TicketID   string      `json:"ticket_id"`
	NodeID     int64       `json:"node_id"`
	FromStage  stage.Stage `json:"from_stage,omitempty"`
	ToStage    stage.Stage `json:"to_stage"`
	ActorID    int64       `json:"actor_id"`
}

// Publisher emits stage-change events so dashboards and downstream services
// can follow ticket progress without polling the store.
type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) StageChanged(ctx context.Context, t *ticket.Ticket, from stage.Stage, actor types.ChatID) error {
	payload, err := json.Marshal(StageChanged{
		OccurredAt: time.Now().UTC(),
		TicketID:   t.ID.String(),
		NodeID:     int64(t.Node),
		FromStage:  from,
		ToStage:    t.Stage,
		ActorID:    int64(actor),
	})
	if err != nil {
		return err
	}
	return p.conn.Publish(stageSubject, payload)
}

func (p *Publisher) Close() {
	p.conn.Close()
}
