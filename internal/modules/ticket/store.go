// README: Ticket store backed by PostgreSQL with compare-and-swap stage updates.
package ticket

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mensa/internal/modules/catalog"
	"mensa/internal/modules/stage"
	"mensa/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, t *Ticket) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO tickets (
			id, node_id, customer_id, customer_anchor,
			owner1_anchor, owner2_anchor, owner3_anchor,
			stage, stage_version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10, $10
		)`,
		string(t.ID),
		int64(t.Node),
		int64(t.Customer),
		t.CustomerAnchor.Int(),
		messageInt(t.OwnerAnchors.At(0)), messageInt(t.OwnerAnchors.At(1)), messageInt(t.OwnerAnchors.At(2)),
		string(t.Stage),
		t.StageVersion,
		t.CreatedAt,
	)
	return err
}

// Load returns the ticket together with the current owner identities of its
// node; owners live on the node row, not on the ticket.
func (s *PGStore) Load(ctx context.Context, id types.TicketID) (*Ticket, catalog.OwnerSet, error) {
	row := s.db.QueryRow(ctx, `
		SELECT t.id, t.node_id, t.customer_id, t.customer_anchor,
		       t.owner1_anchor, t.owner2_anchor, t.owner3_anchor,
		       t.stage, t.stage_version,
		       t.customer_status, t.owner1_status, t.owner2_status, t.owner3_status,
		       t.audit_message, t.created_at, t.updated_at,
		       n.owner1_id, n.owner2_id, n.owner3_id
		FROM tickets t
		JOIN nodes n ON n.id = t.node_id
		WHERE t.id = $1`, string(id),
	)

	var t Ticket
	var ownerAnchors [catalog.MaxOwners]*int
	var ownerStatus [catalog.MaxOwners]*int
	var customerStatus, auditMessage *int
	var owners [catalog.MaxOwners]int64

	err := row.Scan(
		&t.ID, &t.Node, &t.Customer, &t.CustomerAnchor,
		&ownerAnchors[0], &ownerAnchors[1], &ownerAnchors[2],
		&t.Stage, &t.StageVersion,
		&customerStatus, &ownerStatus[0], &ownerStatus[1], &ownerStatus[2],
		&auditMessage, &t.CreatedAt, &t.UpdatedAt,
		&owners[0], &owners[1], &owners[2],
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.OwnerSet{}, ErrNotFound
	}
	if err != nil {
		return nil, catalog.OwnerSet{}, err
	}

	t.CustomerStatus = slotMessage(customerStatus)
	t.AuditMessage = slotMessage(auditMessage)
	var ownerSet catalog.OwnerSet
	for i := 0; i < catalog.MaxOwners; i++ {
		t.OwnerAnchors.Set(i, slotMessage(ownerAnchors[i]))
		t.OwnerStatus.Set(i, slotMessage(ownerStatus[i]))
		ownerSet[i] = types.ChatID(owners[i])
	}
	return &t, ownerSet, nil
}

// UpdateStage persists a stage transition guarded by the version the caller
// read. It reports false when another actor won the race.
func (s *PGStore) UpdateStage(ctx context.Context, id types.TicketID, from, to stage.Stage, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE tickets
		SET stage = $1,
		    stage_version = stage_version + 1,
		    updated_at = $2
		WHERE id = $3 AND stage = $4 AND stage_version = $5`,
		string(to), time.Now().UTC(), string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateStatusMessages writes the whole status-message bookkeeping set in a
// single statement, after all broadcast branches have completed.
func (s *PGStore) UpdateStatusMessages(ctx context.Context, t *Ticket) error {
	_, err := s.db.Exec(ctx, `
		UPDATE tickets
		SET customer_status = $1,
		    owner1_status = $2, owner2_status = $3, owner3_status = $4,
		    audit_message = $5,
		    updated_at = $6
		WHERE id = $7`,
		messageInt(t.CustomerStatus),
		messageInt(t.OwnerStatus.At(0)), messageInt(t.OwnerStatus.At(1)), messageInt(t.OwnerStatus.At(2)),
		messageInt(t.AuditMessage),
		time.Now().UTC(),
		string(t.ID),
	)
	return err
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ticket_stage_events (
			ticket_id, from_stage, to_stage, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5)`,
		string(e.TicketID),
		string(e.FromStage),
		string(e.ToStage),
		int64(e.Actor),
		e.CreatedAt,
	)
	return err
}

func slotMessage(v *int) *types.MessageID {
	if v == nil {
		return nil
	}
	m := types.MessageID(*v)
	return &m
}

func messageInt(m *types.MessageID) *int {
	if m == nil {
		return nil
	}
	v := m.Int()
	return &v
}
