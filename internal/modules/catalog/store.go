// README: Node provider backed by PostgreSQL.
package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mensa/internal/types"
)

var ErrNodeNotFound = errors.New("node not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Resolve loads a node's title, price, and owner identities.
func (s *Store) Resolve(ctx context.Context, id types.NodeID) (*Item, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, title, price, currency, owner_node_id, address,
		       owner1_id, owner2_id, owner3_id
		FROM nodes
		WHERE id = $1`, int64(id),
	)

	var it Item
	var owners [MaxOwners]int64
	err := row.Scan(
		&it.Node, &it.Title, &it.Price.Amount, &it.Price.Currency, &it.OwnerNode, &it.Address,
		&owners[0], &owners[1], &owners[2],
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNodeNotFound
	}
	if err != nil {
		return nil, err
	}
	for i, v := range owners {
		it.Owners[i] = types.ChatID(v)
	}
	return &it, nil
}
