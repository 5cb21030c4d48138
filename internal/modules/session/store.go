// README: Session store backed by Redis with a sliding TTL.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mensa/internal/types"
)

// Profiles outlive a single browsing session but not an idle month.
const profileTTL = 30 * 24 * time.Hour

var ErrNoProfile = errors.New("no delivery profile")

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func profileKey(customer types.ChatID) string {
	return fmt.Sprintf("session:profile:%d", int64(customer))
}

func (s *Store) Save(ctx context.Context, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, profileKey(p.Customer), data, profileTTL).Err()
}

func (s *Store) Get(ctx context.Context, customer types.ChatID) (*Profile, error) {
	val, err := s.redis.Get(ctx, profileKey(customer)).Result()
	if err == redis.Nil {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, err
	}
	// refresh the TTL on read so active customers never lose their profile
	_ = s.redis.Expire(ctx, profileKey(customer), profileTTL).Err()
	return &p, nil
}

func (s *Store) Delete(ctx context.Context, customer types.ChatID) error {
	return s.redis.Del(ctx, profileKey(customer)).Err()
}
