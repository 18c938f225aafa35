package spa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const profileKey = "spa:profile"

// Store persists the spa profile in redis. Absent a stored profile, readers
// get the defaults.
type Store struct {
	redis *redis.Client
}

// NewStore creates a new profile store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

// Get retrieves the spa profile, returning defaults if none is stored.
func (s *Store) Get(ctx context.Context) (*Profile, error) {
	data, err := s.redis.Get(ctx, profileKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return DefaultProfile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("spa: get profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("spa: unmarshal profile: %w", err)
	}
	return &p, nil
}

// Set saves the spa profile.
func (s *Store) Set(ctx context.Context, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("spa: marshal profile: %w", err)
	}
	if err := s.redis.Set(ctx, profileKey, data, 0).Err(); err != nil {
		return fmt.Errorf("spa: set profile: %w", err)
	}
	return nil
}
