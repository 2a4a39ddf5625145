// Package session keeps the live cart of each register in Redis. One
// register owns one session; every mutation rewrites the whole JSON
// snapshot, which matches the cart's single-writer, last-applied-wins
// consistency model.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"canopy-pos/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("cart session not found")
)

const keyPrefix = "pos:cart:"

// Store persists cart sessions in Redis with a TTL so abandoned
// registers eventually clean up after themselves.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session store
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Save writes the full session snapshot, refreshing the TTL.
func (s *Store) Save(ctx context.Context, sess domain.CartSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode cart session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sess.ID.String(), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart session: %w", err)
	}

	return nil
}

// Get loads a session by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (domain.CartSession, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.CartSession{}, ErrSessionNotFound
		}
		return domain.CartSession{}, fmt.Errorf("failed to load cart session: %w", err)
	}

	var sess domain.CartSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return domain.CartSession{}, fmt.Errorf("failed to decode cart session: %w", err)
	}

	return sess, nil
}

// Delete removes a session, as after a completed or parked sale.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, keyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete cart session: %w", err)
	}
	return nil
}
