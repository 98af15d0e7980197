package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// ErrNotFound is returned for unknown or expired session ids
var ErrNotFound = errors.New("session not found")

// Session is the server-side state behind a session cookie
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id"`
	UserType  string    `json:"user_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps sessions in Redis with a sliding expiry
type Store struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

// NewStore creates a session store whose entries live for ttl after last use
func NewStore(rdb goredis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// TTL returns the session lifetime, also used as cookie Max-Age
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func key(id string) string {
	return keyPrefix + id
}

// Create stores a new session under a random id
func (s *Store) Create(ctx context.Context, userID, userType string) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserType:  userType,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, key(sess.ID), data, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("session id collision")
	}

	return sess, nil
}

// Get loads a session by id
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	data, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	sess.ID = id

	return &sess, nil
}

// Touch extends the session expiry
func (s *Store) Touch(ctx context.Context, id string) error {
	ok, err := s.rdb.Expire(ctx, key(id), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session; deleting an unknown id is not an error
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
