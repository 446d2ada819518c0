package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/unihome/unihome-api/internal/core/domain"
)

const redisKeyPrefix = "session:"

// RedisStore keeps an opaque session id in the cookie and the JSON-encoded
// public identity in Redis, expiring with the cookie.
type RedisStore struct {
	client *redis.Client
	opts   CookieOptions
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, opts CookieOptions) *RedisStore {
	return &RedisStore{
		client: client,
		opts:   opts.withDefaults(),
		now:    time.Now,
	}
}

// Create stores a new session and points the cookie at it. A session the
// request already carries is deleted first so re-login does not leave it
// behind until its TTL runs out.
func (s *RedisStore) Create(ctx context.Context, w http.ResponseWriter, r *http.Request, identity *domain.Identity) error {
	if identity == nil {
		return errors.New("create session: nil identity")
	}
	if prev, ok := s.sessionID(r); ok {
		if err := s.client.Del(ctx, s.key(prev)).Err(); err != nil {
			return fmt.Errorf("replace session: %w", err)
		}
	}

	payload, err := json.Marshal(identity.Public())
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	id := uuid.NewString()
	if err := s.client.Set(ctx, s.key(id), payload, s.opts.TTL).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	s.opts.write(w, id, s.now())
	return nil
}

// Read returns an error only when Redis itself fails. Unknown, expired or
// undecodable sessions read as no session.
func (s *RedisStore) Read(r *http.Request) (*domain.Identity, error) {
	id, ok := s.sessionID(r)
	if !ok {
		return nil, nil
	}

	payload, err := s.client.Get(r.Context(), s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var identity domain.Identity
	if err := json.Unmarshal(payload, &identity); err != nil || identity.Email == "" {
		return nil, nil
	}
	return identity.Public(), nil
}

// Destroy clears the cookie and deletes the server-side entry if one is
// referenced. Deleting an absent entry is not an error.
func (s *RedisStore) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s.opts.clear(w)

	id, ok := s.sessionID(r)
	if !ok {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) sessionID(r *http.Request) (string, bool) {
	raw := s.opts.value(r)
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (s *RedisStore) key(id string) string {
	return redisKeyPrefix + id
}
