package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"bloom/internal/domain"
)

type Session struct {
	Token     string      `json:"token"`
	UserID    int64       `json:"userId"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (s Session) IsAdmin() bool {
	return s.Role == domain.RoleAdmin
}

type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// userSessionsKey indexes the live tokens of one user.
func userSessionsKey(userID int64) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

func (s *RedisSessionStore) Create(ctx context.Context, user domain.User) (*Session, error) {
	session := &Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshaling session: %w", err)
	}

	index := userSessionsKey(user.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.Token), data, s.ttl)
		pipe.SAdd(ctx, index, session.Token)
		pipe.Expire(ctx, index, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	return session, nil
}

// Get returns nil without error when the token is unknown or expired.
func (s *RedisSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	session, err := s.Get(ctx, token)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(token))
		if session != nil {
			pipe.SRem(ctx, userSessionsKey(session.UserID), token)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// RevokeUser deletes every session of userID.
func (s *RedisSessionStore) RevokeUser(ctx context.Context, userID int64) error {
	index := userSessionsKey(userID)
	tokens, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("listing user sessions: %w", err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, sessionKey(token))
	}
	keys = append(keys, index)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoking user sessions: %w", err)
	}
	return nil
}
