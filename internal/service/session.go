package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/types"
)

// SessionStore persists server-side session records.
type SessionStore interface {
	Save(ctx context.Context, s *models.Session, ttl time.Duration) error
	// Get returns ErrSessionNotFound for unknown ids.
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore keeps sessions as JSON values under session:<id>.
type RedisSessionStore struct {
	redis *redis.Client
}

var _ SessionStore = (*RedisSessionStore)(nil)

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: client}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping checks connectivity of the backing Redis.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// SessionManager issues, rotates and expires authenticated sessions. The
// browser only ever holds a signed token naming the session id.
type SessionManager struct {
	store  SessionStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
}

var _ ISessionManager = (*SessionManager)(nil)

func NewSessionManager(store SessionStore, secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// TTL is the sliding lifetime of a session.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Regenerate discards previousID and binds handle to a brand new session.
// On any failure nothing is bound and ErrSessionRegenerate is returned.
func (m *SessionManager) Regenerate(ctx context.Context, previousID string, handle *models.AccountHandle) (*models.Session, error) {
	if handle == nil {
		return nil, fmt.Errorf("%w: no account to bind", ErrSessionRegenerate)
	}
	if previousID != "" {
		if err := m.store.Delete(ctx, previousID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSessionRegenerate, err)
		}
	}

	id := m.newID()
	for id == previousID {
		id = m.newID()
	}

	now := m.now().UTC()
	session := &models.Session{
		ID:        id,
		AccountID: handle.ID,
		Username:  handle.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, session, m.ttl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionRegenerate, err)
	}
	return session, nil
}

func (m *SessionManager) Load(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	session, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(m.now()) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Touch slides the expiry forward and returns the refreshed session.
func (m *SessionManager) Touch(ctx context.Context, s *models.Session) (*models.Session, error) {
	refreshed := *s
	refreshed.ExpiresAt = m.now().UTC().Add(m.ttl)
	if err := m.store.Save(ctx, &refreshed, m.ttl); err != nil {
		return nil, err
	}
	return &refreshed, nil
}

func (m *SessionManager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// EncodeCookie signs the session id into the cookie value.
func (m *SessionManager) EncodeCookie(s *models.Session) (string, error) {
	claims := types.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return signed, nil
}

// DecodeCookie verifies a cookie value and returns the session id in it.
func (m *SessionManager) DecodeCookie(value string) (string, error) {
	claims := &types.SessionClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return "", ErrSessionNotFound
	}
	return claims.ID, nil
}
