package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/teammanager/server-go/internal/redis"
	"github.com/teammanager/server-go/internal/util"
)

// Session is the server-side state referenced by the cookie token. Only the
// HMAC of the token ever reaches Redis, so a leaked dump of the store cannot
// be replayed as cookies.
type Session struct {
	UserID              *int64               `json:"user_id,omitempty"`
	Username            string               `json:"username,omitempty"`
	CSRFToken           string               `json:"csrf_token,omitempty"`
	CaptchaAnswer       *int                 `json:"captcha_answer,omitempty"`
	PendingRegistration *PendingRegistration `json:"pending_registration,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

// PendingRegistration holds a registration that awaits email verification.
// The plaintext password is never stored, only its bcrypt hash.
type PendingRegistration struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Code         string    `json:"code"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *Session) LoggedIn() bool {
	return s.UserID != nil
}

// Store keeps sessions in Redis as JSON blobs with a rolling TTL.
type Store struct {
	redis  *redis.Client
	secret string
	ttl    time.Duration
	logger zerolog.Logger
}

func NewStore(redisClient *redis.Client, secret string, ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		redis:  redisClient,
		secret: secret,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_store").Logger(),
	}
}

func (s *Store) key(token string) string {
	return redis.SessionKey(util.HmacSHA256(s.secret, token))
}

// New creates an empty session and returns it together with the cookie token.
func (s *Store) New(ctx context.Context) (string, *Session, error) {
	token, err := util.GenerateToken()
	if err != nil {
		return "", nil, fmt.Errorf("generating session token: %w", err)
	}
	sess := &Session{CreatedAt: time.Now().UTC()}
	if err := s.Save(ctx, token, sess); err != nil {
		return "", nil, err
	}
	return token, sess, nil
}

// Get returns the session for token, or nil when none exists.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn().Err(err).Msg("discarding undecodable session")
		_ = s.redis.Del(ctx, s.key(token)).Err()
		return nil, nil
	}
	return &sess, nil
}

// Save writes the session back and resets its TTL.
func (s *Store) Save(ctx context.Context, token string, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(token), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// Destroy removes the session. Missing keys are not an error.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}

// Regenerate moves the session state under a fresh token and deletes the old
// entry. Handlers call this on login so a pre-auth cookie cannot be fixated
// into an authenticated one.
func (s *Store) Regenerate(ctx context.Context, oldToken string, sess *Session) (string, error) {
	newToken, err := util.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	if err := s.Save(ctx, newToken, sess); err != nil {
		return "", err
	}
	if err := s.redis.Del(ctx, s.key(oldToken)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to delete superseded session")
	}
	return newToken, nil
}

// TTL exposes the configured session lifetime for cookie Max-Age.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
