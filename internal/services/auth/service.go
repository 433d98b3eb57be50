package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/petbattle/internal/dependencies/clock"
	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrAddressReserved    = errors.New("address is reserved")
	ErrInvalidSecret      = errors.New("secret must be between 8 and 72 bytes")
	ErrInvalidAddress     = errors.New("address is required")
)

// Secret length bounds. bcrypt ignores anything past 72 bytes.
const (
	MinSecretLength = 8
	MaxSecretLength = 72
)

// Session represents an authenticated session for an address
type Session struct {
	Token     string
	Actor     model.ActorID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service lets an actor claim an address with a secret and open sessions
// for it. Battle requests are sent as the address a session belongs to.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
	hashCost        int
	reserved        []model.ActorID
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration

	// HashCost is the bcrypt cost for stored secrets
	HashCost int

	// Reserved addresses can never be claimed
	Reserved []model.ActorID
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		HashCost:        bcrypt.DefaultCost,
	}
}

// New creates a new auth service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = defaults.HashCost
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		logger:          logger,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
		hashCost:        cfg.HashCost,
		reserved:        slices.Clone(cfg.Reserved),
	}
}

// Claim binds an unclaimed address to secret and opens a session for it
func (s *Service) Claim(ctx context.Context, address model.ActorID, secret string) (*Session, error) {
	if address.IsZero() {
		return nil, ErrInvalidAddress
	}
	if slices.Contains(s.reserved, address) {
		return nil, ErrAddressReserved
	}
	if len(secret) < MinSecretLength || len(secret) > MaxSecretLength {
		return nil, ErrInvalidSecret
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.hashCost)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Address:    address,
		SecretHash: string(hash),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("address claimed", slog.String("address", address.String()))
	return s.createSession(address), nil
}

// Login checks the secret for a claimed address and opens a session
func (s *Service) Login(ctx context.Context, address model.ActorID, secret string) (*Session, error) {
	account, err := s.storage.GetAccount(ctx, address)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.SecretHash), []byte(secret)); err != nil {
		s.logger.Warn("login failed", slog.String("address", address.String()))
		return nil, ErrInvalidCredentials
	}

	return s.createSession(address), nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Service) createSession(address model.ActorID) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     generateToken(),
		Actor:     address,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

func generateToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return "sess_" + base64.RawURLEncoding.EncodeToString(b)
}

// CleanExpiredSessions removes expired sessions and returns how many
func (s *Service) CleanExpiredSessions() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// RunCleanup calls CleanExpiredSessions every interval until ctx is done
func (s *Service) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.CleanExpiredSessions(); removed > 0 {
				s.logger.Debug("expired sessions removed", slog.Int("count", removed))
			}
		}
	}
}
