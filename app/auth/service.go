package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ehime-live/live-schedule/app/database"
)

var ErrInvalidCredentials = errors.New("Invalid credentials")

// MissingFieldsError reports login fields that were left empty.
type MissingFieldsError struct {
	Fields map[string]string
}

func (e *MissingFieldsError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, key := range []string{"name", "password"} {
		if msg, ok := e.Fields[key]; ok {
			messages = append(messages, msg)
		}
	}
	return strings.Join(messages, ", ")
}

type Service struct {
	users    database.UserRepository
	sessions database.SessionRepository
	ttl      time.Duration
	now      func() time.Time
	verify   func(password, encoded string) (bool, error)
}

func NewService(users database.UserRepository, sessions database.SessionRepository, ttl time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		verify:   VerifyPassword,
	}
}

// Login checks the credentials and opens a session for the user.
func (s *Service) Login(ctx context.Context, name, password string) (*database.Session, *database.User, error) {
	name = strings.TrimSpace(name)

	missing := map[string]string{}
	if name == "" {
		missing["name"] = "Name is required"
	}
	if password == "" {
		missing["password"] = "Password is required"
	}
	if len(missing) > 0 {
		return nil, nil, &MissingFieldsError{Fields: missing}
	}

	user, err := s.users.GetUserByName(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		_, _ = s.verify(password, dummyHash)
		slog.Warn("Login failed", "name", name, "reason", "unknown user")
		return nil, nil, ErrInvalidCredentials
	}

	ok, err := s.verify(password, user.PasswordHash)
	if err != nil {
		slog.Error("Failed to verify password", "user", user.Name, "error", err)
		return nil, nil, ErrInvalidCredentials
	}
	if !ok {
		slog.Warn("Login failed", "name", name, "reason", "wrong password")
		return nil, nil, ErrInvalidCredentials
	}

	now := s.now()
	session := database.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("User logged in", "user", user.Name)
	return &session, user, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its user. It returns nil
// without error for unknown or expired tokens.
func (s *Service) Authenticate(ctx context.Context, token string) (*database.User, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.sessions.GetSession(ctx, token, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session user: %w", err)
	}
	return user, nil
}

// CreateUser hashes the password and stores a new user.
func (s *Service) CreateUser(ctx context.Context, name, password string) (*database.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	existing, err := s.users.GetUserByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user '%s' already exists", name)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.CreateUser(ctx, name, hash)
}

// PurgeExpired removes sessions that have expired.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}

func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}
