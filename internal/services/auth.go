package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// RegisterInput mirrors a provider account as a local user.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService bridges the identity provider and local session tokens.
// Credentials are never stored locally; the provider's verdict is trusted.
type AuthService struct {
	users    models.UserStore
	provider IdentityProvider
	sessions *Sessions
	logger   *log.Logger
}

func NewAuthService(users models.UserStore, provider IdentityProvider, sessions *Sessions, logger *log.Logger) *AuthService {
	return &AuthService{users: users, provider: provider, sessions: sessions, logger: logger}
}

func (s *AuthService) Sessions() *Sessions { return s.sessions }

// Register verifies the credentials and creates the local mirror of the account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	identity, err := s.provider.VerifyCredentials(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindBySubject(ctx, identity.Subject); err == nil {
		return nil, fmt.Errorf("user %s is already registered: %w", identity.Email, shared.ErrDuplicateEntity)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := validateNames(in.FirstName, in.LastName); err != nil {
		return nil, err
	}

	user := models.NewUser(identity.Subject, identity.Email, in.FirstName, in.LastName)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "id", user.ID(), "email", user.Email())
	return user, nil
}

// Login verifies credentials and issues a session for the local user keyed by the
// provider subject, creating or refreshing the mirror as needed.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	identity, err := s.provider.VerifyCredentials(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.mirror(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, fmt.Errorf("%w: user is inactive", shared.ErrAuthInvalid)
	}

	session, err := s.sessions.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session issued", "user", user.ID(), "expires", session.ExpiresAt)
	return session, nil
}

// Me returns the user a verified session belongs to.
func (s *AuthService) Me(ctx context.Context, claims *Claims) (*models.User, error) {
	user, err := s.users.Get(ctx, claims.UserID())
	if errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("%w: session user no longer exists", shared.ErrAuthInvalid)
	}
	return user, err
}

func (s *AuthService) mirror(ctx context.Context, identity *ExternalIdentity) (*models.User, error) {
	user, err := s.users.FindBySubject(ctx, identity.Subject)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		user = models.NewUser(identity.Subject, identity.Email, identity.FirstName, identity.LastName)
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	case err != nil:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if strings.EqualFold(user.Email(), strings.TrimSpace(identity.Email)) {
		return user, nil
	}
	user.SetEmail(identity.Email)
	user.Touch()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func validateNames(first, last string) error {
	fields := []struct{ name, value string }{{"first_name", first}, {"last_name", last}}
	for _, f := range fields {
		if n := utf8.RuneCountInString(shared.NormalizeName(f.value)); n < 1 || n > 50 {
			return fmt.Errorf("%w: %s must be 1-50 characters", shared.ErrInvalidInput, f.name)
		}
	}
	return nil
}
