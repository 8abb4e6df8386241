package services

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// Capabilities carried by session tokens.
const (
	CapCatalogWrite  = "catalog:write"
	CapPlaylistWrite = "playlist:write"
	CapAdmin         = "admin"
)

// Capabilities returns what user may do. Inactive users get nothing.
func Capabilities(user *models.User) []string {
	if !user.Active() {
		return []string{}
	}
	caps := []string{CapCatalogWrite, CapPlaylistWrite}
	if user.Admin() {
		caps = append(caps, CapAdmin)
	}
	return caps
}

// Claims is the payload of a session token. The subject is the local user id.
type Claims struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Active    bool     `json:"active"`
	Admin     bool     `json:"admin"`
	Caps      []string `json:"caps"`
	jwt.RegisteredClaims
}

// Can reports whether the token grants capability.
func (c *Claims) Can(capability string) bool { return slices.Contains(c.Caps, capability) }

// UserID returns the local user id the token was issued for.
func (c *Claims) UserID() string { return c.Subject }

// Session is an issued token.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(cfg shared.AuthConfig) *Sessions {
	ttl := cfg.TokenTTL.Duration
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Sessions{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, ttl: ttl, now: time.Now}
}

// Issue signs a token for user.
func (s *Sessions) Issue(user *models.User) (*Session, error) {
	now := s.now().UTC()
	expires := now.Add(s.ttl)

	claims := Claims{
		FirstName: user.FirstName(),
		LastName:  user.LastName(),
		Email:     user.Email(),
		Active:    user.Active(),
		Admin:     user.Admin(),
		Caps:      Capabilities(user),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Verify parses token and checks signature, issuer, expiry and the active flag.
func (s *Sessions) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return s.secret, nil }, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthExpired, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthInvalid, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", shared.ErrAuthInvalid)
	}
	if !claims.Active {
		return nil, fmt.Errorf("%w: user is inactive", shared.ErrAuthInvalid)
	}
	return &claims, nil
}
