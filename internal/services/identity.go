package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/desertthunder/discography/internal/shared"
)

// ExternalIdentity is what the identity provider vouches for after verifying credentials.
type ExternalIdentity struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
}

// IdentityProvider verifies credentials against an external account system.
type IdentityProvider interface {
	// VerifyCredentials returns the provider's identity for email and password.
	// Rejected credentials wrap [shared.ErrInvalidCredentials]; an unreachable or
	// misbehaving provider wraps [shared.ErrIdentityProvider].
	VerifyCredentials(ctx context.Context, email, password string) (*ExternalIdentity, error)
}

// OAuthProvider verifies credentials with the OAuth2 resource owner password grant and
// reads the identity from the provider's userinfo endpoint.
type OAuthProvider struct {
	config      *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewOAuthProvider creates an [OAuthProvider] from the identity config.
func NewOAuthProvider(cfg shared.IdentityConfig, client *http.Client) *OAuthProvider {
	if client == nil {
		client = http.DefaultClient
	}

	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  client,
	}
}

func (p *OAuthProvider) VerifyCredentials(ctx context.Context, email, password string) (*ExternalIdentity, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrInvalidInput)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	identity, err := p.userInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	if identity.Subject == "" {
		return nil, fmt.Errorf("%w: userinfo response has no subject", shared.ErrIdentityProvider)
	}
	if identity.Email == "" {
		identity.Email = email
	}
	return identity, nil
}

func (p *OAuthProvider) userInfo(ctx context.Context, token *oauth2.Token) (*ExternalIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request failed: %v", shared.ErrIdentityProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read userinfo: %v", shared.ErrIdentityProvider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned status %d", shared.ErrIdentityProvider, resp.StatusCode)
	}

	var identity ExternalIdentity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("%w: failed to decode userinfo: %v", shared.ErrIdentityProvider, err)
	}
	return &identity, nil
}

// classifyTokenError separates rejected credentials from provider faults.
func classifyTokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		switch re.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, re.ErrorCode)
		}
	}
	return fmt.Errorf("%w: %v", shared.ErrIdentityProvider, err)
}
