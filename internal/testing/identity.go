package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/discography/internal/shared"
)

// IdentityAccount is one account known to an [IdentityServer].
type IdentityAccount struct {
	Password  string
	Subject   string
	FirstName string
	LastName  string
}

// IdentityServer fakes an OAuth2 provider with a password grant token endpoint and a
// userinfo endpoint. Accounts are keyed by email.
type IdentityServer struct {
	*httptest.Server
	mu       sync.Mutex
	accounts map[string]IdentityAccount
	tokens   map[string]string
}

func NewIdentityServer(t *testing.T, accounts map[string]IdentityAccount) *IdentityServer {
	t.Helper()

	s := &IdentityServer{accounts: accounts, tokens: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", s.token)
	mux.HandleFunc("GET /userinfo", s.userInfo)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Config points an identity client at the fake server.
func (s *IdentityServer) Config() shared.IdentityConfig {
	return shared.IdentityConfig{
		ClientID:    "disco-test",
		TokenURL:    s.URL + "/token",
		UserInfoURL: s.URL + "/userinfo",
	}
}

func (s *IdentityServer) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "password" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	email := strings.ToLower(r.Form.Get("username"))
	account, ok := s.accounts[email]
	if !ok || account.Password != r.Form.Get("password") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}

	s.mu.Lock()
	token := fmt.Sprintf("token-%d", len(s.tokens)+1)
	s.tokens[token] = email
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"access_token": token, "token_type": "Bearer", "expires_in": 3600})
}

func (s *IdentityServer) userInfo(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	email, ok := s.tokens[token]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		return
	}

	account := s.accounts[email]
	writeJSON(w, http.StatusOK, map[string]string{
		"sub":         account.Subject,
		"email":       email,
		"given_name":  account.FirstName,
		"family_name": account.LastName,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
