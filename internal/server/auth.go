package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/discography/internal/services"
)

// AuthHandler serves registration, login and the current user.
type AuthHandler struct {
	auth    *services.AuthService
	limiter *rate.Limiter
	logger  *log.Logger
}

func (h *AuthHandler) Routes() []Route {
	limit := RateLimit(h.limiter, h.logger)
	return []Route{
		{Method: http.MethodPost, Path: "/auth/register", Handler: h.register, Middleware: []Middleware{limit}},
		{Method: http.MethodPost, Path: "/auth/login", Handler: h.login, Middleware: []Middleware{limit}},
		{Method: http.MethodGet, Path: "/auth/me", Handler: h.me, Auth: true},
	}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.auth.Register(r.Context(), in)
	reply(w, h.logger, http.StatusCreated, user, err)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	session, err := h.auth.Login(r.Context(), in)
	reply(w, h.logger, http.StatusOK, session, err)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	user, err := h.auth.Me(r.Context(), claims)
	reply(w, h.logger, http.StatusOK, user, err)
}
