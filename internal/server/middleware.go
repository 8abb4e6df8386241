package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/discography/internal/services"
	"github.com/desertthunder/discography/internal/shared"
)

type claimsKey struct{}

// ClaimsFrom returns the session claims placed on ctx by the guard.
func ClaimsFrom(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*services.Claims)
	return claims, ok
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs method, path, status and duration of every request.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		})
	}
}

// Recover turns a handler panic into a 500 internal_failure response.
func Recover(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					writeError(w, logger, fmt.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, v))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate returns the guard factory: it verifies the bearer token and, when capability
// is set, requires the token to grant it.
func Authenticate(sessions *services.Sessions, logger *log.Logger) func(capability string) Middleware {
	return func(capability string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				token, ok := bearerToken(r)
				if !ok {
					writeError(w, logger, fmt.Errorf("%w: missing bearer token", shared.ErrAuthInvalid))
					return
				}

				claims, err := sessions.Verify(token)
				if err != nil {
					writeError(w, logger, err)
					return
				}
				if capability != "" && !claims.Can(capability) {
					writeError(w, logger, fmt.Errorf("%w: %s required", shared.ErrUnauthorized, capability))
					return
				}

				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
			})
		}
	}
}

// RateLimit rejects requests with 429 once limiter runs out of tokens. A nil limiter allows everything.
func RateLimit(limiter *rate.Limiter, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, logger, fmt.Errorf("%w: slow down", shared.ErrRateLimited))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
