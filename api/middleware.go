package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const (
	subjectKey   contextKey = "subject"
	roleKey      contextKey = "role"
	requestIDKey contextKey = "request_id"
)

// RequestID assigns each request a UUID exposed in the X-Request-ID header
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Recover converts handler panics into 500 responses
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(log.Fields{
					"panic":  rec,
					"path":   r.URL.Path,
					"method": r.Method,
				}).Error("Handler panicked")
				respondError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// Logger emits one structured log line per request
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    rec.status,
			"duration":  time.Since(start).String(),
			"requestID": r.Context().Value(requestIDKey),
		}).Info("Request handled")
	})
}

// Auth validates the bearer token and requires one of the given roles
func Auth(tokens *TokenService, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				respondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				if err == ErrExpiredToken {
					respondError(w, http.StatusUnauthorized, "token expired")
				} else {
					respondError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if !allowed[claims.Role] {
				respondError(w, http.StatusForbidden, "insufficient role")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject extracts the authenticated subject from the request context
func Subject(ctx context.Context) string {
	if subject, ok := ctx.Value(subjectKey).(string); ok {
		return subject
	}
	return ""
}
