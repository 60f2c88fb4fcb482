package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"slotbook/internal/domain"
	"slotbook/internal/metrics"
	"slotbook/internal/models"
	"slotbook/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	ctxAdminID ctxKey = iota
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(logger *zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if name := cur.GetName(); name != "" {
					route = name
				}
			}
			metrics.IncHTTP(route, fmt.Sprintf("%dxx", recorder.status/100))

			logger.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

func corsMiddleware(allowed []string) mux.MiddlewareFunc {
	allowAll := len(allowed) == 0
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		origins[strings.TrimRight(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || origins[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+models.IdempotencyHeader)
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// adminOnly requires a valid bearer token and stores the admin id in the request context.
func adminOnly(auth *service.AuthService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := auth.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxAdminID, claims.Subject)
		next(w, r.WithContext(ctx))
	}
}

func adminID(ctx context.Context) string {
	id, _ := ctx.Value(ctxAdminID).(string)
	return id
}

// bodyRecorder keeps a copy of the response so it can be replayed.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *bodyRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// idempotent replays the stored response for a repeated Idempotency-Key and rejects
// a concurrent request carrying a key that is still in flight. Server errors are
// not stored, so the client may retry them with the same key.
func idempotent(state domain.StateRepository, logger *zerolog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(models.IdempotencyHeader))
		if key == "" || state == nil {
			next(w, r)
			return
		}
		key = r.URL.Path + ":" + key
		ctx := r.Context()

		if stored, err := state.GetResponse(ctx, key); err != nil {
			logger.Warn().Err(err).Msg("Idempotency lookup failed")
		} else if stored != nil {
			w.Header().Set("Content-Type", stored.ContentType)
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(stored.Status)
			_, _ = w.Write(stored.Body)
			return
		}

		locked, err := state.AcquireLock(ctx, key, time.Minute)
		if err != nil {
			logger.Warn().Err(err).Msg("Idempotency lock failed")
		} else if !locked {
			writeError(w, http.StatusConflict, "request with this idempotency key is in progress")
			return
		} else {
			defer func() {
				if err := state.ReleaseLock(context.WithoutCancel(ctx), key); err != nil {
					logger.Warn().Err(err).Msg("Idempotency unlock failed")
				}
			}()
		}

		rec := &bodyRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		if rec.status >= http.StatusInternalServerError {
			return
		}
		resp := &models.StoredResponse{
			Key:         key,
			Status:      rec.status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
			CreatedAt:   time.Now().UTC(),
		}
		if err := state.SaveResponse(context.WithoutCancel(ctx), resp, models.IdempotencyTTL*time.Second); err != nil {
			logger.Warn().Err(err).Msg("Idempotency store failed")
		}
	}
}
