package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/popeyesteak/pos-backend/api/responses"
	pkgerrors "github.com/popeyesteak/pos-backend/pkg/errors"
	"github.com/popeyesteak/pos-backend/pkg/logger"
	pkgredis "github.com/popeyesteak/pos-backend/pkg/redis"
)

// Checkout is the one double-submit-sensitive operation in the service:
// replaying an order creation would ring up the customer twice.
const checkoutTableParam = "/checkout"

type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response when a checkout is retried with the
// same Idempotency-Key. With a nil store the guard is disabled.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || !guardedRoute(r) {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if idempotencyKey == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			scope := strings.Join([]string{StaffFromContext(r.Context()), r.Method, r.URL.Path}, "|")
			key := store.IdempotencyKey(scope, idempotencyKey)

			if stored, getErr := store.Get(r.Context(), key); getErr != nil && !errors.Is(getErr, redis.Nil) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, getErr, "check idempotency"))
				return
			} else if stored != "" {
				record, decodeErr := decodeRecord(stored)
				if decodeErr != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, decodeErr, "decode idempotency record"))
					return
				}
				if record.RequestHash != requestHash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				writeStoredResponse(w, record)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			record := idempotencyRecord{
				Status:      defaultStatus(rec.status),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}

			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(r.Context(), logg, "marshal idempotency record", marshalErr)
				return
			}

			if _, setErr := store.SetNX(r.Context(), key, string(payload), ttl); setErr != nil {
				logError(r.Context(), logg, "persist idempotency record", setErr)
			}
		})
	}
}

func guardedRoute(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	return strings.HasSuffix(routePattern(r), checkoutTableParam)
}

func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if record == nil {
		return
	}
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil {
		return
	}
	logg.Error(ctx, msg, err)
}

type responseCapture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseCapture) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseCapture) Write(p []byte) (int, error) {
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}
