package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"rhmaster/internal/requestctx"
	"rhmaster/internal/transport/http/api"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
)

var (
	ErrIdempotencyConflict   = errors.New("idempotency key conflicts with an earlier request")
	ErrIdempotencyInProgress = errors.New("a request with this idempotency key is still running")
)

type idempotentResponse struct {
	hash        string
	done        bool
	status      int
	contentType string
	body        []byte
	expires     time.Time
}

// IdempotencyStore remembers successful responses per operator, endpoint
// and key for ttl. It lives in process memory so replays also work while
// the remote store is offline.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*idempotentResponse
	now     func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ttl: ttl, entries: map[string]*idempotentResponse{}, now: time.Now}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// begin returns a stored response to replay, or reserves the key for a new
// request when it returns nil and no error.
func (s *IdempotencyStore) begin(key, hash string) (*idempotentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, entry := range s.entries {
		if entry.done && now.After(entry.expires) {
			delete(s.entries, k)
		}
	}
	entry, ok := s.entries[key]
	if !ok {
		s.entries[key] = &idempotentResponse{hash: hash}
		return nil, nil
	}
	if entry.hash != hash {
		return nil, ErrIdempotencyConflict
	}
	if !entry.done {
		return nil, ErrIdempotencyInProgress
	}
	replay := *entry
	return &replay, nil
}

// finish stores a 2xx response; any other outcome releases the key so the
// request can be retried.
func (s *IdempotencyStore) finish(key string, status int, contentType string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return
	}
	if status < 200 || status >= 300 {
		delete(s.entries, key)
		return
	}
	entry.done = true
	entry.status = status
	entry.contentType = contentType
	entry.body = body
	entry.expires = s.now().Add(s.ttl)
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	if c.status == 0 {
		c.status = status
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key. Requests without the header pass through.
func Idempotency(store *IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqID := GetRequestID(r.Context())
			payload, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(payload))

			scoped := GetOperator(r.Context()) + "|" + r.Method + " " + r.URL.Path + "|" + key
			replay, err := store.begin(scoped, RequestHash(payload))
			switch {
			case errors.Is(err, ErrIdempotencyConflict):
				api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), reqID)
				return
			case errors.Is(err, ErrIdempotencyInProgress):
				api.Fail(w, http.StatusConflict, "idempotency_in_progress", err.Error(), reqID)
				return
			case replay != nil:
				requestctx.Logger(r.Context()).Info("idempotent replay", zap.String("path", r.URL.Path))
				w.Header().Set("Content-Type", replay.contentType)
				w.Header().Set(replayedHeader, "true")
				w.WriteHeader(replay.status)
				_, _ = w.Write(replay.body)
				return
			}

			capture := &captureWriter{ResponseWriter: w}
			completed := false
			defer func() {
				if !completed {
					store.finish(scoped, http.StatusInternalServerError, "", nil)
				}
			}()
			next.ServeHTTP(capture, r)
			completed = true

			status := capture.status
			if status == 0 {
				status = http.StatusOK
			}
			store.finish(scoped, status, w.Header().Get("Content-Type"), capture.body.Bytes())
		})
	}
}
