package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"finnkey-backend/internal/models"
)

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis: connection refused")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMemoryStore_FixedWindow(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Stop()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i := int64(1); i <= 3; i++ {
		got, _ := store.Incr(context.Background(), "10.0.0.1", time.Minute)
		if got != i {
			t.Fatalf("hit %d: expected count %d, got %d", i, i, got)
		}
	}

	if got, _ := store.Incr(context.Background(), "10.0.0.2", time.Minute); got != 1 {
		t.Fatalf("expected separate counter per key, got %d", got)
	}

	now = now.Add(time.Minute)
	if got, _ := store.Incr(context.Background(), "10.0.0.1", time.Minute); got != 1 {
		t.Fatalf("expected counter reset after window, got %d", got)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Stop()
	rl := NewRateLimiter(store, 2, time.Minute)
	h := rl.Middleware(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/chat", nil)
		req.RemoteAddr = "192.0.2.7:51000"
		req.Header.Set(RequestIDHeader, "rid-1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)

		if i == 2 {
			var body models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Code != "RATE_LIMITED" || body.Error == "" || body.RequestID != "rid-1" {
				t.Fatalf("unexpected error body: %+v", body)
			}
		}
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestRateLimiter_KeysByHostNotPort(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Stop()
	h := NewRateLimiter(store, 1, time.Minute).Middleware(okHandler())

	for i, addr := range []string{"192.0.2.7:1000", "192.0.2.7:2000"} {
		req := httptest.NewRequest(http.MethodPost, "/chat", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if i == 1 && rr.Code != http.StatusTooManyRequests {
			t.Fatalf("expected second port of same host to share budget, got %d", rr.Code)
		}
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	h := NewRateLimiter(failingStore{}, 1, time.Minute).Middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected request to pass when store fails, got %d", rr.Code)
	}
}

// scriptedRedis emulates the INCR/PEXPIRE script. The embedded Scripter is nil;
// only Eval and EvalSha are used by redis.Script.Run.
type scriptedRedis struct {
	redis.Scripter
	counts  map[string]int64
	expires map[string]int64
}

func newScriptedRedis() *scriptedRedis {
	return &scriptedRedis{counts: map[string]int64{}, expires: map[string]int64{}}
}

func (f *scriptedRedis) run(keys []string, args []interface{}) *redis.Cmd {
	k := keys[0]
	f.counts[k]++
	if f.counts[k] == 1 {
		f.expires[k] = args[0].(int64)
	}
	return redis.NewCmdResult(f.counts[k], nil)
}

func (f *scriptedRedis) EvalSha(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.run(keys, args)
}

func (f *scriptedRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.run(keys, args)
}

func TestRedisStore_CountsAndExpiresOnFirstHit(t *testing.T) {
	fake := newScriptedRedis()
	store := NewRedisStore(fake)

	for i := int64(1); i <= 3; i++ {
		got, err := store.Incr(context.Background(), "192.0.2.7", time.Minute)
		if err != nil {
			t.Fatalf("hit %d: unexpected error: %v", i, err)
		}
		if got != i {
			t.Fatalf("hit %d: expected count %d, got %d", i, i, got)
		}
	}

	key := "finnkey:ratelimit:192.0.2.7"
	if fake.expires[key] != time.Minute.Milliseconds() {
		t.Fatalf("expected window TTL %dms on %s, got %v", time.Minute.Milliseconds(), key, fake.expires)
	}
}

func TestRedisStore_ErrorFailsOpen(t *testing.T) {
	h := NewRateLimiter(NewRedisStore(erroringRedis{}), 1, time.Minute).Middleware(okHandler())

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected pass-through on store error, got %d", i, rr.Code)
		}
	}
}

type erroringRedis struct {
	redis.Scripter
}

func (erroringRedis) EvalSha(context.Context, string, []string, ...interface{}) *redis.Cmd {
	return redis.NewCmdResult(nil, errors.New("ERR unknown command"))
}

func (erroringRedis) Eval(context.Context, string, []string, ...interface{}) *redis.Cmd {
	return redis.NewCmdResult(nil, errors.New("ERR unknown command"))
}
