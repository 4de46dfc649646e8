package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newLimiter(t *testing.T, limit int, window time.Duration) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(limit, window)
	t.Cleanup(rl.Stop)
	return rl
}

func TestRateLimiter_AllowPerClient(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		clients []string
		want    []bool
	}{
		{"under the limit", 3, []string{"10.0.0.1", "10.0.0.1", "10.0.0.1"}, []bool{true, true, true}},
		{"over the limit", 2, []string{"10.0.0.1", "10.0.0.1", "10.0.0.1"}, []bool{true, true, false}},
		{"clients counted apart", 1, []string{"10.0.0.1", "10.0.0.2", "10.0.0.1"}, []bool{true, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := newLimiter(t, tt.limit, time.Minute)
			for i, ip := range tt.clients {
				if got := rl.Allow(ip); got != tt.want[i] {
					t.Errorf("attempt %d from %s = %v, want %v", i+1, ip, got, tt.want[i])
				}
			}
		})
	}
}

func TestRateLimiter_ResetsEachWindow(t *testing.T) {
	rl := newLimiter(t, 1, 50*time.Millisecond)
	rl.Allow("10.0.0.1")
	if rl.Allow("10.0.0.1") {
		t.Fatal("second attempt inside the window should be refused")
	}

	deadline := time.Now().Add(2 * time.Second)
	for !rl.Allow("10.0.0.1") {
		if time.Now().After(deadline) {
			t.Fatal("attempts were never reset")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRateLimiter_StopEndsReset(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	rl.Stop()
	rl.Stop()

	rl.Allow("10.0.0.1")
	time.Sleep(60 * time.Millisecond)
	if rl.Allow("10.0.0.1") {
		t.Fatal("attempts reset after Stop")
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := newLimiter(t, 3, time.Minute)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("10.0.0.1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 3 {
		t.Errorf("allowed %d attempts, want 3", allowed)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = tt.remote
		if got := clientIP(r); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}

func TestLimited(t *testing.T) {
	h := &Handler{RateLimiter: newLimiter(t, 1, time.Minute)}
	request := func(remote string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = remote
		rec := httptest.NewRecorder()
		if !h.limited(rec, r) {
			rec.WriteHeader(http.StatusOK)
		}
		return rec
	}

	if rec := request("192.0.2.1:1000"); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	// same client from another port
	if rec := request("192.0.2.1:2000"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec := request("192.0.2.2:1000"); rec.Code != http.StatusOK {
		t.Fatalf("other client status = %d", rec.Code)
	}

	unlimited := &Handler{}
	rec := httptest.NewRecorder()
	if unlimited.limited(rec, httptest.NewRequest(http.MethodPost, "/login", nil)) {
		t.Fatal("a handler without a limiter must not limit")
	}
}
