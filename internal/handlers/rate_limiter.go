package handlers

import (
	"net"
	"net/http"
	"sync"
	"time"
)

type RateLimiter struct {
	attempts map[string]int
	limit    int
	mutex    sync.Mutex
	window   time.Duration

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows limit attempts per client in each window. Call Stop
// to end the background reset.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		attempts: make(map[string]int),
		limit:    limit,
		window:   window,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	count, exists := rl.attempts[ip]
	if !exists {
		rl.attempts[ip] = 1
		return true
	}
	if count >= rl.limit {
		return false
	}
	rl.attempts[ip]++
	return true
}

// Stop ends the reset loop and waits for it to exit. It is safe to call
// more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

// reset the attempts map every window duration
func (rl *RateLimiter) cleanup() {
	defer close(rl.done)
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mutex.Lock()
			rl.attempts = make(map[string]int)
			rl.mutex.Unlock()
		}
	}
}

// limited rejects the request with 429 when its client is over the limit.
func (h *Handler) limited(w http.ResponseWriter, r *http.Request) bool {
	if h.RateLimiter == nil {
		return false
	}
	ip := clientIP(r)
	if h.RateLimiter.Allow(ip) {
		return false
	}
	h.logger().Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
	sendError(w, "Too many attempts. Please try again later.", http.StatusTooManyRequests)
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
