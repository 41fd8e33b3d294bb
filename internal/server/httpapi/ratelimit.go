package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter allows burst requests per client IP, refilled evenly over
// window.
type ipLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	every    rate.Limit
	burst    int
	window   time.Duration
	message  string
	lastScan time.Time
}

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

func newIPLimiter(burst int, window time.Duration, message string) *ipLimiter {
	return &ipLimiter{
		clients: make(map[string]*clientLimiter),
		every:   rate.Every(window / time.Duration(burst)),
		burst:   burst,
		window:  window,
		message: message,
	}
}

func (l *ipLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	// forget clients idle for a full window; their buckets are full again
	if now.Sub(l.lastScan) > l.window {
		for k, c := range l.clients {
			if now.Sub(c.seen) > l.window {
				delete(l.clients, k)
			}
		}
		l.lastScan = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(l.every, l.burst)}
		l.clients[ip] = c
	}
	c.seen = now
	return c.lim.AllowN(now, 1)
}

func (l *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r), time.Now()) {
			w.Header().Set("Retry-After", retryAfter(l.window, l.burst))
			fail(w, http.StatusTooManyRequests, l.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retryAfter(window time.Duration, burst int) string {
	secs := int((window / time.Duration(burst)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP trusts one proxy hop: the last X-Forwarded-For entry, else the
// peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[len(parts)-1]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limiters groups the per-endpoint limits.
type limiters struct {
	login    *ipLimiter
	register *ipLimiter
	reset    *ipLimiter
	search   *ipLimiter
}

func newLimiters() *limiters {
	return &limiters{
		login:    newIPLimiter(5, 15*time.Minute, "Too many login attempts, please try again later"),
		register: newIPLimiter(3, time.Hour, "Too many registration attempts, please try again later"),
		reset:    newIPLimiter(3, time.Hour, "Too many password reset attempts, please try again later"),
		search:   newIPLimiter(20, time.Minute, "Too many search requests, please try again later"),
	}
}
