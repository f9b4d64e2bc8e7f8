package http

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Governor rate-limits the forecast endpoint per client identity. Each client
// gets its own token bucket; buckets idle longer than the prune age are
// dropped so the map does not grow with one entry per address ever seen.
type Governor struct {
	mu      sync.Mutex
	clients map[string]*governedClient
	limit   rate.Limit
	burst   int
}

type governedClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const governorPruneAge = 10 * time.Minute

// NewGovernor creates a Governor allowing perMinute requests per client with
// the given burst.
func NewGovernor(perMinute, burst int) *Governor {
	return &Governor{
		clients: make(map[string]*governedClient),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
	}
}

// Allow reports whether the client identified by clientID may proceed.
func (g *Governor) Allow(clientID string) bool {
	return g.limiterFor(clientID, time.Now()).Allow()
}

func (g *Governor) limiterFor(clientID string, now time.Time) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.clients[clientID]
	if !ok {
		c = &governedClient{limiter: rate.NewLimiter(g.limit, g.burst)}
		g.clients[clientID] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Prune drops limiters not seen since the prune age. Called periodically from
// a janitor goroutine.
func (g *Governor) Prune(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, c := range g.clients {
		if now.Sub(c.lastSeen) > governorPruneAge {
			delete(g.clients, id)
		}
	}
}

// PrunePeriodic prunes idle client limiters at the given interval until the
// done channel closes.
func (g *Governor) PrunePeriodic(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			g.Prune(time.Now())
		}
	}
}

// ClientIdentity derives the rate-limit identity from the request's remote
// address, preferring the first X-Forwarded-For hop when a proxy set one.
func ClientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
