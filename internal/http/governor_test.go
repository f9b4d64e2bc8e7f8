package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

// TestGovernor_BurstThenDeny verifies the burst is served and the next
// request is denied.
func TestGovernor_BurstThenDeny(t *testing.T) {
	g := NewGovernor(10, 10)

	for i := 0; i < 10; i++ {
		if !g.Allow("203.0.113.7") {
			t.Fatalf("Allow() = false on request %d, want burst of 10 allowed", i+1)
		}
	}
	if g.Allow("203.0.113.7") {
		t.Error("Allow() = true on request 11, want denied")
	}
}

// TestGovernor_ClientsIndependent verifies one client exhausting its bucket
// does not affect another.
func TestGovernor_ClientsIndependent(t *testing.T) {
	g := NewGovernor(10, 10)

	for i := 0; i < 10; i++ {
		g.Allow("203.0.113.7")
	}
	if g.Allow("203.0.113.7") {
		t.Fatal("Allow() = true for exhausted client, want denied")
	}
	if !g.Allow("198.51.100.4") {
		t.Error("Allow() = false for fresh client, want allowed")
	}
}

// TestGovernor_PruneDropsIdleClients verifies limiters idle past the prune
// age are removed, and a returning client gets a fresh bucket.
func TestGovernor_PruneDropsIdleClients(t *testing.T) {
	g := NewGovernor(10, 10)

	for i := 0; i < 10; i++ {
		g.Allow("203.0.113.7")
	}
	g.Prune(time.Now().Add(governorPruneAge + time.Minute))

	if !g.Allow("203.0.113.7") {
		t.Error("Allow() = false after prune, want fresh bucket")
	}
}

// TestClientIdentity verifies identity derivation from remote address and
// X-Forwarded-For.
func TestClientIdentity(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr host only", "203.0.113.7:52114", "", "203.0.113.7"},
		{"forwarded single hop", "10.0.0.1:80", "198.51.100.4", "198.51.100.4"},
		{"forwarded first hop wins", "10.0.0.1:80", "198.51.100.4, 10.0.0.2", "198.51.100.4"},
		{"forwarded with spaces", "10.0.0.1:80", " 198.51.100.4 , 10.0.0.2", "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/break/Bells%20Beach", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIdentity(r); got != tt.want {
				t.Errorf("ClientIdentity() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestGovernorMiddleware_Returns429 verifies the middleware denies the 11th
// request with the rate-limit error envelope.
func TestGovernorMiddleware_Returns429(t *testing.T) {
	g := NewGovernor(10, 10)
	r := mux.NewRouter()
	r.Use(GovernorMiddleware(g))
	r.HandleFunc("/api/break/{name}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/break/Bells%20Beach", nil)
		req.RemoteAddr = "203.0.113.7:52114"
		last = httptest.NewRecorder()
		r.ServeHTTP(last, req)
		if i < 10 && last.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, last.Code)
		}
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("request 11 status = %d, want 429", last.Code)
	}
	if ct := last.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("429 Content-Type = %q, want application/json", ct)
	}
}

// TestGovernorMiddleware_NilGovernorPassesThrough verifies a nil governor
// disables limiting.
func TestGovernorMiddleware_NilGovernorPassesThrough(t *testing.T) {
	r := mux.NewRouter()
	r.Use(GovernorMiddleware(nil))
	r.HandleFunc("/api/break/{name}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/break/Bells%20Beach", nil)
		req.RemoteAddr = "203.0.113.7:52114"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200 with nil governor", i+1, rec.Code)
		}
	}
}
