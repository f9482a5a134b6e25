// Command leadsphere-loadtest drives the session transport chain under load.
//
// It starts an in-process stub CRM API, builds a session manager against it,
// and runs two phases: authorized data calls, and data calls with periodic
// server-side token invalidation to force renewal-and-replay cycles. Results
// report latency percentiles plus the manager's own counters, which makes the
// renewal-sharing behavior directly visible.
//
// Run:
//
//	go run ./cmd/leadsphere-loadtest -concurrency 64 -ops 20000 -expire-every 500
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	authkit "github.com/basillal/LeadSphere-sub001"
	"github.com/basillal/LeadSphere-sub001/credstore"
	"github.com/basillal/LeadSphere-sub001/transport"
)

type stubAPI struct {
	mu    sync.Mutex
	token string
	seq   int
}

func (s *stubAPI) issue() string {
	s.seq++
	s.token = fmt.Sprintf("load-token-%d", s.seq)
	return s.token
}

func (s *stubAPI) expire() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

func (s *stubAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		tok := s.issue()
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken": tok,
			"id":          "load-user",
			"name":        "Load",
			"email":       "load@example.com",
			"role":        map[string]any{"roleName": "Manager"},
		})
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		tok := s.issue()
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": tok})
	})
	mux.HandleFunc("GET /api/leads", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		authorized := s.token != "" && r.Header.Get("Authorization") == "Bearer "+s.token
		s.mu.Unlock()
		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "1"})
	})
	return mux
}

func main() {
	var (
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase")
		expireEvery = flag.Int("expire-every", 500, "invalidate the token every N calls in the churn phase")
	)
	flag.Parse()

	if *concurrency <= 0 || *ops <= 0 || *expireEvery <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency, ops, and expire-every must be > 0")
		os.Exit(2)
	}

	api := &stubAPI{}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	cfg := authkit.DefaultConfig()
	cfg.Endpoints.BaseURL = srv.URL
	cfg.Loader.Enabled = false

	manager, err := authkit.New().
		WithConfig(cfg).
		WithCredentialStore(credstore.NewMemoryStore()).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build manager: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	ctx := context.Background()
	if _, err := manager.Login(ctx, "load@example.com", "any"); err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}

	steady := runPhase(ctx, manager, *ops, *concurrency, 0, api)
	churn := runPhase(ctx, manager, *ops, *concurrency, *expireEvery, api)

	fmt.Println("---- results ----")
	printStats("steady", steady)
	printStats("churn", churn)

	snap := manager.MetricsSnapshot()
	fmt.Printf("renewals=%d shared=%d forced_logouts=%d\n",
		snap.Counters[authkit.MetricRenewSuccess],
		snap.Counters[authkit.MetricRenewShared],
		snap.Counters[authkit.MetricForcedLogout],
	)
}

func runPhase(ctx context.Context, manager *authkit.Manager, ops, concurrency, expireEvery int, api *stubAPI) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				if expireEvery > 0 && i%expireEvery == expireEvery-1 {
					api.expire()
				}

				call := transport.NewCall(http.MethodGet, "/api/leads")
				t0 := time.Now()
				_, err := manager.Transport().Do(ctx, call)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
