// Command authsess-loadtest measures end-to-end session operation latency.
//
// It starts an in-process mock school backend, seeds N client sessions
// (each with its own controller and Redis key prefix), then drives two
// phases: reconciliation (CheckAuth) and token rotation (RefreshToken).
// Without -redis-addr or REDIS_ADDR, an embedded miniredis is used.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	authsess "github.com/opencampus/authsess"
	"github.com/opencampus/authsess/vault"
)

type clientState struct {
	controller *authsess.Controller
	mu         sync.Mutex
}

func main() {
	var (
		clients     = flag.Int("clients", 200, "number of client sessions to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase (checkauth + refresh)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "lt", "vault key prefix")
	)
	flag.Parse()

	if *clients <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "clients, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		rdb     *redis.Client
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() {
			_ = rdb.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = rdb.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	baseURL, stopBackend, err := startBackend()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mock backend: %v\n", err)
		os.Exit(1)
	}
	defer stopBackend()
	fmt.Printf("mock backend at %s\n", baseURL)

	states := make([]clientState, *clients)
	fmt.Printf("seeding %d client sessions...\n", *clients)
	startSeed := time.Now()
	for i := 0; i < *clients; i++ {
		v := vault.NewRedisVault(rdb, fmt.Sprintf("%s:%d", *prefix, i))
		c, err := authsess.New().
			WithBaseURL(baseURL).
			WithVault(v).
			WithStartupCheck(false).
			Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
			os.Exit(1)
		}
		if _, err := c.Login(ctx, authsess.Credentials{
			Email:    "load@school.example",
			Password: "load-test",
		}); err != nil {
			fmt.Fprintf(os.Stderr, "seed login failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = clientState{controller: c}
	}
	defer func() {
		for i := range states {
			states[i].controller.Close()
		}
	}()
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	checkStats := runCheckAuthPhase(ctx, states, *ops, *concurrency)
	refreshStats := runRefreshPhase(ctx, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("checkauth", checkStats)
	printStats("refresh", refreshStats)
}

func runCheckAuthPhase(ctx context.Context, states []clientState, ops, concurrency int) phaseStats {
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
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				t0 := time.Now()
				user := states[idx].controller.CheckAuth(ctx)
				d := time.Since(t0)
				if user == nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRefreshPhase(ctx context.Context, states []clientState, ops, concurrency int) phaseStats {
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
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				// One rotation per client at a time; a concurrent reader of
				// the same refresh token would be rejected by the backend
				// and force-logged-out, poisoning later rounds.
				state.mu.Lock()
				t0 := time.Now()
				_, err := state.controller.RefreshToken(ctx)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
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

// startBackend runs an in-process auth API that accepts any credentials and
// treats every issued token as valid.
func startBackend() (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	var seq atomic.Int64
	issue := func() (string, string) {
		n := seq.Add(1)
		return fmt.Sprintf("access-%d", n), fmt.Sprintf("refresh-%d", n)
	}

	user := map[string]any{
		"id":         "load-user",
		"email":      "load@school.example",
		"role":       "student",
		"isVerified": true,
	}

	r := chi.NewRouter()
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
			access, refresh := issue()
			writeJSON(w, map[string]any{
				"status": "success",
				"data": map[string]any{
					"user":         user,
					"accessToken":  access,
					"refreshToken": refresh,
					"expiresIn":    3600,
				},
			})
		})
		r.Get("/verify-auth", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]any{
				"status":        "success",
				"authenticated": true,
				"user":          user,
			})
		})
		r.Post("/refresh-token", func(w http.ResponseWriter, req *http.Request) {
			access, refresh := issue()
			writeJSON(w, map[string]any{
				"status": "success",
				"data": map[string]any{
					"accessToken":  access,
					"refreshToken": refresh,
					"expiresIn":    3600,
				},
			})
		})
		r.Post("/logout", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, map[string]string{"status": "success"})
		})
	})

	srv := &http.Server{Handler: r}
	go func() { _ = srv.Serve(ln) }()

	return "http://" + ln.Addr().String(), func() { _ = srv.Close() }, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
