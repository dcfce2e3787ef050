// Command pawma-loadtest measures derivation throughput and checks that
// concurrent derivations match sequential ones byte for byte.
//
// Phases:
//
//	sequential  derive every input once on one goroutine (reference) and
//	            check each password's shape
//	concurrent  derive the same inputs again with -concurrency workers
//	limiter     optional; hammer the API rate limiter and check its budget
//
// Exit status is 1 if any concurrent password differs from the reference or
// the limiter admits more requests than its budget.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	pawma "github.com/dev-manthan-sharma/paw-ma"
	"github.com/dev-manthan-sharma/paw-ma/internal/rate"
	"github.com/dev-manthan-sharma/paw-ma/password"
)

type input struct {
	identifier     string
	differentiator string
}

func main() {
	var (
		inputs       = flag.Int("inputs", 2000, "number of distinct inputs")
		concurrency  = flag.Int("concurrency", 32, "number of concurrent workers")
		secret       = flag.String("secret", "loadtest-secret", "master secret used for every input")
		limiterOps   = flag.Int("limiter-ops", 0, "requests for the limiter phase; 0 skips it")
		limiterMax   = flag.Int("limiter-max", 50, "per-client budget for the limiter phase")
		limiterUsers = flag.Int("limiter-clients", 16, "distinct clients in the limiter phase")
		redisAddr    = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *inputs <= 0 || *concurrency <= 0 || *limiterOps < 0 || *limiterMax <= 0 || *limiterUsers <= 0 {
		fmt.Fprintln(os.Stderr, "inputs, concurrency, limiter-max and limiter-clients must be > 0")
		os.Exit(2)
	}

	cfg := pawma.DefaultConfig()
	cfg.Fingerprint.Enabled = false
	engine, err := pawma.New().WithConfig(cfg).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx := context.Background()
	set := buildInputs(*inputs)

	fmt.Printf("deriving %d inputs sequentially...\n", len(set))
	reference, seqStats := runSequential(ctx, engine, set, *secret)
	fmt.Printf("deriving %d inputs with %d workers...\n", len(set), *concurrency)
	mismatches, concStats := runConcurrent(ctx, engine, set, *secret, reference, *concurrency)

	fmt.Println("---- results ----")
	printStats("sequential", seqStats)
	printStats("concurrent", concStats)
	fmt.Printf("mismatches=%d\n", mismatches)

	failed := mismatches > 0 || seqStats.failures > 0 || concStats.failures > 0

	if *limiterOps > 0 {
		admitted, limStats, err := runLimiter(ctx, *redisAddr, *limiterOps, *limiterMax, *limiterUsers, *concurrency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "limiter phase: %v\n", err)
			os.Exit(1)
		}
		printStats("limiter", limStats)
		budget := int64(*limiterMax) * int64(*limiterUsers)
		fmt.Printf("limiter admitted=%d budget=%d\n", admitted, budget)
		if admitted > budget {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func buildInputs(n int) []input {
	out := make([]input, n)
	for i := range out {
		out[i].identifier = fmt.Sprintf("site-%d.example", i)
		if i%3 == 0 {
			out[i].differentiator = fmt.Sprintf("user%d", i)
		}
	}
	return out
}

func runSequential(ctx context.Context, engine *pawma.Engine, set []input, secret string) ([]string, phaseStats) {
	passwords := make([]string, len(set))
	latencies := make([]time.Duration, 0, len(set))
	policy := password.DefaultPolicy()
	var failures int64

	start := time.Now()
	for i, in := range set {
		t0 := time.Now()
		res, err := engine.Derive(ctx, in.identifier, secret, in.differentiator)
		latencies = append(latencies, time.Since(t0))
		if err != nil || !password.Conforms(res.Password, policy) {
			failures++
			continue
		}
		passwords[i] = res.Password
	}
	return passwords, computeStats(time.Since(start), latencies, failures)
}

func runConcurrent(ctx context.Context, engine *pawma.Engine, set []input, secret string, reference []string, concurrency int) (int64, phaseStats) {
	var (
		wg         sync.WaitGroup
		cursor     int64
		failures   int64
		mismatches int64
		latencies  = make([]time.Duration, 0, len(set))
		mu         sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= len(set) {
					return
				}
				t0 := time.Now()
				res, err := engine.Derive(ctx, set[i].identifier, secret, set[i].differentiator)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				} else if res.Password != reference[i] {
					atomic.AddInt64(&mismatches, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return mismatches, computeStats(time.Since(start), latencies, failures)
}

func runLimiter(ctx context.Context, redisAddr string, ops, maxPerClient, clients, concurrency int) (int64, phaseStats, error) {
	addr := redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var client redis.UniversalClient
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return 0, phaseStats{}, fmt.Errorf("start miniredis: %w", err)
		}
		defer mr.Close()
		addr = mr.Addr()
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		fmt.Printf("using redis at %s\n", addr)
	}
	client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	defer client.Close()

	limiter := rate.New(client, rate.Config{
		MaxRequests: maxPerClient,
		Window:      time.Hour,
		KeyPrefix:   fmt.Sprintf("lt:%d:", time.Now().UnixNano()),
	})

	var (
		wg        sync.WaitGroup
		cursor    int64
		admitted  int64
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
				t0 := time.Now()
				err := limiter.Allow(ctx, fmt.Sprintf("client-%d", i%clients))
				d := time.Since(t0)
				switch {
				case err == nil:
					atomic.AddInt64(&admitted, 1)
				case !errors.Is(err, rate.ErrRateLimited):
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return admitted, computeStats(time.Since(start), latencies, failures), nil
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
