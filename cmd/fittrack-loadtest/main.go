// Command fittrack-loadtest measures session resolution and login latency
// against a throwaway SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/MrEthical07/fittrack"
	"github.com/MrEthical07/fittrack/internal/stores"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const seedPassword = "loadtest-password"

func main() {
	var (
		users       = flag.Int("users", 100, "number of users to seed")
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "resolve operations")
		logins      = flag.Int("logins", 200, "login operations; logins hash with scrypt")
		throttle    = flag.Bool("throttle", false, "enable the login throttle on miniredis")
	)
	flag.Parse()

	if *users <= 0 || *sessions <= 0 || *concurrency <= 0 || *ops <= 0 || *logins < 0 {
		fmt.Fprintln(os.Stderr, "users, sessions, concurrency and ops must be > 0")
		os.Exit(2)
	}

	if err := run(*users, *sessions, *concurrency, *ops, *logins, *throttle); err != nil {
		fmt.Fprintf(os.Stderr, "loadtest: %v\n", err)
		os.Exit(1)
	}
}

func run(users, sessions, concurrency, ops, logins int, throttle bool) (err error) {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "fittrack-loadtest-")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	db, err := stores.Open(filepath.Join(dir, "loadtest.db"), false)
	if err != nil {
		return err
	}
	defer func() { _ = stores.Close(db) }()

	if err = stores.Migrate(ctx, db); err != nil {
		return err
	}

	store := stores.New(db, timeutil.SystemClock{})

	cfg := fittrack.DefaultConfig()
	cfg.Session.Secret = "loadtest-secret-loadtest-secret-!"
	cfg.Metrics.EnableLatencyHistograms = true

	b := fittrack.New().WithDB(db).WithUserProvider(store)
	if throttle {
		mr, mrErr := miniredis.Run()
		if mrErr != nil {
			return fmt.Errorf("starting miniredis: %w", mrErr)
		}
		defer mr.Close()

		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer func() { _ = client.Close() }()

		cfg.Security.EnableLoginThrottle = true
		cfg.Security.MaxLoginAttempts = logins + 1
		b = b.WithRedis(client)
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	}

	engine, err := b.WithConfig(cfg).Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	usernames, cookies, err := seed(ctx, engine, store, users, sessions)
	if err != nil {
		return err
	}

	resolveStats := runPhase(ops, concurrency, func(r *rand.Rand) error {
		_, resErr := engine.ResolveSession(ctx, cookies[r.IntN(len(cookies))])

		return resErr
	})

	var loginStats phaseStats
	if logins > 0 {
		loginStats = runPhase(logins, concurrency, func(r *rand.Rand) error {
			_, loginErr := engine.Login(ctx, usernames[r.IntN(len(usernames))], seedPassword)

			return loginErr
		})
	}

	fmt.Println("---- results ----")
	printStats("resolve", resolveStats)
	printStats("login", loginStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("resolve histogram: %v\n", snap.Histograms[fittrack.MetricResolveLatency])

	return nil
}

// seed creates users with one shared password hash and spreads sessions
// across them.
func seed(
	ctx context.Context,
	engine *fittrack.Engine,
	store *stores.Store,
	users int,
	sessions int,
) (usernames, cookies []string, err error) {
	hash, err := engine.HashPassword(seedPassword)
	if err != nil {
		return nil, nil, err
	}

	fmt.Printf("seeding %d users and %d sessions...\n", users, sessions)
	start := time.Now()

	ids := make([]int64, 0, users)
	for i := range users {
		u := &stores.User{
			Username: fmt.Sprintf("user%d", i),
			Name:     "Load",
			LastName: "Test",
			Password: hash,
			Email:    fmt.Sprintf("user%d@loadtest.local", i),
		}
		if err = store.CreateUser(ctx, u); err != nil {
			return nil, nil, fmt.Errorf("creating user %d: %w", i, err)
		}

		usernames = append(usernames, u.Username)
		ids = append(ids, u.ID)
	}

	cookies = make([]string, 0, sessions)
	for i := range sessions {
		issued, createErr := engine.CreateSession(ctx, ids[i%len(ids)])
		if createErr != nil {
			return nil, nil, fmt.Errorf("creating session %d: %w", i, createErr)
		}

		cookies = append(cookies, issued.CookieValue)
	}

	fmt.Printf("seeded in %s\n", time.Since(start).Round(time.Millisecond))

	return usernames, cookies, nil
}

// runPhase calls op ops times from concurrency workers.
func runPhase(ops, concurrency int, op func(r *rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    atomic.Int64
		failures  atomic.Int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := range concurrency {
		wg.Add(1)
		go func(worker uint64) {
			defer wg.Done()

			r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), worker))
			for cursor.Add(1) <= int64(ops) {
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					failures.Add(1)
				}

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(uint64(w))
	}
	wg.Wait()

	return computeStats(time.Since(start), latencies, failures.Load())
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

	slices.Sort(samples)

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

// percentile expects sorted samples.
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

	return samples[(len(samples)-1)*p/100]
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
