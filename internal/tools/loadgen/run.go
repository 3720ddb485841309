package loadgen

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"

	"github.com/sandeepkv93/storefront-admin-console/internal/datasource"
)

type Config struct {
	BaseURL     string
	Email       string
	Password    string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status429     int64
	Status5xx     int64
}

const apiPrefix = "/api/v1"

// Run signs in once and replays the profile's list and stats requests with
// the bearer token until Duration elapses.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	endpoints := endpointsForProfile(cfg.Profile, rand.New(rand.NewSource(cfg.Seed)))
	if len(endpoints) == 0 {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}

	api := datasource.New(cfg.BaseURL+apiPrefix, 5*time.Second)
	token, err := api.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return Result{}, fmt.Errorf("login: %w", err)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	client.Timeout = 5 * time.Second

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var total, failures, s2xx, s4xx, s429, s5xx int64
	jobs := make(chan string, cfg.Concurrency*2)
	wg := sync.WaitGroup{}

	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL+apiPrefix+path, nil)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				resp, err := client.Do(req)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				_ = resp.Body.Close()
				atomic.AddInt64(&total, 1)
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&s2xx, 1)
				case resp.StatusCode == http.StatusTooManyRequests:
					atomic.AddInt64(&s429, 1)
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					atomic.AddInt64(&s4xx, 1)
				case resp.StatusCode >= 500:
					atomic.AddInt64(&s5xx, 1)
				}
			}
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return Result{TotalRequests: total, Failures: failures, Status2xx: s2xx, Status4xx: s4xx, Status429: s429, Status5xx: s5xx}, nil
		case <-ticker.C:
			select {
			case jobs <- endpoints[i%len(endpoints)]:
			case <-ctx.Done():
			}
			i++
		}
	}
}

var searchTerms = []string{"ada", "bank", "shirt", "lamp", "refund", "ORD-10", "payment", "mug"}

func endpointsForProfile(profile string, rng *rand.Rand) []string {
	browse := []string{
		"/orders?page=1&limit=20",
		"/orders/stats",
		"/orders?page=2&limit=20&status=pending",
		"/products?page=1&limit=20&sortBy=price&sortOrder=asc",
		"/products/stats",
		"/notifications?page=1&limit=20&read=false",
		"/notifications/stats",
	}
	search := make([]string, 0, 12)
	for range 12 {
		term := searchTerms[rng.Intn(len(searchTerms))]
		resource := []string{"orders", "products", "notifications"}[rng.Intn(3)]
		search = append(search, fmt.Sprintf("/%s?page=1&limit=20&search=%s", resource, term))
	}

	switch strings.ToLower(profile) {
	case "", "mixed":
		return append(browse, search...)
	case "browse":
		return browse
	case "search":
		return search
	case "error-heavy":
		return []string{
			"/orders?page=1&limit=20&colour=red",
			"/orders?page=1&limit=20&status=lost",
			"/products?page=0&limit=20",
			"/notifications?page=1&limit=1000",
			"/orders/stats",
		}
	default:
		return nil
	}
}
