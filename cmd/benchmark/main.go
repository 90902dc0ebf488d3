package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	workload    string
	numAccounts int
)

// Metrics
var (
	totalRequests uint64
	success201    uint64 // Settled
	fail422       uint64 // Insufficient balance / validation
	fail504       uint64 // Reconciliation timeouts
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "uniform", "Workload type: uniform | hotspot")
	flag.IntVar(&numAccounts, "accounts", 100, "Accounts to seed before the run")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	if err := seed(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start)
	}

	wg.Wait()
	printResults(time.Since(start))
}

// seed registers one bank and numAccounts single-account users through
// the public API. Re-running against a warm server hits 409s, which is
// fine.
func seed() error {
	client := &http.Client{Timeout: 5 * time.Second}

	post := func(path string, payload map[string]interface{}) error {
		body, _ := json.Marshal(payload)
		resp, err := client.Post(targetURL+path, "application/json", bytes.NewBuffer(body))
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%s returned %d", path, resp.StatusCode)
		}
		return nil
	}

	if err := post("/api/v1/banks", map[string]interface{}{"name": "BENCH", "up": true}); err != nil {
		return err
	}
	for i := 1; i <= numAccounts; i++ {
		userID := fmt.Sprintf("BU%d", i)
		if err := post("/api/v1/users", map[string]interface{}{
			"id": userID, "name": userID, "phone": fmt.Sprintf("7%08d", i),
		}); err != nil {
			return err
		}
		if err := post("/api/v1/accounts", map[string]interface{}{
			"number": fmt.Sprintf("BA%d", i), "bank": "BENCH",
			"owner_id": userID, "opening_balance": "10000",
		}); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d accounts at bank BENCH", numAccounts)
	return nil
}

func worker(wg *sync.WaitGroup, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		from, to := generateAccounts()

		payload := map[string]interface{}{
			"from_user_id": fmt.Sprintf("BU%d", from),
			"from_bank":    "BENCH",
			"from_account": fmt.Sprintf("BA%d", from),
			"to_bank":      "BENCH",
			"to_account":   fmt.Sprintf("BA%d", to),
			"amount":       "100",
		}
		body, _ := json.Marshal(payload)

		resp, err := client.Post(targetURL+"/api/v1/transfers", "application/json", bytes.NewBuffer(body))
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 201:
			atomic.AddUint64(&success201, 1)
		case 422:
			atomic.AddUint64(&fail422, 1)
		case 504:
			atomic.AddUint64(&fail504, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func generateAccounts() (int, int) {
	if workload == "hotspot" {
		// Hotspot: 90% of traffic bounces between accounts 1 and 2,
		// exercising the ordered-locking path under contention.
		if rand.Float32() < 0.90 {
			if rand.Float32() < 0.5 {
				return 1, 2
			}
			return 2, 1
		}
	}

	// Uniform Random
	a := rand.Intn(numAccounts) + 1
	b := rand.Intn(numAccounts) + 1
	for a == b {
		b = rand.Intn(numAccounts) + 1
	}
	return a, b
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	s201 := atomic.LoadUint64(&success201)
	f422 := atomic.LoadUint64(&fail422)
	f504 := atomic.LoadUint64(&fail504)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()

	results := map[string]interface{}{
		"workload":       workload,
		"duration_sec":   d.Seconds(),
		"total_requests": total,
		"throughput_tps": tps,
		"settled":        s201,
		"rejected":       f422,
		"unconfirmed":    f504,
		"errors":         fErr,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
