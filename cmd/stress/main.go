package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/diaglog"
)

const (
	totalBursts    = 100
	logsPerBurst   = 500
	maxMessageSize = 2000
	numWorkers     = 50
)

const configFile = "stress_config.toml"

// Example TOML content for stress test
var tomlContent = `
# Example stress_config.toml
[diaglog]
  capacity = 1000
  persist_capacity = 100
  persist_key = "stress.persisted"
  mode = "production"
  stack_depth = 4
  store_backend = "pebble"
  store_directory = "./stress_store"
`

var levels = []int64{
	diaglog.LevelDebug,
	diaglog.LevelInfo,
	diaglog.LevelWarn,
	diaglog.LevelError,
}

var logger *diaglog.Logger

func generateRandomMessage(size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rand.Intn(len(chars))])
	}
	return sb.String()
}

// logBurst simulates a burst of logging activity
func logBurst(burstID int) {
	for i := 0; i < logsPerBurst; i++ {
		level := levels[rand.Intn(len(levels))]
		msgSize := rand.Intn(maxMessageSize) + 10
		logger.Record(level, fmt.Sprintf("Worker%d", burstID%numWorkers), generateRandomMessage(msgSize),
			"bst", burstID,
			"seq", i,
			"rnd", rand.Int63(),
		)
	}
}

// worker goroutine function
func worker(burstChan chan int, wg *sync.WaitGroup, completedBursts *atomic.Int64) {
	defer wg.Done()
	for burstID := range burstChan {
		logBurst(burstID)
		completed := completedBursts.Add(1)
		if completed%10 == 0 || completed == totalBursts {
			fmt.Printf("\rProgress: %d/%d bursts completed", completed, totalBursts)
		}
	}
}

func main() {
	fmt.Println("--- Diagnostic Logger Stress Test ---")

	// --- Setup Config ---
	err := os.WriteFile(configFile, []byte(tomlContent), 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write dummy config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created dummy config file: %s\n", configFile)
	storeDir := "./stress_store" // Match config
	_ = os.RemoveAll(storeDir)   // Clean previous run's store before starting

	cfg, err := diaglog.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// --- Initialize Logger ---
	logger, err = diaglog.Init(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Logger initialized. Persisted subset stored in: %s\n", storeDir)

	fmt.Printf("Starting stress test: %d workers, %d bursts, %d logs/burst.\n",
		numWorkers, totalBursts, logsPerBurst)
	fmt.Println("Press Ctrl+C to stop early.")

	// --- Setup Workers and Signal Handling ---
	burstChan := make(chan int, numWorkers)
	var wg sync.WaitGroup
	completedBursts := atomic.Int64{}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	stopChan := make(chan struct{})

	go func() {
		<-sigChan
		fmt.Println("\n[Signal Received] Stopping burst generation...")
		close(stopChan)
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		diaglog.Go(func() { worker(burstChan, &wg, &completedBursts) })
	}

	// --- Run Test ---
	startTime := time.Now()
	for i := 1; i <= totalBursts; i++ {
		select {
		case burstChan <- i:
		case <-stopChan:
			fmt.Println("[Signal Received] Halting burst submission.")
			goto endLoop
		}
	}
endLoop:
	close(burstChan)

	fmt.Println("\nWaiting for workers to finish...")
	wg.Wait()
	duration := time.Since(startTime)
	finalCompleted := completedBursts.Load()

	fmt.Printf("\n--- Test Finished ---")
	fmt.Printf("\nCompleted %d/%d bursts in %v\n", finalCompleted, totalBursts, duration.Round(time.Millisecond))
	if finalCompleted > 0 && duration.Seconds() > 0 {
		logsPerSec := float64(finalCompleted*logsPerBurst) / duration.Seconds()
		fmt.Printf("Approximate Logs/sec: %.2f\n", logsPerSec)
	}

	// --- Verify bounds ---
	stats := logger.Stats()
	persisted, err := logger.PersistedLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read persisted logs: %v\n", err)
	}
	fmt.Printf("Recorded: %d, evicted: %d, buffered: %d/%d\n",
		stats.TotalRecorded, stats.TotalEvicted, stats.Buffered, stats.Capacity)
	fmt.Printf("Persisted: %d (writes %d, failures %d, degraded %t)\n",
		len(persisted), stats.PersistWrites, stats.PersistFailures, stats.PersistDegraded)

	if err := logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Logger close error: %v\n", err)
	}
	fmt.Printf("Check the store in '%s' with: diaglog persisted --set store_backend=pebble --set store_directory=%s --set persist_key=stress.persisted\n", storeDir, storeDir)
}
