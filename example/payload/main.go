package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/lixenwraith/diaglog"
)

// TestPayload defines a struct for testing complex type serialization.
type TestPayload struct {
	RequestID uint64
	User      string
	Metrics   map[string]float64
}

// node forms a cycle that encoding/json refuses
type node struct {
	Name string
	Next *node
}

func main() {
	fmt.Println("--- Diagnostic Logger Payload Test ---")

	logger, err := diaglog.NewBuilder().
		Development().
		ConsoleColor(false).
		Backend(diaglog.BackendNone, "").
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	structRecord := TestPayload{
		RequestID: 9223372036854775807,
		User:      "test_user",
		Metrics: map[string]float64{
			"latency_ms": 15.7,
			"cpu_percent": 88.2,
		},
	}

	cycle := &node{Name: "head"}
	cycle.Next = cycle

	// Each record succeeds; values without a JSON form get a placeholder
	logger.Info("Payload", "struct", structRecord)
	logger.Info("Payload", "pairs", "user", "test_user", "attempt", 3, "dangling")
	logger.Info("Payload", "bytes", []byte("binary\ndata\twith\x00null"))
	logger.Warn("Payload", "wrapped error", fmt.Errorf("saving profile: %w", errors.New("disk full")))
	logger.Warn("Payload", "channel", map[string]any{"events": make(chan int)})
	logger.Error("Payload", "cycle", cycle)
	logger.Info("Payload", "escapes in text\x1b[31m", "note", "terminal sequences are neutralized")

	fmt.Println("\n--- Export ---")
	fmt.Println(logger.ExportLogs())
}
