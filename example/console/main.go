package main

import (
	"fmt"
	"os"

	"github.com/lixenwraith/diaglog"
)

// main records the same entries under different console settings
func main() {
	fmt.Println("--- Console Sink Scenarios ---")

	scenarios := []struct {
		name      string
		overrides []string
	}{
		{"development, txt, stderr", []string{"mode=development", "console_format=txt"}},
		{"development, json, stdout", []string{"mode=development", "console_format=json", "console_target=stdout"}},
		{"development, no color", []string{"mode=development", "console_color=false"}},
		{"production (console suppressed)", []string{"mode=production"}},
	}

	for _, sc := range scenarios {
		fmt.Printf("\n>>> %s\n", sc.name)

		cfg := diaglog.DefaultConfig()
		cfg.StoreBackend = diaglog.BackendNone
		if err := cfg.ApplyOverride(sc.overrides...); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid overrides: %v\n", err)
			os.Exit(1)
		}

		logger, err := diaglog.New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}

		auth := logger.For("Auth")
		auth.Debug("session lookup", "user", "athlete-42")
		auth.Info("login ok")
		auth.Warn("token expires soon", "seconds", 30)
		auth.Error("refresh rejected", "status", 401)

		fmt.Printf("(%d entries in memory, development=%t)\n", len(logger.GetLogs()), logger.Development())
	}
}
