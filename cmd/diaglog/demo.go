package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/diaglog"
	"github.com/lixenwraith/diaglog/debugserver"
)

func newDemoCmd(root *rootOptions) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a development service that produces sample entries and serves the debug bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			cfg.Mode = diaglog.ModeDevelopment

			logger, err := diaglog.Init(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			srv, err := debugserver.New(logger)
			if err != nil {
				return err
			}
			diaglog.GoErr(srv.ListenAndServe)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Debug server on http://%s/debug/logs (Ctrl+C to stop)\n", cfg.DebugAddress)
			runDemo(ctx, logger)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "stop after this long (default: until interrupted)")
	return cmd
}

// runDemo records a mix of entries, including captured faults, until ctx ends
func runDemo(ctx context.Context, logger *diaglog.Logger) {
	syncLog := logger.For("Sync")
	auth := logger.For("Auth")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for tick := 1; ; tick++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		syncLog.Debug("poll", "tick", tick)
		syncLog.Info("batch uploaded", "records", tick*10)

		switch {
		case tick%5 == 0:
			auth.Warn("token expired", "user", "athlete-42")
		case tick%7 == 0:
			auth.Error("refresh failed", errors.New("upstream returned 503"))
		case tick%11 == 0:
			diaglog.Go(func() {
				var samples []float64
				_ = samples[tick] // captured as an uncaught panic
			})
		case tick%13 == 0:
			diaglog.GoErr(func() error {
				return fmt.Errorf("background sync aborted after %d ticks", tick)
			})
		}
	}
}
