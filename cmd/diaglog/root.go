package main

import (
	"github.com/spf13/cobra"

	"github.com/lixenwraith/diaglog"
)

// rootOptions holds the flags shared by all subcommands
type rootOptions struct {
	configFile string
	overrides  []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "diaglog",
		Short: "Inspect diagnostic logs captured by diaglog",
		Long: `diaglog reads the persisted warn/error subset written by services
using the diaglog package, queries the debug server of a running
development service, and runs a small demo service.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "TOML configuration file ([diaglog] table)")
	cmd.PersistentFlags().StringArrayVar(&opts.overrides, "set", nil, "configuration override as key=value (repeatable)")

	cmd.AddCommand(
		newPersistedCmd(opts),
		newClearPersistedCmd(opts),
		newLogsCmd(),
		newExportCmd(),
		newDemoCmd(opts),
	)
	return cmd
}

// loadConfig resolves the configuration from --config and --set
func (o *rootOptions) loadConfig() (*diaglog.Config, error) {
	cfg := diaglog.DefaultConfig()
	if o.configFile != "" {
		loaded, err := diaglog.NewConfigFromFile(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyOverride(o.overrides...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStoreLogger opens a silent logger over the configured persistent store
func (o *rootOptions) openStoreLogger() (*diaglog.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Mode = diaglog.ModeProduction
	return diaglog.New(cfg)
}
