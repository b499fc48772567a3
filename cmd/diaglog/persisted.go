package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/diaglog"
)

func newPersistedCmd(root *rootOptions) *cobra.Command {
	var (
		asJSON bool
		level  string
	)

	cmd := &cobra.Command{
		Use:   "persisted",
		Short: "Show the persisted warn/error entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseLevelFlag(level)
			if err != nil {
				return err
			}

			logger, err := root.openStoreLogger()
			if err != nil {
				return err
			}
			defer logger.Close()

			entries, err := logger.PersistedLogs()
			if err != nil {
				return err
			}
			entries = filterEntries(entries, filter)
			return writeEntries(cmd.OutOrStdout(), entries, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as a JSON array")
	cmd.Flags().StringVarP(&level, "level", "l", "", "only show entries of this level (warn or error)")
	return cmd
}

func newClearPersistedCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-persisted",
		Short: "Delete the persisted warn/error entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := root.openStoreLogger()
			if err != nil {
				return err
			}
			defer logger.Close()

			if err := logger.ClearPersisted(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Persisted entries cleared.")
			return nil
		},
	}
}

// parseLevelFlag returns nil for an empty flag
func parseLevelFlag(level string) (*int64, error) {
	if level == "" {
		return nil, nil
	}
	v, err := diaglog.Level(level)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func filterEntries(entries []diaglog.Entry, level *int64) []diaglog.Entry {
	if level == nil {
		return entries
	}
	out := make([]diaglog.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Level == *level {
			out = append(out, e)
		}
	}
	return out
}

func writeEntries(w io.Writer, entries []diaglog.Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []diaglog.Entry{}
		}
		return enc.Encode(entries)
	}
	renderTable(w, entries)
	return nil
}
