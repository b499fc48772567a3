package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/diaglog"
)

const defaultDebugAddress = "127.0.0.1:6061"

// fetch performs a GET against a debug server and returns the body of a 200 response
func fetch(addr, path string, query url.Values) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := "http://" + addr + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := fasthttp.DoTimeout(req, resp, 5*time.Second); err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", uri, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("debug server returned %d: %s", resp.StatusCode(), resp.Body())
	}
	return append([]byte(nil), resp.Body()...), nil
}

func newLogsCmd() *cobra.Command {
	var (
		addr       string
		level      string
		errorsOnly bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the in-memory entries of a running development service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/debug/logs"
			query := url.Values{}
			switch {
			case errorsOnly:
				path = "/debug/errors"
			case level != "":
				if _, err := diaglog.Level(level); err != nil {
					return err
				}
				query.Set("level", level)
			}

			body, err := fetch(addr, path, query)
			if err != nil {
				return err
			}
			var entries []diaglog.Entry
			if err := json.Unmarshal(body, &entries); err != nil {
				return fmt.Errorf("invalid response: %w", err)
			}
			return writeEntries(cmd.OutOrStdout(), entries, asJSON)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", defaultDebugAddress, "debug server address")
	cmd.Flags().StringVarP(&level, "level", "l", "", "only show entries of this level")
	cmd.Flags().BoolVarP(&errorsOnly, "errors", "e", false, "only show error entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as a JSON array")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		addr   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the export document of a running development service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := fetch(addr, "/debug/export", nil)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(append(body, '\n'))
				return err
			}
			if err := os.WriteFile(output, body, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Export written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", defaultDebugAddress, "debug server address")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}
