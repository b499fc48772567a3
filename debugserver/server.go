// Package debugserver exposes a development logger's debug bridge over HTTP.
package debugserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/lixenwraith/diaglog"
	"github.com/lixenwraith/diaglog/compat"
)

// ErrProduction is returned by New for a logger without a debug bridge
var ErrProduction = errors.New("debugserver: debug bridge is not available in production mode")

// Server serves the debug bridge of one logger
type Server struct {
	logger  *diaglog.Logger
	bridge  *diaglog.DebugBridge
	metrics fasthttp.RequestHandler
	server  *fasthttp.Server
}

// New creates a server for logger. It refuses loggers running in production mode.
func New(logger *diaglog.Logger) (*Server, error) {
	if logger == nil {
		return nil, errors.New("debugserver: logger cannot be nil")
	}
	bridge := logger.DebugBridge()
	if bridge == nil {
		return nil, ErrProduction
	}

	registry := prometheus.NewRegistry()
	if err := registry.Register(diaglog.NewCollector(logger)); err != nil {
		return nil, fmt.Errorf("debugserver: failed to register metrics: %w", err)
	}

	s := &Server{
		logger:  logger,
		bridge:  bridge,
		metrics: fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	}
	s.server = &fasthttp.Server{
		Handler: s.Handler,
		Logger:  compat.NewFastHTTPAdapter(logger, compat.WithFastHTTPComponent("DebugServer")),

		Name:         "diaglog",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// ListenAndServe serves on the configured debug address
func (s *Server) ListenAndServe() error {
	addr := s.logger.Config().DebugAddress
	s.logger.Info("DebugServer", "listening", "address", addr)
	return s.server.ListenAndServe(addr)
}

// Serve serves on ln until Shutdown
func (s *Server) Serve(ln net.Listener) error {
	return s.server.Serve(ln)
}

// Shutdown stops accepting connections and waits for open ones to finish
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.ShutdownWithContext(ctx)
}

// Handler routes debug requests. A panic in a route is recorded as a fault.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Faults().CapturePanic(r)
			writeError(ctx, fasthttp.StatusInternalServerError, "internal error")
		}
	}()

	path := string(ctx.Path())
	switch path {
	case "/debug/logs":
		if !allow(ctx, fasthttp.MethodGet) {
			return
		}
		s.handleLogs(ctx)
	case "/debug/errors":
		if !allow(ctx, fasthttp.MethodGet) {
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, s.bridge.GetErrors())
	case "/debug/export":
		if !allow(ctx, fasthttp.MethodGet) {
			return
		}
		s.handleExport(ctx)
	case "/debug/clear":
		if !allow(ctx, fasthttp.MethodPost) {
			return
		}
		s.bridge.ClearLogs()
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	case "/debug/persisted":
		if !allow(ctx, fasthttp.MethodGet) {
			return
		}
		entries, err := s.bridge.PersistedLogs()
		if err != nil {
			writeError(ctx, fasthttp.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, entries)
	case "/debug/stats":
		if !allow(ctx, fasthttp.MethodGet) {
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, s.bridge.Stats())
	case "/metrics":
		s.metrics(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

func (s *Server) handleLogs(ctx *fasthttp.RequestCtx) {
	levelArg := ctx.QueryArgs().Peek("level")
	if len(levelArg) == 0 {
		writeJSON(ctx, fasthttp.StatusOK, s.bridge.GetLogs())
		return
	}
	level, err := diaglog.Level(string(levelArg))
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.bridge.GetLogs(level))
}

func (s *Server) handleExport(ctx *fasthttp.RequestCtx) {
	name := fmt.Sprintf("diaglog-%s.json", time.Now().UTC().Format("20060102-150405"))
	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString(s.bridge.ExportLogs())
}

// allow rejects requests with a method other than method
func allow(ctx *fasthttp.RequestCtx, method string) bool {
	if string(ctx.Method()) == method {
		return true
	}
	ctx.Response.Header.Set("Allow", method)
	writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
	return false
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, msg string) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
