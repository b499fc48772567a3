package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/diaglog"
	"github.com/lixenwraith/diaglog/compat"
	"github.com/lixenwraith/diaglog/debugserver"
)

func main() {
	// Create and configure logger
	logger, err := diaglog.NewBuilder().
		Development().
		Backend(diaglog.BackendFile, "./fasthttp_diaglog").
		Capacity(2000).
		Build()
	if err != nil {
		panic(err)
	}
	defer logger.Close()

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter := compat.NewFastHTTPAdapter(
		logger,
		compat.WithDefaultLevel(diaglog.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	// Debug bridge on its own port, development only
	if dbg, err := debugserver.New(logger); err == nil {
		logger.Faults().GoErr(dbg.ListenAndServe)
	}

	// Configure fasthttp server
	server := &fasthttp.Server{
		Handler: requestHandler(logger),
		Logger:  fasthttpAdapter,

		// Other server settings
		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	// Start server
	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		logger.Error("Server", "listen failed", err)
	}
}

func requestHandler(logger *diaglog.Logger) fasthttp.RequestHandler {
	faults := logger.Faults()
	return func(ctx *fasthttp.RequestCtx) {
		defer faults.Recover()

		if string(ctx.Path()) == "/panic" {
			panic("handler failure on " + string(ctx.Path()))
		}
		logger.Debug("Server", "request", "path", string(ctx.Path()), "method", string(ctx.Method()))

		ctx.SetContentType("text/plain")
		fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
	}
}

func customLevelDetector(msg string) int64 {
	// Can inspect specific fasthttp message patterns
	if strings.Contains(msg, "connection cannot be served") {
		return diaglog.LevelWarn
	}
	if strings.Contains(msg, "error when serving connection") {
		return diaglog.LevelError
	}

	// Use default detection
	return compat.DetectLogLevel(msg)
}
