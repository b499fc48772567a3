package main

import (
	"fmt"
	"os"

	"github.com/panjf2000/gnet/v2"

	"github.com/lixenwraith/diaglog"
	"github.com/lixenwraith/diaglog/compat"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
	logger *diaglog.ComponentLogger
}

func (es *echoServer) OnBoot(eng gnet.Engine) gnet.Action {
	es.logger.Info("echo server started")
	return gnet.None
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	// Handler panics are recorded instead of killing the event loop
	defer diaglog.Recover()

	buf, err := c.Next(-1)
	if err != nil {
		es.logger.Warn("read failed", "remote", c.RemoteAddr().String(), "error", err)
		return gnet.Close
	}
	if _, err := c.Write(buf); err != nil {
		es.logger.Error("write failed", "remote", c.RemoteAddr().String(), "error", err)
	}
	return gnet.None
}

func main() {
	cfg := diaglog.DefaultConfig()
	if err := cfg.ApplyOverride(
		"store_backend=pebble",
		"store_directory=./gnet_diaglog",
	); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := diaglog.Init(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Close()

	// gnet's own diagnostics land in the same store; key=value pairs become entry data
	gnetAdapter := compat.NewStructuredGnetAdapter(logger, compat.WithGnetComponent("gnet"))

	err = gnet.Run(
		&echoServer{logger: logger.For("EchoServer")},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		logger.Error("EchoServer", "gnet exited", err)
	}
}
