package compat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/diaglog"
	"github.com/lixenwraith/diaglog/kvstore"
)

// createTestCompatBuilder creates a standard setup for compatibility adapter tests
func createTestCompatBuilder(t *testing.T) (*Builder, *diaglog.Logger) {
	t.Helper()
	appLogger, err := diaglog.NewBuilder().
		Production().
		Store(kvstore.NewMemory()).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = appLogger.Close() })

	builder := NewBuilder().WithLogger(appLogger)
	return builder, appLogger
}

func decodeData(t *testing.T, e diaglog.Entry) map[string]any {
	t.Helper()
	var data map[string]any
	require.NoError(t, json.Unmarshal(e.Data, &data))
	return data
}

func TestCompatBuilder(t *testing.T) {
	t.Run("with existing logger", func(t *testing.T) {
		builder, logger := createTestCompatBuilder(t)
		got, err := builder.GetLogger()
		require.NoError(t, err)
		assert.Same(t, logger, got)
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewBuilder().WithLogger(nil).BuildGnet()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be nil")
	})

	t.Run("with config", func(t *testing.T) {
		cfg := diaglog.DefaultConfig()
		cfg.Mode = diaglog.ModeProduction
		cfg.StoreBackend = diaglog.BackendMemory
		cfg.Capacity = 10

		builder := NewBuilder().WithConfig(cfg)
		gnetAdapter, err := builder.BuildGnet()
		require.NoError(t, err)
		fasthttpAdapter, err := builder.BuildFastHTTP()
		require.NoError(t, err)

		// Both adapters share the logger created on first build
		assert.Same(t, gnetAdapter.logger, fasthttpAdapter.logger)
		assert.Equal(t, int64(10), gnetAdapter.logger.Config().Capacity)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := diaglog.DefaultConfig()
		cfg.Capacity = -1
		_, err := NewBuilder().WithConfig(cfg).BuildFastHTTP()
		assert.Error(t, err)
	})
}

// TestGnetAdapter tests the gnet adapter's levels and fatal handling
func TestGnetAdapter(t *testing.T) {
	builder, logger := createTestCompatBuilder(t)

	var fatalMsg string
	adapter, err := builder.BuildGnet(WithFatalHandler(func(msg string) {
		fatalMsg = msg
	}))
	require.NoError(t, err)

	adapter.Debugf("gnet debug id=%d", 1)
	adapter.Infof("gnet info id=%d", 2)
	adapter.Warnf("gnet warn id=%d", 3)
	adapter.Errorf("gnet error id=%d", 4)
	adapter.Fatalf("gnet fatal id=%d", 5)

	expected := []struct {
		level int64
		msg   string
	}{
		{diaglog.LevelDebug, "gnet debug id=1"},
		{diaglog.LevelInfo, "gnet info id=2"},
		{diaglog.LevelWarn, "gnet warn id=3"},
		{diaglog.LevelError, "gnet error id=4"},
		{diaglog.LevelError, "gnet fatal id=5"},
	}

	logs := logger.GetLogs()
	require.Len(t, logs, 5)
	for i, e := range logs {
		assert.Equal(t, expected[i].level, e.Level)
		assert.Equal(t, expected[i].msg, e.Message)
		assert.Equal(t, "gnet", e.Component)
		assert.Equal(t, "gnet", decodeData(t, e)["source"])
	}
	assert.Equal(t, true, decodeData(t, logs[4])["fatal"])
	assert.Equal(t, "gnet fatal id=5", fatalMsg)

	// Fatal entries are durable before the handler runs
	persisted, err := logger.PersistedLogs()
	require.NoError(t, err)
	assert.Len(t, persisted, 3)
}

func TestGnetAdapterComponent(t *testing.T) {
	builder, logger := createTestCompatBuilder(t)
	adapter, err := builder.BuildGnet(WithGnetComponent("EchoServer"))
	require.NoError(t, err)

	adapter.Infof("listening")
	assert.Equal(t, "EchoServer", logger.GetLogs()[0].Component)
}

// TestStructuredGnetAdapter tests the gnet adapter with structured field extraction
func TestStructuredGnetAdapter(t *testing.T) {
	builder, logger := createTestCompatBuilder(t)

	adapter, err := builder.BuildStructuredGnet()
	require.NoError(t, err)

	adapter.Infof("request served status=%d client_ip=%s", 200, "127.0.0.1")
	adapter.Warnf("plain message %s", "without pairs")

	logs := logger.GetLogs()
	require.Len(t, logs, 2)

	assert.Equal(t, diaglog.LevelInfo, logs[0].Level)
	assert.Equal(t, "request served", logs[0].Message)
	assert.JSONEq(t, `{"status":200,"client_ip":"127.0.0.1","source":"gnet"}`, string(logs[0].Data))

	assert.Equal(t, "plain message without pairs", logs[1].Message)
	assert.JSONEq(t, `{"source":"gnet"}`, string(logs[1].Data))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		args       []any
		wantMsg    string
		wantFields map[string]any
	}{
		{"no pairs", "hello %s", []any{"world"}, "hello world", nil},
		{"pairs only", "id=%d", []any{7}, "(no message)", map[string]any{"id": 7}},
		{"colon pairs", "conn closed addr: %s err: %v", []any{"1.2.3.4", "eof"}, "conn closed", map[string]any{"addr": "1.2.3.4", "err": "eof"}},
		{"trailing text", "retry n=%d in %ds", []any{2, 5}, "retry in 5s", map[string]any{"n": 2}},
		{"too few args", "a=%d b=%d", []any{1}, "a=1 b=%!d(MISSING)", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, fields := parseFormat(tt.format, tt.args)
			assert.Equal(t, tt.wantMsg, msg)
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

// TestFastHTTPAdapter tests the fasthttp adapter's level detection
func TestFastHTTPAdapter(t *testing.T) {
	builder, logger := createTestCompatBuilder(t)

	adapter, err := builder.BuildFastHTTP()
	require.NoError(t, err)

	testMessages := []string{
		"this is some informational message",
		"a debug message for the developers",
		"warning: something might be wrong",
		"an error occurred while processing",
	}
	for _, msg := range testMessages {
		adapter.Printf("%s", msg)
	}

	expectedLevels := []int64{diaglog.LevelInfo, diaglog.LevelDebug, diaglog.LevelWarn, diaglog.LevelError}

	logs := logger.GetLogs()
	require.Len(t, logs, 4)
	for i, e := range logs {
		assert.Equal(t, expectedLevels[i], e.Level)
		assert.Equal(t, testMessages[i], e.Message)
		assert.Equal(t, "fasthttp", e.Component)
		assert.Equal(t, "fasthttp", decodeData(t, e)["source"])
	}
}

func TestFastHTTPAdapterOptions(t *testing.T) {
	builder, logger := createTestCompatBuilder(t)

	adapter, err := builder.BuildFastHTTP(
		WithDefaultLevel(diaglog.LevelWarn),
		WithLevelDetector(func(string) int64 { return diaglog.LevelInfo }),
		WithFastHTTPComponent("DebugServer"),
	)
	require.NoError(t, err)

	adapter.Printf("error when serving connection %q", "1.2.3.4")

	logs := logger.GetLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, diaglog.LevelWarn, logs[0].Level)
	assert.Equal(t, "DebugServer", logs[0].Component)
}
