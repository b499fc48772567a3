package diaglog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/diaglog/kvstore"
)

// createTestLogger creates a development logger over an in-memory store,
// writing uncolored console output to the returned buffer
func createTestLogger(t testing.TB, modify ...func(*Config)) (*Logger, *syncBuffer, kvstore.Store) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Mode = ModeDevelopment
	cfg.ConsoleColor = false
	cfg.StoreBackend = BackendNone
	for _, m := range modify {
		m(cfg)
	}

	store := kvstore.NewMemory()
	out := &syncBuffer{}
	logger, err := New(cfg, WithStore(store), WithConsoleWriter(out))
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })

	return logger, out, store
}

// syncBuffer is a bytes.Buffer safe for concurrent writers
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// failingStore reads as empty and refuses every write
type failingStore struct {
	sets atomic.Int64
}

func (s *failingStore) Get(string) ([]byte, error) { return nil, kvstore.ErrNotFound }
func (s *failingStore) Set(string, []byte) error {
	s.sets.Add(1)
	return kvstore.ErrQuotaExceeded
}
func (s *failingStore) Delete(string) error { return nil }
func (s *failingStore) Close() error        { return nil }

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration cannot be nil")
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Capacity = 0
		_, err := New(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "capacity must be positive")
	})

	t.Run("config is copied", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.StoreBackend = BackendNone
		logger, err := New(cfg)
		require.NoError(t, err)
		cfg.Capacity = 5
		assert.Equal(t, int64(1000), logger.Config().Capacity)
	})

	t.Run("unopenable store degrades", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		cfg := DefaultConfig()
		cfg.Mode = ModeProduction
		cfg.StoreBackend = BackendFile
		cfg.StoreDirectory = filepath.Join(blocker, "sub")
		logger, err := New(cfg)
		require.NoError(t, err)

		logger.Warn("Test", "still recorded")
		assert.Len(t, logger.GetLogs(), 1)
		assert.True(t, logger.Stats().PersistDegraded)
	})

	t.Run("file backend", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Mode = ModeProduction
		cfg.StoreDirectory = t.TempDir()
		logger, err := New(cfg)
		require.NoError(t, err)
		defer logger.Close()

		logger.Error("Test", "persisted")
		persisted, err := logger.PersistedLogs()
		require.NoError(t, err)
		require.Len(t, persisted, 1)
		assert.Equal(t, "persisted", persisted[0].Message)
	})
}

func TestRecordEvictsOldest(t *testing.T) {
	logger, _, _ := createTestLogger(t, func(c *Config) { c.Mode = ModeProduction })

	for i := 1; i <= 1005; i++ {
		logger.Debug("Test", fmt.Sprintf("entry-%d", i))
	}

	logs := logger.GetLogs()
	require.Len(t, logs, 1000)
	assert.Equal(t, "entry-6", logs[0].Message)
	assert.Equal(t, "entry-1005", logs[999].Message)
	for i, e := range logs {
		assert.Equal(t, fmt.Sprintf("entry-%d", i+6), e.Message)
	}

	stats := logger.Stats()
	assert.Equal(t, uint64(1005), stats.TotalRecorded)
	assert.Equal(t, uint64(5), stats.TotalEvicted)
	assert.Equal(t, 1000, stats.Buffered)
}

func TestRecordSmallCapacity(t *testing.T) {
	logger, _, _ := createTestLogger(t, func(c *Config) { c.Capacity = 3 })

	for i := 0; i < 10; i++ {
		logger.Info("Test", fmt.Sprint(i))
	}
	logs := logger.GetLogs()
	require.Len(t, logs, 3)
	assert.Equal(t, []string{"7", "8", "9"}, []string{logs[0].Message, logs[1].Message, logs[2].Message})
}

func TestGetLogs(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	logger.Debug("A", "debug")
	logger.Info("A", "info")
	logger.Warn("B", "warn")
	logger.Error("B", "error")

	t.Run("all levels in order", func(t *testing.T) {
		logs := logger.GetLogs()
		require.Len(t, logs, 4)
		for i, lvl := range []int64{LevelDebug, LevelInfo, LevelWarn, LevelError} {
			assert.Equal(t, lvl, logs[i].Level)
		}
	})

	t.Run("level filter", func(t *testing.T) {
		warns := logger.GetLogs(LevelWarn)
		require.Len(t, warns, 1)
		assert.Equal(t, "warn", warns[0].Message)

		errs := logger.Errors()
		require.Len(t, errs, 1)
		assert.Equal(t, "error", errs[0].Message)
	})

	t.Run("snapshot is detached", func(t *testing.T) {
		logs := logger.GetLogs()
		logs[0].Message = "mutated"
		logs = append(logs[:0], logs[1:]...)
		_ = logs

		fresh := logger.GetLogs()
		require.Len(t, fresh, 4)
		assert.Equal(t, "debug", fresh[0].Message)
	})
}

func TestRecordDefaults(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	logger.Record(99, "", "")
	logs := logger.GetLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, LevelInfo, logs[0].Level)
	assert.Equal(t, "Unknown", logs[0].Component)
	assert.Equal(t, "(no message)", logs[0].Message)
	assert.Nil(t, logs[0].Data)
}

func TestRecordData(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	t.Run("captured at call time", func(t *testing.T) {
		payload := map[string]any{"user": "alice"}
		logger.Info("Data", "payload", payload)
		payload["user"] = "mallory"

		logs := logger.GetLogs()
		assert.JSONEq(t, `{"user":"alice"}`, string(logs[len(logs)-1].Data))
	})

	t.Run("key value pairs", func(t *testing.T) {
		logger.Info("Data", "pairs", "id", 7, "ok", true)
		logs := logger.GetLogs()
		assert.JSONEq(t, `{"id":7,"ok":true}`, string(logs[len(logs)-1].Data))
	})

	t.Run("error value", func(t *testing.T) {
		logger.Warn("Data", "failed", errors.New("disk full"))
		logs := logger.GetLogs()
		assert.Contains(t, string(logs[len(logs)-1].Data), `"error":"disk full"`)
	})

	t.Run("unserializable value", func(t *testing.T) {
		assert.NotPanics(t, func() {
			logger.Info("Data", "channel", map[string]any{"ch": make(chan int)})
		})
		logs := logger.GetLogs()
		last := logs[len(logs)-1]
		assert.Equal(t, "channel", last.Message)
		assert.True(t, json.Valid(last.Data))
		assert.Contains(t, string(last.Data), "_unserializable")
	})

	t.Run("panicking marshaler", func(t *testing.T) {
		assert.NotPanics(t, func() {
			logger.Info("Data", "bad", panickingMarshaler{})
		})
		logs := logger.GetLogs()
		assert.Contains(t, string(logs[len(logs)-1].Data), "marshal panic")
	})
}

type panickingMarshaler struct{}

func (panickingMarshaler) MarshalJSON() ([]byte, error) {
	panic("cannot marshal")
}

func TestPersistKeepsRecentWarnAndError(t *testing.T) {
	logger, _, _ := createTestLogger(t, func(c *Config) { c.Mode = ModeProduction })

	for i := 0; i < 150; i++ {
		logger.Debug("Noise", "ignored")
		if i%2 == 0 {
			logger.Warn("Test", fmt.Sprintf("event-%d", i))
		} else {
			logger.Error("Test", fmt.Sprintf("event-%d", i))
		}
	}

	persisted, err := logger.PersistedLogs()
	require.NoError(t, err)
	require.Len(t, persisted, 100)
	assert.Equal(t, "event-50", persisted[0].Message)
	assert.Equal(t, "event-149", persisted[99].Message)
	for _, e := range persisted {
		assert.GreaterOrEqual(t, e.Level, LevelWarn)
	}
}

func TestClearLogsKeepsPersisted(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	logger.Info("Test", "memory only")
	logger.Warn("Test", "token expired")
	logger.ClearLogs()

	assert.Empty(t, logger.GetLogs())

	persisted, err := logger.PersistedLogs()
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "token expired", persisted[0].Message)
	assert.Equal(t, LevelWarn, persisted[0].Level)

	require.NoError(t, logger.ClearPersisted())
	persisted, err = logger.PersistedLogs()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestPersistSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	open := func() *Logger {
		cfg := DefaultConfig()
		cfg.Mode = ModeProduction
		cfg.StoreBackend = BackendPebble
		cfg.StoreDirectory = dir
		logger, err := New(cfg)
		require.NoError(t, err)
		return logger
	}

	first := open()
	first.Error("Boot", "crashed")
	require.NoError(t, first.Close())

	second := open()
	defer second.Close()
	assert.Empty(t, second.GetLogs())
	persisted, err := second.PersistedLogs()
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "crashed", persisted[0].Message)
}

// crashDirEnv tells a re-executed test binary to crash with a fault
const crashDirEnv = "DIAGLOG_CRASH_DIR"

func pebbleConfig(dir string) *Config {
	cfg := DefaultConfig()
	cfg.Mode = ModeProduction
	cfg.StoreBackend = BackendPebble
	cfg.StoreDirectory = dir
	return cfg
}

func TestFaultSurvivesCrash(t *testing.T) {
	if dir := os.Getenv(crashDirEnv); dir != "" {
		logger, err := New(pebbleConfig(dir))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(3)
		}
		logger.Faults().Repanic(true)
		defer logger.Faults().Recover()
		panic("fatal crash")
	}

	dir := t.TempDir()
	cmd := exec.Command(os.Args[0], "-test.run=^TestFaultSurvivesCrash$")
	cmd.Env = append(os.Environ(), crashDirEnv+"="+dir)
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "child must crash: %s", out)
	assert.NotEqual(t, 3, exitErr.ExitCode(), "child failed to open the store: %s", out)
	assert.Contains(t, string(out), "fatal crash")

	logger, err := New(pebbleConfig(dir))
	require.NoError(t, err)
	defer logger.Close()

	persisted, err := logger.PersistedLogs()
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "Uncaught panic: fatal crash", persisted[0].Message)
	assert.Equal(t, GlobalComponent, persisted[0].Component)
}

func TestFailingStoreWrite(t *testing.T) {
	store := &failingStore{}
	out := &syncBuffer{}
	cfg := DefaultConfig()
	cfg.Mode = ModeDevelopment
	cfg.ConsoleColor = false
	logger, err := New(cfg, WithStore(store), WithConsoleWriter(out))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		logger.Warn("Test", "first")
		logger.Error("Test", "second")
	})

	logs := logger.GetLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, "first", logs[0].Message)

	stats := logger.Stats()
	assert.True(t, stats.PersistDegraded)
	assert.Equal(t, uint64(1), stats.PersistFailures)
	assert.Equal(t, int64(1), store.sets.Load(), "degraded sink must not retry")
	assert.Contains(t, out.String(), "persistence disabled")
}

func TestErrorEntriesCarryStack(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	logger.Error("Test", "with stack")
	logger.Warn("Test", "without stack")

	logs := logger.GetLogs()
	require.Len(t, logs, 2)
	assert.Contains(t, logs[0].Stack, "TestErrorEntriesCarryStack")
	assert.Empty(t, logs[1].Stack)

	t.Run("disabled", func(t *testing.T) {
		logger, _, _ := createTestLogger(t, func(c *Config) { c.StackDepth = 0 })
		logger.Error("Test", "no stack")
		assert.Empty(t, logger.GetLogs()[0].Stack)
	})
}

func TestConsoleGate(t *testing.T) {
	t.Run("development emits", func(t *testing.T) {
		logger, out, _ := createTestLogger(t)
		logger.Warn("Auth", "token expired")
		logger.Error("Auth", "denied")

		assert.Contains(t, out.String(), "WARN [Auth] token expired")
		assert.Contains(t, out.String(), "ERROR [Auth] denied")
		assert.Contains(t, out.String(), "    at ")
		assert.True(t, logger.Development())
		assert.NotNil(t, logger.DebugBridge())
	})

	t.Run("production is silent", func(t *testing.T) {
		logger, out, _ := createTestLogger(t, func(c *Config) { c.Mode = ModeProduction })
		logger.Error("Auth", "denied")

		assert.Empty(t, out.String())
		assert.Len(t, logger.GetLogs(), 1)
		assert.False(t, logger.Development())
		assert.Nil(t, logger.DebugBridge())
	})

	t.Run("json format", func(t *testing.T) {
		logger, out, _ := createTestLogger(t, func(c *Config) { c.ConsoleFormat = "json" })
		logger.Info("Auth", "ok", "user", "bob")

		var line map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace([]byte(out.String())), &line))
		assert.Equal(t, "Auth", line["component"])
		assert.Equal(t, map[string]any{"user": "bob"}, line["data"])
	})
}

func TestComponentLogger(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	auth := logger.For("Auth")
	auth.Debug("d")
	auth.Info("i")
	auth.Warn("w")
	auth.Error("e", "code", 401)

	logs := logger.GetLogs()
	require.Len(t, logs, 4)
	for _, e := range logs {
		assert.Equal(t, "Auth", e.Component)
	}
	assert.NotEmpty(t, logs[3].Stack)
	assert.JSONEq(t, `{"code":401}`, string(logs[3].Data))
}

func TestLoggerConcurrency(t *testing.T) {
	logger, _, _ := createTestLogger(t, func(c *Config) { c.Capacity = 100 })

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Info("Worker", fmt.Sprintf("worker %d msg %d", id, j))
				if j%10 == 0 {
					logger.Warn("Worker", "checkpoint")
					_ = logger.GetLogs()
				}
			}
		}(i)
	}
	wg.Wait()

	stats := logger.Stats()
	assert.Equal(t, uint64(550), stats.TotalRecorded)
	assert.Equal(t, 100, stats.Buffered)
	assert.Equal(t, uint64(450), stats.TotalEvicted)

	persisted, err := logger.PersistedLogs()
	require.NoError(t, err)
	assert.Len(t, persisted, 50)
}

func TestCloseKeepsMemory(t *testing.T) {
	logger, _, _ := createTestLogger(t)
	require.NoError(t, logger.Close())

	assert.NotPanics(t, func() { logger.Error("Test", "after close") })
	assert.Len(t, logger.GetLogs(), 1)
}
