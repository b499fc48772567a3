package diaglog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/diaglog/kvstore"
)

func TestBuilder_Build(t *testing.T) {
	t.Run("successful build returns configured logger", func(t *testing.T) {
		out := &syncBuffer{}
		store := kvstore.NewMemory()

		logger, err := NewBuilder().
			Capacity(50).
			PersistCapacity(5).
			PersistKey("test.persisted").
			Development().
			ConsoleColor(false).
			ConsoleFormat("json").
			ConsoleWriter(out).
			StackDepth(4).
			Store(store).
			ServiceURL("https://svc").
			StoreSync(false).
			Build()
		require.NoError(t, err, "Builder.Build() should not return an error on valid config")
		require.NotNil(t, logger)
		defer logger.Close()

		cfg := logger.Config()
		assert.Equal(t, int64(50), cfg.Capacity)
		assert.Equal(t, int64(5), cfg.PersistCapacity)
		assert.Equal(t, "test.persisted", cfg.PersistKey)
		assert.Equal(t, ModeDevelopment, cfg.Mode)
		assert.Equal(t, "json", cfg.ConsoleFormat)
		assert.Equal(t, int64(4), cfg.StackDepth)
		assert.False(t, cfg.StoreSync)
		assert.True(t, logger.Development())

		logger.Warn("Builder", "stored")
		raw, err := store.Get("test.persisted")
		require.NoError(t, err)
		assert.Contains(t, string(raw), "stored")
		assert.Contains(t, out.String(), `"component":"Builder"`)
	})

	t.Run("backend opened from config", func(t *testing.T) {
		logger, err := NewBuilder().
			Production().
			Backend(BackendFile, t.TempDir()).
			Build()
		require.NoError(t, err)
		defer logger.Close()

		logger.Error("Builder", "on disk")
		persisted, err := logger.PersistedLogs()
		require.NoError(t, err)
		assert.Len(t, persisted, 1)
	})

	t.Run("builder error accumulation", func(t *testing.T) {
		logger, err := NewBuilder().
			Override("capacity=lots").
			Override("mode=development"). // Not evaluated after the first error
			Build()

		require.Error(t, err, "Build should fail with an invalid override")
		assert.Contains(t, err.Error(), "invalid integer value for capacity")
		assert.Nil(t, logger)

		_, err = NewBuilder().Override("capacity=lots").Config()
		assert.Error(t, err)
	})

	t.Run("validation error", func(t *testing.T) {
		logger, err := NewBuilder().
			Mode("staging").
			Build()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid mode")
		assert.Nil(t, logger)
	})
}
