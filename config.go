package diaglog

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/lixenwraith/config"
)

// Config holds all logger configuration values.
// A Config is read once by New; the resulting Logger never re-reads it.
type Config struct {
	// Buffer limits
	Capacity        int64  `toml:"capacity"`         // In-memory history size
	PersistCapacity int64  `toml:"persist_capacity"` // Durable warn/error subset size
	PersistKey      string `toml:"persist_key"`      // Key holding the durable array

	// Mode: "auto", "development" or "production"
	Mode string `toml:"mode"`

	// Console sink
	ConsoleTarget string `toml:"console_target"` // "stdout" or "stderr"
	ConsoleColor  bool   `toml:"console_color"`
	ConsoleFormat string `toml:"console_format"` // "txt" or "json"

	// Stack frames captured for error entries (0 disables)
	StackDepth int64 `toml:"stack_depth"`

	// Persistent store
	StoreBackend   string `toml:"store_backend"` // "none", "memory", "file" or "pebble"
	StoreDirectory string `toml:"store_directory"`
	MinDiskFreeMB  int64  `toml:"min_disk_free_mb"` // File backend refuses writes below this
	StoreSync      bool   `toml:"store_sync"`       // Pebble backend fsyncs every write

	// Export and debug surface
	DebugAddress string `toml:"debug_address"`
	ServiceURL   string `toml:"service_url"`

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"` // Write internal errors to stderr
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Capacity:        1000,
	PersistCapacity: 100,
	PersistKey:      "diaglog.persisted",

	Mode: ModeAuto,

	ConsoleTarget: "stderr",
	ConsoleColor:  true,
	ConsoleFormat: "txt",

	StackDepth: 10,

	StoreBackend:   BackendFile,
	StoreDirectory: "./diaglog",
	MinDiskFreeMB:  0,
	StoreSync:      true,

	DebugAddress: "127.0.0.1:6061",
	ServiceURL:   "",

	InternalErrorsToStderr: false,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config.
// Keys live under the [diaglog] table; a missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	if err := loader.RegisterStruct("diaglog.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "diaglog.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig copies values found by the loader into cfg, keyed by toml tag
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64: // TOML decoders may hand back floats for bare numbers
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Capacity <= 0 {
		return fmtErrorf("capacity must be positive: %d", c.Capacity)
	}

	if c.PersistCapacity <= 0 {
		return fmtErrorf("persist_capacity must be positive: %d", c.PersistCapacity)
	}

	if strings.TrimSpace(c.PersistKey) == "" {
		return fmtErrorf("persist_key cannot be empty")
	}

	switch c.Mode {
	case ModeAuto, ModeDevelopment, ModeProduction:
	default:
		return fmtErrorf("invalid mode: '%s' (use auto, development, or production)", c.Mode)
	}

	if c.ConsoleTarget != "stdout" && c.ConsoleTarget != "stderr" {
		return fmtErrorf("invalid console_target: '%s' (use stdout or stderr)", c.ConsoleTarget)
	}

	if c.ConsoleFormat != "txt" && c.ConsoleFormat != "json" {
		return fmtErrorf("invalid console_format: '%s' (use txt or json)", c.ConsoleFormat)
	}

	if c.StackDepth < 0 || c.StackDepth > maxStackDepth {
		return fmtErrorf("stack_depth must be between 0 and %d: %d", maxStackDepth, c.StackDepth)
	}

	switch c.StoreBackend {
	case BackendNone, BackendMemory:
	case BackendFile, BackendPebble:
		if strings.TrimSpace(c.StoreDirectory) == "" {
			return fmtErrorf("store_directory cannot be empty for the %s backend", c.StoreBackend)
		}
	default:
		return fmtErrorf("invalid store_backend: '%s' (use none, memory, file, or pebble)", c.StoreBackend)
	}

	if c.MinDiskFreeMB < 0 {
		return fmtErrorf("min_disk_free_mb cannot be negative: %d", c.MinDiskFreeMB)
	}

	return nil
}

// Validate exposes validation for callers assembling a Config by hand
func (c *Config) Validate() error {
	return c.validate()
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// resolveDevelopment turns the configured mode into the fixed gate value
func resolveDevelopment(mode string) bool {
	switch mode {
	case ModeDevelopment:
		return true
	case ModeProduction:
		return false
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv(envMode))) {
	case "development", "dev":
		return true
	case "production", "prod":
		return false
	}

	if host, err := os.Hostname(); err == nil {
		host = strings.ToLower(host)
		if host == "localhost" || strings.HasSuffix(host, ".local") {
			return true
		}
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version == "(devel)" {
		return true
	}

	return false
}
