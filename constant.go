package diaglog

// Log level constants
const (
	LevelDebug int64 = -4
	LevelInfo  int64 = 0
	LevelWarn  int64 = 4
	LevelError int64 = 8
)

// Operating modes, fixed for the lifetime of a Logger
const (
	ModeAuto        = "auto"
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Store backends for the persistent sink
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendPebble = "pebble"
)

const (
	// Component used for entries produced by the fault hooks
	GlobalComponent = "Global"
	// Substituted for empty component and message
	defaultComponent = "Unknown"
	defaultMessage   = "(no message)"

	// Sentinel for environment values with no meaning in the current process
	Unavailable = "unavailable"

	// ISO-8601, millisecond precision, always UTC
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"

	// Upper bound of a placeholder dump for unserializable data
	maxPlaceholderBytes = 4096
	// Upper bound of captured stack frames
	maxStackDepth = 32
)

// Environment variable consulted when mode is auto
const envMode = "DIAGLOG_ENV"
