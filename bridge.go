package diaglog

// DebugBridge is the read and administrative facade handed to development
// tooling. It holds no state of its own.
type DebugBridge struct {
	logger *Logger
}

// GetLogs returns the in-memory entries, optionally filtered by level
func (b *DebugBridge) GetLogs(level ...int64) []Entry {
	return b.logger.GetLogs(level...)
}

// GetErrors returns the error-level entries
func (b *DebugBridge) GetErrors() []Entry {
	return b.logger.Errors()
}

// ExportLogs returns the export document as JSON
func (b *DebugBridge) ExportLogs() string {
	return b.logger.ExportLogs()
}

// ClearLogs empties the in-memory store; the persistent subset is kept
func (b *DebugBridge) ClearLogs() {
	b.logger.ClearLogs()
}

// PersistedLogs returns the durable warn/error subset
func (b *DebugBridge) PersistedLogs() ([]Entry, error) {
	return b.logger.PersistedLogs()
}

// Stats returns the logger counters
func (b *DebugBridge) Stats() Stats {
	return b.logger.Stats()
}
