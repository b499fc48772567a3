package diaglog

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverride applies string key-value overrides to the configuration in place.
// Each override should be in the format "key=value". The result is validated.
//
// Example:
//
//	cfg := diaglog.DefaultConfig()
//	err := cfg.ApplyOverride(
//	    "mode=development",
//	    "capacity=5000",
//	    "store_backend=pebble",
//	)
func (c *Config) ApplyOverride(overrides ...string) error {
	next := c.Clone()

	var errors []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errors = append(errors, err)
			continue
		}

		if err := applyConfigField(next, key, value); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return combineConfigErrors(errors)
	}

	if err := next.validate(); err != nil {
		return err
	}

	*c = *next
	return nil
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	if len(errors) == 1 {
		return errors[0]
	}

	var sb strings.Builder
	sb.WriteString("diaglog: multiple configuration errors:")
	for i, err := range errors {
		errMsg := strings.TrimPrefix(err.Error(), "diaglog: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	case "capacity":
		intVal, err := parseIntField(key, value)
		if err != nil {
			return err
		}
		cfg.Capacity = intVal
	case "persist_capacity":
		intVal, err := parseIntField(key, value)
		if err != nil {
			return err
		}
		cfg.PersistCapacity = intVal
	case "persist_key":
		cfg.PersistKey = value
	case "mode":
		cfg.Mode = strings.ToLower(value)

	case "console_target":
		cfg.ConsoleTarget = value
	case "console_color":
		boolVal, err := parseBoolField(key, value)
		if err != nil {
			return err
		}
		cfg.ConsoleColor = boolVal
	case "console_format":
		cfg.ConsoleFormat = value

	case "stack_depth":
		intVal, err := parseIntField(key, value)
		if err != nil {
			return err
		}
		cfg.StackDepth = intVal

	case "store_backend":
		cfg.StoreBackend = strings.ToLower(value)
	case "store_directory":
		cfg.StoreDirectory = value
	case "min_disk_free_mb":
		intVal, err := parseIntField(key, value)
		if err != nil {
			return err
		}
		cfg.MinDiskFreeMB = intVal

	case "store_sync":
		boolVal, err := parseBoolField(key, value)
		if err != nil {
			return err
		}
		cfg.StoreSync = boolVal

	case "debug_address":
		cfg.DebugAddress = value
	case "service_url":
		cfg.ServiceURL = value

	case "internal_errors_to_stderr":
		boolVal, err := parseBoolField(key, value)
		if err != nil {
			return err
		}
		cfg.InternalErrorsToStderr = boolVal

	default:
		return fmtErrorf("unknown config key in override: %s", key)
	}

	return nil
}

func parseIntField(key, value string) (int64, error) {
	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
	}
	return intVal, nil
}

func parseBoolField(key, value string) (bool, error) {
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
	}
	return boolVal, nil
}
