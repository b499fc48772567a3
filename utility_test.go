package diaglog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{" info ", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"fatal", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := Level(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, level)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelString(LevelDebug))
	assert.Equal(t, "error", LevelString(LevelError))
	assert.Equal(t, "level(3)", LevelString(3))
	assert.False(t, validLevel(3))
}

func TestParseKeyValue(t *testing.T) {
	tests := []struct {
		input     string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{"key=value", "key", "value", false},
		{" key = value ", "key", "value", false},
		{"key=value=with=equals", "key", "value=with=equals", false},
		{"noequals", "", "", true},
		{"=value", "", "", true},
		{"key=", "key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, value, err := parseKeyValue(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantKey, key)
				assert.Equal(t, tt.wantValue, value)
			}
		})
	}
}

func TestFmtErrorf(t *testing.T) {
	err := fmtErrorf("test error: %s", "details")
	assert.Error(t, err)
	assert.Equal(t, "diaglog: test error: details", err.Error())

	// Already prefixed
	err = fmtErrorf("diaglog: already prefixed")
	assert.Equal(t, "diaglog: already prefixed", err.Error())
}

func TestCaptureStack(t *testing.T) {
	tests := []struct {
		depth int64
		check func(string)
	}{
		{0, func(s string) { assert.Empty(t, s) }},
		{1, func(s string) {
			assert.Contains(t, s, "TestCaptureStack")
			assert.NotContains(t, s, "\n")
		}},
		{3, func(s string) {
			assert.LessOrEqual(t, strings.Count(s, "\n"), 2)
			assert.Contains(t, s, "utility_test.go:")
		}},
		{100, func(s string) { assert.LessOrEqual(t, strings.Count(s, "\n"), maxStackDepth-1) }},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth_%d", tt.depth), func(t *testing.T) {
			tt.check(captureStack(tt.depth, 0))
		})
	}
}

func TestPanicSite(t *testing.T) {
	t.Run("outside panic", func(t *testing.T) {
		file, line := panicSite()
		assert.Equal(t, Unavailable, file)
		assert.Zero(t, line)
	})

	t.Run("during panic", func(t *testing.T) {
		var file string
		var line int
		func() {
			defer func() {
				_ = recover()
			}()
			defer func() {
				file, line = panicSite()
			}()
			panic("site")
		}()
		assert.True(t, strings.HasSuffix(file, "utility_test.go"), file)
		assert.Positive(t, line)
	})
}
