// pkg/logging/logging_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (temp XDG state home)
// PURPOSE: Test logger levels, log file placement and component loggers

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withStateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	// Registered first so it runs after Setenv restores the variable
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_STATE_HOME", dir)
	xdg.Reload()
	return dir
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stateHome := withStateHome(t)

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
			assert.FileExists(t, filepath.Join(stateHome, "fstree", "fstree.log"))
		})
	}
}

func TestSetup_WithoutFile(t *testing.T) {
	stateHome := withStateHome(t)

	Setup(Options{Verbosity: 1})

	_, err := os.Stat(filepath.Join(stateHome, "fstree"))
	assert.True(t, os.IsNotExist(err), "no log directory when file logging is off")
}

func TestGetLogFilePath(t *testing.T) {
	stateHome := withStateHome(t)

	assert.Equal(t, filepath.Join(stateHome, "fstree", "fstree.log"), getLogFilePath())
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	logger := GetLogger("reader")
	done := LogOperationStart(logger, "ReadAt")
	done()

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"component":"reader"`)
	assert.Contains(t, out, `"operation":"ReadAt"`)
	assert.Contains(t, out, "Operation completed")
}
