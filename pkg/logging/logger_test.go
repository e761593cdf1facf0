package logging

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput collects entries for assertions.
type captureOutput struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (c *captureOutput) Write(e LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return nil
}

func (c *captureOutput) Sync() error  { return nil }
func (c *captureOutput) Close() error { return nil }

func (c *captureOutput) all() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LogEntry(nil), c.entries...)
}

func TestLoggerSeverityFiltering(t *testing.T) {
	capture := &captureOutput{}
	logger := NewLogger(Config{Severity: WARN, Outputs: []Output{capture}})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	entries := capture.all()
	require.Len(t, entries, 2)
	assert.Equal(t, WARN, entries[0].Severity)
	assert.Equal(t, ERROR, entries[1].Severity)
}

func TestLoggerContextEnrichment(t *testing.T) {
	capture := &captureOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{capture}})

	ctx := WithRunID(context.Background(), "run-42")
	ctx = WithIteration(ctx, 7)
	logger.Info(ctx, "solve complete, active=%d", 96)

	entries := capture.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "run-42", entries[0].RunID)
	assert.Equal(t, 7, entries[0].Iteration)
	assert.Equal(t, "solve complete, active=96", entries[0].Message)
	assert.NotEmpty(t, entries[0].File)
}

func TestLoggerDefaultFields(t *testing.T) {
	capture := &captureOutput{}
	logger := NewLogger(Config{
		Severity:      INFO,
		Outputs:       []Output{capture},
		DefaultFields: map[string]interface{}{"component": "optimizer"},
	})

	logger.Info(context.Background(), "hello")

	entries := capture.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "optimizer", entries[0].Fields["component"])
}

func TestConsoleOutputFormat(t *testing.T) {
	var buf bytes.Buffer
	out := NewConsoleOutput(false, WithColor(false), WithWriter(&buf))
	logger := NewLogger(Config{Severity: INFO, Outputs: []Output{out}})

	ctx := WithRunID(context.Background(), "run-1")
	logger.Info(ctx, "pruned %d members", 3)

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "pruned 3 members")
	assert.Contains(t, line, "[run=run-1]")
	assert.NotContains(t, line, "\033[")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	out, err := NewFileOutput(path)
	require.NoError(t, err)
	defer out.Close()

	logger := NewLogger(Config{Severity: INFO, Outputs: []Output{out}})
	logger.Info(context.Background(), "iteration complete")
	require.NoError(t, out.Sync())

	assert.FileExists(t, path)
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, ERROR, ParseSeverity("ERROR"))
	// Unknown strings default to INFO.
	assert.Equal(t, INFO, ParseSeverity("nonsense"))
}

func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	capture := &captureOutput{}
	custom := NewLogger(Config{Severity: DEBUG, Outputs: []Output{capture}})
	SetLogger(custom)

	assert.Same(t, custom, GetLogger())
}
