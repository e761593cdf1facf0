package logging

// LogEntry represents a structured log record with fields particularly relevant to optimization runs
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Run-specific fields
	RunID     string // Identifier of the optimization run
	Iteration int    // Iteration number within the run (0 when outside the loop)

	// General structured data
	Fields map[string]interface{}
}
