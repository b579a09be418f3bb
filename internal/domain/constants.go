package domain

import "time"

// File permission constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Pipeline defaults. Every value here is overridable in config; these are
// the documented defaults applied by the loader's hydration pass.
const (
	// DefaultPipelineDeadline bounds one end-to-end run including fallback retries.
	DefaultPipelineDeadline = 5 * time.Second
	// DefaultGracePeriod bounds how long a cancelled generation may take to
	// acknowledge before forced teardown.
	DefaultGracePeriod = 2 * time.Second
	// DefaultProbeInterval is the background health check period.
	DefaultProbeInterval = 30 * time.Second
	// DefaultMonitorWindow is the ring-buffer sample count per backend.
	DefaultMonitorWindow = 50
	// DefaultSuccessRateFloor excludes backends below this rolling success rate.
	DefaultSuccessRateFloor = 0.5
	// DefaultMaxTokens is the default generation token budget.
	DefaultMaxTokens = 1024
	// DefaultHTTPClientTimeout is the timeout for backend HTTP requests.
	DefaultHTTPClientTimeout = 60 * time.Second
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display.
	DefaultHistoryLimit = 20
	// TimestampFormat is the standard timestamp format.
	TimestampFormat = time.RFC3339
)
