package domain

import (
	"context"
	"time"
)

// Clock supplies both time sources the scan engine needs.
// Wall time is compared against file modification times; the monotonic
// reading measures how long a file has been under observation and is
// immune to system clock adjustments. The two must never be conflated.
type Clock interface {
	// WallNow returns the current wall-clock time.
	WallNow() time.Time

	// MonoNow returns the elapsed monotonic time since an arbitrary,
	// fixed process-local origin.
	MonoNow() time.Duration
}

// DirectoryLister enumerates capture files in the source directory.
// Implementation: os.ReadDir filtered by the configured extension.
type DirectoryLister interface {
	// List returns a snapshot of every matching file. An error here is
	// fatal to the cycle; a single unstattable entry is skipped instead.
	List() ([]FileSnapshot, error)
}

// TriggerWriter creates restart trigger files for the external supervisor.
type TriggerWriter interface {
	// WriteTrigger creates the zero-byte {app}.restart marker.
	// An already-existing trigger is not an error and is left untouched.
	WriteTrigger(app string) error

	// TriggerPath returns the trigger file path for an app.
	TriggerPath(app string) string
}

// LostFileSink receives paths whose producer has gone away.
// The engine is a producer only and must never block on a full sink.
type LostFileSink interface {
	// TryPut offers a path to the sink without blocking.
	// Returns false if the sink is full or closed.
	TryPut(path string) bool
}

// ScanEngine runs one scan cycle over the source directory.
type ScanEngine interface {
	// RunCycle lists the directory, merges file state, classifies lost
	// and stuck files, and performs the cycle's side effects. Returns an
	// error only when the directory listing itself fails.
	RunCycle(ctx context.Context) (*CycleReport, error)
}

// ProcessManager handles OS process operations.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// DaemonRegistry provides daemon discovery for the status command.
// Implementation: JSON file in /var/tmp.
type DaemonRegistry interface {
	// Register saves the daemon's PID and start time.
	Register(info DaemonInfo) error

	// UpdateHeartbeat updates the timestamp for liveness reporting.
	UpdateHeartbeat() error

	// GetAll returns the full registry state (for the status command).
	GetAll() (*RegistryEntry, error)

	// IsAlive checks whether the registered daemon PID is running.
	IsAlive() (bool, error)

	// Clear removes the registry file (for clean restart).
	Clear() error

	// GetRegistryPath returns the registry file path (for tests).
	GetRegistryPath() string
}
