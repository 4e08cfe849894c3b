// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import "time"

// FileState tracks a single capture file across scan cycles.
type FileState struct {
	Path    string
	Size    int64
	ModTime time.Time

	// Previous cycle's observation. Set equal to the current values when a
	// file is first seen, so activity is never detected on the first cycle.
	PrevScanSize    int64
	PrevScanModTime time.Time

	// FirstSeenMono is the monotonic clock reading when the path first
	// appeared in a listing. Never updated for the life of the record.
	FirstSeenMono time.Duration
}

// Active reports whether the file changed between the previous and current
// scan. False by construction on a file's first cycle.
func (f *FileState) Active() bool {
	return f.Size != f.PrevScanSize || !f.ModTime.Equal(f.PrevScanModTime)
}

// FileSnapshot is a single directory listing entry: the observable facts
// about one file at one point in time.
type FileSnapshot struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// CycleReport captures what happened during a single scan cycle.
type CycleReport struct {
	TrackedFiles        int
	RemovedPaths        []string
	NewlyLostPaths      []string
	StuckActivePaths    []string
	SignaledApps        []string
	FailedTriggerWrites int
	DroppedLostFiles    int
	ExecutedAt          time.Time
	DurationMs          int64
}

// DaemonInfo describes the running scanner daemon process.
type DaemonInfo struct {
	PID        int
	StartedAt  time.Time
	AppVersion string
}

// RegistryEntry stores the daemon state for the status command.
// Persisted to a JSON file so other CLI invocations can find the daemon.
type RegistryEntry struct {
	Version       int    `json:"version"`
	PID           int    `json:"pid"`
	StartedAt     int64  `json:"started_at"`
	LastHeartbeat int64  `json:"last_heartbeat"`
	AppVersion    string `json:"app_version,omitempty"`
}
