// Package usecase contains application business logic.
package usecase

import (
	"sort"
	"time"

	"github.com/eliteGoblin/capmon/internal/domain"
)

// Tracker owns the per-path file state map. It is the only component that
// mutates FileState records; classifiers read snapshots of the map.
type Tracker struct {
	states map[string]*domain.FileState
}

// NewTracker creates an empty file state tracker.
func NewTracker() *Tracker {
	return &Tracker{
		states: make(map[string]*domain.FileState),
	}
}

// Merge folds a directory listing into the tracked state and returns the
// paths that disappeared since the previous cycle, sorted.
//
// A newly listed path gets a fresh record whose PrevScan* fields equal the
// current observation and whose FirstSeenMono is nowMono. A retained path
// has its current values rolled into PrevScan* before being overwritten;
// FirstSeenMono is untouched. A path that disappears and later reappears
// is treated as brand-new, with no memory of its earlier record.
func (t *Tracker) Merge(listing []domain.FileSnapshot, nowMono time.Duration) []string {
	seen := make(map[string]struct{}, len(listing))

	for _, snap := range listing {
		seen[snap.Path] = struct{}{}

		st, ok := t.states[snap.Path]
		if !ok {
			t.states[snap.Path] = &domain.FileState{
				Path:            snap.Path,
				Size:            snap.Size,
				ModTime:         snap.ModTime,
				PrevScanSize:    snap.Size,
				PrevScanModTime: snap.ModTime,
				FirstSeenMono:   nowMono,
			}
			continue
		}

		st.PrevScanSize = st.Size
		st.PrevScanModTime = st.ModTime
		st.Size = snap.Size
		st.ModTime = snap.ModTime
	}

	var removed []string
	for path := range t.states {
		if _, ok := seen[path]; !ok {
			delete(t.states, path)
			removed = append(removed, path)
		}
	}
	sort.Strings(removed)

	return removed
}

// States returns the current state map. Callers must treat the map and its
// records as read-only; ownership stays with the tracker.
func (t *Tracker) States() map[string]*domain.FileState {
	return t.states
}

// Len returns the number of tracked paths.
func (t *Tracker) Len() int {
	return len(t.states)
}
