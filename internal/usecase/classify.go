package usecase

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/eliteGoblin/capmon/internal/domain"
)

// LostPaths returns the set of paths whose modification time is older than
// lostTimeout at nowWall. The check is purely a function of mtime staleness:
// it applies equally to files seen for the first time this cycle, and is
// independent of whether the file is still growing.
func LostPaths(states map[string]*domain.FileState, nowWall time.Time, lostTimeout time.Duration) map[string]struct{} {
	lost := make(map[string]struct{})
	for path, st := range states {
		if nowWall.Sub(st.ModTime) > lostTimeout {
			lost[path] = struct{}{}
		}
	}
	return lost
}

// StuckActivePaths returns the set of paths that are both actively changing
// and have been under observation longer than stuckTimeout of monotonic
// time. Activity is false on a file's first cycle by construction, so a
// just-discovered file can never be stuck in the cycle that discovered it.
func StuckActivePaths(states map[string]*domain.FileState, nowMono time.Duration, stuckTimeout time.Duration) map[string]struct{} {
	stuck := make(map[string]struct{})
	for path, st := range states {
		if st.Active() && nowMono-st.FirstSeenMono > stuckTimeout {
			stuck[path] = struct{}{}
		}
	}
	return stuck
}

// AppNameFromPath derives the producer application name from a capture file
// path. The producer naming convention is {app}-{anything}.{ext}: the app
// name is the filename prefix before the first hyphen. A filename with no
// hyphen, or with nothing before it, fails resolution.
func AppNameFromPath(path string) (string, error) {
	base := filepath.Base(path)
	idx := strings.Index(base, "-")
	if idx <= 0 {
		return "", fmt.Errorf("cannot resolve app name from %q: want {app}-{suffix} form", base)
	}
	return base[:idx], nil
}
