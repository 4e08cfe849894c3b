package usecase

import (
	"sort"

	"go.uber.org/zap"
)

// RestartActions is the output of DetermineAppRestartActions: which apps
// need a new restart trigger this cycle, and the signaled set to carry
// forward into the next cycle.
type RestartActions struct {
	// AppsToSignal lists apps needing a trigger this cycle, sorted.
	AppsToSignal []string

	// SignaledApps is the full replacement for the previously-signaled
	// set: exactly the apps with at least one currently stuck file.
	SignaledApps map[string]struct{}
}

// DetermineAppRestartActions diffs the current stuck-path set against the
// apps already signaled in the previous cycle.
//
// Per-app behavior over consecutive cycles reads as a small state machine:
// Idle -> Stuck&Unsignaled (produces a trigger) -> Stuck&Signaled (silent)
// -> Idle once unstuck. Because the signaled set is replaced rather than
// accumulated, an app that recovers and later gets stuck again is signaled
// again.
//
// A stuck path whose filename cannot be resolved to an app name is logged
// and excluded; it contributes no app to either output.
func DetermineAppRestartActions(stuckPaths map[string]struct{}, prevSignaled map[string]struct{}, logger *zap.Logger) RestartActions {
	currentStuckApps := make(map[string]struct{}, len(stuckPaths))
	for path := range stuckPaths {
		app, err := AppNameFromPath(path)
		if err != nil {
			logger.Warn("skipping stuck file with unresolvable app name",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		currentStuckApps[app] = struct{}{}
	}

	var toSignal []string
	for app := range currentStuckApps {
		if _, ok := prevSignaled[app]; !ok {
			toSignal = append(toSignal, app)
		}
	}
	sort.Strings(toSignal)

	return RestartActions{
		AppsToSignal: toSignal,
		SignaledApps: currentStuckApps,
	}
}
