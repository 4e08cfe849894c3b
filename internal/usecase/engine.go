package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/capmon/internal/domain"
)

// EngineConfig holds the classification timeouts.
//
// StuckActiveTimeout is normally configured larger than LostTimeout, so a
// file that stops growing is classified lost before the stuck path could
// fire again. That is an operational convention, not enforced here.
type EngineConfig struct {
	LostTimeout        time.Duration
	StuckActiveTimeout time.Duration
}

// EngineImpl implements domain.ScanEngine. It sequences one cycle:
// listing, state merge, classification, then side effects (state change
// reporting, lost hand-off, restart trigger creation), and owns all state
// carried between cycles.
type EngineImpl struct {
	config   EngineConfig
	clock    domain.Clock
	lister   domain.DirectoryLister
	triggers domain.TriggerWriter
	lostSink domain.LostFileSink
	logger   *zap.Logger

	tracker      *Tracker
	prevLost     map[string]struct{}
	signaledApps map[string]struct{}
}

// NewEngine creates a scan engine. State starts empty: every file in the
// directory is brand-new on the first cycle, and no app is considered
// signaled (an engine restart legitimately resets signaling state).
func NewEngine(
	config EngineConfig,
	clock domain.Clock,
	lister domain.DirectoryLister,
	triggers domain.TriggerWriter,
	lostSink domain.LostFileSink,
	logger *zap.Logger,
) *EngineImpl {
	return &EngineImpl{
		config:       config,
		clock:        clock,
		lister:       lister,
		triggers:     triggers,
		lostSink:     lostSink,
		logger:       logger,
		tracker:      NewTracker(),
		prevLost:     make(map[string]struct{}),
		signaledApps: make(map[string]struct{}),
	}
}

// RunCycle executes one full scan cycle. Only a directory listing failure
// returns an error; every other failure is isolated to its item, logged,
// and counted in the report.
func (e *EngineImpl) RunCycle(ctx context.Context) (*domain.CycleReport, error) {
	start := time.Now()

	listing, err := e.lister.List()
	if err != nil {
		return nil, fmt.Errorf("directory listing failed: %w", err)
	}

	removed := e.tracker.Merge(listing, e.clock.MonoNow())
	states := e.tracker.States()

	currentLost := LostPaths(states, e.clock.WallNow(), e.config.LostTimeout)
	newlyLost := make([]string, 0)
	for path := range currentLost {
		if _, ok := e.prevLost[path]; !ok {
			newlyLost = append(newlyLost, path)
		}
	}
	sort.Strings(newlyLost)

	currentStuck := StuckActivePaths(states, e.clock.MonoNow(), e.config.StuckActiveTimeout)

	// Side effects in fixed order: report, enqueue, trigger. Operators
	// reading the log see state transitions before their consequences.
	e.reportStateChanges(removed, newlyLost, currentStuck)
	dropped := e.enqueueLost(newlyLost)
	actions := DetermineAppRestartActions(currentStuck, e.signaledApps, e.logger)
	failedWrites := e.writeTriggers(actions.AppsToSignal)

	// Carry state forward. The signaled set is replaced wholesale: an app
	// whose trigger write failed stays marked signaled, so a failing
	// filesystem is not hammered with a retry every cycle.
	e.signaledApps = actions.SignaledApps
	e.prevLost = currentLost

	report := &domain.CycleReport{
		TrackedFiles:        e.tracker.Len(),
		RemovedPaths:        removed,
		NewlyLostPaths:      newlyLost,
		StuckActivePaths:    sortedKeys(currentStuck),
		SignaledApps:        actions.AppsToSignal,
		FailedTriggerWrites: failedWrites,
		DroppedLostFiles:    dropped,
		ExecutedAt:          start,
		DurationMs:          time.Since(start).Milliseconds(),
	}

	return report, nil
}

// reportStateChanges logs removed, newly-lost, and stuck paths.
func (e *EngineImpl) reportStateChanges(removed, newlyLost []string, stuck map[string]struct{}) {
	for _, path := range removed {
		e.logger.Info("file removed from scan directory",
			zap.String("path", path))
	}

	for _, path := range newlyLost {
		e.logger.Info("file lost, handing off for processing",
			zap.String("path", path))
	}

	for _, path := range sortedKeys(stuck) {
		e.logger.Debug("file stuck active",
			zap.String("path", path))
	}
}

// enqueueLost offers newly-lost paths to the downstream sink one at a
// time. A full sink drops the item for this cycle; the path stays in the
// lost set so it is not re-offered next cycle.
func (e *EngineImpl) enqueueLost(newlyLost []string) (dropped int) {
	for _, path := range newlyLost {
		if !e.lostSink.TryPut(path) {
			dropped++
			e.logger.Warn("lost file queue full, dropping",
				zap.String("path", path))
		}
	}
	return dropped
}

// writeTriggers creates restart trigger files in deterministic order.
// A failed write is logged and counted but never aborts the batch.
func (e *EngineImpl) writeTriggers(apps []string) (failed int) {
	for _, app := range apps {
		if err := e.triggers.WriteTrigger(app); err != nil {
			failed++
			e.logger.Error("failed to write restart trigger",
				zap.String("app", app),
				zap.Error(err))
			continue
		}
		e.logger.Info("restart trigger written",
			zap.String("app", app),
			zap.String("path", e.triggers.TriggerPath(app)))
	}
	return failed
}

// SignaledApps returns a copy of the currently-signaled app set (for tests
// and the status command).
func (e *EngineImpl) SignaledApps() []string {
	return sortedKeys(e.signaledApps)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ensure EngineImpl implements domain.ScanEngine.
var _ domain.ScanEngine = (*EngineImpl)(nil)
