// Package daemon implements the background scan loop.
package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/capmon/internal/domain"
)

// ScannerConfig holds scanner daemon configuration.
type ScannerConfig struct {
	ScanInterval time.Duration // Sleep between scan cycles
}

// Scanner is the background daemon that drives the scan engine.
// It runs one cycle per interval, exactly one cycle in flight at a time;
// a started cycle always runs to completion and cancellation takes effect
// at the next tick. It also keeps the daemon registry heartbeat fresh so
// the status command can report liveness.
type Scanner struct {
	config   ScannerConfig
	engine   domain.ScanEngine
	registry domain.DaemonRegistry
	logger   *zap.Logger
	info     domain.DaemonInfo
}

// NewScanner creates a new scanner daemon.
func NewScanner(
	config ScannerConfig,
	engine domain.ScanEngine,
	registry domain.DaemonRegistry,
	info domain.DaemonInfo,
	logger *zap.Logger,
) *Scanner {
	return &Scanner{
		config:   config,
		engine:   engine,
		registry: registry,
		info:     info,
		logger:   logger,
	}
}

// Run starts the scan loop. It blocks until the context is canceled or a
// cycle fails fatally (directory listing failure), and returns the cause.
func (s *Scanner) Run(ctx context.Context) error {
	if s.registry != nil {
		if err := s.registry.Register(s.info); err != nil {
			// Status reporting is degraded but scanning still works.
			s.logger.Warn("failed to register daemon", zap.Error(err))
		}
	}

	s.logger.Info("scanner daemon started",
		zap.Int("pid", s.info.PID),
		zap.Duration("scan_interval", s.config.ScanInterval))

	// Run a cycle immediately on startup rather than sleeping first.
	if err := s.runCycle(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scanner daemon stopping")
			return ctx.Err()

		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				return err
			}
		}
	}
}

// runCycle executes one engine cycle and updates the heartbeat.
// Only a fatal cycle error (listing failure) propagates.
func (s *Scanner) runCycle(ctx context.Context) error {
	report, err := s.engine.RunCycle(ctx)
	if err != nil {
		s.logger.Error("scan cycle failed, terminating", zap.Error(err))
		return err
	}

	if s.registry != nil {
		if err := s.registry.UpdateHeartbeat(); err != nil {
			s.logger.Warn("failed to update heartbeat", zap.Error(err))
		}
	}

	fields := []zap.Field{
		zap.Int("tracked", report.TrackedFiles),
		zap.Int("removed", len(report.RemovedPaths)),
		zap.Int("newly_lost", len(report.NewlyLostPaths)),
		zap.Int("stuck_active", len(report.StuckActivePaths)),
		zap.Int("signaled", len(report.SignaledApps)),
		zap.Int("failed_trigger_writes", report.FailedTriggerWrites),
		zap.Int("dropped_lost_files", report.DroppedLostFiles),
		zap.Int64("duration_ms", report.DurationMs),
	}

	if len(report.RemovedPaths) > 0 || len(report.NewlyLostPaths) > 0 ||
		len(report.SignaledApps) > 0 || report.FailedTriggerWrites > 0 ||
		report.DroppedLostFiles > 0 {
		s.logger.Info("scan cycle completed", fields...)
	} else {
		s.logger.Debug("scan cycle completed", fields...)
	}

	return nil
}
