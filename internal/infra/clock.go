// Package infra implements infrastructure concerns (clock, filesystem, process, registry).
package infra

import (
	"time"

	"github.com/eliteGoblin/capmon/internal/domain"
)

// SystemClock implements domain.Clock using the OS clocks.
type SystemClock struct {
	origin time.Time
}

// NewSystemClock creates a clock whose monotonic origin is "now".
func NewSystemClock() domain.Clock {
	return &SystemClock{origin: time.Now()}
}

// WallNow returns the current wall-clock time.
func (c *SystemClock) WallNow() time.Time {
	return time.Now()
}

// MonoNow returns elapsed time since the clock was created. time.Since
// uses the monotonic reading embedded in the origin, so the result is
// unaffected by system clock adjustments.
func (c *SystemClock) MonoNow() time.Duration {
	return time.Since(c.origin)
}

// Ensure SystemClock implements domain.Clock.
var _ domain.Clock = (*SystemClock)(nil)
