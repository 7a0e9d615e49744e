// Package battery turns raw query outcomes into a debounced battery state.
// A single failed poll never changes the reported state; only a long silent
// stretch does.
package battery

import (
	"math"
	"time"

	"github.com/coder/quartz"
)

// DefaultStaleness is how long the last good reading is trusted before the
// device is reported disconnected.
const DefaultStaleness = 10 * time.Minute

// State is the coarse battery condition shown to consumers.
type State int

const (
	StateUnknown State = iota
	StateDisconnected
	StateCritical     // 0-10%
	StateLow          // 11-30%
	StateMedium       // 31-60%
	StateFull         // 61-100%
	StateChargingLow  // charging at <=30%
	StateChargingHigh // charging above 30%
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateCritical:
		return "critical"
	case StateLow:
		return "low"
	case StateMedium:
		return "medium"
	case StateFull:
		return "full"
	case StateChargingLow:
		return "charging-low"
	case StateChargingHigh:
		return "charging-high"
	default:
		return "unknown"
	}
}

// Connected reports whether the state reflects a reachable device.
func (s State) Connected() bool {
	return s != StateUnknown && s != StateDisconnected
}

// Percent scales a raw firmware level to 0-100.
func Percent(raw byte) int {
	return int(math.Round(float64(raw) / 255 * 100))
}

// Classify maps a percentage and charging flag to a state.
func Classify(charging bool, percent int) State {
	if charging {
		if percent <= 30 {
			return StateChargingLow
		}
		return StateChargingHigh
	}
	switch {
	case percent <= 10:
		return StateCritical
	case percent <= 30:
		return StateLow
	case percent <= 60:
		return StateMedium
	default:
		return StateFull
	}
}

// Sample is one poll outcome fed to the resolver.
type Sample struct {
	OK       bool
	Charging bool
	Raw      byte
}

// Status is the resolver's view after a sample.
type Status struct {
	State       State
	Percent     int
	Charging    bool
	LastSuccess time.Time
}

// Resolver holds the debounced state. Not safe for concurrent use; the
// poll loop is its only caller.
type Resolver struct {
	clock     quartz.Clock
	staleness time.Duration

	state       State
	percent     int
	charging    bool
	lastSuccess time.Time
}

// NewResolver builds a resolver that reports StateUnknown until the first
// good reading. The staleness window starts counting immediately, so a
// device that never answers still becomes disconnected.
func NewResolver(staleness time.Duration, clock quartz.Clock) *Resolver {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Resolver{
		clock:       clock,
		staleness:   staleness,
		state:       StateUnknown,
		lastSuccess: clock.Now(),
	}
}

// Observe folds one sample into the state and returns the updated status.
func (r *Resolver) Observe(s Sample) Status {
	now := r.clock.Now()
	if s.OK {
		r.percent = Percent(s.Raw)
		r.charging = s.Charging
		r.state = Classify(s.Charging, r.percent)
		r.lastSuccess = now
	} else if now.Sub(r.lastSuccess) > r.staleness {
		r.state = StateDisconnected
		r.charging = false
	}
	return r.status()
}

// Status returns the current view without folding in a sample.
func (r *Resolver) Status() Status { return r.status() }

func (r *Resolver) status() Status {
	return Status{
		State:       r.state,
		Percent:     r.percent,
		Charging:    r.charging,
		LastSuccess: r.lastSuccess,
	}
}
