// Package poller drives the battery query on an adaptive schedule: slow
// while the device answers, quick retries with growing backoff while it
// does not, and a short settle pause after a system wake before trusting
// the link again.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"

	"github.com/forest/razerbatt/internal/battery"
	"github.com/forest/razerbatt/internal/device"
)

// Scheduling defaults.
const (
	DefaultPollInterval = 5 * time.Minute
	DefaultFastInterval = 30 * time.Second
	DefaultFastMax      = 5 * time.Minute
	DefaultWakeSettle   = 2 * time.Second

	// maxBackoffDoublings bounds the fast-interval growth exponent.
	maxBackoffDoublings = 4
)

// Mode is the scheduler's current regime.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFastDisconnected
	ModePostWakeSettle
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeFastDisconnected:
		return "fast-disconnected"
	case ModePostWakeSettle:
		return "post-wake-settle"
	default:
		return "unknown"
	}
}

// Querier is the device session surface the poller needs.
type Querier interface {
	ReadBattery(ctx context.Context) device.BatteryResult
}

// Config tunes the poller. Zero durations take the defaults above.
type Config struct {
	PollInterval time.Duration
	FastInterval time.Duration
	FastMax      time.Duration
	WakeSettle   time.Duration
	Staleness    time.Duration
	Clock        quartz.Clock
	Logger       *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.FastInterval <= 0 {
		c.FastInterval = DefaultFastInterval
	}
	if c.FastMax <= 0 {
		c.FastMax = DefaultFastMax
	}
	if c.WakeSettle <= 0 {
		c.WakeSettle = DefaultWakeSettle
	}
	if c.Clock == nil {
		c.Clock = quartz.NewReal()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Plan describes the schedule in force after a poll.
type Plan struct {
	Mode     Mode
	Interval time.Duration
	NextFire time.Time
}

// Snapshot is the last published poll result. Readers get it lock-free.
type Snapshot struct {
	Status   battery.Status
	Plan     Plan
	PolledAt time.Time
}

// Poller owns the poll goroutine. Wake, Snapshot and Subscribe are safe to
// call from other goroutines; Run must be called exactly once.
type Poller struct {
	q        Querier
	cfg      Config
	log      *slog.Logger
	resolver *battery.Resolver

	wake chan struct{}
	snap atomic.Pointer[Snapshot]

	mu   sync.Mutex
	subs []func(Snapshot)

	// poll goroutine state
	mode       Mode
	failStreak int
}

func New(q Querier, cfg Config) *Poller {
	cfg = cfg.withDefaults()
	return &Poller{
		q:        q,
		cfg:      cfg,
		log:      cfg.Logger,
		resolver: battery.NewResolver(cfg.Staleness, cfg.Clock),
		wake:     make(chan struct{}, 1),
		mode:     ModeNormal,
	}
}

// Wake nudges the poller after a suspend/resume edge. Multiple wakes before
// the poller reacts coalesce into one.
func (p *Poller) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Snapshot returns the latest published result, if any poll completed yet.
func (p *Poller) Snapshot() (Snapshot, bool) {
	s := p.snap.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}

// Subscribe registers a callback invoked from the poll goroutine after
// every completed poll.
func (p *Poller) Subscribe(fn func(Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) error {
	var delay time.Duration
	for {
		timer := p.cfg.Clock.NewTimer(delay, "poll")
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-p.wake:
			timer.Stop()
			// The radio link needs a moment after resume; polling too
			// early just burns a retry cycle.
			p.mode = ModePostWakeSettle
			delay = p.cfg.WakeSettle
		case <-timer.C:
			delay = p.step(ctx)
		}
	}
}

// step runs one poll and returns the delay until the next one.
func (p *Poller) step(ctx context.Context) time.Duration {
	res := p.q.ReadBattery(ctx)
	sample := battery.Sample{
		OK:       res.Status == device.QueryOK,
		Charging: res.Reading.Charging,
		Raw:      res.Reading.Raw,
	}
	prev := p.resolver.Status().State
	st := p.resolver.Observe(sample)

	if sample.OK {
		p.failStreak = 0
		p.mode = ModeNormal
	} else {
		p.failStreak++
		p.mode = ModeFastDisconnected
	}

	if st.State != prev {
		p.log.Info("battery state changed",
			slog.String("from", prev.String()),
			slog.String("to", st.State.String()),
			slog.Int("percent", st.Percent))
	}

	delay := p.nextDelay()
	now := p.cfg.Clock.Now()
	p.publish(Snapshot{
		Status:   st,
		Plan:     Plan{Mode: p.mode, Interval: delay, NextFire: now.Add(delay)},
		PolledAt: now,
	})
	return delay
}

func (p *Poller) publish(s Snapshot) {
	p.snap.Store(&s)
	p.mu.Lock()
	subs := append(([]func(Snapshot))(nil), p.subs...)
	p.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

// nextDelay implements the schedule: the normal interval after a success,
// otherwise the fast interval doubling per consecutive failure up to the
// cap.
func (p *Poller) nextDelay() time.Duration {
	if p.mode != ModeFastDisconnected {
		return p.cfg.PollInterval
	}
	n := p.failStreak - 1
	if n > maxBackoffDoublings {
		n = maxBackoffDoublings
	}
	d := p.cfg.FastInterval << uint(n)
	if d > p.cfg.FastMax {
		d = p.cfg.FastMax
	}
	return d
}
