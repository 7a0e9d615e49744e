// Package device owns the per-device query state: which HID interfaces a
// product exposes, which one answered last, the rotating transaction id,
// and the retry policy that turns a flaky multi-interface device into a
// single logical query endpoint.
package device

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/quartz"

	"github.com/forest/razerbatt/internal/hid"
	"github.com/forest/razerbatt/internal/razer"
)

// Defaults for Options fields left zero.
const (
	DefaultAttemptsPerInterface = 2
	DefaultAttemptTimeout       = 600 * time.Millisecond
	DefaultWriteSettle          = 80 * time.Millisecond
	DefaultBackoffBase          = 200 * time.Millisecond
	DefaultBackoffMax           = 2 * time.Second
	DefaultFailureThreshold     = 3
)

// ErrNoInterface is returned by NewSession when not a single interface of
// the device can be opened. It is the only fatal condition: the caller must
// not start polling a session it could never reach.
var ErrNoInterface = errors.New("device: no HID interface could be opened")

// Options tunes the query engine. Zero fields take the defaults above.
type Options struct {
	AttemptsPerInterface int
	AttemptTimeout       time.Duration // per write-then-read attempt
	WriteSettle          time.Duration // pause between write and read
	BackoffBase          time.Duration // first inter-interface delay
	BackoffMax           time.Duration // backoff cap
	FailureThreshold     int           // consecutive failures before deprioritizing
	Clock                quartz.Clock
	Logger               *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.AttemptsPerInterface <= 0 {
		o.AttemptsPerInterface = DefaultAttemptsPerInterface
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = DefaultAttemptTimeout
	}
	if o.WriteSettle == 0 {
		o.WriteSettle = DefaultWriteSettle
	} else if o.WriteSettle < 0 {
		o.WriteSettle = 0
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = DefaultBackoffBase
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = DefaultBackoffMax
	}
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = DefaultFailureThreshold
	}
	if o.Clock == nil {
		o.Clock = quartz.NewReal()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Iface is one HID interface of the device, opened lazily and reopened
// after transport errors.
type Iface struct {
	Info hid.Info

	dev         hid.Device
	lastSuccess time.Time
	failures    int
}

// Session groups a product identity, its interfaces and the transaction
// counter. A session is owned by exactly one goroutine; none of its methods
// are safe for concurrent use.
type Session struct {
	Product razer.Capability
	PID     uint16

	mgr  hid.Manager
	sel  *selector
	txn  txnCounter
	opts Options
	log  *slog.Logger
}

// NewSession builds a session over the given interfaces, in declared order.
// It eagerly opens interfaces until one succeeds; if none does, it fails
// with ErrNoInterface and the device must not be polled.
func NewSession(mgr hid.Manager, pid uint16, ifaces []hid.Info, opts Options) (*Session, error) {
	prod, ok := razer.Lookup(pid)
	if !ok {
		return nil, fmt.Errorf("device: unknown product id 0x%04X", pid)
	}
	if !prod.Battery {
		return nil, fmt.Errorf("device: %s has no battery", prod.Name)
	}
	if len(ifaces) == 0 {
		return nil, ErrNoInterface
	}
	opts = opts.withDefaults()

	s := &Session{
		Product: prod,
		PID:     pid,
		mgr:     mgr,
		sel:     newSelector(ifaces, opts.FailureThreshold),
		txn:     txnCounter{base: prod.TransactionBase},
		opts:    opts,
		log:     opts.Logger.With(slog.String("device", prod.Name)),
	}

	var lastErr error
	for _, iface := range s.sel.ifaces {
		if err := s.ensureOpen(iface); err != nil {
			lastErr = err
			continue
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrNoInterface, lastErr)
}

// Close releases every open interface handle.
func (s *Session) Close() {
	for _, iface := range s.sel.ifaces {
		if iface.dev != nil {
			_ = iface.dev.Close()
			iface.dev = nil
		}
	}
}

func (s *Session) ensureOpen(iface *Iface) error {
	if iface.dev != nil {
		return nil
	}
	dev, err := s.mgr.Open(iface.Info)
	if err != nil {
		return err
	}
	iface.dev = dev
	return nil
}

// dropHandle closes a handle after a transport error so the next attempt
// reopens it; receivers re-enumerate their nodes after link loss.
func (s *Session) dropHandle(iface *Iface) {
	if iface.dev != nil {
		_ = iface.dev.Close()
		iface.dev = nil
	}
}

// txnCounter rotates through the low 5 bits, never emitting zero (the
// firmware's idle sentinel), while preserving the catalog's addressing bits
// in the high bits.
type txnCounter struct {
	base byte
	n    byte
}

func (t *txnCounter) next() byte {
	t.n++
	if t.n > 0x1F {
		t.n = 1
	}
	return t.base&0xE0 | t.n
}
