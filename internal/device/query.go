package device

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/forest/razerbatt/internal/razer"
)

// featureReportID is the HID report number Razer firmware answers on.
const featureReportID = 0x00

// QueryStatus classifies the outcome of one logical query.
type QueryStatus int

const (
	QueryOK QueryStatus = iota
	QueryTimeout
	QueryChecksumMismatch
	QueryDeviceAbsent
)

func (q QueryStatus) String() string {
	switch q {
	case QueryOK:
		return "ok"
	case QueryTimeout:
		return "timeout"
	case QueryChecksumMismatch:
		return "checksum mismatch"
	case QueryDeviceAbsent:
		return "device absent"
	default:
		return "unknown"
	}
}

// QueryResult is the outcome of Query. Report is only valid when Status is
// QueryOK; LastFailure records the kind of the final per-interface failure
// when the whole query came back QueryDeviceAbsent.
type QueryResult struct {
	Status      QueryStatus
	Report      razer.Report
	LastFailure QueryStatus
}

// BatteryResult is the outcome of ReadBattery.
type BatteryResult struct {
	Status      QueryStatus
	Reading     razer.BatteryReading
	LastFailure QueryStatus
}

// errStaleResponse marks a frame that decoded fine but answers a different
// transaction than the one in flight.
var errStaleResponse = errors.New("device: stale transaction id in response")

// Query sends one command and walks the interfaces until one of them
// answers. Per interface it makes up to AttemptsPerInterface write-then-read
// attempts, each under its own deadline and with a fresh transaction id. A
// checksum mismatch abandons the interface at once; timeouts and transport
// errors cost an exponentially growing pause before the next interface is
// probed. When every interface is exhausted the result is QueryDeviceAbsent.
func (s *Session) Query(ctx context.Context, class, id byte, payload []byte) QueryResult {
	backoff := s.opts.BackoffBase
	last := QueryTimeout
	for _, iface := range s.sel.ordered() {
		if ctx.Err() != nil {
			return QueryResult{Status: QueryDeviceAbsent, LastFailure: last}
		}
		rep, err := s.tryInterface(ctx, iface, class, id, payload)
		if err == nil {
			s.sel.recordOutcome(iface, true, s.opts.Clock.Now())
			return QueryResult{Status: QueryOK, Report: rep}
		}
		s.sel.recordOutcome(iface, false, s.opts.Clock.Now())
		s.log.Debug("interface query failed",
			slog.Int("interface", iface.Info.InterfaceNbr),
			slog.String("error", err.Error()))

		if isFramingError(err) {
			// Corrupt or truncated frames mean the wrong interface or
			// protocol, not a slow device. Move on without waiting.
			last = QueryChecksumMismatch
			continue
		}
		last = QueryTimeout
		if err := s.sleep(ctx, backoff); err != nil {
			return QueryResult{Status: QueryDeviceAbsent, LastFailure: last}
		}
		backoff *= 2
		if backoff > s.opts.BackoffMax {
			backoff = s.opts.BackoffMax
		}
	}
	return QueryResult{Status: QueryDeviceAbsent, LastFailure: last}
}

// ReadBattery issues the battery query and decodes its payload.
func (s *Session) ReadBattery(ctx context.Context) BatteryResult {
	res := s.Query(ctx, razer.ClassPower, razer.CmdBatteryQuery, razer.BatteryRequestPayload())
	if res.Status != QueryOK {
		return BatteryResult{Status: res.Status, LastFailure: res.LastFailure}
	}
	reading, ok := razer.ParseBatteryPayload(res.Report.Payload)
	if !ok {
		return BatteryResult{Status: QueryTimeout}
	}
	return BatteryResult{Status: QueryOK, Reading: reading}
}

// tryInterface runs the per-interface attempt loop. It returns the decoded
// report on success, razer.ErrChecksumMismatch to abandon the interface
// immediately, or the last attempt's error once attempts are spent.
func (s *Session) tryInterface(ctx context.Context, iface *Iface, class, id byte, payload []byte) (razer.Report, error) {
	var lastErr error
	for attempt := 0; attempt < s.opts.AttemptsPerInterface; attempt++ {
		if ctx.Err() != nil {
			return razer.Report{}, ctx.Err()
		}
		rep, err := s.attempt(ctx, iface, class, id, payload)
		if err == nil {
			return rep, nil
		}
		lastErr = err
		if isFramingError(err) || errors.Is(err, razer.ErrNotSupported) {
			return razer.Report{}, err
		}
	}
	return razer.Report{}, lastErr
}

// attempt is one write-then-read exchange with a fresh transaction id. A
// decodable response carrying a stale transaction id earns exactly one
// extra read before the attempt is declared failed.
func (s *Session) attempt(ctx context.Context, iface *Iface, class, id byte, payload []byte) (razer.Report, error) {
	if err := s.ensureOpen(iface); err != nil {
		return razer.Report{}, err
	}
	txn := s.txn.next()
	frame, err := razer.EncodeRequest(class, id, txn, payload)
	if err != nil {
		return razer.Report{}, err
	}
	if err := iface.dev.WriteFeature(featureReportID, frame); err != nil {
		s.dropHandle(iface)
		return razer.Report{}, err
	}
	if err := s.sleep(ctx, s.opts.WriteSettle); err != nil {
		return razer.Report{}, err
	}

	rep, err := s.readResponse(ctx, iface, txn)
	if errors.Is(err, errStaleResponse) {
		rep, err = s.readResponse(ctx, iface, txn)
	}
	if err != nil {
		if !isFramingError(err) && !errors.Is(err, errStaleResponse) &&
			!errors.Is(err, razer.ErrDeviceBusy) && !errors.Is(err, razer.ErrCommandRejected) &&
			!errors.Is(err, razer.ErrNotSupported) {
			s.dropHandle(iface)
		}
		return razer.Report{}, err
	}
	return rep, nil
}

// isFramingError reports whether the response itself was unusable. Both
// kinds point at the wrong interface or command framing rather than a
// transient bus error, so they share the no-retry policy.
func isFramingError(err error) bool {
	return errors.Is(err, razer.ErrChecksumMismatch) || errors.Is(err, razer.ErrMalformedLength)
}

func (s *Session) readResponse(ctx context.Context, iface *Iface, txn byte) (razer.Report, error) {
	raw, err := s.readFeature(ctx, iface)
	if err != nil {
		return razer.Report{}, err
	}
	rep, err := razer.DecodeResponse(raw)
	if err != nil {
		return razer.Report{}, err
	}
	if rep.TransactionID != txn {
		return razer.Report{}, errStaleResponse
	}
	return rep, nil
}

// errReadTimeout is distinct from ctx errors so callers can tell a slow
// device from a shutdown.
var errReadTimeout = errors.New("device: feature read timed out")

// readFeature fences the blocking HID read behind a goroutine so a wedged
// kernel call cannot stall the poll loop past the attempt deadline. A read
// that eventually returns after the deadline is drained and discarded by
// the buffered channel.
func (s *Session) readFeature(ctx context.Context, iface *Iface) ([]byte, error) {
	type readResult struct {
		data []byte
		err  error
	}
	dev := iface.dev
	ch := make(chan readResult, 1)
	go func() {
		data, err := dev.ReadFeature(featureReportID)
		ch <- readResult{data, err}
	}()

	timer := s.opts.Clock.NewTimer(s.opts.AttemptTimeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.data, r.err
	case <-timer.C:
		return nil, errReadTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := s.opts.Clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
