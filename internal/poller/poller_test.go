package poller

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest/razerbatt/internal/battery"
	"github.com/forest/razerbatt/internal/device"
	"github.com/forest/razerbatt/internal/razer"
)

type scriptQuerier struct {
	results []device.BatteryResult
	calls   int
	polled  chan struct{}
}

func (q *scriptQuerier) ReadBattery(context.Context) device.BatteryResult {
	res := q.results[len(q.results)-1]
	if q.calls < len(q.results) {
		res = q.results[q.calls]
	}
	q.calls++
	if q.polled != nil {
		select {
		case q.polled <- struct{}{}:
		default:
		}
	}
	return res
}

func ok(charging bool, raw byte) device.BatteryResult {
	return device.BatteryResult{
		Status:  device.QueryOK,
		Reading: razer.BatteryReading{Charging: charging, Raw: raw},
	}
}

func absent() device.BatteryResult {
	return device.BatteryResult{Status: device.QueryDeviceAbsent}
}

func testConfig(t *testing.T) Config {
	return Config{
		PollInterval: 5 * time.Minute,
		FastInterval: 30 * time.Second,
		FastMax:      5 * time.Minute,
		WakeSettle:   2 * time.Second,
		Staleness:    10 * time.Minute,
		Clock:        quartz.NewMock(t),
	}
}

func TestStepPublishesSnapshot(t *testing.T) {
	q := &scriptQuerier{results: []device.BatteryResult{ok(false, 128)}}
	p := New(q, testConfig(t))

	var seen []Snapshot
	p.Subscribe(func(s Snapshot) { seen = append(seen, s) })

	delay := p.step(context.Background())
	assert.Equal(t, 5*time.Minute, delay)

	snap, found := p.Snapshot()
	require.True(t, found)
	assert.Equal(t, battery.StateMedium, snap.Status.State)
	assert.Equal(t, 50, snap.Status.Percent)
	assert.Equal(t, ModeNormal, snap.Plan.Mode)
	assert.Equal(t, 5*time.Minute, snap.Plan.Interval)
	assert.Equal(t, snap.PolledAt.Add(5*time.Minute), snap.Plan.NextFire)
	require.Len(t, seen, 1)
	assert.Equal(t, snap, seen[0])
}

func TestFailureBackoffDoublesUpToCap(t *testing.T) {
	q := &scriptQuerier{results: []device.BatteryResult{absent()}}
	p := New(q, testConfig(t))

	want := []time.Duration{
		30 * time.Second,
		time.Minute,
		2 * time.Minute,
		4 * time.Minute,
		5 * time.Minute, // capped
		5 * time.Minute,
	}
	for i, w := range want {
		assert.Equal(t, w, p.step(context.Background()), "failure #%d", i+1)
	}

	snap, _ := p.Snapshot()
	assert.Equal(t, ModeFastDisconnected, snap.Plan.Mode)
}

func TestSuccessResetsBackoff(t *testing.T) {
	q := &scriptQuerier{results: []device.BatteryResult{
		absent(), absent(), ok(false, 255), absent(),
	}}
	p := New(q, testConfig(t))
	ctx := context.Background()

	assert.Equal(t, 30*time.Second, p.step(ctx))
	assert.Equal(t, time.Minute, p.step(ctx))
	assert.Equal(t, 5*time.Minute, p.step(ctx), "success returns to the normal interval")
	assert.Equal(t, 30*time.Second, p.step(ctx), "backoff restarts after a success")
}

func TestSingleFailureKeepsLastReading(t *testing.T) {
	q := &scriptQuerier{results: []device.BatteryResult{ok(false, 200), absent()}}
	p := New(q, testConfig(t))
	ctx := context.Background()

	p.step(ctx)
	p.step(ctx)
	snap, _ := p.Snapshot()
	assert.Equal(t, battery.StateFull, snap.Status.State)
	assert.Equal(t, ModeFastDisconnected, snap.Plan.Mode, "retry quickly even while the reading is still trusted")
}

func TestWakeCoalesces(t *testing.T) {
	p := New(&scriptQuerier{results: []device.BatteryResult{absent()}}, testConfig(t))
	p.Wake()
	p.Wake()
	p.Wake()
	assert.Len(t, p.wake, 1)
}

func TestRunPollsImmediatelyAndStops(t *testing.T) {
	q := &scriptQuerier{
		results: []device.BatteryResult{ok(true, 51)},
		polled:  make(chan struct{}, 1),
	}
	p := New(q, Config{PollInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case <-q.polled:
	case <-time.After(5 * time.Second):
		t.Fatal("first poll never happened")
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	snap, found := p.Snapshot()
	require.True(t, found)
	assert.Equal(t, battery.StateChargingLow, snap.Status.State)
}

func TestWakeSchedulesSettledPoll(t *testing.T) {
	q := &scriptQuerier{
		results: []device.BatteryResult{ok(false, 255)},
		polled:  make(chan struct{}, 2),
	}
	p := New(q, Config{PollInterval: time.Hour, WakeSettle: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case <-q.polled:
	case <-time.After(5 * time.Second):
		t.Fatal("first poll never happened")
	}

	p.Wake()
	select {
	case <-q.polled:
	case <-time.After(5 * time.Second):
		t.Fatal("wake did not trigger a poll")
	}
	cancel()
	<-done
}
