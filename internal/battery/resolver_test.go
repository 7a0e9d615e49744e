package battery

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentScaling(t *testing.T) {
	assert.Equal(t, 0, Percent(0))
	assert.Equal(t, 100, Percent(255))
	assert.Equal(t, 50, Percent(128))
	assert.Equal(t, 10, Percent(26))
	assert.Equal(t, 11, Percent(28))
	assert.Equal(t, 30, Percent(77))
	assert.Equal(t, 31, Percent(79))
	assert.Equal(t, 60, Percent(153))
	assert.Equal(t, 61, Percent(156))
}

func TestPercentAlwaysInRange(t *testing.T) {
	for raw := 0; raw <= 255; raw++ {
		p := Percent(byte(raw))
		require.GreaterOrEqual(t, p, 0, "raw %d", raw)
		require.LessOrEqual(t, p, 100, "raw %d", raw)
	}
}

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		charging bool
		percent  int
		want     State
	}{
		{false, 0, StateCritical},
		{false, 10, StateCritical},
		{false, 11, StateLow},
		{false, 30, StateLow},
		{false, 31, StateMedium},
		{false, 60, StateMedium},
		{false, 61, StateFull},
		{false, 100, StateFull},
		{true, 0, StateChargingLow},
		{true, 20, StateChargingLow},
		{true, 30, StateChargingLow},
		{true, 31, StateChargingHigh},
		{true, 100, StateChargingHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.charging, tc.percent),
			"charging=%v percent=%d", tc.charging, tc.percent)
	}
}

func TestResolverKeepsStateAcrossSingleFailure(t *testing.T) {
	clock := quartz.NewMock(t)
	r := NewResolver(10*time.Minute, clock)

	st := r.Observe(Sample{OK: true, Raw: 128})
	assert.Equal(t, StateMedium, st.State)
	assert.Equal(t, 50, st.Percent)

	clock.Advance(5 * time.Minute)
	st = r.Observe(Sample{OK: false})
	assert.Equal(t, StateMedium, st.State, "one missed poll must not flip the state")
	assert.Equal(t, 50, st.Percent)
}

func TestResolverGoesDisconnectedAfterStaleness(t *testing.T) {
	clock := quartz.NewMock(t)
	r := NewResolver(10*time.Minute, clock)

	r.Observe(Sample{OK: true, Raw: 200})
	for i := 0; i < 3; i++ {
		clock.Advance(4 * time.Minute)
		r.Observe(Sample{OK: false})
	}
	assert.Equal(t, StateDisconnected, r.Status().State)
	assert.False(t, r.Status().Charging)
}

func TestResolverDisconnectsWithoutEverAnswering(t *testing.T) {
	clock := quartz.NewMock(t)
	r := NewResolver(10*time.Minute, clock)

	st := r.Observe(Sample{OK: false})
	assert.Equal(t, StateUnknown, st.State)

	clock.Advance(11 * time.Minute)
	st = r.Observe(Sample{OK: false})
	assert.Equal(t, StateDisconnected, st.State)
}

func TestResolverRecoversFromDisconnected(t *testing.T) {
	clock := quartz.NewMock(t)
	r := NewResolver(time.Minute, clock)

	clock.Advance(2 * time.Minute)
	require.Equal(t, StateDisconnected, r.Observe(Sample{OK: false}).State)

	st := r.Observe(Sample{OK: true, Charging: true, Raw: 51})
	assert.Equal(t, StateChargingLow, st.State)
	assert.Equal(t, 20, st.Percent)
	assert.True(t, st.Charging)
}

func TestNotifierFiresOnceOnFallingEdge(t *testing.T) {
	var fired []int
	n := &Notifier{Threshold: 20, Notify: func(p int) { fired = append(fired, p) }}

	n.Observe(Status{State: StateMedium, Percent: 35})
	n.Observe(Status{State: StateLow, Percent: 20})
	n.Observe(Status{State: StateLow, Percent: 18})
	assert.Equal(t, []int{20}, fired, "one alert per dip")

	// Charging re-arms the notifier.
	n.Observe(Status{State: StateChargingLow, Percent: 18, Charging: true})
	n.Observe(Status{State: StateLow, Percent: 15})
	assert.Equal(t, []int{20, 15}, fired)
}

func TestNotifierIgnoresDisconnected(t *testing.T) {
	fired := 0
	n := &Notifier{Threshold: 20, Notify: func(int) { fired++ }}
	n.Observe(Status{State: StateDisconnected, Percent: 5})
	n.Observe(Status{State: StateUnknown})
	assert.Zero(t, fired)
}
