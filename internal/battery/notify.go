package battery

// Notifier fires a callback when the level first drops to the threshold
// while discharging. It is edge triggered: one alert per dip, re-armed by
// charging or by climbing back above the threshold.
type Notifier struct {
	Threshold int
	Notify    func(percent int)

	below bool
}

// Observe inspects a resolved status and fires the callback on the falling
// edge. Disconnected and unknown states never alert.
func (n *Notifier) Observe(st Status) {
	if !st.State.Connected() {
		return
	}
	if st.Charging || st.Percent > n.Threshold {
		n.below = false
		return
	}
	if !n.below {
		n.below = true
		if n.Notify != nil {
			n.Notify(st.Percent)
		}
	}
}
