package device

import (
	"sort"
	"time"

	"github.com/forest/razerbatt/internal/hid"
)

// selector orders the device's interfaces for each query. The interface
// that answered most recently is tried first, the rest follow declared
// order, and interfaces with too many consecutive failures sink to the
// back. Nothing is ever removed: a deprioritized interface still gets its
// turn once everything ahead of it has failed.
type selector struct {
	ifaces    []*Iface // declared order, stable
	preferred *Iface
	threshold int
}

func newSelector(infos []hid.Info, threshold int) *selector {
	s := &selector{threshold: threshold}
	for _, info := range infos {
		s.ifaces = append(s.ifaces, &Iface{Info: info})
	}
	return s
}

// ordered returns the probe order for one query.
func (s *selector) ordered() []*Iface {
	out := make([]*Iface, len(s.ifaces))
	copy(out, s.ifaces)
	sort.SliceStable(out, func(i, j int) bool {
		if (out[i] == s.preferred) != (out[j] == s.preferred) {
			return out[i] == s.preferred
		}
		di, dj := out[i].failures >= s.threshold, out[j].failures >= s.threshold
		if di != dj {
			return !di
		}
		return false
	})
	return out
}

// recordOutcome updates an interface after a query attempt against it
// concluded. Success makes it the sticky preference and clears its failure
// streak; failure grows the streak and revokes preference once it crosses
// the threshold.
func (s *selector) recordOutcome(iface *Iface, success bool, now time.Time) {
	if success {
		iface.failures = 0
		iface.lastSuccess = now
		s.preferred = iface
		return
	}
	iface.failures++
	if iface.failures >= s.threshold && s.preferred == iface {
		s.preferred = nil
	}
}
