package device

import (
	"fmt"
	"sort"

	"github.com/forest/razerbatt/internal/hid"
	"github.com/forest/razerbatt/internal/razer"
)

// Candidate is one physical battery-capable product and every HID
// interface node it exposes, in enumeration order.
type Candidate struct {
	PID     uint16
	Serial  string
	Product razer.Capability
	Ifaces  []hid.Info
}

// Scan enumerates the vendor's devices and groups interface nodes per
// product. Nodes of the same product are told apart by serial number where
// the platform reports one, otherwise they collapse into a single
// candidate. product narrows the scan to one PID; zero means any
// battery-capable product.
func Scan(mgr hid.Manager, vendor, product uint16) ([]Candidate, error) {
	infos, err := mgr.List()
	if err != nil {
		return nil, fmt.Errorf("device: enumerate: %w", err)
	}

	type key struct {
		pid    uint16
		serial string
	}
	groups := make(map[key]*Candidate)
	var order []key
	for _, info := range infos {
		if info.VendorID != vendor {
			continue
		}
		if product != 0 && info.ProductID != product {
			continue
		}
		prod, ok := razer.Lookup(info.ProductID)
		if !ok || !prod.Battery {
			continue
		}
		k := key{info.ProductID, info.SerialNumber}
		c, ok := groups[k]
		if !ok {
			c = &Candidate{PID: info.ProductID, Serial: info.SerialNumber, Product: prod}
			groups[k] = c
			order = append(order, k)
		}
		c.Ifaces = append(c.Ifaces, info)
	}

	out := make([]Candidate, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PID != out[j].PID {
			return out[i].PID < out[j].PID
		}
		return out[i].Serial < out[j].Serial
	})
	return out, nil
}
