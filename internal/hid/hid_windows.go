//go:build windows

package hid

import (
	"fmt"

	hidapi "github.com/sstallion/go-hid"
)

// Windows backend built on hidapi. Feature report buffers must carry the
// report id in byte 0; hidapi reports the transferred length including it.

type winManager struct{}

func newManager() (Manager, error) {
	if err := hidapi.Init(); err != nil {
		return nil, fmt.Errorf("hidapi init: %w", err)
	}
	return &winManager{}, nil
}

func (m *winManager) List() ([]Info, error) {
	var devices []Info
	err := hidapi.Enumerate(0, 0, func(info *hidapi.DeviceInfo) error {
		devices = append(devices, Info{
			Path:         info.Path,
			VendorID:     info.VendorID,
			ProductID:    info.ProductID,
			Product:      info.ProductStr,
			Manufacturer: info.MfrStr,
			SerialNumber: info.SerialNbr,
			InterfaceNbr: info.InterfaceNbr,
			UsagePage:    info.UsagePage,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hid enumerate: %w", err)
	}
	return devices, nil
}

func (m *winManager) Open(info Info) (Device, error) {
	d, err := hidapi.OpenPath(info.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", info.Path, err)
	}
	return &winDevice{d: d}, nil
}

type winDevice struct{ d *hidapi.Device }

func (d *winDevice) WriteFeature(reportID byte, data []byte) error {
	buf := make([]byte, 1+len(data))
	buf[0] = reportID
	copy(buf[1:], data)
	if _, err := d.d.SendFeatureReport(buf); err != nil {
		return fmt.Errorf("send feature report: %w", err)
	}
	return nil
}

func (d *winDevice) ReadFeature(reportID byte) ([]byte, error) {
	// Razer reports are 90 bytes + report id prefix.
	buf := make([]byte, 91)
	buf[0] = reportID
	n, err := d.d.GetFeatureReport(buf)
	if err != nil {
		return nil, fmt.Errorf("get feature report: %w", err)
	}
	if n < 1 {
		return nil, nil
	}
	// Strip the report id so all backends return bare report bytes.
	return buf[1:n], nil
}

func (d *winDevice) Close() error { return d.d.Close() }
