// Package rawusb opens a Razer receiver over its raw vendor USB interface.
// It is the fallback transport for dongles whose HID interface nodes are
// claimed exclusively by the OS and cannot be opened through hidapi.
package rawusb

import (
	"fmt"
	"sync"

	"github.com/karalabe/usb"

	"github.com/forest/razerbatt/internal/hid"
)

// Device represents a receiver reached through raw interrupt endpoints
// instead of the HID feature-report pipe.
type Device struct {
	dev usb.Device
}

// Open finds and opens the first device matching vid/pid.
func Open(vid, pid uint16) (*Device, error) {
	infos, err := usb.Enumerate(vid, pid)
	if err != nil {
		return nil, fmt.Errorf("usb enumerate: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("device not found (VID:0x%04X PID:0x%04X)", vid, pid)
	}
	dev, err := infos[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	return &Device{dev: dev}, nil
}

func (d *Device) Close() error { return d.dev.Close() }

// WriteFeature sends the report through the OUT endpoint. Raw transfers
// carry no report id, so it is prepended here to mirror the HID pipe.
func (d *Device) WriteFeature(reportID byte, data []byte) error {
	buf := make([]byte, 1+len(data))
	buf[0] = reportID
	copy(buf[1:], data)
	if _, err := d.dev.Write(buf); err != nil {
		return fmt.Errorf("usb write: %w", err)
	}
	return nil
}

// ReadFeature reads the device response from the IN endpoint and strips
// the report id prefix.
func (d *Device) ReadFeature(reportID byte) ([]byte, error) {
	buf := make([]byte, 91)
	n, err := d.dev.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("usb read: %w", err)
	}
	if n < 1 {
		return nil, nil
	}
	return buf[1:n], nil
}

// Manager exposes raw USB enumeration behind the hid.Manager surface so
// the query engine runs over it unchanged when hidapi cannot open any
// interface node.
type Manager struct {
	vendor uint16

	mu     sync.Mutex
	byPath map[string]usb.DeviceInfo
}

func NewManager(vendor uint16) *Manager {
	return &Manager{vendor: vendor, byPath: make(map[string]usb.DeviceInfo)}
}

func (m *Manager) List() ([]hid.Info, error) {
	infos, err := usb.Enumerate(m.vendor, 0)
	if err != nil {
		return nil, fmt.Errorf("usb enumerate: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]hid.Info, 0, len(infos))
	for _, di := range infos {
		m.byPath[di.Path] = di
		out = append(out, hid.Info{
			Path:         di.Path,
			VendorID:     di.VendorID,
			ProductID:    di.ProductID,
			Product:      di.Product,
			Manufacturer: di.Manufacturer,
			SerialNumber: di.Serial,
			InterfaceNbr: di.Interface,
			UsagePage:    di.UsagePage,
		})
	}
	return out, nil
}

func (m *Manager) Open(info hid.Info) (hid.Device, error) {
	m.mu.Lock()
	di, ok := m.byPath[info.Path]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown device path %q", info.Path)
	}
	dev, err := di.Open()
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	return &Device{dev: dev}, nil
}
