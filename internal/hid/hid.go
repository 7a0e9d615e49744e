package hid

// Device represents an opened HID interface capable of feature-report I/O.
// Razer devices are driven exclusively through feature reports; input
// reports on these interfaces carry mouse movement, not protocol traffic.
type Device interface {
	WriteFeature(reportID byte, data []byte) error
	ReadFeature(reportID byte) ([]byte, error)
	Close() error
}

// Info represents one enumerated HID interface. A wireless mouse or its
// receiver typically exposes two or three interfaces; only one of them
// accepts vendor feature reports.
type Info struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Product      string
	Manufacturer string
	SerialNumber string
	InterfaceNbr int // -1 when the backend cannot tell
	UsagePage    uint16
}

// Manager enumerates and opens HID interfaces.
type Manager interface {
	List() ([]Info, error)
	Open(info Info) (Device, error)
}

// NewManager returns the OS-specific HID manager.
func NewManager() (Manager, error) {
	return newManager()
}
