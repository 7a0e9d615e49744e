package hid

import (
	"errors"
	"sync"
)

// MockDevice is a scriptable in-memory Device for tests. WriteFunc and
// ReadFunc may be swapped between calls; the zero value fails every call.
type MockDevice struct {
	mu        sync.Mutex
	WriteFunc func(reportID byte, data []byte) error
	ReadFunc  func(reportID byte) ([]byte, error)

	writes [][]byte
	closed bool
}

func (m *MockDevice) WriteFeature(reportID byte, data []byte) error {
	m.mu.Lock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.writes = append(m.writes, cp)
	fn := m.WriteFunc
	m.mu.Unlock()
	if fn == nil {
		return errors.New("mock: no write handler")
	}
	return fn(reportID, data)
}

func (m *MockDevice) ReadFeature(reportID byte) ([]byte, error) {
	m.mu.Lock()
	fn := m.ReadFunc
	m.mu.Unlock()
	if fn == nil {
		return nil, errors.New("mock: no read handler")
	}
	return fn(reportID)
}

func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Writes returns a copy of every feature report written so far.
func (m *MockDevice) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// LastWrite returns the most recent written report, or nil.
func (m *MockDevice) LastWrite() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writes) == 0 {
		return nil
	}
	return m.writes[len(m.writes)-1]
}

// Closed reports whether Close was called.
func (m *MockDevice) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockManager hands out pre-registered devices by path.
type MockManager struct {
	Infos   []Info
	Devices map[string]Device // keyed by Info.Path
	OpenErr map[string]error
}

func (m *MockManager) List() ([]Info, error) { return m.Infos, nil }

func (m *MockManager) Open(info Info) (Device, error) {
	if err, ok := m.OpenErr[info.Path]; ok {
		return nil, err
	}
	d, ok := m.Devices[info.Path]
	if !ok {
		return nil, errors.New("mock: unknown path " + info.Path)
	}
	return d, nil
}
