// Package razer implements the vendor feature-report protocol spoken by
// Razer mice, keyboards and wireless receivers: a fixed 90-byte request and
// response frame with an XOR checksum, addressed by command class and
// command id and correlated by a per-session transaction id.
package razer

import (
	"errors"
	"fmt"
)

const (
	// ReportLen is the size of every request and response frame, without
	// the HID report id prefix.
	ReportLen = 90

	// PayloadLen is the argument area inside a frame, bytes [7..87).
	PayloadLen = 80

	payloadOffset = 7
	crcOffset     = 88
)

// Response status codes, byte 0 of a response frame.
const (
	StatusNew          = 0x00
	StatusBusy         = 0x01
	StatusSuccess      = 0x02
	StatusFailure      = 0x03
	StatusTimeout      = 0x04
	StatusNotSupported = 0x05
)

var (
	ErrMalformedLength  = errors.New("razer: report is not 90 bytes")
	ErrChecksumMismatch = errors.New("razer: report checksum mismatch")
	ErrPayloadTooLong   = errors.New("razer: payload exceeds 80 bytes")

	// Status errors carried by otherwise well-formed responses.
	ErrDeviceBusy      = errors.New("razer: device busy")
	ErrCommandRejected = errors.New("razer: device rejected command")
	ErrNotSupported    = errors.New("razer: command not supported")
)

// Report is a decoded protocol frame.
type Report struct {
	Status           byte
	RemainingPackets byte
	Protocol         byte
	DataSize         byte
	CommandClass     byte
	CommandID        byte
	TransactionID    byte
	Payload          []byte // PayloadLen bytes
}

// Checksum XORs the frame body: everything between the leading status
// bytes and the trailing CRC/reserved pair.
func Checksum(frame []byte) byte {
	var crc byte
	for _, b := range frame[2:crcOffset] {
		crc ^= b
	}
	return crc
}

// EncodeRequest builds a 90-byte request frame. The payload is zero-padded
// to the full argument area; DataSize records its real length.
func EncodeRequest(class, id, txn byte, payload []byte) ([]byte, error) {
	if len(payload) > PayloadLen {
		return nil, ErrPayloadTooLong
	}
	frame := make([]byte, ReportLen)
	frame[0] = StatusNew
	frame[1] = 0x00 // remaining packets
	frame[2] = 0x00 // protocol type
	frame[3] = byte(len(payload))
	frame[4] = class
	frame[5] = id
	frame[6] = txn
	copy(frame[payloadOffset:], payload)
	frame[crcOffset] = Checksum(frame)
	frame[crcOffset+1] = 0x00 // reserved
	return frame, nil
}

// DecodeResponse validates length, checksum and status of a response frame
// and returns its decoded form. A frame with a bad status byte is decoded
// anyway so the caller can inspect it; the error tells the retry policy
// apart: busy and rejected are transient, not-supported is not.
func DecodeResponse(b []byte) (Report, error) {
	if len(b) != ReportLen {
		return Report{}, fmt.Errorf("%w: got %d", ErrMalformedLength, len(b))
	}
	if Checksum(b) != b[crcOffset] {
		return Report{}, ErrChecksumMismatch
	}
	r := Report{
		Status:           b[0],
		RemainingPackets: b[1],
		Protocol:         b[2],
		DataSize:         b[3],
		CommandClass:     b[4],
		CommandID:        b[5],
		TransactionID:    b[6],
		Payload:          append([]byte(nil), b[payloadOffset:crcOffset]...),
	}
	switch r.Status {
	case StatusBusy:
		return r, ErrDeviceBusy
	case StatusFailure, StatusTimeout:
		return r, ErrCommandRejected
	case StatusNotSupported:
		return r, ErrNotSupported
	}
	return r, nil
}
