package razer

// Command classes.
const (
	ClassPower = 0x07 // battery and charging queries
	ClassLED   = 0x0F // lighting effects
)

// ClassPower command ids.
const (
	CmdBatteryQuery = 0x80 // response payload: [0] charging flag, [1] raw level 0-255
)

// BatteryRequestPayload is the argument block of a battery query. The
// device ignores it but expects DataSize to cover both bytes.
func BatteryRequestPayload() []byte { return []byte{0x00, 0x00} }

// BatteryReading is the decoded payload of a CmdBatteryQuery response.
type BatteryReading struct {
	Charging bool
	Raw      byte // 0-255, scaled to percent by the resolver
}

// ParseBatteryPayload extracts the charging flag and raw level from a
// battery query response payload.
func ParseBatteryPayload(payload []byte) (BatteryReading, bool) {
	if len(payload) < 2 {
		return BatteryReading{}, false
	}
	return BatteryReading{
		Charging: payload[0] != 0,
		Raw:      payload[1],
	}, true
}
