package razer

// VendorID is Razer's USB vendor id.
const VendorID = 0x1532

// DeviceType is the broad product family the protocol needs to branch on.
type DeviceType int

const (
	TypeUnknown DeviceType = iota
	TypeMouse
	TypeKeyboard
	TypeDongle
	TypeHeadset
	TypeAccessory
)

func (t DeviceType) String() string {
	switch t {
	case TypeMouse:
		return "mouse"
	case TypeKeyboard:
		return "keyboard"
	case TypeDongle:
		return "dongle"
	case TypeHeadset:
		return "headset"
	case TypeAccessory:
		return "accessory"
	default:
		return "unknown"
	}
}

// Capability describes a product id. TransactionBase carries the addressing
// bits the firmware expects in the high bits of every transaction id;
// Battery marks products that answer ClassPower queries.
type Capability struct {
	Name            string
	Type            DeviceType
	TransactionBase byte
	Battery         bool
}

// catalog maps product ids to their capability record. Wireless mice and
// their receivers are battery-capable; wired-only models are listed so the
// scanner can name them but never polls them.
var catalog = map[uint16]Capability{
	0x0025: {"Razer Mamba 2012 (Wireless)", TypeMouse, 0x3F, true},
	0x0032: {"Razer Ouroboros", TypeMouse, 0x3F, true},
	0x003F: {"Razer Naga Epic Chroma (Wireless)", TypeMouse, 0x3F, true},
	0x0043: {"Razer DeathAdder Chroma", TypeMouse, 0x3F, false},
	0x0045: {"Razer Mamba Chroma (Wireless)", TypeMouse, 0x3F, true},
	0x0046: {"Razer Mamba Tournament Edition", TypeMouse, 0x3F, false},
	0x0048: {"Razer Orochi (Wired)", TypeMouse, 0x3F, false},
	0x005A: {"Razer Lancehead (Wireless)", TypeMouse, 0x3F, true},
	0x005C: {"Razer DeathAdder Elite", TypeMouse, 0x3F, false},
	0x0062: {"Razer Atheris (Receiver)", TypeMouse, 0x1F, true},
	0x0064: {"Razer Basilisk", TypeMouse, 0x3F, false},
	0x0067: {"Razer Naga Trinity", TypeMouse, 0x1F, false},
	0x006F: {"Razer Lancehead Wireless (Receiver)", TypeMouse, 0x1F, true},
	0x0070: {"Razer Lancehead Wireless (Wired)", TypeMouse, 0x1F, true},
	0x0072: {"Razer Mamba Wireless (Receiver)", TypeMouse, 0x3F, true},
	0x0073: {"Razer Mamba Wireless (Wired)", TypeMouse, 0x3F, true},
	0x0077: {"Razer Pro Click (Receiver)", TypeMouse, 0x1F, true},
	0x0078: {"Razer Viper", TypeMouse, 0x3F, false},
	0x007A: {"Razer Viper Ultimate (Wired)", TypeMouse, 0x3F, true},
	0x007B: {"Razer Viper Ultimate (Wireless)", TypeMouse, 0x3F, true},
	0x007C: {"Razer DeathAdder V2 Pro (Wired)", TypeMouse, 0x3F, true},
	0x007D: {"Razer DeathAdder V2 Pro (Wireless)", TypeMouse, 0x3F, true},
	0x0080: {"Razer Pro Click (Wired)", TypeMouse, 0x1F, true},
	0x0083: {"Razer Basilisk X HyperSpeed", TypeMouse, 0xFF, true},
	0x0084: {"Razer DeathAdder V2", TypeMouse, 0x3F, false},
	0x0085: {"Razer Basilisk V2", TypeMouse, 0x1F, false},
	0x0086: {"Razer Basilisk Ultimate", TypeMouse, 0x1F, true},
	0x0088: {"Razer Basilisk Ultimate (Receiver)", TypeMouse, 0x1F, true},
	0x008A: {"Razer Viper Mini", TypeMouse, 0x3F, false},
	0x008F: {"Razer Naga Pro (Wired)", TypeMouse, 0x1F, true},
	0x0090: {"Razer Naga Pro (Wireless)", TypeMouse, 0x1F, true},
	0x0091: {"Razer Viper 8KHz", TypeMouse, 0x1F, false},
	0x0094: {"Razer Orochi V2 (Receiver)", TypeMouse, 0x1F, true},
	0x0095: {"Razer Orochi V2 (Bluetooth)", TypeMouse, 0x1F, true},
	0x0096: {"Razer Naga X", TypeMouse, 0x1F, false},
	0x0099: {"Razer Basilisk V3", TypeMouse, 0x1F, false},
	0x009A: {"Razer Pro Click Mini (Receiver)", TypeMouse, 0x1F, true},
	0x009C: {"Razer DeathAdder V2 X HyperSpeed", TypeMouse, 0x1F, true},
	0x00A1: {"Razer DeathAdder V2 Lite", TypeMouse, 0x1F, false},
	0x00A3: {"Razer Cobra", TypeMouse, 0x1F, false},
	0x00A5: {"Razer Viper V2 Pro (Wired)", TypeMouse, 0x1F, true},
	0x00A6: {"Razer Viper V2 Pro (Wireless)", TypeMouse, 0x1F, true},
	0x00A7: {"Razer Naga V2 Pro (Wired)", TypeMouse, 0x1F, true},
	0x00A8: {"Razer Naga V2 Pro (Wireless)", TypeMouse, 0x1F, true},
	0x00AA: {"Razer Basilisk V3 Pro (Wired)", TypeMouse, 0x1F, true},
	0x00AB: {"Razer Basilisk V3 Pro (Wireless)", TypeMouse, 0x1F, true},
	0x00AF: {"Razer Cobra Pro (Wired)", TypeMouse, 0x1F, true},
	0x00B0: {"Razer Cobra Pro (Wireless)", TypeMouse, 0x1F, true},
	0x00B3: {"Razer HyperPolling Wireless Dongle", TypeDongle, 0x1F, true},
	0x00B6: {"Razer DeathAdder V3 Pro (Wired)", TypeMouse, 0x1F, true},
	0x00B7: {"Razer DeathAdder V3 Pro (Wireless)", TypeMouse, 0x1F, true},
	0x00B8: {"Razer Viper V3 HyperSpeed", TypeMouse, 0x1F, true},
	0x00B9: {"Razer Basilisk V3 X HyperSpeed", TypeMouse, 0x1F, true},
	0x00C0: {"Razer Viper V3 Pro (Wired)", TypeMouse, 0x1F, true},
	0x00C1: {"Razer Viper V3 Pro (Wireless)", TypeMouse, 0x1F, true},
	0x00CC: {"Razer Basilisk V3 Pro 35K (Wired)", TypeMouse, 0x1F, true},
	0x00CD: {"Razer Basilisk V3 Pro 35K (Wireless)", TypeMouse, 0x1F, true},
	0x025C: {"Razer BlackWidow V3 Pro 2.4 GHz Wireless", TypeKeyboard, 0x9F, true},
	0x0271: {"Razer BlackWidow V3 Mini HyperSpeed (Wireless)", TypeKeyboard, 0x9F, true},
	0x0290: {"Razer DeathStalker V2 Pro (Wireless)", TypeKeyboard, 0x9F, true},
	0x0296: {"Razer DeathStalker V2 Pro TKL (Wireless)", TypeKeyboard, 0x9F, true},
	0x02BA: {"Razer BlackWidow V4 Mini HyperSpeed (Wireless)", TypeKeyboard, 0x9F, true},
}

// Lookup returns the capability record for a product id.
func Lookup(pid uint16) (Capability, bool) {
	c, ok := catalog[pid]
	return c, ok
}

// BatteryCapable reports whether the product answers battery queries.
func BatteryCapable(pid uint16) bool {
	c, ok := catalog[pid]
	return ok && c.Battery
}
