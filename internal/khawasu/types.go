package khawasu

// ActionType tags an action exposed by a device on the Khawasu network.
// The numeric values are part of the logical driver's wire contract.
type ActionType int

const (
	ActionUnknown ActionType = iota
	ActionRelay
	ActionButton
	ActionRange
	ActionTemperature
	ActionHumidity
	ActionImmediate
	ActionLabel
)

// String returns the lowercase name of the action type.
func (t ActionType) String() string {
	switch t {
	case ActionRelay:
		return "relay"
	case ActionButton:
		return "button"
	case ActionRange:
		return "range"
	case ActionTemperature:
		return "temperature"
	case ActionHumidity:
		return "humidity"
	case ActionImmediate:
		return "immediate"
	case ActionLabel:
		return "label"
	default:
		return "unknown"
	}
}

// DeviceClass identifies what kind of hardware a device is.
// The numeric values are the dev_class field of the device listing.
type DeviceClass int

const (
	ClassUnknown DeviceClass = iota
	ClassButton
	ClassRelay
	ClassTemperatureSensor
	ClassTempHumSensor
	ClassController
	ClassPCAdapter
	ClassLuaInterpreter
	ClassLed1Dim
)

// Action is a named, typed operation exposed by a device.
type Action struct {
	Name string     `json:"name"`
	Type ActionType `json:"type"`
}

// RawDevice is one device as reported by the logical driver.
// The bridge only reads these; the driver owns them.
type RawDevice struct {
	Address string            `json:"address"`
	Name    string            `json:"name"`
	Group   string            `json:"group_name"`
	Class   DeviceClass       `json:"dev_class"`
	Actions []Action          `json:"actions"`
	Attribs map[string]string `json:"attribs,omitempty"`
}

// FindAction returns the named action, if the device exposes it.
func (d *RawDevice) FindAction(name string) (Action, bool) {
	for _, a := range d.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}
