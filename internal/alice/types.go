package alice

import "encoding/json"

// Device types understood by the assistant platform.
const (
	TypeLight  = "devices.types.light"
	TypeSocket = "devices.types.socket"
	TypeSwitch = "devices.types.switch"
	TypeSensor = "devices.types.sensor"
	TypeOther  = "devices.types.other"
)

// Capability types (controllable attributes).
const (
	CapOnOff  = "devices.capabilities.on_off"
	CapRange  = "devices.capabilities.range"
	CapToggle = "devices.capabilities.toggle"
)

// Property types (read-only attributes).
const (
	PropFloat = "devices.properties.float"
	PropEvent = "devices.properties.event"
)

// Capability and property instances.
const (
	InstanceOn          = "on"
	InstanceBrightness  = "brightness"
	InstanceTemperature = "temperature"
	InstanceHumidity    = "humidity"
)

// Measurement units.
const (
	UnitPercent            = "unit.percent"
	UnitTemperatureCelsius = "unit.temperature.celsius"
)

// Action result statuses and error codes.
const (
	StatusDone  = "DONE"
	StatusError = "ERROR"

	ErrorCodeDeviceUnreachable = "DEVICE_UNREACHABLE"
	ErrorCodeInvalidAction     = "INVALID_ACTION"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)

// Response is the envelope for every payload-carrying endpoint.
type Response struct {
	RequestID string `json:"request_id"`
	Payload   any    `json:"payload"`
}

// Device is one device in the discovery payload.
type Device struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Room         string       `json:"room,omitempty"`
	Type         string       `json:"type"`
	Capabilities []Capability `json:"capabilities"`
	Properties   []Capability `json:"properties"`
	DeviceInfo   DeviceInfo   `json:"device_info"`
}

// Capability describes one capability or property of a device.
// Capabilities and properties share this descriptor shape.
type Capability struct {
	Type        string     `json:"type"`
	Retrievable bool       `json:"retrievable"`
	Reportable  bool       `json:"reportable"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters describe a capability's instance, unit and value range.
type Parameters struct {
	Instance string `json:"instance,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Range    *Range `json:"range,omitempty"`
}

// Range bounds a numeric capability value.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DeviceInfo carries manufacturer metadata for the discovery payload.
type DeviceInfo struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	HWVersion    string `json:"hw_version"`
	SWVersion    string `json:"sw_version"`
}

// DevicesPayload is the discovery response payload.
type DevicesPayload struct {
	UserID  string   `json:"user_id"`
	Devices []Device `json:"devices"`
}

// CapabilityState is one reported capability or property value.
type CapabilityState struct {
	Type  string `json:"type"`
	State State  `json:"state"`
}

// State holds the instance and its current value.
type State struct {
	Instance string `json:"instance"`
	Value    any    `json:"value"`
}

// DeviceState is the per-device block of the query response payload.
type DeviceState struct {
	ID           string            `json:"id"`
	Capabilities []CapabilityState `json:"capabilities"`
	Properties   []CapabilityState `json:"properties"`
}

// QueryPayload is the query response payload.
type QueryPayload struct {
	Devices []DeviceState `json:"devices"`
}

// QueryRequest is the body of a state query.
type QueryRequest struct {
	Devices []struct {
		ID         string          `json:"id"`
		CustomData json.RawMessage `json:"custom_data,omitempty"`
	} `json:"devices"`
}

// ActionRequest is the body of a command request.
type ActionRequest struct {
	Payload struct {
		Devices []ActionDevice `json:"devices"`
	} `json:"payload"`
}

// ActionDevice is one device in a command request.
type ActionDevice struct {
	ID           string            `json:"id"`
	Capabilities []CapabilityState `json:"capabilities"`
}

// ActionResult reports the outcome of one dispatched command.
type ActionResult struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ActionResultState pairs an instance with its command outcome.
type ActionResultState struct {
	Instance     string       `json:"instance"`
	ActionResult ActionResult `json:"action_result"`
}

// CapabilityActionResult is one capability entry of an action response.
type CapabilityActionResult struct {
	Type  string            `json:"type"`
	State ActionResultState `json:"state"`
}

// DeviceActionResult is the per-device block of the action response payload.
type DeviceActionResult struct {
	ID           string                   `json:"id"`
	Capabilities []CapabilityActionResult `json:"capabilities"`
}

// ActionPayload is the action response payload.
type ActionPayload struct {
	Devices []DeviceActionResult `json:"devices"`
}

// TokenResponse is the body returned by the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}
