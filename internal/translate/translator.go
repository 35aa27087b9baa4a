package translate

import (
	"context"
	"log/slog"

	"github.com/khawasu/cloud-bridge/internal/alice"
	"github.com/khawasu/cloud-bridge/internal/khawasu"
)

// Device metadata defaults used when the mesh reports nothing better.
const (
	defaultManufacturer = "Khawasu chan"
	defaultModel        = "0"
	defaultHWVersion    = "1.0"
	defaultSWVersion    = "1.0"
	defaultRoom         = "Unknown room"
)

// classInfo maps a device class onto its platform type and description.
type classInfo struct {
	Type        string
	Description string
}

var classCatalog = map[khawasu.DeviceClass]classInfo{
	khawasu.ClassButton:            {alice.TypeOther, "Button"},
	khawasu.ClassRelay:             {alice.TypeSwitch, "Relay"},
	khawasu.ClassTemperatureSensor: {alice.TypeSensor, "Temperature sensor"},
	khawasu.ClassTempHumSensor:     {alice.TypeSensor, "Temperature and humidity sensor"},
	khawasu.ClassController:        {alice.TypeOther, "Controller"},
	khawasu.ClassPCAdapter:         {alice.TypeOther, "PC adapter"},
	khawasu.ClassLuaInterpreter:    {alice.TypeOther, "Lua interpreter"},
	khawasu.ClassLed1Dim:           {alice.TypeLight, "Dimmable light"},
}

// Recorder receives successfully queried state samples. Implementations
// must not block.
type Recorder interface {
	RecordStateSample(deviceID, instance string, value float64)
}

// Translator converts between mesh devices and platform payloads.
type Translator struct {
	driver   khawasu.Driver
	recorder Recorder
	logger   *slog.Logger
}

// New builds a Translator. recorder may be nil.
func New(driver khawasu.Driver, recorder Recorder, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{driver: driver, recorder: recorder, logger: logger}
}

// Translate builds the discovery descriptor for one mesh device.
// Actions without a platform mapping are left out.
func Translate(raw khawasu.RawDevice) alice.Device {
	info, ok := classCatalog[raw.Class]
	if !ok {
		info = classInfo{alice.TypeOther, "Unknown device"}
	}

	room := raw.Group
	if room == "" {
		room = defaultRoom
	}

	dev := alice.Device{
		ID:           raw.Address,
		Name:         raw.Name,
		Description:  info.Description,
		Room:         room,
		Type:         info.Type,
		Capabilities: []alice.Capability{},
		Properties:   []alice.Capability{},
		DeviceInfo: alice.DeviceInfo{
			Manufacturer: defaultManufacturer,
			Model:        defaultModel,
			HWVersion:    defaultHWVersion,
			SWVersion:    defaultSWVersion,
		},
	}

	for _, action := range raw.Actions {
		entry := Lookup(action.Type)
		switch entry.Kind {
		case KindCapability:
			dev.Capabilities = append(dev.Capabilities, Descriptor(entry))
		case KindProperty:
			dev.Properties = append(dev.Properties, Descriptor(entry))
		}
	}
	return dev
}

// Query reads the current state of every mapped action on a device.
// Actions that fail to read are left out of the result so one dead
// sensor cannot poison the rest of the device.
func (t *Translator) Query(ctx context.Context, raw khawasu.RawDevice) alice.DeviceState {
	state := alice.DeviceState{
		ID:           raw.Address,
		Capabilities: []alice.CapabilityState{},
		Properties:   []alice.CapabilityState{},
	}

	for _, action := range raw.Actions {
		entry := Lookup(action.Type)
		if entry.Kind == KindIgnored || !entry.Retrievable {
			continue
		}

		data, err := t.driver.ActionGet(ctx, raw.Address, action.Name)
		if err != nil {
			t.logger.Warn("action read failed",
				"device", raw.Address, "action", action.Name, "error", err)
			continue
		}
		value, err := khawasu.DecodeValue(action.Type, data)
		if err != nil {
			t.logger.Warn("action payload decode failed",
				"device", raw.Address, "action", action.Name, "error", err)
			continue
		}

		external := ToExternal(action.Type, value)
		cs := alice.CapabilityState{
			Type:  entry.Type,
			State: alice.State{Instance: entry.Instance, Value: external},
		}
		switch entry.Kind {
		case KindCapability:
			state.Capabilities = append(state.Capabilities, cs)
		case KindProperty:
			state.Properties = append(state.Properties, cs)
		}

		if t.recorder != nil {
			if f, ok := external.(float64); ok {
				t.recorder.RecordStateSample(raw.Address, entry.Instance, f)
			}
		}
	}
	return state
}

// Apply dispatches requested capability states to a device. Each state
// is routed to the first device action whose mapping matches both its
// capability type and its instance. Matching on instance as well keeps
// routing deterministic if a device ever exposes two actions of the
// same capability type. States no action accepts are dropped. The
// reported status reflects whether the command reached the mesh.
func (t *Translator) Apply(ctx context.Context, raw khawasu.RawDevice, states []alice.CapabilityState) alice.DeviceActionResult {
	result := alice.DeviceActionResult{
		ID:           raw.Address,
		Capabilities: []alice.CapabilityActionResult{},
	}

	for _, requested := range states {
		action, _, ok := matchAction(raw, requested)
		if !ok {
			t.logger.Warn("no action matches requested state",
				"device", raw.Address,
				"type", requested.Type, "instance", requested.State.Instance)
			continue
		}

		outcome := alice.ActionResult{Status: alice.StatusDone}
		if err := t.execute(ctx, raw.Address, action, requested.State.Value); err != nil {
			t.logger.Warn("action execute failed",
				"device", raw.Address, "action", action.Name, "error", err)
			outcome = alice.ActionResult{
				Status:       alice.StatusError,
				ErrorCode:    alice.ErrorCodeDeviceUnreachable,
				ErrorMessage: err.Error(),
			}
		}

		result.Capabilities = append(result.Capabilities, alice.CapabilityActionResult{
			Type: requested.Type,
			State: alice.ActionResultState{
				Instance:     requested.State.Instance,
				ActionResult: outcome,
			},
		})
	}
	return result
}

func (t *Translator) execute(ctx context.Context, address string, action khawasu.Action, value any) error {
	internal := ToInternal(action.Type, value)
	data, err := khawasu.EncodeValue(action.Type, internal)
	if err != nil {
		return err
	}
	return t.driver.Execute(ctx, address, action.Name, data)
}

// matchAction finds the first device action whose mapping matches the
// requested type and instance.
func matchAction(raw khawasu.RawDevice, requested alice.CapabilityState) (khawasu.Action, Entry, bool) {
	for _, action := range raw.Actions {
		entry := Lookup(action.Type)
		if entry.Kind != KindCapability {
			continue
		}
		if entry.Type == requested.Type && entry.Instance == requested.State.Instance {
			return action, entry, true
		}
	}
	return khawasu.Action{}, Entry{}, false
}
