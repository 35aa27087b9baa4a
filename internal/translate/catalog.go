package translate

import (
	"fmt"
	"strings"

	"github.com/khawasu/cloud-bridge/internal/alice"
	"github.com/khawasu/cloud-bridge/internal/khawasu"
)

// Kind classifies how an action surfaces on the platform side.
type Kind int

const (
	// KindIgnored actions never appear in discovery payloads.
	KindIgnored Kind = iota
	// KindCapability actions surface as controllable capabilities.
	KindCapability
	// KindProperty actions surface as read-only properties.
	KindProperty
)

// Entry maps one action type onto its platform descriptor.
type Entry struct {
	Kind        Kind
	Type        string
	Instance    string
	Unit        string
	Range       *alice.Range
	Retrievable bool
}

// rangeScale converts between the platform percent range and the
// device fraction range.
const rangeScale = 100

// catalog is the closed action translation table. Every khawasu action
// type has exactly one entry.
var catalog = map[khawasu.ActionType]Entry{
	khawasu.ActionUnknown:   {Kind: KindIgnored},
	khawasu.ActionImmediate: {Kind: KindIgnored},
	khawasu.ActionLabel:     {Kind: KindIgnored},
	khawasu.ActionRelay: {
		Kind:        KindCapability,
		Type:        alice.CapOnOff,
		Instance:    alice.InstanceOn,
		Retrievable: true,
	},
	khawasu.ActionButton: {
		Kind:        KindCapability,
		Type:        alice.CapOnOff,
		Instance:    alice.InstanceOn,
		Retrievable: true,
	},
	khawasu.ActionRange: {
		Kind:        KindCapability,
		Type:        alice.CapRange,
		Instance:    alice.InstanceBrightness,
		Unit:        alice.UnitPercent,
		Range:       &alice.Range{Min: 0, Max: 100},
		Retrievable: true,
	},
	khawasu.ActionTemperature: {
		Kind:        KindProperty,
		Type:        alice.PropFloat,
		Instance:    alice.InstanceTemperature,
		Unit:        alice.UnitTemperatureCelsius,
		Retrievable: true,
	},
	khawasu.ActionHumidity: {
		Kind:        KindProperty,
		Type:        alice.PropFloat,
		Instance:    alice.InstanceHumidity,
		Unit:        alice.UnitPercent,
		Retrievable: true,
	},
}

func init() {
	for t, e := range catalog {
		if e.Kind == KindIgnored {
			continue
		}
		isProp := strings.Contains(e.Type, "properties")
		if isProp != (e.Kind == KindProperty) {
			panic(fmt.Sprintf("translate: catalog entry for %s has kind/type mismatch", t))
		}
	}
}

// Lookup returns the catalog entry for an action type. Types without
// an explicit entry are ignored.
func Lookup(t khawasu.ActionType) Entry {
	e, ok := catalog[t]
	if !ok {
		return Entry{Kind: KindIgnored}
	}
	return e
}

// ToExternal converts a decoded device value into its platform
// representation. Range fractions become percentages.
func ToExternal(t khawasu.ActionType, v any) any {
	if t == khawasu.ActionRange {
		if f, ok := v.(float64); ok {
			return f * rangeScale
		}
	}
	return v
}

// ToInternal converts a platform value into the device representation
// expected by the byte codec. Percentages become fractions.
func ToInternal(t khawasu.ActionType, v any) any {
	if t == khawasu.ActionRange {
		switch f := v.(type) {
		case float64:
			return f / rangeScale
		case int:
			return float64(f) / rangeScale
		}
	}
	return v
}

// Descriptor builds the discovery descriptor for a catalog entry.
func Descriptor(e Entry) alice.Capability {
	return alice.Capability{
		Type:        e.Type,
		Retrievable: e.Retrievable,
		Reportable:  false,
		Parameters: alice.Parameters{
			Instance: e.Instance,
			Unit:     e.Unit,
			Range:    e.Range,
		},
	}
}
