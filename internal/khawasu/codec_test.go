package khawasu

import (
	"errors"
	"math"
	"testing"
)

func TestEncodeValue_Relay(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  byte
	}{
		{"bool true", true, 1},
		{"bool false", false, 0},
		{"float nonzero", 1.0, 1},
		{"float zero", 0.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeValue(ActionRelay, tt.value)
			if err != nil {
				t.Fatalf("EncodeValue() error = %v", err)
			}
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("EncodeValue() = %v, want [%d]", got, tt.want)
			}
		})
	}
}

func TestEncodeValue_RejectsString(t *testing.T) {
	if _, err := EncodeValue(ActionRelay, "on"); err == nil {
		t.Error("EncodeValue(relay, string) should fail")
	}
	if _, err := EncodeValue(ActionRange, "50"); err == nil {
		t.Error("EncodeValue(range, string) should fail")
	}
}

func TestEncodeValue_UnsupportedType(t *testing.T) {
	for _, at := range []ActionType{ActionUnknown, ActionLabel} {
		if _, err := EncodeValue(at, 1.0); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("EncodeValue(%s) error = %v, want ErrUnsupportedType", at, err)
		}
	}
}

func TestFloatRoundTrip(t *testing.T) {
	for _, at := range []ActionType{ActionRange, ActionTemperature, ActionHumidity} {
		for _, v := range []float64{0, 0.5, 1, 21.5, 100} {
			encoded, err := EncodeValue(at, v)
			if err != nil {
				t.Fatalf("EncodeValue(%s, %v) error = %v", at, v, err)
			}
			decoded, err := DecodeValue(at, encoded)
			if err != nil {
				t.Fatalf("DecodeValue(%s) error = %v", at, err)
			}
			got, ok := decoded.(float64)
			if !ok {
				t.Fatalf("DecodeValue(%s) returned %T, want float64", at, decoded)
			}
			// float32 on the wire loses precision
			if math.Abs(got-v) > 1e-5 {
				t.Errorf("round trip %s: got %v, want %v", at, got, v)
			}
		}
	}
}

func TestDecodeValue_BoolPayload(t *testing.T) {
	got, err := DecodeValue(ActionRelay, []byte{1})
	if err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if got != true {
		t.Errorf("DecodeValue([1]) = %v, want true", got)
	}

	got, err = DecodeValue(ActionButton, []byte{0})
	if err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if got != false {
		t.Errorf("DecodeValue([0]) = %v, want false", got)
	}
}

func TestDecodeValue_ShortPayload(t *testing.T) {
	if _, err := DecodeValue(ActionRelay, nil); err == nil {
		t.Error("DecodeValue(relay, nil) should fail")
	}
	if _, err := DecodeValue(ActionRange, []byte{1, 2}); err == nil {
		t.Error("DecodeValue(range, short) should fail")
	}
}

func TestFindAction(t *testing.T) {
	dev := RawDevice{
		Address: "0.1.2",
		Actions: []Action{
			{Name: "power", Type: ActionRelay},
			{Name: "brightness", Type: ActionRange},
		},
	}

	a, ok := dev.FindAction("brightness")
	if !ok || a.Type != ActionRange {
		t.Errorf("FindAction(brightness) = (%v, %v)", a, ok)
	}
	if _, ok := dev.FindAction("missing"); ok {
		t.Error("FindAction(missing) should not find an action")
	}
}
