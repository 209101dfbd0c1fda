package device

import (
	"fmt"
)

// Power values reported and accepted by the fan firmware.
const (
	PowerOff = 0
	PowerOn  = 1
)

// Swing values reported and accepted by the fan firmware.
const (
	SwingDisabled = 0
	SwingEnabled  = 1
)

// DefaultMaxSpeed is the number of discrete speed steps on the reference
// firmware (speed 0 means off).
const DefaultMaxSpeed = 5

// Field identifies one of the three fan state fields. Using a closed
// enumeration (rather than free-form field names) makes it impossible for an
// unknown field to reach engine state.
type Field int

const (
	// FieldPower is the on/off state. Power is derived from speed on the
	// wire (speed 0 means off, speed > 0 means on) and is never sent as an
	// independent command.
	FieldPower Field = iota

	// FieldSpeed is the discrete fan speed step (0 = off, 1..N = steps).
	FieldSpeed

	// FieldSwing is the oscillation state (0 = disabled, 1 = enabled).
	FieldSwing
)

// String returns the wire name of the field as used in command query strings.
func (f Field) String() string {
	switch f {
	case FieldPower:
		return "power"
	case FieldSpeed:
		return "speed"
	case FieldSwing:
		return "swing"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// ParseField converts a wire field name to a Field.
func ParseField(name string) (Field, error) {
	switch name {
	case "power":
		return FieldPower, nil
	case "speed":
		return FieldSpeed, nil
	case "swing":
		return FieldSwing, nil
	default:
		return 0, NewValidationError(fmt.Sprintf("unknown field %q (valid: power, speed, swing)", name))
	}
}

// State is a snapshot of the fan's three state fields. It is a plain value
// type; copies are safe to hand to callers without exposing engine internals.
type State struct {
	Power int `json:"power"` // 0 = off, 1 = on
	Speed int `json:"speed"` // 0 = off, 1..N = discrete speed steps
	Swing int `json:"swing"` // 0 = disabled, 1 = enabled
}

// Get returns the value of the given field.
func (s State) Get(f Field) int {
	switch f {
	case FieldPower:
		return s.Power
	case FieldSpeed:
		return s.Speed
	case FieldSwing:
		return s.Swing
	default:
		return 0
	}
}

// With returns a copy of the state with the given field set. The power field
// is kept consistent with speed: setting speed also updates power.
func (s State) With(f Field, value int) State {
	switch f {
	case FieldPower:
		s.Power = value
	case FieldSpeed:
		s.Speed = value
		if value > 0 {
			s.Power = PowerOn
		} else {
			s.Power = PowerOff
		}
	case FieldSwing:
		s.Swing = value
	}
	return s
}

// String returns a human-readable representation of the state.
func (s State) String() string {
	return fmt.Sprintf("power=%d speed=%d swing=%d", s.Power, s.Speed, s.Swing)
}

// ValidateField checks that value is within the firmware-supported domain for
// the given field. maxSpeed is the highest speed step the device supports.
// Returns a validation DeviceError on out-of-domain input.
func ValidateField(f Field, value int, maxSpeed int) error {
	switch f {
	case FieldPower:
		if value != PowerOff && value != PowerOn {
			return NewValidationError(fmt.Sprintf("power must be 0 or 1, got %d", value))
		}
	case FieldSpeed:
		if value < 0 || value > maxSpeed {
			return NewValidationError(fmt.Sprintf("speed must be 0..%d, got %d", maxSpeed, value))
		}
	case FieldSwing:
		if value != SwingDisabled && value != SwingEnabled {
			return NewValidationError(fmt.Sprintf("swing must be 0 or 1, got %d", value))
		}
	default:
		return NewValidationError(fmt.Sprintf("unknown field %d", int(f)))
	}
	return nil
}
