package model

import (
	"bytes"
	"fmt"
)

// Flag is a boolean carried in the legacy AppDNA wire format, where boolean
// properties are the strings "true" and "false". In memory it is a plain
// bool; the string convention exists only at the serialization boundary.
// Optional properties use *Flag so an absent key stays absent on re-save.
type Flag bool

var (
	flagTrueJSON  = []byte(`"true"`)
	flagFalseJSON = []byte(`"false"`)
	jsonTrue      = []byte(`true`)
	jsonFalse     = []byte(`false`)
)

// NewFlag returns a pointer to a Flag with the given value, for optional fields.
func NewFlag(v bool) *Flag {
	f := Flag(v)
	return &f
}

// Bool returns the flag as a plain bool.
func (f Flag) Bool() bool {
	return bool(f)
}

// IsTrue reports whether the flag is present and set. A nil receiver
// (absent property) is false.
func (f *Flag) IsTrue() bool {
	return f != nil && bool(*f)
}

// IsFalse reports whether the flag is present and explicitly unset,
// as distinct from absent.
func (f *Flag) IsFalse() bool {
	return f != nil && !bool(*f)
}

// MarshalJSON emits the legacy "true"/"false" string form.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return flagTrueJSON, nil
	}
	return flagFalseJSON, nil
}

// UnmarshalJSON accepts both the legacy string form and plain JSON booleans,
// so files written by older tooling and requests from typed clients parse
// the same way.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, flagTrueJSON), bytes.Equal(data, jsonTrue):
		*f = true
		return nil
	case bytes.Equal(data, flagFalseJSON), bytes.Equal(data, jsonFalse):
		*f = false
		return nil
	default:
		return fmt.Errorf("invalid boolean flag %s: want \"true\", \"false\", true, or false", string(data))
	}
}

// String implements fmt.Stringer using the wire form.
func (f Flag) String() string {
	if f {
		return "true"
	}
	return "false"
}
