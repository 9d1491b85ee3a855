package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ValueKind tags the variant held by a SymptomValue
type ValueKind int

const (
	ValueText ValueKind = iota
	ValueBool
	ValueNumber
)

// SymptomValue is a typed intake value: bool, exact decimal number, or raw text
type SymptomValue struct {
	Kind   ValueKind
	Bool   bool
	Number decimal.Decimal
	Text   string
}

// BoolValue wraps b
func BoolValue(b bool) SymptomValue { return SymptomValue{Kind: ValueBool, Bool: b} }

// NumberValue wraps d
func NumberValue(d decimal.Decimal) SymptomValue { return SymptomValue{Kind: ValueNumber, Number: d} }

// TextValue wraps s
func TextValue(s string) SymptomValue { return SymptomValue{Kind: ValueText, Text: s} }

// Float returns the numeric value as float64; ok is false for non-numbers
func (v SymptomValue) Float() (float64, bool) {
	if v.Kind != ValueNumber {
		return 0, false
	}
	return v.Number.InexactFloat64(), true
}

func (v SymptomValue) String() string {
	switch v.Kind {
	case ValueBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValueNumber:
		return v.Number.String()
	default:
		return v.Text
	}
}

// MarshalJSON encodes numbers as JSON numbers, booleans as JSON booleans
func (v SymptomValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueBool:
		return json.Marshal(v.Bool)
	case ValueNumber:
		return []byte(v.Number.String()), nil
	default:
		return json.Marshal(v.Text)
	}
}

// UnmarshalJSON decodes a JSON boolean, number or string
func (v *SymptomValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		*v = BoolValue(true)
	case bytes.Equal(data, []byte("false")):
		*v = BoolValue(false)
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	default:
		d, err := decimal.NewFromString(string(data))
		if err != nil {
			return fmt.Errorf("symptom value %s: %w", data, err)
		}
		*v = NumberValue(d)
	}
	return nil
}

// NormalizedSymptom is one typed intake value
type NormalizedSymptom struct {
	Key   string
	Value SymptomValue
}

// NormalizedSymptoms is an ordered key -> typed value mapping, serialized as a flat JSON object
type NormalizedSymptoms []NormalizedSymptom

// Get returns the value for key
func (s NormalizedSymptoms) Get(key string) (SymptomValue, bool) {
	for _, sym := range s {
		if sym.Key == key {
			return sym.Value, true
		}
	}
	return SymptomValue{}, false
}

// Number returns the numeric value for key; ok is false when absent or not a number
func (s NormalizedSymptoms) Number(key string) (float64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	return v.Float()
}

// MarshalJSON encodes the symptoms as an ordered JSON object
func (s NormalizedSymptoms) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	for _, sym := range s {
		v, err := sym.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if err := w.field(sym.Key, v); err != nil {
			return nil, err
		}
	}
	return w.bytes(), nil
}

// UnmarshalJSON decodes an object keeping document order
func (s *NormalizedSymptoms) UnmarshalJSON(data []byte) error {
	var out NormalizedSymptoms
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		var v SymptomValue
		if err := v.UnmarshalJSON(raw); err != nil {
			return err
		}
		out = append(out, NormalizedSymptom{Key: key, Value: v})
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// SymptomLog is the persisted record of one intake submission
type SymptomLog struct {
	ID          string             `json:"id" db:"id"`
	UserID      string             `json:"user_id" db:"user_id"`
	Symptoms    NormalizedSymptoms `json:"symptoms" db:"symptoms"`
	SubmittedAt time.Time          `json:"submitted_at" db:"submitted_at"`
}
