package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// RequiredIntakeKeys must carry a non-blank value before an intake form can be submitted
var RequiredIntakeKeys = []string{
	"bp", "heart_rate", "thirst_level", "frequent_urination", "fatigue",
	"hunger", "blurred_vision", "sleep", "irritability", "isolation",
	"overwhelm", "mood", "anxiety", "cold_sensitivity", "hair_loss",
	"swelling", "pain", "spotting", "burning_urine", "foul_smell",
	"support_level", "cramping", "headache", "dizziness", "breathlessness",
	"pale_skin", "pica_craving", "cold_feet_hands", "bmi",
}

// OptionalIntakeKeys may be left blank
var OptionalIntakeKeys = []string{
	"fasting", "post_meal", "urine_sugar", "fever",
	"family_history_diabetes", "previous_gdm", "pcos", "age", "dry_skin",
}

// IsRequiredIntakeKey reports whether key is one of RequiredIntakeKeys
func IsRequiredIntakeKey(key string) bool {
	return slices.Contains(RequiredIntakeKeys, key)
}

// IntakeField is one raw form value as typed by the patient
type IntakeField struct {
	Key      string `json:"key"`
	RawValue string `json:"raw_value"`
	Required bool   `json:"required"`
}

// Blank reports whether the field carries no usable value
func (f IntakeField) Blank() bool {
	return strings.TrimSpace(f.RawValue) == ""
}

// FieldSet is an intake form: key -> field. Every required key is always
// present (possibly blank); blank optional fields are left out.
// Key order is required keys, then optional keys, then any extra keys sorted.
type FieldSet struct {
	fields map[string]IntakeField
	keys   []string
}

// NewFieldSet builds a FieldSet from raw form values
func NewFieldSet(values map[string]string) FieldSet {
	fs := FieldSet{fields: make(map[string]IntakeField, len(values)+len(RequiredIntakeKeys))}

	for _, key := range RequiredIntakeKeys {
		fs.put(IntakeField{Key: key, RawValue: values[key], Required: true})
	}
	for _, key := range OptionalIntakeKeys {
		if v, ok := values[key]; ok && strings.TrimSpace(v) != "" {
			fs.put(IntakeField{Key: key, RawValue: v})
		}
	}

	var extra []string
	for key, v := range values {
		if _, known := fs.fields[key]; known || slices.Contains(OptionalIntakeKeys, key) {
			continue
		}
		if strings.TrimSpace(v) == "" || strings.TrimSpace(key) == "" {
			continue
		}
		extra = append(extra, key)
	}
	slices.Sort(extra)
	for _, key := range extra {
		fs.put(IntakeField{Key: key, RawValue: values[key]})
	}

	return fs
}

func (fs *FieldSet) put(f IntakeField) {
	fs.fields[f.Key] = f
	fs.keys = append(fs.keys, f.Key)
}

// Fields returns the fields in key order
func (fs FieldSet) Fields() []IntakeField {
	out := make([]IntakeField, 0, len(fs.keys))
	for _, k := range fs.keys {
		out = append(out, fs.fields[k])
	}
	return out
}

// Get returns the field for key
func (fs FieldSet) Get(key string) (IntakeField, bool) {
	f, ok := fs.fields[key]
	return f, ok
}

// Len returns the number of fields
func (fs FieldSet) Len() int {
	return len(fs.keys)
}

// Values returns a copy of the raw values keyed by field key
func (fs FieldSet) Values() map[string]string {
	out := make(map[string]string, len(fs.keys))
	for k, f := range fs.fields {
		out[k] = f.RawValue
	}
	return out
}

// MarshalJSON encodes the raw values as an ordered object
func (fs FieldSet) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	for _, f := range fs.Fields() {
		v, err := json.Marshal(f.RawValue)
		if err != nil {
			return nil, err
		}
		if err := w.field(f.Key, v); err != nil {
			return nil, err
		}
	}
	return w.bytes(), nil
}

// UnmarshalJSON accepts an object of strings. Nulls decode as blank values;
// numbers and booleans keep their literal text.
func (fs *FieldSet) UnmarshalJSON(data []byte) error {
	values := make(map[string]string)
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		trimmed := bytes.TrimSpace(raw)
		switch {
		case bytes.Equal(trimmed, []byte("null")):
			values[key] = ""
		case len(trimmed) > 0 && trimmed[0] == '"':
			var s string
			if err := json.Unmarshal(trimmed, &s); err != nil {
				return err
			}
			values[key] = s
		case bytes.Equal(trimmed, []byte("true")), bytes.Equal(trimmed, []byte("false")):
			values[key] = string(trimmed)
		case len(trimmed) > 0 && (trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9')):
			values[key] = string(trimmed)
		default:
			return fmt.Errorf("field %q: unsupported value %s", key, trimmed)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*fs = NewFieldSet(values)
	return nil
}
