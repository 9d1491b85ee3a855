package services

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/neuvia/backend/internal/domain/entities"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ValidationResult reports whether an intake form is complete
type ValidationResult struct {
	OK      bool     `json:"ok"`
	Missing []string `json:"missing"`
}

// ValidateIntake checks that every required key carries a non-blank value.
// Missing keys are listed in required-key order.
func ValidateIntake(fields entities.FieldSet, requiredKeys []string) ValidationResult {
	missing := []string{}
	for _, key := range requiredKeys {
		f, ok := fields.Get(key)
		if !ok || f.Blank() {
			missing = append(missing, key)
		}
	}
	return ValidationResult{OK: len(missing) == 0, Missing: missing}
}

// CoerceValue converts one raw form value. "true"/"false" become booleans,
// decimal literals (surrounding whitespace ignored) become numbers, and
// anything else is kept verbatim. Blank text is never a number.
func CoerceValue(raw string) entities.SymptomValue {
	switch raw {
	case "true":
		return entities.BoolValue(true)
	case "false":
		return entities.BoolValue(false)
	}

	trimmed := strings.TrimSpace(raw)
	if decimalLiteral.MatchString(trimmed) {
		if d, err := decimal.NewFromString(strings.TrimPrefix(trimmed, "+")); err == nil {
			return entities.NumberValue(d)
		}
	}

	return entities.TextValue(raw)
}

// NormalizeIntake converts every field of the form, one-to-one, keeping key order
func NormalizeIntake(fields entities.FieldSet) entities.NormalizedSymptoms {
	all := fields.Fields()
	out := make(entities.NormalizedSymptoms, 0, len(all))
	for _, f := range all {
		out = append(out, entities.NormalizedSymptom{Key: f.Key, Value: CoerceValue(f.RawValue)})
	}
	return out
}
