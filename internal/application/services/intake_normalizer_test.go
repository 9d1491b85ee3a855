package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuvia/backend/internal/application/services"
	"github.com/neuvia/backend/internal/domain/entities"
)

func completeIntake() map[string]string {
	values := make(map[string]string, len(entities.RequiredIntakeKeys))
	for _, k := range entities.RequiredIntakeKeys {
		values[k] = "2"
	}
	values["bp"] = "120"
	values["heart_rate"] = "80"
	values["pale_skin"] = "false"
	values["bmi"] = "24.5"
	return values
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		raw  string
		want entities.SymptomValue
	}{
		{"true", entities.BoolValue(true)},
		{"false", entities.BoolValue(false)},
		{"42", entities.NumberValue(decimal.NewFromInt(42))},
		{"-3.5", entities.NumberValue(decimal.RequireFromString("-3.5"))},
		{"+7", entities.NumberValue(decimal.NewFromInt(7))},
		{" 98.6 ", entities.NumberValue(decimal.RequireFromString("98.6"))},
		{".5", entities.NumberValue(decimal.RequireFromString("0.5"))},
		{"", entities.TextValue("")},
		{"   ", entities.TextValue("   ")},
		{"True", entities.TextValue("True")},
		{"120/80", entities.TextValue("120/80")},
		{"NaN", entities.TextValue("NaN")},
		{"Inf", entities.TextValue("Inf")},
		{"1e3", entities.TextValue("1e3")},
		{"0x1F", entities.TextValue("0x1F")},
		{"often", entities.TextValue("often")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := services.CoerceValue(tt.raw)
			require.Equal(t, tt.want.Kind, got.Kind)
			switch got.Kind {
			case entities.ValueNumber:
				assert.True(t, tt.want.Number.Equal(got.Number), "got %s", got.Number)
			case entities.ValueBool:
				assert.Equal(t, tt.want.Bool, got.Bool)
			default:
				assert.Equal(t, tt.want.Text, got.Text)
			}
		})
	}
}

func TestValidateIntake(t *testing.T) {
	t.Run("complete form passes", func(t *testing.T) {
		res := services.ValidateIntake(entities.NewFieldSet(completeIntake()), entities.RequiredIntakeKeys)
		assert.True(t, res.OK)
		assert.Empty(t, res.Missing)
	})

	t.Run("missing bp is reported alone", func(t *testing.T) {
		values := completeIntake()
		delete(values, "bp")

		res := services.ValidateIntake(entities.NewFieldSet(values), entities.RequiredIntakeKeys)
		assert.False(t, res.OK)
		assert.Equal(t, []string{"bp"}, res.Missing)
	})

	t.Run("whitespace counts as missing and order follows required keys", func(t *testing.T) {
		values := completeIntake()
		values["bmi"] = "  "
		values["mood"] = ""

		res := services.ValidateIntake(entities.NewFieldSet(values), entities.RequiredIntakeKeys)
		assert.Equal(t, []string{"mood", "bmi"}, res.Missing)
	})

	t.Run("optional fields are not required", func(t *testing.T) {
		values := completeIntake()
		values["fasting"] = ""
		assert.True(t, services.ValidateIntake(entities.NewFieldSet(values), entities.RequiredIntakeKeys).OK)
	})
}

func TestNormalizeIntake(t *testing.T) {
	values := completeIntake()
	values["fasting"] = "95"
	values["previous_gdm"] = "true"

	fields := entities.NewFieldSet(values)
	require.True(t, services.ValidateIntake(fields, entities.RequiredIntakeKeys).OK)

	symptoms := services.NormalizeIntake(fields)
	assert.Len(t, symptoms, fields.Len())
	assert.Equal(t, "bp", symptoms[0].Key)

	bp, ok := symptoms.Number("bp")
	require.True(t, ok)
	assert.Equal(t, 120.0, bp)

	pale, _ := symptoms.Get("pale_skin")
	assert.Equal(t, entities.ValueBool, pale.Kind)
	assert.False(t, pale.Bool)

	gdm, _ := symptoms.Get("previous_gdm")
	assert.True(t, gdm.Bool)

	for _, s := range symptoms {
		if s.Value.Kind == entities.ValueText {
			assert.NotEmpty(t, s.Value.Text, "validated forms never normalize to blank text: %s", s.Key)
		}
	}
}
