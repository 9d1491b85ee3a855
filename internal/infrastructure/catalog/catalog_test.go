package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuvia/backend/internal/domain/entities"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

func TestLoad_Default(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	var names []entities.ConditionName
	for _, cond := range c.Lexicon.Conditions() {
		names = append(names, cond.Name)
	}
	assert.Equal(t, []entities.ConditionName{
		"anemia", "preeclampsia", "gestationalDiabetes", "miscarriageRisk",
		"mentalHealth", "uti", "thyroidIssues",
	}, names)

	assert.Equal(t, []string{
		"morning sickness", "nausea", "heartburn", "constipation",
		"back pain", "swelling", "fatigue", "leg cramps",
	}, c.Remedies.Categories())

	for _, r := range c.Remedies.Entries() {
		assert.Len(t, r.Remedies, 6, r.Symptom)
		assert.NotEmpty(t, r.Tips, r.Symptom)
	}

	assert.Equal(t, []string{"morning", "sick"}, c.Remedies.Synonyms("morning sickness"))
	assert.Equal(t, []string{"back"}, c.Remedies.Synonyms("back pain"))
	assert.Equal(t, []string{"leg", "cramp"}, c.Remedies.Synonyms("leg cramps"))
	assert.Empty(t, c.Remedies.Synonyms("nausea"))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed yaml", "conditions: [:"},
		{"duplicate condition", `
conditions:
  - {name: anemia, phrases: [pale skin]}
  - {name: anemia, phrases: [dizziness]}
remedies:
  - {symptom: nausea, remedies: [ginger]}
`},
		{"no remedies", `
conditions:
  - {name: anemia, phrases: [pale skin]}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfig))
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
conditions:
  - {name: preeclampsia, phrases: [Severe Headache]}
remedies:
  - {symptom: nausea, remedies: [ginger], tips: small meals}
`), 0o600))

	c, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Lexicon.Len())
	assert.Equal(t, []string{"severe headache"}, c.Lexicon.Conditions()[0].Phrases)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfig))

	c, err = LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, 7, c.Lexicon.Len())
}
