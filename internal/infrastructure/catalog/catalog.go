// Package catalog loads the symptom lexicon and remedy catalog. The default
// data is compiled into the binary; an override file can replace it at startup.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/neuvia/backend/internal/domain/entities"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog is the process-wide, read-only triage knowledge
type Catalog struct {
	Lexicon  *entities.SymptomLexicon
	Remedies *entities.RemedyCatalog
}

type catalogFile struct {
	Conditions []entities.Condition   `yaml:"conditions"`
	Remedies   []entities.Remedy      `yaml:"remedies"`
	Synonyms   []entities.SynonymRule `yaml:"synonyms"`
}

// Load returns the embedded default catalog
func Load() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// LoadFile reads a catalog from path
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("read catalog %s: %v", path, err))
	}
	return Parse(data)
}

// LoadOrDefault loads path when set, the embedded catalog otherwise
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Load()
	}
	return LoadFile(path)
}

// Parse decodes and validates catalog YAML
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("parse catalog: %v", err))
	}

	lexicon, err := entities.NewSymptomLexicon(f.Conditions)
	if err != nil {
		return nil, err
	}
	remedies, err := entities.NewRemedyCatalog(f.Remedies, f.Synonyms)
	if err != nil {
		return nil, err
	}

	return &Catalog{Lexicon: lexicon, Remedies: remedies}, nil
}

// MustLoad returns the embedded catalog and panics if it is malformed
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("load embedded catalog: %v", err))
	}
	return c
}
