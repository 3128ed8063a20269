package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrEmpty = errors.New("catalog is empty")

type Disease struct {
	ID   int    `json:"disease_id" yaml:"disease_id"`
	Name string `json:"disease_name" yaml:"disease_name"`
}

type Symptom struct {
	ID   int    `json:"symptom_id" yaml:"symptom_id"`
	Name string `json:"symptom_name" yaml:"symptom_name"`
}

type SymptomDiseaseLink struct {
	DiseaseID int `json:"disease_id" yaml:"disease_id"`
	SymptomID int `json:"symptom_id" yaml:"symptom_id"`
}

type Treatment struct {
	DiseaseID   int    `json:"disease_id" yaml:"disease_id"`
	Type        string `json:"treatment_type" yaml:"treatment_type"` // Allopathic|Ayurvedic, not enforced
	Description string `json:"description" yaml:"description"`
}

// Catalog holds the reference tables. Slice order is table order and is
// significant to resolution output. A Catalog must not be modified once it
// has been handed to a resolver.
type Catalog struct {
	Diseases   []Disease            `yaml:"diseases"`
	Symptoms   []Symptom            `yaml:"symptoms"`
	Links      []SymptomDiseaseLink `yaml:"symptom_disease"`
	Treatments []Treatment          `yaml:"treatments"`
}

// Default returns the built-in reference tables.
func Default() (*Catalog, error) {
	cat, err := ParseYAML(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return cat, nil
}

func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	cat, err := ParseYAML(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return cat, nil
}

// ParseYAML rejects unknown keys so a misspelled table name fails loudly
// instead of loading as an empty table.
func ParseYAML(raw []byte) (*Catalog, error) {
	var cat Catalog
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if cat.Rows() == 0 {
		return nil, ErrEmpty
	}
	return &cat, nil
}

// Rows is the total row count across all tables.
func (c *Catalog) Rows() int {
	return len(c.Diseases) + len(c.Symptoms) + len(c.Links) + len(c.Treatments)
}

// Dangling lists references to diseases or symptoms that do not exist.
// They are legal; such rows never contribute to a resolution.
func (c *Catalog) Dangling() []string {
	diseases := make(map[int]struct{}, len(c.Diseases))
	for _, d := range c.Diseases {
		diseases[d.ID] = struct{}{}
	}
	symptoms := make(map[int]struct{}, len(c.Symptoms))
	for _, s := range c.Symptoms {
		symptoms[s.ID] = struct{}{}
	}

	out := []string{}
	for i, l := range c.Links {
		if _, ok := diseases[l.DiseaseID]; !ok {
			out = append(out, fmt.Sprintf("symptom_disease[%d]: unknown disease_id %d", i, l.DiseaseID))
		}
		if _, ok := symptoms[l.SymptomID]; !ok {
			out = append(out, fmt.Sprintf("symptom_disease[%d]: unknown symptom_id %d", i, l.SymptomID))
		}
	}
	for i, t := range c.Treatments {
		if _, ok := diseases[t.DiseaseID]; !ok {
			out = append(out, fmt.Sprintf("treatments[%d]: unknown disease_id %d", i, t.DiseaseID))
		}
	}
	return out
}
