package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.Diseases) != 10 || len(cat.Symptoms) != 10 || len(cat.Links) != 12 || len(cat.Treatments) != 22 {
		t.Fatalf("unexpected table sizes: %d diseases, %d symptoms, %d links, %d treatments",
			len(cat.Diseases), len(cat.Symptoms), len(cat.Links), len(cat.Treatments))
	}
	if cat.Diseases[4] != (Disease{ID: 5, Name: "Body Pains"}) {
		t.Fatalf("unexpected disease at index 4: %+v", cat.Diseases[4])
	}
	if cat.Symptoms[7] != (Symptom{ID: 8, Name: "Shortness of Breath"}) {
		t.Fatalf("unexpected symptom at index 7: %+v", cat.Symptoms[7])
	}
	last := cat.Treatments[len(cat.Treatments)-1]
	if last.DiseaseID != 10 || last.Type != "Ayurvedic" || last.Description != "Pomegranate juice for gastroenteritis" {
		t.Fatalf("unexpected last treatment: %+v", last)
	}
	if d := cat.Dangling(); len(d) != 0 {
		t.Fatalf("default catalog has dangling references: %v", d)
	}
}

func TestParseYAMLRejectsEmpty(t *testing.T) {
	if _, err := ParseYAML([]byte("diseases: []\n")); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := ParseYAML([]byte("diseases: [oops")); err == nil {
		t.Fatal("expected parse error for malformed yaml")
	}
}

func TestParseYAMLRejectsUnknownKeys(t *testing.T) {
	raw := `
diseases:
  - {disease_id: 1, disease_name: Fever}
symptoms:
  - {symptom_id: 1, symptom_name: High Temperature}
links:
  - {disease_id: 1, symptom_id: 1}
`
	if _, err := ParseYAML([]byte(raw)); err == nil || !strings.Contains(err.Error(), "links") {
		t.Fatalf("expected unknown table key to be rejected, got %v", err)
	}

	misspelled := "diseases:\n  - {disease_id: 1, disease_nam: Fever}\n"
	if _, err := ParseYAML([]byte(misspelled)); err == nil {
		t.Fatal("expected unknown row field to be rejected")
	}

	if _, err := ParseYAML(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty for empty document, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `
diseases:
  - {disease_id: 3, disease_name: Migraine}
symptoms:
  - {symptom_id: 1, symptom_name: Aura}
symptom_disease:
  - {disease_id: 3, symptom_id: 1}
treatments:
  - {disease_id: 3, treatment_type: Allopathic, description: Triptans}
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Rows() != 4 || cat.Treatments[0].Description != "Triptans" {
		t.Fatalf("unexpected catalog: %+v", cat)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDangling(t *testing.T) {
	cat := &Catalog{
		Diseases: []Disease{{ID: 1, Name: "Fever"}},
		Symptoms: []Symptom{{ID: 1, Name: "High Temperature"}},
		Links: []SymptomDiseaseLink{
			{DiseaseID: 1, SymptomID: 1},
			{DiseaseID: 7, SymptomID: 9},
		},
		Treatments: []Treatment{{DiseaseID: 2, Type: "Ayurvedic", Description: "x"}},
	}
	got := cat.Dangling()
	if len(got) != 3 {
		t.Fatalf("expected 3 dangling references, got %v", got)
	}
	if !strings.Contains(got[0], "disease_id 7") || !strings.Contains(got[1], "symptom_id 9") || !strings.Contains(got[2], "treatments[0]") {
		t.Fatalf("unexpected dangling report: %v", got)
	}
}
