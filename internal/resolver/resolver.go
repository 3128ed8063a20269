// Package resolver turns free-text symptom input into the diseases linked to
// matching symptoms, each joined to its treatments.
package resolver

import (
	"errors"
	"strings"

	"github.com/Skufu/healthapi/internal/catalog"
)

var (
	ErrEmptyQuery = errors.New("empty symptom query")
	ErrNoMatch    = errors.New("no diseases match symptom query")
)

type TreatmentInfo struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

type DiseaseInfo struct {
	DiseaseID   int             `json:"disease_id" yaml:"disease_id"`
	DiseaseName string          `json:"disease_name" yaml:"disease_name"`
	Treatments  []TreatmentInfo `json:"treatments" yaml:"treatments"`
}

type symptomEntry struct {
	id    int
	lower string
}

// Resolver is immutable after New and safe for concurrent use.
type Resolver struct {
	diseases   []catalog.Disease
	symptoms   []catalog.Symptom
	lowered    []symptomEntry
	bySymptom  map[int][]int
	treatments map[int][]TreatmentInfo
}

func New(cat *catalog.Catalog) *Resolver {
	r := &Resolver{
		diseases:   cat.Diseases,
		symptoms:   cat.Symptoms,
		lowered:    make([]symptomEntry, 0, len(cat.Symptoms)),
		bySymptom:  make(map[int][]int),
		treatments: make(map[int][]TreatmentInfo),
	}
	for _, s := range cat.Symptoms {
		r.lowered = append(r.lowered, symptomEntry{id: s.ID, lower: strings.ToLower(s.Name)})
	}
	for _, l := range cat.Links {
		r.bySymptom[l.SymptomID] = append(r.bySymptom[l.SymptomID], l.DiseaseID)
	}
	for _, t := range cat.Treatments {
		r.treatments[t.DiseaseID] = append(r.treatments[t.DiseaseID], TreatmentInfo{
			Type:        t.Type,
			Description: t.Description,
		})
	}
	return r
}

// Resolve matches query as a case-insensitive substring of symptom names and
// returns the linked diseases in disease table order.
func (r *Resolver) Resolve(query string) ([]DiseaseInfo, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrEmptyQuery
	}

	found := make(map[int]struct{})
	for _, s := range r.lowered {
		if !strings.Contains(s.lower, q) {
			continue
		}
		for _, id := range r.bySymptom[s.id] {
			found[id] = struct{}{}
		}
	}
	if len(found) == 0 {
		return nil, ErrNoMatch
	}

	out := make([]DiseaseInfo, 0, len(found))
	for _, d := range r.diseases {
		if _, ok := found[d.ID]; ok {
			out = append(out, r.info(d))
		}
	}
	// Links that only reach unknown disease ids leave out empty; that is a
	// successful, empty resolution rather than ErrNoMatch.
	return out, nil
}

// Disease returns a single disease with its treatments.
func (r *Resolver) Disease(id int) (DiseaseInfo, bool) {
	for _, d := range r.diseases {
		if d.ID == id {
			return r.info(d), true
		}
	}
	return DiseaseInfo{}, false
}

// Symptoms returns a copy of the symptom table in table order.
func (r *Resolver) Symptoms() []catalog.Symptom {
	out := make([]catalog.Symptom, len(r.symptoms))
	copy(out, r.symptoms)
	return out
}

// info copies the treatment slice so callers cannot reach the shared index.
func (r *Resolver) info(d catalog.Disease) DiseaseInfo {
	src := r.treatments[d.ID]
	ts := make([]TreatmentInfo, len(src))
	copy(ts, src)
	return DiseaseInfo{
		DiseaseID:   d.ID,
		DiseaseName: d.Name,
		Treatments:  ts,
	}
}
