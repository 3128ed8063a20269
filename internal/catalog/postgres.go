package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Each table carries a serial "ordinal" column that fixes table order; see
// migrations/001_catalog.sql in this package.
const (
	selectDiseases   = `SELECT disease_id, disease_name FROM diseases ORDER BY ordinal`
	selectSymptoms   = `SELECT symptom_id, symptom_name FROM symptoms ORDER BY ordinal`
	selectLinks      = `SELECT disease_id, symptom_id FROM symptom_disease ORDER BY ordinal`
	selectTreatments = `SELECT disease_id, treatment_type, description FROM treatments ORDER BY ordinal`
)

// LoadPostgres reads the four reference tables once. The result is detached
// from the database; later writes to the tables are not observed.
func LoadPostgres(ctx context.Context, q Querier) (*Catalog, error) {
	var (
		cat Catalog
		err error
	)

	cat.Diseases, err = collect(ctx, q, selectDiseases, func(row pgx.CollectableRow) (Disease, error) {
		var d Disease
		err := row.Scan(&d.ID, &d.Name)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("load diseases: %w", err)
	}

	cat.Symptoms, err = collect(ctx, q, selectSymptoms, func(row pgx.CollectableRow) (Symptom, error) {
		var s Symptom
		err := row.Scan(&s.ID, &s.Name)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("load symptoms: %w", err)
	}

	cat.Links, err = collect(ctx, q, selectLinks, func(row pgx.CollectableRow) (SymptomDiseaseLink, error) {
		var l SymptomDiseaseLink
		err := row.Scan(&l.DiseaseID, &l.SymptomID)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("load symptom_disease: %w", err)
	}

	cat.Treatments, err = collect(ctx, q, selectTreatments, func(row pgx.CollectableRow) (Treatment, error) {
		var t Treatment
		err := row.Scan(&t.DiseaseID, &t.Type, &t.Description)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("load treatments: %w", err)
	}

	if cat.Rows() == 0 {
		return nil, ErrEmpty
	}
	return &cat, nil
}

func collect[T any](ctx context.Context, q Querier, sql string, fn pgx.RowToFunc[T]) ([]T, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, fn)
}
