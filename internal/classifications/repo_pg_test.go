package classifications

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/everlof/sonda/internal/classify"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	cl := Classification{
		ID:            "cl-1",
		SampleID:      "S1",
		Matrix:        "jord",
		Rulesets:      []string{"nv"},
		IncludeHazard: true,
		Summary:       map[string]string{"Naturvårdsverkets generella riktvärden": "KM"},
		Result: classify.SampleResult{
			SampleID: "S1",
		},
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO classifications").
		WithArgs(
			cl.ID,
			cl.SampleID,
			sqlmock.AnyArg(), // matrix
			sqlmock.AnyArg(), // rulesets json
			cl.IncludeHazard,
			sqlmock.AnyArg(), // summary json
			sqlmock.AnyArg(), // result json
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), cl); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT id, sample_id, matrix, rulesets").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "sample_id", "matrix", "rulesets", "include_hazard", "summary", "result", "created_at",
		}))

	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesPayloads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "sample_id", "matrix", "rulesets", "include_hazard", "summary", "result", "created_at",
	}).AddRow(
		"cl-1", "S1", "jord",
		[]byte(`["nv","fa"]`),
		true,
		[]byte(`{"Farligt avfall (HP-bedömning)":"FA"}`),
		[]byte(`{"sampleId":"S1","rulesetResults":[]}`),
		created,
	)

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT id, sample_id, matrix, rulesets").
		WithArgs("cl-1").
		WillReturnRows(rows)

	cl, err := repo.GetByID(context.Background(), "cl-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(cl.Rulesets) != 2 || cl.Rulesets[1] != "fa" {
		t.Fatalf("rulesets not decoded: %v", cl.Rulesets)
	}
	if cl.Summary["Farligt avfall (HP-bedömning)"] != "FA" {
		t.Fatalf("summary not decoded: %v", cl.Summary)
	}
	if cl.Result.SampleID != "S1" {
		t.Fatalf("result not decoded: %+v", cl.Result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT id, sample_id, matrix, rulesets").
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "sample_id", "matrix", "rulesets", "include_hazard", "summary", "result", "created_at",
		}))

	if _, err := repo.List(context.Background(), 500, -3); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
