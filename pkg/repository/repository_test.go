package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/pitchcraft/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
	errInvalid   = errors.New("invalid")
)

var mapped = repository.Errors{
	NotFound:  errNotFound,
	Duplicate: errDuplicate,
	Invalid:   errInvalid,
}

func TestErrorsMap(t *testing.T) {
	other := errors.New("some other error")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "no rows", err: sql.ErrNoRows, want: errNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("find: %w", sql.ErrNoRows), want: errNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: errDuplicate},
		{name: "check violation", err: &pgconn.PgError{Code: "23514", ConstraintName: "projects_status_check"}, want: errInvalid},
		{name: "passthrough", err: other, want: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapped.Map(tt.err)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("Map() = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("Map() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorsMapCheckViolationNamesConstraint(t *testing.T) {
	got := mapped.Map(&pgconn.PgError{Code: "23514", ConstraintName: "projects_status_check"})
	if !strings.Contains(got.Error(), "projects_status_check") {
		t.Errorf("Map() = %q, want constraint name", got)
	}
}

func TestErrorsMapUnsetSentinel(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505"}
	got := repository.Errors{NotFound: errNotFound}.Map(pgErr)
	if got != pgErr {
		t.Errorf("Map() with no duplicate sentinel should pass through, got %v", got)
	}
}

func TestErrorsMapForeignKeyPassthrough(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503"}
	if got := mapped.Map(pgErr); got != pgErr {
		t.Errorf("Map(PgError 23503) should pass through, got %v", got)
	}
}

type slide struct {
	Title string `json:"title"`
}

func TestJSONB(t *testing.T) {
	data, err := repository.JSONB(slide{Title: "Introdução"})
	if err != nil {
		t.Fatalf("JSONB() error = %v", err)
	}

	got, err := repository.DecodeJSONB[slide](data)
	if err != nil {
		t.Fatalf("DecodeJSONB() error = %v", err)
	}
	if got == nil || got.Title != "Introdução" {
		t.Errorf("DecodeJSONB() = %+v, want title Introdução", got)
	}
}

func TestDecodeJSONBNull(t *testing.T) {
	for _, data := range [][]byte{nil, {}, []byte("null")} {
		got, err := repository.DecodeJSONB[slide](data)
		if err != nil {
			t.Fatalf("DecodeJSONB(%q) error = %v", data, err)
		}
		if got != nil {
			t.Errorf("DecodeJSONB(%q) = %+v, want nil", data, got)
		}
	}
}

func TestDecodeJSONBInvalid(t *testing.T) {
	if _, err := repository.DecodeJSONB[slide]([]byte("{")); err == nil {
		t.Fatal("expected error for malformed jsonb")
	}
}

func TestJSONBUnsupported(t *testing.T) {
	if _, err := repository.JSONB(make(chan int)); err == nil {
		t.Fatal("expected error for unsupported value")
	}
}
