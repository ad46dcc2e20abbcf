package store

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestClassifyPostgresCodes(t *testing.T) {
	cases := []struct {
		code string
		want Kind
	}{
		{"42P01", KindSchemaMissing},
		{"42501", KindPermissionDenied},
		{"23505", KindConflict},
		{"3D000", KindUnavailable},
		{"22001", KindUnknown},
	}
	for _, tc := range cases {
		err := &pgconn.PgError{Code: tc.code, Message: "pg failure"}
		if got := Classify(err); got != tc.want {
			t.Errorf("Classify(%s) = %s, want %s", tc.code, got, tc.want)
		}
	}
}

func TestClassifyWrappedPostgresError(t *testing.T) {
	err := fmt.Errorf("listing articles: %w", &pgconn.PgError{Code: "42P01"})
	if got := Classify(err); got != KindSchemaMissing {
		t.Errorf("Classify(wrapped 42P01) = %s, want schema_missing", got)
	}
}

func TestClassifyRecordNotFound(t *testing.T) {
	if got := Classify(gorm.ErrRecordNotFound); got != KindNotFound {
		t.Errorf("Classify(ErrRecordNotFound) = %s", got)
	}
	if !IsNotFound(gorm.ErrRecordNotFound) {
		t.Error("IsNotFound(ErrRecordNotFound) = false")
	}
}

func TestClassifyTaggedError(t *testing.T) {
	err := Wrap(KindConflict, errors.New("duplicate"))
	if got := Classify(err); got != KindConflict {
		t.Errorf("Classify(tagged) = %s, want conflict", got)
	}

	wrapped := fmt.Errorf("saving: %w", err)
	if got := Classify(wrapped); got != KindConflict {
		t.Errorf("Classify(wrapped tagged) = %s, want conflict", got)
	}
}

func TestClassifyNetworkError(t *testing.T) {
	var err error = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	if got := Classify(err); got != KindUnavailable {
		t.Errorf("Classify(net.OpError) = %s, want unavailable", got)
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(KindConflict, nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestDegradable(t *testing.T) {
	degradable := []error{
		ErrNotConfigured,
		&pgconn.PgError{Code: "42P01"},
		&pgconn.PgError{Code: "3D000"},
		&net.OpError{Op: "dial", Err: errors.New("refused")},
	}
	for _, err := range degradable {
		if !Degradable(err) {
			t.Errorf("Degradable(%v) = false, want true", err)
		}
	}

	hard := []error{
		&pgconn.PgError{Code: "42501"},
		&pgconn.PgError{Code: "23505"},
		gorm.ErrRecordNotFound,
		errors.New("something else"),
	}
	for _, err := range hard {
		if Degradable(err) {
			t.Errorf("Degradable(%v) = true, want false", err)
		}
	}
}
