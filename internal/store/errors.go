package store

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind tags a backend failure so callers can branch on a stable enum instead
// of matching message substrings.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotConfigured    // missing or placeholder credentials, detected before any network call
	KindUnavailable      // backend unreachable
	KindSchemaMissing    // relation/table does not exist
	KindPermissionDenied // RLS/privilege denial
	KindNotFound
	KindConflict // unique constraint violation
)

func (k Kind) String() string {
	switch k {
	case KindNotConfigured:
		return "not_configured"
	case KindUnavailable:
		return "unavailable"
	case KindSchemaMissing:
		return "schema_missing"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error carries a Kind alongside the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store: %s", e.Kind)
	}
	return fmt.Sprintf("store: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with a kind. Returns nil for a nil err.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// ErrNotConfigured is returned before any network call when the store has no
// usable credentials.
var ErrNotConfigured = &Error{Kind: KindNotConfigured}

// Postgres SQLSTATE codes the classifier cares about.
const (
	sqlstateUndefinedTable        = "42P01"
	sqlstateInsufficientPrivilege = "42501"
	sqlstateUniqueViolation       = "23505"
	sqlstateInvalidCatalogName    = "3D000"
)

// Classify maps an error from the store layer to a Kind. Unrecognized errors
// come back as KindUnknown.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateUndefinedTable:
			return KindSchemaMissing
		case sqlstateInsufficientPrivilege:
			return KindPermissionDenied
		case sqlstateUniqueViolation:
			return KindConflict
		case sqlstateInvalidCatalogName:
			return KindUnavailable
		}
		return KindUnknown
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return KindUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindUnavailable
	}

	return KindUnknown
}

// IsNotFound reports whether err represents an absent row.
func IsNotFound(err error) bool {
	return Classify(err) == KindNotFound
}

// Degradable reports whether err should send a read path to the fallback
// dataset: the store is unreachable, unconfigured, or its schema is missing.
// Anything else (permission denial included) is a real failure.
func Degradable(err error) bool {
	switch Classify(err) {
	case KindNotConfigured, KindUnavailable, KindSchemaMissing:
		return true
	}
	return false
}
