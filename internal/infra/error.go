package infra

import (
	"errors"
	"log/slog"

	"car-rental-booking/internal/pkg/errs"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr wraps err as a RepositoryError. Without an explicit kind the
// kind is derived from the Postgres error code.
func WrapRepoErr(msg string, err error, kind ...RepositoryErrorKind) error {
	k := Classify(err)
	if len(kind) > 0 {
		k = kind[0]
	}

	logArgs := []any{
		slog.String("kind", string(k)),
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		logArgs = append(logArgs,
			slog.String("pg_code", pgErr.Code),
			slog.String("constraint", pgErr.ConstraintName))
	}

	switch k {
	case KindNotFound, KindConflict, KindDuplicateKey:
		slog.Debug("Repository error: "+msg, logArgs...)
	default:
		slog.Error("Repository error: "+msg, logArgs...)
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return RepositoryError{Kind: k, msg: msg, err: err}
}

// Classify maps low-level errors to repository error kinds.
func Classify(err error) RepositoryErrorKind {
	if err == nil {
		return KindDBFailure
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return KindNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return KindDBFailure
	}
	switch pgErr.Code {
	case pgerrcode.ExclusionViolation:
		return KindConflict
	case pgerrcode.UniqueViolation:
		return KindDuplicateKey
	case pgerrcode.ForeignKeyViolation:
		return KindForeignKeyViolated
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return KindConstraintViolated
	default:
		return KindDBFailure
	}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindConflict           RepositoryErrorKind = "CONFLICT"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindConstraintViolated RepositoryErrorKind = "CONSTRAINT_VIOLATED"
	KindCacheFailure       RepositoryErrorKind = "CACHE_FAILURE"
)
