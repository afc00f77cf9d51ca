package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	pkgerrors "github.com/angelmondragon/cohortiq-backend/pkg/errors"
)

// Reasons attached to storage errors so callers can tell a saturated pool from
// a statement the database refused.
const (
	ReasonPoolExhausted = "pool_exhausted"
	ReasonQueryRejected = "query_rejected"
	ReasonUnavailable   = "unavailable"
	ReasonCanceled      = "canceled"
)

// ErrPoolExhausted is returned when no connection slot frees up within the
// pool timeout.
var ErrPoolExhausted = errors.New("database pool exhausted")

func poolExhausted(timeout time.Duration) error {
	return pkgerrors.Wrap(pkgerrors.CodePoolExhausted, ErrPoolExhausted, "database pool exhausted").
		WithDetails(map[string]any{"reason": ReasonPoolExhausted, "wait": timeout.String()})
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query canceled").
			WithDetails(map[string]any{"reason": ReasonCanceled})
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query rejected").
			WithDetails(map[string]any{"reason": ReasonQueryRejected, "sqlstate": pgErr.Code})
	}

	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable").
		WithDetails(map[string]any{"reason": ReasonUnavailable})
}

// Reason reports the storage failure reason carried by err, or "" when err did
// not originate here.
func Reason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return ""
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return ""
	}
	reason, _ := details["reason"].(string)
	return reason
}
