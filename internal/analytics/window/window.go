// Package window turns caller-supplied day and week counts into query bounds.
package window

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/cohortiq-backend/pkg/errors"
)

const (
	MinDays  = 1
	MaxDays  = 365
	MinWeeks = 2
	MaxWeeks = 8
	MinLimit = 1
	MaxLimit = 50

	DefaultDays  = 30
	DefaultWeeks = 5
	DefaultLimit = 10
)

var validate = validator.New()

// Window is a validated lower bound. Facts with timestamp >= Since are in
// scope; there is no upper bound.
type Window struct {
	Count int
	Unit  string
	Since time.Time
}

// Days resolves a window of n days ending at now.
func Days(n int, now time.Time) (Window, error) {
	if err := checkRange("days", n, MinDays, MaxDays); err != nil {
		return Window{}, err
	}
	return Window{Count: n, Unit: "days", Since: now.AddDate(0, 0, -n)}, nil
}

// Weeks resolves a window of n weeks ending at now.
func Weeks(n int, now time.Time) (Window, error) {
	if err := checkRange("weeks", n, MinWeeks, MaxWeeks); err != nil {
		return Window{}, err
	}
	return Window{Count: n, Unit: "weeks", Since: now.AddDate(0, 0, -7*n)}, nil
}

// Limit validates a top-N row limit.
func Limit(n int) (int, error) {
	if err := checkRange("limit", n, MinLimit, MaxLimit); err != nil {
		return 0, err
	}
	return n, nil
}

func checkRange(field string, n, min, max int) error {
	if err := validate.Var(n, fmt.Sprintf("min=%d,max=%d", min, max)); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be between %d and %d", field, min, max)).
			WithDetails(map[string]any{"field": field, "min": min, "max": max, "value": n})
	}
	return nil
}
