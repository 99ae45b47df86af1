package domain

import (
	"errors"
	"fmt"
	"strings"

	"agrirent-backend/internal/calendar"
)

var (
	ErrDateRangeInvalid          = errors.New("date range invalid")
	ErrDateUnavailable           = errors.New("date unavailable")
	ErrInvalidStateTransition    = errors.New("invalid state transition")
	ErrCredentialInvalid         = errors.New("credential invalid")
	ErrCredentialAlreadyConsumed = errors.New("credential already consumed")
	ErrNotFound                  = errors.New("not found")
	ErrForbidden                 = errors.New("forbidden")
	ErrValidation                = errors.New("validation error")
)

// UnavailableDatesError lists the requested days that failed the availability check.
type UnavailableDatesError struct {
	Dates   []calendar.Date
	Reasons map[calendar.Date]string
}

func (e *UnavailableDatesError) Error() string {
	parts := make([]string, 0, len(e.Dates))
	for _, d := range e.Dates {
		parts = append(parts, fmt.Sprintf("%s (%s)", d, e.Reasons[d]))
	}
	return fmt.Sprintf("%s: %s", ErrDateUnavailable, strings.Join(parts, ", "))
}

func (e *UnavailableDatesError) Unwrap() error { return ErrDateUnavailable }

type TransitionError struct {
	From  RentalStatus
	Event RentalEvent
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s a %s request", ErrInvalidStateTransition, e.Event, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStateTransition }

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrValidation }

func NewValidationError(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// InvalidRange wraps ErrDateRangeInvalid with detail.
func InvalidRange(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDateRangeInvalid, fmt.Sprintf(format, args...))
}
