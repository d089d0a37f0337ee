package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrValidation      = fmt.Errorf("validation failed")
	ErrEmpty           = fmt.Errorf("value is required")
	ErrTooShort        = fmt.Errorf("value is too short")
	ErrTooLong         = fmt.Errorf("value is too long")
	ErrDuplicateName   = fmt.Errorf("name is already taken")
	ErrNotFound        = fmt.Errorf("not found")
	ErrRemote          = fmt.Errorf("remote data service error")
	ErrNetwork         = fmt.Errorf("network failure")
	ErrRejected        = fmt.Errorf("rejected by server")
	ErrUnauthenticated = fmt.Errorf("unauthenticated")
	ErrAlreadyInit     = fmt.Errorf("already initialized")
	ErrUnknownLanguage = fmt.Errorf("unknown dictionary language")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
	ErrClosed          = fmt.Errorf("closed")
)

// Reason names the rule a candidate value broke.
type Reason string

const (
	ReasonEmpty         Reason = "empty"
	ReasonTooShort      Reason = "too_short"
	ReasonTooLong       Reason = "too_long"
	ReasonDuplicateName Reason = "duplicate_name"
)

var reasons = map[Reason]error{
	ReasonEmpty:         ErrEmpty,
	ReasonTooShort:      ErrTooShort,
	ReasonTooLong:       ErrTooLong,
	ReasonDuplicateName: ErrDuplicateName,
}

// ValidationError is detected locally, before any network call.
// It matches ErrValidation and the sentinel of its Reason with errors.Is.
type ValidationError struct {
	Field  string
	Reason Reason
	Value  string
}

func NewValidationError(field string, reason Reason, value string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, reasons[e.Reason])
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, reasons[e.Reason]}
}

// RemoteKind separates transport failures from server verdicts.
type RemoteKind int

const (
	KindNetwork RemoteKind = iota
	KindRejected
)

func (k RemoteKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRejected:
		return "server-rejected"
	default:
		return "unknown"
	}
}

// RemoteError is surfaced verbatim to the caller. No retry is attempted.
type RemoteError struct {
	Op   string
	Kind RemoteKind
	Err  error
}

func NewRemoteError(op string, kind RemoteKind, err error) *RemoteError {
	return &RemoteError{Op: op, Kind: kind, Err: err}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() []error {
	kind := ErrRejected
	if e.Kind == KindNetwork {
		kind = ErrNetwork
	}
	return []error{ErrRemote, kind, e.Err}
}

// ReasonOf returns the validation reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var verr *ValidationError
	if stderrors.As(err, &verr) {
		return verr.Reason, true
	}
	return "", false
}

// IsRecoverable reports whether err is one of the typed results of this module.
// Nothing returned by the sync core is fatal; unknown errors still are reported as such.
func IsRecoverable(err error) bool {
	return stderrors.Is(err, ErrValidation) ||
		stderrors.Is(err, ErrNotFound) ||
		stderrors.Is(err, ErrRemote)
}
