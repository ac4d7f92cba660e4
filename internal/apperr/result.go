package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failed business outcome.
type Kind string

const (
	KindNone       Kind = ""
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindStorage    Kind = "storage"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")

	// ErrActiveLoans blocks deleting a book or customer that still has issued loans.
	ErrActiveLoans = errors.New("active loans")
)

// Result is what service operations hand back for expected outcomes.
// Unexpected storage errors travel separately as a Go error.
type Result struct {
	OK      bool   `json:"success"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
}

func Success(format string, args ...any) Result {
	return Result{OK: true, Message: fmt.Sprintf(format, args...)}
}

func Fail(kind Kind, format string, args ...any) Result {
	return Result{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) Result   { return Fail(KindNotFound, "%s", msg) }
func Invalid(msg string) Result    { return Fail(KindValidation, "%s", msg) }
func Conflict(msg string) Result   { return Fail(KindConflict, "%s", msg) }
func StorageErr(msg string) Result { return Fail(KindStorage, "%s", msg) }

func (r Result) String() string {
	if r.OK {
		return r.Message
	}
	return string(r.Kind) + ": " + r.Message
}

// abort carries a Result out of a transaction closure so the tx rolls back.
type abort struct{ res Result }

func (a *abort) Error() string { return a.res.String() }

// Abort wraps r as an error; returning it from a tx closure rolls the tx back.
func Abort(r Result) error { return &abort{res: r} }

// Outcome splits a tx error into a business Result or a real error.
func Outcome(err error, success Result) (Result, error) {
	if err == nil {
		return success, nil
	}
	var a *abort
	if errors.As(err, &a) {
		return a.res, nil
	}
	return Result{}, err
}
