package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the canonical structured error value for the ASR core.
// The core never prints; callers render Message and Code as they see fit.
type Error struct {
	Code    string // Error code (SYM001, SER002, ...)
	Message string // Human-readable message
	Where   string // Symbol or scope path the error anchors to, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Where != "" {
		return e.Code + ": " + e.Message + " (at " + e.Where + ")"
	}
	return e.Code + ": " + e.Message
}

// New creates a coded error.
func New(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// At creates a coded error anchored to a symbol or scope path.
func At(code, where, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Where: where}
}

// CodeOf extracts the error code from an error chain.
// Returns "" if the chain contains no coded error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Report collects violations without aborting traversal.
// Validation walks the whole tree and reports all violations, not just the first.
type Report struct {
	errs []*Error
}

// Add appends an error to the report.
func (r *Report) Add(e *Error) {
	r.errs = append(r.errs, e)
}

// Addf appends a coded error built from a format string.
func (r *Report) Addf(code, where, format string, args ...any) {
	r.Add(At(code, where, format, args...))
}

// All returns the collected errors in report order.
func (r *Report) All() []*Error {
	return r.errs
}

// Empty reports whether no violations were collected.
func (r *Report) Empty() bool {
	return len(r.errs) == 0
}

// Err returns the report as a single error, or nil if empty.
func (r *Report) Err() error {
	if len(r.errs) == 0 {
		return nil
	}
	if len(r.errs) == 1 {
		return r.errs[0]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d violations:", len(r.errs))
	for _, e := range r.errs {
		b.WriteString("\n  ")
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}
