// Package outcome defines the tagged failure type every interaction returns.
// A nil error is success; anything else carries a Kind so callers can choose
// between retrying, escalating and aborting.
package outcome

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an interaction outcome.
type Kind string

const (
	Success Kind = "SUCCESS"
	// NotFound means an expected UI element was absent. Recoverable at the
	// caller's discretion.
	NotFound Kind = "NOT_FOUND"
	// Timeout means a wait expired. Same class as NotFound, kept apart for
	// latency diagnostics.
	Timeout Kind = "TIMEOUT"
	// AmbiguousPrecondition means region or anchor geometry was invalid, or a
	// platform table has no row for the running platform.
	AmbiguousPrecondition Kind = "AMBIGUOUS_PRECONDITION"
	// ProtocolFormat means text read back from the UI did not have the
	// expected shape. Signals an upstream UI change, not a flake.
	ProtocolFormat Kind = "PROTOCOL_FORMAT"
	// Substrate means the automation backend itself returned an error. It says
	// nothing about what is on screen and is never absorbed.
	Substrate Kind = "SUBSTRATE"
)

// Error is a failure tagged with its Kind, the action that failed and the
// pattern involved, if any.
type Error struct {
	Kind    Kind
	Action  string
	Pattern string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", e.Kind)
	if e.Action != "" {
		fmt.Fprintf(&b, " %s:", e.Action)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, " %s", e.Message)
	}
	if e.Pattern != "" {
		fmt.Fprintf(&b, " (pattern %q)", e.Pattern)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by Kind, so errors.Is(err, &Error{Kind: Timeout})
// works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Action == "" || t.Action == e.Action)
}

// WithCause sets the underlying cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithPattern sets the pattern name.
func (e *Error) WithPattern(name string) *Error {
	e.Pattern = name
	return e
}

func newError(kind Kind, action, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Action: action, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound creates a NotFound error for action.
func NewNotFound(action, format string, args ...interface{}) *Error {
	return newError(NotFound, action, format, args...)
}

// NewTimeout creates a Timeout error for action.
func NewTimeout(action, format string, args ...interface{}) *Error {
	return newError(Timeout, action, format, args...)
}

// NewAmbiguous creates an AmbiguousPrecondition error for action.
func NewAmbiguous(action, format string, args ...interface{}) *Error {
	return newError(AmbiguousPrecondition, action, format, args...)
}

// NewSubstrate creates a Substrate error for action.
func NewSubstrate(action, format string, args ...interface{}) *Error {
	return newError(Substrate, action, format, args...)
}

// NewFormat creates a ProtocolFormat error for action.
func NewFormat(action, format string, args ...interface{}) *Error {
	return newError(ProtocolFormat, action, format, args...)
}

// Wrap re-raises a lower-level failure under a higher-level action name. The
// Kind and pattern of a tagged cause are preserved. Untagged causes are backend
// failures and become Substrate.
// A nil err returns nil.
func Wrap(err error, action, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	kind := Substrate
	pattern := ""
	var inner *Error
	if errors.As(err, &inner) {
		kind = inner.Kind
		pattern = inner.Pattern
	}
	return &Error{
		Kind:    kind,
		Action:  action,
		Pattern: pattern,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// KindOf classifies err. nil is Success; an error without a tag anywhere in
// its chain yields "".
func KindOf(err error) Kind {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsAbsent reports whether err means "the element was not there": NotFound or
// Timeout. These are the only kinds a documented fallback may absorb.
func IsAbsent(err error) bool {
	k := KindOf(err)
	return k == NotFound || k == Timeout
}

// PatternOf returns the pattern name recorded on the outermost tagged error.
func PatternOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Pattern
	}
	return ""
}
