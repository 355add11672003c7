// Package browserr defines the error types shared across the browser
// pipeline: document loading, CSS parsing, style resolution, layout and
// font handling all report failures through BrowserError so callers can
// branch on Kind without parsing message text.
package browserr

import (
	"errors"
	"fmt"
)

// Kind classifies a BrowserError.
type Kind int

const (
	// Unknown is the zero value; never produced by this package directly.
	Unknown Kind = iota
	// Network signals a failure fetching a remote resource.
	Network
	// Parse signals a syntax error in HTML or CSS input.
	Parse
	// Layout is reserved for future layout-stage failures; nothing in
	// this tree currently returns it, since layout has no fallible step.
	Layout
	// Font signals a failure installing or looking up a font face.
	Font
	// IO signals a local filesystem failure.
	IO
	// URL signals a malformed or unsupported URL/path.
	URL
)

func (k Kind) String() string {
	switch k {
	case Network:
		return "network error"
	case Parse:
		return "parse error"
	case Layout:
		return "layout error"
	case Font:
		return "font error"
	case IO:
		return "i/o error"
	case URL:
		return "url error"
	}
	return "unknown error"
}

// BrowserError is an error with an associated Kind and a user-facing message.
type BrowserError interface {
	error
	Kind() Kind
	UserMessage() string
}

type browserError struct {
	error
	kind Kind
	msg  string
}

func (e browserError) Unwrap() error { return e.error }

func (e browserError) Error() string { return fmt.Sprintf("[%s] %v", e.kind, e.error) }

func (e browserError) Kind() Kind { return e.kind }

func (e browserError) UserMessage() string { return e.msg }

var _ BrowserError = browserError{}

// Wrap wraps err in a BrowserError carrying kind and a formatted user
// message. If err is nil, an error denoting kind alone is created.
func Wrap(err error, kind Kind, format string, v ...interface{}) error {
	if err == nil {
		err = errors.New(kind.String())
	}
	return browserError{err, kind, fmt.Sprintf(format, v...)}
}

// New creates a BrowserError directly from a kind and a message, without
// wrapping an existing error.
func New(kind Kind, format string, v ...interface{}) error {
	msg := fmt.Sprintf(format, v...)
	return browserError{errors.New(msg), kind, msg}
}

// KindOf returns the Kind associated with err, or Unknown if err is nil or
// carries no Kind.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var be BrowserError
	if errors.As(err, &be) {
		return be.Kind()
	}
	return Unknown
}

// UserMessage returns the user-facing message associated with err, falling
// back to err.Error() if err carries no BrowserError.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var be BrowserError
	if errors.As(err, &be) {
		return be.UserMessage()
	}
	return err.Error()
}

// ParseError carries the extra positional context the CSS and HTML parsers
// need to report a syntax error: the parsing stage it occurred in, the byte
// offset into the source, and (when known) a description of what was
// expected at that position.
type ParseError struct {
	Stage    string
	Position int
	Expected string
	Source   error
}

func (e *ParseError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s: at byte %d: expected %s", e.Stage, e.Position, e.Expected)
	}
	return fmt.Sprintf("%s: at byte %d: %v", e.Stage, e.Position, e.Source)
}

func (e *ParseError) Unwrap() error { return e.Source }

// NewParseError builds a Parse-kind BrowserError wrapping a ParseError.
func NewParseError(stage string, position int, expected string) error {
	pe := &ParseError{Stage: stage, Position: position, Expected: expected}
	return Wrap(pe, Parse, "%s", pe.Error())
}
