// Package errors defines the error kinds shared by the lister, the preview
// resolver, the search client and the batch file operations, along with
// helpers for creating, wrapping and classifying them.
package errors

import (
	"errors"
	"fmt"
)

// Re-exported from the standard errors package so callers need one import.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Kind classifies an error.
type Kind int

const (
	Unknown Kind = iota
	// NotFound: a path is missing or cannot be read.
	NotFound
	// DecodeFailure: an image or API payload could not be parsed.
	DecodeFailure
	// Transport: the network or HTTP layer failed.
	Transport
	// RateLimited is the HTTP 429 case of Transport.
	RateLimited
	// OperationFailure: one item of a batch move/trash/open/rename failed.
	OperationFailure
	// InvalidInput: the caller passed an unusable argument.
	InvalidInput
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case DecodeFailure:
		return "decode failure"
	case Transport:
		return "transport error"
	case RateLimited:
		return "rate limited"
	case OperationFailure:
		return "operation failure"
	case InvalidInput:
		return "invalid input"
	default:
		return "unknown"
	}
}

// Error is the application error type. Op names the operation ("list",
// "trash", "search"), Path the file or query it applied to.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg = msg + ": " + e.Path
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind, operation and path to err. Wrap(nil, ...) is nil.
func Wrap(err error, kind Kind, op, path string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func IsNotFound(err error) bool {
	return KindOf(err) == NotFound
}

func IsDecodeFailure(err error) bool {
	return KindOf(err) == DecodeFailure
}

// IsTransport reports true for both Transport and RateLimited errors.
func IsTransport(err error) bool {
	k := KindOf(err)
	return k == Transport || k == RateLimited
}

func IsRateLimited(err error) bool {
	return KindOf(err) == RateLimited
}

func IsOperationFailure(err error) bool {
	return KindOf(err) == OperationFailure
}
