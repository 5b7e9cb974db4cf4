package editor

import (
	"errors"
	"fmt"
)

// Kind classifies editor failures.
type Kind int

const (
	KindDecode Kind = iota + 1
	KindEncode
	KindNoImage
	KindEmptyHistory
	KindInvalidImage
	KindInvalidParameter
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "DecodeError"
	case KindEncode:
		return "EncodeError"
	case KindNoImage:
		return "NoImageLoaded"
	case KindEmptyHistory:
		return "EmptyHistory"
	case KindInvalidImage:
		return "InvalidImage"
	case KindInvalidParameter:
		return "InvalidParameter"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrDecode           = errors.New("failed to load image")
	ErrEncode           = errors.New("failed to save image")
	ErrNoImage          = errors.New("no image loaded")
	ErrEmptyHistory     = errors.New("nothing to undo")
	ErrInvalidImage     = errors.New("invalid image")
	ErrInvalidParameter = errors.New("invalid parameter")
)

func (k Kind) sentinel() error {
	switch k {
	case KindDecode:
		return ErrDecode
	case KindEncode:
		return ErrEncode
	case KindNoImage:
		return ErrNoImage
	case KindEmptyHistory:
		return ErrEmptyHistory
	case KindInvalidImage:
		return ErrInvalidImage
	case KindInvalidParameter:
		return ErrInvalidParameter
	}
	return nil
}

// Error is returned by every failing editor operation.
type Error struct {
	Kind Kind
	Op   string // operation name, e.g. "open"
	Path string // file involved, if any
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		msg = e.Op + ": " + s.Error()
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" %q", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
