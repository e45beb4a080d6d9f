package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies why a candidate procedure was not renamed.
type Kind int

const (
	KindPatternMismatch Kind = iota + 1 // block is not an alias idiom
	KindAddressDecode                   // operand text could not be parsed
	KindNotASelectorRef                 // resolved address is outside __objc_selrefs
	KindNoSelectorName                  // no reference into __objc_methname
	KindTextDecode                      // selector bytes are unreadable or not text
)

func (k Kind) String() string {
	switch k {
	case KindPatternMismatch:
		return "criteria not met"
	case KindAddressDecode:
		return "address decode failure"
	case KindNotASelectorRef:
		return "not a selector"
	case KindNoSelectorName:
		return "no selector name found"
	case KindTextDecode:
		return "text decode failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the failure value produced by every analysis pass.
type Error struct {
	Kind Kind
	Addr uint64 // address the failure refers to, 0 when unknown
	Err  error  // underlying cause, may be nil
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrPatternMismatch = &Error{Kind: KindPatternMismatch}
	ErrAddressDecode   = &Error{Kind: KindAddressDecode}
	ErrNotASelectorRef = &Error{Kind: KindNotASelectorRef}
	ErrNoSelectorName  = &Error{Kind: KindNoSelectorName}
	ErrTextDecode      = &Error{Kind: KindTextDecode}
)

func newError(kind Kind, addr uint64, err error) *Error {
	return &Error{Kind: kind, Addr: addr, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Addr != 0 {
		msg += fmt.Sprintf(" at %#x", e.Addr)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches by kind so callers can test against the exported sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the failure kind from err.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
