package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which half of the codec raised the error
type Phase string

const (
	PhaseForge    Phase = "forge"    // writing into a buffer
	PhaseRead     Phase = "read"     // parsing an existing buffer
	PhaseRegistry Phase = "registry" // URI <-> URID mapping
	PhaseBridge   Phase = "bridge"   // diagnostic conversion
)

// Kind categorizes the error
type Kind string

const (
	// Writer faults. OutOfSpace is sticky on the forge and recoverable
	// by retrying with a larger buffer; the frame kinds and Usage are
	// programmer errors surfaced immediately.
	KindOutOfSpace     Kind = "out_of_space"
	KindFrameUnderflow Kind = "frame_underflow"
	KindFrameOverflow  Kind = "frame_overflow"
	KindFrameMismatch  Kind = "frame_mismatch"
	KindUsage          Kind = "usage"

	// Reader faults, all recoverable per-atom: the caller may skip the
	// offending atom and continue with siblings.
	KindTruncatedBuffer    Kind = "truncated_buffer"
	KindUnexpectedType     Kind = "unexpected_type"
	KindMalformedContainer Kind = "malformed_container"

	KindInvalidURID  Kind = "invalid_urid"
	KindInvalidInput Kind = "invalid_input"
)

// Error is the structured error type used throughout the codec
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Offset int64 // byte offset into the buffer, -1 when not applicable
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Offset sets the buffer offset the error refers to
func (b *Builder) Offset(off uint32) *Builder {
	b.err.Offset = int64(off)
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OutOfSpace reports a reservation that exceeded the buffer capacity.
func OutOfSpace(need, have uint32) *Error {
	return &Error{
		Phase:  PhaseForge,
		Kind:   KindOutOfSpace,
		Offset: -1,
		Detail: fmt.Sprintf("need %d bytes, %d remaining", need, have),
	}
}

// FrameUnderflow reports a Pop with no open frame.
func FrameUnderflow() *Error {
	return &Error{
		Phase:  PhaseForge,
		Kind:   KindFrameUnderflow,
		Offset: -1,
		Detail: "pop with no open frame",
	}
}

// FrameMismatch reports a write that is invalid in the current frame.
func FrameMismatch(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseForge,
		Kind:   KindFrameMismatch,
		Offset: -1,
		Detail: detail,
	}
}

// Usage reports a violation of a writer pairing rule, such as a
// timestamp without a following value.
func Usage(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseForge,
		Kind:   KindUsage,
		Offset: -1,
		Detail: detail,
	}
}

// Truncated reports that fewer bytes are available than required.
func Truncated(phase Phase, off uint32, need, have uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncatedBuffer,
		Offset: int64(off),
		Detail: fmt.Sprintf("need %d bytes, %d available", need, have),
	}
}

// UnexpectedType reports a type tag that does not match the requested kind.
func UnexpectedType(off uint32, got, want uint32) *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindUnexpectedType,
		Offset: int64(off),
		Detail: fmt.Sprintf("type %d, want %d", got, want),
	}
}

// Malformed reports a container whose declared layout is inconsistent.
func Malformed(off uint32, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindMalformedContainer,
		Offset: int64(off),
		Detail: detail,
	}
}

// InvalidURID reports a zero or unknown URID where a valid one is required.
func InvalidURID(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidURID,
		Offset: -1,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: -1,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}
