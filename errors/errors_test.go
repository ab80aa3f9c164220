package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseRead,
				Kind:   KindTruncatedBuffer,
				Offset: 24,
				Detail: "need 8 bytes, 3 available",
			},
			contains: []string{"[read]", "truncated_buffer", "offset 24", "need 8 bytes"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseForge,
				Kind:   KindOutOfSpace,
				Offset: -1,
			},
			contains: []string{"[forge]", "out_of_space"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseBridge,
				Kind:   KindInvalidInput,
				Offset: -1,
				Detail: "unreadable value",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[bridge]", "invalid_input", "unreadable value", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_OffsetOmittedWhenUnset(t *testing.T) {
	err := OutOfSpace(100, 64)
	if strings.Contains(err.Error(), "offset") {
		t.Errorf("error without offset rendered one: %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseRead, KindMalformedContainer, cause, "child overruns container")
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find wrapped cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	a := Truncated(PhaseRead, 0, 8, 0)
	b := Truncated(PhaseRead, 99, 4, 1)
	c := Malformed(0, "bad")

	if !errors.Is(a, b) {
		t.Error("errors with same phase and kind should match")
	}
	if errors.Is(a, c) {
		t.Error("errors with different kinds should not match")
	}
	if errors.Is(a, errors.New("plain")) {
		t.Error("structured error should not match plain error")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseForge, KindUsage).
		Offset(16).
		Detail("timestamp %d without a value", 3).
		Build()

	if err.Phase != PhaseForge || err.Kind != KindUsage {
		t.Errorf("builder lost phase/kind: %+v", err)
	}
	if err.Offset != 16 {
		t.Errorf("builder lost offset: %d", err.Offset)
	}
	if !strings.Contains(err.Detail, "timestamp 3") {
		t.Errorf("builder did not format detail: %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"out_of_space", OutOfSpace(16, 8), KindOutOfSpace},
		{"frame_underflow", FrameUnderflow(), KindFrameUnderflow},
		{"frame_mismatch", FrameMismatch("scalar write inside vector"), KindFrameMismatch},
		{"usage", Usage("value without timestamp"), KindUsage},
		{"truncated", Truncated(PhaseRead, 8, 8, 4), KindTruncatedBuffer},
		{"unexpected_type", UnexpectedType(0, 7, 3), KindUnexpectedType},
		{"malformed", Malformed(8, "element run mismatch"), KindMalformedContainer},
		{"invalid_urid", InvalidURID(PhaseForge, "zero child type"), KindInvalidURID},
		{"invalid_input", InvalidInput(PhaseRegistry, "empty URI"), KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("got kind %q, want %q", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty error message")
			}
		})
	}
}
