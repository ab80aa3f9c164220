package codec

import (
	stderrors "errors"
	"testing"

	"github.com/plugkit/atom/errors"
)

func TestForgeTupleScalars(t *testing.T) {
	types := newTestTypes(t)
	out := encode(t, types, 64, func(f *Forge) {
		if err := f.PushTuple(); err != nil {
			t.Fatalf("PushTuple: %v", err)
		}
		if err := f.WriteInt32(42); err != nil {
			t.Fatalf("WriteInt32: %v", err)
		}
		if err := f.WriteFloat32(0.5); err != nil {
			t.Fatalf("WriteFloat32: %v", err)
		}
		if err := f.Pop(); err != nil {
			t.Fatalf("Pop: %v", err)
		}
	})

	// tuple header 8 + two scalar atoms of 16 padded bytes each
	if len(out) != 40 {
		t.Fatalf("encoded length = %d, want 40", len(out))
	}

	r := NewReader(types, out)
	a, err := r.Atom(0)
	if err != nil {
		t.Fatalf("Atom: %v", err)
	}
	if a.Type() != types.Tuple || a.Size() != 32 {
		t.Fatalf("header = {%d %d}, want {%d 32}", a.Type(), a.Size(), types.Tuple)
	}

	it, err := a.Tuple()
	if err != nil {
		t.Fatalf("Tuple: %v", err)
	}
	first, ok := it.Next()
	if !ok {
		t.Fatal("first child missing")
	}
	if v, err := first.Int32(); err != nil || v != 42 {
		t.Fatalf("first = %d, %v, want 42", v, err)
	}
	second, ok := it.Next()
	if !ok {
		t.Fatal("second child missing")
	}
	if v, err := second.Float32(); err != nil || v != 0.5 {
		t.Fatalf("second = %v, %v, want 0.5", v, err)
	}
	if _, ok := it.Next(); ok {
		t.Fatal("unexpected third child")
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iter err: %v", err)
	}
}

func TestForgeScalarEncodings(t *testing.T) {
	types := newTestTypes(t)

	tests := []struct {
		name  string
		write func(f *Forge) error
		check func(t *testing.T, a Atom)
	}{
		{
			name:  "int64",
			write: func(f *Forge) error { return f.WriteInt64(-1 << 40) },
			check: func(t *testing.T, a Atom) {
				if a.Size() != 8 {
					t.Fatalf("size = %d, want 8", a.Size())
				}
				if v, err := a.Int64(); err != nil || v != -1<<40 {
					t.Fatalf("value = %d, %v", v, err)
				}
			},
		},
		{
			name:  "float64",
			write: func(f *Forge) error { return f.WriteFloat64(3.25) },
			check: func(t *testing.T, a Atom) {
				if v, err := a.Float64(); err != nil || v != 3.25 {
					t.Fatalf("value = %v, %v", v, err)
				}
			},
		},
		{
			name:  "bool true",
			write: func(f *Forge) error { return f.WriteBool(true) },
			check: func(t *testing.T, a Atom) {
				if a.Size() != 4 {
					t.Fatalf("size = %d, want 4", a.Size())
				}
				if v, err := a.Bool(); err != nil || !v {
					t.Fatalf("value = %v, %v", v, err)
				}
			},
		},
		{
			name:  "urid",
			write: func(f *Forge) error { return f.WriteURID(7) },
			check: func(t *testing.T, a Atom) {
				if v, err := a.URID(); err != nil || v != 7 {
					t.Fatalf("value = %d, %v", v, err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := encode(t, types, 64, func(f *Forge) {
				if err := tt.write(f); err != nil {
					t.Fatalf("write: %v", err)
				}
			})
			if len(out)%8 != 0 {
				t.Fatalf("length %d not 8-aligned", len(out))
			}
			a, err := NewReader(types, out).Atom(0)
			if err != nil {
				t.Fatalf("Atom: %v", err)
			}
			tt.check(t, a)
		})
	}
}

func TestForgeOutOfSpaceIsSticky(t *testing.T) {
	types := newTestTypes(t)
	f := NewForge(types)
	f.Reset(make([]byte, 16))

	if err := f.PushVector(types.Int, 4); err != nil {
		t.Fatalf("PushVector: %v", err)
	}
	vals := make([]int32, 1000)
	err := f.VectorInt32s(vals)
	if err == nil {
		t.Fatal("expected out_of_space")
	}
	if !stderrors.Is(err, errors.OutOfSpace(0, 0)) {
		t.Fatalf("kind = %v, want out_of_space", err)
	}

	// the same fault comes back from every later call
	if got := f.VectorInt32s(vals[:1]); got != err {
		t.Fatalf("second write err = %v, want sticky %v", got, err)
	}
	if got := f.Pop(); got != err {
		t.Fatalf("Pop err = %v, want sticky %v", got, err)
	}
	if _, got := f.Finish(); got != err {
		t.Fatalf("Finish err = %v, want sticky %v", got, err)
	}
	if f.Err() != err {
		t.Fatalf("Err = %v, want %v", f.Err(), err)
	}

	// Reset clears the fault
	f.Reset(make([]byte, 64))
	if f.Err() != nil {
		t.Fatalf("Err after Reset = %v", f.Err())
	}
	if err := f.WriteInt32(1); err != nil {
		t.Fatalf("write after Reset: %v", err)
	}
}

func TestForgeUsageErrorsAreNotSticky(t *testing.T) {
	types := newTestTypes(t)
	f := NewForge(types)
	f.Reset(make([]byte, 128))

	if err := f.Pop(); !stderrors.Is(err, errors.FrameUnderflow()) {
		t.Fatalf("Pop on empty stack = %v, want frame_underflow", err)
	}
	// the forge is still usable
	if err := f.WriteInt32(1); err != nil {
		t.Fatalf("write after underflow: %v", err)
	}
	if _, err := f.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestForgePairingRules(t *testing.T) {
	types := newTestTypes(t)

	tests := []struct {
		name string
		run  func(f *Forge) error
		kind errors.Kind
	}{
		{
			name: "object value without property",
			run: func(f *Forge) error {
				if err := f.PushObject(0, 9); err != nil {
					return err
				}
				return f.WriteInt32(1)
			},
			kind: errors.KindUsage,
		},
		{
			name: "property without closing value",
			run: func(f *Forge) error {
				if err := f.PushObject(0, 9); err != nil {
					return err
				}
				if err := f.Property(5, 0); err != nil {
					return err
				}
				return f.Pop()
			},
			kind: errors.KindUsage,
		},
		{
			name: "two properties back to back",
			run: func(f *Forge) error {
				if err := f.PushObject(0, 9); err != nil {
					return err
				}
				if err := f.Property(5, 0); err != nil {
					return err
				}
				return f.Property(6, 0)
			},
			kind: errors.KindUsage,
		},
		{
			name: "sequence value without timestamp",
			run: func(f *Forge) error {
				if err := f.PushSequence(UnitFrames); err != nil {
					return err
				}
				return f.WriteInt32(1)
			},
			kind: errors.KindUsage,
		},
		{
			name: "timestamp unit mismatch",
			run: func(f *Forge) error {
				if err := f.PushSequence(UnitFrames); err != nil {
					return err
				}
				return f.BeatTime(1.5)
			},
			kind: errors.KindUsage,
		},
		{
			name: "atom write inside vector",
			run: func(f *Forge) error {
				if err := f.PushVector(types.Int, 4); err != nil {
					return err
				}
				return f.WriteInt32(1)
			},
			kind: errors.KindFrameMismatch,
		},
		{
			name: "vector element width mismatch",
			run: func(f *Forge) error {
				if err := f.PushVector(types.Int, 4); err != nil {
					return err
				}
				return f.VectorElement(make([]byte, 8))
			},
			kind: errors.KindUsage,
		},
		{
			name: "property outside object",
			run: func(f *Forge) error {
				if err := f.PushTuple(); err != nil {
					return err
				}
				return f.Property(5, 0)
			},
			kind: errors.KindFrameMismatch,
		},
		{
			name: "timestamp outside sequence",
			run: func(f *Forge) error {
				return f.FrameTime(0)
			},
			kind: errors.KindFrameMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForge(types)
			f.Reset(make([]byte, 256))
			err := tt.run(f)
			if err == nil {
				t.Fatal("expected error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Kind != tt.kind {
				t.Fatalf("err = %v, want kind %v", err, tt.kind)
			}
			if f.Err() != nil {
				t.Fatalf("usage error became sticky: %v", f.Err())
			}
		})
	}
}

func TestForgeDepthLimit(t *testing.T) {
	types := newTestTypes(t)
	f := NewForge(types)
	f.Reset(make([]byte, 4096))

	for i := 0; i < MaxFrameDepth; i++ {
		if err := f.PushTuple(); err != nil {
			t.Fatalf("PushTuple %d: %v", i, err)
		}
	}
	err := f.PushTuple()
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindFrameOverflow {
		t.Fatalf("err = %v, want frame_overflow", err)
	}

	for i := 0; i < MaxFrameDepth; i++ {
		if err := f.Pop(); err != nil {
			t.Fatalf("Pop %d: %v", i, err)
		}
	}
	if _, err := f.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestForgeFinishWithOpenFrames(t *testing.T) {
	types := newTestTypes(t)
	f := NewForge(types)
	f.Reset(make([]byte, 64))
	if err := f.PushTuple(); err != nil {
		t.Fatalf("PushTuple: %v", err)
	}
	if _, err := f.Finish(); err == nil {
		t.Fatal("Finish with an open frame must fail")
	}
}

func TestForgeRejectsBadInputs(t *testing.T) {
	types := newTestTypes(t)
	f := NewForge(types)
	f.Reset(make([]byte, 64))

	if err := f.WriteURID(0); err == nil {
		t.Fatal("zero URID accepted")
	}
	if err := f.WriteString("a\x00b"); err == nil {
		t.Fatal("interior NUL accepted")
	}
	if err := f.PushVector(0, 4); err == nil {
		t.Fatal("zero vector child type accepted")
	}
	if err := f.PushVector(types.Int, 0); err == nil {
		t.Fatal("zero vector child size accepted")
	}
	if err := f.Property(1, 0); err == nil {
		t.Fatal("property outside object accepted")
	}
}

// Every atom header in a buffer must sit on an 8-byte boundary. Walk a
// deliberately ragged mix of body sizes and check.
func TestForgeAlignmentInvariant(t *testing.T) {
	types := newTestTypes(t)
	out := encode(t, types, 512, func(f *Forge) {
		mustOK(t, f.PushTuple())
		mustOK(t, f.WriteString("abc"))   // body 4
		mustOK(t, f.WriteString("abcde")) // body 6
		mustOK(t, f.WriteChunk([]byte{1, 2, 3}))
		mustOK(t, f.WriteInt32(1))
		mustOK(t, f.WriteLiteral(0, 3, "hi"))
		mustOK(t, f.PushTuple())
		mustOK(t, f.WriteBool(false))
		mustOK(t, f.Pop())
		mustOK(t, f.Pop())
	})

	r := NewReader(types, out)
	var walk func(a Atom)
	walk = func(a Atom) {
		if a.Offset()%8 != 0 {
			t.Fatalf("atom at offset %d not 8-aligned", a.Offset())
		}
		if a.Type() != types.Tuple {
			return
		}
		it, err := a.Tuple()
		if err != nil {
			t.Fatalf("Tuple at %d: %v", a.Offset(), err)
		}
		for child, ok := it.Next(); ok; child, ok = it.Next() {
			walk(child)
		}
		if err := it.Err(); err != nil {
			t.Fatalf("iter at %d: %v", a.Offset(), err)
		}
	}
	a, err := r.Atom(0)
	if err != nil {
		t.Fatalf("Atom: %v", err)
	}
	walk(a)
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("forge op: %v", err)
	}
}

func TestForgeWriteScalarRoundTrip(t *testing.T) {
	types := newTestTypes(t)
	src := encode(t, types, 64, func(f *Forge) {
		mustOK(t, f.WriteFloat64(2.5))
	})
	s, err := NewReader(types, src).Scalar(0)
	if err != nil {
		t.Fatalf("Scalar: %v", err)
	}

	dst := encode(t, types, 64, func(f *Forge) {
		mustOK(t, f.WriteScalar(s))
	})
	if string(dst) != string(src) {
		t.Fatal("re-emitted scalar differs from source bytes")
	}

	// a mangled kind tag is rejected
	s.Kind = ScalarInt32
	f := NewForge(types)
	f.Reset(make([]byte, 64))
	if err := f.WriteScalar(s); err == nil {
		t.Fatal("mismatched scalar kind accepted")
	}
}

func BenchmarkForgeTupleScalars(b *testing.B) {
	types, err := MapCore(newTestMapper())
	if err != nil {
		b.Fatal(err)
	}
	buf := make([]byte, 256)
	f := NewForge(types)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Reset(buf)
		f.PushTuple()
		f.WriteInt32(int32(i))
		f.WriteFloat64(0.5)
		f.Pop()
		if _, err := f.Finish(); err != nil {
			b.Fatal(err)
		}
	}
}
