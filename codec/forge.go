package codec

import (
	"math"

	"github.com/plugkit/atom/codec/internal/wire"
	"github.com/plugkit/atom/errors"
)

type frameKind uint8

const (
	frameTuple frameKind = iota + 1
	frameVector
	frameObject
	frameSequence
)

func (k frameKind) String() string {
	switch k {
	case frameTuple:
		return "tuple"
	case frameVector:
		return "vector"
	case frameObject:
		return "object"
	case frameSequence:
		return "sequence"
	}
	return "invalid"
}

// frame records one open container: where its size field lives so Pop
// can back-patch it, where its body starts, and the vector/sequence
// constraints locked at push time.
type frame struct {
	kind      frameKind
	sizeOff   uint32
	bodyStart uint32
	childType URID   // vector element type
	childSize uint32 // vector element width
	unit      Unit   // sequence timestamp unit
	pending   bool   // object: property awaits value; sequence: timestamp awaits value
}

// Forge appends atoms to a caller-supplied fixed-capacity buffer. It
// owns only its cursor and frame stack; the payload is plain bytes in
// the caller's buffer. The forge never reads prior buffer contents and
// never allocates after construction.
//
// Space accounting is sticky: the first write that does not fit records
// an out_of_space fault and every subsequent operation returns that
// same fault until Reset. The in-flight atom is then invalid and must
// be rebuilt at a larger capacity, never patched over.
//
// A Forge is not safe for concurrent use.
type Forge struct {
	types  CoreTypes
	buf    []byte
	cursor uint32
	fault  error
	depth  int
	frames [MaxFrameDepth]frame
}

// NewForge returns a forge with no buffer attached; call Reset before
// writing.
func NewForge(types CoreTypes) *Forge {
	return &Forge{types: types}
}

// Reset points the forge at buf, rewinds the cursor, drops all open
// frames and clears any sticky fault.
func (f *Forge) Reset(buf []byte) {
	f.buf = buf
	f.cursor = 0
	f.depth = 0
	f.fault = nil
}

// Err returns the sticky fault, if any.
func (f *Forge) Err() error {
	return f.fault
}

// Depth returns the number of open container frames. A top-level atom
// is complete only when Depth returns 0.
func (f *Forge) Depth() int {
	return f.depth
}

// Len returns the number of buffer bytes written so far.
func (f *Forge) Len() uint32 {
	return f.cursor
}

// reserve is the sole space-accounting primitive. Every write reserves
// its exact byte count before touching the buffer.
func (f *Forge) reserve(n uint32) error {
	have := uint32(len(f.buf)) - f.cursor
	if n > have {
		f.fault = errors.OutOfSpace(n, have)
		return f.fault
	}
	return nil
}

// beginValue enforces the container rules for the next complete atom:
// no atoms inside a vector, and object/sequence atoms only after their
// property header or timestamp.
func (f *Forge) beginValue() error {
	if f.depth == 0 {
		return nil
	}
	top := &f.frames[f.depth-1]
	switch top.kind {
	case frameVector:
		return errors.FrameMismatch("atom write inside a vector; use VectorElement")
	case frameObject:
		if !top.pending {
			return errors.Usage("object value without a preceding property")
		}
	case frameSequence:
		if !top.pending {
			return errors.Usage("sequence value without a preceding timestamp")
		}
	}
	return nil
}

// endValue consumes the pending property/timestamp once its value has
// been written.
func (f *Forge) endValue() {
	if f.depth > 0 {
		f.frames[f.depth-1].pending = false
	}
}

// writeHeader writes an atom header at the cursor. Space must already
// be reserved.
func (f *Forge) writeHeader(typ URID, size uint32) {
	wire.ByteOrder.PutUint32(f.buf[f.cursor:], uint32(typ))
	wire.ByteOrder.PutUint32(f.buf[f.cursor+4:], size)
	f.cursor += wire.HeaderSize
}

// zeroPad writes n zero bytes at the cursor. Space must already be
// reserved.
func (f *Forge) zeroPad(n uint32) {
	for i := uint32(0); i < n; i++ {
		f.buf[f.cursor+i] = 0
	}
	f.cursor += n
}

// atomTotal returns header + body + trailing padding for a body size,
// reporting overflow.
func atomTotal(size uint32) (uint32, bool) {
	padded, ok := wire.Padded(size)
	if !ok {
		return 0, false
	}
	return wire.SafeAddU32(wire.HeaderSize, padded)
}

// writeScalarAtom writes one complete fixed-width scalar atom.
func (f *Forge) writeScalarAtom(typ URID, width uint32, bits uint64) error {
	if f.fault != nil {
		return f.fault
	}
	if err := f.beginValue(); err != nil {
		return err
	}
	total, _ := atomTotal(width)
	if err := f.reserve(total); err != nil {
		return err
	}
	f.writeHeader(typ, width)
	putScalarBits(f.buf[f.cursor:], width, bits)
	f.cursor += width
	f.zeroPad(wire.Pad(width))
	f.endValue()
	return nil
}

// WriteInt32 writes a 32-bit signed integer atom.
func (f *Forge) WriteInt32(v int32) error {
	return f.writeScalarAtom(f.types.Int, 4, uint64(uint32(v)))
}

// WriteInt64 writes a 64-bit signed integer atom.
func (f *Forge) WriteInt64(v int64) error {
	return f.writeScalarAtom(f.types.Long, 8, uint64(v))
}

// WriteFloat32 writes an IEEE 754 single-precision atom.
func (f *Forge) WriteFloat32(v float32) error {
	return f.writeScalarAtom(f.types.Float, 4, uint64(math.Float32bits(v)))
}

// WriteFloat64 writes an IEEE 754 double-precision atom.
func (f *Forge) WriteFloat64(v float64) error {
	return f.writeScalarAtom(f.types.Double, 8, math.Float64bits(v))
}

// WriteBool writes a boolean atom, stored as a 32-bit 0/1.
func (f *Forge) WriteBool(v bool) error {
	var bits uint64
	if v {
		bits = 1
	}
	return f.writeScalarAtom(f.types.Bool, 4, bits)
}

// WriteURID writes a URID atom. The zero URID means "absent" and is
// not a writable value.
func (f *Forge) WriteURID(id URID) error {
	if id == 0 {
		return errors.InvalidURID(errors.PhaseForge, "URID atom value must be nonzero")
	}
	return f.writeScalarAtom(f.types.URID, 4, uint64(uint32(id)))
}

// WriteScalar re-emits a decoded scalar, preserving its type tag and
// payload bit-exactly.
func (f *Forge) WriteScalar(s Scalar) error {
	kind, ok := f.types.scalarKind(s.Type)
	if !ok || kind != s.Kind {
		return errors.Usage("scalar kind %s does not match type %d", s.Kind, s.Type)
	}
	width, _ := f.types.scalarSize(s.Type)
	return f.writeScalarAtom(s.Type, width, s.Bits)
}

// writeBytesAtom writes one complete atom whose body is payload plus
// nul trailing NUL bytes.
func (f *Forge) writeBytesAtom(typ URID, prefix []byte, payload []byte, nul uint32) error {
	if f.fault != nil {
		return f.fault
	}
	if err := f.beginValue(); err != nil {
		return err
	}
	size := uint32(len(prefix)) + uint32(len(payload)) + nul
	if uint64(len(prefix))+uint64(len(payload))+uint64(nul) > math.MaxUint32 {
		f.fault = errors.OutOfSpace(math.MaxUint32, uint32(len(f.buf))-f.cursor)
		return f.fault
	}
	total, ok := atomTotal(size)
	if !ok {
		f.fault = errors.OutOfSpace(math.MaxUint32, uint32(len(f.buf))-f.cursor)
		return f.fault
	}
	if err := f.reserve(total); err != nil {
		return err
	}
	f.writeHeader(typ, size)
	copy(f.buf[f.cursor:], prefix)
	f.cursor += uint32(len(prefix))
	copy(f.buf[f.cursor:], payload)
	f.cursor += uint32(len(payload))
	f.zeroPad(nul + wire.Pad(size))
	f.endValue()
	return nil
}

// WriteString writes a UTF-8 string atom. The body is the text plus a
// terminating NUL, which is included in the body size. Interior NUL
// bytes are rejected since they would not survive a round trip.
func (f *Forge) WriteString(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return errors.Usage("string contains interior NUL")
		}
	}
	return f.writeBytesAtom(f.types.String, nil, []byte(s), 1)
}

// WriteChunk writes an opaque byte-string atom.
func (f *Forge) WriteChunk(b []byte) error {
	return f.writeBytesAtom(f.types.Chunk, nil, b, 0)
}

// WriteLiteral writes a literal atom: a text body qualified by a
// datatype URID or a language URID (either may be zero).
func (f *Forge) WriteLiteral(datatype, lang URID, text string) error {
	for i := 0; i < len(text); i++ {
		if text[i] == 0 {
			return errors.Usage("literal contains interior NUL")
		}
	}
	var prefix [8]byte
	wire.ByteOrder.PutUint32(prefix[0:], uint32(datatype))
	wire.ByteOrder.PutUint32(prefix[4:], uint32(lang))
	return f.writeBytesAtom(f.types.Literal, prefix[:], []byte(text), 1)
}

// WriteOpaque forwards an atom of arbitrary type with the given body,
// for values the caller cannot or need not interpret.
func (f *Forge) WriteOpaque(typ URID, body []byte) error {
	if typ == 0 {
		return errors.InvalidURID(errors.PhaseForge, "opaque atom type must be nonzero")
	}
	return f.writeBytesAtom(typ, nil, body, 0)
}

// pushFrame opens a container atom: header now, body size back-patched
// on Pop. extra is the container's own body prefix, written immediately.
func (f *Forge) pushFrame(kind frameKind, typ URID, extra []byte) (*frame, error) {
	if f.fault != nil {
		return nil, f.fault
	}
	if f.depth == MaxFrameDepth {
		return nil, errors.New(errors.PhaseForge, errors.KindFrameOverflow).
			Detail("nesting deeper than %d frames", MaxFrameDepth).
			Build()
	}
	if err := f.beginValue(); err != nil {
		return nil, err
	}
	if err := f.reserve(wire.HeaderSize + uint32(len(extra))); err != nil {
		return nil, err
	}
	f.endValue()

	off := f.cursor
	f.writeHeader(typ, 0)
	copy(f.buf[f.cursor:], extra)
	f.cursor += uint32(len(extra))

	fr := &f.frames[f.depth]
	*fr = frame{
		kind:      kind,
		sizeOff:   off + 4,
		bodyStart: off + wire.HeaderSize,
	}
	f.depth++
	return fr, nil
}

// PushTuple opens a tuple frame. Any sequence of complete atom writes
// may follow, then Pop.
func (f *Forge) PushTuple() error {
	_, err := f.pushFrame(frameTuple, f.types.Tuple, nil)
	return err
}

// PushVector opens a vector frame of homogeneous childSize-byte
// elements. Only VectorElement (and the typed element helpers) may
// write inside it.
func (f *Forge) PushVector(childType URID, childSize uint32) error {
	if childType == 0 {
		return errors.InvalidURID(errors.PhaseForge, "vector child type must be nonzero")
	}
	if childSize == 0 {
		return errors.Usage("vector child size must be nonzero")
	}
	var body [8]byte
	wire.ByteOrder.PutUint32(body[0:], childSize)
	wire.ByteOrder.PutUint32(body[4:], uint32(childType))
	fr, err := f.pushFrame(frameVector, f.types.Vector, body[:])
	if err != nil {
		return err
	}
	fr.childType = childType
	fr.childSize = childSize
	return nil
}

// VectorElement appends one element to the open vector frame. The
// element width is locked to the child size given at PushVector.
func (f *Forge) VectorElement(b []byte) error {
	if f.fault != nil {
		return f.fault
	}
	if f.depth == 0 || f.frames[f.depth-1].kind != frameVector {
		return errors.FrameMismatch("VectorElement outside a vector frame")
	}
	top := &f.frames[f.depth-1]
	if uint32(len(b)) != top.childSize {
		return errors.Usage("vector element is %d bytes, child size is %d", len(b), top.childSize)
	}
	if err := f.reserve(top.childSize); err != nil {
		return err
	}
	copy(f.buf[f.cursor:], b)
	f.cursor += top.childSize
	return nil
}

// vectorRun bulk-appends count elements of width bytes via put, after
// checking the locked child type.
func (f *Forge) vectorRun(childType URID, width uint32, count int, put func(dst []byte, i int)) error {
	if f.fault != nil {
		return f.fault
	}
	if f.depth == 0 || f.frames[f.depth-1].kind != frameVector {
		return errors.FrameMismatch("vector elements outside a vector frame")
	}
	top := &f.frames[f.depth-1]
	if top.childType != childType || top.childSize != width {
		return errors.Usage("element run type does not match vector child (%d/%d)", top.childType, top.childSize)
	}
	n, ok := wire.SafeMulU32(width, uint32(count))
	if !ok {
		f.fault = errors.OutOfSpace(math.MaxUint32, uint32(len(f.buf))-f.cursor)
		return f.fault
	}
	if err := f.reserve(n); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		put(f.buf[f.cursor:], i)
		f.cursor += width
	}
	return nil
}

// VectorInt32s appends a run of Int elements to the open vector frame.
func (f *Forge) VectorInt32s(vals []int32) error {
	return f.vectorRun(f.types.Int, 4, len(vals), func(dst []byte, i int) {
		wire.ByteOrder.PutUint32(dst, uint32(vals[i]))
	})
}

// VectorFloat32s appends a run of Float elements to the open vector frame.
func (f *Forge) VectorFloat32s(vals []float32) error {
	return f.vectorRun(f.types.Float, 4, len(vals), func(dst []byte, i int) {
		wire.ByteOrder.PutUint32(dst, math.Float32bits(vals[i]))
	})
}

// VectorFloat64s appends a run of Double elements to the open vector frame.
func (f *Forge) VectorFloat64s(vals []float64) error {
	return f.vectorRun(f.types.Double, 8, len(vals), func(dst []byte, i int) {
		wire.ByteOrder.PutUint64(dst, math.Float64bits(vals[i]))
	})
}

// PushObject opens an object frame. id distinguishes instances and may
// be zero; otype is the object's class URID. Each property is written
// as Property followed by exactly one value atom.
func (f *Forge) PushObject(id, otype URID) error {
	var body [8]byte
	wire.ByteOrder.PutUint32(body[0:], uint32(id))
	wire.ByteOrder.PutUint32(body[4:], uint32(otype))
	_, err := f.pushFrame(frameObject, f.types.Object, body[:])
	return err
}

// Property writes a property header into the open object frame. The
// next write must be the property's value atom. context qualifies the
// property and is usually zero.
func (f *Forge) Property(key, context URID) error {
	if f.fault != nil {
		return f.fault
	}
	if f.depth == 0 || f.frames[f.depth-1].kind != frameObject {
		return errors.FrameMismatch("Property outside an object frame")
	}
	if key == 0 {
		return errors.InvalidURID(errors.PhaseForge, "property key must be nonzero")
	}
	top := &f.frames[f.depth-1]
	if top.pending {
		return errors.Usage("property without a value for the previous property")
	}
	if err := f.reserve(8); err != nil {
		return err
	}
	wire.ByteOrder.PutUint32(f.buf[f.cursor:], uint32(key))
	wire.ByteOrder.PutUint32(f.buf[f.cursor+4:], uint32(context))
	f.cursor += 8
	top.pending = true
	return nil
}

// PushSequence opens a sequence frame whose timestamps are all
// measured in unit. Each event is a timestamp write followed by exactly
// one value atom. The forge does not require timestamps to be
// monotonic; readers can check with SequenceView.IsMonotonic.
func (f *Forge) PushSequence(unit Unit) error {
	unitURID := f.types.FrameUnit
	if unit == UnitBeats {
		unitURID = f.types.BeatUnit
	}
	var body [8]byte
	wire.ByteOrder.PutUint32(body[0:], uint32(unitURID))
	fr, err := f.pushFrame(frameSequence, f.types.Sequence, body[:])
	if err != nil {
		return err
	}
	fr.unit = unit
	return nil
}

// writeTimestamp writes the 8-byte event stamp shared by FrameTime and
// BeatTime.
func (f *Forge) writeTimestamp(unit Unit, bits uint64) error {
	if f.fault != nil {
		return f.fault
	}
	if f.depth == 0 || f.frames[f.depth-1].kind != frameSequence {
		return errors.FrameMismatch("timestamp outside a sequence frame")
	}
	top := &f.frames[f.depth-1]
	if top.unit != unit {
		return errors.Usage("%s timestamp in a %s sequence", unit, top.unit)
	}
	if top.pending {
		return errors.Usage("timestamp without a value for the previous timestamp")
	}
	if err := f.reserve(8); err != nil {
		return err
	}
	wire.ByteOrder.PutUint64(f.buf[f.cursor:], bits)
	f.cursor += 8
	top.pending = true
	return nil
}

// FrameTime stamps the next event with an audio frame count.
func (f *Forge) FrameTime(frames int64) error {
	return f.writeTimestamp(UnitFrames, uint64(frames))
}

// BeatTime stamps the next event with a musical beat position.
func (f *Forge) BeatTime(beats float64) error {
	return f.writeTimestamp(UnitBeats, math.Float64bits(beats))
}

// Pop closes the innermost open frame: the container's body size is
// back-patched into its header and padding restores 8-byte alignment
// for whatever follows.
func (f *Forge) Pop() error {
	if f.fault != nil {
		return f.fault
	}
	if f.depth == 0 {
		return errors.FrameUnderflow()
	}
	top := &f.frames[f.depth-1]
	if top.pending {
		if top.kind == frameSequence {
			return errors.Usage("pop with a timestamp awaiting its value")
		}
		return errors.Usage("pop with a property awaiting its value")
	}
	wire.ByteOrder.PutUint32(f.buf[top.sizeOff:], f.cursor-top.bodyStart)
	if pad := wire.Pad(f.cursor); pad != 0 {
		if err := f.reserve(pad); err != nil {
			return err
		}
		f.zeroPad(pad)
	}
	f.depth--
	return nil
}

// Finish returns the encoded bytes. It fails if a fault is pending or
// frames remain open; the buffer contents are then incomplete and must
// not be handed to a reader.
func (f *Forge) Finish() ([]byte, error) {
	if f.fault != nil {
		return nil, f.fault
	}
	if f.depth != 0 {
		return nil, errors.Usage("%d frames still open", f.depth)
	}
	return f.buf[:f.cursor], nil
}
