package codec

import (
	"math"

	"github.com/plugkit/atom"
)

type URID = atom.URID

// Header is the 8-byte self-description prefixing every atom: the type
// URID followed by the exact byte length of the body. The body length
// excludes the header and the padding that brings the next atom to an
// 8-byte boundary.
type Header struct {
	Type URID
	Size uint32
}

// MaxFrameDepth bounds container nesting in the Forge. The frame stack
// is a fixed array so that pushing frames never allocates.
const MaxFrameDepth = 32

// Unit is the timestamp unit of a sequence, fixed for the whole
// sequence when it is pushed.
type Unit uint8

const (
	UnitFrames Unit = iota // integer audio frame counts
	UnitBeats              // fractional musical beats
)

func (u Unit) String() string {
	if u == UnitBeats {
		return "beats"
	}
	return "frames"
}

// Timestamp is one event time in a sequence, interpreted per the
// sequence's Unit.
type Timestamp struct {
	Frames int64
	Beats  float64
	Unit   Unit
}

// FrameTimestamp returns a frame-unit timestamp.
func FrameTimestamp(frames int64) Timestamp {
	return Timestamp{Unit: UnitFrames, Frames: frames}
}

// BeatTimestamp returns a beat-unit timestamp.
func BeatTimestamp(beats float64) Timestamp {
	return Timestamp{Unit: UnitBeats, Beats: beats}
}

// Before reports whether t strictly precedes o. Timestamps of
// different units are not comparable and report false.
func (t Timestamp) Before(o Timestamp) bool {
	if t.Unit != o.Unit {
		return false
	}
	if t.Unit == UnitBeats {
		return t.Beats < o.Beats
	}
	return t.Frames < o.Frames
}

// bits returns the 8-byte wire encoding of the timestamp.
func (t Timestamp) bits() uint64 {
	if t.Unit == UnitBeats {
		return math.Float64bits(t.Beats)
	}
	return uint64(t.Frames)
}

// timestampFromBits decodes an 8-byte wire timestamp per unit.
func timestampFromBits(bits uint64, unit Unit) Timestamp {
	if unit == UnitBeats {
		return Timestamp{Unit: UnitBeats, Beats: math.Float64frombits(bits)}
	}
	return Timestamp{Unit: UnitFrames, Frames: int64(bits)}
}
