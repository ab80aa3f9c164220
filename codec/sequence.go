package codec

import (
	"github.com/plugkit/atom/codec/internal/wire"
	"github.com/plugkit/atom/errors"
)

// SequenceView is a view of a Sequence atom: timestamped events on a
// single time unit, frames or beats.
type SequenceView struct {
	r     *Reader
	unit  Unit
	start uint32
	end   uint32
	off   uint32
}

// Sequence parses the atom as a sequence.
func (a Atom) Sequence() (SequenceView, error) {
	if a.hdr.Type != a.r.types.Sequence {
		return SequenceView{}, errors.UnexpectedType(a.off, uint32(a.hdr.Type), uint32(a.r.types.Sequence))
	}
	body := a.Body()
	if len(body) < 8 {
		return SequenceView{}, errors.Malformed(a.off, "sequence body shorter than its 8-byte header")
	}
	unit := UnitFrames
	if URID(wire.ByteOrder.Uint32(body[0:])) == a.r.types.BeatUnit {
		unit = UnitBeats
	}
	bodyOff := a.off + wire.HeaderSize
	return SequenceView{
		r:     a.r,
		unit:  unit,
		start: bodyOff + 8,
		end:   bodyOff + a.hdr.Size,
		off:   a.off,
	}, nil
}

// Unit returns the sequence's time unit.
func (s SequenceView) Unit() Unit {
	return s.unit
}

// Iter returns an event iterator. Calling Iter again restarts from the
// first event.
func (s SequenceView) Iter() SequenceIter {
	return SequenceIter{r: s.r, unit: s.unit, next: s.start, end: s.end}
}

// IsMonotonic scans the events and reports whether every timestamp is
// >= its predecessor. On the first violation it returns false and the
// violating event's index. A malformed event stops the scan with an
// error and index -1.
func (s SequenceView) IsMonotonic() (bool, int, error) {
	it := s.Iter()
	var prev Timestamp
	idx := 0
	for ev, ok := it.Next(); ok; ev, ok = it.Next() {
		if idx > 0 && ev.Time.Before(prev) {
			return false, idx, nil
		}
		prev = ev.Time
		idx++
	}
	if err := it.Err(); err != nil {
		return false, -1, err
	}
	return true, -1, nil
}

// Event is one decoded sequence entry.
type Event struct {
	Time  Timestamp
	Value Atom
}

// SequenceIter yields a sequence's events in buffer order.
type SequenceIter struct {
	r    *Reader
	unit Unit
	next uint32
	end  uint32
	err  error
}

// Next returns the next event, or false when the sequence body is
// exhausted or an event is malformed. Check Err after the loop.
func (it *SequenceIter) Next() (Event, bool) {
	if it.err != nil || it.next >= it.end {
		return Event{}, false
	}
	if it.end-it.next < 8 {
		it.err = errors.Malformed(it.next, "event timestamp overruns sequence bound %d", it.end)
		return Event{}, false
	}
	bits := wire.ByteOrder.Uint64(it.r.buf[it.next:])
	ts := timestampFromBits(bits, it.unit)
	value, err := it.r.childAtom(it.next+8, it.end)
	if err != nil {
		it.err = err
		return Event{}, false
	}
	it.next = value.next
	return Event{Time: ts, Value: value}, true
}

// Err returns the malformation that stopped iteration, if any.
func (it *SequenceIter) Err() error {
	return it.err
}
