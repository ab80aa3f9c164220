package codec

import (
	"github.com/plugkit/atom/codec/internal/wire"
	"github.com/plugkit/atom/errors"
)

// TupleIter walks the heterogeneous children of a Tuple atom. Children
// are laid back to back, each padded to the 8-byte grid, so iteration
// is pure offset arithmetic over the immutable buffer.
type TupleIter struct {
	r    *Reader
	next uint32
	end  uint32
	err  error
}

// Tuple returns an iterator over the atom's children.
func (a Atom) Tuple() (TupleIter, error) {
	if a.hdr.Type != a.r.types.Tuple {
		return TupleIter{}, errors.UnexpectedType(a.off, uint32(a.hdr.Type), uint32(a.r.types.Tuple))
	}
	start := a.off + wire.HeaderSize
	return TupleIter{r: a.r, next: start, end: start + a.hdr.Size}, nil
}

// Next returns the next child, or false when the tuple body is
// exhausted or a child is malformed. Check Err after the loop.
func (it *TupleIter) Next() (Atom, bool) {
	if it.err != nil || it.next >= it.end {
		return Atom{}, false
	}
	child, err := it.r.childAtom(it.next, it.end)
	if err != nil {
		it.err = err
		return Atom{}, false
	}
	it.next = child.next
	return child, true
}

// Err returns the malformation that stopped iteration, if any.
func (it *TupleIter) Err() error {
	return it.err
}
