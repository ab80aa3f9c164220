package codec

import (
	"github.com/plugkit/atom/codec/internal/wire"
	"github.com/plugkit/atom/errors"
)

// ObjectView is a view of an Object atom: an optional instance id, a
// class URID, and an ordered run of key/context/value properties.
type ObjectView struct {
	r     *Reader
	id    URID
	otype URID
	start uint32
	end   uint32
	off   uint32
}

// Object parses the atom as an object.
func (a Atom) Object() (ObjectView, error) {
	if a.hdr.Type != a.r.types.Object {
		return ObjectView{}, errors.UnexpectedType(a.off, uint32(a.hdr.Type), uint32(a.r.types.Object))
	}
	body := a.Body()
	if len(body) < 8 {
		return ObjectView{}, errors.Malformed(a.off, "object body shorter than its 8-byte header")
	}
	bodyOff := a.off + wire.HeaderSize
	return ObjectView{
		r:     a.r,
		id:    URID(wire.ByteOrder.Uint32(body[0:])),
		otype: URID(wire.ByteOrder.Uint32(body[4:])),
		start: bodyOff + 8,
		end:   bodyOff + a.hdr.Size,
		off:   a.off,
	}, nil
}

// ID returns the object's instance id URID, 0 when anonymous.
func (o ObjectView) ID() URID {
	return o.id
}

// OType returns the object's class URID.
func (o ObjectView) OType() URID {
	return o.otype
}

// Iter returns a property iterator. Properties retain buffer order,
// and a key may occur more than once.
func (o ObjectView) Iter() ObjectIter {
	return ObjectIter{r: o.r, next: o.start, end: o.end}
}

// Get scans for the first property with the given key. It returns
// false when the key is absent or a property is malformed.
func (o ObjectView) Get(key URID) (Atom, bool) {
	it := o.Iter()
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		if p.Key == key {
			return p.Value, true
		}
	}
	return Atom{}, false
}

// PropertyView is one decoded property record of an object.
type PropertyView struct {
	Key     URID
	Context URID
	Value   Atom
}

// ObjectIter yields an object's properties in buffer order.
type ObjectIter struct {
	r    *Reader
	next uint32
	end  uint32
	err  error
}

// Next returns the next property, or false when the object body is
// exhausted or a record is malformed. Check Err after the loop.
func (it *ObjectIter) Next() (PropertyView, bool) {
	if it.err != nil || it.next >= it.end {
		return PropertyView{}, false
	}
	if it.end-it.next < 8 {
		it.err = errors.Malformed(it.next, "property record header overruns object bound %d", it.end)
		return PropertyView{}, false
	}
	key := URID(wire.ByteOrder.Uint32(it.r.buf[it.next:]))
	ctx := URID(wire.ByteOrder.Uint32(it.r.buf[it.next+4:]))
	if key == 0 {
		it.err = errors.Malformed(it.next, "property key URID is zero")
		return PropertyView{}, false
	}
	value, err := it.r.childAtom(it.next+8, it.end)
	if err != nil {
		it.err = err
		return PropertyView{}, false
	}
	it.next = value.next
	return PropertyView{Key: key, Context: ctx, Value: value}, true
}

// Err returns the malformation that stopped iteration, if any.
func (it *ObjectIter) Err() error {
	return it.err
}
