package bridge

import (
	"fmt"

	"github.com/plugkit/atom"
	"github.com/plugkit/atom/codec"
	"github.com/plugkit/atom/errors"
)

// defaultMaxDepth bounds recursion so a hostile buffer cannot blow the
// stack through nested containers.
const defaultMaxDepth = 64

// Converter turns atom views into plain Go values: scalars become
// their Go counterparts, containers become slices and maps, and URIDs
// are translated back to URI strings through the unmapper.
type Converter struct {
	types    codec.CoreTypes
	unmap    atom.Unmapper
	maxDepth int
}

// NewConverter returns a converter resolving URIDs through unmap,
// which must be the registry the buffer's tags were mapped through.
func NewConverter(types codec.CoreTypes, unmap atom.Unmapper) *Converter {
	return &Converter{types: types, unmap: unmap, maxDepth: defaultMaxDepth}
}

// uriFor renders an id as its URI, or a stable placeholder when the
// registry does not know it.
func (c *Converter) uriFor(id atom.URID) string {
	if uri, ok := c.unmap.Unmap(id); ok {
		return uri
	}
	return fmt.Sprintf("urid:%d", uint32(id))
}

// Value converts the atom to a plain Go value.
//
// Object properties convert to a map keyed by property URI; a repeated
// key keeps its last value. The object's class lands under "@type" and
// a nonzero instance id under "@id".
func (c *Converter) Value(a codec.Atom) (any, error) {
	return c.value(a, 0)
}

func (c *Converter) value(a codec.Atom, depth int) (any, error) {
	if depth >= c.maxDepth {
		return nil, errors.InvalidInput(errors.PhaseBridge,
			"nesting deeper than "+fmt.Sprint(c.maxDepth)+" levels")
	}

	switch a.Type() {
	case c.types.Int:
		v, err := a.Int32()
		return v, err
	case c.types.Long:
		v, err := a.Int64()
		return v, err
	case c.types.Float:
		v, err := a.Float32()
		return v, err
	case c.types.Double:
		v, err := a.Float64()
		return v, err
	case c.types.Bool:
		v, err := a.Bool()
		return v, err
	case c.types.URID:
		id, err := a.URID()
		if err != nil {
			return nil, err
		}
		return c.uriFor(id), nil
	case c.types.String:
		return a.Text()
	case c.types.Chunk:
		raw, err := a.Chunk()
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), raw...), nil
	case c.types.Literal:
		return c.literalValue(a)
	case c.types.Vector:
		return c.vectorValue(a)
	case c.types.Tuple:
		return c.tupleValue(a, depth)
	case c.types.Object:
		return c.objectValue(a, depth)
	case c.types.Sequence:
		return c.sequenceValue(a, depth)
	}

	// a type outside the vocabulary is forwarded opaquely
	return map[string]any{
		"@opaque": c.uriFor(a.Type()),
		"data":    append([]byte(nil), a.Body()...),
	}, nil
}

func (c *Converter) literalValue(a codec.Atom) (any, error) {
	lit, err := a.Literal()
	if err != nil {
		return nil, err
	}
	out := map[string]any{"text": lit.Text}
	if lit.Datatype != 0 {
		out["datatype"] = c.uriFor(lit.Datatype)
	}
	if lit.Lang != 0 {
		out["lang"] = c.uriFor(lit.Lang)
	}
	return out, nil
}

func (c *Converter) vectorValue(a codec.Atom) (any, error) {
	v, err := a.Vector()
	if err != nil {
		return nil, err
	}
	switch v.ChildType() {
	case c.types.Int:
		run, err := v.Int32s()
		return append([]int32(nil), run...), err
	case c.types.Long:
		run, err := v.Int64s()
		return append([]int64(nil), run...), err
	case c.types.Float:
		run, err := v.Float32s()
		return append([]float32(nil), run...), err
	case c.types.Double:
		run, err := v.Float64s()
		return append([]float64(nil), run...), err
	}

	out := make([][]byte, 0, v.Len())
	it := v.Iter()
	for el, ok := it.Next(); ok; el, ok = it.Next() {
		out = append(out, append([]byte(nil), el...))
	}
	return out, nil
}

func (c *Converter) tupleValue(a codec.Atom, depth int) (any, error) {
	it, err := a.Tuple()
	if err != nil {
		return nil, err
	}
	out := []any{}
	for child, ok := it.Next(); ok; child, ok = it.Next() {
		v, err := c.value(child, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Converter) objectValue(a codec.Atom, depth int) (any, error) {
	o, err := a.Object()
	if err != nil {
		return nil, err
	}
	out := map[string]any{"@type": c.uriFor(o.OType())}
	if o.ID() != 0 {
		out["@id"] = c.uriFor(o.ID())
	}
	it := o.Iter()
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		v, err := c.value(p.Value, depth+1)
		if err != nil {
			return nil, err
		}
		out[c.uriFor(p.Key)] = v
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Converter) sequenceValue(a codec.Atom, depth int) (any, error) {
	s, err := a.Sequence()
	if err != nil {
		return nil, err
	}
	events := []any{}
	it := s.Iter()
	for ev, ok := it.Next(); ok; ev, ok = it.Next() {
		v, err := c.value(ev.Value, depth+1)
		if err != nil {
			return nil, err
		}
		var when any
		if ev.Time.Unit == codec.UnitBeats {
			when = ev.Time.Beats
		} else {
			when = ev.Time.Frames
		}
		events = append(events, map[string]any{"time": when, "value": v})
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return map[string]any{
		"unit":   s.Unit().String(),
		"events": events,
	}, nil
}
