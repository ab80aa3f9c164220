package bridge

import (
	"fmt"
	"io"
	"strings"

	"github.com/plugkit/atom/codec"
)

// treeElemLimit caps how many vector elements the tree prints per line.
const treeElemLimit = 16

// RenderTree writes an indented human-readable rendering of the atom.
func (c *Converter) RenderTree(w io.Writer, a codec.Atom) error {
	return c.renderNode(w, a, "", 0)
}

func (c *Converter) renderNode(w io.Writer, a codec.Atom, label string, depth int) error {
	if depth >= c.maxDepth {
		return fmt.Errorf("tree deeper than %d levels", c.maxDepth)
	}
	indent := strings.Repeat("  ", depth)

	switch a.Type() {
	case c.types.Tuple:
		fmt.Fprintf(w, "%s%stuple (%d bytes)\n", indent, label, a.Size())
		it, err := a.Tuple()
		if err != nil {
			return err
		}
		for child, ok := it.Next(); ok; child, ok = it.Next() {
			if err := c.renderNode(w, child, "", depth+1); err != nil {
				return err
			}
		}
		return it.Err()

	case c.types.Object:
		o, err := a.Object()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s%sobject %s", indent, label, c.uriFor(o.OType()))
		if o.ID() != 0 {
			fmt.Fprintf(w, " id=%s", c.uriFor(o.ID()))
		}
		fmt.Fprintln(w)
		it := o.Iter()
		for p, ok := it.Next(); ok; p, ok = it.Next() {
			if err := c.renderNode(w, p.Value, c.uriFor(p.Key)+" = ", depth+1); err != nil {
				return err
			}
		}
		return it.Err()

	case c.types.Sequence:
		s, err := a.Sequence()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s%ssequence (%s)\n", indent, label, s.Unit())
		it := s.Iter()
		for ev, ok := it.Next(); ok; ev, ok = it.Next() {
			var stamp string
			if ev.Time.Unit == codec.UnitBeats {
				stamp = fmt.Sprintf("@%g ", ev.Time.Beats)
			} else {
				stamp = fmt.Sprintf("@%d ", ev.Time.Frames)
			}
			if err := c.renderNode(w, ev.Value, stamp, depth+1); err != nil {
				return err
			}
		}
		return it.Err()

	case c.types.Vector:
		v, err := a.Vector()
		if err != nil {
			return err
		}
		val, err := c.vectorValue(a)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s%svector %s x%d: %s\n",
			indent, label, c.uriFor(v.ChildType()), v.Len(), formatRun(val))
		return nil
	}

	val, err := c.Value(a)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s%s%s: %v\n", indent, label, c.typeName(a.Type()), val)
	return nil
}

// typeName renders a scalar type tag compactly, without the shared URI
// prefix clutter.
func (c *Converter) typeName(id codec.URID) string {
	uri := c.uriFor(id)
	if i := strings.LastIndexByte(uri, '#'); i >= 0 {
		return strings.ToLower(uri[i+1:])
	}
	return uri
}

// formatRun prints a vector's elements, eliding past treeElemLimit.
func formatRun(val any) string {
	var b strings.Builder
	b.WriteByte('[')
	n := 0
	write := func(s string) bool {
		if n == treeElemLimit {
			b.WriteString(" ...")
			return false
		}
		if n > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		n++
		return true
	}
	switch run := val.(type) {
	case []int32:
		for _, v := range run {
			if !write(fmt.Sprint(v)) {
				break
			}
		}
	case []int64:
		for _, v := range run {
			if !write(fmt.Sprint(v)) {
				break
			}
		}
	case []float32:
		for _, v := range run {
			if !write(fmt.Sprintf("%g", v)) {
				break
			}
		}
	case []float64:
		for _, v := range run {
			if !write(fmt.Sprintf("%g", v)) {
				break
			}
		}
	case [][]byte:
		for _, v := range run {
			if !write(fmt.Sprintf("%x", v)) {
				break
			}
		}
	default:
		b.WriteString(fmt.Sprint(val))
	}
	b.WriteByte(']')
	return b.String()
}
