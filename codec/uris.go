package codec

import (
	"github.com/plugkit/atom"
	"github.com/plugkit/atom/errors"
)

// Canonical URIs of the atom vocabulary. The codec never hardcodes the
// integer ids for these; they are mapped through the registry capability
// so that every party sharing one registry agrees on the tags.
const (
	IntURI      = "http://lv2plug.in/ns/ext/atom#Int"
	LongURI     = "http://lv2plug.in/ns/ext/atom#Long"
	FloatURI    = "http://lv2plug.in/ns/ext/atom#Float"
	DoubleURI   = "http://lv2plug.in/ns/ext/atom#Double"
	BoolURI     = "http://lv2plug.in/ns/ext/atom#Bool"
	URIDURI     = "http://lv2plug.in/ns/ext/atom#URID"
	StringURI   = "http://lv2plug.in/ns/ext/atom#String"
	ChunkURI    = "http://lv2plug.in/ns/ext/atom#Chunk"
	LiteralURI  = "http://lv2plug.in/ns/ext/atom#Literal"
	VectorURI   = "http://lv2plug.in/ns/ext/atom#Vector"
	TupleURI    = "http://lv2plug.in/ns/ext/atom#Tuple"
	ObjectURI   = "http://lv2plug.in/ns/ext/atom#Object"
	PropertyURI = "http://lv2plug.in/ns/ext/atom#Property"
	SequenceURI = "http://lv2plug.in/ns/ext/atom#Sequence"

	FrameUnitURI = "http://lv2plug.in/ns/extensions/units#frame"
	BeatUnitURI  = "http://lv2plug.in/ns/extensions/units#beat"
)

// CoreTypes holds the URIDs of the closed set of shapes the codec
// understands. Both halves of one exchange must build it from the same
// registry instance.
type CoreTypes struct {
	Int      URID
	Long     URID
	Float    URID
	Double   URID
	Bool     URID
	URID     URID
	String   URID
	Chunk    URID
	Literal  URID
	Vector   URID
	Tuple    URID
	Object   URID
	Property URID
	Sequence URID

	FrameUnit URID
	BeatUnit  URID
}

// MapCore maps the whole vocabulary through m.
func MapCore(m atom.Mapper) (CoreTypes, error) {
	var t CoreTypes
	for _, e := range []struct {
		uri string
		dst *URID
	}{
		{IntURI, &t.Int},
		{LongURI, &t.Long},
		{FloatURI, &t.Float},
		{DoubleURI, &t.Double},
		{BoolURI, &t.Bool},
		{URIDURI, &t.URID},
		{StringURI, &t.String},
		{ChunkURI, &t.Chunk},
		{LiteralURI, &t.Literal},
		{VectorURI, &t.Vector},
		{TupleURI, &t.Tuple},
		{ObjectURI, &t.Object},
		{PropertyURI, &t.Property},
		{SequenceURI, &t.Sequence},
		{FrameUnitURI, &t.FrameUnit},
		{BeatUnitURI, &t.BeatUnit},
	} {
		id, err := m.Map(e.uri)
		if err != nil {
			return CoreTypes{}, errors.Wrap(errors.PhaseRegistry, errors.KindInvalidInput, err, "map "+e.uri)
		}
		if id == 0 {
			return CoreTypes{}, errors.InvalidURID(errors.PhaseRegistry, "registry returned 0 for "+e.uri)
		}
		*e.dst = id
	}
	return t, nil
}

// MustMapCore is MapCore for program setup paths where a failing
// registry is unrecoverable.
func MustMapCore(m atom.Mapper) CoreTypes {
	t, err := MapCore(m)
	if err != nil {
		panic(err)
	}
	return t
}

// scalarSize returns the fixed body width of a scalar type, or false if
// typ is not one of the recognized fixed-width scalar kinds.
func (t CoreTypes) scalarSize(typ URID) (uint32, bool) {
	switch typ {
	case t.Int, t.Float, t.Bool, t.URID:
		return 4, true
	case t.Long, t.Double:
		return 8, true
	}
	return 0, false
}

// isContainer reports whether typ is one of the container shapes.
func (t CoreTypes) isContainer(typ URID) bool {
	switch typ {
	case t.Vector, t.Tuple, t.Object, t.Sequence:
		return true
	}
	return false
}
