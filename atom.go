package atom

// URID is a stable 32-bit identifier for a URI, obtained from a Mapper.
// The zero value is reserved and means "absent": no valid mapping ever
// yields 0. URIDs are equality-comparable and carry no ordering.
type URID uint32

// Mapper maps URIs to URIDs. Map is idempotent: the same URI always
// yields the same nonzero URID from one Mapper instance, and two
// different URIs never share an id.
type Mapper interface {
	Map(uri string) (URID, error)
}

// Unmapper resolves a URID back to the URI it was mapped from.
type Unmapper interface {
	Unmap(id URID) (string, bool)
}
