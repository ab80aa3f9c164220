// Package codec encodes and decodes typed binary atoms over
// caller-owned fixed buffers.
//
// Every atom is an 8-byte header, a body, and zero padding up to the
// next 8-byte boundary:
//
//	[type URID u32][body size u32][body...][pad to 8]
//
// The body size is exact: it excludes the header and the trailing
// padding. Multi-byte fields use the host's native byte order; buffers
// are exchanged within one process, never across machines.
//
// # Writing
//
// A Forge appends atoms to a fixed buffer the caller provides. Scalars
// are single calls; containers are a Push, child writes, and a Pop
// that back-patches the container's size:
//
//	f := codec.NewForge(types)
//	f.Reset(buf)
//	f.PushTuple()
//	f.WriteInt32(42)
//	f.WriteFloat32(0.5)
//	f.Pop()
//	out, err := f.Finish()
//
// The forge never grows the buffer. The first write that does not fit
// records an out_of_space fault; every later call returns the same
// fault until Reset, so a burst of writes needs exactly one error
// check at the end.
//
// # Reading
//
// A Reader gives zero-copy views over an encoded buffer. Every access
// is bounds-checked, so truncated or corrupt input yields an error
// rather than a panic:
//
//	r := codec.NewReader(types, out)
//	a, err := r.Atom(0)
//	it, err := a.Tuple()
//	for child, ok := it.Next(); ok; child, ok = it.Next() { ... }
//
// Container shapes:
//
//	Vector    packed run of same-width scalars, one shared type tag
//	Tuple     heterogeneous atoms back to back
//	Object    (id, otype) then key/context/value properties
//	Sequence  (unit) then timestamped atoms
//
// Type tags are URIDs mapped through an atom.Mapper; both sides of an
// exchange must map the vocabulary through the same registry.
package codec
