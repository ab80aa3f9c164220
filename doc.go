// Package atom defines the shared types of the atom wire codec.
//
// An atom is a self-describing binary value: a URID type tag and a body
// length, followed by the body and padding to the next 8-byte boundary.
// Atoms nest: vectors, tuples, objects and event sequences all carry
// complete child atoms in their bodies. The format is exchanged through
// fixed-capacity buffers handed between a real-time component and its
// host, so the codec never allocates, never blocks and never trusts a
// buffer it did not bounds-check.
//
// This root package holds only the URID type and the registry capability
// interfaces (Mapper, Unmapper). The pieces live in subpackages:
//
//	codec    - the codec core: Forge (writer) and Reader over caller-owned buffers
//	urid     - an in-memory URI <-> URID registry implementing Mapper/Unmapper
//	errors   - structured error taxonomy shared by all packages
//	bridge   - diagnostic conversion of atom trees to Go values and CBOR
//
// The wire format uses the host's native byte order and is not intended
// for cross-architecture exchange.
package atom
