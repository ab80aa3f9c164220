// Package bridge converts encoded atoms into plain Go values and
// serialized forms for tooling: deterministic CBOR for machine
// consumers and an indented text tree for humans. It sits outside the
// real-time path; unlike codec it allocates freely.
package bridge
