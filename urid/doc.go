// Package urid implements the URI to integer id registry backing atom
// type tags. Ids are meaningful only against the registry that issued
// them; two processes agree on tags by mapping the same URIs through
// one shared registry instance.
package urid
