package codec

import "sync"

// Forge pool for callers that build many transient atoms with one
// shared vocabulary. Pooled forges carry no buffer; attach one with
// Reset.
var forgePool = sync.Pool{
	New: func() any {
		return &Forge{}
	},
}

// GetForge returns a pooled forge configured for types and pointed at
// buf.
func GetForge(types CoreTypes, buf []byte) *Forge {
	f := forgePool.Get().(*Forge)
	f.types = types
	f.Reset(buf)
	return f
}

// PutForge returns a forge to the pool. The forge drops its buffer
// reference so the pool never pins caller memory.
func PutForge(f *Forge) {
	if f == nil {
		return
	}
	f.Reset(nil)
	forgePool.Put(f)
}
