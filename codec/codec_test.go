package codec

import (
	"testing"

	"github.com/plugkit/atom"
)

// testMapper hands out sequential ids per distinct URI, like a real
// registry but without the locking.
type testMapper struct {
	ids map[string]atom.URID
}

func newTestMapper() *testMapper {
	return &testMapper{ids: make(map[string]atom.URID)}
}

func (m *testMapper) Map(uri string) (atom.URID, error) {
	if id, ok := m.ids[uri]; ok {
		return id, nil
	}
	id := atom.URID(len(m.ids) + 1)
	m.ids[uri] = id
	return id, nil
}

func newTestTypes(t *testing.T) CoreTypes {
	t.Helper()
	types, err := MapCore(newTestMapper())
	if err != nil {
		t.Fatalf("MapCore: %v", err)
	}
	return types
}

func TestForgePool(t *testing.T) {
	types := newTestTypes(t)
	buf := make([]byte, 64)

	f := GetForge(types, buf)
	if err := f.WriteInt32(9); err != nil {
		t.Fatalf("WriteInt32: %v", err)
	}
	out, err := f.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if v, err := NewReader(types, out).Atom(0); err != nil {
		t.Fatalf("Atom: %v", err)
	} else if got, err := v.Int32(); err != nil || got != 9 {
		t.Fatalf("Int32 = %d, %v", got, err)
	}
	PutForge(f)

	// a recycled forge starts clean
	g := GetForge(types, buf)
	if g.Len() != 0 || g.Depth() != 0 || g.Err() != nil {
		t.Fatalf("recycled forge not reset: len=%d depth=%d err=%v", g.Len(), g.Depth(), g.Err())
	}
	PutForge(g)
}

// encode runs build against a fresh forge over a buffer of size n and
// returns the finished bytes.
func encode(t *testing.T, types CoreTypes, n int, build func(f *Forge)) []byte {
	t.Helper()
	f := NewForge(types)
	f.Reset(make([]byte, n))
	build(f)
	out, err := f.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return out
}
