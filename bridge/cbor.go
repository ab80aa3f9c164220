package bridge

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/plugkit/atom/codec"
	"github.com/plugkit/atom/errors"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. The same atom buffer always
// produces identical CBOR bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bridge: CBOR encoder initialization failed: " + err.Error())
	}
}

// CBOR converts the atom to a plain Go value and encodes it as
// deterministic CBOR.
func (c *Converter) CBOR(a codec.Atom) ([]byte, error) {
	v, err := c.Value(a)
	if err != nil {
		return nil, err
	}
	out, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBridge, errors.KindInvalidInput, err, "CBOR encode")
	}
	return out, nil
}
