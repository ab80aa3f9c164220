package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/term"

	"github.com/plugkit/atom"
	"github.com/plugkit/atom/bridge"
	"github.com/plugkit/atom/codec"
	"github.com/plugkit/atom/urid"
)

// envelope is the on-disk form of an atom buffer. Ids are only
// meaningful against the registry that issued them, so the buffer
// travels with its URI table: mapping the URIs in order into a fresh
// registry reproduces ids 1..n exactly.
type envelope struct {
	URIs []string `cbor:"uris"`
	Data []byte   `cbor:"atom"`
}

// zstdMagic is the zstd frame header, used to auto-detect compressed
// input regardless of the -z flag.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func main() {
	var (
		inFile   = flag.String("in", "", "Read an atom file")
		outFile  = flag.String("out", "", "Write the atom file here (with -gen)")
		gen      = flag.Bool("gen", false, "Generate a demo atom buffer")
		tree     = flag.Bool("tree", false, "Print the atom as an indented tree")
		asCBOR   = flag.Bool("cbor", false, "Print the atom as deterministic CBOR on stdout")
		compress = flag.Bool("z", false, "zstd-compress the output file")
		inter    = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *inFile == "" && !*gen {
		fmt.Fprintln(os.Stderr, "Usage: atomcat -in <file.atom> [-tree] [-cbor] [-i]")
		fmt.Fprintln(os.Stderr, "       atomcat -gen -out <file.atom> [-z]")
		os.Exit(1)
	}

	if err := run(*inFile, *outFile, *gen, *tree, *asCBOR, *compress, *inter); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inFile, outFile string, gen, tree, asCBOR, compress, inter bool) error {
	reg := urid.NewRegistry()

	var (
		types codec.CoreTypes
		buf   []byte
		err   error
	)
	if gen {
		types, err = codec.MapCore(reg)
		if err != nil {
			return err
		}
		buf, err = demoBuffer(reg, types)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		if outFile != "" {
			if err := saveEnvelope(outFile, reg, buf, compress); err != nil {
				return fmt.Errorf("write %s: %w", outFile, err)
			}
			fmt.Printf("Wrote %s (%d atom bytes)\n", outFile, len(buf))
		}
	} else {
		// the URI table must replay into an empty registry so ids come
		// back dense from 1; the vocabulary is mapped afterwards and is
		// idempotent for URIs the table already named
		buf, err = loadEnvelope(inFile, reg)
		if err != nil {
			return fmt.Errorf("read %s: %w", inFile, err)
		}
		types, err = codec.MapCore(reg)
		if err != nil {
			return err
		}
	}

	a, err := codec.NewReader(types, buf).Atom(0)
	if err != nil {
		return err
	}
	conv := bridge.NewConverter(types, reg)

	if inter {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(conv, a)
	}
	if asCBOR {
		out, err := conv.CBOR(a)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}
	if tree || !gen {
		return conv.RenderTree(os.Stdout, a)
	}
	return nil
}

// saveEnvelope writes the buffer with its URI table, zstd-compressed
// when asked.
func saveEnvelope(path string, reg *urid.Registry, buf []byte, compress bool) error {
	uris := make([]string, 0, reg.Len())
	for id := atom.URID(1); int(id) <= reg.Len(); id++ {
		uri, ok := reg.Unmap(id)
		if !ok {
			return fmt.Errorf("registry hole at id %d", id)
		}
		uris = append(uris, uri)
	}
	raw, err := cbor.Marshal(envelope{URIs: uris, Data: buf})
	if err != nil {
		return err
	}
	if compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		raw = enc.EncodeAll(raw, nil)
		enc.Close()
	}
	return os.WriteFile(path, raw, 0o644)
}

// loadEnvelope reads an atom file, transparently decompressing, and
// replays its URI table into reg.
func loadEnvelope(path string, reg *urid.Registry) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(raw, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		raw, err = dec.DecodeAll(raw, nil)
		dec.Close()
		if err != nil {
			return nil, fmt.Errorf("decompress: %w", err)
		}
	}
	var env envelope
	if err := cbor.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	for i, uri := range env.URIs {
		id, err := reg.Map(uri)
		if err != nil {
			return nil, fmt.Errorf("replay URI table: %w", err)
		}
		if int(id) != i+1 {
			return nil, fmt.Errorf("URI table replay produced id %d for entry %d", id, i+1)
		}
	}
	return env.Data, nil
}

// demoBuffer builds a small buffer exercising every shape, for
// demos and for poking at the tooling without a producer around.
func demoBuffer(reg *urid.Registry, types codec.CoreTypes) ([]byte, error) {
	clsParams, err := reg.Map("urn:atomcat:Params")
	if err != nil {
		return nil, err
	}
	keyGain, err := reg.Map("urn:atomcat:gain")
	if err != nil {
		return nil, err
	}
	keyCurve, err := reg.Map("urn:atomcat:curve")
	if err != nil {
		return nil, err
	}
	keyLabel, err := reg.Map("urn:atomcat:label")
	if err != nil {
		return nil, err
	}

	f := codec.NewForge(types)
	f.Reset(make([]byte, 4096))

	f.PushSequence(codec.UnitFrames)
	f.FrameTime(0)
	f.PushObject(0, clsParams)
	f.Property(keyGain, 0)
	f.WriteFloat64(0.708)
	f.Property(keyCurve, 0)
	f.PushVector(types.Float, 4)
	f.VectorFloat32s([]float32{0, 0.25, 0.5, 1})
	f.Pop()
	f.Property(keyLabel, 0)
	f.WriteString("output gain")
	f.Pop()
	f.FrameTime(64)
	f.PushTuple()
	f.WriteInt32(60)
	f.WriteBool(true)
	f.WriteChunk([]byte{0x90, 0x3c, 0x7f})
	f.Pop()
	f.Pop()

	return f.Finish()
}
