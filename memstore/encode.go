package memstore

import (
	"bytes"

	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/node/basicnode"

	"github.com/RangerMauve/go-ipld-url-resolve/cidcodec"
	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/iplderr"
)

// Encode renders n to bytes under codec via go-ipld-prime's canonical
// codec implementations (spec.md §1 names these as an out-of-scope
// collaborator the core only names by code; this reference store is the
// one component that actually has to produce bytes, so it is where that
// collaborator gets wired in).
func Encode(n dagnode.Node, codec cidcodec.Codec) ([]byte, error) {
	prime, err := dagnode.ToPrimeNode(n)
	if err != nil {
		return nil, iplderr.Wrap(err)
	}

	var buf bytes.Buffer
	switch codec {
	case cidcodec.DagCBOR:
		if err := dagcbor.Encode(prime, &buf); err != nil {
			return nil, iplderr.Wrap(err)
		}
	case cidcodec.DagJSON:
		if err := dagjson.Encode(prime, &buf); err != nil {
			return nil, iplderr.Wrap(err)
		}
	default:
		return nil, iplderr.New(iplderr.UnsupportedCodec, map[string]interface{}{"codec": codec.String()})
	}
	return buf.Bytes(), nil
}

// Decode is Encode's inverse, for an embedder whose own store keeps raw
// bytes rather than decoded dagnode.Node values (memstore.Store itself
// doesn't need this — it keeps decoded nodes — but it's the natural
// counterpart to Encode for anyone wiring their own byte-backed Store).
func Decode(data []byte, codec cidcodec.Codec) (dagnode.Node, error) {
	builder := basicnode.Prototype.Any.NewBuilder()

	var err error
	switch codec {
	case cidcodec.DagCBOR:
		err = dagcbor.Decode(builder, bytes.NewReader(data))
	case cidcodec.DagJSON:
		err = dagjson.Decode(builder, bytes.NewReader(data))
	default:
		return nil, iplderr.New(iplderr.UnsupportedCodec, map[string]interface{}{"codec": codec.String()})
	}
	if err != nil {
		return nil, iplderr.Wrap(err)
	}
	return dagnode.FromPrimeNode(builder.Build())
}
