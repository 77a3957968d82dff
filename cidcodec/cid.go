// Package cidcodec wraps github.com/ipfs/go-cid with the small, closed
// codec table this spec actually cares about (dag-cbor, dag-json) and
// the CIDv1/multibase canonicalization rules spec.md §4.1/§6 require.
//
// Codec inference is kept as an explicit table rather than delegated to
// the full multicodec registry, per spec.md §9 ("do not widen
// silently") — but the table's names are cross-checked against
// go-multicodec's canonical names so a typo here would show up as a
// mismatch against the ecosystem registry rather than silently naming
// the wrong thing.
package cidcodec

import (
	"fmt"

	cid "github.com/ipfs/go-cid"
	mbase "github.com/multiformats/go-multibase"
	mc "github.com/multiformats/go-multicodec"
	mh "github.com/multiformats/go-multihash"

	"github.com/RangerMauve/go-ipld-url-resolve/iplderr"
)

// Codec is a multicodec code restricted to the set this module knows how
// to re-save during a patch.
type Codec uint64

const (
	// DagCBOR is multicodec 0x71, "dag-cbor".
	DagCBOR Codec = 0x71
	// DagJSON is multicodec 0x0129, "dag-json".
	DagJSON Codec = 0x0129
)

func init() {
	// Cross-check the hard-coded table above against the ecosystem's own
	// canonical names, so a transcription error here fails loudly.
	if mc.Code(DagCBOR).String() != "dag-cbor" {
		panic(fmt.Sprintf("cidcodec: DagCBOR table mismatch: %s", mc.Code(DagCBOR)))
	}
	if mc.Code(DagJSON).String() != "dag-json" {
		panic(fmt.Sprintf("cidcodec: DagJSON table mismatch: %s", mc.Code(DagJSON)))
	}
}

// String returns the canonical multicodec name for known codecs, or a
// hex fallback for anything else (used only in error detail, never in
// control flow).
func (c Codec) String() string {
	switch c {
	case DagCBOR:
		return "dag-cbor"
	case DagJSON:
		return "dag-json"
	default:
		return fmt.Sprintf("0x%x", uint64(c))
	}
}

// CID is an opaque, comparable content identifier. All CIDs handled by
// this module are canonicalized to CIDv1 on parse (spec.md §3).
type CID struct {
	inner cid.Cid
}

// Undef is the zero CID, used the way cid.Undef is used by the
// teacher's estuary driver: a sentinel for "no CID yet".
var Undef = CID{inner: cid.Undef}

// Parse decodes a CID string (any multibase) and canonicalizes it to
// CIDv1. A malformed CID or unknown multibase is fatal per spec.md §4.1.
func Parse(s string) (CID, error) {
	parsed, err := cid.Decode(s)
	if err != nil {
		return CID{}, iplderr.Newf(iplderr.BadURL, map[string]interface{}{"cid": s}, "invalid CID %q: %v", s, err)
	}
	return ToCIDv1(CID{inner: parsed}), nil
}

// FromRaw wraps an already-parsed cid.Cid from an embedder, canonicalizing
// it to CIDv1.
func FromRaw(c cid.Cid) CID {
	return ToCIDv1(CID{inner: c})
}

// ToCIDv1 upgrades a CIDv0 to CIDv1 with the same codec and hash,
// leaving a CIDv1 input unchanged. All CIDs this module hands back to a
// caller resolve to CIDv1 per spec.md §3.
func ToCIDv1(c CID) CID {
	if c.inner.Version() == 1 {
		return c
	}
	return CID{inner: cid.NewCidV1(c.inner.Type(), c.inner.Hash())}
}

// NewFromDigest mints a CIDv1 for data under the given codec, using
// sha2-256 — the same hash the teacher's estuary driver selects
// (mh.SHA2_256) when minting content IDs for freshly chunked data.
func NewFromDigest(codec Codec, data []byte) (CID, error) {
	sum, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return CID{}, iplderr.Wrap(err)
	}
	return CID{inner: cid.NewCidV1(uint64(codec), sum)}, nil
}

// Defined reports whether this is anything other than the zero CID.
func (c CID) Defined() bool { return c.inner.Defined() }

// Equals compares two CIDs by identity (their encoded bytes), never by
// resolving and comparing content — this is the rule spec.md §9 Open
// Question 3 pins for the "test" patch op, generalized to every CID
// comparison in this module.
func (c CID) Equals(o CID) bool { return c.inner.Equals(o.inner) }

// String renders the CID in its own stored multibase (what go-cid calls
// its default string form).
func (c CID) String() string { return c.inner.String() }

// CanonicalString renders the CID under the named multibase ("base32" or
// "base36"), the canonical display forms spec.md §4.1/§6 name.
func (c CID) CanonicalString(baseName string) (string, error) {
	enc, err := encodingForName(baseName)
	if err != nil {
		return "", err
	}
	return c.inner.StringOfBase(enc)
}

// BaseName reports the multibase name ("base32"/"base36"/...) the CID's
// own string form (String) is encoded with; for a CIDv1 that is always
// base32. It does not know which base a CID was originally parsed from:
// the URL parser calls DetectBase on the raw string for that.
func (c CID) BaseName() (string, error) {
	enc, _, err := mbase.Decode(c.inner.String())
	if err != nil {
		return "", iplderr.Wrap(err)
	}
	return nameForEncoding(enc)
}

// Codec returns the CID's multicodec code as a Codec value, without
// validating that it's one of the supported set — callers that require
// that do so via CodecFor.
func (c CID) Codec() Codec { return Codec(c.inner.Type()) }

// CodecFor returns the CID's codec if it is one this module supports
// re-saving under -- dag-cbor/dag-json, or a multicodec code named in
// extra (populated from ipldcfg.Config.Codecs so an embedder can admit
// additional codecs without forking this package) -- or
// UnsupportedCodec per spec.md §4.4/§7.
func CodecFor(c CID, extra map[string]uint64) (Codec, error) {
	codec := Codec(c.inner.Type())
	switch codec {
	case DagCBOR, DagJSON:
		return codec, nil
	}
	for _, code := range extra {
		if Codec(code) == codec {
			return codec, nil
		}
	}
	return 0, iplderr.New(iplderr.UnsupportedCodec, map[string]interface{}{"codec": codec.String()})
}

// Bytes returns the CID's binary form.
func (c CID) Bytes() []byte { return c.inner.Bytes() }

// Raw exposes the underlying go-cid value for embedders that need to
// interoperate with other IPFS/IPLD libraries directly.
func (c CID) Raw() cid.Cid { return c.inner }

// DetectBase reports the multibase name a raw CID string was encoded
// with, without decoding it into a CID. The URL parser uses this to
// remember whether a root CID arrived as base32 or base36 so it can
// round-trip the same rendering on serialize (spec.md §6: canonical
// form is base32 unless the input used base36).
func DetectBase(s string) (string, error) {
	enc, _, err := mbase.Decode(s)
	if err != nil {
		return "", iplderr.Newf(iplderr.BadURL, map[string]interface{}{"cid": s}, "unknown multibase in %q: %v", s, err)
	}
	return nameForEncoding(enc)
}

func encodingForName(name string) (mbase.Encoding, error) {
	switch name {
	case "", "base32":
		return mbase.Base32, nil
	case "base36":
		return mbase.Base36, nil
	default:
		return 0, fmt.Errorf("cidcodec: unknown multibase name %q", name)
	}
}

func nameForEncoding(enc mbase.Encoding) (string, error) {
	switch enc {
	case mbase.Base32:
		return "base32", nil
	case mbase.Base36:
		return "base36", nil
	default:
		return "", fmt.Errorf("cidcodec: unrecognized multibase encoding %v", enc)
	}
}
