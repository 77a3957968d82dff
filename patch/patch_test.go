package patch

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/RangerMauve/go-ipld-url-resolve/adl"
	"github.com/RangerMauve/go-ipld-url-resolve/cidcodec"
	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldcfg"
	"github.com/RangerMauve/go-ipld-url-resolve/iplderr"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldsys"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldurl"
	"github.com/RangerMauve/go-ipld-url-resolve/memstore"
	"github.com/RangerMauve/go-ipld-url-resolve/resolver"
)

// rawStore is a minimal dagnode.Store that keys blocks by a CID minted
// directly over the node's debug string, regardless of codec -- unlike
// memstore.Store it never runs a real codec encoder, which is what lets
// these tests exercise codecs memstore.Encode doesn't implement.
type rawStore struct {
	mu     sync.Mutex
	blocks map[string]dagnode.Node
}

func newRawStore() *rawStore { return &rawStore{blocks: make(map[string]dagnode.Node)} }

func (s *rawStore) GetNode(ctx context.Context, c cidcodec.CID) (dagnode.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.blocks[c.String()]
	if !ok {
		return nil, iplderr.New(iplderr.StoreError, map[string]interface{}{"cid": c.String(), "reason": "not found"})
	}
	return n, nil
}

func (s *rawStore) SaveNode(ctx context.Context, n dagnode.Node, codec cidcodec.Codec) (cidcodec.CID, error) {
	c, err := cidcodec.NewFromDigest(codec, []byte(dagnode.Stringify(n)))
	if err != nil {
		return cidcodec.CID{}, iplderr.Wrap(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[c.String()] = n
	return c, nil
}

func TestPatchAddTopLevelField(t *testing.T) {
	sys, store := memstore.NewSystem()
	root := dagnode.NewMap()
	root.Set("a", dagnode.Int(1))
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}

	u := ipldurl.New(rootCID)
	out, err := Patch(context.Background(), sys, nil, u, []Op{
		{Op: OpAdd, Path: "b", Value: dagnode.Int(2)},
	})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}

	result, err := resolver.Resolve(context.Background(), sys, nil, out, resolver.Options{})
	if err != nil {
		t.Fatalf("Resolve on patched output: %v", err)
	}
	m := result.(*dagnode.Map)
	if v, ok := m.Get("a"); !ok || !dagnode.Equal(v, dagnode.Int(1)) {
		t.Fatal("patched map lost its original field")
	}
	if v, ok := m.Get("b"); !ok || !dagnode.Equal(v, dagnode.Int(2)) {
		t.Fatal("patched map did not gain the added field")
	}
}

func TestPatchRemoveField(t *testing.T) {
	sys, store := memstore.NewSystem()
	root := dagnode.NewMap()
	root.Set("a", dagnode.Int(1))
	root.Set("b", dagnode.Int(2))
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}

	u := ipldurl.New(rootCID)
	out, err := Patch(context.Background(), sys, nil, u, []Op{{Op: OpRemove, Path: "b"}})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}

	result, err := resolver.Resolve(context.Background(), sys, nil, out, resolver.Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m := result.(*dagnode.Map)
	if _, ok := m.Get("b"); ok {
		t.Fatal("removed field is still present")
	}
}

func TestPatchReplaceField(t *testing.T) {
	sys, store := memstore.NewSystem()
	root := dagnode.NewMap()
	root.Set("a", dagnode.Int(1))
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}

	u := ipldurl.New(rootCID)
	out, err := Patch(context.Background(), sys, nil, u, []Op{{Op: OpReplace, Path: "a", Value: dagnode.Int(99)}})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	result, err := resolver.Resolve(context.Background(), sys, nil, out, resolver.Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m := result.(*dagnode.Map)
	if v, _ := m.Get("a"); !dagnode.Equal(v, dagnode.Int(99)) {
		t.Fatal("replace did not update the field's value")
	}
}

func TestPatchReplaceMissingKeyFails(t *testing.T) {
	sys, store := memstore.NewSystem()
	root := dagnode.NewMap()
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}
	u := ipldurl.New(rootCID)
	_, err = Patch(context.Background(), sys, nil, u, []Op{{Op: OpReplace, Path: "missing", Value: dagnode.Int(1)}})
	if err == nil {
		t.Fatal("replace of a missing key should fail")
	}
	ierr, ok := err.(*iplderr.Error)
	if !ok || ierr.Kind != iplderr.MissingKey {
		t.Fatalf("error = %v, want MissingKey", err)
	}
}

func TestPatchNestedMutationRebuildsThroughLink(t *testing.T) {
	sys, store := memstore.NewSystem()

	child := dagnode.NewMap()
	child.Set("count", dagnode.Int(1))
	childCID, err := store.SaveNode(context.Background(), child, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode(child): %v", err)
	}

	root := dagnode.NewMap()
	root.Set("child", dagnode.NewLink(childCID))
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode(root): %v", err)
	}

	u := ipldurl.New(rootCID)
	out, err := Patch(context.Background(), sys, nil, u, []Op{
		{Op: OpReplace, Path: "child/count", Value: dagnode.Int(42)},
	})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}

	if out.CID().Equals(rootCID) {
		t.Fatal("patching should have produced a new root CID")
	}

	full := ipldurl.New(out.CID())
	full.SetSegments([]ipldurl.Segment{ipldurl.NewSegment("child"), ipldurl.NewSegment("count")})
	got, err := resolver.Resolve(context.Background(), sys, nil, full, resolver.Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !dagnode.Equal(got, dagnode.Int(42)) {
		t.Fatalf("nested mutation through a link did not take effect, got %v", dagnode.Stringify(got))
	}

	// The original child block is untouched -- copy-on-write, not in-place
	// mutation.
	origChild, err := store.GetNode(context.Background(), childCID)
	if err != nil {
		t.Fatalf("GetNode(original child): %v", err)
	}
	if v, _ := origChild.(*dagnode.Map).Get("count"); !dagnode.Equal(v, dagnode.Int(1)) {
		t.Fatal("patching mutated the original child block in place")
	}
}

func TestPatchCopyAndMove(t *testing.T) {
	sys, store := memstore.NewSystem()
	root := dagnode.NewMap()
	root.Set("source", dagnode.String("value"))
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}

	u := ipldurl.New(rootCID)
	copied, err := Patch(context.Background(), sys, nil, u, []Op{
		{Op: OpCopy, From: "source", Path: "copy"},
	})
	if err != nil {
		t.Fatalf("Patch(copy): %v", err)
	}
	copiedNode, err := resolver.Resolve(context.Background(), sys, nil, copied, resolver.Options{})
	if err != nil {
		t.Fatalf("Resolve after copy: %v", err)
	}
	cm := copiedNode.(*dagnode.Map)
	if v, ok := cm.Get("source"); !ok || !dagnode.Equal(v, dagnode.String("value")) {
		t.Fatal("copy should leave the source in place")
	}
	if v, ok := cm.Get("copy"); !ok || !dagnode.Equal(v, dagnode.String("value")) {
		t.Fatal("copy should add the value at the destination path")
	}

	moved, err := Patch(context.Background(), sys, nil, u, []Op{
		{Op: OpMove, From: "source", Path: "moved"},
	})
	if err != nil {
		t.Fatalf("Patch(move): %v", err)
	}
	movedNode, err := resolver.Resolve(context.Background(), sys, nil, moved, resolver.Options{})
	if err != nil {
		t.Fatalf("Resolve after move: %v", err)
	}
	mm := movedNode.(*dagnode.Map)
	if _, ok := mm.Get("source"); ok {
		t.Fatal("move should remove the value from its origin")
	}
	if v, ok := mm.Get("moved"); !ok || !dagnode.Equal(v, dagnode.String("value")) {
		t.Fatal("move should add the value at the destination path")
	}
}

func TestPatchTestOpPassesAndFails(t *testing.T) {
	sys, store := memstore.NewSystem()
	root := dagnode.NewMap()
	root.Set("a", dagnode.Int(1))
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}
	u := ipldurl.New(rootCID)

	if _, err := Patch(context.Background(), sys, nil, u, []Op{{Op: OpTest, Path: "a", Value: dagnode.Int(1)}}); err != nil {
		t.Fatalf("Patch(test) matching value should succeed: %v", err)
	}

	_, err = Patch(context.Background(), sys, nil, u, []Op{{Op: OpTest, Path: "a", Value: dagnode.Int(2)}})
	if err == nil {
		t.Fatal("Patch(test) with a mismatched value should fail")
	}
	ierr, ok := err.(*iplderr.Error)
	if !ok || ierr.Kind != iplderr.TestFailed {
		t.Fatalf("error = %v, want TestFailed", err)
	}
}

func TestPatchEmptyPathIsInvalidPatchOp(t *testing.T) {
	sys, store := memstore.NewSystem()
	root := dagnode.NewMap()
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}
	u := ipldurl.New(rootCID)

	_, err = Patch(context.Background(), sys, nil, u, []Op{{Op: OpAdd, Path: "", Value: dagnode.Int(1)}})
	if err == nil {
		t.Fatal("Patch with an empty combined path should fail")
	}
	ierr, ok := err.(*iplderr.Error)
	if !ok || ierr.Kind != iplderr.InvalidPatchOp {
		t.Fatalf("error = %v, want InvalidPatchOp", err)
	}
}

func TestPatchUnknownOpFails(t *testing.T) {
	sys, store := memstore.NewSystem()
	root := dagnode.NewMap()
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}
	u := ipldurl.New(rootCID)

	_, err = Patch(context.Background(), sys, nil, u, []Op{{Op: OpKind("frobnicate"), Path: "a"}})
	if err == nil {
		t.Fatal("Patch with an unrecognized op should fail")
	}
}

func TestPatchOutputPreservesRootParametersAndSegments(t *testing.T) {
	sys, store := memstore.NewSystem()
	root := dagnode.NewMap()
	root.Set("a", dagnode.Int(1))
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}

	u := ipldurl.New(rootCID)
	u.SetParameters(ipldurl.NewParameters(ipldurl.Pair{Key: "extra", Value: "1"}))
	out, err := Patch(context.Background(), sys, nil, u, []Op{{Op: OpAdd, Path: "b", Value: dagnode.Int(2)}})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if v, ok := out.Parameters().Get("extra"); !ok || v != "1" {
		t.Fatal("Patch's output URL should preserve the input's root parameters")
	}
}

func TestPatchOutputHonorsConfiguredMultibase(t *testing.T) {
	sys, store := memstore.NewSystemWithConfig(&ipldcfg.Config{Multibase: "base36"})
	root := dagnode.NewMap()
	root.Set("a", dagnode.Int(1))
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}

	u := ipldurl.New(rootCID)
	out, err := Patch(context.Background(), sys, nil, u, []Op{{Op: OpAdd, Path: "b", Value: dagnode.Int(2)}})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}

	want, err := out.CID().CanonicalString("base36")
	if err != nil {
		t.Fatalf("CanonicalString(base36): %v", err)
	}
	if !strings.Contains(out.String(), want) {
		t.Fatalf("Patch output URL %q did not render under the configured base36 multibase", out.String())
	}
}

func TestPatchRejectsRootUnderCodecNotAdmittedByConfig(t *testing.T) {
	store := newRawStore()
	sys := ipldsys.New(store, adl.NewRegistry(), nil)
	root := dagnode.NewMap()
	root.Set("a", dagnode.Int(1))
	// raw (0x55) isn't dag-cbor/dag-json and the default config admits
	// no extras, so CodecFor should reject re-saving under it.
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.Codec(0x55))
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}

	u := ipldurl.New(rootCID)
	_, err = Patch(context.Background(), sys, nil, u, []Op{{Op: OpAdd, Path: "b", Value: dagnode.Int(2)}})
	if err == nil {
		t.Fatal("Patch against a root saved under an unadmitted codec should fail")
	}
	ierr, ok := err.(*iplderr.Error)
	if !ok || ierr.Kind != iplderr.UnsupportedCodec {
		t.Fatalf("error = %v, want UnsupportedCodec", err)
	}
}

func TestPatchAdmitsRootUnderConfigExtendedCodec(t *testing.T) {
	store := newRawStore()
	sys := ipldsys.New(store, adl.NewRegistry(), &ipldcfg.Config{Codecs: map[string]uint64{"raw": 0x55}})
	root := dagnode.NewMap()
	root.Set("a", dagnode.Int(1))
	rootCID, err := store.SaveNode(context.Background(), root, cidcodec.Codec(0x55))
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}

	u := ipldurl.New(rootCID)
	out, err := Patch(context.Background(), sys, nil, u, []Op{{Op: OpAdd, Path: "b", Value: dagnode.Int(2)}})
	if err != nil {
		t.Fatalf("Patch against a root under a config-admitted codec should succeed: %v", err)
	}
	resaved, err := store.GetNode(context.Background(), out.CID())
	if err != nil {
		t.Fatalf("GetNode(patched root): %v", err)
	}
	m := resaved.(*dagnode.Map)
	if v, ok := m.Get("b"); !ok || !dagnode.Equal(v, dagnode.Int(2)) {
		t.Fatal("patched root did not gain the added field")
	}
}
