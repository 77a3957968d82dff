package memstore

import (
	"context"
	"testing"

	"github.com/RangerMauve/go-ipld-url-resolve/cidcodec"
	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
)

func TestSaveThenGetRoundTrips(t *testing.T) {
	s := New()
	m := dagnode.NewMap()
	m.Set("greeting", dagnode.String("hello"))
	m.Set("count", dagnode.Int(3))

	c, err := s.SaveNode(context.Background(), m, cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}
	if !c.Defined() {
		t.Fatal("SaveNode returned an undefined CID")
	}

	got, err := s.GetNode(context.Background(), c)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if !dagnode.Equal(got, m) {
		t.Fatal("GetNode did not return the node that was saved")
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestGetNodeMissingIsStoreError(t *testing.T) {
	s := New()
	bogus, err := cidcodec.NewFromDigest(cidcodec.DagCBOR, []byte("nothing saved here"))
	if err != nil {
		t.Fatalf("NewFromDigest: %v", err)
	}
	if _, err := s.GetNode(context.Background(), bogus); err == nil {
		t.Fatal("GetNode on an unsaved CID should fail")
	}
}

func TestSaveNodeUsesCIDsOwnCodec(t *testing.T) {
	s := New()
	c, err := s.SaveNode(context.Background(), dagnode.String("x"), cidcodec.DagJSON)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}
	codec, err := cidcodec.CodecFor(c, nil)
	if err != nil {
		t.Fatalf("CodecFor: %v", err)
	}
	if codec != cidcodec.DagJSON {
		t.Fatalf("CodecFor(saved CID) = %v, want DagJSON", codec)
	}
}

func TestSaveNodeIsContentAddressed(t *testing.T) {
	s := New()
	a, err := s.SaveNode(context.Background(), dagnode.String("same"), cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}
	b, err := s.SaveNode(context.Background(), dagnode.String("same"), cidcodec.DagCBOR)
	if err != nil {
		t.Fatalf("SaveNode: %v", err)
	}
	if !a.Equals(b) {
		t.Fatal("saving identical content twice should mint identical CIDs")
	}
}

func TestNewSystemWiresAFreshStore(t *testing.T) {
	sys, store := NewSystem()
	if sys.Store != store {
		t.Fatal("NewSystem's ipldsys.System should use the returned Store")
	}
	if sys.ADLs == nil {
		t.Fatal("NewSystem should wire in a non-nil ADL registry")
	}
}
