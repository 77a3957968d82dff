package ipldsys

import (
	"context"
	"testing"

	"github.com/RangerMauve/go-ipld-url-resolve/adl"
	"github.com/RangerMauve/go-ipld-url-resolve/cidcodec"
	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldcfg"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldurl"
)

type nopStore struct{}

func (nopStore) GetNode(ctx context.Context, c cidcodec.CID) (dagnode.Node, error) { return nil, nil }
func (nopStore) SaveNode(ctx context.Context, n dagnode.Node, codec cidcodec.Codec) (cidcodec.CID, error) {
	return cidcodec.CID{}, nil
}

func TestNewFillsInDefaults(t *testing.T) {
	sys := New(nopStore{}, nil, nil)
	if sys.ADLs == nil {
		t.Fatal("New(..., nil, nil) should fill in an empty registry")
	}
	if sys.Config == nil {
		t.Fatal("New(..., nil, nil) should fill in default config")
	}
	if sys.Config.Multibase != "base32" {
		t.Fatalf("default Config.Multibase = %q, want base32", sys.Config.Multibase)
	}
}

func TestNewPreservesSuppliedRegistry(t *testing.T) {
	r := adl.NewRegistry()
	sys := New(nopStore{}, r, nil)
	if sys.ADLs != r {
		t.Fatal("New should use the supplied registry rather than replacing it")
	}
}

func TestNewAcceptsRegisteredADLDefault(t *testing.T) {
	r := adl.NewRegistry()
	r.Register("identity", func(ctx context.Context, node dagnode.Node, params ipldurl.Parameters, sysArg interface{}) (dagnode.Node, error) {
		return node, nil
	})
	sys := New(nopStore{}, r, &ipldcfg.Config{ADLDefaults: []string{"identity"}})
	if sys.Config.ADLDefaults[0] != "identity" {
		t.Fatal("New should preserve the supplied ADLDefaults list")
	}
}

func TestNewPanicsOnMissingADLDefault(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New should panic when an ADLDefault isn't registered on the given registry")
		}
	}()
	New(nopStore{}, adl.NewRegistry(), &ipldcfg.Config{ADLDefaults: []string{"missing"}})
}
