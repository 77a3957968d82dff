package memstore

import (
	"github.com/RangerMauve/go-ipld-url-resolve/adl"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldcfg"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldsys"
)

// NewSystem wires a fresh Store and ADL registry into an ipldsys.System,
// the minimal fixture most resolver/patch tests and examples need.
func NewSystem() (*ipldsys.System, *Store) {
	store := New()
	return ipldsys.New(store, adl.NewRegistry(), nil), store
}

// NewSystemWithConfig is NewSystem with an explicit Config, for tests
// and examples that need to exercise Config.Multibase/Codecs/ADLDefaults
// rather than the defaults.
func NewSystemWithConfig(cfg *ipldcfg.Config) (*ipldsys.System, *Store) {
	store := New()
	return ipldsys.New(store, adl.NewRegistry(), cfg), store
}
