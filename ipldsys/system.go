// Package ipldsys holds the System handle spec.md §4.2/§6 says every ADL
// invocation receives: the node store, the codec/multibase defaults, and
// the ADL registry itself (so an ADL can recursively resolve through
// another named ADL). It is a plain struct threaded explicitly by the
// caller, not a process global — spec.md §9 calls the global-registry
// pattern out by name as something to avoid.
package ipldsys

import (
	"fmt"

	"github.com/RangerMauve/go-ipld-url-resolve/adl"
	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldcfg"
)

// System bundles everything a lens, a resolve, or a patch operation
// needs beyond the URL and patch set themselves.
type System struct {
	Store  dagnode.Store
	ADLs   *adl.Registry
	Config *ipldcfg.Config
}

// New builds a System from a store and an ADL registry, filling in
// default configuration if cfg is nil. If cfg names any ADLDefaults,
// each one must already be registered on registry: ADL functions are
// always user-supplied (spec.md §4.2's "user-supplied ADL functions
// registered by name"), so New cannot mint one from a bare name — it
// only checks the config and the registry actually agree, panicking on
// a mismatch the same way adl.Registry.Register panics on a bad
// registration, so a config/wiring drift is caught at construction
// rather than at the first UnknownADL resolve.
func New(store dagnode.Store, registry *adl.Registry, cfg *ipldcfg.Config) *System {
	if registry == nil {
		registry = adl.NewRegistry()
	}
	if cfg == nil {
		cfg = ipldcfg.Default()
	}
	for _, name := range cfg.ADLDefaults {
		if _, ok := registry.Lookup(name); !ok {
			panic(fmt.Sprintf("ipldsys: config names ADL default %q but it is not registered on the given registry", name))
		}
	}
	return &System{Store: store, ADLs: registry, Config: cfg}
}
