// Package adl is the registry of named, user-supplied Abstract Data
// Layer functions the lens pipeline dispatches to (spec.md §4.2/§6),
// grounded on the teacher's registry/storage/driver/factory package:
// an explicit, threaded registry value rather than a process global
// (spec.md §9 calls the global-registry pattern out explicitly), with
// the same "Register panics on duplicate name" discipline.
package adl

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldurl"
)

// Func is a registered ADL: given the materialized node at a segment,
// the segment's own parameters (including any unrecognised keys, which
// ADLs are free to interpret), and the system handle for nested
// resolution, it returns the node or view that should replace node.
type Func func(ctx context.Context, node dagnode.Node, params ipldurl.Parameters, sys interface{}) (dagnode.Node, error)

// Registry is an ordered name -> Func map. Registration order is
// preserved in Names(); UnknownADL diagnostics list SortedNames().
type Registry struct {
	mu    sync.RWMutex
	order []string
	fns   map[string]Func
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Func)}
}

// Register makes fn available under name. Registering the same name
// twice panics, mirroring factory.Register's "must not silently
// shadow a driver" discipline.
func (r *Registry) Register(name string, fn Func) {
	if fn == nil {
		panic("adl: must not register a nil Func")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.fns[name]; exists {
		panic(fmt.Sprintf("adl: %q already registered", name))
	}
	r.fns[name] = fn
	r.order = append(r.order, name)
}

// Lookup returns the Func registered under name, if any.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[name]
	return fn, ok
}

// Names returns every registered name in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// SortedNames returns every registered name sorted lexically, a more
// stable form for diagnostic messages than registration order when the
// registry is built up across multiple embedders.
func (r *Registry) SortedNames() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}
