// Package dagnode is the in-memory decoded form of one IPLD block, and
// the Store contract the resolver and patcher consume to read and write
// blocks. It deliberately does not decode or encode bytes itself — that
// is the codec implementations' job (spec.md §1) — it only represents
// the decoded shape and lets the core walk, compare, and rebuild it.
package dagnode

import (
	"fmt"

	"github.com/RangerMauve/go-ipld-url-resolve/cidcodec"
)

// Kind identifies which of the four IPLD node shapes a Node is.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindMap
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindLink:
		return "link"
	default:
		return "invalid"
	}
}

// Node is one decoded IPLD value: a Scalar, a *List, a *Map, or a *Link.
// A Node never owns the nodes any Link it contains reaches; those are
// resolved through a Store.
type Node interface {
	Kind() Kind
}

// Scalar is a null, boolean, integer, float, string, or bytes value.
type Scalar struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	bytes []byte
}

func Null() Scalar           { return Scalar{kind: KindNull} }
func Bool(v bool) Scalar     { return Scalar{kind: KindBool, b: v} }
func Int(v int64) Scalar     { return Scalar{kind: KindInt, i: v} }
func Float(v float64) Scalar { return Scalar{kind: KindFloat, f: v} }
func String(v string) Scalar { return Scalar{kind: KindString, s: v} }
func Bytes(v []byte) Scalar  { return Scalar{kind: KindBytes, bytes: v} }

func (s Scalar) Kind() Kind      { return s.kind }
func (s Scalar) AsBool() bool    { return s.b }
func (s Scalar) AsInt() int64    { return s.i }
func (s Scalar) AsFloat() float64 { return s.f }
func (s Scalar) AsString() string { return s.s }
func (s Scalar) AsBytes() []byte  { return s.bytes }

// Equal is the comparison the "test" patch op uses: scalars compare by
// value and links by CID identity (a link is never followed to compare
// the content it names). Lists compare element by element in order, and
// maps key by key regardless of insertion order, recursing into nested
// lists and maps with the same rules.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Scalar:
		bv := b.(Scalar)
		switch av.kind {
		case KindNull:
			return true
		case KindBool:
			return av.b == bv.b
		case KindInt:
			return av.i == bv.i
		case KindFloat:
			return av.f == bv.f
		case KindString:
			return av.s == bv.s
		case KindBytes:
			return string(av.bytes) == string(bv.bytes)
		}
		return false
	case *Link:
		bv := b.(*Link)
		return av.CID.Equals(bv.CID)
	case *List:
		bv := b.(*List)
		if len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *Map:
		bv := b.(*Map)
		if av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.Keys() {
			bval, ok := bv.Get(k)
			if !ok {
				return false
			}
			aval, _ := av.Get(k)
			if !Equal(aval, bval) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// List is an ordered sequence of nodes.
type List struct {
	Items []Node
}

func NewList(items ...Node) *List { return &List{Items: items} }

func (l *List) Kind() Kind { return KindList }

// Clone makes a shallow copy of the list's item slice, the level of
// copying the copy-on-write patch walk needs: the caller mutates the
// clone's slice in place without disturbing the original node that is
// still reachable from an un-mutated sibling branch.
func (l *List) Clone() *List {
	items := make([]Node, len(l.Items))
	copy(items, l.Items)
	return &List{Items: items}
}

// mapEntry preserves insertion order, per spec.md §3 ("insertion order
// is preserved for re-serialization").
type mapEntry struct {
	Key   string
	Value Node
}

// Map is a string-keyed mapping whose insertion order is preserved.
type Map struct {
	entries []mapEntry
	index   map[string]int
}

func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

func (m *Map) Kind() Kind { return KindMap }

// Get returns the value at key and whether it was present.
func (m *Map) Get(key string) (Node, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Set inserts key=value, appending it if key is new and overwriting the
// value in place (preserving position) if key already exists.
func (m *Map) Set(key string, value Node) {
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, mapEntry{Key: key, Value: value})
}

// Delete removes key if present; it is a no-op otherwise. Positions of
// later keys shift down to keep the slice dense.
func (m *Map) Delete(key string) {
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	delete(m.index, key)
	for k, idx := range m.index {
		if idx > i {
			m.index[k] = idx - 1
		}
	}
}

// Keys returns the map's keys in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Clone makes a shallow copy: a new entry slice and index, sharing
// value references with the original.
func (m *Map) Clone() *Map {
	clone := &Map{
		entries: make([]mapEntry, len(m.entries)),
		index:   make(map[string]int, len(m.index)),
	}
	copy(clone.entries, m.entries)
	for k, v := range m.index {
		clone.index[k] = v
	}
	return clone
}

// Link is a CID embedded inside a node as a value. ExpectedType, when
// non-empty, tags the link with the schema type name the lens pipeline
// must apply to the node once it is materialized (spec.md §4.2's
// link-preserving schema views). It is this module's replacement for
// the source's "bolt metadata onto the CID object" pattern (spec.md §9):
// the tag travels on the (CID, ExpectedType) pair returned from a typed
// view's field access, not on the CID value itself.
type Link struct {
	CID          cidcodec.CID
	ExpectedType string
	SchemaCID    cidcodec.CID
}

func NewLink(c cidcodec.CID) *Link { return &Link{CID: c} }

func (l *Link) Kind() Kind { return KindLink }

// Tagged returns a copy of the link carrying the schema CID and
// expected type name the resolver must apply once the link is
// materialized, per spec.md §4.2's link-preserving schema views.
func (l *Link) Tagged(schemaCID cidcodec.CID, typeName string) *Link {
	return &Link{CID: l.CID, SchemaCID: schemaCID, ExpectedType: typeName}
}

// Stringify renders a short, printable form of a node for diagnostics
// (SchemaMismatch error detail per spec.md §4.2/§7).
func Stringify(n Node) string {
	if n == nil {
		return "<nil>"
	}
	switch v := n.(type) {
	case Scalar:
		switch v.kind {
		case KindNull:
			return "null"
		case KindBool:
			return fmt.Sprintf("%t", v.b)
		case KindInt:
			return fmt.Sprintf("%d", v.i)
		case KindFloat:
			return fmt.Sprintf("%g", v.f)
		case KindString:
			return fmt.Sprintf("%q", v.s)
		case KindBytes:
			return fmt.Sprintf("bytes(%d)", len(v.bytes))
		}
	case *Link:
		return fmt.Sprintf("link(%s)", v.CID.String())
	case *List:
		return fmt.Sprintf("list(%d items)", len(v.Items))
	case *Map:
		return fmt.Sprintf("map(%d keys)", v.Len())
	}
	return "<unknown>"
}
