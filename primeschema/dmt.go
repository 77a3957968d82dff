// Package primeschema is a reference SchemaCompiler (the seam lens.go
// names in spec.md §4.2) sufficient for the struct (tuple and map
// representation) and map ({KeyType:ValueType}, listpairs/map
// representation) strategies the spec's own scenarios exercise (S2, S3,
// S6). It is explicitly a reference implementation, not a claim to
// implement the IPLD schema DSL: the schema "DMT" it reads is this
// package's own small dagnode-based tree rather than output from a real
// schema parser. Unions are not handled: Compile reports SchemaMismatch
// for a union type (as for any kind other than struct, map and list)
// rather than passing the node through untyped.
//
// Field/type vocabulary mirrors github.com/ipld/go-ipld-prime/schema's
// TypedNode and representation-strategy naming, without depending on
// that package's DSL parser.
package primeschema

import (
	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/iplderr"
)

// FieldSpec describes one field of a struct type for DMT construction.
// A Type beginning with "&" names a link whose expected type is the
// rest of the string (spec.md §4.2's link-preserving schema views).
type FieldSpec struct {
	Name string
	Type string
}

// NewStructDMT builds a single-type schema DMT for a struct type.
func NewStructDMT(typeName, representation string, fields []FieldSpec) dagnode.Node {
	fieldList := dagnode.NewList()
	for _, f := range fields {
		fm := dagnode.NewMap()
		fm.Set("name", dagnode.String(f.Name))
		fm.Set("type", dagnode.String(f.Type))
		fieldList.Items = append(fieldList.Items, fm)
	}
	def := dagnode.NewMap()
	def.Set("kind", dagnode.String("struct"))
	def.Set("representation", dagnode.String(representation))
	def.Set("fields", fieldList)
	return wrapType(typeName, def)
}

// NewMapDMT builds a single-type schema DMT for a {KeyType:ValueType}
// map type (e.g. "representation listpairs").
func NewMapDMT(typeName, representation string) dagnode.Node {
	def := dagnode.NewMap()
	def.Set("kind", dagnode.String("map"))
	def.Set("representation", dagnode.String(representation))
	return wrapType(typeName, def)
}

// NewListDMT builds a single-type schema DMT for a [ValueType] list
// type. Per spec.md §9 Open Question 2, this package reads the field as
// list.valueType, not the source's apparent map.valueType typo.
func NewListDMT(typeName, valueType string) dagnode.Node {
	def := dagnode.NewMap()
	def.Set("kind", dagnode.String("list"))
	def.Set("representation", dagnode.String("list"))
	def.Set("valueType", dagnode.String(valueType))
	return wrapType(typeName, def)
}

func wrapType(typeName string, def *dagnode.Map) dagnode.Node {
	types := dagnode.NewMap()
	types.Set(typeName, def)
	root := dagnode.NewMap()
	root.Set("types", types)
	return root
}

// MergeDMTs combines several single/multi-type DMTs into one schema, the
// shape a struct whose field links to another named type in the same
// schema needs (spec.md §8 S3: Example links to NestedExample).
func MergeDMTs(dmts ...dagnode.Node) dagnode.Node {
	types := dagnode.NewMap()
	for _, d := range dmts {
		m, ok := d.(*dagnode.Map)
		if !ok {
			continue
		}
		t, ok := m.Get("types")
		if !ok {
			continue
		}
		tm, ok := t.(*dagnode.Map)
		if !ok {
			continue
		}
		for _, k := range tm.Keys() {
			v, _ := tm.Get(k)
			types.Set(k, v)
		}
	}
	root := dagnode.NewMap()
	root.Set("types", types)
	return root
}

func typesOf(dmt dagnode.Node) (*dagnode.Map, error) {
	root, ok := dmt.(*dagnode.Map)
	if !ok {
		return nil, iplderr.New(iplderr.SchemaMismatch, map[string]interface{}{"reason": "schema DMT is not a map"})
	}
	t, ok := root.Get("types")
	if !ok {
		return nil, iplderr.New(iplderr.SchemaMismatch, map[string]interface{}{"reason": "schema DMT has no types"})
	}
	tm, ok := t.(*dagnode.Map)
	if !ok {
		return nil, iplderr.New(iplderr.SchemaMismatch, map[string]interface{}{"reason": "schema DMT types is not a map"})
	}
	return tm, nil
}

func stringField(m *dagnode.Map, key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(dagnode.Scalar)
	if !ok || s.Kind() != dagnode.KindString {
		return "", false
	}
	return s.AsString(), true
}
