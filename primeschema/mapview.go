package primeschema

import (
	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/iplderr"
)

// mapView implements lens.TypedView for a {KeyType:ValueType} map type
// under the "listpairs" or "map" representation strategies (spec.md §8
// S2/S6).
type mapView struct {
	representation string
}

func newMapView(def *dagnode.Map) (*mapView, error) {
	representation, _ := stringField(def, "representation")
	return &mapView{representation: representation}, nil
}

// LinkFields is always empty: this reference compiler does not attempt
// link-preserving views through a map's value type, only through named
// struct fields (spec.md §4.2's acknowledged gaps).
func (v *mapView) LinkFields() map[string]string { return nil }

func (v *mapView) ToTyped(node dagnode.Node) (dagnode.Node, bool, error) {
	switch v.representation {
	case "listpairs":
		list, ok := node.(*dagnode.List)
		if !ok {
			return nil, false, nil
		}
		out := dagnode.NewMap()
		for _, item := range list.Items {
			pair, ok := item.(*dagnode.List)
			if !ok || len(pair.Items) != 2 {
				return nil, false, nil
			}
			key, ok := pair.Items[0].(dagnode.Scalar)
			if !ok || key.Kind() != dagnode.KindString {
				return nil, false, nil
			}
			out.Set(key.AsString(), pair.Items[1])
		}
		return out, true, nil

	case "map", "":
		m, ok := node.(*dagnode.Map)
		if !ok {
			return nil, false, nil
		}
		return m, true, nil

	default:
		return nil, false, iplderr.Newf(iplderr.SchemaMismatch, nil, "unsupported map representation %q", v.representation)
	}
}

func (v *mapView) ToRepresentation(typed dagnode.Node) (dagnode.Node, error) {
	m, ok := typed.(*dagnode.Map)
	if !ok {
		return nil, iplderr.New(iplderr.SchemaMismatch, map[string]interface{}{"reason": "typed map value is not a map"})
	}

	switch v.representation {
	case "listpairs":
		list := dagnode.NewList()
		for _, k := range m.Keys() {
			val, _ := m.Get(k)
			list.Items = append(list.Items, dagnode.NewList(dagnode.String(k), val))
		}
		return list, nil

	case "map", "":
		return m, nil

	default:
		return nil, iplderr.Newf(iplderr.SchemaMismatch, nil, "unsupported map representation %q", v.representation)
	}
}

// listView implements lens.TypedView for a [ValueType] list type under
// the "list" representation strategy. It passes elements through
// unchanged — element-level link tagging for list types is one of
// spec.md §4.2's acknowledged gaps — but reads its value type name from
// "valueType" per spec.md §9 Open Question 2, not the source's apparent
// "map.valueType" typo.
type listView struct {
	valueType string
}

func newListView(def *dagnode.Map) (*listView, error) {
	valueType, _ := stringField(def, "valueType")
	return &listView{valueType: valueType}, nil
}

func (v *listView) LinkFields() map[string]string { return nil }

func (v *listView) ToTyped(node dagnode.Node) (dagnode.Node, bool, error) {
	list, ok := node.(*dagnode.List)
	if !ok {
		return nil, false, nil
	}
	return list, true, nil
}

func (v *listView) ToRepresentation(typed dagnode.Node) (dagnode.Node, error) {
	list, ok := typed.(*dagnode.List)
	if !ok {
		return nil, iplderr.New(iplderr.SchemaMismatch, map[string]interface{}{"reason": "typed list value is not a list"})
	}
	return list, nil
}
