package primeschema

import (
	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/iplderr"
)

type fieldDef struct {
	name     string
	typeName string
	isLink   bool
}

// structView implements lens.TypedView for a struct type under the
// "tuple" or "map" representation strategies.
type structView struct {
	representation string
	fields         []fieldDef
	linkFields     map[string]string
}

func newStructView(def *dagnode.Map) (*structView, error) {
	representation, _ := stringField(def, "representation")

	rawFields, ok := def.Get("fields")
	if !ok {
		return nil, iplderr.New(iplderr.SchemaMismatch, map[string]interface{}{"reason": "struct type missing fields"})
	}
	fieldList, ok := rawFields.(*dagnode.List)
	if !ok {
		return nil, iplderr.New(iplderr.SchemaMismatch, map[string]interface{}{"reason": "struct fields is not a list"})
	}

	fields := make([]fieldDef, 0, len(fieldList.Items))
	linkFields := map[string]string{}
	for _, item := range fieldList.Items {
		fm, ok := item.(*dagnode.Map)
		if !ok {
			return nil, iplderr.New(iplderr.SchemaMismatch, map[string]interface{}{"reason": "struct field is not a map"})
		}
		name, _ := stringField(fm, "name")
		rawType, _ := stringField(fm, "type")
		typeName, isLink := parseFieldType(rawType)
		fields = append(fields, fieldDef{name: name, typeName: typeName, isLink: isLink})
		if isLink {
			linkFields[name] = typeName
		}
	}

	return &structView{representation: representation, fields: fields, linkFields: linkFields}, nil
}

func (s *structView) LinkFields() map[string]string { return s.linkFields }

func (s *structView) ToTyped(node dagnode.Node) (dagnode.Node, bool, error) {
	switch s.representation {
	case "tuple":
		list, ok := node.(*dagnode.List)
		if !ok || len(list.Items) != len(s.fields) {
			return nil, false, nil
		}
		out := dagnode.NewMap()
		for i, f := range s.fields {
			out.Set(f.name, list.Items[i])
		}
		return out, true, nil

	case "map", "":
		m, ok := node.(*dagnode.Map)
		if !ok {
			return nil, false, nil
		}
		out := dagnode.NewMap()
		for _, f := range s.fields {
			v, ok := m.Get(f.name)
			if !ok {
				return nil, false, nil
			}
			out.Set(f.name, v)
		}
		return out, true, nil

	default:
		return nil, false, iplderr.Newf(iplderr.SchemaMismatch, nil, "unsupported struct representation %q", s.representation)
	}
}

func (s *structView) ToRepresentation(typed dagnode.Node) (dagnode.Node, error) {
	m, ok := typed.(*dagnode.Map)
	if !ok {
		return nil, iplderr.New(iplderr.SchemaMismatch, map[string]interface{}{"reason": "typed struct value is not a map"})
	}

	switch s.representation {
	case "tuple":
		list := dagnode.NewList()
		for _, f := range s.fields {
			v, ok := m.Get(f.name)
			if !ok {
				return nil, iplderr.New(iplderr.MissingKey, map[string]interface{}{"field": f.name})
			}
			list.Items = append(list.Items, v)
		}
		return list, nil

	case "map", "":
		out := dagnode.NewMap()
		for _, f := range s.fields {
			v, ok := m.Get(f.name)
			if !ok {
				return nil, iplderr.New(iplderr.MissingKey, map[string]interface{}{"field": f.name})
			}
			out.Set(f.name, v)
		}
		return out, nil

	default:
		return nil, iplderr.Newf(iplderr.SchemaMismatch, nil, "unsupported struct representation %q", s.representation)
	}
}
