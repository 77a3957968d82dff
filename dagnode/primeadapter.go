package dagnode

import (
	"fmt"

	"github.com/ipld/go-ipld-prime/datamodel"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"

	"github.com/RangerMauve/go-ipld-url-resolve/cidcodec"
)

// FromPrimeNode converts a github.com/ipld/go-ipld-prime datamodel.Node
// into this package's Node, so an embedder whose schema compiler or
// codec stack is built on go-ipld-prime (named as the schema compiler
// seam in spec.md §4.2) can hand its nodes straight to the resolver and
// patcher.
func FromPrimeNode(n datamodel.Node) (Node, error) {
	switch n.Kind() {
	case datamodel.Kind_Null:
		return Null(), nil
	case datamodel.Kind_Bool:
		v, err := n.AsBool()
		if err != nil {
			return nil, err
		}
		return Bool(v), nil
	case datamodel.Kind_Int:
		v, err := n.AsInt()
		if err != nil {
			return nil, err
		}
		return Int(v), nil
	case datamodel.Kind_Float:
		v, err := n.AsFloat()
		if err != nil {
			return nil, err
		}
		return Float(v), nil
	case datamodel.Kind_String:
		v, err := n.AsString()
		if err != nil {
			return nil, err
		}
		return String(v), nil
	case datamodel.Kind_Bytes:
		v, err := n.AsBytes()
		if err != nil {
			return nil, err
		}
		return Bytes(v), nil
	case datamodel.Kind_Link:
		lnk, err := n.AsLink()
		if err != nil {
			return nil, err
		}
		cl, ok := lnk.(cidlink.Link)
		if !ok {
			return nil, fmt.Errorf("dagnode: unsupported link implementation %T", lnk)
		}
		return NewLink(cidcodec.FromRaw(cl.Cid)), nil
	case datamodel.Kind_List:
		out := NewList()
		it := n.ListIterator()
		for !it.Done() {
			_, v, err := it.Next()
			if err != nil {
				return nil, err
			}
			child, err := FromPrimeNode(v)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, child)
		}
		return out, nil
	case datamodel.Kind_Map:
		out := NewMap()
		it := n.MapIterator()
		for !it.Done() {
			k, v, err := it.Next()
			if err != nil {
				return nil, err
			}
			key, err := k.AsString()
			if err != nil {
				return nil, err
			}
			child, err := FromPrimeNode(v)
			if err != nil {
				return nil, err
			}
			out.Set(key, child)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("dagnode: unsupported prime node kind %v", n.Kind())
	}
}

// ToPrimeNode converts this package's Node into a go-ipld-prime
// datamodel.Node, the inverse of FromPrimeNode, so a block built or
// mutated by the patcher can be handed to a go-ipld-prime codec for
// encoding.
func ToPrimeNode(n Node) (datamodel.Node, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := assemble(nb, n); err != nil {
		return nil, err
	}
	return nb.Build(), nil
}

func assemble(na datamodel.NodeAssembler, n Node) error {
	switch v := n.(type) {
	case Scalar:
		switch v.Kind() {
		case KindNull:
			return na.AssignNull()
		case KindBool:
			return na.AssignBool(v.AsBool())
		case KindInt:
			return na.AssignInt(v.AsInt())
		case KindFloat:
			return na.AssignFloat(v.AsFloat())
		case KindString:
			return na.AssignString(v.AsString())
		case KindBytes:
			return na.AssignBytes(v.AsBytes())
		}
		return fmt.Errorf("dagnode: unreachable scalar kind %v", v.Kind())
	case *Link:
		return na.AssignLink(cidlink.Link{Cid: v.CID.Raw()})
	case *List:
		la, err := na.BeginList(int64(len(v.Items)))
		if err != nil {
			return err
		}
		for _, item := range v.Items {
			if err := assemble(la.AssembleValue(), item); err != nil {
				return err
			}
		}
		return la.Finish()
	case *Map:
		ma, err := na.BeginMap(int64(v.Len()))
		if err != nil {
			return err
		}
		for _, key := range v.Keys() {
			if err := ma.AssembleKey().AssignString(key); err != nil {
				return err
			}
			val, _ := v.Get(key)
			if err := assemble(ma.AssembleValue(), val); err != nil {
				return err
			}
		}
		return ma.Finish()
	default:
		return fmt.Errorf("dagnode: unsupported node type %T", n)
	}
}
