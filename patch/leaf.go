package patch

import (
	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/iplderr"
)

// leafMutator is invoked once the copy-on-write walk reaches the parent
// of the mutation target, per spec.md §4.4: "at the leaf, invoke the
// operation's mutator on (parent_node, leaf_name)". It returns the new
// parent node.
type leafMutator func(parent dagnode.Node, name string) (dagnode.Node, error)

func leafAdd(value dagnode.Node) leafMutator {
	return func(parent dagnode.Node, name string) (dagnode.Node, error) {
		result, ok := dagnode.InsertProperty(parent, name, value)
		if !ok {
			return nil, iplderr.Newf(iplderr.InvalidPatchOp, map[string]interface{}{"path": name}, "cannot add at %q", name)
		}
		return result, nil
	}
}

func leafRemove(parent dagnode.Node, name string) (dagnode.Node, error) {
	result, ok := dagnode.RemoveProperty(parent, name)
	if !ok {
		return nil, iplderr.New(iplderr.MissingKey, map[string]interface{}{"key": name})
	}
	return result, nil
}

func leafReplace(value dagnode.Node) leafMutator {
	return func(parent dagnode.Node, name string) (dagnode.Node, error) {
		result, ok := dagnode.WithProperty(parent, name, value)
		if !ok {
			return nil, iplderr.New(iplderr.MissingKey, map[string]interface{}{"key": name})
		}
		return result, nil
	}
}
