package dagnode

import "strconv"

// GetProperty reads the child of node named name: a map key lookup for
// a *Map, a parsed index lookup for a *List. ok is false whenever name
// does not resolve to a value — scalars, links, and out-of-range or
// non-numeric list indices all report not-found rather than panicking,
// leaving the caller to attach the right error Kind (PathNotFound during
// a walk, MissingKey during a patch leaf op).
func GetProperty(node Node, name string) (Node, bool) {
	switch v := node.(type) {
	case *Map:
		return v.Get(name)
	case *List:
		idx, ok := listIndex(name, len(v.Items))
		if !ok {
			return nil, false
		}
		return v.Items[idx], true
	default:
		return nil, false
	}
}

// WithProperty returns a shallow copy of node with the existing child
// named name replaced by value. It requires the child already exist
// (map key present, list index in range) — this is the "replace" shape
// the copy-on-write rebuild and the patch "replace" op both need, as
// opposed to InsertProperty's "may grow the container" shape.
func WithProperty(node Node, name string, value Node) (Node, bool) {
	switch v := node.(type) {
	case *Map:
		if _, ok := v.Get(name); !ok {
			return nil, false
		}
		clone := v.Clone()
		clone.Set(name, value)
		return clone, true
	case *List:
		idx, ok := listIndex(name, len(v.Items))
		if !ok {
			return nil, false
		}
		clone := v.Clone()
		clone.Items[idx] = value
		return clone, true
	default:
		return nil, false
	}
}

// InsertProperty returns a shallow copy of node with value inserted at
// name: a map key is set (inserted or overwritten), a list index shifts
// later elements right, and "-" appends — the patch "add" op's shape
// (spec.md §4.4).
func InsertProperty(node Node, name string, value Node) (Node, bool) {
	switch v := node.(type) {
	case *Map:
		clone := v.Clone()
		clone.Set(name, value)
		return clone, true
	case *List:
		clone := v.Clone()
		if name == "-" {
			clone.Items = append(clone.Items, value)
			return clone, true
		}
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 || idx > len(clone.Items) {
			return nil, false
		}
		grown := make([]Node, 0, len(clone.Items)+1)
		grown = append(grown, clone.Items[:idx]...)
		grown = append(grown, value)
		grown = append(grown, clone.Items[idx:]...)
		clone.Items = grown
		return clone, true
	default:
		return nil, false
	}
}

// RemoveProperty returns a shallow copy of node with the child named
// name removed. ok is false if name is absent (map) or out of range
// (list) — the patch "remove" op's shape (spec.md §4.4).
func RemoveProperty(node Node, name string) (Node, bool) {
	switch v := node.(type) {
	case *Map:
		if _, ok := v.Get(name); !ok {
			return nil, false
		}
		clone := v.Clone()
		clone.Delete(name)
		return clone, true
	case *List:
		idx, ok := listIndex(name, len(v.Items))
		if !ok {
			return nil, false
		}
		clone := v.Clone()
		clone.Items = append(clone.Items[:idx], clone.Items[idx+1:]...)
		return clone, true
	default:
		return nil, false
	}
}

func listIndex(name string, length int) (int, bool) {
	idx, err := strconv.Atoi(name)
	if err != nil || idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}
