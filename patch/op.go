package patch

import "github.com/RangerMauve/go-ipld-url-resolve/dagnode"

// OpKind names one of the six patch operations of spec.md §4.4.
type OpKind string

const (
	OpAdd     OpKind = "add"
	OpRemove  OpKind = "remove"
	OpReplace OpKind = "replace"
	OpCopy    OpKind = "copy"
	OpMove    OpKind = "move"
	OpTest    OpKind = "test"
)

// Op is one entry of a patch set: {op, path, value?, from?} per
// spec.md §3/§4.4/§6.
type Op struct {
	Op    OpKind
	Path  string
	Value dagnode.Node
	From  string
}
