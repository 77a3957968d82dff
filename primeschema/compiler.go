package primeschema

import (
	"context"
	"strings"

	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/iplderr"
	"github.com/RangerMauve/go-ipld-url-resolve/lens"
)

// Compiler implements lens.SchemaCompiler against this package's own
// dagnode-shaped DMT (see dmt.go). It is stateless; callers typically
// share a single instance across System values.
type Compiler struct{}

// New returns a Compiler.
func New() *Compiler {
	return &Compiler{}
}

// Compile resolves typeName inside dmt and builds the matching
// lens.TypedView, dispatching on the type definition's "kind".
func (c *Compiler) Compile(ctx context.Context, dmt dagnode.Node, typeName string) (lens.TypedView, error) {
	types, err := typesOf(dmt)
	if err != nil {
		return nil, err
	}
	raw, ok := types.Get(typeName)
	if !ok {
		return nil, iplderr.Newf(iplderr.SchemaMismatch, map[string]interface{}{"type": typeName}, "schema has no type %q", typeName)
	}
	def, ok := raw.(*dagnode.Map)
	if !ok {
		return nil, iplderr.New(iplderr.SchemaMismatch, map[string]interface{}{"type": typeName, "reason": "type definition is not a map"})
	}

	kind, _ := stringField(def, "kind")
	switch kind {
	case "struct":
		return newStructView(def)
	case "map":
		return newMapView(def)
	case "list":
		return newListView(def)
	default:
		return nil, iplderr.Newf(iplderr.SchemaMismatch, map[string]interface{}{"type": typeName, "kind": kind}, "unsupported type kind %q", kind)
	}
}

func parseFieldType(raw string) (typeName string, isLink bool) {
	if strings.HasPrefix(raw, "&") {
		return strings.TrimPrefix(raw, "&"), true
	}
	return raw, false
}
