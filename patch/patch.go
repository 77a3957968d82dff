// Package patch implements the copy-on-write patch engine of spec.md
// §4.4: an ordered set of JSON-Patch-style operations applied against a
// URL's target DAG, rebuilding every touched node bottom-up under its
// original codec and returning a new root URL.
//
// It is grounded on the teacher's layerupload.go (a writer/commit
// copy-on-write shape, adapted here from streamed-byte blob commits to
// immutable-node-tree rebuilds) and reuses the resolver package's walk
// for the read-only half of "copy"/"move"/"test" (spec.md §4.4's
// "resolve from-path" step).
package patch

import (
	"context"

	"github.com/google/uuid"

	"github.com/RangerMauve/go-ipld-url-resolve/cidcodec"
	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldlog"
	"github.com/RangerMauve/go-ipld-url-resolve/iplderr"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldsys"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldurl"
	"github.com/RangerMauve/go-ipld-url-resolve/lens"
	"github.com/RangerMauve/go-ipld-url-resolve/resolver"
)

type patcher struct {
	sys          *ipldsys.System
	compiler     lens.SchemaCompiler
	rootParams   ipldurl.Parameters
	baseSegments []ipldurl.Segment
}

// Patch applies ops against url's target DAG in order, each observing
// the effects of the previous, and returns a new URL identical to the
// input except its authority CID names the final root (spec.md §4.4's
// "output" rule: root parameters and segments are preserved).
func Patch(ctx context.Context, sys *ipldsys.System, compiler lens.SchemaCompiler, url *ipldurl.URL, ops []Op) (*ipldurl.URL, error) {
	pt := &patcher{
		sys:          sys,
		compiler:     compiler,
		rootParams:   url.Parameters(),
		baseSegments: url.Segments(),
	}

	rootCID := url.CID()
	// patch.uuid identifies this call's sequence of operations across log
	// lines, the way the teacher's layerupload.go tags every line of a
	// blob upload session with upload.uuid.
	log := ipldlog.FromContext(ctx).WithField("patch.uuid", uuid.NewString())

	for i, op := range ops {
		log.WithField("op", string(op.Op)).WithField("path", op.Path).Debug("applying patch operation")

		var err error
		switch op.Op {
		case OpAdd:
			rootCID, err = pt.mutate(ctx, rootCID, buildSteps(pt.baseSegments, op.Path), leafAdd(op.Value))

		case OpRemove:
			rootCID, err = pt.mutate(ctx, rootCID, buildSteps(pt.baseSegments, op.Path), leafRemove)

		case OpReplace:
			rootCID, err = pt.mutate(ctx, rootCID, buildSteps(pt.baseSegments, op.Path), leafReplace(op.Value))

		case OpCopy:
			var value dagnode.Node
			value, err = pt.readAt(ctx, rootCID, buildSteps(pt.baseSegments, op.From))
			if err == nil {
				rootCID, err = pt.mutate(ctx, rootCID, buildSteps(pt.baseSegments, op.Path), leafAdd(value))
			}

		case OpMove:
			var value dagnode.Node
			value, err = pt.readAt(ctx, rootCID, buildSteps(pt.baseSegments, op.From))
			if err == nil {
				rootCID, err = pt.mutate(ctx, rootCID, buildSteps(pt.baseSegments, op.From), leafRemove)
			}
			if err == nil {
				rootCID, err = pt.mutate(ctx, rootCID, buildSteps(pt.baseSegments, op.Path), leafAdd(value))
			}

		case OpTest:
			var actual dagnode.Node
			actual, err = pt.readAt(ctx, rootCID, buildSteps(pt.baseSegments, op.Path))
			if err == nil && !dagnode.Equal(actual, op.Value) {
				err = iplderr.Newf(iplderr.TestFailed, map[string]interface{}{
					"path":     op.Path,
					"expected": dagnode.Stringify(op.Value),
					"actual":   dagnode.Stringify(actual),
				}, "test failed at %q", op.Path)
			}

		default:
			err = iplderr.Newf(iplderr.InvalidPatchOp, map[string]interface{}{"op": string(op.Op)}, "unrecognized patch op %q", op.Op)
		}

		if err != nil {
			log.WithField("op", string(op.Op)).WithField("index", i).WithField("err", err).Debug("patch operation failed")
			return nil, err
		}
	}

	out := ipldurl.NewWithBase(cidcodec.ToCIDv1(rootCID), pt.sys.Config.Multibase)
	out.SetParameters(url.Parameters())
	out.SetSegments(url.Segments())
	out.SetResolveFinal(url.ResolveFinal())
	return out, nil
}

// readAt resolves a from/path reference with resolve_final_cid forced
// to false, per spec.md §4.4's "no-link-follow" rule for copy/move/test.
func (pt *patcher) readAt(ctx context.Context, rootCID cidcodec.CID, steps []pathStep) (dagnode.Node, error) {
	if len(steps) == 0 {
		return nil, iplderr.New(iplderr.InvalidPatchOp, map[string]interface{}{"reason": "empty path"})
	}
	u := ipldurl.New(rootCID)
	u.SetParameters(pt.rootParams)
	u.SetSegments(stepsToSegments(steps))

	noFollow := false
	return resolver.Resolve(ctx, pt.sys, pt.compiler, u, resolver.Options{ResolveFinalCID: &noFollow})
}

// mutate runs the copy-on-write rebuild for a single add/remove/replace
// leaf operation against rootCID, returning the new root CID.
func (pt *patcher) mutate(ctx context.Context, rootCID cidcodec.CID, steps []pathStep, leaf leafMutator) (cidcodec.CID, error) {
	if len(steps) == 0 {
		return cidcodec.CID{}, iplderr.New(iplderr.InvalidPatchOp, map[string]interface{}{"reason": "empty path"})
	}

	rootNode, err := pt.sys.Store.GetNode(ctx, rootCID)
	if err != nil {
		return cidcodec.CID{}, iplderr.Wrap(err)
	}

	rootView, err := lens.Apply(ctx, rootNode, pt.rootParams, pt.sys, pt.compiler)
	if err != nil {
		return cidcodec.CID{}, err
	}

	newTyped, err := pt.rewrite(ctx, rootView, steps, leaf)
	if err != nil {
		return cidcodec.CID{}, err
	}

	substrateNode, err := rootView.ToSubstrate(newTyped)
	if err != nil {
		return cidcodec.CID{}, err
	}

	codec, err := cidcodec.CodecFor(rootCID, pt.sys.Config.Codecs)
	if err != nil {
		return cidcodec.CID{}, err
	}

	newCID, err := pt.sys.Store.SaveNode(ctx, substrateNode, codec)
	if err != nil {
		return cidcodec.CID{}, iplderr.Wrap(err)
	}
	return newCID, nil
}

// rewrite descends through steps starting from view (the current,
// already-lensed container), returning the new, lensed value to stand
// in its place. At the leaf it invokes leaf directly; at every other
// level it re-lenses the named child (tagging it first if the parent
// view says it's a link with an expected type), recurses, strips the
// recursive result back to substrate, and — only if the child was
// itself reached by crossing a link — re-saves it under its original
// codec before splicing the new link in. Non-link children are spliced
// back in place without touching the store (spec.md §4.4).
func (pt *patcher) rewrite(ctx context.Context, view *lens.View, steps []pathStep, leaf leafMutator) (dagnode.Node, error) {
	node := view.Node()
	name := steps[0].name

	if len(steps) == 1 {
		return leaf(node, name)
	}

	child, ok := dagnode.GetProperty(node, name)
	if !ok {
		return nil, iplderr.Newf(iplderr.PathNotFound, map[string]interface{}{"segment": name}, "no such path segment %q", name)
	}

	link, isLink := child.(*dagnode.Link)
	if isLink {
		if schemaCID, typeName, tagged := view.ExpectedTypeFor(name); tagged {
			link = link.Tagged(schemaCID, typeName)
		}
	}

	params := steps[0].params
	if isLink {
		params = lens.ParamsWithTag(link, params)
	}

	childView, err := lens.Apply(ctx, child, params, pt.sys, pt.compiler)
	if err != nil {
		return nil, err
	}

	newTyped, err := pt.rewrite(ctx, childView, steps[1:], leaf)
	if err != nil {
		return nil, err
	}

	substrateNode, err := childView.ToSubstrate(newTyped)
	if err != nil {
		return nil, err
	}

	if !isLink {
		result, ok := dagnode.WithProperty(node, name, substrateNode)
		if !ok {
			return nil, iplderr.Newf(iplderr.PathNotFound, map[string]interface{}{"segment": name}, "no such path segment %q", name)
		}
		return result, nil
	}

	codec, err := cidcodec.CodecFor(link.CID, pt.sys.Config.Codecs)
	if err != nil {
		return nil, err
	}
	newCID, err := pt.sys.Store.SaveNode(ctx, substrateNode, codec)
	if err != nil {
		return nil, iplderr.Wrap(err)
	}

	result, ok := dagnode.WithProperty(node, name, dagnode.NewLink(newCID))
	if !ok {
		return nil, iplderr.Newf(iplderr.PathNotFound, map[string]interface{}{"segment": name}, "no such path segment %q", name)
	}
	return result, nil
}

