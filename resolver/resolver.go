// Package resolver implements the URL-directed DAG walk of spec.md
// §4.3: starting from a URL's root CID, cross links and apply the lens
// pipeline at every segment, returning either the terminal node or — if
// the final hop was a link the caller didn't ask to follow — its CID.
//
// It is grounded on the teacher's storage/manifeststore.go (digest/tag
// keyed lookup, "not found" mapped to a typed miss) and storage/paths.go
// (path-segment traversal), adapted from a name/tag-keyed manifest
// lookup to a CID/segment DAG walk.
package resolver

import (
	"context"

	"github.com/RangerMauve/go-ipld-url-resolve/dagnode"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldlog"
	"github.com/RangerMauve/go-ipld-url-resolve/iplderr"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldsys"
	"github.com/RangerMauve/go-ipld-url-resolve/ipldurl"
	"github.com/RangerMauve/go-ipld-url-resolve/lens"
)

// Options controls a single Resolve call.
type Options struct {
	// ResolveFinalCID overrides the URL's own trailing-slash flag when
	// non-nil (spec.md §4.3's resolve_final_cid parameter). Left nil,
	// the URL's ResolveFinal() decides — spec.md §9 Open Question 1's
	// resolution.
	ResolveFinalCID *bool
}

// Resolve walks url across store, applying compiler-backed schema views
// and registered ADLs at each segment, and returns the terminus: either
// the resolved node, or — when the final hop was a link and the caller
// asked not to follow it — that link as a *dagnode.Link.
func Resolve(ctx context.Context, sys *ipldsys.System, compiler lens.SchemaCompiler, url *ipldurl.URL, opts Options) (dagnode.Node, error) {
	log := ipldlog.FromContext(ctx)

	rootNode, err := sys.Store.GetNode(ctx, url.CID())
	if err != nil {
		return nil, iplderr.Wrap(err)
	}

	view, err := lens.Apply(ctx, rootNode, url.Parameters(), sys, compiler)
	if err != nil {
		return nil, err
	}

	var lastLink *dagnode.Link

	for _, seg := range url.Segments() {
		child, ok := dagnode.GetProperty(view.Node(), seg.Name)
		if !ok {
			return nil, iplderr.Newf(iplderr.PathNotFound, map[string]interface{}{"segment": seg.Name}, "no such path segment %q", seg.Name)
		}

		link, isLink := child.(*dagnode.Link)
		if !isLink {
			lastLink = nil
			view, err = lens.Apply(ctx, child, seg.Parameters, sys, compiler)
			if err != nil {
				return nil, err
			}
			continue
		}

		if schemaCID, typeName, tagged := view.ExpectedTypeFor(seg.Name); tagged {
			link = link.Tagged(schemaCID, typeName)
		}
		lastLink = link

		fetched, err := sys.Store.GetNode(ctx, link.CID)
		if err != nil {
			return nil, iplderr.Wrap(err)
		}

		params := lens.ParamsWithTag(link, seg.Parameters)
		view, err = lens.Apply(ctx, fetched, params, sys, compiler)
		if err != nil {
			return nil, err
		}

		log.WithField("segment", seg.Name).WithField("cid", link.CID.String()).Debug("crossed link")
	}

	resolveFinal := url.ResolveFinal()
	if opts.ResolveFinalCID != nil {
		resolveFinal = *opts.ResolveFinalCID
	}

	if !resolveFinal && lastLink != nil {
		return lastLink, nil
	}
	return view.Node(), nil
}
