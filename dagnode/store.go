package dagnode

import (
	"context"

	"github.com/RangerMauve/go-ipld-url-resolve/cidcodec"
)

// Store is the external node store the resolver and patcher consume,
// supplied by the embedder per spec.md §1/§6. It is grounded directly on
// the teacher's content-addressed Get/Put services (root manifests.go's
// ManifestService.Get/Put, blobs.go's BlobService.Get/Writer) collapsed
// into the single get/put-by-content-address pair this spec needs.
type Store interface {
	// GetNode fetches and decodes the block named by c.
	GetNode(ctx context.Context, c cidcodec.CID) (Node, error)

	// SaveNode encodes n under the given codec and stores it, returning
	// the CID of the exact bytes written.
	SaveNode(ctx context.Context, n Node, codec cidcodec.Codec) (cidcodec.CID, error)
}
