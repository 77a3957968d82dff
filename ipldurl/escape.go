package ipldurl

import (
	"net/url"
	"strings"
)

// escapeComponent percent-encodes name/value text for use inside a
// segment name or a "k=v" parameter. ";" must come out as %3B because it
// is the segment-parameter delimiter; net/url.PathEscape already escapes
// it that way, and the ReplaceAll below guarantees it regardless.
func escapeComponent(s string) string {
	escaped := url.PathEscape(s)
	return strings.ReplaceAll(escaped, ";", "%3B")
}

// unescapeComponent is the inverse of escapeComponent. Ordinary percent-
// decoding already turns %3B back into ";" along with every other
// escape, so no extra step is needed on this side.
func unescapeComponent(s string) (string, error) {
	return url.PathUnescape(s)
}
