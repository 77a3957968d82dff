// Package ipldlog provides context-scoped structured logging for the
// resolver and patcher, in the manner of the teacher's context/logger.go:
// a *logrus.Entry riding along in a context.Context, pulled out at each
// step instead of passed as an explicit parameter.
package ipldlog

import (
	"context"

	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

var root = logrus.New()

// NewContext returns a copy of ctx carrying entry as the active logger.
func NewContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry)
}

// FromContext returns the logger bound to ctx, or a fresh entry off the
// package-level root logger if none was bound.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(root)
}

// WithFields returns a context whose logger has the given fields merged
// into whatever logger was already bound to ctx.
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return NewContext(ctx, FromContext(ctx).WithFields(fields))
}

// SetLevel adjusts the verbosity of the package-level root logger. Used
// by embedders and tests. Every entry built on the root logger follows
// it, including entries bound into a context via WithFields when no
// other logger was bound first; entries built on another logrus.Logger
// (bound with NewContext) are unaffected.
func SetLevel(level logrus.Level) {
	root.SetLevel(level)
}
