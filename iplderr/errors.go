// Package iplderr defines the error taxonomy shared by the URL model,
// lens pipeline, resolver and patcher.
package iplderr

import "fmt"

// Kind represents the error type. The values are serialized via strings
// and the integer values may change; they should *never* be persisted.
type Kind int

const (
	KindUnknown Kind = iota

	// BadURL is returned when a URL fails to parse: wrong scheme,
	// malformed CID, or unknown multibase.
	BadURL

	// PathNotFound is returned when a segment walk or patch descent
	// cannot find the named key.
	PathNotFound

	// SchemaMismatch is returned when a typed view rejects a node.
	SchemaMismatch

	// UnknownADL is returned when a segment names an ADL that is not
	// registered.
	UnknownADL

	// UnsupportedCodec is returned when a CID's codec code falls outside
	// the set the patcher knows how to re-save.
	UnsupportedCodec

	// InvalidPatchOp is returned when a patch operation's op field is not
	// one of the enumerated set, or its path is malformed.
	InvalidPatchOp

	// MissingKey is returned when remove/replace target an absent map
	// key or out-of-range list index.
	MissingKey

	// TestFailed is returned when a "test" patch operation's value does
	// not match the value at path.
	TestFailed

	// StoreError wraps a failure from the underlying node store.
	StoreError
)

var kindStrings = map[Kind]string{
	KindUnknown:       "UNKNOWN",
	BadURL:            "BAD_URL",
	PathNotFound:      "PATH_NOT_FOUND",
	SchemaMismatch:    "SCHEMA_MISMATCH",
	UnknownADL:        "UNKNOWN_ADL",
	UnsupportedCodec:  "UNSUPPORTED_CODEC",
	InvalidPatchOp:    "INVALID_PATCH_OP",
	MissingKey:        "MISSING_KEY",
	TestFailed:        "TEST_FAILED",
	StoreError:        "STORE_ERROR",
}

var kindMessages = map[Kind]string{
	KindUnknown:      "unknown error",
	BadURL:           "malformed ipld:// URL",
	PathNotFound:     "path segment not found",
	SchemaMismatch:   "node did not match schema type",
	UnknownADL:       "no ADL registered under that name",
	UnsupportedCodec: "CID codec is not supported for patching",
	InvalidPatchOp:   "invalid patch operation",
	MissingKey:       "target key or index does not exist",
	TestFailed:       "test operation value mismatch",
	StoreError:       "node store operation failed",
}

// String returns the canonical identifier for this kind.
func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return kindStrings[KindUnknown]
}

// Message returns the default human-readable message for this kind.
func (k Kind) Message() string {
	if m, ok := kindMessages[k]; ok {
		return m
	}
	return kindMessages[KindUnknown]
}

// Error is the concrete error type surfaced by every package in this
// module. It carries a Kind, a message, and an optional structured
// Detail payload (the offending segment name, known ADL names, expected
// vs. actual values for TestFailed, and so on).
type Error struct {
	Kind    Kind
	Message string
	Detail  map[string]interface{}
	Cause   error
}

// New builds an Error of the given kind with the kind's default message.
func New(kind Kind, detail map[string]interface{}) *Error {
	return &Error{Kind: kind, Message: kind.Message(), Detail: detail}
}

// Newf builds an Error of the given kind with a formatted message,
// preserving detail.
func Newf(kind Kind, detail map[string]interface{}, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Detail: detail}
}

// Wrap builds a StoreError carrying an underlying cause, mirroring how
// the teacher's storage drivers propagate backend failures unchanged.
func Wrap(cause error) *Error {
	if cause == nil {
		return nil
	}
	if ie, ok := cause.(*Error); ok {
		return ie
	}
	return &Error{Kind: StoreError, Message: cause.Error(), Cause: cause}
}

func (e *Error) Error() string {
	if len(e.Detail) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s %v", e.Kind, e.Message, e.Detail)
}

// Unwrap exposes the wrapped store error, if any, to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, letting
// callers write errors.Is(err, iplderr.New(iplderr.PathNotFound, nil)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
