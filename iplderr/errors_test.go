package iplderr

import (
	"errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(PathNotFound, map[string]interface{}{"segment": "foo"})
	if err.Kind != PathNotFound {
		t.Fatalf("Kind = %v, want PathNotFound", err.Kind)
	}
	if got := err.Error(); got == "" {
		t.Fatal("Error() returned empty string")
	}
}

func TestNewfFormatsMessage(t *testing.T) {
	err := Newf(TestFailed, nil, "test failed at %q", "/a/b")
	want := `test failed at "/a/b"`
	if err.Message != want {
		t.Fatalf("Message = %q, want %q", err.Message, want)
	}
}

func TestWrapPassesThroughExistingError(t *testing.T) {
	inner := New(MissingKey, map[string]interface{}{"key": "x"})
	if got := Wrap(inner); got != inner {
		t.Fatalf("Wrap of an *Error should return it unchanged, got %v", got)
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Fatal("Wrap(nil) should return nil")
	}
}

func TestWrapOrdinaryErrorBecomesStoreError(t *testing.T) {
	cause := errors.New("disk on fire")
	wrapped := Wrap(cause)
	if wrapped.Kind != StoreError {
		t.Fatalf("Kind = %v, want StoreError", wrapped.Kind)
	}
	if !errors.Is(wrapped, cause) {
		t.Fatal("errors.Is(wrapped, cause) = false, Unwrap chain is broken")
	}
}

func TestIsComparesByKind(t *testing.T) {
	a := New(BadURL, nil)
	b := Newf(BadURL, map[string]interface{}{"url": "x"}, "different message")
	if !errors.Is(a, b) {
		t.Fatal("two *Error values with the same Kind should satisfy errors.Is")
	}

	c := New(PathNotFound, nil)
	if errors.Is(a, c) {
		t.Fatal("*Error values with different Kinds should not satisfy errors.Is")
	}
}

func TestKindStringAndMessage(t *testing.T) {
	if BadURL.String() != "BAD_URL" {
		t.Fatalf("BadURL.String() = %q, want BAD_URL", BadURL.String())
	}
	if BadURL.Message() == "" {
		t.Fatal("BadURL.Message() is empty")
	}
	if Kind(999).String() != KindUnknown.String() {
		t.Fatal("an unrecognized Kind should fall back to KindUnknown's string")
	}
}
