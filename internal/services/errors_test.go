package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := Wrap(ErrTransient, "mover", "move file", "failed to move into CAD", cause)

	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	want := "transient failure: mover: move file: failed to move into CAD: permission denied"
	if err.Error() != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", err.Error(), want)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("nil marker should default to transient, got %v", err)
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(Wrap(ErrTransient, "monitor", "watch", "", nil)) {
		t.Fatal("transient errors should be retryable")
	}
	if IsRetryable(Wrap(ErrValidation, "naming", "validate", "", nil)) {
		t.Fatal("validation errors should not be retryable")
	}
}
