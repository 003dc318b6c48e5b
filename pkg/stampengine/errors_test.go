package stampengine

import (
	"errors"
	"testing"
)

func TestErrorIs(t *testing.T) {
	err := newError(ErrFaceLoadFailed, "boom")

	if !errors.Is(err, Error{Kind: ErrFaceLoadFailed}) {
		t.Error("expected errors.Is to match on Kind")
	}
	if errors.Is(err, Error{Kind: ErrShaperFailed}) {
		t.Error("errors.Is matched the wrong Kind")
	}
}

func TestNewErrorNoneIsNil(t *testing.T) {
	if err := newError(ErrNone, "unused"); err != nil {
		t.Errorf("expected nil error for ErrNone, got %v", err)
	}
}

func TestErrorMessageFallsBackToKind(t *testing.T) {
	err := Error{Kind: ErrRotationOOB}
	if err.Error() != ErrRotationOOB.String() {
		t.Errorf("got %q, want %q", err.Error(), ErrRotationOOB.String())
	}
}
