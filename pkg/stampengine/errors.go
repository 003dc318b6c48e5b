package stampengine

// EngineErrorKind enumerates the recoverable failure kinds a single text
// element can hit while rendering a stamp. None of them abort the batch;
// the Orchestrator swallows them per element and continues (see §7 of
// SPEC_FULL.md).
type EngineErrorKind int

const (
	// ErrNone is the zero value; never surfaced to callers.
	ErrNone EngineErrorKind = iota
	// ErrNoFontsAvailable means the registry has no usable face at all.
	ErrNoFontsAvailable
	// ErrFaceLoadFailed means a specific font file could not be read/parsed.
	// ColorFromHex also reports a malformed color string with this kind.
	ErrFaceLoadFailed
	// ErrInstancingFailed means the variable instancer fell back to the
	// original (un-instanced) face.
	ErrInstancingFailed
	// ErrShaperFailed means shaping fell back to per-character placement.
	ErrShaperFailed
	// ErrRotationOOB means a rotated strip had to be clamped to the canvas margins.
	ErrRotationOOB
	// ErrBackgroundLoadFailed means the background image was skipped.
	ErrBackgroundLoadFailed
	// ErrFitLoopDiverged is reported by RenderCircular when the radius is not
	// positive, so no arc can be fitted. A fit loop that reaches its
	// iteration cap keeps its last size and reports no error.
	ErrFitLoopDiverged
)

func (k EngineErrorKind) String() string {
	switch k {
	case ErrNoFontsAvailable:
		return "no fonts available"
	case ErrFaceLoadFailed:
		return "face load failed"
	case ErrInstancingFailed:
		return "instancing failed"
	case ErrShaperFailed:
		return "shaper failed"
	case ErrRotationOOB:
		return "rotation out of bounds"
	case ErrBackgroundLoadFailed:
		return "background load failed"
	case ErrFitLoopDiverged:
		return "fit loop diverged"
	default:
		return "no error"
	}
}

// Error is the engine's error type, modeled on cairo.Error: a small struct
// carrying a classification and a message, with Is() so callers can match
// on Kind via errors.Is.
type Error struct {
	Kind EngineErrorKind
	Msg  string
}

func (e Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String()
}

// Is implements the errors.Is interface for comparing against a sentinel Error{Kind: ...}.
func (e Error) Is(target error) bool {
	if t, ok := target.(Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func newError(kind EngineErrorKind, msg string) error {
	if kind == ErrNone {
		return nil
	}
	return Error{Kind: kind, Msg: msg}
}
