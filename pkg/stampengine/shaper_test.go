package stampengine

import (
	"math"
	"testing"

	"golang.org/x/image/math/fixed"
)

func TestFixedToFloat(t *testing.T) {
	v := fixed.Int26_6(12 * 64) // 12.0px
	if got := fixedToFloat(v); got != 12.0 {
		t.Errorf("fixedToFloat(12px) = %v, want 12.0", got)
	}
}

func TestShapeEmbeddedFontProducesPositiveAdvance(t *testing.T) {
	face, _, err := loadEmbeddedFont("sans-serif-regular")
	if err != nil {
		t.Fatalf("failed to load embedded font: %v", err)
	}

	shaper := NewShaper()
	run, err := shaper.Shape("Hello", face, 24)
	if err != nil {
		t.Fatalf("unexpected shaping error: %v", err)
	}

	if len(run.Glyphs) != 5 {
		t.Errorf("got %d glyphs, want 5", len(run.Glyphs))
	}
	if run.Advance <= 0 {
		t.Errorf("expected a positive total advance, got %v", run.Advance)
	}
	if run.Ascent <= 0 {
		t.Errorf("expected a positive ascent, got %v", run.Ascent)
	}
}

func TestShapeEmptyStringHasNoGlyphs(t *testing.T) {
	face, _, err := loadEmbeddedFont("sans-serif-regular")
	if err != nil {
		t.Fatalf("failed to load embedded font: %v", err)
	}

	shaper := NewShaper()
	run, err := shaper.Shape("", face, 24)
	if err != nil {
		t.Fatalf("unexpected shaping error: %v", err)
	}
	if len(run.Glyphs) != 0 {
		t.Errorf("got %d glyphs, want 0", len(run.Glyphs))
	}
}

func TestShapeFallbackProducesPlacedGlyphs(t *testing.T) {
	face, _, err := loadEmbeddedFont("sans-serif-regular")
	if err != nil {
		t.Fatalf("failed to load embedded font: %v", err)
	}

	run := shapeFallback("Hi", face, 24)
	if len(run.Glyphs) != 2 {
		t.Fatalf("got %d glyphs, want 2", len(run.Glyphs))
	}
	for i, g := range run.Glyphs {
		if g.GID == 0 {
			t.Errorf("glyph %d: expected a resolved GID", i)
		}
		if g.ClusterIndex != i {
			t.Errorf("glyph %d: got ClusterIndex %d", i, g.ClusterIndex)
		}
	}
	if run.Advance <= 0 {
		t.Errorf("expected a positive total advance, got %v", run.Advance)
	}
}

func TestKerningForKnownGlyphsDoesNotPanic(t *testing.T) {
	face, _, err := loadEmbeddedFont("sans-serif-regular")
	if err != nil {
		t.Fatalf("failed to load embedded font: %v", err)
	}

	// The embedded static face carries no kern table, so the result should
	// simply be zero rather than erroring or panicking.
	if k := KerningFor(face, 'A', 'V', 24); k != 0 {
		t.Errorf("expected zero kerning without a kern table, got %v", k)
	}
}

func TestAdvanceForIsSizeProportional(t *testing.T) {
	face, _, err := loadEmbeddedFont("sans-serif-regular")
	if err != nil {
		t.Fatalf("failed to load embedded font: %v", err)
	}
	gid, ok := face.NominalGlyph('A')
	if !ok {
		t.Fatal("expected 'A' to resolve to a glyph in the embedded font")
	}

	small := AdvanceFor(face, gid, 10)
	large := AdvanceFor(face, gid, 20)
	if math.Abs(large-2*small) > 0.5 {
		t.Errorf("expected advance to scale linearly with size: 10px=%v, 20px=%v", small, large)
	}
}
