package stampengine

import (
	"math"
	"testing"
)

func TestEffectiveWidthAppliesLetterSpacingAndStroke(t *testing.T) {
	base := effectiveWidth(100, 1.0, 5, 0)
	if base != 100 {
		t.Errorf("with letterSpacing=1.0 width should pass through unchanged, got %v", base)
	}

	spaced := effectiveWidth(100, 1.5, 5, 0)
	if spaced <= base {
		t.Errorf("expected wider text with letterSpacing > 1.0, got %v (base %v)", spaced, base)
	}

	stroked := effectiveWidth(100, 1.0, 5, 2)
	if stroked != 104 {
		t.Errorf("expected stroke width to add 2*strokeWidth, got %v", stroked)
	}
}

func TestToUpperIsASCIIOnly(t *testing.T) {
	if got := toUpper("hello World 123"); got != "HELLO WORLD 123" {
		t.Errorf("got %q", got)
	}
}

func TestFitLinearWidthShrinksWhenTooWide(t *testing.T) {
	face, _, err := loadEmbeddedFont("sans-serif-regular")
	if err != nil {
		t.Fatalf("failed to load embedded font: %v", err)
	}
	shaper := NewShaper()

	text := "A reasonably long line of stamp text"
	run, err := shaper.Shape(text, face, 60)
	if err != nil {
		t.Fatalf("unexpected shaping error: %v", err)
	}

	maxWidth := 200.0
	width, finalSize, adj := fitLinearWidth(shaper, face, text, 60, 1.0, 0, maxWidth, &run)

	if adj == nil {
		t.Fatal("expected a FontAdjustment when the text overflows maxAvailableWidth")
	}
	if adj.Reason != ReasonFitWidth {
		t.Errorf("got reason %v, want ReasonFitWidth", adj.Reason)
	}
	if finalSize >= 60 {
		t.Errorf("expected the font size to shrink, got %v", finalSize)
	}
	if finalSize < minFitFontSizePx {
		t.Errorf("expected the font size floor to be respected, got %v", finalSize)
	}
	if width > maxWidth+1 {
		t.Errorf("expected the refit width to respect maxAvailableWidth, got %v (max %v)", width, maxWidth)
	}
}

func TestFitLinearWidthNoShrinkWhenItFits(t *testing.T) {
	face, _, err := loadEmbeddedFont("sans-serif-regular")
	if err != nil {
		t.Fatalf("failed to load embedded font: %v", err)
	}
	shaper := NewShaper()

	text := "Hi"
	run, err := shaper.Shape(text, face, 12)
	if err != nil {
		t.Fatalf("unexpected shaping error: %v", err)
	}

	_, finalSize, adj := fitLinearWidth(shaper, face, text, 12, 1.0, 0, 10000, &run)
	if adj != nil {
		t.Errorf("expected no adjustment when the text already fits, got %+v", adj)
	}
	if finalSize != 12 {
		t.Errorf("expected the font size to stay at 12, got %v", finalSize)
	}
}

func TestRotateImageBicubicExpandsBounds(t *testing.T) {
	src := newTestRGBA(40, 10)
	rotated := rotateImageBicubic(src, 90)
	w, h := rotated.Bounds().Dx(), rotated.Bounds().Dy()
	if math.Abs(float64(w)-10) > 1 || math.Abs(float64(h)-40) > 1 {
		t.Errorf("expected a 90deg rotation to swap dimensions roughly to 10x40, got %dx%d", w, h)
	}
}
