package stampengine

import "testing"

func TestReverseString(t *testing.T) {
	if got := reverseString("abcde"); got != "edcba" {
		t.Errorf("got %q", got)
	}
	if got := reverseString(""); got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestRenderCircularPlacesGlyphsWithoutError(t *testing.T) {
	face, data, err := loadEmbeddedFont("sans-serif-regular")
	if err != nil {
		t.Fatalf("failed to load embedded font: %v", err)
	}
	rec := &FontRecord{Family: defaultSystemFamily}
	rec.face, rec.data = face, data

	canvas := NewCanvas(1000, 1000)
	el := &TextElement{
		ID:    "circ1",
		Value: "CIRCULAR TEXT SAMPLE",
		Color: Color{A: 255},
		Position: Position{
			X:                500,
			Y:                500,
			IsCircular:       true,
			Radius:           300,
			BaseAngle:        0,
			LayoutMode:       LayoutCenterAligned,
			BaselinePosition: BaselineInside,
			MaxAngle:         360,
		},
		FontSize: 24,
	}

	shaper := NewShaper()
	if _, err := RenderCircular(canvas, el, rec, shaper); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRenderCircularRejectsNonPositiveRadius(t *testing.T) {
	face, data, err := loadEmbeddedFont("sans-serif-regular")
	if err != nil {
		t.Fatalf("failed to load embedded font: %v", err)
	}
	rec := &FontRecord{Family: defaultSystemFamily}
	rec.face, rec.data = face, data

	canvas := NewCanvas(500, 500)
	el := &TextElement{
		ID:       "circ2",
		Value:    "X",
		FontSize: 24,
		Position: Position{IsCircular: true, Radius: 0},
	}

	if _, err := RenderCircular(canvas, el, rec, NewShaper()); err == nil {
		t.Error("expected an error for a non-positive radius")
	}
}

func TestRenderCircularShrinksFontWhenOverMaxAngle(t *testing.T) {
	face, data, err := loadEmbeddedFont("sans-serif-regular")
	if err != nil {
		t.Fatalf("failed to load embedded font: %v", err)
	}
	rec := &FontRecord{Family: defaultSystemFamily}
	rec.face, rec.data = face, data

	canvas := NewCanvas(1000, 1000)
	el := &TextElement{
		ID:       "circ3",
		Value:    "A VERY LONG PIECE OF CIRCULAR STAMP TEXT THAT WONT FIT",
		FontSize: 60,
		Color:    Color{A: 255},
		Position: Position{
			X: 500, Y: 500, IsCircular: true, Radius: 150,
			LayoutMode: LayoutCenterAligned, MaxAngle: 90,
		},
	}

	adj, err := RenderCircular(canvas, el, rec, NewShaper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj == nil {
		t.Fatal("expected a FontAdjustment when the arc overflows MaxAngle")
	}
	if adj.Reason != ReasonFitMaxAngle {
		t.Errorf("got reason %v, want ReasonFitMaxAngle", adj.Reason)
	}
	if adj.FinalSize >= 60 {
		t.Errorf("expected the font size to shrink below 60, got %v", adj.FinalSize)
	}
}
