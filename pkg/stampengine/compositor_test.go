package stampengine

import (
	"image/color"
	"testing"
)

func TestClampInt(t *testing.T) {
	if clampInt(-5, 0, 10) != 0 {
		t.Error("expected clamp to lower bound")
	}
	if clampInt(50, 0, 10) != 10 {
		t.Error("expected clamp to upper bound")
	}
	if clampInt(5, 0, 10) != 5 {
		t.Error("expected in-range value to pass through")
	}
}

func TestSharpenNoopWhenNotUpscaled(t *testing.T) {
	canvas := &Canvas{Width: 4, Height: 4, ScaleFactor: 1.0, Image: newTestRGBA(4, 4)}
	canvas.Image.Set(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	before := make([]byte, len(canvas.Image.Pix))
	copy(before, canvas.Image.Pix)

	Sharpen(canvas)

	for i := range before {
		if canvas.Image.Pix[i] != before[i] {
			t.Fatal("Sharpen should be a no-op when ScaleFactor <= 1.0")
		}
	}
}

func TestSharpenRunsWhenUpscaled(t *testing.T) {
	canvas := &Canvas{Width: 10, Height: 10, ScaleFactor: 2.0, Image: newTestRGBA(10, 10)}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := uint8((x + y) * 10)
			canvas.Image.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}

	// Should not panic and should preserve full opacity.
	Sharpen(canvas)

	_, _, _, a := canvas.Image.At(5, 5).RGBA()
	if a>>8 != 255 {
		t.Errorf("expected alpha to remain 255 after sharpening, got %v", a>>8)
	}
}

func TestLoadBackgroundRejectsMissingFile(t *testing.T) {
	canvas := NewCanvas(400, 400)
	if err := LoadBackground(canvas, "/does/not/exist.png"); err == nil {
		t.Error("expected an error for a missing background file")
	}
}
