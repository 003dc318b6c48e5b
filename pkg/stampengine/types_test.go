package stampengine

import "testing"

func TestColorFromHex(t *testing.T) {
	c, err := ColorFromHex("#FF6700")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.R != 0xFF || c.G != 0x67 || c.B != 0x00 || c.A != 0xFF {
		t.Errorf("got %+v", c)
	}

	if _, err := ColorFromHex("short"); err == nil {
		t.Error("expected error for malformed hex string")
	}
	if _, err := ColorFromHex("GGGGGG"); err == nil {
		t.Error("expected error for invalid hex digits")
	}
}

func TestNewCanvasUpscalesSmallCanvas(t *testing.T) {
	c := NewCanvas(200, 100)
	if c.Width != 1000 || c.Height != 500 {
		t.Errorf("got %dx%d, want 1000x500", c.Width, c.Height)
	}
	if c.ScaleFactor != 5.0 {
		t.Errorf("got scale factor %v, want 5.0", c.ScaleFactor)
	}
}

func TestNewCanvasLeavesLargeCanvasAlone(t *testing.T) {
	c := NewCanvas(1200, 800)
	if c.Width != 1200 || c.Height != 800 {
		t.Errorf("got %dx%d, want 1200x800", c.Width, c.Height)
	}
	if c.ScaleFactor != 1.0 {
		t.Errorf("got scale factor %v, want 1.0", c.ScaleFactor)
	}
}
