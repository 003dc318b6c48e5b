package stampengine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInstanceFileNameEncodesSortedAxes(t *testing.T) {
	name := instanceFileName("/fonts/Montserrat.ttf", map[string]float64{"wght": 700})
	if name != "Montserrat-wght700.ttf" {
		t.Errorf("got %q, want %q", name, "Montserrat-wght700.ttf")
	}
}

func TestInstanceKeyIsOrderIndependent(t *testing.T) {
	a := instanceKey("/fonts/f.ttf", map[string]float64{"wght": 700, "wdth": 100})
	b := instanceKey("/fonts/f.ttf", map[string]float64{"wdth": 100, "wght": 700})
	if a != b {
		t.Errorf("instanceKey should not depend on map iteration order: %q vs %q", a, b)
	}
}

func TestVariableInstancerIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Source.ttf")
	if err := os.WriteFile(src, []byte("fake font bytes"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	vi := NewVariableInstancer(filepath.Join(dir, "scratch"))
	rec := &FontRecord{Family: "Source", Path: src, IsVariable: true}

	p1, err := vi.Instantiate(rec, map[string]float64{"wght": 700})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := vi.Instantiate(rec, map[string]float64{"wght": 700})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1 != p2 {
		t.Errorf("expected idempotent instance path, got %q then %q", p1, p2)
	}
	if filepath.Base(p1) != "Source-wght700.ttf" {
		t.Errorf("got instance filename %q", filepath.Base(p1))
	}
}

func TestVariableInstancerNoAxesReturnsSourcePath(t *testing.T) {
	vi := NewVariableInstancer(t.TempDir())
	rec := &FontRecord{Family: "Source", Path: "/fonts/Source.ttf"}

	p, err := vi.Instantiate(rec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != rec.Path {
		t.Errorf("got %q, want source path %q", p, rec.Path)
	}
}

func TestNormalizedCoordsClampsToRange(t *testing.T) {
	axes := map[string]AxisRange{"wght": {Min: 100, Max: 900, Default: 400}}

	coords := NormalizedCoords(axes, map[string]float64{"wght": 1500})
	if coords["wght"] != 1.0 {
		t.Errorf("expected clamp to 1.0 at the max axis value, got %v", coords["wght"])
	}

	coords = NormalizedCoords(axes, map[string]float64{"wght": 400})
	if coords["wght"] != 0 {
		t.Errorf("expected 0 at the default axis value, got %v", coords["wght"])
	}
}
