package stampengine

import "testing"

func TestParseWeight(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"bold", 700, true},
		{"Bold", 700, true},
		{"SemiBold", 600, true},
		{"650", 600, true},
		{"", 0, false},
		{"not-a-weight", 0, false},
	}
	for _, c := range cases {
		got, ok := parseWeight(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("parseWeight(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestFontRegistryResolveExactMatch(t *testing.T) {
	reg := NewFontRegistry(map[string]string{"Montserrat": "/fonts/Montserrat.ttf"})
	rec := reg.Resolve("Montserrat", "")
	if rec == nil || rec.Family != "Montserrat" {
		t.Fatalf("expected exact match, got %+v", rec)
	}
}

func TestFontRegistryResolveWeightedName(t *testing.T) {
	reg := NewFontRegistry(map[string]string{
		"Montserrat-Bold": "/fonts/Montserrat-Bold.ttf",
	})
	rec := reg.Resolve("Montserrat", "bold")
	if rec == nil || rec.Family != "Montserrat-Bold" {
		t.Fatalf("expected weighted-name match, got %+v", rec)
	}
}

func TestFontRegistryResolveCaseInsensitive(t *testing.T) {
	reg := NewFontRegistry(map[string]string{"Arial": "/fonts/Arial.ttf"})
	rec := reg.Resolve("arial", "")
	if rec == nil || rec.Family != "Arial" {
		t.Fatalf("expected case-insensitive match, got %+v", rec)
	}
}

func TestFontRegistryResolveFallsBackToSystemDefault(t *testing.T) {
	reg := NewFontRegistry(nil)
	rec := reg.Resolve("SomeUnknownFont", "")
	if rec == nil || rec.Family != defaultSystemFamily {
		t.Fatalf("expected system default fallback, got %+v", rec)
	}
}

func TestFontRegistryEmpty(t *testing.T) {
	reg := &FontRegistry{byName: map[string]*FontRecord{}}
	if !reg.Empty() {
		t.Error("expected Empty() to report true for a registry with no records")
	}
}
