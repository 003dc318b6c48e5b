package stampengine

import "testing"

func TestHasSFNTTableReportsNoFvarInStaticEmbeddedFont(t *testing.T) {
	// The embedded gofont faces are static, so none of them carry fvar/gvar/cvar.
	data := embeddedFonts["sans-serif-regular"]
	if hasSFNTTable(data, "glyf") == false && hasSFNTTable(data, "CFF ") == false {
		t.Error("expected either glyf or CFF table in a static TTF/OTF")
	}
	if hasSFNTTable(data, "fvar") {
		t.Error("static gofont face should not report an fvar table")
	}
}

func TestHasSFNTTableRejectsShortOrMalformedInput(t *testing.T) {
	if hasSFNTTable(nil, "glyf") {
		t.Error("nil data should never match")
	}
	if hasSFNTTable([]byte{1, 2, 3}, "glyf") {
		t.Error("too-short data should never match")
	}
	if hasSFNTTable([]byte("not a font"), "glyf") {
		t.Error("garbage data should never match")
	}
}

func TestFilenameLooksVariable(t *testing.T) {
	cases := map[string]bool{
		"/fonts/Montserrat-VariableFont_wght.ttf": true,
		"/fonts/Roboto-vf.ttf":                     true,
		"/fonts/Montserrat-Bold.ttf":                false,
		"/fonts/Arial.ttf":                          false,
	}
	for path, want := range cases {
		if got := filenameLooksVariable(path); got != want {
			t.Errorf("filenameLooksVariable(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestLoadEmbeddedFontFallsBackToRegularOnUnknownKey(t *testing.T) {
	face, data, err := loadEmbeddedFont("does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if face == nil || len(data) == 0 {
		t.Error("expected the regular fallback face to load")
	}
}
