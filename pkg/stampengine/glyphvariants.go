package stampengine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/go-text/typesetting/opentype/api"
	"golang.org/x/image/font/sfnt"
)

// GlyphVariantIndex catalogs a face's alternate glyphs named "base.N"
// (e.g. "a.1", "a.2") so the variant renderer can pick a specific ordinal
// for the first/last character of a run, grounded on
// _analyze_font_variants / _get_glyph_variant.
//
// go-text/typesetting's font.Face has no glyph-name enumeration (only a
// per-GID GlyphName lookup with no NumGlyphs to drive it), so the name
// table is scanned instead through golang.org/x/image/font/sfnt, whose
// Font exposes both NumGlyphs and GlyphName against the 'post' table.
// The resulting rune->GID mapping is then translated to the shaping
// face's GID space by ResolveGID, which reuses the numeric index directly;
// variants never share a codepoint with their base glyph and are only
// reachable by GID.
type GlyphVariantIndex struct {
	// variants maps a base rune to its sorted alternate glyph IDs (in the
	// sfnt.Font's own GID space), ordered by numeric suffix ascending.
	variants map[rune][]sfnt.GlyphIndex
}

// BuildGlyphVariantIndex scans raw font bytes' glyph name table for
// "<char>.<n>" entries and groups them by base character.
func BuildGlyphVariantIndex(data []byte) *GlyphVariantIndex {
	idx := &GlyphVariantIndex{variants: make(map[rune][]sfnt.GlyphIndex)}

	f, err := sfnt.Parse(data)
	if err != nil {
		return idx
	}

	type entry struct {
		gid sfnt.GlyphIndex
		n   int
	}
	grouped := make(map[rune][]entry)

	var buf sfnt.Buffer
	numGlyphs := f.NumGlyphs()
	for g := 0; g < numGlyphs; g++ {
		gid := sfnt.GlyphIndex(g)
		name, err := f.GlyphName(&buf, gid)
		if err != nil || name == "" {
			continue
		}
		dot := strings.LastIndexByte(name, '.')
		if dot <= 0 || dot == len(name)-1 {
			continue
		}
		base := name[:dot]
		suffix := name[dot+1:]
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 {
			continue
		}
		baseRunes := []rune(base)
		if len(baseRunes) != 1 {
			continue
		}
		grouped[baseRunes[0]] = append(grouped[baseRunes[0]], entry{gid: gid, n: n})
	}

	for r, entries := range grouped {
		sort.Slice(entries, func(i, j int) bool { return entries[i].n < entries[j].n })
		gids := make([]sfnt.GlyphIndex, len(entries))
		for i, e := range entries {
			gids[i] = e.gid
		}
		idx.variants[r] = gids
	}

	return idx
}

// ResolveGID translates an sfnt glyph index scanned from the name table
// into the go-text/typesetting GID space used by the shaper. Both
// libraries parse the same 'loca'/'glyf' glyph ordering for TrueType
// outlines, so the numeric index is shared directly.
func ResolveGID(idx sfnt.GlyphIndex) api.GID {
	return api.GID(idx)
}

// HasVariants reports whether r has at least one alternate glyph.
func (idx *GlyphVariantIndex) HasVariants(r rune) bool {
	return idx != nil && len(idx.variants[r]) > 0
}

// Variant returns the ordinal-th (0-based) alternate glyph for r. An
// out-of-range ordinal (negative, or >= the number of known alternates)
// reports ok=false so the caller falls back to r's base glyph, matching
// _get_glyph_variant's "0 <= variant_index < len(variants) else variants[0]"
// (variants[0] there is the base glyph itself).
func (idx *GlyphVariantIndex) Variant(r rune, ordinal int) (api.GID, bool) {
	if idx == nil {
		return 0, false
	}
	gids := idx.variants[r]
	if ordinal < 0 || ordinal >= len(gids) {
		return 0, false
	}
	return ResolveGID(gids[ordinal]), true
}
