package stampengine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/go-text/typesetting/font"
)

// FontRecord is the value object the registry resolves a (family, weight)
// request to: a canonical name, a file path, and its variability.
type FontRecord struct {
	Family     string
	Path       string
	IsVariable bool
	Axes       map[string]AxisRange

	face     font.Face
	data     []byte
	variants *GlyphVariantIndex
}

// Face lazily loads and returns the parsed font.Face for this record.
func (r *FontRecord) Face() (font.Face, error) {
	if r.face != nil {
		return r.face, nil
	}
	if r.Path == "" {
		face, data, err := defaultSystemFace()
		if err != nil {
			return nil, err
		}
		r.face, r.data = face, data
		return r.face, nil
	}
	face, data, err := loadFontFromFile(r.Path)
	if err != nil {
		return nil, err
	}
	r.face, r.data = face, data
	return r.face, nil
}

// Variants lazily builds and caches this record's glyph-variant index.
func (r *FontRecord) Variants() *GlyphVariantIndex {
	if r.variants != nil {
		return r.variants
	}
	if _, err := r.Face(); err != nil {
		r.variants = &GlyphVariantIndex{}
		return r.variants
	}
	r.variants = BuildGlyphVariantIndex(r.data)
	return r.variants
}

// weightSynonyms maps named weights to the numeric OpenType weight classes
// (numeric hints are handled by parseWeight itself), grounded on the weight_name_map table
// in _draw_text_with_pil.
var weightSynonyms = map[string]int{
	"thin": 100, "hairline": 100,
	"extralight": 200,
	"light":      300,
	"regular":    400, "normal": 400,
	"medium":   500,
	"semibold": 600,
	"bold":     700,
	"extrabold": 800,
	"black":    900,
}

// weightNames maps the canonical 100..900 weight classes to the name
// fragment used when constructing "Family-WeightName" lookups.
var weightNames = map[int]string{
	100: "Thin", 200: "ExtraLight", 300: "Light", 400: "Regular",
	500: "Medium", 600: "SemiBold", 700: "Bold", 800: "ExtraBold", 900: "Black",
}

// parseWeight converts a string or numeric weight hint into a canonical
// 100..900 weight class, truncating numbers down to the hundred (650 -> 600)
// and clamping them to that range.
func parseWeight(weight string) (int, bool) {
	weight = strings.TrimSpace(weight)
	if weight == "" {
		return 0, false
	}
	if w, ok := weightSynonyms[strings.ToLower(weight)]; ok {
		return w, true
	}
	if n, err := strconv.Atoi(weight); err == nil {
		rounded := (n / 100) * 100
		if rounded < 100 {
			rounded = 100
		}
		if rounded > 900 {
			rounded = 900
		}
		return rounded, true
	}
	return 0, false
}

// FontRegistry catalogs known faces and answers (family, weight) resolution.
type FontRegistry struct {
	byName map[string]*FontRecord // exact, case-sensitive
}

// NewFontRegistry builds a registry from a family->path mapping (the
// decoded request's fontMapping) merged over the built-in system default.
func NewFontRegistry(fontMapping map[string]string) *FontRegistry {
	reg := &FontRegistry{byName: make(map[string]*FontRecord)}

	for family, path := range fontMapping {
		isVariable, axes := AnalyzeFont(path)
		reg.byName[family] = &FontRecord{Family: family, Path: path, IsVariable: isVariable, Axes: axes}
	}

	if _, ok := reg.byName[defaultSystemFamily]; !ok {
		reg.byName[defaultSystemFamily] = &FontRecord{Family: defaultSystemFamily}
	}
	return reg
}

// AnalyzeFont reports whether the font at path exposes OpenType variation
// tables (fvar/gvar/cvar), or — failing that — whether its filename
// suggests a variable font, in which case a default weight axis is assumed.
// Grounded on _analyze_font.
func AnalyzeFont(path string) (bool, map[string]AxisRange) {
	data, _, err := loadFontFromFile(path)
	_ = data // face itself unused here; we need the raw bytes for table scan
	if err != nil {
		return false, nil
	}
	faceCacheMu.RLock()
	raw := dataCache[path]
	faceCacheMu.RUnlock()

	isVariable := hasSFNTTable(raw, "fvar") || hasSFNTTable(raw, "gvar") || hasSFNTTable(raw, "cvar")
	if !isVariable && filenameLooksVariable(path) {
		isVariable = true
	}
	if !isVariable {
		return false, nil
	}
	return true, map[string]AxisRange{"wght": {Min: 100, Max: 900, Default: 400}}
}

// Resolve implements the five-step resolution order of SPEC_FULL.md §4.1 /
// _get_font_info, with the weighted-name construction of
// _draw_text_with_pil folded in as step 2.
func (reg *FontRegistry) Resolve(family, weightHint string) *FontRecord {
	if family == "" {
		return reg.fallback()
	}

	// 1. Exact match.
	if rec, ok := reg.byName[family]; ok {
		return rec
	}

	// 2. Weighted-name construction, only if family has no explicit suffix.
	if weightHint != "" && !strings.Contains(family, "-") {
		if w, ok := parseWeight(weightHint); ok {
			if name, ok := weightNames[w]; ok {
				weighted := family + "-" + name
				if rec, ok := reg.byName[weighted]; ok {
					return rec
				}
			}
		}
	}

	// 3. Case-insensitive match.
	lower := strings.ToLower(family)
	for name, rec := range reg.byName {
		if strings.ToLower(name) == lower {
			return rec
		}
	}

	// 4. Strip "-suffix" and retry 1-3 on the base name, then take the
	// alphabetically first registered "base-..." face.
	if idx := strings.Index(family, "-"); idx >= 0 {
		base := family[:idx]
		if rec, ok := reg.byName[base]; ok {
			return rec
		}
		if w, ok := parseWeight(weightHint); ok {
			if rec, ok := reg.byName[base+"-"+weightNames[w]]; ok {
				return rec
			}
		}
		lowerBase := strings.ToLower(base)
		for name, rec := range reg.byName {
			if strings.ToLower(name) == lowerBase {
				return rec
			}
		}
		var names []string
		for name := range reg.byName {
			if strings.HasPrefix(strings.ToLower(name), lowerBase+"-") {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			sort.Strings(names)
			return reg.byName[names[0]]
		}
	}

	// 5. System default.
	return reg.fallback()
}

func (reg *FontRegistry) fallback() *FontRecord {
	if rec, ok := reg.byName[defaultSystemFamily]; ok {
		return rec
	}
	if len(reg.byName) == 0 {
		return nil
	}
	var names []string
	for name := range reg.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return reg.byName[names[0]]
}

// Empty reports whether the registry has no usable faces at all — the
// NoFontsAvailable condition of §7.
func (reg *FontRegistry) Empty() bool {
	return len(reg.byName) == 0
}
