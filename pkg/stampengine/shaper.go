package stampengine

import (
	"math"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/opentype/api"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// Shaper turns a run of text into positioned glyphs via HarfBuzz, grounded
// on scaledFont.TextExtents's shaping.HarfbuzzShaper usage.
type Shaper struct {
	hb shaping.HarfbuzzShaper
}

// NewShaper constructs a Shaper. The Shaper holds one HarfbuzzShaper value
// that every Shape call on it reuses.
func NewShaper() *Shaper {
	return &Shaper{}
}

// ShapedGlyph is one positioned glyph from a shaped run, in pixels at the
// requested font size.
type ShapedGlyph struct {
	GID          api.GID
	Rune         rune
	ClusterIndex int
	XAdvance     float64
	XOffset      float64
	YOffset      float64
}

// ShapedRun is the result of shaping one text string at one font size.
type ShapedRun struct {
	Glyphs    []ShapedGlyph
	Advance   float64
	Ascent    float64
	Descent   float64
	LineGap   float64
}

// Shape lays out text against face at sizePx pixels per em, left to right.
// On any panic from the shaping engine (malformed face data) it recovers
// and falls back to a per-character rasterization built directly from
// NominalGlyph/HorizontalAdvance lookups (bypassing HarfBuzz entirely), so
// the caller still gets a usable, correctly placed run. The fallback run is
// returned alongside ErrShaperFailed so callers can tell the two paths
// apart without losing the element.
func (s *Shaper) Shape(text string, face font.Face, sizePx float64) (run ShapedRun, err error) {
	defer func() {
		if r := recover(); r != nil {
			run = shapeFallback(text, face, sizePx)
			err = newError(ErrShaperFailed, "shaping panic recovered; used per-character fallback")
		}
	}()

	runes := []rune(text)
	if len(runes) == 0 {
		return ShapedRun{}, nil
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.Int26_6(math.Round(sizePx * 64)),
	}
	output := s.hb.Shape(input)

	glyphs := make([]ShapedGlyph, 0, len(output.Glyphs))
	var advance float64
	for _, g := range output.Glyphs {
		sg := ShapedGlyph{
			GID:          api.GID(g.GlyphID),
			ClusterIndex: int(g.ClusterIndex),
			XAdvance:     fixedToFloat(g.XAdvance),
			XOffset:      fixedToFloat(g.XOffset),
			YOffset:      fixedToFloat(g.YOffset),
		}
		if sg.ClusterIndex >= 0 && sg.ClusterIndex < len(runes) {
			sg.Rune = runes[sg.ClusterIndex]
		}
		glyphs = append(glyphs, sg)
		advance += sg.XAdvance
	}

	ascent, descent, lineGap := faceVerticalMetrics(face, sizePx)

	return ShapedRun{
		Glyphs:  glyphs,
		Advance: advance,
		Ascent:  ascent,
		Descent: descent,
		LineGap: lineGap,
	}, nil
}

// shapeFallback builds a ShapedRun one rune at a time from NominalGlyph and
// HorizontalAdvance, the same manual loop buildVariantRun uses, minus
// variant substitution — the per-character placement path the shaper falls
// back to when HarfBuzz itself cannot be trusted with this face.
func shapeFallback(text string, face font.Face, sizePx float64) ShapedRun {
	runes := []rune(text)
	glyphs := make([]ShapedGlyph, 0, len(runes))
	var advance float64

	for i, r := range runes {
		gid, ok := face.NominalGlyph(r)
		if !ok {
			glyphs = append(glyphs, ShapedGlyph{Rune: r, ClusterIndex: i})
			continue
		}
		adv := AdvanceFor(face, gid, sizePx)
		glyphs = append(glyphs, ShapedGlyph{
			GID:          gid,
			Rune:         r,
			ClusterIndex: i,
			XAdvance:     adv,
		})
		advance += adv
	}

	ascent, descent, lineGap := faceVerticalMetrics(face, sizePx)
	return ShapedRun{Glyphs: glyphs, Advance: advance, Ascent: ascent, Descent: descent, LineGap: lineGap}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

// faceVerticalMetrics scales the face's font-wide extents from font units
// to pixels at sizePx, matching the funitToUser pattern in GetGlyphMetrics.
func faceVerticalMetrics(face font.Face, sizePx float64) (ascent, descent, lineGap float64) {
	upem := float64(face.Upem())
	if upem <= 0 {
		upem = 1000
	}
	metrics, ok := face.FontHExtents()
	if !ok {
		return sizePx * 0.8, sizePx * 0.2, sizePx * 0.1
	}
	scale := sizePx / upem
	return float64(metrics.Ascender) * scale, -float64(metrics.Descender) * scale, float64(metrics.LineGap) * scale
}

// GlyphOutline returns the glyph's path segments in font units, or false if
// the glyph has no outline (e.g. a bitmap or composite-only glyph),
// grounded on scaledFont.GlyphPath / GetGlyphMetrics.
func GlyphOutline(face font.Face, gid api.GID) (api.GlyphOutline, bool) {
	data := face.GlyphData(gid)
	outline, ok := data.(api.GlyphOutline)
	return outline, ok
}

// AdvanceFor returns a single glyph's horizontal advance in pixels at sizePx,
// used by the variant renderer which bypasses HarfBuzz shaping entirely.
func AdvanceFor(face font.Face, gid api.GID, sizePx float64) float64 {
	upem := float64(face.Upem())
	if upem <= 0 {
		upem = 1000
	}
	return float64(face.HorizontalAdvance(gid)) * sizePx / upem
}

// KerningFor returns the kerning adjustment in pixels between consecutive
// runes r1, r2 at sizePx, grounded on scaledFont.GetKerning.
func KerningFor(face font.Face, r1, r2 rune, sizePx float64) float64 {
	gid1, ok1 := face.NominalGlyph(r1)
	gid2, ok2 := face.NominalGlyph(r2)
	if !ok1 || !ok2 {
		return 0
	}

	var kernValue int16
	if len(face.Kern) > 0 {
		for _, sub := range face.Kern {
			if kd, ok := sub.Data.(interface {
				KernPair(a, b api.GID) int16
			}); ok {
				kernValue = kd.KernPair(gid1, gid2)
				break
			}
		}
	} else if len(face.Kerx) > 0 {
		for _, sub := range face.Kerx {
			if kd, ok := sub.Data.(interface {
				KernPair(a, b api.GID) int16
			}); ok {
				kernValue = kd.KernPair(gid1, gid2)
				break
			}
		}
	}

	upem := float64(face.Upem())
	if upem <= 0 {
		upem = 1000
	}
	return float64(kernValue) * sizePx / upem
}
