package stampengine

import (
	"image"
	stddraw "image/draw"
	"math"

	"github.com/go-text/typesetting/font"
	ximgdraw "golang.org/x/image/draw"
)

// RenderVariants draws text directly against the face's glyph outlines,
// bypassing HarfBuzz shaping, so the first and/or last rune can be
// substituted with a specific alternate glyph ("a.1", "a.2", ...).
// Grounded on _render_text_with_variants; unlike the fit-to-width linear
// path it performs no shrink loop, matching the original's behavior.
func RenderVariants(canvas *Canvas, el *TextElement, rec *FontRecord, shaper *Shaper) (*FontAdjustment, error) {
	face, err := rec.Face()
	if err != nil {
		return nil, err
	}
	variants := rec.Variants()

	scale := canvas.ScaleFactor
	scaledFontSize := el.FontSize * scale
	letterSpacing := el.Position.LetterSpacing
	if letterSpacing == 0 {
		letterSpacing = 1.0
	}
	strokeWidth := 0.0
	if el.AutoBold {
		strokeWidth = math.Max(1, math.Floor(scaledFontSize*0.025))
	}

	text := el.Value
	if el.IsUppercase {
		text = toUpper(text)
	}
	runes := []rune(text)

	run := buildVariantRun(face, variants, runes, scaledFontSize, el.FirstVariant, el.LastVariant)

	margin := defaultMarginPx * scale
	if el.TextPadding != nil {
		margin = (*el.TextPadding / 2) * scale
	}

	textWidth := effectiveWidth(run.Advance, letterSpacing, len(runes), strokeWidth)

	scaledX := el.Position.X * scale
	scaledY := el.Position.Y * scale

	placeX := scaledX
	switch el.Position.TextAlign {
	case AlignCenter:
		placeX = scaledX - textWidth/2
	case AlignRight:
		placeX = scaledX - textWidth
	}
	if placeX < margin {
		placeX = margin
	} else if placeX+textWidth > float64(canvas.Width)-margin {
		placeX = float64(canvas.Width) - textWidth - margin
	}

	placeY := scaledY
	switch el.Position.VerticalAlign {
	case VAlignTop:
		placeY = scaledY
	case VAlignMiddle:
		placeY = scaledY - (run.Ascent+run.Descent)/2
	default:
		placeY = scaledY - run.Ascent
	}

	if el.Position.Rotation != 0 {
		renderRotatedLinear(canvas, face, run, text, scaledFontSize, letterSpacing, strokeWidth, el.Color,
			placeX, placeY, textWidth, run.Ascent+run.Descent, el.Position.Rotation, margin, el.TextPadding, scale)
		return nil, nil
	}

	renderVariantStrip(canvas, face, run, scaledFontSize, letterSpacing, strokeWidth, el.Color,
		placeX, placeY, textWidth, float64(canvas.Width)-margin*2)

	return nil, nil
}

// renderVariantStrip draws run into an off-screen strip padded the way
// _render_text_with_variants pads its PIL canvas (extra_space = font_size *
// 0.2 on every side), then — if that strip is wider than the available
// width — scales it down uniformly with a CatmullRom resample before
// compositing, matching the original's "if text_width > available width:
// scale_factor = available / text_width; resize(..., Image.LANCZOS)" branch
// instead of merely clamping placeX.
func renderVariantStrip(canvas *Canvas, face font.Face, run ShapedRun, sizePx, letterSpacing, strokeWidth float64, color Color,
	placeX, placeY, textWidth, availableWidth float64) {

	pad := sizePx * 0.2
	bufW := int(textWidth + 2*pad)
	bufH := int(run.Ascent + run.Descent + 2*pad)
	if bufW < 1 {
		bufW = 1
	}
	if bufH < 1 {
		bufH = 1
	}
	buf := image.NewRGBA(image.Rect(0, 0, bufW, bufH))
	drawRunWithSpacing(buf, face, run, pad, pad+run.Ascent, sizePx, letterSpacing, strokeWidth, color)

	strip := image.Image(buf)
	stripScale := 1.0
	if availableWidth > 0 && float64(bufW) > availableWidth {
		stripScale = availableWidth / float64(bufW)
		newW := int(float64(bufW) * stripScale)
		newH := int(float64(bufH) * stripScale)
		if newW < 1 {
			newW = 1
		}
		if newH < 1 {
			newH = 1
		}
		resized := image.NewRGBA(image.Rect(0, 0, newW, newH))
		ximgdraw.CatmullRom.Scale(resized, resized.Bounds(), buf, buf.Bounds(), ximgdraw.Over, nil)
		strip = resized
	}

	pasteX := int(placeX - pad*stripScale)
	pasteY := int(placeY - pad*stripScale)

	stddraw.Draw(canvas.Image,
		image.Rect(pasteX, pasteY, pasteX+strip.Bounds().Dx(), pasteY+strip.Bounds().Dy()),
		strip, image.Point{}, stddraw.Over)
}

// buildVariantRun constructs a ShapedRun directly from NominalGlyph/variant
// lookups, substituting the first and/or last rune's glyph per
// FirstVariant/LastVariant, and advancing by each resolved glyph's own
// HorizontalAdvance — the same per-character loop _render_text_with_variants
// uses, minus FreeType bitmap metrics (this engine draws outlines, not
// bitmaps).
func buildVariantRun(face font.Face, variants *GlyphVariantIndex, runes []rune, sizePx float64, firstVariant, lastVariant *int) ShapedRun {
	glyphs := make([]ShapedGlyph, 0, len(runes))
	var advance float64

	for i, r := range runes {
		gid, ok := face.NominalGlyph(r)
		isAlnum := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')

		if isAlnum && variants.HasVariants(r) {
			if i == 0 && firstVariant != nil {
				if vg, ok2 := variants.Variant(r, *firstVariant); ok2 {
					gid, ok = vg, true
				}
			} else if i == len(runes)-1 && lastVariant != nil {
				if vg, ok2 := variants.Variant(r, *lastVariant); ok2 {
					gid, ok = vg, true
				}
			}
		}
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
