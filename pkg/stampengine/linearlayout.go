package stampengine

import (
	"errors"
	"image"
	"image/draw"
	"math"

	"github.com/go-text/typesetting/font"
	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
)

const (
	defaultMarginPx  = 10.0
	minFitFontSizePx = 8.0
)

// RenderLinear draws one non-circular TextElement onto canvas, applying the
// fit-to-width shrink, alignment, letter spacing, optional rotation, and
// faux-bold stroke, grounded on _draw_text_with_pil's non-circular branch.
func RenderLinear(canvas *Canvas, el *TextElement, rec *FontRecord, shaper *Shaper) (*FontAdjustment, error) {
	face, err := rec.Face()
	if err != nil {
		return nil, err
	}

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

	margin := defaultMarginPx * scale
	if el.TextPadding != nil {
		margin = (*el.TextPadding / 2) * scale
	}

	maxAvailableWidth := float64(canvas.Width) - margin*2
	rotMod := math.Mod(el.Position.Rotation, 180)
	if rotMod < 0 {
		rotMod += 180
	}
	if rotMod > 45 && rotMod < 135 {
		maxAvailableWidth = float64(canvas.Height) - margin*2
	}

	text := el.Value
	if el.IsUppercase {
		text = toUpper(text)
	}

	run, err := shaper.Shape(text, face, scaledFontSize)
	if err != nil && !errors.Is(err, Error{Kind: ErrShaperFailed}) {
		return nil, err
	}

	textWidth, finalFontSize, adj := fitLinearWidth(shaper, face, text, scaledFontSize, letterSpacing, strokeWidth, maxAvailableWidth, &run)

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
	default: // baseline
		placeY = scaledY - run.Ascent
	}

	if el.Position.Rotation != 0 {
		renderRotatedLinear(canvas, face, run, text, finalFontSize, letterSpacing, strokeWidth, el.Color,
			placeX, placeY, textWidth, run.Ascent+run.Descent, el.Position.Rotation, margin, el.TextPadding, scale)
	} else {
		verticalOffset := math.Max(4, finalFontSize*0.08)
		placeY -= verticalOffset
		if finalFontSize > 60 {
			placeY -= finalFontSize * 0.05
		}
		if placeX < margin {
			placeX = margin
		} else if placeX+textWidth > float64(canvas.Width)-margin {
			placeX = math.Max(margin, float64(canvas.Width)-textWidth-margin)
		}
		drawRunWithSpacing(canvas.Image, face, run, placeX, placeY, finalFontSize, letterSpacing, strokeWidth, el.Color)
	}

	return adj, nil
}

// fitLinearWidth shrinks the font size once, by maxAvailableWidth over the
// width of the shaped text plus letter-spacing and stroke allowance (not
// below minFitFontSizePx), and reshapes at that size, grounded on the
// single-pass text_scale_factor computation in _draw_text_with_pil. The
// reshaped width is not checked again: the size floor, or a non-zero
// strokeWidth (which is not scaled down), can leave it wider than
// maxAvailableWidth.
func fitLinearWidth(shaper *Shaper, face font.Face, text string, scaledFontSize, letterSpacing, strokeWidth, maxAvailableWidth float64, run *ShapedRun) (float64, float64, *FontAdjustment) {
	textWidth := effectiveWidth(run.Advance, letterSpacing, len([]rune(text)), strokeWidth)

	if textWidth <= maxAvailableWidth || maxAvailableWidth <= 0 {
		return textWidth, scaledFontSize, nil
	}

	textScaleFactor := maxAvailableWidth / textWidth
	adjustedSize := scaledFontSize * textScaleFactor
	finalSize := math.Max(minFitFontSizePx, adjustedSize)

	reshaped, err := shaper.Shape(text, face, finalSize)
	if err == nil || errors.Is(err, Error{Kind: ErrShaperFailed}) {
		*run = reshaped
		textWidth = effectiveWidth(run.Advance, letterSpacing, len([]rune(text)), strokeWidth)
	}

	return textWidth, finalSize, &FontAdjustment{
		OriginalSize:       scaledFontSize,
		ScaledSize:         scaledFontSize,
		FinalSize:          finalSize,
		ScaleFactorApplied: 1.0,
		TextScaleFactor:    textScaleFactor,
		Reason:             ReasonFitWidth,
	}
}

func effectiveWidth(baseAdvance, letterSpacing float64, runeCount int, strokeWidth float64) float64 {
	width := baseAdvance
	if letterSpacing != 1.0 && runeCount > 1 {
		width += baseAdvance * (letterSpacing - 1.0)
	}
	if strokeWidth > 0 {
		width += 2 * strokeWidth
	}
	return width
}

// drawRunWithSpacing rasterizes a shaped run glyph by glyph, inserting
// extra per-glyph spacing, grounded on _draw_text_with_letter_spacing.
func drawRunWithSpacing(img *image.RGBA, face font.Face, run ShapedRun, x, y, sizePx, letterSpacing, strokeWidth float64, color Color) {
	upem := face.Upem()
	rst := newScanRasterizer(img.Bounds().Dx(), img.Bounds().Dy())

	extraPerGap := 0.0
	if letterSpacing != 1.0 && len(run.Glyphs) > 1 {
		avgAdvance := run.Advance / float64(len(run.Glyphs))
		extraPerGap = avgAdvance * (letterSpacing - 1.0) * 0.5
	}

	curX := x
	for i, g := range run.Glyphs {
		outline, ok := GlyphOutline(face, g.GID)
		if ok {
			t := newGlyphTransform(upem, sizePx, curX+g.XOffset, y-g.YOffset)
			rst.reset()
			rasterizeGlyph(rst, outline, t)
			if strokeWidth > 0 {
				strokeOutline(rst, outline, t, strokeWidth)
			}
			rst.fill(img, color.NRGBA())
		}
		curX += g.XAdvance
		if i < len(run.Glyphs)-1 {
			curX += extraPerGap
		}
	}
}

// strokeOutline approximates a faux-bold stroke by re-emitting the glyph
// outline at several small offsets around its origin, widening the fill —
// the idiomatic stand-in for PIL's stroke_width parameter to
// ImageDraw.text, which has no direct per-glyph-outline analogue here.
func strokeOutline(rst *scanRasterizer, outline rasterOutline, t glyphTransform, strokeWidth float64) {
	offsets := []struct{ dx, dy float64 }{
		{strokeWidth, 0}, {-strokeWidth, 0}, {0, strokeWidth}, {0, -strokeWidth},
		{strokeWidth * 0.7, strokeWidth * 0.7}, {-strokeWidth * 0.7, strokeWidth * 0.7},
		{strokeWidth * 0.7, -strokeWidth * 0.7}, {-strokeWidth * 0.7, -strokeWidth * 0.7},
	}
	for _, o := range offsets {
		shifted := t
		shifted.originX += o.dx
		shifted.originY += o.dy
		rasterizeGlyph(rst, outline, shifted)
	}
}

// renderRotatedLinear draws the run onto an off-screen padded buffer, rotates
// it with draw2d's bicubic-filtered image drawing, and composites the
// result onto canvas within the margin bounds. Grounded on the adaptive
// padding / img.rotate(expand=True) compositing of _draw_text_with_pil.
func renderRotatedLinear(canvas *Canvas, face font.Face, run ShapedRun, text string, finalFontSize, letterSpacing, strokeWidth float64, color Color,
	placeX, placeY, textWidth, textHeight, rotationDeg, margin float64, customPadding *float64, scale float64) {

	paddingRatio := 0.7
	basePadding := 30.0 * scale
	textLenFactor := math.Min(float64(len([]rune(text)))/5, 2.0)
	fontSizeFactor := math.Min(finalFontSize/30, 3.0)
	adaptivePadding := math.Max(basePadding, finalFontSize*paddingRatio*textLenFactor*fontSizeFactor)
	if customPadding != nil {
		adaptivePadding = *customPadding * scale
	}

	bufW := int(textWidth + 2*adaptivePadding)
	bufH := int(textHeight + 2*adaptivePadding)
	if bufW < 1 {
		bufW = 1
	}
	if bufH < 1 {
		bufH = 1
	}
	buf := image.NewRGBA(image.Rect(0, 0, bufW, bufH))

	drawRunWithSpacing(buf, face, run, adaptivePadding, adaptivePadding+run.Ascent, finalFontSize, letterSpacing, strokeWidth, color)

	rotated := rotateImageBicubic(buf, -rotationDeg)

	pasteX := placeX - adaptivePadding
	pasteY := placeY - adaptivePadding
	if pasteX < margin {
		pasteX = margin
	}
	if pasteX+float64(rotated.Bounds().Dx()) > float64(canvas.Width)-margin {
		pasteX = math.Max(margin, float64(canvas.Width)-float64(rotated.Bounds().Dx())-margin)
	}
	if pasteY < margin {
		pasteY = margin
	}
	if pasteY+float64(rotated.Bounds().Dy()) > float64(canvas.Height)-margin {
		pasteY = math.Max(margin, float64(canvas.Height)-float64(rotated.Bounds().Dy())-margin)
	}

	draw.Draw(canvas.Image, image.Rect(int(pasteX), int(pasteY), int(pasteX)+rotated.Bounds().Dx(), int(pasteY)+rotated.Bounds().Dy()),
		rotated, image.Point{}, draw.Over)
}

// rotateImageBicubic rotates src by angleDeg around its center, expanding
// the destination to fit, using draw2d's graphic context for the
// bicubic-quality affine transform (Go analogue of PIL's rotate(..., resample=BICUBIC)).
func rotateImageBicubic(src *image.RGBA, angleDeg float64) *image.RGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	angleRad := angleDeg * math.Pi / 180.0
	cosA, sinA := math.Abs(math.Cos(angleRad)), math.Abs(math.Sin(angleRad))
	newW := int(float64(w)*cosA + float64(h)*sinA + 0.5)
	newH := int(float64(w)*sinA + float64(h)*cosA + 0.5)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	tr := draw2d.NewTranslationMatrix(float64(newW)/2, float64(newH)/2)
	tr.Rotate(angleRad)
	tr.Translate(-float64(w)/2, -float64(h)/2)
	draw2dimg.DrawImage(src, dst, tr, draw.Over, draw2d.BicubicFilter)
	return dst
}

func toUpper(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'a' && r <= 'z' {
			out[i] = r - 32
		}
	}
	return string(out)
}
