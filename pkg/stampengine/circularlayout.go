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

const maxCircularFitIterations = 10

// RenderCircular draws one circular TextElement along an arc of Position.Radius
// centered at (Position.X, Position.Y), grounded on _draw_circular_text.
func RenderCircular(canvas *Canvas, el *TextElement, rec *FontRecord, shaper *Shaper) (*FontAdjustment, error) {
	face, err := rec.Face()
	if err != nil {
		return nil, err
	}

	scale := canvas.ScaleFactor
	pos := el.Position
	radius := pos.Radius * scale
	if radius <= 0 {
		return nil, newError(ErrFitLoopDiverged, "circular text requires a positive radius")
	}

	letterSpacing := pos.LetterSpacing
	if letterSpacing == 0 {
		letterSpacing = 1.0
	}
	maxAngle := pos.MaxAngle
	if maxAngle <= 0 || maxAngle > 360 {
		maxAngle = 360
	}

	text := el.Value
	if el.IsUppercase {
		text = toUpper(text)
	}
	textToRender := text
	if pos.BaselinePosition == BaselineOutside {
		textToRender = reverseString(text)
	}

	scaledFontSize := el.FontSize * scale
	currentSize := scaledFontSize
	runesToRender := []rune(textToRender)
	var run ShapedRun
	var totalAngleDeg float64
	var adj *FontAdjustment

	for i := 0; i < maxCircularFitIterations; i++ {
		shaped, err := shaper.Shape(textToRender, face, currentSize)
		if err != nil && !errors.Is(err, Error{Kind: ErrShaperFailed}) {
			return nil, err
		}
		run = shaped

		totalWidth := effectiveWidth(run.Advance, letterSpacing, len(runesToRender), 0)
		totalWidth += sumKerning(face, runesToRender, currentSize) * letterSpacing
		totalAngleDeg = (totalWidth / radius) * (180 / math.Pi)

		if maxAngle > 0 && totalAngleDeg > maxAngle {
			scaleRatio := maxAngle / totalAngleDeg
			newSize := math.Max(minFitFontSizePx, currentSize*scaleRatio)
			if newSize == currentSize {
				break
			}
			currentSize = newSize
			adj = &FontAdjustment{
				OriginalSize:       scaledFontSize,
				ScaledSize:         scaledFontSize,
				FinalSize:          currentSize,
				ScaleFactorApplied: 1.0,
				TextScaleFactor:    scaleRatio,
				Reason:             ReasonFitMaxAngle,
			}
			continue
		}
		break
	}

	var placementStartDeg float64
	if pos.LayoutMode == LayoutCenterAligned {
		placementStartDeg = math.Mod(pos.BaseAngle-totalAngleDeg/2, 360)
	} else {
		placementStartDeg = pos.BaseAngle
	}

	centerX := pos.X * scale
	centerY := pos.Y * scale
	upem := face.Upem()
	currentAngleRad := placementStartDeg * math.Pi / 180

	for i, g := range run.Glyphs {
		// Apply kerning first, then the glyph's own advance, matching
		// _draw_circular_text's "current_angle_rad += kerning_angle" step
		// that precedes its "current_angle_rad += advance_angle" step.
		if i > 0 {
			kerning := KerningFor(face, run.Glyphs[i-1].Rune, g.Rune, currentSize)
			currentAngleRad += (kerning * letterSpacing) / radius
		}

		advanceAngle := (g.XAdvance * letterSpacing) / radius
		if advanceAngle == 0 {
			continue
		}
		centerCharAngleRad := currentAngleRad + advanceAngle/2

		originAngleRad := currentAngleRad
		originX := centerX + radius*math.Cos(originAngleRad)
		originY := centerY + radius*math.Sin(originAngleRad)

		rotationRad := centerCharAngleRad + math.Pi/2
		if pos.BaselinePosition == BaselineOutside {
			rotationRad += math.Pi
		}
		rotationDeg := -rotationRad * 180 / math.Pi

		drawCircularGlyph(canvas, face, g, currentSize, upem, el.Color, originX, originY, rotationDeg)

		currentAngleRad += advanceAngle
	}

	return adj, nil
}

// drawCircularGlyph renders one glyph onto a square scratch canvas centered
// on the glyph's pen origin, rotates the canvas about its center, and
// composites it at (originX, originY), grounded on the temp_canvas /
// rotate(expand=False) pattern in _draw_circular_text.
func drawCircularGlyph(canvas *Canvas, face font.Face, g ShapedGlyph, sizePx float64, upem uint16, color Color, originX, originY, rotationDeg float64) {
	outline, ok := GlyphOutline(face, g.GID)
	if !ok {
		return
	}

	metrics, _ := face.FontHExtents()
	u := float64(upem)
	if u <= 0 {
		u = 1000
	}
	ascent := float64(metrics.Ascender) * sizePx / u
	descent := -float64(metrics.Descender) * sizePx / u
	canvasSize := int((ascent-(-descent))*2 + 20)
	if canvasSize < 4 {
		canvasSize = 4
	}
	center := float64(canvasSize) / 2

	scratch := image.NewRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	rst := newScanRasterizer(canvasSize, canvasSize)
	t := newGlyphTransform(upem, sizePx, center+g.XOffset, center-g.YOffset)
	rasterizeGlyph(rst, outline, t)
	rst.fill(scratch, color.NRGBA())

	rotated := rotateAroundCenter(scratch, rotationDeg)

	pasteX := int(originX - float64(rotated.Bounds().Dx())/2)
	pasteY := int(originY - float64(rotated.Bounds().Dy())/2)

	draw.Draw(canvas.Image,
		image.Rect(pasteX, pasteY, pasteX+rotated.Bounds().Dx(), pasteY+rotated.Bounds().Dy()),
		rotated, image.Point{}, draw.Over)
}

// rotateAroundCenter rotates src in place (no expansion) about its own
// center, matching PIL's rotate(..., expand=False).
func rotateAroundCenter(src *image.RGBA, angleDeg float64) *image.RGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	angleRad := angleDeg * math.Pi / 180
	tr := draw2d.NewTranslationMatrix(float64(w)/2, float64(h)/2)
	tr.Rotate(angleRad)
	tr.Translate(-float64(w)/2, -float64(h)/2)
	draw2dimg.DrawImage(src, dst, tr, draw.Over, draw2d.BicubicFilter)
	return dst
}

// sumKerning totals the per-pair kerning across runes, used to fold kern[i]
// into the fit-to-max-angle width estimate the same way the placement loop
// folds it into the running angle, grounded on _draw_circular_text's
// total_width accumulation of `(advance + kerning) * letter_spacing_factor`.
func sumKerning(face font.Face, runes []rune, sizePx float64) float64 {
	var total float64
	for i := 1; i < len(runes); i++ {
		total += KerningFor(face, runes[i-1], runes[i], sizePx)
	}
	return total
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
