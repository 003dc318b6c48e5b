package stampengine

import (
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// LoadBackground decodes a background image file and composites it onto
// canvas, aspect-preserving scaled and centered, grounded on generate()'s
// background-image branch. On any failure it returns
// ErrBackgroundLoadFailed and leaves the canvas untouched, matching the
// original's "log and continue" behavior.
func LoadBackground(canvas *Canvas, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return newError(ErrBackgroundLoadFailed, "open background image: "+err.Error())
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return newError(ErrBackgroundLoadFailed, "decode background image: "+err.Error())
	}

	bgW, bgH := src.Bounds().Dx(), src.Bounds().Dy()
	if bgW == 0 || bgH == 0 {
		return newError(ErrBackgroundLoadFailed, "background image has zero dimension")
	}

	scaleX := float64(canvas.Width) / float64(bgW)
	scaleY := float64(canvas.Height) / float64(bgH)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	newW := int(float64(bgW) * scale)
	newH := int(float64(bgH) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	resized := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(resized, resized.Bounds(), src, src.Bounds(), draw.Over, nil)

	xOffset := (canvas.Width - newW) / 2
	yOffset := (canvas.Height - newH) / 2

	stddraw.Draw(canvas.Image,
		image.Rect(xOffset, yOffset, xOffset+newW, yOffset+newH),
		resized, image.Point{}, stddraw.Over)

	return nil
}

// sharpenKernel3x3 is PIL's ImageFilter.SHARPEN kernel, applied as a final
// post-scale pass (the original runs it only when scale_factor > 1.0).
var sharpenKernel3x3 = [9]float64{
	-2, -2, -2,
	-2, 32, -2,
	-2, -2, -2,
}

const sharpenKernelScale = 16.0

// Sharpen applies the fixed 3x3 sharpen convolution to canvas in place,
// matching generate()'s `if self.scale_factor > 1.0: img = img.filter(ImageFilter.SHARPEN)`.
// Alpha passes through unfiltered; only color channels are convolved.
func Sharpen(canvas *Canvas) {
	if canvas.ScaleFactor <= 1.0 {
		return
	}

	src := canvas.Image
	b := src.Bounds()
	dst := image.NewRGBA(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var sumR, sumG, sumB float64
			k := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sx, sy := clampInt(x+dx, b.Min.X, b.Max.X-1), clampInt(y+dy, b.Min.Y, b.Max.Y-1)
					r, g, bl, _ := src.At(sx, sy).RGBA()
					w := sharpenKernel3x3[k]
					sumR += float64(r>>8) * w
					sumG += float64(g>>8) * w
					sumB += float64(bl>>8) * w
					k++
				}
			}
			_, _, _, a := src.At(x, y).RGBA()
			dst.Set(x, y, color.NRGBA{
				R: clamp255(sumR / sharpenKernelScale),
				G: clamp255(sumG / sharpenKernelScale),
				B: clamp255(sumB / sharpenKernelScale),
				A: uint8(a >> 8),
			})
		}
	}
	copy(src.Pix, dst.Pix)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
