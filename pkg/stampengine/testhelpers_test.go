package stampengine

import "image"

// newTestRGBA allocates a blank w x h RGBA image for rotation/rasterizer tests.
func newTestRGBA(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}
