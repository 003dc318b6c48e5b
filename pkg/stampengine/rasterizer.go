package stampengine

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/go-text/typesetting/opentype/api"
)

// scanRasterizer rasterizes glyph outlines with anti-aliasing via an edge
// table and an 8x-supersampled scanline fill, adapted from AdvancedRasterizer.
type scanRasterizer struct {
	width, height int
	edges         []rasterEdge
	scanBuffer    []float64
	aaLevel       int
}

type rasterEdge struct {
	x0, y0 float64
	x1, y1 float64
}

// newScanRasterizer allocates a rasterizer sized to the target image, with
// 8x vertical supersampling.
func newScanRasterizer(width, height int) *scanRasterizer {
	return &scanRasterizer{
		width:      width,
		height:     height,
		edges:      make([]rasterEdge, 0, 1024),
		scanBuffer: make([]float64, width),
		aaLevel:    8,
	}
}

func (r *scanRasterizer) reset() {
	r.edges = r.edges[:0]
}

func (r *scanRasterizer) addLine(x0, y0, x1, y1 float64) {
	if y0 == y1 {
		return
	}
	if y0 > y1 {
		x0, y0, x1, y1 = x1, y1, x0, y0
	}
	r.edges = append(r.edges, rasterEdge{x0, y0, x1, y1})
}

func (r *scanRasterizer) addQuadratic(x0, y0, x1, y1, x2, y2 float64, depth int) {
	if depth > 12 {
		r.addLine(x0, y0, x2, y2)
		return
	}
	dx := x2 - x0
	dy := y2 - y0
	d := math.Abs((x1-x2)*dy - (y1-y2)*dx)
	if d*d < 0.25*(dx*dx+dy*dy) {
		r.addLine(x0, y0, x2, y2)
		return
	}
	x01 := (x0 + x1) / 2
	y01 := (y0 + y1) / 2
	x12 := (x1 + x2) / 2
	y12 := (y1 + y2) / 2
	x012 := (x01 + x12) / 2
	y012 := (y01 + y12) / 2
	r.addQuadratic(x0, y0, x01, y01, x012, y012, depth+1)
	r.addQuadratic(x012, y012, x12, y12, x2, y2, depth+1)
}

func (r *scanRasterizer) addCubic(x0, y0, x1, y1, x2, y2, x3, y3 float64, depth int) {
	if depth > 12 {
		r.addLine(x0, y0, x3, y3)
		return
	}
	dx := x3 - x0
	dy := y3 - y0
	d2 := math.Abs((x1-x3)*dy - (y1-y3)*dx)
	d3 := math.Abs((x2-x3)*dy - (y2-y3)*dx)
	if (d2+d3)*(d2+d3) < 0.25*(dx*dx+dy*dy) {
		r.addLine(x0, y0, x3, y3)
		return
	}
	x01 := (x0 + x1) / 2
	y01 := (y0 + y1) / 2
	x12 := (x1 + x2) / 2
	y12 := (y1 + y2) / 2
	x23 := (x2 + x3) / 2
	y23 := (y2 + y3) / 2
	x012 := (x01 + x12) / 2
	y012 := (y01 + y12) / 2
	x123 := (x12 + x23) / 2
	y123 := (y12 + y23) / 2
	x0123 := (x012 + x123) / 2
	y0123 := (y012 + y123) / 2
	r.addCubic(x0, y0, x01, y01, x012, y012, x0123, y0123, depth+1)
	r.addCubic(x0123, y0123, x123, y123, x23, y23, x3, y3, depth+1)
}

// fill rasterizes the accumulated edges onto img in color c.
func (r *scanRasterizer) fill(img *image.RGBA, c color.Color) {
	if len(r.edges) == 0 {
		return
	}
	sort.Slice(r.edges, func(i, j int) bool { return r.edges[i].y0 < r.edges[j].y0 })
	for y := 0; y < r.height; y++ {
		r.scanLine(img, y, c)
	}
}

func (r *scanRasterizer) scanLine(img *image.RGBA, y int, c color.Color) {
	for i := range r.scanBuffer {
		r.scanBuffer[i] = 0
	}

	intersections := make([]float64, 0, 32)
	for subY := 0; subY < r.aaLevel; subY++ {
		yf := float64(y) + float64(subY)/float64(r.aaLevel)

		intersections = intersections[:0]
		for i := range r.edges {
			e := &r.edges[i]
			if e.y0 <= yf && e.y1 > yf {
				t := (yf - e.y0) / (e.y1 - e.y0)
				intersections = append(intersections, e.x0+t*(e.x1-e.x0))
			}
		}
		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			x0, x1 := intersections[i], intersections[i+1]
			px0 := int(math.Floor(x0))
			px1 := int(math.Ceil(x1))
			for px := px0; px <= px1 && px < r.width; px++ {
				if px < 0 {
					continue
				}
				pxf := float64(px)
				coverage := 0.0
				switch {
				case pxf >= x0 && pxf+1 <= x1:
					coverage = 1.0
				case pxf < x0 && pxf+1 > x0:
					coverage = pxf + 1 - x0
				case pxf < x1 && pxf+1 > x1:
					coverage = x1 - pxf
				}
				r.scanBuffer[px] += coverage / float64(r.aaLevel)
			}
		}
	}

	for x := 0; x < r.width; x++ {
		coverage := r.scanBuffer[x]
		if coverage <= 0 {
			continue
		}
		if coverage > 1 {
			coverage = 1
		}
		blendOver(img, x, y, c, coverage)
	}
}

// blendOver composites c at alpha onto img's pixel (x,y) using Porter-Duff Over.
func blendOver(img *image.RGBA, x, y int, c color.Color, alpha float64) {
	b := img.Bounds()
	if x < b.Min.X || y < b.Min.Y || x >= b.Max.X || y >= b.Max.Y {
		return
	}

	sr, sg, sb, sa := c.RGBA()
	srcR := float64(sr>>8) / 255.0
	srcG := float64(sg>>8) / 255.0
	srcB := float64(sb>>8) / 255.0
	srcA := float64(sa>>8) / 255.0 * alpha

	dr, dg, db, da := img.At(x, y).RGBA()
	dstR := float64(dr>>8) / 255.0
	dstG := float64(dg>>8) / 255.0
	dstB := float64(db>>8) / 255.0
	dstA := float64(da>>8) / 255.0

	outA := srcA + dstA*(1-srcA)
	var outR, outG, outB float64
	if outA > 0 {
		outR = (srcR*srcA + dstR*dstA*(1-srcA)) / outA
		outG = (srcG*srcA + dstG*dstA*(1-srcA)) / outA
		outB = (srcB*srcA + dstB*dstA*(1-srcA)) / outA
	}

	img.Set(x, y, color.NRGBA{
		R: clamp255(outR * 255),
		G: clamp255(outG * 255),
		B: clamp255(outB * 255),
		A: clamp255(outA * 255),
	})
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// rasterOutline is the glyph outline shape consumed by rasterizeGlyph,
// aliased so callers outside this file don't need to import the opentype
// api package directly.
type rasterOutline = api.GlyphOutline

// glyphTransform maps font-unit outline coordinates to device pixels: scale
// by sizePx/upem, then translate the glyph's pen origin to (originX, originY).
// Y is flipped since font space grows up and image space grows down.
type glyphTransform struct {
	scale              float64
	originX, originY   float64
}

func newGlyphTransform(upem uint16, sizePx, originX, originY float64) glyphTransform {
	u := float64(upem)
	if u <= 0 {
		u = 1000
	}
	return glyphTransform{scale: sizePx / u, originX: originX, originY: originY}
}

func (t glyphTransform) apply(x, y float32) (float64, float64) {
	return t.originX + float64(x)*t.scale, t.originY - float64(y)*t.scale
}

// rasterizeGlyph feeds one glyph's outline, transformed by t, into a
// rasterizer's edge table — grounded on scaledFont.GlyphPath's segment walk.
func rasterizeGlyph(r *scanRasterizer, outline rasterOutline, t glyphTransform) {
	var startX, startY, curX, curY float64
	haveStart := false

	for _, seg := range outline.Segments {
		switch seg.Op {
		case api.SegmentOpMoveTo:
			x, y := t.apply(seg.Args[0].X, seg.Args[0].Y)
			if haveStart && (curX != startX || curY != startY) {
				r.addLine(curX, curY, startX, startY)
			}
			startX, startY = x, y
			curX, curY = x, y
			haveStart = true
		case api.SegmentOpLineTo:
			x, y := t.apply(seg.Args[0].X, seg.Args[0].Y)
			r.addLine(curX, curY, x, y)
			curX, curY = x, y
		case api.SegmentOpQuadTo:
			cx, cy := t.apply(seg.Args[0].X, seg.Args[0].Y)
			x, y := t.apply(seg.Args[1].X, seg.Args[1].Y)
			r.addQuadratic(curX, curY, cx, cy, x, y, 0)
			curX, curY = x, y
		case api.SegmentOpCubeTo:
			c1x, c1y := t.apply(seg.Args[0].X, seg.Args[0].Y)
			c2x, c2y := t.apply(seg.Args[1].X, seg.Args[1].Y)
			x, y := t.apply(seg.Args[2].X, seg.Args[2].Y)
			r.addCubic(curX, curY, c1x, c1y, c2x, c2y, x, y, 0)
			curX, curY = x, y
		}
	}
	if haveStart && (curX != startX || curY != startY) {
		r.addLine(curX, curY, startX, startY)
	}
}
