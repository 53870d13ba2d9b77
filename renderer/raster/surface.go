package raster

import (
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/ByLCY/papyrus/layout"
	"github.com/ByLCY/papyrus/sheet"
)

// underlineWidth 是下划线粗细相对字号的比例，与 PDF 后端相同。
const underlineWidth = 0.06

// surface 在 gg.Context 上绘制，入参为毫米，内部换算成像素。
type surface struct {
	r      *Renderer
	dc     *gg.Context
	face   font.Face
	ascent float64 // px
	stroke float64 // px
}

var (
	_ layout.Surface    = (*surface)(nil)
	_ layout.Underliner = (*surface)(nil)
	_ layout.Clipper    = (*surface)(nil)
)

func (r *Renderer) newSurface(dc *gg.Context, face font.Face, f sheet.Font) *surface {
	dc.SetFontFace(face)
	return &surface{
		r:      r,
		dc:     dc,
		face:   face,
		ascent: float64(face.Metrics().Ascent) / 64,
		stroke: max(1, r.px(f.Size*sheet.PtToMm*underlineWidth)),
	}
}

func (s *surface) SetForeground(c layout.Color) {
	s.dc.SetRGB255(c.R, c.G, c.B)
}

func (s *surface) DrawText(text string, x, y float64) {
	s.dc.DrawString(text, s.r.px(x), s.r.px(y)+s.ascent)
}

func (s *surface) DrawImage(img layout.InlineImage, x, y, width, height float64) {
	w := int(math.Round(s.r.px(width)))
	h := int(math.Round(s.r.px(height)))
	if w <= 0 || h <= 0 {
		return
	}
	px, py := s.r.px(x), s.r.px(y)
	if img.Image == nil {
		// 没有位图时只画占位框
		s.dc.DrawRectangle(px, py, float64(w), float64(h))
		s.dc.SetLineWidth(1)
		s.dc.Stroke()
		return
	}
	src := img.Image
	if b := src.Bounds(); b.Dx() != w || b.Dy() != h {
		src = imaging.Resize(src, w, h, imaging.Lanczos)
	}
	s.dc.DrawImage(src, int(math.Round(px)), int(math.Round(py)))
}

func (s *surface) DrawLine(x1, y1, x2, y2 float64) {
	s.dc.SetLineWidth(s.stroke)
	s.dc.DrawLine(s.r.px(x1), s.r.px(y1), s.r.px(x2), s.r.px(y2))
	s.dc.Stroke()
}

func (s *surface) SetClip(r layout.Rect) {
	s.dc.DrawRectangle(s.r.px(r.X), s.r.px(r.Y), s.r.px(r.Width), s.r.px(r.Height))
	s.dc.Clip()
}

func (s *surface) ResetClip() { s.dc.ResetClip() }
