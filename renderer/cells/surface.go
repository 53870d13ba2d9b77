package cells

import (
	"github.com/rivo/uniseg"

	"github.com/ByLCY/papyrus/layout"
)

// surface 把毫米坐标四舍五入到单元格，不支持颜色与下划线。
type surface struct {
	r    *Renderer
	g    *Grid
	clip *cellRect
}

var (
	_ layout.Surface = (*surface)(nil)
	_ layout.Clipper = (*surface)(nil)
)

func (s *surface) SetForeground(layout.Color) {}

func (s *surface) DrawText(text string, x, y float64) {
	col, row := s.r.col(x), s.r.row(y)
	state := -1
	for text != "" {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		w := s.r.cond.StringWidth(cluster)
		if w == 0 {
			continue
		}
		s.g.put(col, row, cluster, w, s.clip)
		col += w
	}
}

func (s *surface) DrawImage(_ layout.InlineImage, x, y, width, height float64) {
	c0, r0 := s.r.col(x), s.r.row(y)
	c1, r1 := s.r.col(x+width), s.r.row(y+height)
	if r1 == r0 {
		r1 = r0 + 1
	}
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			s.g.put(col, row, imageFill, 1, s.clip)
		}
	}
}

func (s *surface) SetClip(r layout.Rect) {
	s.clip = &cellRect{
		x0: s.r.col(r.X),
		y0: s.r.row(r.Y),
		x1: s.r.col(r.X + r.Width),
		y1: s.r.row(r.Y + r.Height),
	}
}

func (s *surface) ResetClip() { s.clip = nil }
