package canvasrenderer

import (
	"image/color"
	"math"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/papyrus/layout"
	"github.com/ByLCY/papyrus/sheet"
)

// surface 把 layout 的绘制调用转成 canvas.Context 操作，(x, y) 为行顶，单位 mm。
// 裁剪是粗粒度的：完全落在裁剪区之外的文字、图片和线条不画，跨越边界的部分照常输出。
type surface struct {
	r     *Renderer
	ctx   *canvas.Context
	font  sheet.Font
	face  *canvas.FontFace
	color layout.Color
	clip  *layout.Rect
}

var (
	_ layout.Surface    = (*surface)(nil)
	_ layout.Underliner = (*surface)(nil)
	_ layout.Clipper    = (*surface)(nil)
)

func (r *Renderer) newSurface(ctx *canvas.Context, font sheet.Font) (*surface, error) {
	face, err := r.fontFace(font, layout.Color{})
	if err != nil {
		return nil, err
	}
	return &surface{r: r, ctx: ctx, font: font, face: face}, nil
}

// SetForeground 重新创建带颜色的字体面；canvas 的文字颜色属于字体面。
func (s *surface) SetForeground(c layout.Color) {
	if c == s.color && s.face != nil {
		return
	}
	if face, err := s.r.fontFace(s.font, c); err == nil {
		s.face = face
		s.color = c
	}
}

func (s *surface) DrawText(text string, x, y float64) {
	if !s.visible(layout.Rect{X: x, Y: y, Width: s.face.TextWidth(text), Height: s.face.Metrics().LineHeight}) {
		return
	}
	// 基线位置：行顶加上字体上升部
	baseline := y + s.face.Metrics().Ascent
	s.ctx.DrawText(x, baseline, canvas.NewTextLine(s.face, text, canvas.Left))
}

func (s *surface) DrawImage(img layout.InlineImage, x, y, width, height float64) {
	if !s.visible(layout.Rect{X: x, Y: y, Width: width, Height: height}) {
		return
	}
	if img.Image == nil || width <= 0 {
		// 没有位图时只画占位框
		s.ctx.SetFillColor(color.RGBA{})
		s.ctx.SetStrokeColor(colorFromLayout(s.color))
		s.ctx.SetStrokeWidth(0.1)
		s.ctx.DrawPath(x, y, canvas.Rectangle(width, height))
		return
	}
	dpmm := float64(img.Image.Bounds().Dx()) / width
	if dpmm <= 0 {
		dpmm = 1
	}
	s.ctx.DrawImage(x, y, img.Image, canvas.DPMM(dpmm))
}

func (s *surface) DrawLine(x1, y1, x2, y2 float64) {
	if !s.visible(layout.Rect{X: min(x1, x2), Y: min(y1, y2), Width: math.Abs(x2 - x1), Height: math.Abs(y2 - y1)}) {
		return
	}
	s.ctx.SetStrokeColor(colorFromLayout(s.color))
	s.ctx.SetStrokeWidth(s.font.Size * sheet.PtToMm * underlineWidth)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(x2-x1, y2-y1)
	s.ctx.DrawPath(x1, y1, p)
}

func (s *surface) SetClip(r layout.Rect) { s.clip = &r }

func (s *surface) ResetClip() { s.clip = nil }

func (s *surface) visible(box layout.Rect) bool {
	return s.clip == nil || overlaps(*s.clip, box)
}

// overlaps 判断 b 与 a 是否有公共内部点；高为 0 的水平线只要落在 a 的纵向范围内即可。
func overlaps(a, b layout.Rect) bool {
	return b.X < a.X+a.Width && b.X+b.Width > a.X &&
		b.Y < a.Y+a.Height && b.Y+b.Height > a.Y
}
