package layout

import "image"

// 该文件定义一次排版所需的请求、中间行与结果类型，供排版、绘制与调试 JSON 共用。

// Rect 是轴对齐矩形，X/Y 为左上角。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty 报告矩形面积是否为零。
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains 判断点是否落在矩形内，右边与下边不包含在内。
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// union 返回同时覆盖 r 与 o 的最小矩形。
func (r Rect) union(o Rect) Rect {
	minX, minY := min(r.X, o.X), min(r.Y, o.Y)
	maxX, maxY := max(r.X+r.Width, o.X+o.Width), max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Size 记录宽高。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// InlineImage 是可以通过 %0-%9 占位符嵌入文本的图片。
// Width/Height 为自然尺寸（与测量器同单位），为 0 时取图片像素尺寸。
type InlineImage struct {
	Name   string      `json:"name,omitempty"`
	Image  image.Image `json:"-"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Scale  float64     `json:"scale"`
}

// ScaledSize 返回按 Scale 缩放后的尺寸。
func (img InlineImage) ScaledSize() Size {
	w, h := img.Width, img.Height
	if (w <= 0 || h <= 0) && img.Image != nil {
		b := img.Image.Bounds()
		if w <= 0 {
			w = float64(b.Dx())
		}
		if h <= 0 {
			h = float64(b.Dy())
		}
	}
	scale := img.Scale
	if scale <= 0 {
		scale = 1
	}
	return Size{Width: w * scale, Height: h * scale}
}

// Request 描述一次排版：文本、目标矩形、标志位与可选的内嵌图片。
// 排版过程中不会修改 Request。
type Request struct {
	Text   string        `json:"text"`
	Rect   Rect          `json:"rect"`
	Flags  Flags         `json:"flags"`
	Images []InlineImage `json:"images,omitempty"`
}

// AnchorSpan 记录一个超链接在显示文本中的位置（字节偏移）与命中区域。
type AnchorSpan struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Target   string `json:"target,omitempty"`
	Text     string `json:"text"`
	Start    int    `json:"start"`
	Length   int    `json:"length"`
	HitRects []Rect `json:"hitRects,omitempty"`
}

// End 返回锚点之后第一个字节的偏移。
func (a AnchorSpan) End() int { return a.Start + a.Length }

// Hit 判断点是否落在锚点的任一命中矩形内。
func (a AnchorSpan) Hit(x, y float64) bool {
	for _, r := range a.HitRects {
		if r.Contains(x, y) {
			return true
		}
	}
	return false
}

// LogicalLine 是按显式换行切分后的一行，Start 为其在规范化文本中的偏移。
type LogicalLine struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
}

// ImageRef 记录行内图片占位符在 PhysicalLine.Text 中的字节偏移。
type ImageRef struct {
	Index  int `json:"index"`
	Offset int `json:"offset"`
}

// ImageHit 是已绘制图片的命中区域。
type ImageHit struct {
	Index int  `json:"index"`
	Rect  Rect `json:"rect"`
}

// PhysicalLine 表示实际绘制的一行。
// Text 的前 SourceLen 个字节与显示文本 [SourceStart, SourceStart+SourceLen) 完全一致，
// Ellipsis 为 true 时其后追加了省略号。
type PhysicalLine struct {
	Text        string     `json:"text"`
	SourceStart int        `json:"sourceStart"`
	SourceLen   int        `json:"sourceLen"`
	Extent      Size       `json:"extent"`
	Preferred   Size       `json:"preferred"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Images      []ImageRef `json:"images,omitempty"`
	Ellipsis    bool       `json:"ellipsis,omitempty"`

	// tailStart/tailOffset 标记最后一张图片之后的文本起点与其左侧已占用的宽度，
	// 供后续截断时只重新测量尾部文本。
	tailStart  int
	tailOffset float64
}

// Result 是一次排版的完整输出。
type Result struct {
	Display    string         `json:"display"`
	Lines      []PhysicalLine `json:"lines"`
	Calculated Size           `json:"calculated"`
	Preferred  Size           `json:"preferred"`
	Draw       Rect           `json:"draw"`
	Truncated  bool           `json:"truncated"`
	WordCut    bool           `json:"wordCut"`
	Fits       bool           `json:"fits"`
	Anchors    []AnchorSpan   `json:"anchors,omitempty"`
	Images     []ImageHit     `json:"images,omitempty"`
}

// HitAt 返回第一个命中矩形包含该点的锚点。
func (r *Result) HitAt(x, y float64) (*AnchorSpan, bool) {
	if r == nil {
		return nil, false
	}
	for i := range r.Anchors {
		if r.Anchors[i].Hit(x, y) {
			return &r.Anchors[i], true
		}
	}
	return nil, false
}

// ImageAt 返回包含该点的行内图片序号。
func (r *Result) ImageAt(x, y float64) (int, bool) {
	if r == nil {
		return 0, false
	}
	for _, h := range r.Images {
		if h.Rect.Contains(x, y) {
			return h.Index, true
		}
	}
	return 0, false
}
