package layout

// TextMeasurer 负责测量一段文本的宽高，同一次排版内对相同输入必须返回相同结果。
type TextMeasurer interface {
	Measure(text string) Size
}

// Surface 是绘制目标，坐标与测量器同单位，(x, y) 为文本/图片的左上角。
type Surface interface {
	DrawText(text string, x, y float64)
	DrawImage(img InlineImage, x, y, width, height float64)
	SetForeground(c Color)
}

// Underliner 是可选能力：支持画线的 Surface 会为链接绘制下划线。
type Underliner interface {
	DrawLine(x1, y1, x2, y2 float64)
}

// Clipper 是可选能力：未设置 SkipClip 时，绘制前后会设置与清除裁剪区域。
type Clipper interface {
	SetClip(r Rect)
	ResetClip()
}

// Options 是可在多次排版之间复用的配置（颜色与图片集合）。
type Options struct {
	TextColor      Color
	LinkColor      Color
	UnderlineLinks bool
	Images         []InlineImage // Request.Images 为空时使用
}

// DefaultLinkColor 与常见链接蓝一致。
var DefaultLinkColor = Color{R: 0, G: 0, B: 238}

// DefaultOptions 返回深灰正文与蓝色下划线链接。
func DefaultOptions() Options {
	return Options{
		TextColor:      Color{R: 30, G: 30, B: 30},
		LinkColor:      DefaultLinkColor,
		UnderlineLinks: true,
	}
}
