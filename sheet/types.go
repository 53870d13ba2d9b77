package sheet

import (
	"github.com/ByLCY/papyrus/layout"
)

// Document 是解析并排版后的标签文档，坐标与尺寸统一以毫米为单位。
type Document struct {
	Sheets    []Sheet      `json:"sheets"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// Sheet 是一张纸，上面的标签都是绝对定位的。
type Sheet struct {
	Size   string  `json:"size"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
	Labels []Label `json:"labels"`
}

// Label 是一个受限矩形内的富文本块。Request.Rect 为纸面上的绝对坐标。
type Label struct {
	Name    string         `json:"name"`
	Font    Font           `json:"font"`
	Request layout.Request `json:"request"`
	Options layout.Options `json:"-"`
	// Result 是构建阶段只测量不绘制得到的布局结果。
	Result *layout.Result `json:"result"`
}

// Paint 用同一份请求再排一遍并绘制到 s 上；标签自身带 no-draw 时只计算几何信息。
func (l *Label) Paint(m layout.TextMeasurer, s layout.Surface) *layout.Result {
	return layout.NewPrinter(m, l.Options).Print(l.Request, s)
}

// Font 是标签使用的字体，Size 以 pt 为单位。
type Font struct {
	Name  string  `json:"name"`
	Src   string  `json:"src"`
	Style string  `json:"style,omitempty"`
	Size  float64 `json:"size"`
}

// ResourceSet 记录解析出的字体、颜色、图片与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource  `json:"fonts"`
	Colors map[string]layout.Color  `json:"colors"`
	Images map[string]ImageResource `json:"images"`
	Styles map[string]Style         `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径或 go:regular 这类内置字体名。
type FontResource struct {
	Name  string  `json:"name"`
	Src   string  `json:"src"`
	Style string  `json:"style,omitempty"`
	Size  float64 `json:"size,omitempty"` // pt
}

// ImageResource 记录图片资源，宽高以毫米为单位；未给出时按 DPI 从像素尺寸换算。
type ImageResource struct {
	Name   string  `json:"name"`
	Src    string  `json:"src"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPI    int     `json:"dpi"`
}

// Style 用于描述可继承的标签属性。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
