package renderer

import (
	"fmt"

	"github.com/ByLCY/papyrus/layout"
	"github.com/ByLCY/papyrus/sheet"
)

// Renderer 将排好版的标签文档输出为最终文件，例如 PDF、PNG 或纯文本。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(doc *sheet.Document) ([]byte, error)
}

// Backend 既能为构建阶段提供测量器，也能输出最终文件；测量与绘制必须使用同一套字体度量。
type Backend interface {
	Renderer
	sheet.Typesetter
}

// SurfaceFunc 为单个标签创建绘制面，例如按标签字体创建字体面。
type SurfaceFunc func(l *sheet.Label) (layout.Surface, error)

// PaintSheet 依次为每个标签取得测量器与绘制面，并用构建时的请求重新排版绘制。
func PaintSheet(sh *sheet.Sheet, ts sheet.Typesetter, newSurface SurfaceFunc) error {
	for i := range sh.Labels {
		l := &sh.Labels[i]
		m, err := ts.Measurer(l.Font)
		if err != nil {
			return fmt.Errorf("label %s: %w", l.Name, err)
		}
		s, err := newSurface(l)
		if err != nil {
			return fmt.Errorf("label %s: %w", l.Name, err)
		}
		l.Paint(m, s)
	}
	return nil
}

// Validate 检查文档至少包含一张纸。
func Validate(doc *sheet.Document) error {
	if doc == nil {
		return fmt.Errorf("渲染结果为空")
	}
	if len(doc.Sheets) == 0 {
		return fmt.Errorf("缺少可渲染的纸张")
	}
	return nil
}
