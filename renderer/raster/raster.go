// Package raster 把标签文档绘制成 PNG 位图，适合热敏标签打印机与预览。
package raster

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/papyrus/fonts"
	"github.com/ByLCY/papyrus/layout"
	"github.com/ByLCY/papyrus/renderer"
	"github.com/ByLCY/papyrus/sheet"
)

// DefaultDPI 是常见热敏打印头的分辨率（8 点/mm）。
const DefaultDPI = 203

const mmPerInch = 25.4

// Options configures the raster renderer.
type Options struct {
	BaseDir string
	DPI     float64
	Sheet   int               // 要输出的纸张序号，PNG 一次只容纳一张
	Fonts   map[string][]byte // 注入的字体字节，DSL 中以 src 名称引用
}

// Renderer draws a sheet with github.com/fogleman/gg and encodes it as PNG.
type Renderer struct {
	baseDir string
	dpi     float64
	sheet   int
	blobs   map[string][]byte

	mu    sync.Mutex
	faces map[sheet.Font]font.Face
}

var _ renderer.Backend = (*Renderer)(nil)

// New creates a raster renderer; DPI 为 0 时取 DefaultDPI。
func New(opts Options) *Renderer {
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{
		baseDir: opts.BaseDir,
		dpi:     dpi,
		sheet:   opts.Sheet,
		blobs:   opts.Fonts,
		faces:   map[sheet.Font]font.Face{},
	}
}

// scale 返回每毫米的像素数。
func (r *Renderer) scale() float64 { return r.dpi / mmPerInch }

func (r *Renderer) px(mm float64) float64 { return mm * r.scale() }

func (r *Renderer) mm(v fixed.Int26_6) float64 { return float64(v) / 64 / r.scale() }

// Measurer 实现 sheet.Typesetter：宽度与行高按位图字体的像素度量换算回毫米。
func (r *Renderer) Measurer(f sheet.Font) (layout.TextMeasurer, error) {
	face, err := r.face(f)
	if err != nil {
		return nil, err
	}
	return &measurer{r: r, face: face, height: r.mm(face.Metrics().Height)}, nil
}

type measurer struct {
	r      *Renderer
	face   font.Face
	height float64
}

func (m *measurer) Measure(text string) layout.Size {
	adv := font.MeasureString(m.face, text)
	return layout.Size{Width: m.r.mm(adv), Height: m.height}
}

// Render 输出 Options.Sheet 指定的那张纸。
func (r *Renderer) Render(doc *sheet.Document) ([]byte, error) {
	if err := renderer.Validate(doc); err != nil {
		return nil, err
	}
	if r.sheet < 0 || r.sheet >= len(doc.Sheets) {
		return nil, fmt.Errorf("第 %d 张 sheet 不存在（共 %d 张）", r.sheet, len(doc.Sheets))
	}
	dc, err := r.Draw(&doc.Sheets[r.sheet])
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Draw 把一张纸绘制到白底画布上并返回绘图上下文。
func (r *Renderer) Draw(sh *sheet.Sheet) (*gg.Context, error) {
	w := int(math.Round(r.px(sh.Width)))
	h := int(math.Round(r.px(sh.Height)))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("纸张尺寸无效：%.1fx%.1fmm", sh.Width, sh.Height)
	}
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	err := renderer.PaintSheet(sh, r, func(l *sheet.Label) (layout.Surface, error) {
		face, err := r.face(l.Font)
		if err != nil {
			return nil, err
		}
		return r.newSurface(dc, face, l.Font), nil
	})
	if err != nil {
		return nil, err
	}
	return dc, nil
}

// Image 是 Draw 的便捷形式，直接返回位图。
func (r *Renderer) Image(sh *sheet.Sheet) (image.Image, error) {
	dc, err := r.Draw(sh)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func (r *Renderer) face(f sheet.Font) (font.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if face, ok := r.faces[f]; ok {
		return face, nil
	}
	data, ok := r.blobs[f.Src]
	if !ok {
		src := f.Src
		if src != "" && !fonts.IsBuiltin(src) && r.baseDir != "" && !filepath.IsAbs(src) {
			src = filepath.Join(r.baseDir, src)
		}
		var err error
		if data, err = fonts.Load(src); err != nil {
			// 与 PDF 后端一致：找不到字体时退回默认字体
			if data, err = fonts.Load(fonts.Default); err != nil {
				return nil, err
			}
		}
	}
	size := f.Size
	if size <= 0 {
		size = 10
	}
	face := parseFace(data, size, r.dpi)
	r.faces[f] = face
	return face, nil
}

// parseFace 先按 TrueType 解析，失败再尝试 OpenType（CFF 轮廓），都不行时用内置点阵字体。
func parseFace(data []byte, size, dpi float64) font.Face {
	if ft, err := truetype.Parse(data); err == nil {
		return truetype.NewFace(ft, &truetype.Options{Size: size, DPI: dpi, Hinting: font.HintingFull})
	}
	if ot, err := opentype.Parse(data); err == nil {
		if face, err := opentype.NewFace(ot, &opentype.FaceOptions{Size: size, DPI: dpi, Hinting: font.HintingFull}); err == nil {
			return face
		}
	}
	return basicfont.Face7x13
}
