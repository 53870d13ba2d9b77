package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/papyrus/fonts"
	"github.com/ByLCY/papyrus/layout"
	"github.com/ByLCY/papyrus/renderer"
	"github.com/ByLCY/papyrus/sheet"
)

// underlineWidth 是下划线粗细相对字号（mm）的比例。
const underlineWidth = 0.06

// Renderer draws label sheets via github.com/tdewolff/canvas and writes PDF.
type Renderer struct {
	baseDir   string
	fontBlobs map[string][]byte // 注入的字体，按 src 名称索引

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var _ renderer.Backend = (*Renderer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string][]byte // 注入的字体字节，DSL 中以 src 名称引用
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	for name, data := range opts.Fonts {
		if name != "" && len(data) > 0 {
			r.fontBlobs[name] = data
		}
	}
	return r
}

// Measurer 实现 sheet.Typesetter：宽度取 FontFace.TextWidth，高度取字体行高，单位均为 mm。
func (r *Renderer) Measurer(font sheet.Font) (layout.TextMeasurer, error) {
	face, err := r.fontFace(font, layout.Color{})
	if err != nil {
		return nil, err
	}
	return &measurer{face: face, lineHeight: face.Metrics().LineHeight}, nil
}

type measurer struct {
	face       *canvas.FontFace
	lineHeight float64
}

func (m *measurer) Measure(text string) layout.Size {
	return layout.Size{Width: m.face.TextWidth(text), Height: m.lineHeight}
}

// Render renders every sheet as one PDF page.
func (r *Renderer) Render(doc *sheet.Document) ([]byte, error) {
	if err := renderer.Validate(doc); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	first := doc.Sheets[0]
	writer := pdf.New(&buf, first.Width, first.Height, nil)
	applyMeta(writer, doc.Meta)
	for i := range doc.Sheets {
		sh := &doc.Sheets[i]
		if i > 0 {
			writer.NewPage(sh.Width, sh.Height)
		}
		c := canvas.New(sh.Width, sh.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		err := renderer.PaintSheet(sh, r, func(l *sheet.Label) (layout.Surface, error) {
			s, err := r.newSurface(ctx, l.Font)
			if err != nil {
				return nil, err
			}
			return s, nil
		})
		if err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta sheet.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) fontFace(font sheet.Font, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(font.Size, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font sheet.Font) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := font.Src + "|" + font.Style
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	name := font.Name
	if name == "" {
		name = "Body"
	}
	family := canvas.NewFontFamily(name)
	data, err := r.loadFontBytes(font.Src)
	if err == nil {
		err = family.LoadFont(data, 0, style)
	}
	if err != nil {
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: canvas.FontRegular}
		return fallback, canvas.FontRegular, nil
	}

	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

// loadFontBytes 依次查找注入的字体、内置字体与相对 baseDir 的文件。
func (r *Renderer) loadFontBytes(src string) ([]byte, error) {
	if blob, ok := r.fontBlobs[src]; ok {
		return blob, nil
	}
	if src == "" || fonts.IsBuiltin(src) {
		return fonts.Load(src)
	}
	path := src
	if r.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return fonts.Load(path)
}

// fallback 在字体无法加载时使用内置的 Go Regular，调用方需持有 fontMu。
func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("papyrus-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case s == "":
		return result
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
