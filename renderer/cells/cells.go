// Package cells 把标签排到等宽字符网格上，输出纯文本预览，用于终端和快照测试。
package cells

import (
	"bytes"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/papyrus/layout"
	"github.com/ByLCY/papyrus/renderer"
	"github.com/ByLCY/papyrus/sheet"
)

// 默认单元格尺寸（mm），大致对应 10pt 等宽字体。
const (
	DefaultCellWidth  = 2.5
	DefaultCellHeight = 5.0
)

// imageFill 填充行内图片占据的单元格。
const imageFill = "#"

// Options configures the cell renderer.
type Options struct {
	CellWidth  float64
	CellHeight float64
	// Border 为 true 时在每张纸外画一圈边框。
	Border bool
	// EastAsian 为 true 时歧义宽度字符（如 …）按两格计算；默认不读取环境变量，保证输出稳定。
	EastAsian bool
}

// Renderer 以字符单元格为单位测量和绘制，东亚宽字符占两格。
type Renderer struct {
	cw, ch float64
	border bool
	cond   *runewidth.Condition
}

var _ renderer.Backend = (*Renderer)(nil)

// New creates a cell renderer; 尺寸为 0 时取默认值。
func New(opts Options) *Renderer {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = opts.EastAsian
	r := &Renderer{cw: opts.CellWidth, ch: opts.CellHeight, border: opts.Border, cond: cond}
	if r.cw <= 0 {
		r.cw = DefaultCellWidth
	}
	if r.ch <= 0 {
		r.ch = DefaultCellHeight
	}
	return r
}

// Measurer 忽略字体，所有文字按单元格宽度计量。
func (r *Renderer) Measurer(sheet.Font) (layout.TextMeasurer, error) { return r, nil }

// Measure implements layout.TextMeasurer.
func (r *Renderer) Measure(text string) layout.Size {
	return layout.Size{Width: float64(r.cond.StringWidth(text)) * r.cw, Height: r.ch}
}

// Render 依次输出每张纸，纸与纸之间以换页符分隔。
func (r *Renderer) Render(doc *sheet.Document) ([]byte, error) {
	if err := renderer.Validate(doc); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for i := range doc.Sheets {
		if i > 0 {
			buf.WriteString("\f\n")
		}
		g, err := r.Grid(&doc.Sheets[i])
		if err != nil {
			return nil, err
		}
		buf.WriteString(g.String())
	}
	return buf.Bytes(), nil
}

// Grid 绘制一张纸并返回字符网格。
func (r *Renderer) Grid(sh *sheet.Sheet) (*Grid, error) {
	g := NewGrid(r.col(sh.Width), r.row(sh.Height))
	g.border = r.border
	err := renderer.PaintSheet(sh, r, func(*sheet.Label) (layout.Surface, error) {
		return &surface{r: r, g: g}, nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *Renderer) col(mm float64) int { return int(math.Round(mm / r.cw)) }

func (r *Renderer) row(mm float64) int { return int(math.Round(mm / r.ch)) }

// Grid 是按行存放的字符单元格；宽字符的第二格为空串。
type Grid struct {
	cols, rows int
	cells      [][]string
	border     bool
}

// NewGrid 创建空白网格。
func NewGrid(cols, rows int) *Grid {
	g := &Grid{cols: max(cols, 0), rows: max(rows, 0)}
	g.cells = make([][]string, g.rows)
	for y := range g.cells {
		g.cells[y] = make([]string, g.cols)
		for x := range g.cells[y] {
			g.cells[y][x] = " "
		}
	}
	return g
}

// Size 返回列数与行数。
func (g *Grid) Size() (int, int) { return g.cols, g.rows }

// Row 返回第 y 行去掉行尾空白后的文本。
func (g *Grid) Row(y int) string {
	if y < 0 || y >= g.rows {
		return ""
	}
	return strings.TrimRight(strings.Join(g.cells[y], ""), " ")
}

func (g *Grid) String() string {
	var sb strings.Builder
	edge := "+" + strings.Repeat("-", g.cols) + "+\n"
	if g.border {
		sb.WriteString(edge)
	}
	for y := 0; y < g.rows; y++ {
		if g.border {
			sb.WriteString("|" + strings.Join(g.cells[y], "") + "|\n")
			continue
		}
		sb.WriteString(g.Row(y))
		sb.WriteByte('\n')
	}
	if g.border {
		sb.WriteString(edge)
	}
	return sb.String()
}

// put 写入一个字素簇，超出网格或裁剪区的部分丢弃；宽字符放不下时整个丢弃。
func (g *Grid) put(x, y int, cluster string, width int, clip *cellRect) {
	if y < 0 || y >= g.rows || x < 0 || x+width > g.cols {
		return
	}
	if clip != nil && !clip.contains(x, y, width) {
		return
	}
	// 覆盖到宽字符的一半时清掉另一半
	if g.cells[y][x] == "" && x > 0 {
		g.cells[y][x-1] = " "
	}
	if end := x + width; end < g.cols && g.cells[y][end] == "" {
		g.cells[y][end] = " "
	}
	g.cells[y][x] = cluster
	for i := 1; i < width; i++ {
		g.cells[y][x+i] = ""
	}
}

type cellRect struct{ x0, y0, x1, y1 int }

func (c cellRect) contains(x, y, width int) bool {
	return x >= c.x0 && x+width <= c.x1 && y >= c.y0 && y < c.y1
}
