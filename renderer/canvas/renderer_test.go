package canvasrenderer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/papyrus/dsl"
	"github.com/ByLCY/papyrus/layout"
	"github.com/ByLCY/papyrus/sheet"
)

var body = sheet.Font{Name: "Body", Src: "go:regular", Size: 12}

func TestMeasurerUsesFontMetrics(t *testing.T) {
	r := NewRenderer("")
	m, err := r.Measurer(body)
	require.NoError(t, err)

	short := m.Measure("hello")
	long := m.Measure("hello world")
	require.Greater(t, short.Width, 0.0)
	require.Greater(t, long.Width, short.Width)
	require.Greater(t, short.Height, 0.0)
	require.Equal(t, short.Height, m.Measure(" ").Height)
}

func TestPrintWrapsWithinWidth(t *testing.T) {
	r := NewRenderer("")
	m, err := r.Measurer(body)
	require.NoError(t, err)

	limit := 30.0 // mm
	res := layout.Print(layout.Request{
		Text:  "longlonglong longlonglong longlonglong longlonglong",
		Rect:  layout.Rect{Width: limit, Height: 1000},
		Flags: layout.Wrap | layout.AlignTop,
	}, m, nil, layout.DefaultOptions())
	require.Greater(t, len(res.Lines), 1)
	for i, ln := range res.Lines {
		require.LessOrEqualf(t, ln.Extent.Width, limit+1e-6, "line %d too wide", i)
	}
	require.False(t, res.Truncated)
}

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r := NewRenderer("")
	m, err := r.Measurer(body)
	require.NoError(t, err)

	first := "SAMPLE-A"
	limit := m.Measure(first).Width
	res := layout.Print(layout.Request{
		Text:  first + "\n" + "SAMPLE-B",
		Rect:  layout.Rect{Width: limit, Height: 1000},
		Flags: layout.Wrap | layout.AlignTop,
	}, m, nil, layout.DefaultOptions())
	require.Len(t, res.Lines, 2)
	require.Equal(t, first, res.Lines[0].Text)
	require.Equal(t, "SAMPLE-B", res.Lines[1].Text)
}

func TestUnknownFontFallsBack(t *testing.T) {
	r := NewRenderer(t.TempDir())
	m, err := r.Measurer(sheet.Font{Name: "Missing", Src: "nope.ttf", Size: 10})
	require.NoError(t, err)
	require.Greater(t, m.Measure("abc").Width, 0.0)
}

func TestInjectedFont(t *testing.T) {
	regular, err := NewRenderer("").loadFontBytes("go:mono")
	require.NoError(t, err)
	r := NewRendererWithOptions(Options{Fonts: map[string][]byte{"brand": regular}})
	m, err := r.Measurer(sheet.Font{Name: "Brand", Src: "brand", Size: 10})
	require.NoError(t, err)
	// 等宽字体
	require.InDelta(t, m.Measure("iii").Width, m.Measure("WWW").Width, 1e-9)
}

func TestParseFontStyle(t *testing.T) {
	require.Equal(t, canvas.FontBold|canvas.FontItalic, parseFontStyle("Bold Italic"))
	require.Equal(t, canvas.FontSemiBold, parseFontStyle("SemiBold"))
	require.Equal(t, canvas.FontRegular, parseFontStyle(""))
}

const sheetDSL = `
doc Shelf v1 {
  meta {
    title: "Shelf"
  }
  sheet A6 landscape margin 5mm {
    label name x 0 y 0 width 40mm height 20mm flags "wrap top keep-url-info" {
      "Apple <a href=\"aa\">Banana</a>, Cow"
    }
  }
  sheet A7 {
    label other { "second page" }
  }
}
`

func TestRenderPDF(t *testing.T) {
	doc, err := dsl.ParseString(sheetDSL)
	require.NoError(t, err)
	r := NewRenderer("")
	built, err := sheet.Build(doc, nil, sheet.BuildOptions{Typesetter: r})
	require.NoError(t, err)
	require.Len(t, built.Sheets, 2)

	name := built.Sheets[0].Labels[0]
	require.Len(t, name.Result.Anchors, 1)
	require.NotEmpty(t, name.Result.Anchors[0].HitRects)

	out, err := r.Render(built)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output should be a PDF")
}

func TestRenderRejectsEmptyDocument(t *testing.T) {
	_, err := NewRenderer("").Render(&sheet.Document{})
	require.Error(t, err)
	_, err = NewRenderer("").Render(nil)
	require.Error(t, err)
}

func TestSurfaceClipDropsOutsideContent(t *testing.T) {
	s := &surface{}
	require.True(t, s.visible(layout.Rect{X: 500, Y: 500, Width: 1, Height: 1}))

	s.SetClip(layout.Rect{X: 10, Y: 10, Width: 20, Height: 10})
	require.True(t, s.visible(layout.Rect{X: 12, Y: 12, Width: 5, Height: 5}))
	// 跨越边界的内容保留
	require.True(t, s.visible(layout.Rect{X: 25, Y: 15, Width: 20, Height: 5}))
	require.True(t, s.visible(layout.Rect{X: 5, Y: 18, Width: 30}))
	require.False(t, s.visible(layout.Rect{X: 40, Y: 12, Width: 5, Height: 5}))
	require.False(t, s.visible(layout.Rect{X: 12, Y: 25, Width: 5, Height: 5}))
	require.False(t, s.visible(layout.Rect{X: 0, Y: 0, Width: 10, Height: 10}))

	s.ResetClip()
	require.True(t, s.visible(layout.Rect{X: 40, Y: 12, Width: 5, Height: 5}))
}
