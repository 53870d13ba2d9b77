package sheet

import (
	"errors"
	"image"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/papyrus/dsl"
	"github.com/ByLCY/papyrus/layout"
)

// gridTypesetter 以每个字符 2mm、行高 4mm 测量，并记录请求过的字体。
type gridTypesetter struct {
	fonts []Font
	fail  bool
}

type gridMeasurer struct{}

func (gridMeasurer) Measure(text string) layout.Size {
	return layout.Size{Width: 2 * float64(utf8.RuneCountInString(text)), Height: 4}
}

func (ts *gridTypesetter) Measurer(font Font) (layout.TextMeasurer, error) {
	if ts.fail {
		return nil, errors.New("no font")
	}
	ts.fonts = append(ts.fonts, font)
	return gridMeasurer{}, nil
}

func stubLoader(loaded *[]string) ImageLoader {
	return func(src string) (image.Image, error) {
		*loaded = append(*loaded, src)
		if src == "missing.png" {
			return nil, errors.New("not found")
		}
		return image.NewRGBA(image.Rect(0, 0, 40, 20)), nil
	}
}

const labelsDSL = `
doc Shelf v1 {
  meta {
    title: "Shelf"
    keywords: [ "a", "b" ]
  }
  resources {
    font Body { src: "go:regular" size: 9pt }
    font Mono { src: "go:mono" }
    color Link = #0F62FE
    color Ink #333
    image icon { src: "icon.png" width: 4mm }
    style base { flags: "wrap top" color: Ink }
    style title extends base { font: "Mono" size: 12pt }
  }
  sheet A6 landscape margin 5mm {
    label name x 0 y 0 width 30mm height 20mm style title link Link {
      "Apple <a href=\"aa\">Banana</a>, ${item.name}"
    }
    label price x 50% y 10mm width 20mm height 8mm flags "right keep-url-info" {
      image 0 icon scale 0.5
      "%0 ${item.price}"
    }
    label rest x 60mm y 60mm
  }
}
`

func buildSample(t *testing.T, data any, opts BuildOptions) *Document {
	t.Helper()
	doc, err := dsl.ParseString(labelsDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	out, err := Build(doc, data, opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return out
}

func TestBuildSheet(t *testing.T) {
	var loaded []string
	ts := &gridTypesetter{}
	data := map[string]any{"item": map[string]any{"name": "Cow", "price": 12.5}}
	doc := buildSample(t, data, BuildOptions{Typesetter: ts, Loader: stubLoader(&loaded)})

	if doc.Meta.Title != "Shelf" || len(doc.Meta.Keywords) != 2 || doc.Meta.Creator != "Papyrus" {
		t.Fatalf("unexpected meta: %+v", doc.Meta)
	}
	if len(doc.Sheets) != 1 {
		t.Fatalf("expected one sheet, got %d", len(doc.Sheets))
	}
	sh := doc.Sheets[0]
	if sh.Width != 148 || sh.Height != 105 {
		t.Fatalf("landscape A6 expected 148x105, got %gx%g", sh.Width, sh.Height)
	}
	if len(sh.Labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(sh.Labels))
	}

	name := sh.Labels[0]
	if name.Request.Rect != (layout.Rect{X: 5, Y: 5, Width: 30, Height: 20}) {
		t.Fatalf("unexpected rect: %+v", name.Request.Rect)
	}
	if !name.Request.Flags.Has(layout.Wrap | layout.AlignTop) {
		t.Fatalf("style flags not applied: %s", name.Request.Flags)
	}
	if name.Font.Name != "Mono" || name.Font.Size != 12 {
		t.Fatalf("style font not applied: %+v", name.Font)
	}
	if name.Options.TextColor != (layout.Color{R: 0x33, G: 0x33, B: 0x33}) {
		t.Fatalf("text color not resolved: %+v", name.Options.TextColor)
	}
	if name.Options.LinkColor != (layout.Color{R: 0x0F, G: 0x62, B: 0xFE}) {
		t.Fatalf("link color not resolved: %+v", name.Options.LinkColor)
	}
	if name.Result == nil || name.Result.Display != "Apple Banana, Cow" {
		t.Fatalf("unexpected measured result: %+v", name.Result)
	}
	// 没有 keep-url-info 时链接标记被去掉
	if len(name.Result.Anchors) != 0 {
		t.Fatalf("anchors should be stripped without keep-url-info")
	}

	price := sh.Labels[1]
	if price.Request.Rect.X != 5+69 || price.Request.Text != "%0 12.5" {
		t.Fatalf("unexpected price label: %+v", price.Request)
	}
	if len(price.Request.Images) != 1 {
		t.Fatalf("expected one inline image")
	}
	img := price.Request.Images[0]
	if img.Width != 4 || img.Height != 2 || img.Scale != 0.5 {
		t.Fatalf("image size should keep aspect ratio: %+v", img)
	}
	if price.Font.Name != "Body" || price.Font.Size != 9 {
		t.Fatalf("default font not applied: %+v", price.Font)
	}

	rest := sh.Labels[2]
	if rest.Request.Rect != (layout.Rect{X: 65, Y: 65, Width: 78, Height: 35}) {
		t.Fatalf("missing size should extend to content edge: %+v", rest.Request.Rect)
	}
	if rest.Result.Fits != true || len(rest.Result.Lines) != 0 {
		t.Fatalf("empty label should fit with no lines")
	}

	if strings.Join(loaded, ",") != "icon.png" {
		t.Fatalf("images should be loaded once: %v", loaded)
	}
	if len(ts.fonts) != 2 {
		t.Fatalf("measurers should be cached per font, got %d requests", len(ts.fonts))
	}
}

func TestBuildKeepsAnchorsAndHits(t *testing.T) {
	src := strings.Replace(labelsDSL, `style title link Link {`, `style title link Link flags "wrap top keep-url-info" {`, 1)
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var loaded []string
	out, err := Build(doc, nil, BuildOptions{Typesetter: &gridTypesetter{}, Loader: stubLoader(&loaded)})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	sh := &out.Sheets[0]
	name := sh.Labels[0]
	if len(name.Result.Anchors) != 1 || name.Result.Anchors[0].URL != "aa" {
		t.Fatalf("expected anchor to survive: %+v", name.Result.Anchors)
	}
	r := name.Result.Anchors[0].HitRects[0]
	hit, ok := sh.HitAt(r.X+0.1, r.Y+0.1)
	if !ok || hit.Name != "name" || hit.Anchor == nil || hit.Anchor.URL != "aa" {
		t.Fatalf("expected anchor hit, got %+v %v", hit, ok)
	}
	if _, ok := sh.HitAt(1, 1); ok {
		t.Fatalf("margin area should not hit any label")
	}
	if l, ok := sh.Label("price"); !ok || l.Name != "price" {
		t.Fatalf("label lookup failed")
	}
}

func TestBuildStrictData(t *testing.T) {
	doc, err := dsl.ParseString(labelsDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var loaded []string
	_, err = Build(doc, map[string]any{}, BuildOptions{Typesetter: &gridTypesetter{}, Loader: stubLoader(&loaded), StrictData: true})
	if err == nil || !strings.Contains(err.Error(), "item.name") {
		t.Fatalf("expected missing field error, got %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	var loaded []string
	cases := []struct {
		name string
		src  string
		opts BuildOptions
	}{
		{"no sheet", "doc X v1 {\n meta { title: \"x\" }\n}\n", BuildOptions{Typesetter: &gridTypesetter{}}},
		{"bad size", "doc X v1 {\n sheet B9 {\n }\n}\n", BuildOptions{Typesetter: &gridTypesetter{}}},
		{"bad flag", "doc X v1 {\n sheet A6 {\n  label a flags \"sideways\"\n }\n}\n", BuildOptions{Typesetter: &gridTypesetter{}}},
		{"unknown font", "doc X v1 {\n sheet A6 {\n  label a font Nope\n }\n}\n", BuildOptions{Typesetter: &gridTypesetter{}}},
		{"typesetter fails", "doc X v1 {\n sheet A6 {\n  label a\n }\n}\n", BuildOptions{Typesetter: &gridTypesetter{fail: true}}},
		{"missing image", "doc X v1 {\n sheet A6 {\n  label a {\n   image 0 \"missing.png\"\n  }\n }\n}\n", BuildOptions{Typesetter: &gridTypesetter{}, Loader: stubLoader(&loaded)}},
		{"style cycle", "doc X v1 {\n resources {\n  style a extends b { size: 9 }\n  style b extends a { size: 9 }\n }\n sheet A6 {\n }\n}\n", BuildOptions{Typesetter: &gridTypesetter{}}},
	}
	for _, c := range cases {
		doc, err := dsl.ParseString(c.src)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", c.name, err)
		}
		if _, err := Build(doc, nil, c.opts); err == nil {
			t.Fatalf("%s: expected build error", c.name)
		}
	}
	if _, err := Build(nil, nil, BuildOptions{Typesetter: &gridTypesetter{}}); err == nil {
		t.Fatalf("nil document should fail")
	}
	doc, _ := dsl.ParseString("doc X v1 {\n sheet A6 {\n }\n}\n")
	if _, err := Build(doc, nil, BuildOptions{}); err == nil {
		t.Fatalf("missing typesetter should fail")
	}
}

func TestLabelPaintUsesOptions(t *testing.T) {
	var loaded []string
	doc := buildSample(t, nil, BuildOptions{Typesetter: &gridTypesetter{}, Loader: stubLoader(&loaded)})
	label := doc.Sheets[0].Labels[0]
	s := &colorSurface{}
	res := label.Paint(gridMeasurer{}, s)
	if len(res.Lines) != len(label.Result.Lines) {
		t.Fatalf("paint pass should match measured layout")
	}
	if len(s.colors) == 0 || s.colors[0] != label.Options.TextColor {
		t.Fatalf("paint should start with the label text color: %+v", s.colors)
	}
	if s.texts == 0 {
		t.Fatalf("expected text to be drawn")
	}
}

type colorSurface struct {
	colors []layout.Color
	texts  int
}

func (s *colorSurface) DrawText(string, float64, float64) { s.texts++ }

func (s *colorSurface) DrawImage(layout.InlineImage, float64, float64, float64, float64) {}

func (s *colorSurface) SetForeground(c layout.Color) { s.colors = append(s.colors, c) }

func TestResolveMargin(t *testing.T) {
	doc, err := dsl.ParseString("doc X v1 {\n sheet A6 portrait margin 2mm 4mm 6mm {\n }\n}\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	m := resolveMargin(doc.Sheets()[0].Spec.Params)
	if m != (Margin{Top: 2, Right: 4, Bottom: 6, Left: 0}) {
		t.Fatalf("unexpected margin: %+v", m)
	}
	w, h, err := resolveSheetSize(doc.Sheets()[0].Spec)
	if err != nil || w != 105 || h != 148 {
		t.Fatalf("unexpected portrait size: %g %g %v", w, h, err)
	}
}

func TestOverflowing(t *testing.T) {
	src := "doc X v1 {\n sheet A6 {\n  label tiny width 4mm height 4mm { \"hello world\" }\n  label ok { \"hi\" }\n }\n}\n"
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	out, err := Build(doc, nil, BuildOptions{Typesetter: &gridTypesetter{}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if got := out.Overflowing(); len(got) != 1 || got[0] != "tiny" {
		t.Fatalf("unexpected overflowing labels: %v", got)
	}
}
