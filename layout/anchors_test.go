package layout

import "testing"

func TestExtractAnchors(t *testing.T) {
	display, spans := ExtractAnchors(`Apple <a href="aa">Banana</a>, Cow`)
	if display != "Apple Banana, Cow" {
		t.Fatalf("unexpected display text: %q", display)
	}
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	s := spans[0]
	if s.URL != "aa" || s.Start != 6 || s.Length != 6 || s.Text != "Banana" {
		t.Fatalf("unexpected span: %+v", s)
	}
	if display[s.Start:s.End()] != s.Text {
		t.Fatalf("span does not cover its text")
	}
}

func TestExtractAnchorsAttributes(t *testing.T) {
	display, spans := ExtractAnchors(`<A  title="Home page" HREF=/home target="_blank">home< /a >!`)
	if display != "home!" {
		t.Fatalf("unexpected display text: %q", display)
	}
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	s := spans[0]
	if s.URL != "/home" || s.Title != "Home page" || s.Target != "_blank" {
		t.Fatalf("attributes not parsed: %+v", s)
	}
}

func TestExtractAnchorsDuplicates(t *testing.T) {
	display, spans := ExtractAnchors(`<a href="x">go</a> and <a href="x">go</a>`)
	if display != "go and go" {
		t.Fatalf("unexpected display text: %q", display)
	}
	if len(spans) != 2 || spans[0].Start != 0 || spans[1].Start != 7 {
		t.Fatalf("identical anchors should keep their own offsets: %+v", spans)
	}
}

func TestExtractAnchorsMalformed(t *testing.T) {
	cases := []string{
		"a < b",
		`<a href="x">never closed`,
		`<a>no href</a>`,
		`<a href="">empty</a>`,
		`<abbr href="x">not a link</abbr>`,
		`<a href="x`,
	}
	for _, in := range cases {
		display, spans := ExtractAnchors(in)
		if display != in || spans != nil {
			t.Fatalf("%q should stay literal, got %q %+v", in, display, spans)
		}
	}
}

func TestStripAnchors(t *testing.T) {
	got := StripAnchors(`1 <a href="u">two</a> 3 <b>`)
	if got != "1 two 3 <b>" {
		t.Fatalf("unexpected stripped text: %q", got)
	}
}

func TestPrepareTextRemapsSpans(t *testing.T) {
	display, spans := prepareText("x  <a href=\"u\">  y</a>\tz", true)
	if display != "x y z" {
		t.Fatalf("unexpected display text: %q", display)
	}
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	s := spans[0]
	if display[s.Start:s.End()] != s.Text || s.Text != "y" {
		t.Fatalf("span not remapped: %+v", s)
	}
}
