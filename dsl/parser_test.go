package dsl_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/papyrus/dsl"
)

const sampleDSL = `
doc Shelf v1 {
  meta {
    title: "Shelf labels"
    keywords: [
      "labels"
      "internal"
    ]
  }

  resources {
    font Body {
      src: "go:regular"
      size: 9pt
    }

    color Link = #0F62FE
    image icon { src: "icon.png" width: 4mm height: 4mm }
  }

  /* 每张标签绝对定位 */
  sheet A6 landscape margin 6mm {
    label status x 5mm y 5mm width 60mm height 12mm flags "wrap keep-url-info" link Link {
      image 0 icon scale 0.8
      "Apple <a href=\"aa\">Banana</a>, "
      "${item.name} %0"
    }

    label footer x 0 y 80% width 100% height 8mm font Body
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "Shelf" || doc.Version != "v1" {
		t.Fatalf("unexpected header: %s %s", doc.Name, doc.Version)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	kinds := []string{doc.Sections[0].Kind(), doc.Sections[1].Kind(), doc.Sections[2].Kind()}
	if strings.Join(kinds, ",") != "meta,resources,sheet" {
		t.Fatalf("unexpected section kinds: %v", kinds)
	}

	meta := doc.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Key != "title" || string(*title.Value.String) != "Shelf labels" {
		t.Fatalf("expected title assignment, got %+v", meta.Block.Statements[0])
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.Array == nil || len(keywords.Value.Array.Values) != 2 {
		t.Fatalf("expected keywords array with 2 values")
	}

	res := doc.Sections[1].Resources
	if len(res.Block.Statements) != 3 {
		t.Fatalf("expected 3 resource statements, got %d", len(res.Block.Statements))
	}
	color := res.Block.Statements[1].Command
	if color == nil || color.Name != "color" || color.Args[len(color.Args)-1].Value != "#0F62FE" {
		t.Fatalf("unexpected color resource: %+v", color)
	}

	sheets := doc.Sheets()
	if len(sheets) != 1 {
		t.Fatalf("expected one sheet, got %d", len(sheets))
	}
	spec := sheets[0].Spec
	if spec.Size != "A6" || len(spec.Params) != 3 || spec.Params[2].Value != "6mm" {
		t.Fatalf("unexpected sheet spec: %s %+v", spec.Size, spec.Params)
	}

	labels := sheets[0].Labels()
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	status := labels[0]
	if status.Args[0].Value != "status" {
		t.Fatalf("unexpected label name: %+v", status.Args[0])
	}
	var flags string
	for i, arg := range status.Args {
		if arg.Value == "flags" && i+1 < len(status.Args) {
			flags = status.Args[i+1].Value
		}
	}
	if flags != "wrap keep-url-info" {
		t.Fatalf("flags string should be unquoted, got %q", flags)
	}
	if got := status.Text(); got != `Apple <a href="aa">Banana</a>, ${item.name} %0` {
		t.Fatalf("unexpected label text: %q", got)
	}
	images := status.Children("image")
	if len(images) != 1 || len(images[0].Args) != 4 || images[0].Args[3].Value != "0.8" {
		t.Fatalf("unexpected inline image command: %+v", images)
	}

	footer := labels[1]
	if footer.Block != nil {
		t.Fatalf("footer label should have no body")
	}
	if footer.Args[4].Value != "80%" {
		t.Fatalf("percentage should stay in one token, got %+v", footer.Args[4])
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.papyrus")
	if err := os.WriteFile(path, []byte(sampleDSL), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	doc, err := dsl.ParseFile(path)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(doc.Sheets()) != 1 {
		t.Fatalf("expected one sheet")
	}
	if _, err := dsl.ParseFile(filepath.Join(t.TempDir(), "missing.papyrus")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseRejectsUnknownSection(t *testing.T) {
	if _, err := dsl.ParseString("doc X v1 {\n  page A4 {\n  }\n}\n"); err == nil {
		t.Fatalf("expected parse error for unknown section")
	}
}
