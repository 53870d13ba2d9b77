package layout

import (
	"slices"
	"testing"
)

func TestSplitLines(t *testing.T) {
	var got []LogicalLine
	for ll := range SplitLines("a\r\nb\rc\nd\n") {
		got = append(got, ll)
	}
	want := []LogicalLine{{"a", 0}, {"b", 3}, {"c", 5}, {"d", 7}}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected lines: got=%+v want=%+v", got, want)
	}
}

func TestSplitLinesKeepsEmptyLines(t *testing.T) {
	var got []string
	for ll := range SplitLines("a\n\nb") {
		got = append(got, ll.Text)
	}
	if !slices.Equal(got, []string{"a", "", "b"}) {
		t.Fatalf("unexpected lines: %q", got)
	}
}

func TestSplitLinesStopsEarly(t *testing.T) {
	n := 0
	for range SplitLines("a\nb\nc") {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("iteration should stop when the consumer breaks")
	}
}

func TestNormalizeSpaces(t *testing.T) {
	got, m := NormalizeSpaces("a\t\tb   c d")
	if got != "a b c d" {
		t.Fatalf("unexpected normalized text: %q", got)
	}
	// 原文 "c" 位于偏移 7，规范化后位于 4
	if m.Map(7) != 4 {
		t.Fatalf("offset map mismatch: %d", m.Map(7))
	}
	if same, m := NormalizeSpaces("a b"); same != "a b" || m != nil {
		t.Fatalf("text without runs should be returned as is")
	}
}
