package layout

import (
	"iter"
	"sort"
	"strings"
)

// OffsetMap 记录规范化时被删除的字节位置（按原文偏移升序），
// 用于把规范化之前记录的偏移换算到规范化之后。
type OffsetMap []int

// Map 将原文偏移换算为规范化文本中的偏移。
func (m OffsetMap) Map(offset int) int {
	return offset - sort.SearchInts(m, offset)
}

// NormalizeSpaces 将制表符替换为空格，并把连续两个及以上的空格合并为一个。
// 这是有损的规范化，与旧版行为保持一致。
func NormalizeSpaces(text string) (string, OffsetMap) {
	if !strings.ContainsRune(text, '\t') && !strings.Contains(text, "  ") {
		return text, nil
	}
	var (
		b       strings.Builder
		removed OffsetMap
		prevSp  bool
	)
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\t' {
			c = ' '
		}
		if c == ' ' {
			if prevSp {
				removed = append(removed, i)
				continue
			}
			prevSp = true
		} else {
			prevSp = false
		}
		b.WriteByte(c)
	}
	return b.String(), removed
}

// SplitLines 按 \n、\r 或 \r\n 切分已规范化的文本，并给出每行的起始偏移。
// 它是纯函数，可以重复遍历；文本末尾的换行不会产生额外的空行。
func SplitLines(text string) iter.Seq[LogicalLine] {
	return func(yield func(LogicalLine) bool) {
		if text == "" {
			return
		}
		start := 0
		for i := 0; i < len(text); i++ {
			c := text[i]
			if c != '\n' && c != '\r' {
				continue
			}
			if !yield(LogicalLine{Text: text[start:i], Start: start}) {
				return
			}
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
		if start < len(text) {
			yield(LogicalLine{Text: text[start:], Start: start})
		}
	}
}

// prepareText 依次执行：空白规范化、链接提取、再次规范化（链接替换可能拼出新的连续空格）。
// 先规范化后提取，链接偏移始终针对最终的显示文本。
func prepareText(raw string, keepURL bool) (string, []AnchorSpan) {
	text, _ := NormalizeSpaces(raw)
	if !keepURL {
		text, _ = NormalizeSpaces(StripAnchors(text))
		return text, nil
	}
	display, spans := ExtractAnchors(text)
	display, m := NormalizeSpaces(display)
	if len(m) > 0 {
		for i := range spans {
			start, end := m.Map(spans[i].Start), m.Map(spans[i].End())
			spans[i].Start = start
			spans[i].Length = end - start
			spans[i].Text = display[start:end]
		}
	}
	return display, spans
}
