package layout

import "strings"

// 链接标记形如 <a href="URL" title="T" target="TG">TEXT</a>。
// 扫描器从左到右单趟处理原文，不在修改中的字符串上反复匹配。

// ExtractAnchors 将链接标记替换为其显示文本，并记录每个链接在替换后文本中的位置。
// 没有链接时原样返回文本；不完整的标记按普通文本保留。
func ExtractAnchors(text string) (string, []AnchorSpan) {
	return scanAnchors(text, true)
}

// StripAnchors 只去掉链接标记，不保留链接信息。
func StripAnchors(text string) string {
	out, _ := scanAnchors(text, false)
	return out
}

func scanAnchors(text string, keep bool) (string, []AnchorSpan) {
	if !strings.Contains(text, "<") {
		return text, nil
	}
	var (
		b     strings.Builder
		spans []AnchorSpan
		found bool
	)
	b.Grow(len(text))
	i := 0
	for i < len(text) {
		j := strings.IndexByte(text[i:], '<')
		if j < 0 {
			break
		}
		j += i
		a, end, ok := parseAnchor(text, j)
		if !ok {
			b.WriteString(text[i : j+1])
			i = j + 1
			continue
		}
		found = true
		b.WriteString(text[i:j])
		if keep {
			a.Start = b.Len()
			a.Length = len(a.Text)
			spans = append(spans, a)
		}
		b.WriteString(a.Text)
		i = end
	}
	if !found {
		return text, nil
	}
	b.WriteString(text[i:])
	return b.String(), spans
}

// parseAnchor 尝试在 s[at]（必须是 '<'）处解析一个完整的链接，返回链接与其后的偏移。
func parseAnchor(s string, at int) (AnchorSpan, int, bool) {
	var a AnchorSpan
	p := skipSpaces(s, at+1)
	if p+1 >= len(s) || (s[p] != 'a' && s[p] != 'A') || !isSpace(s[p+1]) {
		return a, 0, false
	}
	p++
	hasHref := false
	for {
		p = skipSpaces(s, p)
		if p >= len(s) {
			return a, 0, false
		}
		if s[p] == '>' {
			p++
			break
		}
		nameStart := p
		for p < len(s) && !isSpace(s[p]) && s[p] != '=' && s[p] != '>' {
			p++
		}
		name := strings.ToLower(s[nameStart:p])
		p = skipSpaces(s, p)
		value := ""
		if p < len(s) && s[p] == '=' {
			p = skipSpaces(s, p+1)
			if p >= len(s) {
				return a, 0, false
			}
			if s[p] == '"' {
				q := strings.IndexByte(s[p+1:], '"')
				if q < 0 {
					return a, 0, false
				}
				value = s[p+1 : p+1+q]
				p += q + 2
			} else {
				vs := p
				for p < len(s) && !isSpace(s[p]) && s[p] != '>' {
					p++
				}
				value = s[vs:p]
			}
		}
		switch name {
		case "href":
			a.URL = value
			hasHref = value != ""
		case "title":
			a.Title = value
		case "target":
			a.Target = value
		}
	}
	if !hasHref {
		return a, 0, false
	}
	closeAt, end, ok := findAnchorClose(s, p)
	if !ok {
		return a, 0, false
	}
	a.Text = s[p:closeAt]
	return a, end, true
}

// findAnchorClose 查找第一个 </a>（允许空白，不区分大小写）。
func findAnchorClose(s string, from int) (int, int, bool) {
	for i := from; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		p := skipSpaces(s, i+1)
		if p >= len(s) || s[p] != '/' {
			continue
		}
		p++
		if p >= len(s) || (s[p] != 'a' && s[p] != 'A') {
			continue
		}
		p = skipSpaces(s, p+1)
		if p < len(s) && s[p] == '>' {
			return i, p + 1, true
		}
	}
	return 0, 0, false
}

func skipSpaces(s string, p int) int {
	for p < len(s) && isSpace(s[p]) {
		p++
	}
	return p
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
