package layout

import (
	"strconv"
	"strings"
)

// lineBuilder 是正在构建中的物理行。最后一张图片之后的文本称为尾部（tail），
// 追加文本时只需重新测量尾部，图片及其左侧的宽度保存在 tailOffset 中。
type lineBuilder struct {
	text       string
	tailStart  int
	tailOffset float64
	width      float64
	height     float64
	images     []ImageRef
	words      int
	ellipsis   bool
}

func (lb *lineBuilder) tail() string { return lb.text[lb.tailStart:] }

func (lb *lineBuilder) addText(s string, width float64) {
	lb.text += s
	lb.width = width
	lb.words++
}

func (lb *lineBuilder) addImage(sep string, index int, size Size, width float64) {
	lb.text += sep
	lb.images = append(lb.images, ImageRef{Index: index, Offset: len(lb.text)})
	lb.text += "%" + strconv.Itoa(index)
	lb.tailStart = len(lb.text)
	lb.tailOffset = width
	lb.width = width
	lb.height = max(lb.height, size.Height)
	lb.words++
}

func (lb *lineBuilder) finish() PhysicalLine {
	pl := PhysicalLine{
		Text:       lb.text,
		SourceLen:  len(lb.text),
		Extent:     Size{Width: lb.width, Height: lb.height},
		Images:     lb.images,
		Ellipsis:   lb.ellipsis,
		tailStart:  lb.tailStart,
		tailOffset: lb.tailOffset,
	}
	if lb.ellipsis {
		pl.Text += Ellipsis
	}
	return pl
}

// imageIndex 在 tok 是有效的图片占位符（%0-%9 且图片存在）时返回其序号，否则返回 -1。
func (p *Printer) imageIndex(tok string) int {
	if len(tok) != 2 || tok[0] != '%' || tok[1] < '0' || tok[1] > '9' {
		return -1
	}
	idx := int(tok[1] - '0')
	if idx >= len(p.images) {
		return -1
	}
	img := p.images[idx]
	if img.Image == nil && (img.Width <= 0 || img.Height <= 0) {
		return -1
	}
	return idx
}

// measure 测量文本，空串不调用测量器。
func (p *Printer) measure(s string) Size {
	if s == "" {
		return Size{}
	}
	return p.measurer.Measure(s)
}

// wholeLine 不做任何折行地构建整行，用于判断是否放得下以及计算期望宽度。
func (p *Printer) wholeLine(text string) *lineBuilder {
	lb := &lineBuilder{height: p.lineHeight}
	if len(p.images) == 0 || !strings.Contains(text, "%") {
		lb.text = text
		lb.width = p.measure(text).Width
		lb.words = 1
		return lb
	}
	forEachToken(text, func(tok string, start int) bool {
		sep := ""
		if start > 0 {
			sep = " "
		}
		if idx := p.imageIndex(tok); idx >= 0 {
			size := p.images[idx].ScaledSize()
			lb.addImage(sep, idx, size, lb.tailOffset+p.measure(lb.tail()+sep).Width+size.Width)
			return true
		}
		lb.text += sep + tok
		lb.words++
		return true
	})
	lb.width = lb.tailOffset + p.measure(lb.tail()).Width
	return lb
}

// forEachToken 依次给出以单个空格分隔的词及其起始偏移，fn 返回 false 时停止。
func forEachToken(text string, fn func(tok string, start int) bool) {
	pos := 0
	for {
		end := strings.IndexByte(text[pos:], ' ')
		if end < 0 {
			fn(text[pos:], pos)
			return
		}
		if !fn(text[pos:pos+end], pos) {
			return
		}
		pos += end + 1
	}
}

// nextImage 返回 from 之后第一个有效图片占位符词的起点（不含前导空格），没有时返回 len(text)。
func (p *Printer) nextImage(text string, from int) int {
	next := len(text)
	forEachToken(text[from:], func(tok string, start int) bool {
		if p.imageIndex(tok) >= 0 {
			next = from + start
			if start > 0 {
				next--
			}
			return false
		}
		return true
	})
	return next
}

// wrapLine 把逻辑行（或其剩余部分）排成一个物理行。
// whole 是整行测量的结果，只在逻辑行的第一段传入；剩余部分直接逐词排版，不再整段测量。
// excess 是未处理部分在 text 中的起点，整行处理完时为 -1。
// last 表示这是目标矩形内允许的最后一行：放不下的内容会被省略号截断而不是换到下一行。
func (p *Printer) wrapLine(text string, whole *lineBuilder, last bool) (PhysicalLine, int) {
	if whole != nil && whole.width <= p.maxWidth {
		return whole.finish(), -1
	}

	canWrap := p.req.Flags.Has(Wrap) && !last
	lb := &lineBuilder{height: p.lineHeight}
	excess := -1
	forEachToken(text, func(tok string, start int) bool {
		sep := ""
		if start > 0 {
			sep = " "
		}
		if tok == "" {
			// 连续空格规范化后只剩行首/行尾的空词，只贡献一个分隔空格
			lb.text += sep
			return true
		}

		if idx := p.imageIndex(tok); idx >= 0 {
			size := p.images[idx].ScaledSize()
			width := lb.tailOffset + p.measure(lb.tail()+sep).Width + size.Width
			if width > p.maxWidth && lb.words > 0 {
				if canWrap {
					excess = start
				} else {
					p.ellipsize(lb, "")
				}
				return false
			}
			// 比整行还宽的图片也直接放下，避免无限推迟
			lb.addImage(sep, idx, size, width)
			return true
		}

		width := lb.tailOffset + p.measure(lb.tail()+sep+tok).Width
		if width <= p.maxWidth {
			lb.addText(sep+tok, width)
			return true
		}
		if !canWrap {
			from := start - len(sep)
			p.ellipsize(lb, text[from:p.nextImage(text, start)])
			return false
		}
		if lb.words == 0 {
			excess = start + p.forceSplit(lb, sep, tok)
			return false
		}
		// 在前一个空格处换行，超宽词留给下一行（下一行为空时再强制拆分）
		excess = start
		return false
	})

	return lb.finish(), excess
}

// forceSplit 二分查找 tok 能放进当前行的最长前缀（至少一个字素簇），返回其字节长度。
func (p *Printer) forceSplit(lb *lineBuilder, sep, tok string) int {
	p.wordCut = true
	base := lb.tail() + sep
	bounds := clusterBounds(tok)
	k := searchFit(1, len(bounds), func(k int) bool {
		return lb.tailOffset+p.measure(base+tok[:bounds[k-1]]+" ").Width <= p.maxWidth
	})
	n := bounds[k-1]
	lb.addText(sep+tok[:n], lb.tailOffset+p.measure(base+tok[:n]).Width)
	return n
}
