package layout

// Printer 在给定矩形内排版并绘制带链接与行内图片的文本。
//
// Printer 持有单次排版的工作状态（已生成的行、截断标记等），每次 Print 开始时重置，
// 因此同一个 Printer 不能被两个 goroutine 同时使用；并发排版请为每个请求创建新的 Printer，
// 或在外部串行化调用。Options 可在多次 Print 之间复用。
type Printer struct {
	measurer TextMeasurer
	opts     Options

	req        Request
	images     []InlineImage
	maxWidth   float64
	lineHeight float64
	lines      []PhysicalLine
	truncated  bool
	wordCut    bool
}

// NewPrinter 使用给定测量器与配置创建 Printer。
func NewPrinter(m TextMeasurer, opts Options) *Printer {
	return &Printer{measurer: m, opts: opts}
}

// Options 返回当前配置。
func (p *Printer) Options() Options { return p.opts }

// SetOptions 替换可复用的配置，例如颜色或图片集合。
func (p *Printer) SetOptions(opts Options) { p.opts = opts }

// Print 以一次性 Printer 排版请求。
func Print(req Request, m TextMeasurer, s Surface, opts Options) *Result {
	return NewPrinter(m, opts).Print(req, s)
}

// Print 对请求执行一次完整排版；设置了 NoDraw 或 s 为 nil 时只计算几何信息。
// 空文本视为放得下；零面积矩形或缺少测量器时返回 Fits=false 的空结果。
func (p *Printer) Print(req Request, s Surface) *Result {
	p.reset(req)
	res := &Result{
		Fits: true,
		Draw: Rect{X: req.Rect.X, Y: req.Rect.Y},
	}
	if req.Text == "" {
		return res
	}
	if req.Rect.Empty() || p.measurer == nil {
		res.Fits = false
		return res
	}

	display, anchors := prepareText(req.Text, req.Flags.Has(KeepURLInfo))
	res.Display = display
	p.lineHeight = p.measurer.Measure(" ").Height
	p.layoutLines(display)

	res.Lines = p.lines
	res.Truncated = p.truncated
	res.WordCut = p.wordCut
	res.Fits = !p.truncated
	p.place(res)
	res.Anchors = anchors
	p.paint(res, s)
	return res
}

func (p *Printer) reset(req Request) {
	p.req = req
	p.images = req.Images
	if len(p.images) == 0 {
		p.images = p.opts.Images
	}
	p.maxWidth = req.Rect.Width
	p.lineHeight = 0
	p.lines = nil
	p.truncated = false
	p.wordCut = false
}

// roomFor 报告在已占用 used 高度之后能否再放下高度为 h 的一行。
// 整行模式要求整行可见，否则只要行的顶部还在矩形内即可。
func (p *Printer) roomFor(used, h float64) bool {
	if p.req.Flags.fullLinesOnly() {
		return used+h <= p.req.Rect.Height
	}
	return used < p.req.Rect.Height
}

// layoutLines 逐个逻辑行反复调用 wrapLine，直到文本用完或纵向空间耗尽。
// 第一行总会被排出，保证极小的矩形也有可见内容。
func (p *Printer) layoutLines(display string) {
	used := 0.0
	for ll := range SplitLines(display) {
		text, offset := ll.Text, ll.Start
		// 每个逻辑行只整段测量一次；剩余部分是它的后缀，期望宽度不会更大
		whole := p.wholeLine(text)
		preferred := Size{Width: whole.width, Height: whole.height}
		for {
			if len(p.lines) > 0 && !p.roomFor(used, p.lineHeight) {
				p.stop()
				return
			}
			last := !p.roomFor(used+p.lineHeight, p.lineHeight)
			wordCut := p.wordCut
			pl, excess := p.wrapLine(text, whole, last)
			pl.SourceStart = offset
			pl.Preferred = preferred
			if len(p.lines) > 0 && p.req.Flags.fullLinesOnly() && used+pl.Extent.Height > p.req.Rect.Height {
				// 行内图片把这一行撑高到放不下，丢弃该行时一并撤销它设置的标志
				p.wordCut = wordCut
				p.stop()
				return
			}
			p.lines = append(p.lines, pl)
			used += pl.Extent.Height
			if excess < 0 {
				break
			}
			whole = nil
			text, offset = text[excess:], offset+excess
		}
	}
}

// stop 在仍有内容但没有空间时结束排版；整行模式下给最后一行加省略号。
func (p *Printer) stop() {
	if p.req.Flags.fullLinesOnly() {
		p.truncateLast()
		return
	}
	p.truncated = true
}
