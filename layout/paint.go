package layout

import (
	"math"
	"slices"
)

// underlineRatio 是下划线相对行顶的位置（占行高的比例）。
const underlineRatio = 0.88

// segment 是物理行中的一段：普通文本、链接文本或一张图片。
type segment struct {
	start, end int // Text 中的字节区间
	image      int // 图片序号，非图片为 -1
	anchor     int // 所属链接下标，无链接为 -1
}

// segments 按链接边界与图片占位符把一行切成若干段。
func (p *Printer) segments(ln *PhysicalLine, anchors []AnchorSpan) []segment {
	cuts := []int{0, ln.SourceLen, len(ln.Text)}
	for _, ref := range ln.Images {
		cuts = append(cuts, ref.Offset, ref.Offset+2)
	}
	lo, hi := ln.SourceStart, ln.SourceStart+ln.SourceLen
	for _, a := range anchors {
		if a.End() <= lo || a.Start >= hi {
			continue
		}
		cuts = append(cuts, max(a.Start, lo)-lo, min(a.End(), hi)-lo)
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	segs := make([]segment, 0, len(cuts))
	for i := 0; i+1 < len(cuts); i++ {
		seg := segment{start: cuts[i], end: cuts[i+1], image: -1, anchor: -1}
		for _, ref := range ln.Images {
			if ref.Offset == seg.start {
				seg.image = ref.Index
				break
			}
		}
		if seg.start < ln.SourceLen {
			abs := ln.SourceStart + seg.start
			for j, a := range anchors {
				if abs >= a.Start && abs < a.End() {
					seg.anchor = j
					break
				}
			}
		}
		segs = append(segs, seg)
	}
	return segs
}

// paint 逐行绘制并记录链接与图片的命中区域。NoDraw 时仍计算命中区域，但不调用 Surface。
func (p *Printer) paint(res *Result, s Surface) {
	if p.req.Flags.Has(NoDraw) {
		s = nil
	}
	if s != nil {
		if c, ok := s.(Clipper); ok && !p.req.Flags.Has(SkipClip) {
			c.SetClip(p.req.Rect)
			defer c.ResetClip()
		}
		s.SetForeground(p.opts.TextColor)
	}
	for i := range res.Lines {
		p.paintLine(res, &res.Lines[i], s)
	}
	if s != nil {
		s.SetForeground(p.opts.TextColor)
	}
}

func (p *Printer) paintLine(res *Result, ln *PhysicalLine, s Surface) {
	textY := ln.Y + (ln.Extent.Height-p.lineHeight)/2
	linkColor := false
	runStart, runX, runW := 0, ln.X, 0.0
	for _, seg := range p.segments(ln, res.Anchors) {
		if seg.image >= 0 {
			img := p.images[seg.image]
			size := img.ScaledSize()
			x := runX + runW
			y := ln.Y + (ln.Extent.Height-size.Height)/2
			if s != nil {
				s.DrawImage(img, x, y, size.Width, size.Height)
			}
			res.Images = append(res.Images, ImageHit{Index: seg.image, Rect: Rect{X: x, Y: y, Width: size.Width, Height: size.Height}})
			if seg.anchor >= 0 {
				addHit(&res.Anchors[seg.anchor], Rect{X: x, Y: ln.Y, Width: size.Width, Height: ln.Extent.Height})
			}
			runStart, runX, runW = seg.end, x+size.Width, 0
			continue
		}

		x := runX + runW
		endW := p.measure(ln.Text[runStart:seg.end]).Width
		w := endW - runW
		runW = endW
		if s != nil {
			if isLink := seg.anchor >= 0; isLink != linkColor {
				linkColor = isLink
				if isLink {
					s.SetForeground(p.opts.LinkColor)
				} else {
					s.SetForeground(p.opts.TextColor)
				}
			}
			s.DrawText(ln.Text[seg.start:seg.end], x, textY)
			if u, ok := s.(Underliner); ok && seg.anchor >= 0 && p.opts.UnderlineLinks {
				uy := textY + p.lineHeight*underlineRatio
				u.DrawLine(x, uy, x+w, uy)
			}
		}
		if seg.anchor >= 0 {
			addHit(&res.Anchors[seg.anchor], Rect{X: x, Y: ln.Y, Width: w, Height: ln.Extent.Height})
		}
	}
	if s != nil && linkColor {
		s.SetForeground(p.opts.TextColor)
	}
}

// addHit 追加命中矩形；同一行内相邻的矩形会合并，因此一个链接在每一行只占一个矩形。
func addHit(a *AnchorSpan, r Rect) {
	if n := len(a.HitRects); n > 0 {
		last := &a.HitRects[n-1]
		if last.Y == r.Y && last.Height == r.Height && math.Abs(last.X+last.Width-r.X) < 1e-9 {
			last.Width += r.Width
			return
		}
	}
	a.HitRects = append(a.HitRects, r)
}
