package layout

// measureLines 汇总各行尺寸：宽取最大值，高为各行之和。
// 期望尺寸使用折行/截断之前测得的宽度。
func measureLines(lines []PhysicalLine) (calculated, preferred Size) {
	for _, ln := range lines {
		calculated.Width = max(calculated.Width, ln.Extent.Width)
		preferred.Width = max(preferred.Width, ln.Preferred.Width)
		calculated.Height += ln.Extent.Height
	}
	preferred.Height = calculated.Height
	return calculated, preferred
}

// originY 根据纵向对齐计算第一行的顶部。
func originY(rect Rect, height float64, flags Flags) float64 {
	switch {
	case flags.Has(AlignBottom):
		return rect.Y + rect.Height - height
	case flags.Has(AlignTop):
		return rect.Y
	default:
		return rect.Y + (rect.Height-height)/2
	}
}

// lineX 根据水平对齐计算一行的起点。
func lineX(rect Rect, width float64, flags Flags) float64 {
	switch {
	case flags.Has(AlignRight):
		return rect.X + rect.Width - width
	case flags.Has(AlignCenter):
		// 坐标是浮点数，居中直接取一半，不做整数坐标下的 +1 取整
		return rect.X + (rect.Width-width)/2
	default:
		return rect.X
	}
}

// place 计算总尺寸、每行坐标与实际绘制的包围盒。
func (p *Printer) place(res *Result) {
	res.Calculated, res.Preferred = measureLines(res.Lines)
	rect, flags := p.req.Rect, p.req.Flags
	y := originY(rect, res.Calculated.Height, flags)
	for i := range res.Lines {
		ln := &res.Lines[i]
		ln.X = lineX(rect, ln.Extent.Width, flags)
		ln.Y = y
		box := Rect{X: ln.X, Y: ln.Y, Width: ln.Extent.Width, Height: ln.Extent.Height}
		if i == 0 {
			res.Draw = box
		} else {
			res.Draw = res.Draw.union(box)
		}
		y += ln.Extent.Height
	}
}
