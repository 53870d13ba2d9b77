package sheet

import "github.com/ByLCY/papyrus/layout"

// Hit 描述纸面上某一点命中的内容。
type Hit struct {
	Label  *Label             `json:"-"`
	Name   string             `json:"label"`
	Anchor *layout.AnchorSpan `json:"anchor,omitempty"`
	// Image 为命中的行内图片序号，未命中图片时为 -1。
	Image int `json:"image"`
}

// HitAt 返回包含该点的最上层标签（后声明的标签在上层）及其中的链接或图片。
// 点不在任何标签的绘制区域内时 ok 为 false。
func (s *Sheet) HitAt(x, y float64) (Hit, bool) {
	for i := len(s.Labels) - 1; i >= 0; i-- {
		l := &s.Labels[i]
		if l.Result == nil {
			continue
		}
		hit := Hit{Label: l, Name: l.Name, Image: -1}
		if a, ok := l.Result.HitAt(x, y); ok {
			hit.Anchor = a
		}
		if idx, ok := l.Result.ImageAt(x, y); ok {
			hit.Image = idx
		}
		if hit.Anchor != nil || hit.Image >= 0 || l.Result.Draw.Contains(x, y) {
			return hit, true
		}
	}
	return Hit{}, false
}

// Label 按名称查找标签。
func (s *Sheet) Label(name string) (*Label, bool) {
	for i := range s.Labels {
		if s.Labels[i].Name == name {
			return &s.Labels[i], true
		}
	}
	return nil, false
}

// Overflowing 返回内容放不下（被截断或矩形为空）的标签名。
func (d *Document) Overflowing() []string {
	var names []string
	for _, sh := range d.Sheets {
		for _, l := range sh.Labels {
			if l.Result != nil && !l.Result.Fits {
				names = append(names, l.Name)
			}
		}
	}
	return names
}
