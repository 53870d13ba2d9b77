package layout

import (
	"fmt"
	"strings"
)

// Flags 是排版选项位集。
type Flags uint32

const (
	SkipClip      Flags = 1 << iota // 不裁剪到目标矩形
	FullLinesOnly                   // 不绘制纵向被裁掉一部分的行，改为在最后一行加省略号
	NoDraw                          // 只计算布局，不调用 Surface
	KeepURLInfo                     // 保留链接信息，否则只去掉标记
	AlignCenter                     // 水平居中
	AlignRight                      // 水平右对齐
	AlignTop                        // 顶部对齐
	AlignBottom                     // 底部对齐；Top/Bottom 都未设置时纵向居中
	Wrap                            // 启用自动换行
)

// Has 报告是否设置了 f 中的全部位。
func (fl Flags) Has(f Flags) bool { return fl&f == f }

// VerticallyCentered 在未指定顶部或底部对齐时为 true。
func (fl Flags) VerticallyCentered() bool { return fl&(AlignTop|AlignBottom) == 0 }

// fullLinesOnly 中的纵向居中隐含整行模式：半行无法居中。
func (fl Flags) fullLinesOnly() bool {
	return fl.Has(FullLinesOnly) || fl.VerticallyCentered()
}

var flagNames = []struct {
	name string
	flag Flags
}{
	{"skip-clip", SkipClip},
	{"full-lines-only", FullLinesOnly},
	{"no-draw", NoDraw},
	{"keep-url-info", KeepURLInfo},
	{"center", AlignCenter},
	{"right", AlignRight},
	{"top", AlignTop},
	{"bottom", AlignBottom},
	{"wrap", Wrap},
}

// String 以空格分隔的名称列出已设置的位。
func (fl Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if fl.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, " ")
}

// ParseFlags 将名称列表转换为 Flags，支持 start/end/middle/left 等别名。
func ParseFlags(names ...string) (Flags, error) {
	var fl Flags
	for _, raw := range names {
		for _, name := range strings.Fields(raw) {
			switch n := strings.ToLower(name); n {
			case "left", "start":
			case "middle":
				fl &^= AlignTop | AlignBottom
			case "end":
				fl |= AlignRight
			case "nowrap", "no-wrap":
				fl &^= Wrap
			default:
				found := false
				for _, fn := range flagNames {
					if fn.name == n {
						fl |= fn.flag
						found = true
						break
					}
				}
				if !found {
					return fl, fmt.Errorf("未知的排版标志：%s", name)
				}
			}
		}
	}
	return fl, nil
}
