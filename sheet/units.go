package sheet

import (
	"strconv"
	"strings"
)

// Unit 是 DSL 中长度值的原始单位。
type Unit int

const (
	UnitNone Unit = iota // 无单位，按毫米处理
	UnitMM
	UnitCM
	UnitIN
	UnitPT
	UnitPercent
)

// pt 与 mm 的换算系数。
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"%", UnitPercent}}

// String 返回单位后缀。
func (u Unit) String() string {
	for _, suf := range unitSuffixes {
		if suf.u == u {
			return suf.s
		}
	}
	return ""
}

// Length 保留数值与其原始单位。
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// MM 把长度换算为毫米；百分比按 reference 计算。
func (l Length) MM(reference float64) float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	case UnitPercent:
		return reference * l.Value / 100
	default:
		return l.Value
	}
}

// PT 把长度换算为 pt；无单位的数值视为 pt（用于字号）。
func (l Length) PT() float64 {
	switch l.Unit {
	case UnitNone, UnitPT:
		return l.Value
	case UnitPercent:
		return 0
	default:
		return l.MM(0) * MmToPt
	}
}

// ParseLength 解析 "12pt"、"5mm"、"50%" 这类长度，无法解析时 ok 为 false。
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			v = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// parseDimension 解析长度并换算为毫米，百分比相对 reference。
func parseDimension(value string, reference float64) float64 {
	l, ok := ParseLength(value)
	if !ok {
		return 0
	}
	return l.MM(reference)
}

// parseLength 解析绝对长度（毫米）。
func parseLength(value string) float64 {
	return parseDimension(value, 0)
}
