package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将标签文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	out, _ := interpolate(text, data)
	return out
}

// InterpolateStrict 与 Interpolate 相同，但任一路径无法解析时返回错误。
func InterpolateStrict(text string, data any) (string, error) {
	out, missing := interpolate(text, data)
	if len(missing) > 0 {
		return out, fmt.Errorf("数据中找不到字段：%s", strings.Join(missing, ", "))
	}
	return out, nil
}

func interpolate(text string, data any) (string, []string) {
	if !strings.Contains(text, "${") {
		return text, nil
	}
	var missing []string
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		val, ok := Lookup(data, path)
		if !ok {
			missing = append(missing, path)
			return match
		}
		return format(val)
	})
	return out, missing
}

// Lookup 按 a.b[0].c 形式的路径在 JSON 风格数据（map/slice）中取值。
func Lookup(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			if current, ok = descendMap(current, name); !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			if current, ok = descendArray(current, idx); !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// parseSegment 拆分 name[1][2] 形式的路径段。
func parseSegment(segment string) (string, []int, bool) {
	i := strings.IndexByte(segment, '[')
	if i < 0 {
		return segment, nil, segment != ""
	}
	name, rest := segment[:i], segment[i:]
	var indexes []int
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end < 0 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}
	return name, indexes, true
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}

// format 把 JSON 解码出的数字按最短形式输出，避免 1e+06 之类的写法出现在标签上。
func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
