package fonts

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Default 是未声明字体时使用的内置字体。
const Default = "go:regular"

var builtin = map[string][]byte{
	"go:regular": goregular.TTF,
	"go:bold":    gobold.TTF,
	"go:italic":  goitalic.TTF,
	"go:mono":    gomono.TTF,
	"lm:roman":   lmroman10regular.TTF,
	"lm:bold":    lmroman10bold.TTF,
	"lm:italic":  lmroman10italic.TTF,
}

// aliases 兼容旧 DSL 中的 builtin: 写法。
var aliases = map[string]string{
	"builtin:helvetica":   "go:regular",
	"builtin:courier":     "go:mono",
	"builtin:times-roman": "lm:roman",
}

// IsBuiltin 报告 src 是否指向内置字体。
func IsBuiltin(src string) bool {
	_, ok := builtin[canonical(src)]
	return ok
}

// Names 返回所有内置字体名。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Load 返回字体字节数据：src 可以是 "go:regular"、"lm:roman" 这类内置名，也可以是字体文件路径；
// 空字符串返回 Default。
func Load(src string) ([]byte, error) {
	if src == "" {
		src = Default
	}
	if data, ok := builtin[canonical(src)]; ok {
		return data, nil
	}
	if strings.HasPrefix(src, "go:") || strings.HasPrefix(src, "lm:") || strings.HasPrefix(src, "builtin:") {
		return nil, fmt.Errorf("未知的内置字体：%s", src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

func canonical(src string) string {
	name := strings.ToLower(strings.TrimSpace(src))
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}
