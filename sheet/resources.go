package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/papyrus/dsl"
	"github.com/ByLCY/papyrus/layout"
)

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]layout.Color{},
		Images: map[string]ImageResource{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, fmt.Errorf("color %s: %w", name, err)
				}
				res.Colors[name] = c
			case "image":
				img := parseImageResource(stmt.Command)
				if img.Name != "" {
					res.Images[img.Name] = img
				}
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}
	ensureDefaultFont(&res)

	resolved, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolved
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{Creator: "Papyrus"}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			val := stmt.Assignment.Value
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(val)
			case "author":
				meta.Author = valueToString(val)
			case "subject":
				meta.Subject = valueToString(val)
			case "creator":
				meta.Creator = valueToString(val)
			case "keywords":
				meta.Keywords = valueToStringSlice(val)
			}
		}
	}
	return meta
}

// parseFontResource 解析 font Name { src: "..." size: 9pt style: "bold" }。
func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{Name: cmd.Args[0].Value}
	for _, a := range assignments(cmd) {
		switch a.Key {
		case "src":
			font.Src = valueToString(a.Value)
		case "style":
			font.Style = valueToString(a.Value)
		case "size":
			if l, ok := ParseLength(valueToString(a.Value)); ok {
				font.Size = l.PT()
			}
		}
	}
	return font
}

func parseImageResource(cmd *dsl.Command) ImageResource {
	if len(cmd.Args) == 0 {
		return ImageResource{}
	}
	img := ImageResource{Name: cmd.Args[0].Value}
	for _, a := range assignments(cmd) {
		switch a.Key {
		case "src":
			img.Src = valueToString(a.Value)
		case "width":
			img.Width = parseLength(valueToString(a.Value))
		case "height":
			img.Height = parseLength(valueToString(a.Value))
		case "dpi":
			if v, err := strconv.Atoi(valueToString(a.Value)); err == nil {
				img.DPI = v
			}
		}
	}
	if img.Src == "" {
		img.Src = img.Name
	}
	return img
}

// parseStyleResource 解析 style Name [extends Parent] { key: value }。
func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	for _, a := range assignments(cmd) {
		if val := valueToString(a.Value); val != "" {
			style.Props[a.Key] = val
		}
	}
	return style
}

func assignments(cmd *dsl.Command) []*dsl.Assignment {
	if cmd.Block == nil {
		return nil
	}
	var out []*dsl.Assignment
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment != nil {
			out = append(out, stmt.Assignment)
		}
	}
	return out
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// parseColorResource 支持 color Name = #RRGGBB 与 color Name #RRGGBB。
func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

// resolveColor 先查颜色资源再按十六进制解析，失败时返回 def。
func resolveColor(value string, res ResourceSet, def layout.Color) layout.Color {
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c
		}
	}
	return def
}

func parseColor(value string) (layout.Color, error) {
	hex := strings.TrimPrefix(value, "#")
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return layout.Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	switch len(hex) {
	case 3:
		return layout.Color{
			R: mustHex(strings.Repeat(hex[0:1], 2)),
			G: mustHex(strings.Repeat(hex[1:2], 2)),
			B: mustHex(strings.Repeat(hex[2:3], 2)),
		}, nil
	case 6, 8:
		return layout.Color{
			R: mustHex(hex[0:2]),
			G: mustHex(hex[2:4]),
			B: mustHex(hex[4:6]),
		}, nil
	default:
		return layout.Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
