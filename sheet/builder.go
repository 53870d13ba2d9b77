package sheet

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/ByLCY/papyrus/binding"
	"github.com/ByLCY/papyrus/dsl"
	"github.com/ByLCY/papyrus/fonts"
	"github.com/ByLCY/papyrus/layout"
)

const (
	defaultFontSize = 10.0 // pt
	defaultMargin   = 5.0  // mm
	defaultDPI      = 300
	maxInlineImages = 10
)

// Build 根据 DSL AST 解析资源、定位每个标签，并用后端测量器完成一次只测量的排版。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("sheet: 缺少排版后端 Typesetter")
	}
	if opts.Loader == nil {
		opts.Loader = DefaultLoader
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	sections := doc.Sheets()
	if len(sections) == 0 {
		return nil, fmt.Errorf("文档中缺少 sheet 段落")
	}

	b := &builder{
		res:      res,
		data:     data,
		opts:     opts,
		images:   map[string]image.Image{},
		measurer: map[Font]layout.TextMeasurer{},
	}
	out := &Document{Resources: res, Meta: collectMeta(doc)}
	for i, section := range sections {
		sh, err := b.buildSheet(section)
		if err != nil {
			return nil, fmt.Errorf("第 %d 张 sheet: %w", i+1, err)
		}
		out.Sheets = append(out.Sheets, sh)
	}
	return out, nil
}

// builder 保存一次构建内共享的资源，测量器与解码后的图片按键缓存。
type builder struct {
	res      ResourceSet
	data     any
	opts     BuildOptions
	images   map[string]image.Image
	measurer map[Font]layout.TextMeasurer
}

func (b *builder) buildSheet(section *dsl.SheetSection) (Sheet, error) {
	width, height, err := resolveSheetSize(section.Spec)
	if err != nil {
		return Sheet{}, err
	}
	sh := Sheet{
		Size:   strings.ToUpper(section.Spec.Size),
		Width:  width,
		Height: height,
		Margin: resolveMargin(section.Spec.Params),
	}
	content := layout.Rect{
		X:      sh.Margin.Left,
		Y:      sh.Margin.Top,
		Width:  width - sh.Margin.Left - sh.Margin.Right,
		Height: height - sh.Margin.Top - sh.Margin.Bottom,
	}
	for _, cmd := range section.Labels() {
		label, err := b.buildLabel(cmd, content)
		if err != nil {
			return Sheet{}, err
		}
		sh.Labels = append(sh.Labels, label)
	}
	return sh, nil
}

func (b *builder) buildLabel(cmd *dsl.Command, content layout.Rect) (Label, error) {
	name, style, inline := parseLabelArgs(cmd.Args)
	attrs := mergeStyleAttributes(style, inline, b.res.Styles)
	where := fmt.Sprintf("label %s（第 %d 行）", name, cmd.Pos.Line)

	flags, err := resolveFlags(attrs)
	if err != nil {
		return Label{}, fmt.Errorf("%s: %w", where, err)
	}
	rect := layout.Rect{
		X:      content.X + parseDimension(attrs["x"], content.Width),
		Y:      content.Y + parseDimension(attrs["y"], content.Height),
		Width:  parseDimension(attrs["width"], content.Width),
		Height: parseDimension(attrs["height"], content.Height),
	}
	if attrs["width"] == "" {
		rect.Width = content.X + content.Width - rect.X
	}
	if attrs["height"] == "" {
		rect.Height = content.Y + content.Height - rect.Y
	}

	text := cmd.Text()
	if v := attrs["text"]; v != "" && text == "" {
		text = v
	}
	if b.opts.StrictData {
		if text, err = binding.InterpolateStrict(text, b.data); err != nil {
			return Label{}, fmt.Errorf("%s: %w", where, err)
		}
	} else {
		text = binding.Interpolate(text, b.data)
	}

	images, err := b.inlineImages(cmd)
	if err != nil {
		return Label{}, fmt.Errorf("%s: %w", where, err)
	}
	font, err := b.resolveFont(attrs)
	if err != nil {
		return Label{}, fmt.Errorf("%s: %w", where, err)
	}

	opts := layout.DefaultOptions()
	if v := attrs["color"]; v != "" {
		opts.TextColor = resolveColor(v, b.res, opts.TextColor)
	}
	if v := attrs["link"]; v != "" {
		opts.LinkColor = resolveColor(v, b.res, opts.LinkColor)
	}
	if v := attrs["underline"]; v != "" {
		opts.UnderlineLinks = parseBool(v, true)
	}

	label := Label{
		Name:    name,
		Font:    font,
		Request: layout.Request{Text: text, Rect: rect, Flags: flags, Images: images},
		Options: opts,
	}
	m, err := b.measurerFor(font)
	if err != nil {
		return Label{}, fmt.Errorf("%s: %w", where, err)
	}
	label.Result = layout.Print(label.Request, m, nil, opts)
	return label, nil
}

func (b *builder) measurerFor(font Font) (layout.TextMeasurer, error) {
	if m, ok := b.measurer[font]; ok {
		return m, nil
	}
	m, err := b.opts.Typesetter.Measurer(font)
	if err != nil {
		return nil, fmt.Errorf("创建字体 %s 的测量器失败: %w", font.Name, err)
	}
	b.measurer[font] = m
	return m, nil
}

// resolveFont 按 font 属性查找字体资源，size 属性覆盖资源上的字号。
func (b *builder) resolveFont(attrs map[string]string) (Font, error) {
	name := attrs["font"]
	if name == "" {
		name = "Body"
	}
	fr, ok := b.res.Fonts[name]
	if !ok {
		return Font{}, fmt.Errorf("字体 %s 未定义", name)
	}
	font := Font{Name: fr.Name, Src: fr.Src, Style: fr.Style, Size: fr.Size}
	if v := attrs["size"]; v != "" {
		l, ok := ParseLength(v)
		if !ok || l.PT() <= 0 {
			return Font{}, fmt.Errorf("字号 %s 无法解析", v)
		}
		font.Size = l.PT()
	}
	if font.Size <= 0 {
		font.Size = defaultFontSize
	}
	return font, nil
}

// inlineImages 解析标签体中的 image N name [scale s] [width w] [height h] 语句。
func (b *builder) inlineImages(cmd *dsl.Command) ([]layout.InlineImage, error) {
	var images []layout.InlineImage
	for _, ic := range cmd.Children("image") {
		if len(ic.Args) < 2 {
			return nil, fmt.Errorf("image 语句需要序号与资源名")
		}
		idx, err := strconv.Atoi(ic.Args[0].Value)
		if err != nil || idx < 0 || idx >= maxInlineImages {
			return nil, fmt.Errorf("图片序号 %s 必须在 0-9 之间", ic.Args[0].Value)
		}
		name := ic.Args[1].Value
		resImg, ok := b.res.Images[name]
		if !ok {
			resImg = ImageResource{Name: name, Src: name}
		}
		img, err := b.loadImage(resImg.Src)
		if err != nil {
			return nil, err
		}
		inline := layout.InlineImage{Name: name, Image: img, Width: resImg.Width, Height: resImg.Height, Scale: 1}
		_, attrs := parseArgs(ic.Args[2:], false)
		if v := attrs["width"]; v != "" {
			inline.Width = parseLength(v)
		}
		if v := attrs["height"]; v != "" {
			inline.Height = parseLength(v)
		}
		if v := attrs["scale"]; v != "" {
			if s, err := strconv.ParseFloat(v, 64); err == nil && s > 0 {
				inline.Scale = s
			}
		}
		fillImageSize(&inline, resImg.DPI)

		for len(images) <= idx {
			images = append(images, layout.InlineImage{})
		}
		images[idx] = inline
	}
	return images, nil
}

func (b *builder) loadImage(src string) (image.Image, error) {
	if src == "" {
		return nil, fmt.Errorf("image 资源缺少 src")
	}
	if img, ok := b.images[src]; ok {
		return img, nil
	}
	img, err := b.opts.Loader(src)
	if err != nil {
		return nil, fmt.Errorf("加载图片 %s 失败: %w", src, err)
	}
	b.images[src] = img
	return img, nil
}

// fillImageSize 根据 DPI 把像素尺寸换算为毫米，只给出一边时按比例补齐另一边。
func fillImageSize(img *layout.InlineImage, dpi int) {
	if img.Image == nil {
		return
	}
	if dpi <= 0 {
		dpi = defaultDPI
	}
	bounds := img.Image.Bounds()
	pxW, pxH := float64(bounds.Dx()), float64(bounds.Dy())
	if pxW == 0 || pxH == 0 {
		return
	}
	switch {
	case img.Width > 0 && img.Height > 0:
	case img.Width > 0:
		img.Height = img.Width * pxH / pxW
	case img.Height > 0:
		img.Width = img.Height * pxW / pxH
	default:
		img.Width = pxW / float64(dpi) * 25.4
		img.Height = pxH / float64(dpi) * 25.4
	}
}

// resolveFlags 合并 flags 字符串与 align/valign/wrap 等便捷属性。
func resolveFlags(attrs map[string]string) (layout.Flags, error) {
	names := []string{attrs["flags"]}
	if v := attrs["align"]; v != "" {
		names = append(names, v)
	}
	if v := attrs["valign"]; v != "" {
		names = append(names, v)
	}
	if v := attrs["wrap"]; v != "" {
		if parseBool(v, false) {
			names = append(names, "wrap")
		} else {
			names = append(names, "nowrap")
		}
	}
	return layout.ParseFlags(names...)
}

// parseLabelArgs 解析 label NAME [key value]...，style 属性单独返回。
func parseLabelArgs(args []*dsl.Lexeme) (string, string, map[string]string) {
	if len(args) == 0 {
		return "", "", map[string]string{}
	}
	name := args[0].Value
	_, attrs := parseArgs(args[1:], false)
	style := attrs["style"]
	delete(attrs, "style")
	return name, style, attrs
}

func parseArgs(args []*dsl.Lexeme, allowStyle bool) (string, map[string]string) {
	result := map[string]string{}
	if len(args) == 0 {
		return "", result
	}

	cursor := 0
	var style string
	if allowStyle && args[0].Type == "Ident" {
		style = args[0].Value
		cursor = 1
	}

	for cursor < len(args)-1 {
		result[args[cursor].Value] = args[cursor+1].Value
		cursor += 2
	}
	return style, result
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string)
	if s, ok := styles[style]; ok && style != "" {
		for k, v := range s.Props {
			out[k] = v
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

func parseBool(value string, def bool) bool {
	v, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		switch strings.ToLower(value) {
		case "yes", "on":
			return true
		case "no", "off":
			return false
		}
		return def
	}
	return v
}

// resolveSheetSize 返回纸张宽高（毫米），支持 A4-A7、Letter 与 4x6 英寸运单尺寸。
func resolveSheetSize(spec dsl.SheetSpec) (float64, float64, error) {
	size := strings.ToUpper(spec.Size)
	base, ok := sheetPresets[size]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
	}
	width, height := base[0], base[1]
	for _, token := range spec.Params {
		switch token.Value {
		case "landscape":
			if width < height {
				width, height = height, width
			}
		case "portrait":
			if width > height {
				width, height = height, width
			}
		}
	}
	return width, height, nil
}

var sheetPresets = map[string][2]float64{
	"A4":       {210, 297},
	"A5":       {148, 210},
	"A6":       {105, 148},
	"A7":       {74, 105},
	"LETTER":   {215.9, 279.4},
	"SHIPPING": {101.6, 152.4}, // 4x6 in
}

// resolveMargin 按上、右、下、左的顺序解析 margin 之后最多 4 个长度；只给 3 个值时左边距为 0。
func resolveMargin(params []*dsl.Lexeme) Margin {
	margin := Margin{Top: defaultMargin, Right: defaultMargin, Bottom: defaultMargin, Left: defaultMargin}
	for i := 0; i < len(params); i++ {
		if params[i].Value != "margin" {
			continue
		}
		var vals []float64
		for j := i + 1; j < len(params) && len(vals) < 4; j++ {
			l, ok := ParseLength(params[j].Value)
			if !ok || l.Unit == UnitPercent {
				break
			}
			vals = append(vals, l.MM(0))
		}
		switch len(vals) {
		case 1:
			v := vals[0]
			margin = Margin{Top: v, Right: v, Bottom: v, Left: v}
		case 2:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
		case 3:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: 0}
		case 4:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		}
	}
	return margin
}

// ensureDefaultFont 保证至少存在 Body 字体。
func ensureDefaultFont(res *ResourceSet) {
	if _, ok := res.Fonts["Body"]; ok {
		return
	}
	res.Fonts["Body"] = FontResource{Name: "Body", Src: fonts.Default, Size: defaultFontSize}
}
