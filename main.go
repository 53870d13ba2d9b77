package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ByLCY/papyrus/dsl"
	"github.com/ByLCY/papyrus/layout"
	"github.com/ByLCY/papyrus/renderer"
	canvasrenderer "github.com/ByLCY/papyrus/renderer/canvas"
	"github.com/ByLCY/papyrus/renderer/cells"
	"github.com/ByLCY/papyrus/renderer/raster"
	"github.com/ByLCY/papyrus/sheet"
)

// config 汇总命令行参数。
type config struct {
	input, output, format string
	debugPath             string
	data                  any
	strict                bool
	dpi                   float64
	sheet                 int
	hit                   string
}

func main() {
	input := flag.String("in", "examples/labels.papyrus", "DSL 文件路径")
	output := flag.String("out", "output/labels.pdf", "输出路径")
	format := flag.String("format", "", "输出格式 pdf|png|txt，默认按输出文件扩展名判断")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	dataFile := flag.String("data-file", "", "从文件读取绑定数据（JSON）")
	strict := flag.Bool("strict", false, "数据中缺少字段时报错而不是保留占位符")
	dpi := flag.Float64("dpi", raster.DefaultDPI, "PNG 输出分辨率")
	sheetIndex := flag.Int("sheet", 0, "PNG 输出与命中查询使用的纸张序号")
	hit := flag.String("hit", "", "查询纸面坐标 x,y（mm）命中的标签与链接")
	flag.Parse()

	raw := []byte(*dataJSON)
	if *dataFile != "" {
		b, err := os.ReadFile(*dataFile)
		if err != nil {
			log.Fatalf("读取 data 文件失败: %v", err)
		}
		raw = b
	}
	var inputData any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	cfg := config{
		input:     *input,
		output:    *output,
		format:    *format,
		debugPath: *debug,
		data:      inputData,
		strict:    *strict,
		dpi:       *dpi,
		sheet:     *sheetIndex,
		hit:       *hit,
	}
	report, err := run(cfg)
	if err != nil {
		log.Fatalf("生成标签失败: %v", err)
	}
	fmt.Print(report)
}

// run 串联解析、排版、命中查询与渲染，返回打印到终端的摘要。
func run(cfg config) (string, error) {
	format := cfg.format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(cfg.output)), ".")
	}
	backend, err := newBackend(format, cfg)
	if err != nil {
		return "", err
	}

	src, err := dsl.ParseFile(cfg.input)
	if err != nil {
		return "", fmt.Errorf("解析 DSL 失败: %w", err)
	}
	doc, err := sheet.Build(src, cfg.data, sheet.BuildOptions{
		Typesetter: backend,
		Loader:     relativeLoader(filepath.Dir(cfg.input)),
		StrictData: cfg.strict,
	})
	if err != nil {
		return "", fmt.Errorf("排版失败: %w", err)
	}

	if cfg.debugPath != "" {
		if err := writeDebug(doc, cfg.debugPath); err != nil {
			return "", err
		}
	}

	var report strings.Builder
	for _, name := range doc.Overflowing() {
		fmt.Fprintf(&report, "标签 %s 内容放不下，已截断\n", name)
	}
	if cfg.hit != "" {
		line, err := queryHit(doc, cfg.sheet, cfg.hit)
		if err != nil {
			return "", err
		}
		report.WriteString(line)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.output), 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	out, err := backend.Render(doc)
	if err != nil {
		return "", fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.WriteFile(cfg.output, out, 0o644); err != nil {
		return "", fmt.Errorf("写入输出文件失败: %w", err)
	}
	fmt.Fprintf(&report, "已生成 %s：%s\n", strings.ToUpper(format), cfg.output)
	return report.String(), nil
}

func newBackend(format string, cfg config) (renderer.Backend, error) {
	switch format {
	case "pdf":
		return canvasrenderer.NewRenderer(filepath.Dir(cfg.input)), nil
	case "png":
		return raster.New(raster.Options{BaseDir: filepath.Dir(cfg.input), DPI: cfg.dpi, Sheet: cfg.sheet}), nil
	case "txt", "text":
		return cells.New(cells.Options{Border: true}), nil
	default:
		return nil, fmt.Errorf("不支持的输出格式：%q", format)
	}
}

// relativeLoader 让 DSL 中的相对图片路径以 DSL 文件所在目录为基准。
func relativeLoader(baseDir string) sheet.ImageLoader {
	return func(src string) (image.Image, error) {
		if !filepath.IsAbs(src) {
			src = filepath.Join(baseDir, src)
		}
		return sheet.DefaultLoader(src)
	}
}

func queryHit(doc *sheet.Document, index int, spec string) (string, error) {
	xs, ys, ok := strings.Cut(spec, ",")
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if !ok || errX != nil || errY != nil {
		return "", fmt.Errorf("命中坐标格式应为 x,y：%q", spec)
	}
	if index < 0 || index >= len(doc.Sheets) {
		return "", fmt.Errorf("第 %d 张 sheet 不存在", index)
	}
	hit, found := doc.Sheets[index].HitAt(x, y)
	switch {
	case !found:
		return fmt.Sprintf("(%g, %g) 未命中任何标签\n", x, y), nil
	case hit.Anchor != nil:
		return fmt.Sprintf("(%g, %g) 命中标签 %s 的链接 %s\n", x, y, hit.Name, hit.Anchor.URL), nil
	case hit.Image >= 0:
		return fmt.Sprintf("(%g, %g) 命中标签 %s 的图片 %%%d\n", x, y, hit.Name, hit.Image), nil
	default:
		return fmt.Sprintf("(%g, %g) 命中标签 %s\n", x, y, hit.Name), nil
	}
}

func writeDebug(doc *sheet.Document, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(doc, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
