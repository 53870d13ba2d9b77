package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const cliDSL = `
doc Cli v1 {
  sheet A7 margin 0 {
    label title x 0 y 0 width 40mm height 10mm flags "top keep-url-info" {
      "Go <a href=\"https://go.dev\">home</a>"
    }
    label tiny x 0 y 20mm width 10mm height 5mm flags "top" {
      "this will never fit"
    }
  }
}
`

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.papyrus")
	require.NoError(t, os.WriteFile(path, []byte(cliDSL), 0o644))
	return path
}

func TestRunText(t *testing.T) {
	in := writeInput(t)
	dir := t.TempDir()
	cfg := config{
		input:     in,
		output:    filepath.Join(dir, "out", "labels.txt"),
		debugPath: filepath.Join(dir, "debug", "layout.json"),
		hit:       "8,2",
	}
	report, err := run(cfg)
	require.NoError(t, err)
	require.Contains(t, report, "标签 tiny 内容放不下")
	// "Go " 占 3 格（7.5mm），链接从 7.5mm 开始
	require.Contains(t, report, "命中标签 title 的链接 https://go.dev")
	require.Contains(t, report, "已生成 TXT")

	out, err := os.ReadFile(cfg.output)
	require.NoError(t, err)
	require.Contains(t, string(out), "|Go home")

	raw, err := os.ReadFile(cfg.debugPath)
	require.NoError(t, err)
	var debug map[string]any
	require.NoError(t, json.Unmarshal(raw, &debug))
	require.Contains(t, debug, "sheets")
}

func TestRunHitMiss(t *testing.T) {
	in := writeInput(t)
	report, err := run(config{input: in, output: filepath.Join(t.TempDir(), "x.txt"), hit: "60,90"})
	require.NoError(t, err)
	require.Contains(t, report, "未命中任何标签")
}

func TestRunErrors(t *testing.T) {
	in := writeInput(t)
	out := filepath.Join(t.TempDir(), "labels.docx")

	_, err := run(config{input: in, output: out})
	require.ErrorContains(t, err, "不支持的输出格式")

	_, err = run(config{input: in, output: out, format: "txt", hit: "abc"})
	require.Error(t, err)

	_, err = run(config{input: in, output: out, format: "txt", hit: "1,1", sheet: 3})
	require.Error(t, err)

	_, err = run(config{input: filepath.Join(t.TempDir(), "missing.papyrus"), output: out, format: "txt"})
	require.True(t, err != nil && strings.Contains(err.Error(), "解析 DSL 失败"))
}
