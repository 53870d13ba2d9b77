package sheet

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/papyrus/layout"
)

// BuildOptions 配置构建阶段所需的依赖，例如排版后端与图片加载方式。
type BuildOptions struct {
	Typesetter Typesetter
	// Loader 加载行内图片，为空时使用 imaging.Open（支持 EXIF 方向）。
	Loader ImageLoader
	// StrictData 为 true 时，${...} 中找不到的字段会让构建失败。
	StrictData bool
}

// Typesetter 由渲染后端实现，为给定字体提供文本测量器（单位：毫米）。
type Typesetter interface {
	Measurer(font Font) (layout.TextMeasurer, error)
}

// ImageLoader 根据资源路径解码图片。
type ImageLoader func(src string) (image.Image, error)

// DefaultLoader 用 imaging.Open 解码图片，并按 EXIF 方向自动旋转。
func DefaultLoader(src string) (image.Image, error) {
	return imaging.Open(src, imaging.AutoOrientation(true))
}
