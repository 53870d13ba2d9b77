package layout

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Ellipsis 是截断时追加的字形。
const Ellipsis = "…"

// Truncate 把 s 截到不超过 n 字节的最后一个字素簇边界，再追加省略号。
// 代理对、组合字符与 ZWJ 序列都属于同一个字素簇，因此不会被拆开。
func Truncate(s string, n int) string {
	return s[:clusterFloor(s, n)] + Ellipsis
}

// clusterFloor 返回不超过 n 的最大字素簇边界。
func clusterFloor(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}
	pos, state := 0, -1
	rest := s
	for pos < n && rest != "" {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if pos+len(cluster) > n {
			break
		}
		pos += len(cluster)
	}
	return pos
}

// clusterBounds 返回每个字素簇结束处的字节偏移。
func clusterBounds(s string) []int {
	var bounds []int
	pos, state := 0, -1
	rest := s
	for rest != "" {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		pos += len(cluster)
		bounds = append(bounds, pos)
	}
	return bounds
}

// boundAt 返回前 k 个字素簇的字节长度。
func boundAt(bounds []int, k int) int {
	if k <= 0 {
		return 0
	}
	return bounds[k-1]
}

// searchFit 在 [lo, hi] 中二分查找满足 fits 的最大 k，fits 需单调；
// 都不满足时返回 lo，保证调用方总能前进。
func searchFit(lo, hi int, fits func(k int) bool) int {
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if fits(mid) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// midWord 判断在 s[cut] 处截断是否切开了一个词。
func midWord(s string, cut int) bool {
	return cut > 0 && cut < len(s) && s[cut-1] != ' ' && s[cut] != ' '
}

// ellipsize 让当前行以省略号结尾：尽可能多地保留 tail（已提交内容之后的文本），
// 连省略号都放不下时回退已提交的尾部文本。
func (p *Printer) ellipsize(lb *lineBuilder, tail string) {
	p.truncated = true
	lb.ellipsis = true
	run := lb.tail()
	fits := func(s string) bool {
		return lb.tailOffset+p.measure(strings.TrimRight(s, " ")+Ellipsis).Width <= p.maxWidth
	}

	bounds := clusterBounds(tail)
	k := searchFit(0, len(bounds), func(k int) bool {
		return fits(run + tail[:boundAt(bounds, k)])
	})
	cut := boundAt(bounds, k)
	if k > 0 || fits(run) {
		if midWord(tail, cut) {
			p.wordCut = true
		}
		lb.text += tail[:cut]
	} else {
		bounds = clusterBounds(run)
		k = searchFit(0, len(bounds), func(k int) bool {
			return fits(run[:boundAt(bounds, k)])
		})
		cut = boundAt(bounds, k)
		if midWord(run, cut) {
			p.wordCut = true
		}
		lb.text = lb.text[:lb.tailStart+cut]
	}
	lb.text = strings.TrimRight(lb.text, " ")
	if lb.tailStart > len(lb.text) {
		lb.tailStart = len(lb.text)
	}
	lb.width = lb.tailOffset + p.measure(lb.tail()+Ellipsis).Width
}

// truncateLast 在最后一行末尾追加省略号（必要时回退文本），用于整行模式下剩余内容放不下的情况。
func (p *Printer) truncateLast() {
	p.truncated = true
	if len(p.lines) == 0 {
		return
	}
	pl := &p.lines[len(p.lines)-1]
	if pl.Ellipsis {
		return
	}
	lb := &lineBuilder{
		text:       pl.Text[:pl.SourceLen],
		tailStart:  pl.tailStart,
		tailOffset: pl.tailOffset,
		width:      pl.Extent.Width,
		height:     pl.Extent.Height,
		images:     pl.Images,
		words:      1,
	}
	p.ellipsize(lb, "")
	done := lb.finish()
	done.SourceStart = pl.SourceStart
	done.Preferred = pl.Preferred
	*pl = done
}
