package converter

import (
	"github.com/riverfjs/markwidget-go/internal/highlight"
	"github.com/riverfjs/markwidget-go/internal/types"
)

// ApplyHighlight 为所有文本叶子重新计算高亮分段
//
// 公式、HTML 与图片 alt 不参与高亮。
func ApplyHighlight(root *types.Node, q types.HighlightQuery) {
	types.Walk(root, func(n *types.Node) bool {
		switch n.Kind {
		case types.KindText, types.KindCodeSpan, types.KindCodeBlock:
			n.Runs = highlight.Segment(n.Text, q)
		}
		return true
	})
}
