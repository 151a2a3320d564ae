package markwidget

import (
	"fmt"
	"strings"

	"github.com/riverfjs/markwidget-go/internal/converter"
	"github.com/riverfjs/markwidget-go/internal/types"
)

// Document 一次渲染的结果
type Document struct {
	Root      *Node
	Source    string // 规范化后实际解析的文本
	Direction TextDirection

	query HighlightQuery
	hooks Hooks
}

// Query returns the active highlight query.
func (d *Document) Query() HighlightQuery {
	return d.query
}

// Highlight 用新的查询重新切分所有文本叶子，不重新解析
func (d *Document) Highlight(q HighlightQuery) {
	d.query = q
	converter.ApplyHighlight(d.Root, q)
}

// Visit 按文档顺序把叶子节点分发给对应的 hook
//
// hooks 全部为空时使用 RenderConfig 中配置的 Hooks。
// 为 nil 的 hook 直接跳过。链接先触发 Link 再遍历其子节点。
// 第一个返回的错误会中止遍历。
func (d *Document) Visit(hooks Hooks) error {
	if hooks.IsZero() {
		hooks = d.hooks
	}
	var err error
	types.Walk(d.Root, func(n *Node) bool {
		if err != nil {
			return false
		}
		err = dispatch(hooks, n)
		return err == nil
	})
	return err
}

func dispatch(hooks Hooks, n *Node) error {
	var hook func(*Node) error
	switch n.Kind {
	case KindCodeBlock:
		hook = hooks.Code
	case KindMathBlock, KindInlineMath:
		hook = hooks.Math
	case KindImage:
		hook = hooks.Image
	case KindLink:
		hook = hooks.Link
	}
	if hook != nil {
		if err := hook(n); err != nil {
			return fmt.Errorf("%s hook: %w", n.Kind, err)
		}
	}

	if hooks.Highlight == nil {
		return nil
	}
	for _, run := range n.Runs {
		if !run.Highlighted() {
			continue
		}
		if err := hooks.Highlight(n, run); err != nil {
			return fmt.Errorf("highlight hook: %w", err)
		}
	}
	return nil
}

// TapLink 将链接点击转交给 OnTapLink；未处理时返回 false
func (d *Document) TapLink(n *Node) bool {
	if n == nil || n.Kind != KindLink || d.hooks.OnTapLink == nil {
		return false
	}
	d.hooks.OnTapLink(plainText(n), n.URL, n.Title)
	return true
}

// CodeBlocks returns the code block nodes in document order.
func (d *Document) CodeBlocks() []*Node {
	var blocks []*Node
	types.Walk(d.Root, func(n *Node) bool {
		if n.Kind == KindCodeBlock {
			blocks = append(blocks, n)
			return false
		}
		return true
	})
	return blocks
}

// PlainText 返回去掉格式后的文本，块之间以换行分隔
func (d *Document) PlainText() string {
	return plainText(d.Root)
}

func plainText(n *Node) string {
	var b strings.Builder
	writePlain(&b, n)
	return strings.TrimRight(b.String(), "\n")
}

func writePlain(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KindText, KindCodeSpan, KindInlineMath, KindImage:
		b.WriteString(n.Text)
		return
	case KindFootnoteRef:
		b.WriteString("[" + n.Text + "]")
		return
	case KindLineBreak:
		b.WriteByte('\n')
		return
	case KindCodeBlock, KindMathBlock:
		b.WriteString(strings.TrimRight(n.Text, "\n"))
		b.WriteByte('\n')
		return
	case KindHTML, KindThematicBreak, KindTaskCheckBox:
		return
	}

	for i, c := range n.Children {
		if i > 0 && n.Kind == KindTableRow {
			b.WriteByte('\t')
		}
		writePlain(b, c)
	}

	switch n.Kind {
	case KindParagraph, KindHeading, KindListItem, KindTableRow, KindDefinitionTerm:
		if !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
}
