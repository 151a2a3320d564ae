package markwidget

import (
	"github.com/riverfjs/markwidget-go/internal/codeblock"
)

// 代码块展示组件
type (
	CodeBlock       = codeblock.Presenter
	CodeBlockOption = codeblock.Option
	Clipboard       = codeblock.Clipboard
	ClipboardFunc   = codeblock.ClipboardFunc
	Scheduler       = codeblock.Scheduler
)

var ErrClipboardUnsupported = codeblock.ErrClipboardUnsupported

// WithClipboard sets the clipboard used by Copy.
func WithClipboard(c Clipboard) CodeBlockOption {
	return codeblock.WithClipboard(c)
}

// WithScheduler sets the scheduler that owns the copied-flag reset timer.
func WithScheduler(s Scheduler) CodeBlockOption {
	return codeblock.WithScheduler(s)
}

// WithOnChange registers a callback for copied-flag changes.
func WithOnChange(fn func(copied bool)) CodeBlockOption {
	return codeblock.WithOnChange(fn)
}

// NewCodeBlock 为代码块节点创建展示组件
//
// 复制失败默认写入 Logger。n 不是代码块时返回 nil。
func NewCodeBlock(n *Node, opts ...CodeBlockOption) *CodeBlock {
	if n == nil || n.Kind != KindCodeBlock {
		return nil
	}
	opts = append([]CodeBlockOption{codeblock.WithLogf(logf)}, opts...)
	return codeblock.New(n.Label, n.Text, n.Language, opts...)
}
