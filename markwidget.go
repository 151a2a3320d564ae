// Package markwidget 为 Markdown 展示组件提供与 UI 无关的核心逻辑
//
// 这个包处理 LLM 输出、聊天消息等原始 Markdown，生成可以直接交给
// 展示层绘制的节点树。
//
// 核心功能：
//   - 规范化 LaTeX 分隔符（$$..$$ → \[..\]，$..$ → \(..\)）
//   - 将文本切分为普通段与高亮段
//   - 代码块复制状态（2 秒后自动复位）
//   - Mermaid 代码块生成在线编辑链接
//
// 示例：
//
//	doc := markwidget.Render(markdown, markwidget.WithHighlight(markwidget.HighlightQuery{Term: "go"}))
//	_ = doc.Visit(markwidget.Hooks{
//	    Code: func(n *markwidget.Node) error {
//	        // 绘制代码块
//	        return nil
//	    },
//	})
package markwidget

import (
	"github.com/riverfjs/markwidget-go/internal/converter"
	"github.com/riverfjs/markwidget-go/internal/highlight"
	"github.com/riverfjs/markwidget-go/internal/mermaid"
	"github.com/riverfjs/markwidget-go/internal/normalize"
	"github.com/riverfjs/markwidget-go/internal/parser"
)

// Normalize 将 TeX 风格的 $ 分隔符改写为 \[..\] 与 \(..\)
func Normalize(markdown string) string {
	return normalize.Normalize(markdown)
}

// Segment 将 body 切分为普通段与高亮段
func Segment(body string, q HighlightQuery) []Run {
	return highlight.Segment(body, q)
}

// Render 解析 Markdown 并返回带高亮分段的文档
//
// 默认先做分隔符规范化；Mermaid 链接生成失败只记录日志，不影响结果。
func Render(markdown string, opts ...Option) *Document {
	options := applyOptions(opts...)

	source := markdown
	if options.Normalize {
		source = normalize.Normalize(markdown)
	}

	root := parser.Parse(source)
	if options.Config.DiagramLinks {
		if err := mermaid.Annotate(root); err != nil {
			logf("diagram link: %v", err)
		}
	}

	q := options.query()
	converter.ApplyHighlight(root, q)

	return &Document{
		Root:      root,
		Source:    source,
		Direction: options.direction(),
		query:     q,
		hooks:     options.Config.Hooks,
	}
}
