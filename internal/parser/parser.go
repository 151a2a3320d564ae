package parser

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/riverfjs/markwidget-go/internal/converter"
	"github.com/riverfjs/markwidget-go/internal/mathext"
	"github.com/riverfjs/markwidget-go/internal/types"
)

// StandardOptions goldmark 扩展配置
var StandardOptions = []goldmark.Option{
	goldmark.WithExtensions(
		extension.GFM,            // GitHub Flavored Markdown (tables, strikethrough, tasklists, linkify)
		extension.DefinitionList, // 定义列表
		extension.Footnote,       // 脚注
		mathext.MathDelimiters,   // \[...\] 与 \(...\)
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // 自动生成标题 ID
	),
}

// Parse 解析规范化后的 Markdown 并构建节点树
func Parse(markdown string) *types.Node {
	source := []byte(markdown)
	node := parseSource(source)

	builder := converter.NewTreeBuilder(source)
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		return builder.Walk(n, entering)
	})

	return builder.Result()
}

// ParseAST 仅解析为 AST，不遍历
func ParseAST(markdown string) ast.Node {
	return parseSource([]byte(markdown))
}

func parseSource(source []byte) ast.Node {
	md := goldmark.New(StandardOptions...)
	return md.Parser().Parse(text.NewReader(source))
}
