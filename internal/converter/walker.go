package converter

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"

	"github.com/riverfjs/markwidget-go/internal/codeblock"
	"github.com/riverfjs/markwidget-go/internal/mathext"
	"github.com/riverfjs/markwidget-go/internal/types"
)

// TreeBuilder 遍历 goldmark AST 并生成类型化的节点树
type TreeBuilder struct {
	source []byte
	root   *types.Node
	stack  []*types.Node
}

// NewTreeBuilder 创建新的 TreeBuilder
func NewTreeBuilder(source []byte) *TreeBuilder {
	root := &types.Node{Kind: types.KindDocument}
	return &TreeBuilder{
		source: source,
		root:   root,
		stack:  []*types.Node{root},
	}
}

// Walk 遍历 AST 节点
func (b *TreeBuilder) Walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := node.(type) {
	// --- Document ---
	case *ast.Document:
		// root is created up front

	// --- Inline elements ---
	case *ast.Text:
		if entering {
			b.onText(n)
		}

	case *ast.String:
		if entering {
			b.appendText(string(n.Value))
		}

	case *ast.CodeSpan:
		if entering {
			b.leaf(&types.Node{Kind: types.KindCodeSpan, Text: extractCodeSpanText(n, b.source)})
			return ast.WalkSkipChildren, nil
		}

	case *ast.Emphasis:
		kind := types.KindEmphasis
		if n.Level == 2 {
			kind = types.KindStrong
		}
		b.container(entering, &types.Node{Kind: kind})

	case *east.Strikethrough:
		b.container(entering, &types.Node{Kind: types.KindStrikethrough})

	case *mathext.Math:
		if entering {
			b.leaf(&types.Node{
				Kind:    types.KindInlineMath,
				Text:    mathext.Content(n, b.source),
				Display: n.Display,
			})
			return ast.WalkSkipChildren, nil
		}

	// --- Links & Images ---
	case *ast.Link:
		b.container(entering, &types.Node{
			Kind:  types.KindLink,
			URL:   string(n.Destination),
			Title: string(n.Title),
		})

	case *ast.Image:
		if entering {
			b.leaf(&types.Node{
				Kind:  types.KindImage,
				URL:   string(n.Destination),
				Title: string(n.Title),
				Text:  plainText(n, b.source),
			})
			return ast.WalkSkipChildren, nil
		}

	case *ast.AutoLink:
		if entering {
			link := &types.Node{Kind: types.KindLink, URL: string(n.URL(b.source))}
			link.Append(&types.Node{Kind: types.KindText, Text: string(n.Label(b.source))})
			b.leaf(link)
			return ast.WalkSkipChildren, nil
		}

	case *east.FootnoteLink:
		if entering {
			b.leaf(&types.Node{
				Kind:  types.KindFootnoteRef,
				Level: n.Index,
				Text:  strconv.Itoa(n.Index),
			})
		}

	case *east.FootnoteBacklink:
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML:
		if entering {
			b.leaf(&types.Node{Kind: types.KindHTML, Text: string(n.Segments.Value(b.source))})
			return ast.WalkSkipChildren, nil
		}

	// --- Block elements ---
	case *ast.Paragraph:
		b.container(entering, &types.Node{Kind: types.KindParagraph})

	case *ast.TextBlock:
		// tight list items hold their text directly

	case *ast.Heading:
		heading := &types.Node{Kind: types.KindHeading, Level: n.Level}
		if entering {
			if id, ok := n.AttributeString("id"); ok {
				if v, ok := id.([]byte); ok {
					heading.ID = string(v)
				}
			}
		}
		b.container(entering, heading)

	case *ast.Blockquote:
		b.container(entering, &types.Node{Kind: types.KindBlockquote})

	case *ast.List:
		list := &types.Node{Kind: types.KindList, Tight: n.IsTight}
		if n.IsOrdered() {
			list.Ordered = true
			list.Start = n.Start
		}
		b.container(entering, list)

	case *ast.ListItem:
		b.container(entering, &types.Node{Kind: types.KindListItem})

	case *east.TaskCheckBox:
		if entering {
			b.leaf(&types.Node{Kind: types.KindTaskCheckBox, Checked: n.IsChecked})
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			b.onCodeBlock(n)
			return ast.WalkSkipChildren, nil
		}

	case *mathext.MathBlock:
		if entering {
			b.leaf(&types.Node{Kind: types.KindMathBlock, Text: mathext.Content(n, b.source), Display: true})
			return ast.WalkSkipChildren, nil
		}

	case *ast.ThematicBreak:
		if entering {
			b.leaf(&types.Node{Kind: types.KindThematicBreak})
		}

	case *ast.HTMLBlock:
		if entering {
			b.leaf(&types.Node{Kind: types.KindHTML, Text: htmlBlockText(n, b.source)})
		}
		return ast.WalkSkipChildren, nil

	// --- Table ---
	case *east.Table:
		b.container(entering, &types.Node{Kind: types.KindTable})

	case *east.TableHeader:
		b.container(entering, &types.Node{Kind: types.KindTableRow, Header: true})

	case *east.TableRow:
		b.container(entering, &types.Node{Kind: types.KindTableRow})

	case *east.TableCell:
		b.container(entering, &types.Node{Kind: types.KindTableCell, Align: n.Alignment.String()})

	// --- Definition list ---
	case *east.DefinitionList:
		b.container(entering, &types.Node{Kind: types.KindDefinitionList})

	case *east.DefinitionTerm:
		b.container(entering, &types.Node{Kind: types.KindDefinitionTerm})

	case *east.DefinitionDescription:
		b.container(entering, &types.Node{Kind: types.KindDefinitionDescription})

	// --- Footnotes ---
	case *east.FootnoteList:
		b.container(entering, &types.Node{Kind: types.KindFootnoteList})

	case *east.Footnote:
		b.container(entering, &types.Node{Kind: types.KindFootnote, Level: n.Index})
	}

	return ast.WalkContinue, nil
}

// Result 返回构建好的文档根节点
func (b *TreeBuilder) Result() *types.Node {
	return b.root
}

func (b *TreeBuilder) top() *types.Node {
	return b.stack[len(b.stack)-1]
}

// container 进入时追加并入栈，退出时出栈
func (b *TreeBuilder) container(entering bool, n *types.Node) {
	if entering {
		b.top().Append(n)
		b.stack = append(b.stack, n)
		return
	}
	if len(b.stack) > 1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

func (b *TreeBuilder) leaf(n *types.Node) {
	b.top().Append(n)
}

// --- Text handling ---

func (b *TreeBuilder) onText(n *ast.Text) {
	value := n.Segment.Value(b.source)
	if !n.IsRaw() {
		value = util.UnescapePunctuations(value)
		value = util.ResolveNumericReferences(value)
		value = util.ResolveEntityNames(value)
	}
	b.appendText(string(value))

	if n.HardLineBreak() {
		b.leaf(&types.Node{Kind: types.KindLineBreak})
	} else if n.SoftLineBreak() {
		b.appendText(" ")
	}
}

// appendText 与相邻的文本节点合并，保证高亮词不会被切断
func (b *TreeBuilder) appendText(s string) {
	if s == "" {
		return
	}
	top := b.top()
	if last := top.LastChild(); last != nil && last.Kind == types.KindText {
		last.Text += s
		return
	}
	top.Append(&types.Node{Kind: types.KindText, Text: s})
}

// --- Code block ---

func (b *TreeBuilder) onCodeBlock(n ast.Node) {
	var lang string
	if fenced, ok := n.(*ast.FencedCodeBlock); ok {
		lang = string(fenced.Language(b.source))
	}
	lang = strings.TrimSpace(strings.Split(lang, ",")[0])

	var buf strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(b.source))
	}
	rawCode := strings.TrimSuffix(buf.String(), "\n")

	b.leaf(&types.Node{
		Kind:     types.KindCodeBlock,
		Text:     rawCode,
		Language: lang,
		Label:    codeblock.Label(rawCode, lang),
	})
}

// --- Utilities ---

func extractCodeSpanText(n *ast.CodeSpan, source []byte) string {
	var buf strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if textNode, ok := c.(*ast.Text); ok {
			_, _ = buf.Write(textNode.Segment.Value(source))
		}
	}
	return buf.String()
}

// plainText 拼接子节点中的纯文本（用于图片 alt）
func plainText(n ast.Node, source []byte) string {
	var buf strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(util.UnescapePunctuations(t.Segment.Value(source)))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func htmlBlockText(n *ast.HTMLBlock, source []byte) string {
	var buf strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	if n.HasClosure() {
		buf.Write(n.ClosureLine.Value(source))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
