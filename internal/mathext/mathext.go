// Package mathext is a goldmark extension that recognizes the canonical LaTeX
// delimiters \[...\] and \(...\) produced by the delimiter normalizer.
//
// 公式内容原样保留，不做任何 LaTeX 解析；渲染交给外部的数学渲染器。
package mathext

import (
	"bytes"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var (
	blockOpen   = []byte(`\[`)
	blockClose  = []byte(`\]`)
	inlineClose = []byte(`\)`)
)

// KindMathBlock is the NodeKind of MathBlock.
var KindMathBlock = ast.NewNodeKind("MathBlock")

// MathBlock is a display formula on its own lines.
type MathBlock struct {
	ast.BaseBlock
	closed bool
}

// Kind implements ast.Node.
func (n *MathBlock) Kind() ast.NodeKind {
	return KindMathBlock
}

// IsRaw implements ast.Node.
func (n *MathBlock) IsRaw() bool {
	return true
}

// Dump implements ast.Node.
func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// KindMath is the NodeKind of Math.
var KindMath = ast.NewNodeKind("Math")

// Math is a formula inside a paragraph. Display is set for \[...\].
type Math struct {
	ast.BaseInline
	Display bool
}

// Kind implements ast.Node.
func (n *Math) Kind() ast.NodeKind {
	return KindMath
}

// Dump implements ast.Node.
func (n *Math) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Display": strconv.FormatBool(n.Display),
	}, nil)
}

// Content returns the raw formula source of a Math or MathBlock node.
func Content(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	switch m := n.(type) {
	case *MathBlock:
		lines := m.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}
	case *Math:
		for c := m.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
	}
	return buf.String()
}

type blockParser struct{}

// NewBlockParser returns a parser for \[ ... \] blocks.
func NewBlockParser() parser.BlockParser {
	return &blockParser{}
}

func (p *blockParser) Trigger() []byte {
	return []byte{'\\'}
}

func (p *blockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pc.BlockIndent() > 3 || !bytes.HasPrefix(line[pos:], blockOpen) {
		return nil, parser.NoChildren
	}
	rest := line[pos+len(blockOpen):]
	start := segment.Start - segment.Padding + pos + len(blockOpen)
	node := &MathBlock{}

	if idx := bytes.Index(rest, blockClose); idx >= 0 {
		// 单行公式：结束符之后只能是空白，否则交给段落中的行内解析
		if !util.IsBlank(rest[idx+len(blockClose):]) {
			return nil, parser.NoChildren
		}
		node.Lines().Append(text.NewSegment(start, start+idx))
		node.closed = true
	} else if !util.IsBlank(rest) {
		node.Lines().Append(text.NewSegment(start, segment.Stop))
	}
	reader.Advance(toLineEnd(line, segment))
	return node, parser.NoChildren
}

func (p *blockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*MathBlock)
	if n.closed {
		return parser.Close
	}
	line, segment := reader.PeekLine()
	idx := bytes.Index(line, blockClose)
	if idx < 0 {
		n.Lines().Append(segment)
		reader.Advance(toLineEnd(line, segment))
		return parser.Continue | parser.NoChildren
	}

	if idx > 0 {
		n.Lines().Append(segment.WithStop(segment.Start + idx))
	}
	n.closed = true
	after := idx + len(blockClose)
	if util.IsBlank(line[after:]) {
		reader.Advance(toLineEnd(line, segment))
	} else {
		// 结束符后面的文字作为新段落继续解析
		reader.Advance(after)
	}
	return parser.Close
}

func (p *blockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *blockParser) CanInterruptParagraph() bool {
	return true
}

func (p *blockParser) CanAcceptIndentedLine() bool {
	return false
}

// toLineEnd 返回前进到行尾换行符之前所需的字节数
func toLineEnd(line []byte, segment text.Segment) int {
	newline := 0
	if len(line) > 0 && line[len(line)-1] == '\n' {
		newline = 1
	}
	return segment.Stop - segment.Start - newline + segment.Padding
}

type inlineParser struct{}

// NewInlineParser returns a parser for \(...\) and \[...\] inside paragraphs.
func NewInlineParser() parser.InlineParser {
	return &inlineParser{}
}

func (p *inlineParser) Trigger() []byte {
	return []byte{'\\'}
}

func (p *inlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 2 || line[0] != '\\' {
		return nil
	}
	var closer []byte
	switch line[1] {
	case '(':
		closer = inlineClose
	case '[':
		closer = blockClose
	default:
		return nil
	}

	savedLine, savedPosition := block.Position()
	node := &Math{Display: line[1] == '['}
	block.Advance(2)
	for first := true; ; first = false {
		line, segment := block.PeekLine()
		if line == nil {
			// 没有结束符：不是公式
			block.SetPosition(savedLine, savedPosition)
			return nil
		}
		idx := bytes.Index(line, closer)
		if idx >= 0 {
			segment = segment.WithStop(segment.Start + idx)
		}
		if !first {
			segment = withIndent(block.Source(), segment, parent)
		}
		if idx < 0 {
			node.AppendChild(node, ast.NewRawTextSegment(segment))
			block.AdvanceLine()
			continue
		}
		if segment.Len() > 0 {
			node.AppendChild(node, ast.NewRawTextSegment(segment))
		}
		block.Advance(idx + len(closer))
		return node
	}
}

// withIndent 恢复段落续行被去掉的行首空白
//
// 引用标记后的一个空格和列表项的内容缩进属于容器，不计入公式内容。
func withIndent(source []byte, seg text.Segment, parent ast.Node) text.Segment {
	start := seg.Start
	for start > 0 && (source[start-1] == ' ' || source[start-1] == '\t') {
		start--
	}
	if start > 0 && source[start-1] == '>' && start < seg.Start {
		start++
	}
	for n := parent; n != nil; n = n.Parent() {
		if item, ok := n.(*ast.ListItem); ok {
			start += item.Offset
		}
	}
	if start >= seg.Start {
		return seg
	}
	return seg.WithStart(start)
}

type htmlRenderer struct{}

// NewHTMLRenderer renders math nodes as delimited spans for client-side typesetting.
func NewHTMLRenderer() renderer.NodeRenderer {
	return &htmlRenderer{}
}

func (r *htmlRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMath, r.renderMath)
	reg.Register(KindMathBlock, r.renderMathBlock)
}

func (r *htmlRenderer) renderMath(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Math)
	class, opener, closer := "math inline", `\(`, `\)`
	if n.Display {
		class, opener, closer = "math display", `\[`, `\]`
	}
	_, _ = w.WriteString(`<span class="` + class + `">` + opener)
	_, _ = w.Write(util.EscapeHTML([]byte(Content(n, source))))
	_, _ = w.WriteString(closer + `</span>`)
	return ast.WalkSkipChildren, nil
}

func (r *htmlRenderer) renderMathBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<div class="math display">\[`)
	_, _ = w.Write(util.EscapeHTML([]byte(Content(node, source))))
	_, _ = w.WriteString("\\]</div>\n")
	return ast.WalkSkipChildren, nil
}

// Extension registers the math parsers and HTML renderer.
type Extension struct{}

// MathDelimiters is the ready-to-use extension value.
var MathDelimiters = &Extension{}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(NewBlockParser(), 701)),
		parser.WithInlineParsers(util.Prioritized(NewInlineParser(), 150)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewHTMLRenderer(), 500),
	))
}
