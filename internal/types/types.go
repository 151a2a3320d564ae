package types

// RunKind 标记一段文本是否被高亮
type RunKind int

const (
	// RunPlain is an unhighlighted run.
	RunPlain RunKind = iota
	// RunHighlighted is a run matching the highlight term.
	RunHighlighted
)

// String returns the string representation of RunKind.
func (k RunKind) String() string {
	switch k {
	case RunPlain:
		return "plain"
	case RunHighlighted:
		return "highlighted"
	default:
		return "unknown"
	}
}

// Run 是源文本中一段连续的子串
//
// 按顺序拼接所有 Run 的 Text 可以得到原文。
type Run struct {
	Kind RunKind `json:"kind"`
	Text string  `json:"text"`
}

// Highlighted reports whether the run matches the highlight term.
func (r Run) Highlighted() bool {
	return r.Kind == RunHighlighted
}

// HighlightQuery 高亮查询；Term 为空表示不高亮
type HighlightQuery struct {
	Term          string
	CaseSensitive bool
}

// Empty reports whether the query highlights nothing.
func (q HighlightQuery) Empty() bool {
	return q.Term == ""
}

// NodeKind identifies the type of a content node.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindParagraph
	KindHeading
	KindBlockquote
	KindList
	KindListItem
	KindTaskCheckBox
	KindCodeBlock
	KindMathBlock
	KindThematicBreak
	KindTable
	KindTableRow
	KindTableCell
	KindDefinitionList
	KindDefinitionTerm
	KindDefinitionDescription
	KindFootnoteList
	KindFootnote
	KindFootnoteRef
	KindText
	KindEmphasis
	KindStrong
	KindStrikethrough
	KindCodeSpan
	KindLink
	KindImage
	KindInlineMath
	KindLineBreak
	KindHTML
)

var nodeKindNames = map[NodeKind]string{
	KindDocument:              "document",
	KindParagraph:             "paragraph",
	KindHeading:               "heading",
	KindBlockquote:            "blockquote",
	KindList:                  "list",
	KindListItem:              "list_item",
	KindTaskCheckBox:          "task_checkbox",
	KindCodeBlock:             "code_block",
	KindMathBlock:             "math_block",
	KindThematicBreak:         "thematic_break",
	KindTable:                 "table",
	KindTableRow:              "table_row",
	KindTableCell:             "table_cell",
	KindDefinitionList:        "definition_list",
	KindDefinitionTerm:        "definition_term",
	KindDefinitionDescription: "definition_description",
	KindFootnoteList:          "footnote_list",
	KindFootnote:              "footnote",
	KindFootnoteRef:           "footnote_ref",
	KindText:                  "text",
	KindEmphasis:              "emphasis",
	KindStrong:                "strong",
	KindStrikethrough:         "strikethrough",
	KindCodeSpan:              "code_span",
	KindLink:                  "link",
	KindImage:                 "image",
	KindInlineMath:            "inline_math",
	KindLineBreak:             "line_break",
	KindHTML:                  "html",
}

// String returns the string representation of NodeKind.
func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Node 渲染树中的一个节点
//
// 容器节点使用 Children；叶子节点（文本、代码、公式）使用 Text。
// 只有被该 Kind 使用的字段才有意义。
type Node struct {
	Kind     NodeKind
	Children []*Node

	// Text 叶子节点的原始内容：文本、代码、公式源码、图片 alt、HTML
	Text string
	// Runs 是 Text 的高亮分段（仅 Text / CodeSpan / CodeBlock）
	Runs []Run

	Level    int    // heading level; footnote index
	ID       string // heading anchor
	Ordered  bool   // list
	Start    int    // ordered list start number
	Tight    bool   // list
	Checked  bool   // task checkbox
	Language string // code block
	Label    string // code block header label
	LiveURL  string // mermaid editor link
	URL      string // link / image destination
	Title    string // link / image title
	Align    string // table cell alignment: left, center, right, none
	Header   bool   // table header row
	Display  bool   // inline math written with \[...\]
}

// Append adds child to n and returns child.
func (n *Node) Append(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// LastChild returns the last child of n, or nil.
func (n *Node) LastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// IsLeaf reports whether the node carries its content in Text.
func (n *Node) IsLeaf() bool {
	switch n.Kind {
	case KindText, KindCodeSpan, KindCodeBlock, KindMathBlock, KindInlineMath,
		KindImage, KindHTML, KindFootnoteRef, KindTaskCheckBox, KindLineBreak,
		KindThematicBreak:
		return true
	}
	return false
}

// Walk 深度优先遍历；fn 返回 false 时跳过子节点
func Walk(n *Node, fn func(n *Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// TextDirection is the writing direction handed to the presentation layer.
type TextDirection int

const (
	LeftToRight TextDirection = iota
	RightToLeft
)

// String returns the string representation of TextDirection.
func (d TextDirection) String() string {
	if d == RightToLeft {
		return "rtl"
	}
	return "ltr"
}

// Hooks 由展示层提供的可选回调，每一个都可以为 nil
//
// 核心只在 Visit / TapLink 中调用它们，从不自己构建 UI。
type Hooks struct {
	Code      func(n *Node) error
	Math      func(n *Node) error
	Image     func(n *Node) error
	Link      func(n *Node) error
	Highlight func(n *Node, run Run) error
	OnTapLink func(text, href, title string)
}

// IsZero reports whether no hook is set.
func (h Hooks) IsZero() bool {
	return h.Code == nil && h.Math == nil && h.Image == nil && h.Link == nil &&
		h.Highlight == nil && h.OnTapLink == nil
}

// RenderConfig 渲染配置
type RenderConfig struct {
	Direction    TextDirection
	Highlight    HighlightQuery
	DiagramLinks bool
	Hooks        Hooks
}

// DefaultRenderConfig 返回默认渲染配置
func DefaultRenderConfig() *RenderConfig {
	return &RenderConfig{
		Direction:    LeftToRight,
		DiagramLinks: true,
	}
}
