package markwidget

import (
	"sync"

	"github.com/riverfjs/markwidget-go/internal/types"
)

// 导出类型别名
type (
	Node           = types.Node
	NodeKind       = types.NodeKind
	Run            = types.Run
	RunKind        = types.RunKind
	HighlightQuery = types.HighlightQuery
	TextDirection  = types.TextDirection
	Hooks          = types.Hooks
	RenderConfig   = types.RenderConfig
)

const (
	RunPlain       = types.RunPlain
	RunHighlighted = types.RunHighlighted

	LeftToRight = types.LeftToRight
	RightToLeft = types.RightToLeft
)

// 节点类型
const (
	KindDocument              = types.KindDocument
	KindParagraph             = types.KindParagraph
	KindHeading               = types.KindHeading
	KindBlockquote            = types.KindBlockquote
	KindList                  = types.KindList
	KindListItem              = types.KindListItem
	KindTaskCheckBox          = types.KindTaskCheckBox
	KindCodeBlock             = types.KindCodeBlock
	KindMathBlock             = types.KindMathBlock
	KindThematicBreak         = types.KindThematicBreak
	KindTable                 = types.KindTable
	KindTableRow              = types.KindTableRow
	KindTableCell             = types.KindTableCell
	KindDefinitionList        = types.KindDefinitionList
	KindDefinitionTerm        = types.KindDefinitionTerm
	KindDefinitionDescription = types.KindDefinitionDescription
	KindFootnoteList          = types.KindFootnoteList
	KindFootnote              = types.KindFootnote
	KindFootnoteRef           = types.KindFootnoteRef
	KindText                  = types.KindText
	KindEmphasis              = types.KindEmphasis
	KindStrong                = types.KindStrong
	KindStrikethrough         = types.KindStrikethrough
	KindCodeSpan              = types.KindCodeSpan
	KindLink                  = types.KindLink
	KindImage                 = types.KindImage
	KindInlineMath            = types.KindInlineMath
	KindLineBreak             = types.KindLineBreak
	KindHTML                  = types.KindHTML
)

var (
	defaultConfig     *RenderConfig
	defaultConfigOnce sync.Once
)

// DefaultConfig returns the default render configuration (singleton).
func DefaultConfig() *RenderConfig {
	defaultConfigOnce.Do(func() {
		defaultConfig = types.DefaultRenderConfig()
	})
	return defaultConfig
}
