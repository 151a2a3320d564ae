package markwidget

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riverfjs/markwidget-go/internal/codeblock"
)

// findNode 查找指定类型的第一个节点
func findNode(root *Node, kind NodeKind) *Node {
	if root.Kind == kind {
		return root
	}
	for _, c := range root.Children {
		if n := findNode(c, kind); n != nil {
			return n
		}
	}
	return nil
}

// manualScheduler 记录定时任务，由测试手动触发
type manualScheduler struct {
	fns []func()
}

type manualHandle struct{}

func (manualHandle) Stop() bool { return true }

func (s *manualScheduler) Schedule(_ time.Duration, fn func()) codeblock.Handle {
	s.fns = append(s.fns, fn)
	return manualHandle{}
}

func (s *manualScheduler) fireLast() {
	s.fns[len(s.fns)-1]()
}

// TestNormalize 测试导出的规范化函数
func TestNormalize(t *testing.T) {
	if got := Normalize("$$x$$ and $y$"); got != `\[x\] and \(y\)` {
		t.Errorf("Normalize() = %q", got)
	}
}

// TestSegment 测试导出的分段函数
func TestSegment(t *testing.T) {
	runs := Segment("abcabc", HighlightQuery{Term: "b", CaseSensitive: true})
	var parts []string
	for _, r := range runs {
		parts = append(parts, r.Text)
	}
	if strings.Join(parts, "|") != "a|b|ca|b|c" {
		t.Errorf("Segment() = %v", parts)
	}
	if !runs[1].Highlighted() || runs[0].Highlighted() {
		t.Errorf("kinds = %v %v", runs[0].Kind, runs[1].Kind)
	}
}

// TestRender_Normalize 测试渲染前规范化分隔符
func TestRender_Normalize(t *testing.T) {
	doc := Render("Price $x$ here\n")
	if !strings.Contains(doc.Source, `\(x\)`) {
		t.Errorf("Source = %q", doc.Source)
	}
	m := findNode(doc.Root, KindInlineMath)
	if m == nil || m.Text != "x" {
		t.Errorf("inline math = %+v", m)
	}
}

// TestRender_WithoutNormalize 测试关闭规范化
func TestRender_WithoutNormalize(t *testing.T) {
	doc := Render("Price $x$ here\n", WithNormalize(false))
	if findNode(doc.Root, KindInlineMath) != nil {
		t.Error("dollar math must stay text without normalization")
	}
	if doc.PlainText() != "Price $x$ here" {
		t.Errorf("PlainText() = %q", doc.PlainText())
	}
}

// TestRender_Highlight 测试渲染时高亮
func TestRender_Highlight(t *testing.T) {
	doc := Render("Go is fun. go!\n", WithHighlight(HighlightQuery{Term: "go"}))
	text := findNode(doc.Root, KindText)
	if text == nil {
		t.Fatal("missing text")
	}
	if len(text.Runs) != 4 {
		t.Fatalf("want 4 runs, got %+v", text.Runs)
	}
	if text.Runs[0].Text != "Go" || !text.Runs[0].Highlighted() {
		t.Errorf("first run = %+v", text.Runs[0])
	}
	if text.Runs[2].Text != "go" || !text.Runs[2].Highlighted() {
		t.Errorf("third run = %+v", text.Runs[2])
	}
	if doc.Query().Term != "go" {
		t.Errorf("Query() = %+v", doc.Query())
	}
}

// TestDocument_Highlight 测试不重新解析的重新高亮
func TestDocument_Highlight(t *testing.T) {
	doc := Render("Go is fun\n")
	text := findNode(doc.Root, KindText)
	if len(text.Runs) != 1 || text.Runs[0].Highlighted() {
		t.Fatalf("default runs = %+v", text.Runs)
	}

	doc.Highlight(HighlightQuery{Term: "fun", CaseSensitive: true})
	if len(text.Runs) != 2 || text.Runs[1].Text != "fun" || !text.Runs[1].Highlighted() {
		t.Errorf("runs = %+v", text.Runs)
	}
}

// TestRender_TextDirection 测试书写方向
func TestRender_TextDirection(t *testing.T) {
	if d := Render("a").Direction; d != LeftToRight {
		t.Errorf("default direction = %v", d)
	}
	if d := Render("a", WithTextDirection(RightToLeft)).Direction; d != RightToLeft {
		t.Errorf("direction = %v", d)
	}
}

// TestRender_DiagramLinks 测试 Mermaid 代码块的编辑链接
func TestRender_DiagramLinks(t *testing.T) {
	src := "```mermaid\ngraph LR\n A-->B\n```\n"

	cb := findNode(Render(src).Root, KindCodeBlock)
	if cb == nil || !strings.HasPrefix(cb.LiveURL, "https://mermaid.live/edit/#pako:") {
		t.Errorf("code block = %+v", cb)
	}

	cfg := &RenderConfig{DiagramLinks: false}
	cb = findNode(Render(src, WithConfig(cfg)).Root, KindCodeBlock)
	if cb == nil || cb.LiveURL != "" {
		t.Errorf("links disabled, got %+v", cb)
	}
}

// TestDocument_Visit 测试 hook 分发
func TestDocument_Visit(t *testing.T) {
	src := "[link](https://a.b) ![img](x.png) \\(m\\)\n\n```go\ncode\n```\n"
	doc := Render(src, WithHighlight(HighlightQuery{Term: "code"}))

	counts := map[string]int{}
	var highlighted []string
	err := doc.Visit(Hooks{
		Code:  func(n *Node) error { counts["code"]++; return nil },
		Math:  func(n *Node) error { counts["math"]++; return nil },
		Image: func(n *Node) error { counts["image"]++; return nil },
		Link:  func(n *Node) error { counts["link"]++; return nil },
		Highlight: func(n *Node, run Run) error {
			highlighted = append(highlighted, n.Kind.String()+":"+run.Text)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Visit() error = %v", err)
	}
	for _, name := range []string{"code", "math", "image", "link"} {
		if counts[name] != 1 {
			t.Errorf("%s hook called %d times, want 1", name, counts[name])
		}
	}
	if len(highlighted) != 1 || highlighted[0] != "code_block:code" {
		t.Errorf("highlighted = %v", highlighted)
	}
}

// TestDocument_Visit_NilHooks 测试空 hook
func TestDocument_Visit_NilHooks(t *testing.T) {
	doc := Render("```go\nx\n```\n")
	if err := doc.Visit(Hooks{}); err != nil {
		t.Errorf("Visit() error = %v", err)
	}
}

// TestDocument_Visit_ConfigHooks 测试空参数时使用配置中的 hook
func TestDocument_Visit_ConfigHooks(t *testing.T) {
	var code, math int
	cfg := &RenderConfig{
		DiagramLinks: true,
		Hooks: Hooks{
			Code: func(n *Node) error { code++; return nil },
			Math: func(n *Node) error { math++; return nil },
		},
	}
	doc := Render("```go\nx\n```\n\n$y$\n", WithConfig(cfg))

	if err := doc.Visit(Hooks{}); err != nil {
		t.Fatalf("Visit() error = %v", err)
	}
	if code != 1 || math != 1 {
		t.Errorf("config hooks called code=%d math=%d, want 1 and 1", code, math)
	}

	// 显式传入的 hook 优先于配置
	var explicit int
	if err := doc.Visit(Hooks{Code: func(n *Node) error { explicit++; return nil }}); err != nil {
		t.Fatalf("Visit() error = %v", err)
	}
	if explicit != 1 || code != 1 || math != 1 {
		t.Errorf("explicit=%d code=%d math=%d", explicit, code, math)
	}
}

// TestDocument_Visit_Error 测试 hook 错误中止遍历
func TestDocument_Visit_Error(t *testing.T) {
	boom := errors.New("boom")
	doc := Render("```go\na\n```\n\n```go\nb\n```\n")

	calls := 0
	err := doc.Visit(Hooks{Code: func(n *Node) error {
		calls++
		return boom
	}})
	if !errors.Is(err, boom) {
		t.Errorf("Visit() error = %v, want boom", err)
	}
	if calls != 1 {
		t.Errorf("hook called %d times, want 1", calls)
	}
}

// TestDocument_TapLink 测试链接点击
func TestDocument_TapLink(t *testing.T) {
	var gotText, gotHref, gotTitle string
	cfg := &RenderConfig{
		DiagramLinks: true,
		Hooks: Hooks{OnTapLink: func(text, href, title string) {
			gotText, gotHref, gotTitle = text, href, title
		}},
	}
	doc := Render("see [the **docs**](https://go.dev \"Go\")\n", WithConfig(cfg))

	link := findNode(doc.Root, KindLink)
	if !doc.TapLink(link) {
		t.Fatal("TapLink() = false, want true")
	}
	if gotText != "the docs" || gotHref != "https://go.dev" || gotTitle != "Go" {
		t.Errorf("OnTapLink(%q, %q, %q)", gotText, gotHref, gotTitle)
	}

	if doc.TapLink(findNode(doc.Root, KindParagraph)) {
		t.Error("TapLink() on a paragraph should be false")
	}
	if doc.TapLink(nil) {
		t.Error("TapLink(nil) should be false")
	}
}

// TestDocument_TapLink_NoHook 测试未设置回调
func TestDocument_TapLink_NoHook(t *testing.T) {
	doc := Render("[a](b)\n")
	if doc.TapLink(findNode(doc.Root, KindLink)) {
		t.Error("TapLink() without OnTapLink should be false")
	}
}

// TestDocument_PlainText 测试纯文本提取
func TestDocument_PlainText(t *testing.T) {
	doc := Render("# Title\n\nHello **world**\n\n- a\n- b\n\n```\ncode\n```\n")
	want := "Title\nHello world\na\nb\ncode"
	if got := doc.PlainText(); got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}
}

// TestDocument_CodeBlocks 测试代码块收集
func TestDocument_CodeBlocks(t *testing.T) {
	doc := Render("```go\na\n```\n\n> ```sh\n> b\n> ```\n")
	blocks := doc.CodeBlocks()
	if len(blocks) != 2 {
		t.Fatalf("want 2 code blocks, got %d", len(blocks))
	}
	if blocks[0].Text != "a" || blocks[1].Text != "b" {
		t.Errorf("blocks = %q %q", blocks[0].Text, blocks[1].Text)
	}
	if blocks[1].Label != "shell" {
		t.Errorf("label = %q, want shell", blocks[1].Label)
	}
}

// TestNewCodeBlock 测试代码块展示组件
func TestNewCodeBlock(t *testing.T) {
	doc := Render("```go\nfmt.Println(1)\n```\n")
	n := doc.CodeBlocks()[0]

	var copied []string
	sched := &manualScheduler{}
	cb := NewCodeBlock(n,
		WithClipboard(ClipboardFunc(func(text string) error {
			copied = append(copied, text)
			return nil
		})),
		WithScheduler(sched),
	)
	if cb.Label() != "go" {
		t.Errorf("Label() = %q", cb.Label())
	}
	if err := cb.Copy(); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if !cb.Copied() || len(copied) != 1 || copied[0] != "fmt.Println(1)" {
		t.Errorf("copied = %v flag %v", copied, cb.Copied())
	}
	sched.fireLast()
	if cb.Copied() {
		t.Error("flag should reset after the timer fires")
	}
}

// TestNewCodeBlock_NotCodeBlock 测试非代码块节点
func TestNewCodeBlock_NotCodeBlock(t *testing.T) {
	if NewCodeBlock(nil) != nil {
		t.Error("NewCodeBlock(nil) should be nil")
	}
	doc := Render("text\n")
	if NewCodeBlock(findNode(doc.Root, KindParagraph)) != nil {
		t.Error("NewCodeBlock(paragraph) should be nil")
	}
}

// TestNewCodeBlock_ClipboardError 测试复制失败
func TestNewCodeBlock_ClipboardError(t *testing.T) {
	doc := Render("```\nx\n```\n")
	cb := NewCodeBlock(doc.CodeBlocks()[0],
		WithClipboard(ClipboardFunc(func(string) error { return ErrClipboardUnsupported })),
		WithScheduler(&manualScheduler{}),
	)
	if err := cb.Copy(); !errors.Is(err, ErrClipboardUnsupported) {
		t.Errorf("Copy() error = %v", err)
	}
	if cb.Copied() {
		t.Error("flag must stay false after a failed copy")
	}
}
