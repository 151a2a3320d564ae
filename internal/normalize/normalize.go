// Package normalize rewrites the dollar-sign LaTeX shorthands into the
// canonical bracket delimiters understood by the markdown tree builder.
//
// 所有步骤都是显式的前向扫描，不使用正则：Go 的 regexp 不支持后行断言，
// 而“跳过已在规范括号内的内容”需要作为可审查的不变量存在。
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	blockOpen   = `\[`
	blockClose  = `\]`
	inlineOpen  = `\(`
	inlineClose = `\)`
)

// Normalize 规范化数学分隔符
//
// 步骤：
// 1. $$...$$ → \[...\]
// 2. $...$ → \(...\)（仅当文本中不存在 \( 时）
// 3. 规范区间之外的 \$ → $
// 4. \[...\] 内部连续空行折叠为一个换行
//
// 对任意输入都有定义，不会失败；未配对的分隔符原样保留。
func Normalize(input string) string {
	if input == "" {
		return input
	}
	text := rewriteBlockDollars(input)
	if !strings.Contains(text, inlineOpen) {
		text = rewriteInlineDollars(text)
	}
	text = unescapeDollars(text)
	return collapseBlockBlankLines(text)
}

// rewriteBlockDollars 将 $$BODY$$ 替换为 \[BODY\]，BODY 非贪婪且可跨行
func rewriteBlockDollars(s string) string {
	if !strings.Contains(s, "$$") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	i := 0
	for i < len(s) {
		open := strings.Index(s[i:], "$$")
		if open < 0 {
			break
		}
		open += i
		close := strings.Index(s[open+2:], "$$")
		if close < 0 {
			break
		}
		close += open + 2
		b.WriteString(s[i:open])
		b.WriteString(blockOpen)
		b.WriteString(s[open+2 : close])
		b.WriteString(blockClose)
		i = close + 2
	}
	b.WriteString(s[i:])
	return b.String()
}

// rewriteInlineDollars 将 $BODY$ 替换为 \(BODY\)
//
// 开头和结尾的 $ 都不能紧跟在反斜杠之后；BODY 不能包含未转义的 $，
// 可以为空。
func rewriteInlineDollars(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	last := 0
	i := 0
	for i < len(s) {
		if s[i] != '$' || escapedAt(s, i) {
			i++
			continue
		}
		close := nextUnescapedDollar(s, i+1)
		if close < 0 {
			break
		}
		b.WriteString(s[last:i])
		b.WriteString(inlineOpen)
		b.WriteString(s[i+1 : close])
		b.WriteString(inlineClose)
		i = close + 1
		last = i
	}
	b.WriteString(s[last:])
	return b.String()
}

func escapedAt(s string, i int) bool {
	return i > 0 && s[i-1] == '\\'
}

func nextUnescapedDollar(s string, from int) int {
	for j := from; j < len(s); j++ {
		if s[j] == '$' && !escapedAt(s, j) {
			return j
		}
	}
	return -1
}

// span 是一个规范数学区间 [start, end)，包含两端的括号
type span struct {
	start, end int
	block      bool
}

// canonicalSpans 从左到右非贪婪地查找 \[...\] 与 \(...\) 区间
//
// 没有闭合符的开括号不构成区间，扫描从下一个字节继续。
func canonicalSpans(s string) []span {
	var spans []span
	i := 0
	for i+1 < len(s) {
		if s[i] != '\\' {
			i++
			continue
		}
		var closer string
		switch s[i+1] {
		case '[':
			closer = blockClose
		case '(':
			closer = inlineClose
		default:
			i++
			continue
		}
		end := strings.Index(s[i+2:], closer)
		if end < 0 {
			i++
			continue
		}
		end += i + 2 + len(closer)
		spans = append(spans, span{start: i, end: end, block: closer == blockClose})
		i = end
	}
	return spans
}

// unescapeDollars 在规范区间之外把 \$ 替换为 $
func unescapeDollars(s string) string {
	if !strings.Contains(s, `\$`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	cursor := 0
	for _, sp := range canonicalSpans(s) {
		b.WriteString(strings.ReplaceAll(s[cursor:sp.start], `\$`, "$"))
		b.WriteString(s[sp.start:sp.end])
		cursor = sp.end
	}
	b.WriteString(strings.ReplaceAll(s[cursor:], `\$`, "$"))
	return b.String()
}

// collapseBlockBlankLines 折叠 \[...\] 内部的空行
func collapseBlockBlankLines(s string) string {
	if !strings.Contains(s, blockOpen) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	cursor := 0
	i := 0
	for {
		open := strings.Index(s[i:], blockOpen)
		if open < 0 {
			break
		}
		open += i
		close := strings.Index(s[open+2:], blockClose)
		if close < 0 {
			break
		}
		close += open + 2
		b.WriteString(s[cursor : open+2])
		b.WriteString(collapseBlankLines(s[open+2 : close]))
		cursor = close
		i = close + 2
	}
	b.WriteString(s[cursor:])
	return b.String()
}

// collapseBlankLines 将每个 "\n 空白* \n" 替换为单个 "\n"
//
// 空白可以包含更多换行，所以连续多个空行只留下一个换行；
// 下一行的缩进保留。
func collapseBlankLines(body string) string {
	if strings.Count(body, "\n") < 2 {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	i := 0
	for i < len(body) {
		if body[i] != '\n' {
			b.WriteByte(body[i])
			i++
			continue
		}
		lastNewline := -1
		j := i + 1
		for j < len(body) {
			r, size := utf8.DecodeRuneInString(body[j:])
			if !unicode.IsSpace(r) {
				break
			}
			if r == '\n' {
				lastNewline = j
			}
			j += size
		}
		b.WriteByte('\n')
		if lastNewline < 0 {
			i++
			continue
		}
		i = lastNewline + 1
	}
	return b.String()
}
