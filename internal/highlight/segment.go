// Package highlight splits a text body into plain and highlighted runs.
package highlight

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/riverfjs/markwidget-go/internal/types"
)

// Segment 将 body 按高亮词切分为有序的 Run 序列
//
// 拼接所有 Run 的文本即为 body；高亮 Run 的长度等于原始 term 的字节长度。
// 返回值至少包含一个 Run（body 为空时是一个空的 plain Run）。
func Segment(body string, q types.HighlightQuery) []types.Run {
	if q.Empty() {
		return plain(body)
	}

	needle, haystack := q.Term, body
	if !q.CaseSensitive {
		needle, haystack = Fold(q.Term), Fold(body)
	}
	if !strings.Contains(haystack, needle) {
		return plain(body)
	}

	termLen := len(q.Term)
	runs := make([]types.Run, 0, 4)
	cursor := 0
	for cursor < len(haystack) {
		idx := strings.Index(haystack[cursor:], needle)
		if idx < 0 {
			break
		}
		idx += cursor
		if idx > cursor {
			runs = append(runs, types.Run{Kind: types.RunPlain, Text: body[cursor:idx]})
		}
		runs = append(runs, types.Run{Kind: types.RunHighlighted, Text: body[idx : idx+termLen]})
		cursor = idx + termLen
	}
	if cursor < len(body) {
		runs = append(runs, types.Run{Kind: types.RunPlain, Text: body[cursor:]})
	}
	return runs
}

func plain(body string) []types.Run {
	return []types.Run{{Kind: types.RunPlain, Text: body}}
}

// Fold 返回 s 的小写形式，且保证字节长度不变
//
// 小写后 UTF-8 编码长度会改变的字符（例如 'İ'、开尔文符号 'K'）保持原样，
// 这样 haystack 中的偏移可以直接用于切分原文。无效的 UTF-8 字节原样保留。
func Fold(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return foldASCII(s)
	}

	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b = append(b, s[i])
			i++
			continue
		}
		lower := unicode.ToLower(r)
		if utf8.RuneLen(lower) != size {
			lower = r
		}
		b = utf8.AppendRune(b, lower)
		i += size
	}
	return string(b)
}

func foldASCII(s string) string {
	b := []byte(s)
	for i, ch := range b {
		if ch >= 'A' && ch <= 'Z' {
			b[i] = ch + 'a' - 'A'
		}
	}
	return string(b)
}
