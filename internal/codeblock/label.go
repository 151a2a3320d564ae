package codeblock

import (
	"path/filepath"
	"regexp"
	"strings"
)

var filenamePattern = regexp.MustCompile(`([a-zA-Z0-9_\-\.]+\.[a-zA-Z0-9]+)`)

// languageNames maps fence info strings to display names.
var languageNames = map[string]string{
	"py":         "python",
	"js":         "javascript",
	"ts":         "typescript",
	"sh":         "shell",
	"bash":       "shell",
	"zsh":        "shell",
	"c++":        "cpp",
	"cxx":        "cpp",
	"rb":         "ruby",
	"rs":         "rust",
	"kt":         "kotlin",
	"yml":        "yaml",
	"md":         "markdown",
	"tex":        "latex",
	"golang":     "go",
	"plaintext":  "text",
	"txt":        "text",
	"dockerfile": "dockerfile",
}

// knownExts lists the extensions accepted as filenames in a code block header.
var knownExts = map[string]bool{
	"py": true, "js": true, "ts": true, "java": true, "cpp": true, "c": true,
	"h": true, "html": true, "css": true, "sh": true, "php": true, "md": true,
	"env": true, "json": true, "yaml": true, "yml": true, "xml": true,
	"toml": true, "go": true, "mod": true, "rb": true, "rs": true, "pl": true,
	"swift": true, "kt": true, "sql": true, "jsx": true, "tsx": true,
	"graphql": true, "r": true, "dart": true, "scala": true, "groovy": true,
	"txt": true, "tex": true, "ini": true, "cfg": true, "conf": true,
}

// ExtractValidFilename extracts a filename with a known extension from a line of text.
func ExtractValidFilename(line string) string {
	matches := filenamePattern.FindAllString(line, -1)
	for _, match := range matches {
		ext := strings.TrimPrefix(filepath.Ext(match), ".")
		if knownExts[strings.ToLower(ext)] && !strings.HasPrefix(match, ".") {
			return match
		}
	}
	return ""
}

// LanguageName normalizes a fence info string to a display name.
func LanguageName(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if i := strings.IndexAny(lang, " ,{"); i >= 0 {
		lang = lang[:i]
	}
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return lang
}

// Label 生成代码块标题
//
// 优先从前两行中提取文件名（如 "// main.go"），其次使用语言名，
// 都没有时返回 "code"。
func Label(code, language string) string {
	lines := strings.SplitN(strings.TrimSpace(code), "\n", 3)
	sample := ""
	if len(lines) > 0 {
		sample = lines[0]
		if len(lines) > 1 {
			sample += " " + lines[1]
		}
	}
	sample = strings.ReplaceAll(sample, "\\", "")

	if name := ExtractValidFilename(sample); name != "" && len(name) <= 32 {
		return name
	}
	if lang := LanguageName(language); lang != "" {
		return lang
	}
	return "code"
}
