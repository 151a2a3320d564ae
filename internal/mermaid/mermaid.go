package mermaid

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/riverfjs/markwidget-go/internal/types"
)

// LiveEditorBase Mermaid Live 编辑器地址
const LiveEditorBase = "https://mermaid.live/edit/#"

// Config Mermaid 配置
type Config struct {
	Theme string `json:"theme"`
}

// DefaultConfig 返回默认 Mermaid 配置
func DefaultConfig() *Config {
	return &Config{Theme: "default"}
}

// state 与 mermaid.live 的序列化格式保持一致
type state struct {
	Code    string  `json:"code"`
	Mermaid *Config `json:"mermaid"`
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Pako 生成图表的 pako 编码
func Pako(diagram string, config *Config) (string, error) {
	if config == nil {
		config = DefaultConfig()
	}

	payload, err := json.Marshal(state{Code: diagram, Mermaid: config})
	if err != nil {
		return "", fmt.Errorf("encode mermaid state: %w", err)
	}

	compressed, err := deflate(payload)
	if err != nil {
		return "", fmt.Errorf("compress mermaid state: %w", err)
	}

	return "pako:" + base64.URLEncoding.EncodeToString(compressed), nil
}

// LiveURL 获取 Mermaid Live 编辑器 URL
func LiveURL(diagram string) (string, error) {
	pako, err := Pako(diagram, nil)
	if err != nil {
		return "", err
	}
	return LiveEditorBase + pako, nil
}

// IsDiagram reports whether a code block language names a mermaid diagram.
func IsDiagram(language string) bool {
	return strings.EqualFold(strings.TrimSpace(language), "mermaid")
}

// Annotate 为树中的 mermaid 代码块填充 LiveURL
//
// 返回第一个编码错误；出错的代码块保持 LiveURL 为空，其余照常处理。
func Annotate(root *types.Node) error {
	var firstErr error
	types.Walk(root, func(n *types.Node) bool {
		if n.Kind != types.KindCodeBlock || !IsDiagram(n.Language) {
			return true
		}
		url, err := LiveURL(n.Text)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return false
		}
		n.LiveURL = url
		return false
	})
	return firstErr
}
