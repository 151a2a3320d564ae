// Package codeblock implements the code block presenter contract: highlight-aware
// rendering of the code body and a copy action whose "copied" flag resets itself.
package codeblock

import (
	"fmt"
	"sync"
	"time"

	"github.com/riverfjs/markwidget-go/internal/highlight"
	"github.com/riverfjs/markwidget-go/internal/types"
)

// ResetDelay is how long the copied flag stays set after a successful copy.
const ResetDelay = 2 * time.Second

// Option configures a Presenter.
type Option func(*Presenter)

// WithClipboard sets the clipboard collaborator.
func WithClipboard(c Clipboard) Option {
	return func(p *Presenter) {
		p.clipboard = c
	}
}

// WithScheduler sets the scheduler that owns the reset timer.
func WithScheduler(s Scheduler) Option {
	return func(p *Presenter) {
		p.scheduler = s
	}
}

// WithOnChange registers a callback invoked whenever the copied flag changes.
func WithOnChange(fn func(copied bool)) Option {
	return func(p *Presenter) {
		p.onChange = fn
	}
}

// WithLogf sets the function used to report copy failures.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(p *Presenter) {
		p.logf = logf
	}
}

// Presenter 代码块展示组件的核心状态
//
// copied 标志在复制成功后置为 true，ResetDelay 后自动恢复为 false。
// 后一次复制会取消前一次的定时器（以最后一次为准），generation
// 计数保证已经触发的旧定时器不会把标志提前清掉。
type Presenter struct {
	label string
	code  string

	clipboard Clipboard
	scheduler Scheduler
	onChange  func(bool)
	logf      func(string, ...any)

	mu         sync.Mutex
	copied     bool
	generation uint64
	pending    Handle
}

// New creates a presenter for code. An empty label is derived from the code.
func New(label, code, language string, opts ...Option) *Presenter {
	if label == "" {
		label = Label(code, language)
	}
	p := &Presenter{
		label:     label,
		code:      code,
		clipboard: SystemClipboard{},
		scheduler: TimerScheduler{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Label returns the header label.
func (p *Presenter) Label() string {
	return p.label
}

// Code returns the code body.
func (p *Presenter) Code() string {
	return p.code
}

// Render segments the code body for the given highlight query.
func (p *Presenter) Render(q types.HighlightQuery) []types.Run {
	return highlight.Segment(p.code, q)
}

// Copied reports the current copied flag.
func (p *Presenter) Copied() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copied
}

// Copy 将代码写入剪贴板
//
// 空代码同样写入剪贴板。写入失败时状态不变并返回错误。
func (p *Presenter) Copy() error {
	if err := p.clipboard.WriteAll(p.code); err != nil {
		if p.logf != nil {
			p.logf("copy %q failed: %v", p.label, err)
		}
		return fmt.Errorf("copy code block: %w", err)
	}

	p.mu.Lock()
	if p.pending != nil {
		p.pending.Stop()
	}
	p.generation++
	gen := p.generation
	changed := !p.copied
	p.copied = true
	p.pending = p.scheduler.Schedule(ResetDelay, func() {
		p.reset(gen)
	})
	p.mu.Unlock()

	if changed {
		p.notify(true)
	}
	return nil
}

// reset 仅当 gen 仍是最新一次复制时清除标志
func (p *Presenter) reset(gen uint64) {
	p.mu.Lock()
	if gen != p.generation || !p.copied {
		p.mu.Unlock()
		return
	}
	p.copied = false
	p.pending = nil
	p.mu.Unlock()
	p.notify(false)
}

// Close cancels a pending reset and clears the flag.
func (p *Presenter) Close() {
	p.mu.Lock()
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	p.generation++
	changed := p.copied
	p.copied = false
	p.mu.Unlock()
	if changed {
		p.notify(false)
	}
}

func (p *Presenter) notify(copied bool) {
	if p.onChange != nil {
		p.onChange(copied)
	}
}
