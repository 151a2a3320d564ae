package codeblock

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverfjs/markwidget-go/internal/types"
)

// fakeScheduler 手动推进的时钟
type fakeScheduler struct {
	now   time.Duration
	tasks []*fakeTask
}

type fakeTask struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTask) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) Handle {
	task := &fakeTask{at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.now += d
	due := make([]*fakeTask, 0)
	for _, task := range s.tasks {
		if !task.fired && !task.stopped && task.at <= s.now {
			due = append(due, task)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, task := range due {
		task.fired = true
		task.fn()
	}
}

func (s *fakeScheduler) active() int {
	n := 0
	for _, task := range s.tasks {
		if !task.fired && !task.stopped {
			n++
		}
	}
	return n
}

type recordingClipboard struct {
	mu     sync.Mutex
	writes []string
	err    error
}

func (c *recordingClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.writes = append(c.writes, text)
	return nil
}

func newTestPresenter(code string, cb Clipboard, sched Scheduler, opts ...Option) *Presenter {
	opts = append([]Option{WithClipboard(cb), WithScheduler(sched)}, opts...)
	return New("", code, "go", opts...)
}

func TestPresenter_CopySetsAndResets(t *testing.T) {
	sched := &fakeScheduler{}
	cb := &recordingClipboard{}
	p := newTestPresenter("fmt.Println(1)", cb, sched)

	require.NoError(t, p.Copy())
	assert.True(t, p.Copied())
	assert.Equal(t, []string{"fmt.Println(1)"}, cb.writes)

	sched.Advance(ResetDelay - time.Millisecond)
	assert.True(t, p.Copied())

	sched.Advance(time.Millisecond)
	assert.False(t, p.Copied())
}

func TestPresenter_LatestCopyWins(t *testing.T) {
	sched := &fakeScheduler{}
	p := newTestPresenter("x := 1", &recordingClipboard{}, sched)

	require.NoError(t, p.Copy())
	sched.Advance(500 * time.Millisecond)
	require.NoError(t, p.Copy())
	assert.Equal(t, 1, sched.active())

	// 2000ms after the first copy
	sched.Advance(1500 * time.Millisecond)
	assert.True(t, p.Copied())

	// 1999ms after the second copy
	sched.Advance(499 * time.Millisecond)
	assert.True(t, p.Copied())

	sched.Advance(time.Millisecond)
	assert.False(t, p.Copied())
}

func TestPresenter_StaleTimerIgnored(t *testing.T) {
	// a handle whose Stop always fails, as if the timer had already fired
	var fns []func()
	sched := schedulerFunc(func(d time.Duration, fn func()) Handle {
		fns = append(fns, fn)
		return stopFailed{}
	})
	p := newTestPresenter("x", &recordingClipboard{}, sched)

	require.NoError(t, p.Copy())
	require.NoError(t, p.Copy())
	require.Len(t, fns, 2)

	fns[0]()
	assert.True(t, p.Copied(), "stale reset must not clear the flag")
	fns[1]()
	assert.False(t, p.Copied())
}

func TestPresenter_ClipboardFailure(t *testing.T) {
	sched := &fakeScheduler{}
	cb := &recordingClipboard{err: errors.New("no display")}
	var logged []string
	p := newTestPresenter("x", cb, sched, WithLogf(func(format string, args ...any) {
		logged = append(logged, format)
	}))

	err := p.Copy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
	assert.False(t, p.Copied())
	assert.Equal(t, 0, sched.active())
	assert.Len(t, logged, 1)
}

func TestPresenter_FailureAfterSuccessKeepsState(t *testing.T) {
	sched := &fakeScheduler{}
	cb := &recordingClipboard{}
	p := newTestPresenter("x", cb, sched)

	require.NoError(t, p.Copy())
	cb.err = errors.New("busy")
	require.Error(t, p.Copy())
	assert.True(t, p.Copied())

	sched.Advance(ResetDelay)
	assert.False(t, p.Copied())
}

func TestPresenter_EmptyCode(t *testing.T) {
	sched := &fakeScheduler{}
	cb := &recordingClipboard{}
	p := newTestPresenter("", cb, sched)

	require.NoError(t, p.Copy())
	assert.True(t, p.Copied())
	assert.Equal(t, []string{""}, cb.writes)

	sched.Advance(ResetDelay)
	assert.False(t, p.Copied())
}

func TestPresenter_OnChange(t *testing.T) {
	sched := &fakeScheduler{}
	var changes []bool
	p := newTestPresenter("x", &recordingClipboard{}, sched, WithOnChange(func(copied bool) {
		changes = append(changes, copied)
	}))

	require.NoError(t, p.Copy())
	require.NoError(t, p.Copy())
	sched.Advance(ResetDelay)
	assert.Equal(t, []bool{true, false}, changes)
}

func TestPresenter_Close(t *testing.T) {
	sched := &fakeScheduler{}
	p := newTestPresenter("x", &recordingClipboard{}, sched)

	require.NoError(t, p.Copy())
	p.Close()
	assert.False(t, p.Copied())
	assert.Equal(t, 0, sched.active())
}

func TestPresenter_Render(t *testing.T) {
	p := New("main.go", "foo := foo()", "go")
	runs := p.Render(types.HighlightQuery{Term: "foo", CaseSensitive: true})
	assert.Equal(t, []types.Run{
		{Kind: types.RunHighlighted, Text: "foo"},
		{Kind: types.RunPlain, Text: " := "},
		{Kind: types.RunHighlighted, Text: "foo"},
		{Kind: types.RunPlain, Text: "()"},
	}, runs)
	assert.Equal(t, "main.go", p.Label())
}

func TestPresenter_RealTimer(t *testing.T) {
	done := make(chan bool, 2)
	p := New("", "x", "", WithClipboard(ClipboardFunc(func(string) error { return nil })),
		WithScheduler(shortScheduler{}), WithOnChange(func(copied bool) { done <- copied }))

	require.NoError(t, p.Copy())
	assert.True(t, <-done)
	select {
	case copied := <-done:
		assert.False(t, copied)
	case <-time.After(time.Second):
		t.Fatal("reset did not fire")
	}
	assert.False(t, p.Copied())
}

type schedulerFunc func(d time.Duration, fn func()) Handle

func (f schedulerFunc) Schedule(d time.Duration, fn func()) Handle { return f(d, fn) }

type stopFailed struct{}

func (stopFailed) Stop() bool { return false }

// shortScheduler 用真实定时器，但把延迟缩短到 10ms
type shortScheduler struct{}

func (shortScheduler) Schedule(d time.Duration, fn func()) Handle {
	return TimerScheduler{}.Schedule(10*time.Millisecond, fn)
}
