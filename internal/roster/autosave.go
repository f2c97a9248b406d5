package roster

import (
	"sync"
	"time"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

// AutoSaveState 自动保存状态机的状态
type AutoSaveState int32

const (
	AutoSaveIdle AutoSaveState = iota
	AutoSavePending
	AutoSaveSaving
)

func (s AutoSaveState) String() string {
	switch s {
	case AutoSaveIdle:
		return "idle"
	case AutoSavePending:
		return "pending"
	case AutoSaveSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// SaveFunc 持久化一张班表，返回服务端的规范版本（带 id 和审计字段）
type SaveFunc func(*domain.Roster) (*domain.Roster, error)

// AutoSaver 防抖自动保存状态机：Idle -> Pending -> Saving -> Idle。
//
// 每次修改都会把防抖窗口重置并进入 Pending；定时器触发时才读取快照，
// 保证保存的永远是触发时刻的最新状态而不是调度时刻的旧状态。
// 同一时刻最多只有一个保存在执行：保存期间到达的修改会被记录下来，
// 保存结束后重新进入一轮 Pending，不会被丢掉。
// 保存失败时保留错误供展示，不自动重试，下一次修改或手动保存会重新触发
type AutoSaver struct {
	mu       sync.Mutex
	state    AutoSaveState
	debounce time.Duration
	timer    *time.Timer
	dirty    bool // Saving 期间是否又有新的修改
	closed   bool
	lastErr  error

	snapshot func() *domain.Roster
	save     SaveFunc
	onSaved  func(*domain.Roster)
}

func NewAutoSaver(debounce time.Duration, snapshot func() *domain.Roster, save SaveFunc, onSaved func(*domain.Roster)) *AutoSaver {
	return &AutoSaver{
		state:    AutoSaveIdle,
		debounce: debounce,
		snapshot: snapshot,
		save:     save,
		onSaved:  onSaved,
	}
}

// MutationOccurred 通知状态机发生了一次修改
func (a *AutoSaver) MutationOccurred() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}

	if a.state == AutoSaveSaving {
		// 保存进行中，先记下来，等保存结束后再重新进入 Pending
		a.dirty = true
		return
	}

	a.state = AutoSavePending
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.fire)
}

func (a *AutoSaver) fire() {
	a.mu.Lock()
	if a.closed || a.state != AutoSavePending {
		a.mu.Unlock()
		return
	}
	a.state = AutoSaveSaving
	a.timer = nil
	// 触发时才读取快照，避免保存旧状态导致丢更新
	snap := a.snapshot()
	a.mu.Unlock()

	_, _ = a.doSave(snap)
}

// Flush 立即执行一次保存（手动保存路径），并取消还没触发的定时器，
// 避免手动保存后又紧跟着触发一次可能过期的自动保存
func (a *AutoSaver) Flush() (*domain.Roster, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if a.state == AutoSaveSaving {
		a.mu.Unlock()
		return nil, ErrSaveInFlight
	}
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.state = AutoSaveSaving
	snap := a.snapshot()
	a.mu.Unlock()

	return a.doSave(snap)
}

func (a *AutoSaver) doSave(snap *domain.Roster) (*domain.Roster, error) {
	saved, err := a.save(snap)

	a.mu.Lock()
	a.state = AutoSaveIdle
	a.lastErr = err
	rearm := a.dirty && !a.closed
	a.dirty = false
	a.mu.Unlock()

	if err == nil && a.onSaved != nil {
		a.onSaved(saved)
	}

	if rearm {
		a.MutationOccurred()
	}

	return saved, err
}

// Close 取消还没触发的定时器并停止接受新的修改。
// 会话卸载或切换 (日期, 班次) 时必须调用，保证定时器资源被释放
func (a *AutoSaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.state == AutoSavePending {
		a.state = AutoSaveIdle
	}
}

func (a *AutoSaver) State() AutoSaveState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// LastError 最近一次保存的错误，保存成功后清空
func (a *AutoSaver) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}
