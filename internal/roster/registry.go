package roster

import (
	"fmt"
	"sync"
	"time"
)

// Registry 管理所有存活的编辑会话，每个 (日期, 班次) 最多一个。
// 会话之间不共享任何状态，切换选择时旧会话必须显式关闭
type Registry struct {
	store    Store
	debounce time.Duration
	matcher  ShiftNameMatcher

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(store Store, debounce time.Duration, matcher ShiftNameMatcher) *Registry {
	return &Registry{
		store:    store,
		debounce: debounce,
		matcher:  matcher,
		sessions: make(map[string]*Session),
	}
}

func sessionKey(date string, shiftID int64) string {
	return fmt.Sprintf("%s#%d", date, shiftID)
}

// Open 返回 (日期, 班次) 对应的会话，没有或者上次加载失败时新建一个。
// 重新打开失败的会话就是重试
func (g *Registry) Open(date string, shiftID int64) (*Session, error) {
	key := sessionKey(date, shiftID)

	g.mu.Lock()
	existing := g.sessions[key]
	g.mu.Unlock()

	if existing != nil && existing.State() == SessionReady {
		return existing, nil
	}

	fresh := NewSession(g.store, date, shiftID, g.debounce, g.matcher)
	if err := fresh.Load(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	// 新会话就绪后才替换，旧会话（如果有）的定时器要先释放
	if old := g.sessions[key]; old != nil {
		old.Close()
	}
	g.sessions[key] = fresh
	g.mu.Unlock()

	return fresh, nil
}

// Get 返回已经打开的会话，没有时返回 nil
func (g *Registry) Get(date string, shiftID int64) *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessions[sessionKey(date, shiftID)]
}

// Close 关闭并移除 (日期, 班次) 对应的会话
func (g *Registry) Close(date string, shiftID int64) {
	key := sessionKey(date, shiftID)

	g.mu.Lock()
	sess := g.sessions[key]
	delete(g.sessions, key)
	g.mu.Unlock()

	if sess != nil {
		sess.Close()
	}
}

// CloseAll 关闭所有会话，服务器退出时调用
func (g *Registry) CloseAll() {
	g.mu.Lock()
	sessions := make([]*Session, 0, len(g.sessions))
	for _, sess := range g.sessions {
		sessions = append(sessions, sess)
	}
	g.sessions = make(map[string]*Session)
	g.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
