package roster

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

// saveRecorder 记录每次保存拿到的快照
type saveRecorder struct {
	mu        sync.Mutex
	snapshots []*domain.Roster
	err       error
	block     chan struct{} // 不为 nil 时，保存会阻塞直到通道被关闭
}

func (rec *saveRecorder) save(r *domain.Roster) (*domain.Roster, error) {
	rec.mu.Lock()
	block := rec.block
	rec.mu.Unlock()
	if block != nil {
		<-block
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.snapshots = append(rec.snapshots, r)
	if rec.err != nil {
		return nil, rec.err
	}

	saved := *r
	saved.ID = "server-id"
	return &saved, nil
}

func (rec *saveRecorder) count() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.snapshots)
}

func (rec *saveRecorder) last() *domain.Roster {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.snapshots) == 0 {
		return nil
	}
	return rec.snapshots[len(rec.snapshots)-1]
}

// mutableRoster 模拟会话内不断变化的班表状态
type mutableRoster struct {
	mu     sync.Mutex
	roster *domain.Roster
}

func (m *mutableRoster) set(r *domain.Roster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roster = r
}

func (m *mutableRoster) snapshot() *domain.Roster {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roster
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, cond(), "条件在 %v 内未满足", timeout)
}

func TestAutoSaverDebounceCoalescing(t *testing.T) {
	rec := &saveRecorder{}
	state := &mutableRoster{}

	saver := NewAutoSaver(40*time.Millisecond, state.snapshot, rec.save, nil)
	defer saver.Close()

	// 防抖窗口内的 N 次修改只触发一次保存，且保存的是最后一次修改后的状态
	for i := 1; i <= 5; i++ {
		state.set(&domain.Roster{StoreID: "draft", Version: int32(i)})
		saver.MutationOccurred()
		require.Equal(t, AutoSavePending, saver.State())
	}

	waitFor(t, time.Second, func() bool { return rec.count() == 1 })
	require.Equal(t, int32(5), rec.last().Version)

	// 窗口过去后不应再有多余的保存
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, rec.count())
	require.Equal(t, AutoSaveIdle, saver.State())
}

func TestAutoSaverReadsSnapshotAtFireTime(t *testing.T) {
	rec := &saveRecorder{}
	state := &mutableRoster{}

	saver := NewAutoSaver(40*time.Millisecond, state.snapshot, rec.save, nil)
	defer saver.Close()

	state.set(&domain.Roster{Version: 1})
	saver.MutationOccurred()

	// 定时器还没触发之前状态又变了（没有新的 MutationOccurred 也一样），
	// 保存的必须是触发时刻的状态
	state.set(&domain.Roster{Version: 2})

	waitFor(t, time.Second, func() bool { return rec.count() == 1 })
	require.Equal(t, int32(2), rec.last().Version)
}

func TestAutoSaverMutationDuringSaving(t *testing.T) {
	rec := &saveRecorder{block: make(chan struct{})}
	state := &mutableRoster{}

	saver := NewAutoSaver(20*time.Millisecond, state.snapshot, rec.save, nil)
	defer saver.Close()

	state.set(&domain.Roster{Version: 1})
	saver.MutationOccurred()

	waitFor(t, time.Second, func() bool { return saver.State() == AutoSaveSaving })

	// 保存进行中又来了一次修改，它不能被静默丢掉
	state.set(&domain.Roster{Version: 2})
	saver.MutationOccurred()

	close(rec.block)

	waitFor(t, time.Second, func() bool { return rec.count() == 2 })
	require.Equal(t, int32(2), rec.last().Version)
}

func TestAutoSaverFailureKeepsErrorWithoutRetry(t *testing.T) {
	saveErr := errors.New("数据库不可用")
	rec := &saveRecorder{err: saveErr}
	state := &mutableRoster{}

	saver := NewAutoSaver(20*time.Millisecond, state.snapshot, rec.save, nil)
	defer saver.Close()

	state.set(&domain.Roster{Version: 1})
	saver.MutationOccurred()

	waitFor(t, time.Second, func() bool { return rec.count() == 1 })
	waitFor(t, time.Second, func() bool { return saver.State() == AutoSaveIdle })
	require.ErrorIs(t, saver.LastError(), saveErr)

	// 失败后不自动重试
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, rec.count())

	// 下一次修改重新触发保存，成功后错误被清空
	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()

	saver.MutationOccurred()
	waitFor(t, time.Second, func() bool { return rec.count() == 2 })
	waitFor(t, time.Second, func() bool { return saver.LastError() == nil })
}

func TestAutoSaverFlushCancelsPendingTimer(t *testing.T) {
	rec := &saveRecorder{}
	state := &mutableRoster{}

	saver := NewAutoSaver(40*time.Millisecond, state.snapshot, rec.save, nil)
	defer saver.Close()

	state.set(&domain.Roster{Version: 1})
	saver.MutationOccurred()

	// 手动保存应取消还没触发的定时器，之后不会再多保存一次
	saved, err := saver.Flush()
	require.NoError(t, err)
	require.Equal(t, "server-id", saved.ID)

	time.Sleep(120 * time.Millisecond)
	require.Equal(t, 1, rec.count())
}

func TestAutoSaverFlushWhileSaving(t *testing.T) {
	rec := &saveRecorder{block: make(chan struct{})}
	state := &mutableRoster{}

	saver := NewAutoSaver(10*time.Millisecond, state.snapshot, rec.save, nil)
	defer saver.Close()

	state.set(&domain.Roster{Version: 1})
	saver.MutationOccurred()
	waitFor(t, time.Second, func() bool { return saver.State() == AutoSaveSaving })

	_, err := saver.Flush()
	require.ErrorIs(t, err, ErrSaveInFlight)

	close(rec.block)
}

func TestAutoSaverClose(t *testing.T) {
	rec := &saveRecorder{}
	state := &mutableRoster{}

	saver := NewAutoSaver(40*time.Millisecond, state.snapshot, rec.save, nil)

	state.set(&domain.Roster{Version: 1})
	saver.MutationOccurred()
	saver.Close()

	// 关闭时挂起的定时器被取消，不会再触发保存
	time.Sleep(120 * time.Millisecond)
	require.Equal(t, 0, rec.count())
	require.Equal(t, AutoSaveIdle, saver.State())

	// 关闭后的修改与手动保存都被拒绝
	saver.MutationOccurred()
	require.Equal(t, AutoSaveIdle, saver.State())

	_, err := saver.Flush()
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestAutoSaverOnSavedCallback(t *testing.T) {
	rec := &saveRecorder{}
	state := &mutableRoster{}

	var mu sync.Mutex
	var applied *domain.Roster

	saver := NewAutoSaver(20*time.Millisecond, state.snapshot, rec.save, func(saved *domain.Roster) {
		mu.Lock()
		defer mu.Unlock()
		applied = saved
	})
	defer saver.Close()

	state.set(&domain.Roster{Version: 1})
	saver.MutationOccurred()

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return applied != nil
	})

	mu.Lock()
	require.Equal(t, "server-id", applied.ID)
	mu.Unlock()
}
