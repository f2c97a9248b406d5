package roster

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

// fakeStore 内存版的 Store 实现
type fakeStore struct {
	mu sync.Mutex

	shifts []*domain.ShiftDefinition
	tasks  []*domain.Task
	staff  []*domain.StaffMember

	rosters map[string]*domain.Roster // id -> roster

	staffErr   error
	rostersErr error
	saveErr    error
	publishErr error

	saveCalls    int
	publishCalls int
	nextID       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		shifts: []*domain.ShiftDefinition{
			{ID: 1, Name: "Morning Shift", StartTime: "08:00", EndTime: "17:00", DurationHours: 9, IsActive: true},
			{ID: 2, Name: "Evening Shift", StartTime: "14:00", EndTime: "23:00", DurationHours: 9, IsActive: true},
		},
		tasks: []*domain.Task{
			{ID: 1, Name: "Cleaning", Category: "Maintenance"},
			{ID: 2, Name: "Stocking", Category: "Inventory"},
		},
		staff: []*domain.StaffMember{
			{ID: 10, FirstName: "Alice", Role: "Sales Associate", IsActive: true},
			{ID: 20, FirstName: "Bob", Role: "Sales Associate", IsActive: true},
		},
		rosters: make(map[string]*domain.Roster),
	}
}

func (f *fakeStore) GetActiveShiftDefinitions() ([]*domain.ShiftDefinition, error) {
	return f.shifts, nil
}

func (f *fakeStore) GetAllTasks() ([]*domain.Task, error) {
	return f.tasks, nil
}

func (f *fakeStore) GetAllStaffMembers() ([]*domain.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staffErr != nil {
		return nil, f.staffErr
	}
	return f.staff, nil
}

func (f *fakeStore) GetRostersByDate(date string) ([]*domain.Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rostersErr != nil {
		return nil, f.rostersErr
	}
	result := []*domain.Roster{}
	for _, r := range f.rosters {
		if r.Date == date {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeStore) GetRosterByDateAndShift(date string, shiftID int64) (*domain.Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rosters {
		if r.Date == date && r.ShiftID == shiftID {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) SaveRoster(roster *domain.Roster) (*domain.Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saveCalls++
	if f.saveErr != nil {
		return nil, f.saveErr
	}

	saved := *roster
	if saved.ID == "" {
		f.nextID++
		saved.ID = fmt.Sprintf("roster-%d", f.nextID)
	}
	saved.Version++
	f.rosters[saved.ID] = &saved
	return &saved, nil
}

func (f *fakeStore) PublishRoster(id string) (*domain.Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.publishCalls++
	if f.publishErr != nil {
		return nil, f.publishErr
	}

	r, exists := f.rosters[id]
	if !exists {
		return nil, sql.ErrNoRows
	}
	published := *r
	published.Status = domain.RosterStatusPublished
	published.Version++
	f.rosters[id] = &published
	return &published, nil
}

// 测试用的防抖窗口，足够长以避免自动保存干扰显式断言
const testDebounce = time.Hour

func openTestSession(t *testing.T, store *fakeStore) *Session {
	t.Helper()
	sess := NewSession(store, "2025-06-02", 1, testDebounce, nil)
	require.NoError(t, sess.Load())
	t.Cleanup(sess.Close)
	return sess
}

func TestSessionLoadSynthesizesEmptyDraft(t *testing.T) {
	store := newFakeStore()
	sess := openTestSession(t, store)

	require.Equal(t, SessionReady, sess.State())

	roster := sess.Roster()
	require.Equal(t, "", roster.ID)
	require.Equal(t, domain.RosterStatusDraft, roster.Status)
	require.Empty(t, roster.Slots)
	require.Equal(t, 0, roster.Coverage.FilledSlots)
	require.Equal(t, 0.0, roster.Coverage.CoveragePercentage)
}

func TestSessionLoadFailureDiscardsPartialData(t *testing.T) {
	store := newFakeStore()
	store.staffErr = errors.New("员工名单拉取失败")

	sess := NewSession(store, "2025-06-02", 1, testDebounce, nil)
	err := sess.Load()
	require.Error(t, err)
	require.Equal(t, SessionFailed, sess.State())

	snap := sess.Snapshot()
	require.Equal(t, "failed", snap.State)
	require.NotEmpty(t, snap.LoadError)
	require.Nil(t, snap.Roster)

	// 失败状态下编辑操作一律被拒绝
	require.ErrorIs(t, sess.Assign(10, 1), ErrSessionNotReady)
	_, err = sess.Publish()
	require.ErrorIs(t, err, ErrSessionNotReady)

	// 重新加载就是重试
	store.mu.Lock()
	store.staffErr = nil
	store.mu.Unlock()
	require.NoError(t, sess.Load())
	require.Equal(t, SessionReady, sess.State())
	sess.Close()
}

func TestSessionLoadRejectsUnknownShift(t *testing.T) {
	store := newFakeStore()
	sess := NewSession(store, "2025-06-02", 99, testDebounce, nil)
	require.Error(t, sess.Load())
	require.Equal(t, SessionFailed, sess.State())
}

func TestSessionAssignUpdatesCoverage(t *testing.T) {
	store := newFakeStore()
	sess := openTestSession(t, store)

	require.NoError(t, sess.Assign(10, 1))
	require.NoError(t, sess.Assign(20, 2))

	roster := sess.Roster()
	require.Len(t, roster.Slots, 2)
	require.Equal(t, 2, roster.Coverage.FilledSlots)
	// 两名在职非管理员工，两个已填充槽位
	require.Equal(t, 2, roster.Coverage.AvailableStaff)
	require.InDelta(t, 100.0, roster.Coverage.CoveragePercentage, 1e-9)

	require.NoError(t, sess.Unassign(10, 1))
	roster = sess.Roster()
	require.Len(t, roster.Slots, 1)
	require.Equal(t, 1, roster.Coverage.FilledSlots)
}

func TestSessionSnapshotExposesConflicts(t *testing.T) {
	store := newFakeStore()
	evening := &domain.Roster{ID: "r-e", Date: "2025-06-02", ShiftID: 2, Status: domain.RosterStatusDraft}
	uid := int64(20)
	evening.Slots = []*domain.RosterSlot{{ID: "s", UserID: &uid, AssignedTasks: []int64{1}}}
	store.rosters[evening.ID] = evening

	sess := openTestSession(t, store)
	snap := sess.Snapshot()

	require.Equal(t, []int64{20}, snap.Conflicts)
	require.Len(t, snap.Assignments, 2)
}

func TestSessionPublishRejectsEmptyRoster(t *testing.T) {
	store := newFakeStore()
	sess := openTestSession(t, store)

	_, err := sess.Publish()
	require.ErrorIs(t, err, ErrEmptyRoster)
	require.Equal(t, 0, store.saveCalls)
	require.Equal(t, 0, store.publishCalls)
}

func TestSessionPublishSavesUnsavedRosterFirst(t *testing.T) {
	store := newFakeStore()
	sess := openTestSession(t, store)

	require.NoError(t, sess.Assign(10, 1))

	published, err := sess.Publish()
	require.NoError(t, err)
	require.Equal(t, domain.RosterStatusPublished, published.Status)
	require.Equal(t, "roster-1", published.ID)
	require.Equal(t, 1, store.saveCalls)
	require.Equal(t, 1, store.publishCalls)

	roster := sess.Roster()
	require.Equal(t, domain.RosterStatusPublished, roster.Status)
	for _, slot := range roster.Slots {
		require.Equal(t, domain.RosterStatusPublished, slot.Status)
	}
}

func TestSessionPublishAbortsWhenSaveFails(t *testing.T) {
	store := newFakeStore()
	sess := openTestSession(t, store)

	require.NoError(t, sess.Assign(10, 1))

	store.mu.Lock()
	store.saveErr = errors.New("保存失败")
	store.mu.Unlock()

	_, err := sess.Publish()
	require.Error(t, err)
	// 保存失败时绝不能继续对不存在的 id 发起发布
	require.Equal(t, 0, store.publishCalls)
	require.Equal(t, domain.RosterStatusDraft, sess.Roster().Status)
}

func TestSessionManualSaveAppliesServerFields(t *testing.T) {
	store := newFakeStore()
	sess := openTestSession(t, store)

	require.NoError(t, sess.Assign(10, 1))

	saved, err := sess.Save()
	require.NoError(t, err)
	require.Equal(t, "roster-1", saved.ID)

	roster := sess.Roster()
	require.Equal(t, "roster-1", roster.ID)
	for _, slot := range roster.Slots {
		require.Equal(t, "roster-1", slot.RosterID)
	}
}

func TestSessionSaveFailureKeepsRosterAndError(t *testing.T) {
	store := newFakeStore()
	sess := openTestSession(t, store)

	require.NoError(t, sess.Assign(10, 1))

	store.mu.Lock()
	store.saveErr = errors.New("数据库不可用")
	store.mu.Unlock()

	_, err := sess.Save()
	require.Error(t, err)
	require.Error(t, sess.LastSaveError())

	// 保存失败不影响会话内的班表，用户可以继续编辑
	roster := sess.Roster()
	require.Len(t, roster.Slots, 1)
	require.Equal(t, "", roster.ID)
	require.NoError(t, sess.Assign(20, 2))
}

func TestSessionAutoSaveDebounce(t *testing.T) {
	store := newFakeStore()
	sess := NewSession(store, "2025-06-02", 1, 40*time.Millisecond, nil)
	require.NoError(t, sess.Load())
	defer sess.Close()

	// 防抖窗口内的多次编辑只产生一次保存
	require.NoError(t, sess.Assign(10, 1))
	require.NoError(t, sess.Assign(10, 2))
	require.NoError(t, sess.Assign(20, 1))

	waitFor(t, time.Second, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.saveCalls == 1
	})

	waitFor(t, time.Second, func() bool { return sess.Roster().ID == "roster-1" })

	saved := store.rosters["roster-1"]
	require.Len(t, saved.Slots, 2)

	time.Sleep(100 * time.Millisecond)
	store.mu.Lock()
	require.Equal(t, 1, store.saveCalls)
	store.mu.Unlock()
}

func TestRegistry(t *testing.T) {
	t.Run("one session per date and shift", func(t *testing.T) {
		store := newFakeStore()
		reg := NewRegistry(store, testDebounce, nil)
		defer reg.CloseAll()

		first, err := reg.Open("2025-06-02", 1)
		require.NoError(t, err)

		again, err := reg.Open("2025-06-02", 1)
		require.NoError(t, err)
		require.Same(t, first, again)

		other, err := reg.Open("2025-06-02", 2)
		require.NoError(t, err)
		require.NotSame(t, first, other)
	})

	t.Run("close removes the session", func(t *testing.T) {
		store := newFakeStore()
		reg := NewRegistry(store, testDebounce, nil)
		defer reg.CloseAll()

		_, err := reg.Open("2025-06-02", 1)
		require.NoError(t, err)
		require.NotNil(t, reg.Get("2025-06-02", 1))

		reg.Close("2025-06-02", 1)
		require.Nil(t, reg.Get("2025-06-02", 1))
	})

	t.Run("failed open can be retried", func(t *testing.T) {
		store := newFakeStore()
		store.staffErr = errors.New("临时故障")
		reg := NewRegistry(store, testDebounce, nil)
		defer reg.CloseAll()

		_, err := reg.Open("2025-06-02", 1)
		require.Error(t, err)
		require.Nil(t, reg.Get("2025-06-02", 1))

		store.mu.Lock()
		store.staffErr = nil
		store.mu.Unlock()

		sess, err := reg.Open("2025-06-02", 1)
		require.NoError(t, err)
		require.Equal(t, SessionReady, sess.State())
	})
}
