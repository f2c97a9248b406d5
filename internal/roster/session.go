package roster

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

// Store 会话依赖的外部数据接口，由 repository 实现。
// 找不到班表时返回 sql.ErrNoRows
type Store interface {
	GetActiveShiftDefinitions() ([]*domain.ShiftDefinition, error)
	GetAllTasks() ([]*domain.Task, error)
	GetAllStaffMembers() ([]*domain.StaffMember, error)
	GetRostersByDate(date string) ([]*domain.Roster, error)
	GetRosterByDateAndShift(date string, shiftID int64) (*domain.Roster, error)
	SaveRoster(roster *domain.Roster) (*domain.Roster, error)
	PublishRoster(id string) (*domain.Roster, error)
}

// SessionState 会话状态机的状态
type SessionState int32

const (
	SessionLoading SessionState = iota
	SessionReady
	SessionFailed
)

func (s SessionState) String() string {
	switch s {
	case SessionLoading:
		return "loading"
	case SessionReady:
		return "ready"
	case SessionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session 一个 (日期, 班次) 的班表编辑会话。
// 所有槽位修改都在会话锁内基于最新的班表计算，用户连续快速点击
// 不会出现基于旧状态的丢更新
type Session struct {
	store   Store
	matcher ShiftNameMatcher

	date    string
	shiftID int64

	mu       sync.Mutex
	state    SessionState
	loadErr  error
	shifts   []*domain.ShiftDefinition
	shift    *domain.ShiftDefinition
	tasks    []*domain.Task
	staff    []*domain.StaffMember
	siblings []*domain.Roster
	roster   *domain.Roster

	saver *AutoSaver
}

// SessionSnapshot 会话当前状态的完整视图，HTTP 层直接序列化返回
type SessionSnapshot struct {
	Date        string                   `json:"date"`
	ShiftID     int64                    `json:"shiftID"`
	State       string                   `json:"state"`
	Roster      *domain.Roster           `json:"roster"`
	Assignments []*domain.TaskAssignment `json:"assignments"`
	// 当天已经被排到其它班次的用户，用于界面上的重复排班提示
	Conflicts []int64 `json:"conflicts"`
	AutoSave  string  `json:"autoSave"`
	SaveError string  `json:"saveError,omitempty"`
	LoadError string  `json:"loadError,omitempty"`
}

func NewSession(store Store, date string, shiftID int64, debounce time.Duration, matcher ShiftNameMatcher) *Session {
	if matcher == nil {
		matcher = ShiftNamesMatch
	}

	s := &Session{
		store:   store,
		matcher: matcher,
		date:    date,
		shiftID: shiftID,
		state:   SessionLoading,
	}
	s.saver = NewAutoSaver(debounce, s.snapshotForSave, store.SaveRoster, s.applySaved)

	return s
}

func (s *Session) Date() string   { return s.date }
func (s *Session) ShiftID() int64 { return s.shiftID }

// Load 按顺序拉取会话依赖的数据：班次目录、任务目录、员工名单、
// 当天其它班表，最后才是本班表本身——班表必须排在其它班表之后，
// 保证第一次计算覆盖率和跨班次冲突时上下文已经就绪。
// 任何一步失败都会让会话进入 Failed 状态，已拉取的部分数据全部丢弃
func (s *Session) Load() error {
	s.mu.Lock()
	s.state = SessionLoading
	s.loadErr = nil
	s.mu.Unlock()

	shifts, err := s.store.GetActiveShiftDefinitions()
	if err != nil {
		return s.failLoad(err)
	}

	var shift *domain.ShiftDefinition
	for _, sd := range shifts {
		if sd.ID == s.shiftID {
			shift = sd
			break
		}
	}
	if shift == nil {
		return s.failLoad(fmt.Errorf("班次 %d: %w", s.shiftID, ErrShiftNotFound))
	}

	tasks, err := s.store.GetAllTasks()
	if err != nil {
		return s.failLoad(err)
	}

	staff, err := s.store.GetAllStaffMembers()
	if err != nil {
		return s.failLoad(err)
	}

	siblings, err := s.store.GetRostersByDate(s.date)
	if err != nil {
		return s.failLoad(err)
	}

	roster, err := s.store.GetRosterByDateAndShift(s.date, s.shiftID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return s.failLoad(err)
		}
		// 这一天这个班次还没有班表，合成一张空的草稿
		roster = &domain.Roster{
			Date:    s.date,
			ShiftID: s.shiftID,
			Slots:   []*domain.RosterSlot{},
			Status:  domain.RosterStatusDraft,
		}
	}

	s.mu.Lock()
	s.shifts = shifts
	s.shift = shift
	s.tasks = tasks
	s.staff = staff
	s.siblings = siblings
	s.roster = roster
	s.roster.Coverage = ComputeCoverage(roster.Slots, staff, shift.Name, s.matcher)
	s.state = SessionReady
	s.mu.Unlock()

	return nil
}

func (s *Session) failLoad(err error) error {
	s.mu.Lock()
	s.state = SessionFailed
	s.loadErr = err
	s.mu.Unlock()
	return err
}

func (s *Session) shiftContextLocked() ShiftContext {
	return ShiftContext{
		ShiftID:   s.shift.ID,
		Date:      s.date,
		StartTime: s.shift.StartTime,
		EndTime:   s.shift.EndTime,
	}
}

func (s *Session) recomputeCoverageLocked() {
	s.roster.Coverage = ComputeCoverage(s.roster.Slots, s.staff, s.shift.Name, s.matcher)
}

// Assign 把用户指派到任务上并重新计算覆盖率，然后通知自动保存
func (s *Session) Assign(userID, taskID int64) error {
	s.mu.Lock()
	if s.state != SessionReady {
		s.mu.Unlock()
		return ErrSessionNotReady
	}
	s.roster.Slots = Assign(userID, taskID, s.roster.Slots, s.tasks, s.shiftContextLocked())
	s.recomputeCoverageLocked()
	s.mu.Unlock()

	s.saver.MutationOccurred()
	return nil
}

// Unassign 把用户从任务上撤下并重新计算覆盖率，然后通知自动保存
func (s *Session) Unassign(userID, taskID int64) error {
	s.mu.Lock()
	if s.state != SessionReady {
		s.mu.Unlock()
		return ErrSessionNotReady
	}
	s.roster.Slots = Unassign(userID, taskID, s.roster.Slots, s.tasks, s.shiftContextLocked())
	s.recomputeCoverageLocked()
	s.mu.Unlock()

	s.saver.MutationOccurred()
	return nil
}

// UpdateSlotNotes 更新某个槽位的备注
func (s *Session) UpdateSlotNotes(slotID string, notes string) error {
	s.mu.Lock()
	if s.state != SessionReady {
		s.mu.Unlock()
		return ErrSessionNotReady
	}

	var target *domain.RosterSlot
	for _, slot := range s.roster.Slots {
		if slot.ID == slotID {
			target = slot
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return ErrSlotNotFound
	}
	target.Notes = notes
	s.mu.Unlock()

	s.saver.MutationOccurred()
	return nil
}

// snapshotForSave 自动保存触发时读取的快照，深拷贝避免持久化期间
// 的并发编辑影响正在序列化的数据
func (s *Session) snapshotForSave() *domain.Roster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneRosterLocked()
}

func (s *Session) cloneRosterLocked() *domain.Roster {
	if s.roster == nil {
		return nil
	}

	clone := *s.roster
	clone.Slots = make([]*domain.RosterSlot, len(s.roster.Slots))
	for i, slot := range s.roster.Slots {
		sc := *slot
		sc.AssignedTasks = slices.Clone(slot.AssignedTasks)
		if slot.Actuals != nil {
			actuals := *slot.Actuals
			sc.Actuals = &actuals
		}
		clone.Slots[i] = &sc
	}
	clone.Coverage.Warnings = slices.Clone(s.roster.Coverage.Warnings)

	return &clone
}

// applySaved 保存成功后采用服务端返回的 id 和审计字段。
// 槽位保留会话内的最新状态，保存期间发生的编辑不能被服务端旧数据覆盖
func (s *Session) applySaved(saved *domain.Roster) {
	if saved == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roster == nil {
		return
	}
	s.roster.ID = saved.ID
	s.roster.StoreID = saved.StoreID
	s.roster.Status = saved.Status
	s.roster.CreatedAt = saved.CreatedAt
	s.roster.UpdatedAt = saved.UpdatedAt
	s.roster.Version = saved.Version
	for _, slot := range s.roster.Slots {
		slot.RosterID = saved.ID
	}
}

// Save 手动保存，和自动保存共用同一条持久化路径
func (s *Session) Save() (*domain.Roster, error) {
	s.mu.Lock()
	if s.state != SessionReady {
		s.mu.Unlock()
		return nil, ErrSessionNotReady
	}
	s.mu.Unlock()

	return s.saver.Flush()
}

// Publish 发布班表。空班表会被拒绝；发布前先走一次保存（从未保存过的
// 班表也因此先拿到 id），保存失败时中止发布并把错误交给调用方，
// 绝不会对一个不存在的 id 发起发布
func (s *Session) Publish() (*domain.Roster, error) {
	s.mu.Lock()
	if s.state != SessionReady {
		s.mu.Unlock()
		return nil, ErrSessionNotReady
	}
	if s.roster.Coverage.FilledSlots == 0 {
		s.mu.Unlock()
		return nil, ErrEmptyRoster
	}
	s.mu.Unlock()

	if _, err := s.saver.Flush(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := s.roster.ID
	s.mu.Unlock()

	published, err := s.store.PublishRoster(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.roster.Status = published.Status
	s.roster.UpdatedAt = published.UpdatedAt
	s.roster.Version = published.Version
	for _, slot := range s.roster.Slots {
		slot.Status = published.Status
	}
	s.mu.Unlock()

	return published, nil
}

// Snapshot 返回会话当前状态的完整视图
func (s *Session) Snapshot() *SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &SessionSnapshot{
		Date:     s.date,
		ShiftID:  s.shiftID,
		State:    s.state.String(),
		AutoSave: s.saver.State().String(),
	}
	if err := s.saver.LastError(); err != nil {
		snap.SaveError = err.Error()
	}
	if s.loadErr != nil {
		snap.LoadError = s.loadErr.Error()
	}

	if s.state != SessionReady {
		return snap
	}

	snap.Roster = s.cloneRosterLocked()
	snap.Assignments = Project(s.roster.Slots, s.tasks)

	conflictSet := UsersInOtherShifts(s.siblings, s.shiftID)
	snap.Conflicts = make([]int64, 0, len(conflictSet))
	for userID := range conflictSet {
		snap.Conflicts = append(snap.Conflicts, userID)
	}
	slices.Sort(snap.Conflicts)

	return snap
}

// Shift 当前会话的班次定义，会话未就绪时为 nil
func (s *Session) Shift() *domain.ShiftDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shift
}

// Tasks 当前会话的任务目录
func (s *Session) Tasks() []*domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks
}

// Staff 当前会话的员工名单
func (s *Session) Staff() []*domain.StaffMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staff
}

// Roster 当前班表的深拷贝
func (s *Session) Roster() *domain.Roster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneRosterLocked()
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastSaveError 最近一次保存失败的错误
func (s *Session) LastSaveError() error {
	return s.saver.LastError()
}

// AutoSaveState 自动保存状态机的当前状态
func (s *Session) AutoSaveState() AutoSaveState {
	return s.saver.State()
}

// Close 关闭会话并释放自动保存定时器
func (s *Session) Close() {
	s.saver.Close()
}
