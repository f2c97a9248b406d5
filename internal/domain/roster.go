package domain

import "time"

type RosterStatus string

const (
	RosterStatusDraft     RosterStatus = "draft"
	RosterStatusPublished RosterStatus = "published"
)

// SlotActuals 某个槽位的实际考勤记录，发布后由考勤模块写入
type SlotActuals struct {
	StartTime string `json:"startTime"` // HH:mm
	EndTime   string `json:"endTime"`   // HH:mm
	Present   bool   `json:"present"`
}

// RosterSlot 持久化的排班单元：一个员工在一张班表中的一条记录，
// 携带这个员工的任务列表和班次时间窗口
type RosterSlot struct {
	ID       string `json:"id"`
	RosterID string `json:"rosterId"`
	UserID   *int64 `json:"userId"` // 为 nil 时表示空缺槽位
	ShiftID  int64  `json:"shiftId"`
	Date     string `json:"date"` // YYYY-MM-DD
	// 任务 ID 集合，顺序无业务含义
	AssignedTasks []int64      `json:"assignedTasks"`
	StartTime     string       `json:"startTime"` // 创建/物化时从班次定义复制
	EndTime       string       `json:"endTime"`
	Status        RosterStatus `json:"status"`
	Notes         string       `json:"notes"`
	Actuals       *SlotActuals `json:"actuals,omitempty"`
}

// TaskAssignment 任务视角的派生视图：某个任务被指派给了哪些员工。
// 不持久化，编辑界面使用
type TaskAssignment struct {
	TaskID          int64   `json:"taskId"`
	TaskName        string  `json:"taskName"`
	Category        string  `json:"category"`
	AssignedUserIDs []int64 `json:"assignedUserIds"` // 集合语义，顺序为首次出现顺序
}

type CoverageMetrics struct {
	TotalSlots         int     `json:"totalSlots"`
	FilledSlots        int     `json:"filledSlots"`
	VacantSlots        int     `json:"vacantSlots"`
	CoveragePercentage float64 `json:"coveragePercentage"` // 超员时允许超过 100
	// 本班次可用的员工数（旧版本中这个字段叫 minRequiredStaff）
	AvailableStaff int      `json:"availableStaff"`
	ActualStaff    int      `json:"actualStaff"`
	Warnings       []string `json:"warnings"`
}

// Roster 一个 (日期, 班次) 的排班表
type Roster struct {
	ID        string          `json:"id"` // 第一次保存前为空字符串
	StoreID   string          `json:"storeId"`
	Date      string          `json:"date"` // YYYY-MM-DD
	ShiftID   int64           `json:"shiftId"`
	Slots     []*RosterSlot   `json:"slots"`
	Coverage  CoverageMetrics `json:"coverage"`
	Status    RosterStatus    `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Version   int32           `json:"-"`
}
