package roster

import (
	"slices"

	"github.com/google/uuid"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

// ShiftContext 物化槽位时使用的当前班次上下文
type ShiftContext struct {
	ShiftID   int64
	Date      string // YYYY-MM-DD
	StartTime string // HH:mm
	EndTime   string // HH:mm
}

// Project 将槽位列表投影成任务视角的指派列表。
// 任务目录中的每个任务都会出现在结果中（没人负责的任务也要展示），
// 结果顺序与任务目录一致，用户顺序为槽位遍历中的首次出现顺序
func Project(slots []*domain.RosterSlot, tasks []*domain.Task) []*domain.TaskAssignment {
	assignments := make([]*domain.TaskAssignment, 0, len(tasks))
	index := make(map[int64]*domain.TaskAssignment, len(tasks))

	for _, task := range tasks {
		ta := &domain.TaskAssignment{
			TaskID:          task.ID,
			TaskName:        task.Name,
			Category:        task.Category,
			AssignedUserIDs: []int64{},
		}
		assignments = append(assignments, ta)
		index[task.ID] = ta
	}

	for _, slot := range slots {
		if slot.UserID == nil {
			continue
		}
		for _, taskID := range slot.AssignedTasks {
			ta, exists := index[taskID]
			if !exists {
				// 槽位引用了目录之外的任务，跳过
				continue
			}
			if !slices.Contains(ta.AssignedUserIDs, *slot.UserID) {
				ta.AssignedUserIDs = append(ta.AssignedUserIDs, *slot.UserID)
			}
		}
	}

	return assignments
}

// Materialize 将任务视角的指派列表反转回槽位列表。
// 每个至少有一个任务的用户产生一个槽位；上一个槽位列表用于保留槽位的
// id、状态、备注和考勤记录；最后一个任务被移除的用户不再产生槽位。
// 槽位的起止时间永远从当前班次定义复制，保证班次时间被修改后
// 下一次物化立即生效，而不是冻结在槽位创建时的值
func Materialize(assignments []*domain.TaskAssignment, shift ShiftContext, existing []*domain.RosterSlot) []*domain.RosterSlot {
	// 反转为每个用户的任务列表
	userTasks := make(map[int64][]int64)
	userOrder := []int64{}

	for _, ta := range assignments {
		for _, userID := range ta.AssignedUserIDs {
			if _, exists := userTasks[userID]; !exists {
				userOrder = append(userOrder, userID)
			}
			userTasks[userID] = append(userTasks[userID], ta.TaskID)
		}
	}

	// 旧槽位缓存，按用户 ID 索引
	prev := make(map[int64]*domain.RosterSlot, len(existing))
	for _, slot := range existing {
		if slot.UserID != nil {
			prev[*slot.UserID] = slot
		}
	}

	slots := make([]*domain.RosterSlot, 0, len(userOrder))
	for _, userID := range userOrder {
		uid := userID
		slot := &domain.RosterSlot{
			ID:            uuid.NewString(),
			UserID:        &uid,
			ShiftID:       shift.ShiftID,
			Date:          shift.Date,
			AssignedTasks: userTasks[userID],
			StartTime:     shift.StartTime,
			EndTime:       shift.EndTime,
			Status:        domain.RosterStatusDraft,
		}
		if old, exists := prev[userID]; exists {
			slot.ID = old.ID
			slot.RosterID = old.RosterID
			slot.Status = old.Status
			slot.Notes = old.Notes
			slot.Actuals = old.Actuals
		}
		slots = append(slots, slot)
	}

	return slots
}

// Assign 把用户指派到任务上，返回新的槽位列表，不修改入参。
// 重复指派是幂等的
func Assign(userID, taskID int64, slots []*domain.RosterSlot, tasks []*domain.Task, shift ShiftContext) []*domain.RosterSlot {
	assignments := Project(slots, tasks)
	for _, ta := range assignments {
		if ta.TaskID != taskID {
			continue
		}
		if !slices.Contains(ta.AssignedUserIDs, userID) {
			ta.AssignedUserIDs = append(ta.AssignedUserIDs, userID)
		}
	}
	return Materialize(assignments, shift, slots)
}

// Unassign 把用户从任务上撤下，返回新的槽位列表，不修改入参。
// 用户本来就不在任务上时是空操作；撤掉最后一个任务会让这个用户
// 从槽位列表中完全消失（「取消指派即清人」语义）
func Unassign(userID, taskID int64, slots []*domain.RosterSlot, tasks []*domain.Task, shift ShiftContext) []*domain.RosterSlot {
	assignments := Project(slots, tasks)
	for _, ta := range assignments {
		if ta.TaskID != taskID {
			continue
		}
		ta.AssignedUserIDs = slices.DeleteFunc(ta.AssignedUserIDs, func(id int64) bool {
			return id == userID
		})
	}
	return Materialize(assignments, shift, slots)
}
