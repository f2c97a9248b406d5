package roster

import (
	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

// UsersInOtherShifts 返回当天其它班次中已经有排班的用户 ID 集合。
// 只负责暴露集合供界面提示重复排班，是否硬性阻止由调用方决定
func UsersInOtherShifts(rostersForDate []*domain.Roster, currentShiftID int64) map[int64]struct{} {
	users := make(map[int64]struct{})

	for _, r := range rostersForDate {
		if r == nil || r.ShiftID == currentShiftID {
			continue
		}
		for _, slot := range r.Slots {
			if slot.UserID != nil {
				users[*slot.UserID] = struct{}{}
			}
		}
	}

	return users
}
