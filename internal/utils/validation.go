package utils

import (
	"fmt"
	"time"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

// ValidateShiftDefinitionTime 校验班次的时间窗口并计算时长。
// 开始和结束时间都是 HH:mm 格式，结束时间必须晚于开始时间
func ValidateShiftDefinitionTime(shift *domain.ShiftDefinition) error {
	startTime, err := time.Parse("15:04", shift.StartTime)
	if err != nil {
		return fmt.Errorf("开始时间格式错误，应为 HH:mm")
	}
	endTime, err := time.Parse("15:04", shift.EndTime)
	if err != nil {
		return fmt.Errorf("结束时间格式错误，应为 HH:mm")
	}
	if !endTime.After(startTime) {
		return fmt.Errorf("结束时间必须晚于开始时间")
	}

	shift.DurationHours = endTime.Sub(startTime).Hours()

	return nil
}

// ValidateWeekOffDays 休息日用 0-6 表示周日到周六，不允许重复
func ValidateWeekOffDays(days []int32) error {
	seen := make(map[int32]bool)
	for _, day := range days {
		if day < 0 || day > 6 {
			return fmt.Errorf("休息日 %d 无效，应在 0 到 6 之间", day)
		}
		if seen[day] {
			return fmt.Errorf("休息日 %d 重复", day)
		}
		seen[day] = true
	}
	return nil
}
