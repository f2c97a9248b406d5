package roster

import (
	"strings"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

// 计算覆盖率分母时排除的管理角色，按子串匹配且大小写不敏感
const excludedManagementRole = "manager"

// ComputeCoverage 计算一组槽位在给定班次下的覆盖率指标。
// 分母是「本班次可用的员工数」：在职、非管理角色、且班次偏好与
// shiftName 匹配（没有偏好的员工任何班次都可用）。
// 可用员工数为 0 时覆盖率为 0，永远不会除零；超员时允许超过 100，
// 展示层的裁剪由前端负责
func ComputeCoverage(slots []*domain.RosterSlot, staff []*domain.StaffMember, shiftName string, matches ShiftNameMatcher) domain.CoverageMetrics {
	if matches == nil {
		matches = ShiftNamesMatch
	}

	filled := 0
	for _, slot := range slots {
		if slot.UserID != nil {
			filled++
		}
	}

	eligible := 0
	for _, member := range staff {
		if !member.IsActive || member.DeletedAt != nil {
			continue
		}
		if strings.Contains(strings.ToLower(member.Role), excludedManagementRole) {
			continue
		}
		if member.DefaultShiftPreference != nil && !matches(*member.DefaultShiftPreference, shiftName) {
			continue
		}
		eligible++
	}

	percentage := 0.0
	if eligible > 0 {
		percentage = float64(filled) / float64(eligible) * 100
	}

	return domain.CoverageMetrics{
		TotalSlots:         len(slots),
		FilledSlots:        filled,
		VacantSlots:        len(slots) - filled,
		CoveragePercentage: percentage,
		AvailableStaff:     eligible,
		ActualStaff:        filled,
		// 预留字段，目前不产生任何警告
		Warnings: []string{},
	}
}
