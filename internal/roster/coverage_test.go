package roster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

func pref(name string) *string {
	return &name
}

func activeStaff(id int64, role string, preference *string) *domain.StaffMember {
	return &domain.StaffMember{
		ID:                     id,
		FirstName:              "员工",
		Role:                   role,
		IsActive:               true,
		DefaultShiftPreference: preference,
	}
}

func filledSlots(n int) []*domain.RosterSlot {
	slots := make([]*domain.RosterSlot, n)
	for i := range slots {
		id := int64(100 + i)
		slots[i] = &domain.RosterSlot{ID: "s", UserID: &id, AssignedTasks: []int64{1}}
	}
	return slots
}

func TestComputeCoverage(t *testing.T) {
	t.Run("scenario: 2 filled of 4 eligible is 50 percent", func(t *testing.T) {
		staff := []*domain.StaffMember{
			activeStaff(1, "Sales Associate", nil),
			activeStaff(2, "Sales Associate", nil),
			activeStaff(3, "Senior Associate", nil),
			activeStaff(4, "Shift Supervisor", nil),
		}

		metrics := ComputeCoverage(filledSlots(2), staff, "Morning Shift", nil)

		require.Equal(t, 2, metrics.FilledSlots)
		require.Equal(t, 0, metrics.VacantSlots)
		require.Equal(t, 4, metrics.AvailableStaff)
		require.InDelta(t, 50.0, metrics.CoveragePercentage, 1e-9)
	})

	t.Run("zero eligible staff yields zero, never NaN", func(t *testing.T) {
		metrics := ComputeCoverage(filledSlots(0), nil, "Morning Shift", nil)

		require.Equal(t, 0, metrics.AvailableStaff)
		require.Equal(t, 0.0, metrics.CoveragePercentage)

		// 分母为 0 但有已填充槽位时同样不允许出现 NaN/Inf
		metrics = ComputeCoverage(filledSlots(3), nil, "Morning Shift", nil)
		require.Equal(t, 0.0, metrics.CoveragePercentage)
	})

	t.Run("management roles are excluded case-insensitively", func(t *testing.T) {
		staff := []*domain.StaffMember{
			activeStaff(1, "Store Manager", nil),
			activeStaff(2, "store MANAGER", nil),
			activeStaff(3, "Sales Associate", nil),
		}

		metrics := ComputeCoverage(nil, staff, "Morning Shift", nil)
		require.Equal(t, 1, metrics.AvailableStaff)
	})

	t.Run("inactive and deleted staff are excluded", func(t *testing.T) {
		inactive := activeStaff(1, "Sales Associate", nil)
		inactive.IsActive = false

		deleted := activeStaff(2, "Sales Associate", nil)
		now := deleted.CreatedAt
		deleted.DeletedAt = &now

		staff := []*domain.StaffMember{inactive, deleted, activeStaff(3, "Sales Associate", nil)}

		metrics := ComputeCoverage(nil, staff, "Morning Shift", nil)
		require.Equal(t, 1, metrics.AvailableStaff)
	})

	t.Run("shift preference filters via the name matcher", func(t *testing.T) {
		staff := []*domain.StaffMember{
			activeStaff(1, "Sales Associate", pref("morning")),       // 旧枚举值，应匹配
			activeStaff(2, "Sales Associate", pref("Morning Shift")), // 当前展示名
			activeStaff(3, "Sales Associate", pref("evening")),       // 别的班次
			activeStaff(4, "Sales Associate", nil),                   // 无偏好，任何班次可用
		}

		metrics := ComputeCoverage(nil, staff, "Morning Shift", nil)
		require.Equal(t, 3, metrics.AvailableStaff)
	})

	t.Run("over-staffing exceeds 100 and is not clamped", func(t *testing.T) {
		staff := []*domain.StaffMember{activeStaff(1, "Sales Associate", nil)}

		metrics := ComputeCoverage(filledSlots(3), staff, "Morning Shift", nil)
		require.InDelta(t, 300.0, metrics.CoveragePercentage, 1e-9)
	})

	t.Run("vacant slots are counted", func(t *testing.T) {
		slots := append(filledSlots(2), &domain.RosterSlot{ID: "vacant"})

		metrics := ComputeCoverage(slots, nil, "Morning Shift", nil)
		require.Equal(t, 3, metrics.TotalSlots)
		require.Equal(t, 2, metrics.FilledSlots)
		require.Equal(t, 1, metrics.VacantSlots)
	})

	t.Run("warnings list is present and empty", func(t *testing.T) {
		metrics := ComputeCoverage(nil, nil, "Morning Shift", nil)
		require.NotNil(t, metrics.Warnings)
		require.Empty(t, metrics.Warnings)
	})
}
