package utils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

func TestValidateShiftDefinitionTime(t *testing.T) {
	t.Run("合法的时间窗口会算出时长", func(t *testing.T) {
		shift := &domain.ShiftDefinition{StartTime: "08:00", EndTime: "17:00"}
		require.NoError(t, ValidateShiftDefinitionTime(shift))
		require.InDelta(t, 9.0, shift.DurationHours, 1e-9)
	})

	t.Run("半小时粒度", func(t *testing.T) {
		shift := &domain.ShiftDefinition{StartTime: "12:00", EndTime: "20:30"}
		require.NoError(t, ValidateShiftDefinitionTime(shift))
		require.InDelta(t, 8.5, shift.DurationHours, 1e-9)
	})

	t.Run("格式错误", func(t *testing.T) {
		shift := &domain.ShiftDefinition{StartTime: "8am", EndTime: "17:00"}
		require.Error(t, ValidateShiftDefinitionTime(shift))
	})

	t.Run("结束时间不晚于开始时间", func(t *testing.T) {
		shift := &domain.ShiftDefinition{StartTime: "17:00", EndTime: "17:00"}
		require.Error(t, ValidateShiftDefinitionTime(shift))

		shift = &domain.ShiftDefinition{StartTime: "17:00", EndTime: "08:00"}
		require.Error(t, ValidateShiftDefinitionTime(shift))
	})
}

func TestValidateWeekOffDays(t *testing.T) {
	require.NoError(t, ValidateWeekOffDays(nil))
	require.NoError(t, ValidateWeekOffDays([]int32{0}))
	require.NoError(t, ValidateWeekOffDays([]int32{6}))
	require.Error(t, ValidateWeekOffDays([]int32{7}))
	require.Error(t, ValidateWeekOffDays([]int32{-1}))
	require.Error(t, ValidateWeekOffDays([]int32{3, 3}))
}

func TestGenerateRandomStaffMember(t *testing.T) {
	for i := 0; i < 50; i++ {
		member := GenerateRandomStaffMember("example.com")
		require.NotEmpty(t, member.FirstName)
		require.NotEmpty(t, member.LastName)
		require.Contains(t, member.Email, "@example.com")
		require.NotEmpty(t, member.Role)
		require.NoError(t, ValidateWeekOffDays(member.WeekOffDays))
	}
}
