package roster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

func rosterWithUsers(shiftID int64, userIDs ...int64) *domain.Roster {
	r := &domain.Roster{ShiftID: shiftID}
	for _, id := range userIDs {
		uid := id
		r.Slots = append(r.Slots, &domain.RosterSlot{UserID: &uid})
	}
	return r
}

func TestUsersInOtherShifts(t *testing.T) {
	t.Run("union over sibling rosters only", func(t *testing.T) {
		rosters := []*domain.Roster{
			rosterWithUsers(1, 10, 20),
			rosterWithUsers(2, 20, 30),
			rosterWithUsers(3, 40),
		}

		users := UsersInOtherShifts(rosters, 1)

		require.Len(t, users, 3)
		require.Contains(t, users, int64(20))
		require.Contains(t, users, int64(30))
		require.Contains(t, users, int64(40))
		// 只出现在当前班次的用户绝不能进入集合
		require.NotContains(t, users, int64(10))
	})

	t.Run("vacant slots contribute nothing", func(t *testing.T) {
		sibling := rosterWithUsers(2, 10)
		sibling.Slots = append(sibling.Slots, &domain.RosterSlot{})

		users := UsersInOtherShifts([]*domain.Roster{sibling}, 1)
		require.Len(t, users, 1)
	})

	t.Run("empty input yields an empty set", func(t *testing.T) {
		require.Empty(t, UsersInOtherShifts(nil, 1))
		require.Empty(t, UsersInOtherShifts([]*domain.Roster{nil}, 1))
	})
}
