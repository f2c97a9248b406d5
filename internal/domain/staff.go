package domain

import "time"

type StaffMember struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	ExperienceLevel string `json:"experienceLevel"`
	IsActive        bool   `json:"isActive"`
	// 员工偏好的班次名称，为 nil 时表示任何班次都可以。
	// 旧数据中存的是枚举值（如 "morning"），新数据存的是展示名（如 "Morning Shift"），
	// 比较时必须经过 roster.ShiftNamesMatch 归一化
	DefaultShiftPreference *string `json:"defaultShiftPreference"`
	// 每周的休息日（0 表示周日）。业务上目前最多只允许一天，但类型上保留集合
	WeekOffDays []int32    `json:"weekOffDays"`
	DeletedAt   *time.Time `json:"deletedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	Version     int32      `json:"-"`
}

func (s *StaffMember) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
