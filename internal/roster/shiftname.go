package roster

import "strings"

// ShiftNameMatcher 判断两个班次名称是否指同一个班次。
// 覆盖率计算和员工偏好过滤都通过它来比较名称，方便以后把偏好迁移到班次 ID
type ShiftNameMatcher func(a, b string) bool

// ShiftNamesMatch 默认的班次名称等价规则。
// 旧数据中的偏好是枚举值（如 "morning"），当前班次名称是展示名（如 "Morning Shift"），
// 两者应视为相同，因此比较前先做归一化
func ShiftNamesMatch(a, b string) bool {
	return normalizeShiftName(a) == normalizeShiftName(b)
}

func normalizeShiftName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, " shift")
	return strings.TrimSpace(name)
}
