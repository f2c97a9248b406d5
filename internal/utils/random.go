package utils

import (
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
	"建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣", "悦",
}

func GenerateRandomChineseName() (surname string, givenName string) {
	surname = commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1

	for i := 0; i < nameLength; i++ {
		givenName += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname, givenName
}

var digits = "0123456789"

// GenerateUsernameFromChineseName 把中文姓名转成拼音再拼上随机数字，
// 用作邮箱的本地部分
func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := strings.Join(pinyinArray, "")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var roles = []string{
	"Sales Associate",
	"Cashier",
	"Stock Clerk",
	"Shift Supervisor",
	"Store Manager",
}

func GenerateRandomRole() string {
	return roles[rand.Intn(len(roles))]
}

var experienceLevels = []string{"junior", "mid", "senior"}

func GenerateRandomExperienceLevel() string {
	return experienceLevels[rand.Intn(len(experienceLevels))]
}

// 旧数据里班次偏好存的是枚举值，新数据存的是班次展示名。
// 种子数据两种都要出现，覆盖率的名称匹配才能在真实形态的数据上跑
var shiftPreferences = []string{
	"morning", "afternoon", "night",
	"Morning Shift", "Afternoon Shift", "Night Shift",
}

func GenerateRandomShiftPreference() *string {
	// 约三分之一的员工没有偏好
	if rand.Intn(3) == 0 {
		return nil
	}
	preference := shiftPreferences[rand.Intn(len(shiftPreferences))]
	return &preference
}

// GenerateRandomWeekOffDays 最多一天休息日，0 表示周日
func GenerateRandomWeekOffDays() []int32 {
	if rand.Intn(4) == 0 {
		return []int32{}
	}
	return []int32{int32(rand.Intn(7))}
}

func GenerateRandomStaffMember(emailDomainName string) *domain.StaffMember {
	surname, givenName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(surname + givenName)

	return &domain.StaffMember{
		FirstName:              givenName,
		LastName:               surname,
		Email:                  username + "@" + emailDomainName,
		Role:                   GenerateRandomRole(),
		ExperienceLevel:        GenerateRandomExperienceLevel(),
		IsActive:               rand.Intn(10) != 0, // 少数员工处于停用状态
		DefaultShiftPreference: GenerateRandomShiftPreference(),
		WeekOffDays:            GenerateRandomWeekOffDays(),
	}
}
