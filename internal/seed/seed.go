package seed

import (
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/repository"
	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/utils"
)

// 门店的标准三班制，时长由时间窗口算出
var defaultShifts = []domain.ShiftDefinition{
	{Name: "Morning Shift", StartTime: "08:00", EndTime: "17:00", DisplayOrder: 1, IsActive: true},
	{Name: "Afternoon Shift", StartTime: "12:00", EndTime: "21:00", DisplayOrder: 2, IsActive: true},
	{Name: "Night Shift", StartTime: "21:00", EndTime: "23:59", DisplayOrder: 3, IsActive: true},
}

var defaultTasks = []domain.Task{
	{Name: "Cleaning", Category: "operations"},
	{Name: "Stocking", Category: "operations"},
	{Name: "Billing", Category: "front"},
	{Name: "Customer Service", Category: "front"},
	{Name: "Inventory Check", Category: "operations"},
}

// SeedCatalogs 插入默认的班次和任务目录，已存在的跳过
func SeedCatalogs(r *repository.Repository) {
	for _, shift := range defaultShifts {
		s := shift
		if err := utils.ValidateShiftDefinitionTime(&s); err != nil {
			slog.Error("班次时间不合法", "name", s.Name, "error", err)
			continue
		}

		if err := r.CreateShiftDefinition(&s); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "shift_definitions_name_key" {
				// 已经插入过了
				continue
			}
			slog.Error("插入班次失败", "name", s.Name, "error", err)
			continue
		}
		slog.Info("插入班次成功", "name", s.Name, "id", s.ID)
	}

	for _, task := range defaultTasks {
		t := task
		if err := r.CreateTask(&t); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "tasks_name_key" {
				continue
			}
			slog.Error("插入任务失败", "name", t.Name, "error", err)
			continue
		}
		slog.Info("插入任务成功", "name", t.Name, "id", t.ID)
	}

	slog.Info("目录数据插入完成")
}

// SeedStaff 插入 n 个随机员工
func SeedStaff(r *repository.Repository, n int, emailDomain string) {
	cnt := n
	for i := 0; i < n; i++ {
		member := utils.GenerateRandomStaffMember(emailDomain)
		if err := r.CreateStaffMember(member); err != nil {
			slog.Error("插入员工失败", "email", member.Email, "error", err)
			continue
		}
		cnt--
	}

	slog.Info("插入员工成功", "count", n-cnt)
}
