package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

// week_off_days 在数据库中存为 jsonb 数组
func scanWeekOffDays(raw []byte, member *domain.StaffMember) error {
	if len(raw) == 0 {
		member.WeekOffDays = []int32{}
		return nil
	}
	return json.Unmarshal(raw, &member.WeekOffDays)
}

func (r *Repository) GetAllStaffMembers() ([]*domain.StaffMember, error) {
	query := `
		SELECT id, first_name, last_name, email, role, experience_level, is_active,
			default_shift_preference, week_off_days, deleted_at, created_at, version
		FROM staff_members
		WHERE deleted_at IS NULL
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*domain.StaffMember{}
	for rows.Next() {
		var member domain.StaffMember
		var weekOffDays []byte

		dst := []any{
			&member.ID,
			&member.FirstName,
			&member.LastName,
			&member.Email,
			&member.Role,
			&member.ExperienceLevel,
			&member.IsActive,
			&member.DefaultShiftPreference,
			&weekOffDays,
			&member.DeletedAt,
			&member.CreatedAt,
			&member.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := scanWeekOffDays(weekOffDays, &member); err != nil {
			return nil, err
		}

		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *Repository) GetStaffMemberByID(id int64) (*domain.StaffMember, error) {
	query := `
		SELECT first_name, last_name, email, role, experience_level, is_active,
			default_shift_preference, week_off_days, deleted_at, created_at, version
		FROM staff_members
		WHERE id = $1 AND deleted_at IS NULL
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	member := &domain.StaffMember{
		ID: id,
	}
	var weekOffDays []byte

	dst := []any{
		&member.FirstName,
		&member.LastName,
		&member.Email,
		&member.Role,
		&member.ExperienceLevel,
		&member.IsActive,
		&member.DefaultShiftPreference,
		&weekOffDays,
		&member.DeletedAt,
		&member.CreatedAt,
		&member.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	if err := scanWeekOffDays(weekOffDays, member); err != nil {
		return nil, err
	}

	return member, nil
}

func (r *Repository) CreateStaffMember(member *domain.StaffMember) error {
	query := `
		INSERT INTO staff_members (first_name, last_name, email, role, experience_level, is_active, default_shift_preference, week_off_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	weekOffDays, err := json.Marshal(member.WeekOffDays)
	if err != nil {
		return err
	}

	params := []any{
		member.FirstName,
		member.LastName,
		member.Email,
		member.Role,
		member.ExperienceLevel,
		member.IsActive,
		member.DefaultShiftPreference,
		weekOffDays,
	}
	dst := []any{&member.ID, &member.CreatedAt, &member.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateStaffMember(member *domain.StaffMember) error {
	query := `
		UPDATE staff_members
		SET
			first_name = $1,
			last_name = $2,
			email = $3,
			role = $4,
			experience_level = $5,
			is_active = $6,
			default_shift_preference = $7,
			week_off_days = $8,
			version = version + 1
		WHERE id = $9 AND version = $10 AND deleted_at IS NULL
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	weekOffDays, err := json.Marshal(member.WeekOffDays)
	if err != nil {
		return err
	}

	params := []any{
		member.FirstName,
		member.LastName,
		member.Email,
		member.Role,
		member.ExperienceLevel,
		member.IsActive,
		member.DefaultShiftPreference,
		weekOffDays,
		member.ID,
		member.Version,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&member.Version); err != nil {
		return err
	}

	return nil
}

// DeleteStaffMember 软删除，历史班表中的引用保持可追溯
func (r *Repository) DeleteStaffMember(id int64) error {
	query := `
		UPDATE staff_members SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
