package repository

import (
	"context"
	"time"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

func (r *Repository) GetAllShiftDefinitions() ([]*domain.ShiftDefinition, error) {
	query := `
		SELECT id, name, start_time, end_time, duration_hours, display_order, is_active, created_at, version
		FROM shift_definitions
		ORDER BY display_order
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := []*domain.ShiftDefinition{}
	for rows.Next() {
		var shift domain.ShiftDefinition
		dst := []any{
			&shift.ID,
			&shift.Name,
			&shift.StartTime,
			&shift.EndTime,
			&shift.DurationHours,
			&shift.DisplayOrder,
			&shift.IsActive,
			&shift.CreatedAt,
			&shift.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, &shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) GetActiveShiftDefinitions() ([]*domain.ShiftDefinition, error) {
	shifts, err := r.GetAllShiftDefinitions()
	if err != nil {
		return nil, err
	}

	active := []*domain.ShiftDefinition{}
	for _, shift := range shifts {
		if shift.IsActive {
			active = append(active, shift)
		}
	}

	return active, nil
}

func (r *Repository) GetShiftDefinitionByID(id int64) (*domain.ShiftDefinition, error) {
	query := `
		SELECT name, start_time, end_time, duration_hours, display_order, is_active, created_at, version
		FROM shift_definitions WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	shift := &domain.ShiftDefinition{
		ID: id,
	}

	dst := []any{
		&shift.Name,
		&shift.StartTime,
		&shift.EndTime,
		&shift.DurationHours,
		&shift.DisplayOrder,
		&shift.IsActive,
		&shift.CreatedAt,
		&shift.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return shift, nil
}

func (r *Repository) CreateShiftDefinition(shift *domain.ShiftDefinition) error {
	query := `
		INSERT INTO shift_definitions (name, start_time, end_time, duration_hours, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{
		shift.Name,
		shift.StartTime,
		shift.EndTime,
		shift.DurationHours,
		shift.DisplayOrder,
		shift.IsActive,
	}
	dst := []any{&shift.ID, &shift.CreatedAt, &shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateShiftDefinition(shift *domain.ShiftDefinition) error {
	query := `
		UPDATE shift_definitions
		SET
			name = $1,
			start_time = $2,
			end_time = $3,
			duration_hours = $4,
			display_order = $5,
			is_active = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{
		shift.Name,
		shift.StartTime,
		shift.EndTime,
		shift.DurationHours,
		shift.DisplayOrder,
		shift.IsActive,
		shift.ID,
		shift.Version,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&shift.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteShiftDefinition(id int64) error {
	query := `
		DELETE FROM shift_definitions WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
