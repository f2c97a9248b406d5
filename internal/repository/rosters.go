package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/roster"
)

// rosterRows 把左连接查询的行聚合成完整的班表对象。
// 一张班表的槽位按 position 升序返回，保证编辑器里的顺序稳定
func (r *Repository) getRostersWhere(where string, args ...any) ([]*domain.Roster, error) {
	query := `
		SELECT
			ro.id,
			ro.store_id,
			ro.date,
			ro.shift_id,
			ro.status,
			ro.coverage,
			ro.created_at,
			ro.updated_at,
			ro.version,
			rs.id,
			rs.user_id,
			rs.start_time,
			rs.end_time,
			rs.status,
			rs.notes,
			rs.actuals,
			rst.task_id
		FROM rosters ro
		LEFT JOIN roster_slots rs ON ro.id = rs.roster_id
		LEFT JOIN roster_slot_tasks rst ON rs.id = rst.slot_id
		WHERE ` + where + `
		ORDER BY ro.shift_id, rs.position
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rosters := []*domain.Roster{}
	rostersMap := make(map[string]*domain.Roster)   // rosterID -> roster
	slotsMap := make(map[string]*domain.RosterSlot) // slotID -> slot

	for rows.Next() {
		var row struct {
			rosterID   string
			storeID    string
			date       string
			shiftID    int64
			status     domain.RosterStatus
			coverage   []byte
			createdAt  time.Time
			updatedAt  time.Time
			version    int32
			slotID     sql.NullString
			userID     sql.NullInt64
			startTime  sql.NullString
			endTime    sql.NullString
			slotStatus sql.NullString
			notes      sql.NullString
			actuals    []byte
			taskID     sql.NullInt64
		}

		dst := []any{
			&row.rosterID,
			&row.storeID,
			&row.date,
			&row.shiftID,
			&row.status,
			&row.coverage,
			&row.createdAt,
			&row.updatedAt,
			&row.version,
			&row.slotID,
			&row.userID,
			&row.startTime,
			&row.endTime,
			&row.slotStatus,
			&row.notes,
			&row.actuals,
			&row.taskID,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		ro, exists := rostersMap[row.rosterID]
		if !exists {
			ro = &domain.Roster{
				ID:        row.rosterID,
				StoreID:   row.storeID,
				Date:      row.date,
				ShiftID:   row.shiftID,
				Slots:     []*domain.RosterSlot{},
				Status:    row.status,
				CreatedAt: row.createdAt,
				UpdatedAt: row.updatedAt,
				Version:   row.version,
			}
			if len(row.coverage) > 0 {
				if err := json.Unmarshal(row.coverage, &ro.Coverage); err != nil {
					return nil, err
				}
			}
			if ro.Coverage.Warnings == nil {
				ro.Coverage.Warnings = []string{}
			}
			rostersMap[row.rosterID] = ro
			rosters = append(rosters, ro)
		}

		if !row.slotID.Valid {
			// 班表保存时至少有一个槽位，这里只是为了代码的健壮性
			continue
		}

		slot, exists := slotsMap[row.slotID.String]
		if !exists {
			slot = &domain.RosterSlot{
				ID:            row.slotID.String,
				RosterID:      row.rosterID,
				ShiftID:       row.shiftID,
				Date:          row.date,
				AssignedTasks: []int64{},
				StartTime:     row.startTime.String,
				EndTime:       row.endTime.String,
				Status:        domain.RosterStatus(row.slotStatus.String),
				Notes:         row.notes.String,
			}
			if row.userID.Valid {
				slot.UserID = &row.userID.Int64
			}
			if len(row.actuals) > 0 {
				slot.Actuals = &domain.SlotActuals{}
				if err := json.Unmarshal(row.actuals, slot.Actuals); err != nil {
					return nil, err
				}
			}
			slotsMap[row.slotID.String] = slot
			ro.Slots = append(ro.Slots, slot)
		}

		if !row.taskID.Valid {
			// 这个槽位没有任务，这是有可能的
			continue
		}

		slot.AssignedTasks = append(slot.AssignedTasks, row.taskID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rosters, nil
}

func (r *Repository) GetRostersByDate(date string) ([]*domain.Roster, error) {
	return r.getRostersWhere("ro.date = $1", date)
}

func (r *Repository) GetRosterByDateAndShift(date string, shiftID int64) (*domain.Roster, error) {
	rosters, err := r.getRostersWhere("ro.date = $1 AND ro.shift_id = $2", date, shiftID)
	if err != nil {
		return nil, err
	}
	if len(rosters) == 0 {
		return nil, sql.ErrNoRows
	}

	return rosters[0], nil
}

func (r *Repository) GetRosterByID(id string) (*domain.Roster, error) {
	rosters, err := r.getRostersWhere("ro.id = $1", id)
	if err != nil {
		return nil, err
	}
	if len(rosters) == 0 {
		return nil, sql.ErrNoRows
	}

	return rosters[0], nil
}

// SaveRoster 持久化一张班表。覆盖率在入库前用库内员工数据重新计算，
// 不信任调用方传入的数字
func (r *Repository) SaveRoster(ro *domain.Roster) (*domain.Roster, error) {
	shift, err := r.GetShiftDefinitionByID(ro.ShiftID)
	if err != nil {
		return nil, err
	}
	staff, err := r.GetAllStaffMembers()
	if err != nil {
		return nil, err
	}

	saved := *ro
	if saved.StoreID == "" {
		saved.StoreID = r.cfg.Store.ID
	}
	saved.Coverage = roster.ComputeCoverage(ro.Slots, staff, shift.Name, nil)

	coverage, err := json.Marshal(saved.Coverage)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if saved.ID == "" {
		saved.ID = uuid.NewString()

		query := `
			INSERT INTO rosters (id, store_id, date, shift_id, status, coverage)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at, version
		`

		params := []any{saved.ID, saved.StoreID, saved.Date, saved.ShiftID, saved.Status, coverage}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&saved.CreatedAt, &saved.UpdatedAt, &saved.Version); err != nil {
			return nil, err
		}
	} else {
		query := `
			UPDATE rosters
			SET
				status = $1,
				coverage = $2,
				updated_at = NOW(),
				version = version + 1
			WHERE id = $3 AND version = $4
			RETURNING created_at, updated_at, version
		`

		params := []any{saved.Status, coverage, saved.ID, saved.Version}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&saved.CreatedAt, &saved.UpdatedAt, &saved.Version); err != nil {
			return nil, err
		}
	}

	// 先将之前的槽位删除，roster_slot_tasks 随外键级联删除
	query := `DELETE FROM roster_slots WHERE roster_id = $1`
	if _, err := tx.ExecContext(ctx, query, saved.ID); err != nil {
		return nil, err
	}

	saved.Slots = make([]*domain.RosterSlot, 0, len(ro.Slots))
	for position, slot := range ro.Slots {
		s := *slot
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		s.RosterID = saved.ID

		var actuals []byte
		if s.Actuals != nil {
			if actuals, err = json.Marshal(s.Actuals); err != nil {
				return nil, err
			}
		}

		query := `
			INSERT INTO roster_slots (id, roster_id, user_id, shift_id, date, start_time, end_time, status, notes, actuals, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`

		params := []any{s.ID, s.RosterID, s.UserID, s.ShiftID, s.Date, s.StartTime, s.EndTime, s.Status, s.Notes, actuals, position}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return nil, err
		}

		for _, taskID := range s.AssignedTasks {
			query := `
				INSERT INTO roster_slot_tasks (slot_id, task_id)
				VALUES ($1, $2)
			`

			if _, err := tx.ExecContext(ctx, query, s.ID, taskID); err != nil {
				return nil, err
			}
		}

		saved.Slots = append(saved.Slots, &s)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &saved, nil
}

// PublishRoster 将班表连同所有槽位置为 published，返回发布后的完整班表
func (r *Repository) PublishRoster(id string) (*domain.Roster, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE rosters
		SET
			status = $1,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $2
		RETURNING id
	`

	var rosterID string
	if err := tx.QueryRowContext(ctx, query, domain.RosterStatusPublished, id).Scan(&rosterID); err != nil {
		return nil, err
	}

	query = `UPDATE roster_slots SET status = $1 WHERE roster_id = $2`
	if _, err := tx.ExecContext(ctx, query, domain.RosterStatusPublished, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetRosterByID(id)
}
