package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/utils"
)

func (h *Handler) GetAllShiftDefinitions(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.repository.GetAllShiftDefinitions()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有班次成功", shifts)
}

func (h *Handler) CreateShiftDefinition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name" validate:"required"`
		StartTime    string `json:"startTime" validate:"required"`
		EndTime      string `json:"endTime" validate:"required"`
		DisplayOrder int32  `json:"displayOrder"`
		IsActive     *bool  `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := &domain.ShiftDefinition{
		Name:         req.Name,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		shift.IsActive = *req.IsActive
	}

	if err := utils.ValidateShiftDefinitionTime(shift); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateShiftDefinition(shift); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "shift_definitions_name_key":
				h.errorResponse(w, r, "班次名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建班次成功", shift)
}

func (h *Handler) GetShiftDefinition(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftDefinitionCtx).(*domain.ShiftDefinition)

	h.successResponse(w, r, "获取班次成功", shift)
}

func (h *Handler) UpdateShiftDefinition(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftDefinitionCtx).(*domain.ShiftDefinition)

	var req struct {
		Name         *string `json:"name"`
		StartTime    *string `json:"startTime"`
		EndTime      *string `json:"endTime"`
		DisplayOrder *int32  `json:"displayOrder"`
		IsActive     *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		shift.Name = *req.Name
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if req.DisplayOrder != nil {
		shift.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		shift.IsActive = *req.IsActive
	}

	// 时间窗口变化后时长需要重新计算
	if err := utils.ValidateShiftDefinitionTime(shift); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateShiftDefinition(shift); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "shift_definitions_name_key":
				h.errorResponse(w, r, "班次名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新班次成功", shift)
}

func (h *Handler) DeleteShiftDefinition(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftDefinitionCtx).(*domain.ShiftDefinition)

	if err := h.repository.DeleteShiftDefinition(shift.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "rosters_shift_id_fkey", "roster_slots_shift_id_fkey":
				h.errorResponse(w, r, "该班次已被班表使用，无法删除")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除班次成功", nil)
}
