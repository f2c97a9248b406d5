package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/utils"
)

func (h *Handler) GetAllStaffMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.repository.GetAllStaffMembers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有员工成功", members)
}

func (h *Handler) CreateStaffMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName              string  `json:"firstName" validate:"required"`
		LastName               string  `json:"lastName" validate:"required"`
		Email                  string  `json:"email" validate:"required,email"`
		Role                   string  `json:"role" validate:"required"`
		ExperienceLevel        string  `json:"experienceLevel" validate:"required"`
		IsActive               *bool   `json:"isActive"`
		DefaultShiftPreference *string `json:"defaultShiftPreference"`
		WeekOffDays            []int32 `json:"weekOffDays"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateWeekOffDays(req.WeekOffDays); err != nil {
		h.badRequest(w, r, err)
		return
	}

	member := &domain.StaffMember{
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		Email:                  req.Email,
		Role:                   req.Role,
		ExperienceLevel:        req.ExperienceLevel,
		IsActive:               true,
		DefaultShiftPreference: req.DefaultShiftPreference,
		WeekOffDays:            req.WeekOffDays,
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}
	if member.WeekOffDays == nil {
		member.WeekOffDays = []int32{}
	}

	if err := h.repository.CreateStaffMember(member); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "staff_members_email_key":
				h.errorResponse(w, r, "邮箱已被使用")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建员工成功", member)
}

func (h *Handler) GetStaffMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(StaffMemberCtx).(*domain.StaffMember)

	h.successResponse(w, r, "获取员工成功", member)
}

func (h *Handler) UpdateStaffMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(StaffMemberCtx).(*domain.StaffMember)

	var req struct {
		FirstName              *string `json:"firstName"`
		LastName               *string `json:"lastName"`
		Email                  *string `json:"email" validate:"omitempty,email"`
		Role                   *string `json:"role"`
		ExperienceLevel        *string `json:"experienceLevel"`
		IsActive               *bool   `json:"isActive"`
		DefaultShiftPreference *string `json:"defaultShiftPreference"`
		WeekOffDays            []int32 `json:"weekOffDays"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.FirstName != nil {
		member.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		member.LastName = *req.LastName
	}
	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.ExperienceLevel != nil {
		member.ExperienceLevel = *req.ExperienceLevel
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}
	if req.DefaultShiftPreference != nil {
		member.DefaultShiftPreference = req.DefaultShiftPreference
	}
	if req.WeekOffDays != nil {
		if err := utils.ValidateWeekOffDays(req.WeekOffDays); err != nil {
			h.badRequest(w, r, err)
			return
		}
		member.WeekOffDays = req.WeekOffDays
	}

	if err := h.repository.UpdateStaffMember(member); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "staff_members_email_key":
				h.errorResponse(w, r, "邮箱已被使用")
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

	h.successResponse(w, r, "更新员工成功", member)
}

// DeleteStaffMember 软删除，员工从名单中消失但历史班表不受影响
func (h *Handler) DeleteStaffMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(StaffMemberCtx).(*domain.StaffMember)

	if err := h.repository.DeleteStaffMember(member.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除员工成功", nil)
}
