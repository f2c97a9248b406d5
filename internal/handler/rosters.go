package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/roster"
)

func rosterListCacheKey(date string) string {
	return fmt.Sprintf("rosters_%s", date)
}

// GetRostersByDate 返回某一天所有班次的班表列表。
// 结果会短暂缓存在 redis 中，缓存不可用时直接回源数据库
func (h *Handler) GetRostersByDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		h.errorResponse(w, r, "缺少 date 参数")
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		h.errorResponse(w, r, "日期格式无效，应为 YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	cached, err := h.redisClient.Get(ctx, rosterListCacheKey(date)).Result()
	if err == nil {
		rosters := []*domain.Roster{}
		if err := json.Unmarshal([]byte(cached), &rosters); err == nil {
			h.successResponse(w, r, "获取班表列表成功", rosters)
			return
		}
		// 缓存内容损坏时当作未命中
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("读取班表列表缓存失败", "date", date, "error", err)
	}

	rosters, err := h.repository.GetRostersByDate(date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if data, err := json.Marshal(rosters); err == nil {
		if err := h.redisClient.Set(ctx, rosterListCacheKey(date), data, time.Duration(h.config.Roster.CacheExpiration)*time.Second).Err(); err != nil {
			slog.Warn("写入班表列表缓存失败", "date", date, "error", err)
		}
	}

	h.successResponse(w, r, "获取班表列表成功", rosters)
}

func (h *Handler) invalidateRosterListCache(date string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	if err := h.redisClient.Del(ctx, rosterListCacheKey(date)).Err(); err != nil {
		slog.Warn("清除班表列表缓存失败", "date", date, "error", err)
	}
}

func (h *Handler) GetRosterSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(RosterSessionCtx).(*roster.Session)

	data := struct {
		*roster.SessionSnapshot
		Shift *domain.ShiftDefinition `json:"shift"`
		Tasks []*domain.Task          `json:"tasks"`
		Staff []*domain.StaffMember   `json:"staff"`
	}{
		SessionSnapshot: session.Snapshot(),
		Shift:           session.Shift(),
		Tasks:           session.Tasks(),
		Staff:           session.Staff(),
	}

	h.successResponse(w, r, "获取班表编辑会话成功", data)
}

func (h *Handler) AssignTask(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(RosterSessionCtx).(*roster.Session)

	var req struct {
		UserID int64 `json:"userId" validate:"required"`
		TaskID int64 `json:"taskId" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !sessionHasStaff(session, req.UserID) {
		h.errorResponse(w, r, "员工不存在")
		return
	}
	if !sessionHasTask(session, req.TaskID) {
		h.errorResponse(w, r, "任务不存在")
		return
	}

	if err := session.Assign(req.UserID, req.TaskID); err != nil {
		h.rosterSessionError(w, r, err)
		return
	}

	h.successResponse(w, r, "指派任务成功", session.Snapshot())
}

func (h *Handler) UnassignTask(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(RosterSessionCtx).(*roster.Session)

	var req struct {
		UserID int64 `json:"userId" validate:"required"`
		TaskID int64 `json:"taskId" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := session.Unassign(req.UserID, req.TaskID); err != nil {
		h.rosterSessionError(w, r, err)
		return
	}

	h.successResponse(w, r, "取消指派成功", session.Snapshot())
}

func (h *Handler) UpdateSlotNotes(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(RosterSessionCtx).(*roster.Session)
	slotID := chi.URLParam(r, "slotID")

	var req struct {
		Notes string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := session.UpdateSlotNotes(slotID, req.Notes); err != nil {
		h.rosterSessionError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新备注成功", session.Snapshot())
}

func (h *Handler) SaveRoster(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(RosterSessionCtx).(*roster.Session)

	saved, err := session.Save()
	if err != nil {
		h.rosterSessionError(w, r, err)
		return
	}

	h.successResponse(w, r, "保存班表成功", saved)
}

func (h *Handler) PublishRoster(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(RosterSessionCtx).(*roster.Session)

	published, err := session.Publish()
	if err != nil {
		h.rosterSessionError(w, r, err)
		return
	}

	// 发布成功后给每个被排班的员工发通知邮件。
	// 邮件失败不影响发布结果，只记录日志
	if err := h.sendRosterPublishedMails(session, published); err != nil {
		slog.Error("发送班表发布通知失败", "rosterID", published.ID, "error", err)
	}

	h.successResponse(w, r, "发布班表成功", published)
}

func (h *Handler) CloseRosterSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(RosterSessionCtx).(*roster.Session)

	h.sessions.Close(session.Date(), session.ShiftID())

	h.successResponse(w, r, "关闭班表编辑会话成功", nil)
}

func (h *Handler) rosterSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, roster.ErrSessionNotReady),
		errors.Is(err, roster.ErrSessionClosed),
		errors.Is(err, roster.ErrSaveInFlight),
		errors.Is(err, roster.ErrSlotNotFound),
		errors.Is(err, roster.ErrEmptyRoster):
		h.errorResponse(w, r, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

func sessionHasStaff(session *roster.Session, userID int64) bool {
	for _, member := range session.Staff() {
		if member.ID == userID {
			return true
		}
	}
	return false
}

func sessionHasTask(session *roster.Session, taskID int64) bool {
	for _, task := range session.Tasks() {
		if task.ID == taskID {
			return true
		}
	}
	return false
}

// sendRosterPublishedMails 为每个被排班的员工准备一封通知邮件并投递到消息队列
func (h *Handler) sendRosterPublishedMails(session *roster.Session, published *domain.Roster) error {
	shift := session.Shift()

	staffByID := make(map[int64]*domain.StaffMember)
	for _, member := range session.Staff() {
		staffByID[member.ID] = member
	}
	taskNames := make(map[int64]string)
	for _, task := range session.Tasks() {
		taskNames[task.ID] = task.Name
	}

	for _, slot := range published.Slots {
		if slot.UserID == nil {
			continue
		}
		member, ok := staffByID[*slot.UserID]
		if !ok {
			continue
		}

		names := make([]string, 0, len(slot.AssignedTasks))
		for _, taskID := range slot.AssignedTasks {
			if name, ok := taskNames[taskID]; ok {
				names = append(names, name)
			}
		}

		mailMessage := domain.MailMessage{
			Type: "roster_published",
			To:   member.Email,
			Data: domain.RosterPublishedMailData{
				FullName:  member.FullName(),
				Date:      published.Date,
				ShiftName: shift.Name,
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				TaskNames: names,
			},
		}

		mailData, err := json.Marshal(mailMessage)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
		err = h.mailChannel.PublishWithContext(
			ctx,
			"",
			"roster_mail_queue",
			true,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        mailData,
			},
		)
		cancel()
		if err != nil {
			return err
		}
	}

	return nil
}
