package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/config"
	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/repository"
	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/roster"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	sessions    *roster.Registry

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	h := &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}

	// 会话保存时经过缓存失效包装，保证列表接口不会读到过期数据
	store := &cachingStore{Repository: repo, handler: h}
	h.sessions = roster.NewRegistry(store, time.Duration(cfg.AutoSave.DebounceMS)*time.Millisecond, nil)

	return h, nil
}

// CloseSessions 关闭所有存活的编辑会话，服务器退出前调用
func (h *Handler) CloseSessions() {
	h.sessions.CloseAll()
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/shift-definitions", func(r chi.Router) {
		r.Post("/", h.CreateShiftDefinition)
		r.Get("/", h.GetAllShiftDefinitions)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.shiftDefinition)
			r.Get("/", h.GetShiftDefinition)
			r.Patch("/", h.UpdateShiftDefinition)
			r.Delete("/", h.DeleteShiftDefinition)
		})
	})

	h.Mux.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.CreateTask)
		r.Get("/", h.GetAllTasks)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.task)
			r.Get("/", h.GetTask)
			r.Patch("/", h.UpdateTask)
			r.Delete("/", h.DeleteTask)
		})
	})

	h.Mux.Route("/staff", func(r chi.Router) {
		r.Post("/", h.CreateStaffMember)
		r.Get("/", h.GetAllStaffMembers)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.staffMember)
			r.Get("/", h.GetStaffMember)
			r.Patch("/", h.UpdateStaffMember)
			r.Delete("/", h.DeleteStaffMember)
		})
	})

	h.Mux.Route("/rosters", func(r chi.Router) {
		r.Get("/", h.GetRostersByDate)
		r.Route("/{date}/{shiftID}", func(r chi.Router) {
			r.Use(h.rosterSession)
			r.Get("/", h.GetRosterSession)
			r.Post("/assign", h.AssignTask)
			r.Post("/unassign", h.UnassignTask)
			r.Patch("/slots/{slotID}/notes", h.UpdateSlotNotes)
			r.Post("/save", h.SaveRoster)
			r.Post("/publish", h.PublishRoster)
			r.Delete("/", h.CloseRosterSession)
		})
	})
}
