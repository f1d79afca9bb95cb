package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/shiftboard/hours-import/internal/config"
	"github.com/shiftboard/hours-import/internal/domain"
	"github.com/shiftboard/hours-import/internal/importer"
)

type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// ImportService 由 *importer.Coordinator 实现
type ImportService interface {
	Upload(ctx context.Context, req importer.UploadRequest) (*domain.ImportPreview, error)
	Preview(ctx context.Context, sessionID string, orgID int64) (*domain.ImportPreview, error)
	Apply(ctx context.Context, req importer.ApplyRequest) (*domain.ApplyResult, error)
	Discard(ctx context.Context, sessionID string, orgID int64) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	users      UserRepository
	importer   ImportService
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, users UserRepository, importService ImportService) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		users:      users,
		importer:   importService,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用，且只有主管和管理员可以导入工时
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleAdmin}))

		r.Route("/hours-import", func(r chi.Router) {
			r.Post("/upload", h.UploadTimesheet)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.GetImportPreview)
				r.Post("/apply", h.ApplyImport)
				r.Delete("/", h.DiscardImport)
			})
		})
	})
}
