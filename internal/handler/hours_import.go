package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/shiftboard/hours-import/internal/importer"
	"github.com/shiftboard/hours-import/internal/timesheet"
)

// nameMapping 是上传时的 overrides 和提交时的 mapping 共用的结构，姓名 -> 员工 ID
type nameMapping struct {
	Mapping map[string]int64 `json:"mapping" validate:"dive,keys,required,endkeys,gt=0"`
}

func (h *Handler) UploadTimesheet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Import.MaxUploadSize)
	if err := r.ParseMultipartForm(h.config.Import.MaxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.errorResponse(w, r, "上传的文件过大")
		default:
			h.errorResponse(w, r, "无效的上传请求")
		}
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		switch {
		case errors.Is(err, http.ErrMissingFile):
			h.errorResponse(w, r, "请选择要上传的文件")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// overrides 是可选的 JSON 对象
	overrides := nameMapping{}
	if raw := r.FormValue("overrides"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &overrides.Mapping); err != nil {
			h.errorResponse(w, r, "overrides 格式错误")
			return
		}
		if err := h.validate.Struct(overrides); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}

	preview, err := h.importer.Upload(r.Context(), importer.UploadRequest{
		Data:           data,
		FileName:       filepath.Base(header.Filename),
		OrganizationID: organizationID(r),
		Overrides:      overrides.Mapping,
	})
	if err != nil {
		switch {
		case errors.Is(err, timesheet.ErrNoWorkerData), errors.Is(err, timesheet.ErrUnsupportedFormat):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "文件解析成功", preview)
}

func (h *Handler) GetImportPreview(w http.ResponseWriter, r *http.Request) {
	preview, err := h.importer.Preview(r.Context(), chi.URLParam(r, "sessionID"), organizationID(r))
	if err != nil {
		h.importError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取导入预览成功", preview)
}

func (h *Handler) ApplyImport(w http.ResponseWriter, r *http.Request) {
	req := nameMapping{}
	// 请求体可以为空，表示没有手动映射
	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, err := h.importer.Apply(r.Context(), importer.ApplyRequest{
		SessionID:      chi.URLParam(r, "sessionID"),
		OrganizationID: organizationID(r),
		Mapping:        req.Mapping,
	})
	if err != nil {
		h.importError(w, r, err)
		return
	}

	h.successResponse(w, r, "工时导入成功", result)
}

func (h *Handler) DiscardImport(w http.ResponseWriter, r *http.Request) {
	if err := h.importer.Discard(r.Context(), chi.URLParam(r, "sessionID"), organizationID(r)); err != nil {
		h.importError(w, r, err)
		return
	}

	h.successResponse(w, r, "已放弃本次导入", nil)
}

func (h *Handler) importError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, importer.ErrSessionNotFound):
		h.errorResponse(w, r, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
}
