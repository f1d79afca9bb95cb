package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shiftboard/hours-import/internal/config"
	"github.com/shiftboard/hours-import/internal/domain"
	"github.com/shiftboard/hours-import/internal/importer"
	"github.com/shiftboard/hours-import/internal/timesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	users map[string]*domain.User
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

type fakeImporter struct {
	mu        sync.Mutex
	uploads   []importer.UploadRequest
	applies   []importer.ApplyRequest
	discarded []string

	uploadErr error
	applyErr  error
}

func (f *fakeImporter) Upload(_ context.Context, req importer.UploadRequest) (*domain.ImportPreview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, req)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &domain.ImportPreview{SessionID: "s-1", SourceFileName: req.FileName}, nil
}

func (f *fakeImporter) Preview(_ context.Context, sessionID string, orgID int64) (*domain.ImportPreview, error) {
	if sessionID != "s-1" || orgID != 12 {
		return nil, importer.ErrSessionNotFound
	}
	return &domain.ImportPreview{SessionID: sessionID}, nil
}

func (f *fakeImporter) Apply(_ context.Context, req importer.ApplyRequest) (*domain.ApplyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applies = append(f.applies, req)
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	return &domain.ApplyResult{PerWorker: []domain.ApplyWorkerResult{}, NewlyProvisioned: []domain.ProvisionedWorker{}}, nil
}

func (f *fakeImporter) Discard(_ context.Context, sessionID string, orgID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sessionID != "s-1" || orgID != 12 {
		return importer.ErrSessionNotFound
	}
	f.discarded = append(f.discarded, sessionID)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeImporter) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 3600
	cfg.Import.MaxUploadSize = 1 << 20

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &fakeUsers{users: map[string]*domain.User{
		"boss": {ID: 1, OrganizationID: 12, Username: "boss", PasswordHash: string(hash), Role: domain.RoleSupervisor, IsActive: true},
	}}
	imp := &fakeImporter{}

	h, err := NewHandler(cfg, users, imp)
	require.NoError(t, err)
	h.RegisterRoutes()
	return h, imp
}

func authCookie(t *testing.T, h *Handler, role domain.Role, orgID int64) *http.Cookie {
	t.Helper()
	ss, _, err := h.issueToken(&domain.User{ID: 1, OrganizationID: orgID, Role: role})
	require.NoError(t, err)
	return &http.Cookie{Name: tokenCookieName, Value: ss}
}

func serve(h *Handler, req *http.Request) (*httptest.ResponseRecorder, Response) {
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	var resp Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func uploadRequest(t *testing.T, fileName string, content []byte, overrides string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	if overrides != "" {
		require.NoError(t, mw.WriteField("overrides", overrides))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/hours-import/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestLogin(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"boss","password":"password"}`))
	rec, resp := serve(h, req)

	assert.True(t, resp.Success)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tokenCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"boss","password":"wrong"}`))
	_, resp = serve(h, req)
	assert.False(t, resp.Success)
	assert.Equal(t, "用户名不存在或密码错误", resp.Message)
}

func TestHoursImport_RequiresSupervisor(t *testing.T) {
	h, imp := newTestHandler(t)

	req := uploadRequest(t, "march.csv", []byte("x"), "")
	_, resp := serve(h, req)
	assert.False(t, resp.Success)
	assert.Equal(t, "用户未登录", resp.Message)

	req = uploadRequest(t, "march.csv", []byte("x"), "")
	req.AddCookie(authCookie(t, h, domain.RoleWorker, 12))
	_, resp = serve(h, req)
	assert.False(t, resp.Success)
	assert.Equal(t, "权限不足", resp.Message)

	assert.Empty(t, imp.uploads)
}

func TestUploadTimesheet(t *testing.T) {
	h, imp := newTestHandler(t)

	req := uploadRequest(t, "march.xlsx", []byte("content"), `{"Dana K": 7}`)
	req.AddCookie(authCookie(t, h, domain.RoleSupervisor, 12))
	rec, resp := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	require.Len(t, imp.uploads, 1)
	assert.Equal(t, importer.UploadRequest{
		Data:           []byte("content"),
		FileName:       "march.xlsx",
		OrganizationID: 12,
		Overrides:      map[string]int64{"Dana K": 7},
	}, imp.uploads[0])
}

func TestUploadTimesheet_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		overrides string
		uploadErr error
	}{
		{name: "missing file", overrides: `{"Dana K": 7}`},
		{name: "bad overrides", fileName: "march.xlsx", overrides: `["Dana K"]`},
		{name: "non positive id", fileName: "march.xlsx", overrides: `{"Dana K": 0}`},
		{name: "no worker data", fileName: "march.xlsx", uploadErr: timesheet.ErrNoWorkerData},
		{name: "unsupported format", fileName: "march.pdf", uploadErr: timesheet.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, imp := newTestHandler(t)
			imp.uploadErr = tt.uploadErr

			req := uploadRequest(t, tt.fileName, []byte("content"), tt.overrides)
			req.AddCookie(authCookie(t, h, domain.RoleAdmin, 12))
			rec, resp := serve(h, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestUploadTimesheet_TooLarge(t *testing.T) {
	h, imp := newTestHandler(t)
	h.config.Import.MaxUploadSize = 64

	req := uploadRequest(t, "march.xlsx", bytes.Repeat([]byte("x"), 1024), "")
	req.AddCookie(authCookie(t, h, domain.RoleSupervisor, 12))
	_, resp := serve(h, req)

	assert.False(t, resp.Success)
	assert.Empty(t, imp.uploads)
}

func TestApplyImport(t *testing.T) {
	h, imp := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/hours-import/s-1/apply", strings.NewReader(`{"mapping": {"Zeev Bar": 8}}`))
	req.AddCookie(authCookie(t, h, domain.RoleSupervisor, 12))
	_, resp := serve(h, req)

	assert.True(t, resp.Success)
	require.Len(t, imp.applies, 1)
	assert.Equal(t, importer.ApplyRequest{
		SessionID:      "s-1",
		OrganizationID: 12,
		Mapping:        map[string]int64{"Zeev Bar": 8},
	}, imp.applies[0])
}

func TestApplyImport_EmptyBody(t *testing.T) {
	h, imp := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/hours-import/s-1/apply", nil)
	req.AddCookie(authCookie(t, h, domain.RoleSupervisor, 12))
	_, resp := serve(h, req)

	assert.True(t, resp.Success)
	require.Len(t, imp.applies, 1)
	assert.Nil(t, imp.applies[0].Mapping)
}

func TestApplyImport_SessionNotFound(t *testing.T) {
	h, imp := newTestHandler(t)
	imp.applyErr = importer.ErrSessionNotFound

	req := httptest.NewRequest(http.MethodPost, "/hours-import/s-1/apply", strings.NewReader(`{}`))
	req.AddCookie(authCookie(t, h, domain.RoleSupervisor, 12))
	rec, resp := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, importer.ErrSessionNotFound.Error(), resp.Message)
}

func TestApplyImport_InternalError(t *testing.T) {
	h, imp := newTestHandler(t)
	imp.applyErr = sql.ErrConnDone

	req := httptest.NewRequest(http.MethodPost, "/hours-import/s-1/apply", strings.NewReader(`{}`))
	req.AddCookie(authCookie(t, h, domain.RoleSupervisor, 12))
	rec, resp := serve(h, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.Success)
}

func TestPreviewAndDiscard(t *testing.T) {
	h, imp := newTestHandler(t)
	cookie := authCookie(t, h, domain.RoleSupervisor, 12)

	req := httptest.NewRequest(http.MethodGet, "/hours-import/s-1", nil)
	req.AddCookie(cookie)
	_, resp := serve(h, req)
	assert.True(t, resp.Success)

	// 其他组织看不到这个会话
	req = httptest.NewRequest(http.MethodGet, "/hours-import/s-1", nil)
	req.AddCookie(authCookie(t, h, domain.RoleSupervisor, 13))
	_, resp = serve(h, req)
	assert.False(t, resp.Success)

	req = httptest.NewRequest(http.MethodDelete, "/hours-import/s-1", nil)
	req.AddCookie(cookie)
	_, resp = serve(h, req)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"s-1"}, imp.discarded)
}
