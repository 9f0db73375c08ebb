package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/dto"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/service"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult   *dto.UserResponse
	registerErr      error
	loginResult      *dto.TokenResponse
	loginErr         error
	refreshResult    *dto.TokenResponse
	refreshErr       error
	logoutErr        error
	getCurrentResult *dto.UserDetailResponse
	getCurrentErr    error
	changePassErr    error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.UserResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string, _ time.Time) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserDetailResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock ReviewService ──

type mockReviewService struct {
	createObsResult  *dto.ObservationResponse
	createObsErr     error
	getObsResult     *dto.ObservationResponse
	getObsErr        error
	listResult       []dto.ObservationResponse
	listErr          error
	startResult      *dto.ObservationResponse
	startErr         error
	correctionResult *dto.CorrectionResponse
	correctionErr    error
	deleteErr        error
	verifyResult     *dto.ObservationResponse
	verifyErr        error
	archiveErr       error
	restoreErr       error
	countResult      int64
	countErr         error
}

func (m *mockReviewService) CreateObservation(_ context.Context, _, _ string, _ *dto.CreateObservationRequest) (*dto.ObservationResponse, error) {
	return m.createObsResult, m.createObsErr
}
func (m *mockReviewService) GetObservation(_ context.Context, _ string) (*dto.ObservationResponse, error) {
	return m.getObsResult, m.getObsErr
}
func (m *mockReviewService) ListByProject(_ context.Context, _ string, _ bool) ([]dto.ObservationResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockReviewService) ListByDocument(_ context.Context, _ string) ([]dto.ObservationResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockReviewService) StartReview(_ context.Context, _, _ string) (*dto.ObservationResponse, error) {
	return m.startResult, m.startErr
}
func (m *mockReviewService) CreateCorrection(_ context.Context, _, _ string, _ *dto.CreateCorrectionRequest) (*dto.CorrectionResponse, error) {
	return m.correctionResult, m.correctionErr
}
func (m *mockReviewService) DeleteCorrection(_ context.Context, _, _ string) error {
	return m.deleteErr
}
func (m *mockReviewService) VerifyCorrection(_ context.Context, _, _ string, _ *dto.VerifyCorrectionRequest) (*dto.ObservationResponse, error) {
	return m.verifyResult, m.verifyErr
}
func (m *mockReviewService) Archive(_ context.Context, _, _ string) error {
	return m.archiveErr
}
func (m *mockReviewService) Restore(_ context.Context, _, _ string) error {
	return m.restoreErr
}
func (m *mockReviewService) CountPending(_ context.Context, _, _ string) (int64, error) {
	return m.countResult, m.countErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportPeriodProgress(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportAdvisorMeetingsICS(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "advisor")
	c.Set("profile_id", "test-profile-id")
	c.Set("token_jti", "test-jti")
	c.Set("token_exp", time.Now().Add(15*time.Minute))
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "perez@uni.edu.bo",
		Password: "secreto123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	h := NewAuthHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "perez@uni.edu.bo",
		Password: "wrong1",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	mock := &mockAuthService{registerErr: service.ErrEmailTaken}
	h := NewAuthHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name:     "Pérez",
		Email:    "perez@uni.edu.bo",
		Password: "secreto123",
		Role:     "student",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11003 {
		t.Errorf("expected error code 11003, got %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Success(t *testing.T) {
	mock := &mockAuthService{
		getCurrentResult: &dto.UserDetailResponse{
			ID:   "test-user-id",
			Name: "Pérez",
		},
	}
	h := NewAuthHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", func(c *gin.Context) {
		setAuth(c)
		h.GetCurrentUser(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.GetCurrentUser)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword_WrongOld(t *testing.T) {
	mock := &mockAuthService{changePassErr: service.ErrWrongPassword}
	h := NewAuthHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("PUT", "/auth/password", jsonBody(dto.ChangePasswordRequest{
		OldPassword: "incorrecta",
		NewPassword: "nuevo456",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/auth/password", func(c *gin.Context) {
		setAuth(c)
		h.ChangePassword(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11005 {
		t.Errorf("expected error code 11005, got %d", resp.Code)
	}
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r := gin.New()
	r.POST("/auth/logout", func(c *gin.Context) {
		setAuth(c)
		h.Logout(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ReviewHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReviewHandler_CreateObservation_Success(t *testing.T) {
	mock := &mockReviewService{
		createObsResult: &dto.ObservationResponse{
			ID:     "obs-1",
			Scope:  "project",
			Status: "pending",
		},
	}
	h := NewReviewHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/projects/proj-1/observations", jsonBody(dto.CreateObservationRequest{
		Scope: "project",
		Title: "缺少方法论章节",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/projects/:id/observations", func(c *gin.Context) {
		setAuth(c)
		h.CreateObservation(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestReviewHandler_CreateObservation_BadJSON(t *testing.T) {
	mock := &mockReviewService{}
	h := NewReviewHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/projects/proj-1/observations", bytes.NewReader([]byte("bad")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/projects/:id/observations", func(c *gin.Context) {
		setAuth(c)
		h.CreateObservation(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestReviewHandler_VerifyCorrection_InvalidResult(t *testing.T) {
	mock := &mockReviewService{}
	h := NewReviewHandler(mock)

	w := setupGin()
	// result 只允许 accepted / rejected
	req := httptest.NewRequest("PUT", "/observations/obs-1/verify", jsonBody(map[string]string{
		"result": "maybe",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/observations/:id/verify", func(c *gin.Context) {
		setAuth(c)
		h.VerifyCorrection(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestReviewHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"ObservationNotFound", service.ErrObservationNotFound, 404, 16001},
		{"DocumentNotFound", service.ErrDocumentNotFound, 404, 16002},
		{"CorrectionNotFound", service.ErrCorrectionNotFound, 404, 16003},
		{"CorrectionExists", service.ErrCorrectionExists, 409, 16004},
		{"NotObservationAuthor", service.ErrNotObservationAuthor, 403, 16005},
		{"NotProjectStudent", service.ErrNotProjectStudent, 403, 15003},
		{"NotProjectAdvisor", service.ErrNotProjectAdvisor, 403, 15004},
		{"DocumentMismatch", service.ErrDocumentMismatch, 400, 16006},
		{"ProjectNotFound", service.ErrProjectNotFound, 404, 15001},
		{"InvalidTransition", &service.InvalidTransitionError{From: "approved", To: "in_review"}, 422, 16007},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockReviewService{getObsErr: tt.err}
			h := NewReviewHandler(mock)

			w := setupGin()
			req := httptest.NewRequest("GET", "/observations/obs-1", nil)

			r := gin.New()
			r.GET("/observations/:id", h.GetObservation)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Progress_Success(t *testing.T) {
	buf := bytes.NewBufferString("excel content")
	mock := &mockExportService{
		buf:      buf,
		filename: "进度表_1-2026.xlsx",
	}
	h := NewExportHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("GET", "/export/progress?period_id=period-1", nil)

	r := gin.New()
	r.GET("/export/progress", h.ExportProgress)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_Progress_MissingPeriodID(t *testing.T) {
	mock := &mockExportService{}
	h := NewExportHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("GET", "/export/progress", nil)

	r := gin.New()
	r.GET("/export/progress", h.ExportProgress)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_Progress_NoProjects(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportNoProjects}
	h := NewExportHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("GET", "/export/progress?period_id=period-1", nil)

	r := gin.New()
	r.GET("/export/progress", h.ExportProgress)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 18001 {
		t.Errorf("expected error code 18001, got %d", resp.Code)
	}
}

func TestExportHandler_Meetings_Success(t *testing.T) {
	buf := bytes.NewBufferString("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	mock := &mockExportService{
		buf:      buf,
		filename: "会议日历.ics",
	}
	h := NewExportHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("GET", "/export/meetings", nil)

	r := gin.New()
	r.GET("/export/meetings", func(c *gin.Context) {
		setAuth(c)
		h.ExportMeetings(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "text/calendar; charset=utf-8" {
		t.Errorf("unexpected content type: %s", ct)
	}
}

func TestExportHandler_Meetings_NoProfile(t *testing.T) {
	mock := &mockExportService{}
	h := NewExportHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("GET", "/export/meetings", nil)

	r := gin.New()
	r.GET("/export/meetings", h.ExportMeetings)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
