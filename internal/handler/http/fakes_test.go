package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/config"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/deadline"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type fakeAuthService struct {
	jwt jwt.Service

	registered  auth.RegisterRequest
	session     auth.SessionTrackingRequest
	loginErr    error
	loggedOut   []string
	refreshWith string
}

func (f *fakeAuthService) tokens(userID string, roles []string) (auth.TokenResponse, error) {
	access, accessExp, err := f.jwt.GenerateAccessToken(userID, userID+"@example.com", roles)
	if err != nil {
		return auth.TokenResponse{}, err
	}
	refresh, refreshExp, err := f.jwt.GenerateRefreshToken(userID)
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return auth.TokenResponse{
		AccessToken:           access,
		AccessTokenExpiresIn:  accessExp,
		RefreshToken:          refresh,
		RefreshTokenExpiresIn: refreshExp,
	}, nil
}

func (f *fakeAuthService) Register(ctx context.Context, req auth.RegisterRequest, sessionReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	f.registered = req
	f.session = sessionReq
	role, _ := user.ParseRole(req.Role)
	return f.tokens("new-user", user.GrantedRoles(role).Strings())
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest, sessionReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if f.loginErr != nil {
		return auth.TokenResponse{}, f.loginErr
	}
	return f.tokens("emp-1", []string{"employee"})
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken, accessToken string, accessExpiresAt int64) error {
	f.loggedOut = append(f.loggedOut, refreshToken)
	if accessToken != "" {
		f.jwt.RevokeToken(accessToken, accessExpiresAt)
	}
	return nil
}

func (f *fakeAuthService) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	f.refreshWith = req.RefreshToken
	if _, err := f.jwt.ValidateRefreshToken(req.RefreshToken); err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	return auth.AccessTokenResponse{AccessToken: "new-access", AccessTokenExpiresIn: 3600}, nil
}

func (f *fakeAuthService) Me(ctx context.Context, userID string) (auth.SessionResponse, error) {
	return auth.SessionResponse{ID: userID, Email: userID + "@example.com", Roles: []string{"employee"}}, nil
}

func (f *fakeAuthService) CleanupExpiredTokens(ctx context.Context) error { return nil }

type reviewCall struct {
	op      string
	actor   user.Actor
	target  string
	goalID  string
	request any
}

type fakeReviewService struct {
	mu     sync.Mutex
	calls  []reviewCall
	err    error
	result review.ReviewResponse
}

func (f *fakeReviewService) record(c reviewCall) (review.ReviewResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.result, f.err
}

func (f *fakeReviewService) last() reviewCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return reviewCall{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeReviewService) GetReview(ctx context.Context, actor user.Actor, employeeID string) (review.ReviewResponse, error) {
	return f.record(reviewCall{op: "get", actor: actor, target: employeeID})
}

func (f *fakeReviewService) SaveReview(ctx context.Context, actor user.Actor, reviewID string, req review.SaveReviewRequest) (review.ReviewResponse, error) {
	return f.record(reviewCall{op: "save", actor: actor, target: reviewID, request: req})
}

func (f *fakeReviewService) SaveEmployeeComment(ctx context.Context, actor user.Actor, reviewID string, req review.CommentRequest) (review.ReviewResponse, error) {
	return f.record(reviewCall{op: "employee-comment", actor: actor, target: reviewID, request: req})
}

func (f *fakeReviewService) SaveSupervisorComment(ctx context.Context, actor user.Actor, reviewID string, req review.CommentRequest) (review.ReviewResponse, error) {
	return f.record(reviewCall{op: "supervisor-comment", actor: actor, target: reviewID, request: req})
}

func (f *fakeReviewService) SaveKPIRatings(ctx context.Context, actor user.Actor, reviewID string, req review.SaveKPIRatingsRequest) (review.ReviewResponse, error) {
	return f.record(reviewCall{op: "kpi-ratings", actor: actor, target: reviewID, request: req})
}

func (f *fakeReviewService) SaveSkills(ctx context.Context, actor user.Actor, reviewID string, req review.SaveSkillsRequest) (review.ReviewResponse, error) {
	return f.record(reviewCall{op: "skills", actor: actor, target: reviewID, request: req})
}

func (f *fakeReviewService) AddGoal(ctx context.Context, actor user.Actor, reviewID string, req review.AddGoalRequest) (review.GoalResponse, error) {
	_, err := f.record(reviewCall{op: "add-goal", actor: actor, target: reviewID, request: req})
	return review.GoalResponse{ID: "goal-1", Description: req.Description}, err
}

func (f *fakeReviewService) DeleteGoal(ctx context.Context, actor user.Actor, reviewID, goalID string) error {
	_, err := f.record(reviewCall{op: "delete-goal", actor: actor, target: reviewID, goalID: goalID})
	return err
}

type fakeDeadlineService struct {
	checked []string
	sweeps  int
	result  deadline.CheckResult
	err     error
}

func (f *fakeDeadlineService) Info(ctx context.Context, userID string) (deadline.Info, error) {
	return f.result.Info, nil
}

func (f *fakeDeadlineService) Check(ctx context.Context, userID string) (deadline.CheckResult, error) {
	f.checked = append(f.checked, userID)
	return f.result, f.err
}

func (f *fakeDeadlineService) Sweep(ctx context.Context) (deadline.SweepResult, error) {
	f.sweeps++
	return deadline.SweepResult{Checked: 2, Sent: 1}, nil
}

type fakeOrganizationService struct {
	assigned []organization.AssignSupervisorRequest
}

func (f *fakeOrganizationService) ListSupervisors(ctx context.Context) ([]organization.SupervisorOption, error) {
	return []organization.SupervisorOption{{ID: "sup-1", Name: "Bruno Díaz"}}, nil
}

func (f *fakeOrganizationService) GetTeam(ctx context.Context, actor user.Actor) (organization.TeamResponse, error) {
	return organization.TeamResponse{SupervisorID: actor.ID, Members: []organization.TeamMember{}}, nil
}

func (f *fakeOrganizationService) GetOrganization(ctx context.Context, actor user.Actor) (organization.OrganizationResponse, error) {
	return organization.OrganizationResponse{}, nil
}

func (f *fakeOrganizationService) AssignSupervisor(ctx context.Context, actor user.Actor, req organization.AssignSupervisorRequest) error {
	if req.EmployeeID == "ghost" {
		return organization.ErrEmployeeNotFound
	}
	f.assigned = append(f.assigned, req)
	return nil
}

type fakeReportService struct {
	requests []report.ReviewReportRequest
}

func (f *fakeReportService) GenerateReviewReport(ctx context.Context, actor user.Actor, req report.ReviewReportRequest) (report.ReviewReport, error) {
	f.requests = append(f.requests, req)
	return report.ReviewReport{Type: req.Type, Rows: []report.ReviewReportRow{}}, nil
}

func (f *fakeReportService) Export(ctx context.Context, w io.Writer, rep report.ReviewReport, format report.Format) (string, error) {
	if format == report.FormatPDF {
		_, err := io.WriteString(w, "%PDF-1.3")
		return "reporte-evaluaciones-2025-05-20.pdf", err
	}
	_, err := io.WriteString(w, "Empleado,Supervisor\n")
	return "reporte-evaluaciones-2025-05-20.csv", err
}

func (f *fakeReportService) GenerateSummary(ctx context.Context, actor user.Actor) (report.SummaryReport, error) {
	return report.SummaryReport{TotalReviews: 3}, nil
}

type testServer struct {
	router        *chi.Mux
	jwt           jwt.Service
	auth          *fakeAuthService
	reviews       *fakeReviewService
	deadlines     *fakeDeadlineService
	organizations *fakeOrganizationService
	reports       *fakeReportService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{
			Env:         "test",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}

	jwtSvc := jwt.NewJWTService(handlerTestSecret, "1h", "24h", false)
	s := &testServer{
		jwt:           jwtSvc,
		auth:          &fakeAuthService{jwt: jwtSvc},
		reviews:       &fakeReviewService{result: review.ReviewResponse{ID: "rev-1", Status: review.StatusDraft}},
		deadlines:     &fakeDeadlineService{},
		organizations: &fakeOrganizationService{},
		reports:       &fakeReportService{},
	}
	s.router = NewRouter(
		cfg,
		jwtSvc,
		NewAuthHandler(jwtSvc, s.auth, s.organizations),
		NewReviewHandler(s.reviews),
		NewDeadlineHandler(s.deadlines),
		NewOrganizationHandler(s.organizations),
		NewReportHandler(s.reports),
	)
	return s
}

func (s *testServer) token(t *testing.T, userID string, role user.Role) string {
	t.Helper()
	tok, _, err := s.jwt.GenerateAccessToken(userID, userID+"@example.com", user.GrantedRoles(role).Strings())
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}
	return nil
}
