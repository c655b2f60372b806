package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"skillup-tracker/internal/auth"
	"skillup-tracker/internal/model"
	"skillup-tracker/internal/repository"
	"skillup-tracker/internal/service"
)

var testAuth = auth.Config{Secret: "test-secret", Issuer: "skillup.identity"}

type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	dashboard *service.DashboardService
}

func setupTestServer(t *testing.T) testServer {
	t.Helper()
	return setupTestServerWithLogger(t, nil)
}

func setupTestServerWithLogger(t *testing.T, log *zap.Logger) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.NewDB(repository.DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	activityRepo := repository.NewActivityRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	_, err = categoryRepo.SeedDefaults(t.Context())
	require.NoError(t, err)

	dashboard := service.NewDashboardService(activityRepo, time.UTC)
	router := NewRouter(Dependencies{
		DB:         sqlDB,
		Users:      repository.NewUserRepository(db),
		Activities: service.NewActivityService(activityRepo, categoryRepo, time.UTC),
		Categories: service.NewCategoryService(categoryRepo),
		Dashboard:  dashboard,
		Auth:       testAuth,
		Logger:     log,
	})
	return testServer{router: router, db: db, dashboard: dashboard}
}

func tokenFor(t *testing.T, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":                subject,
		"iss":                testAuth.Issuer,
		"exp":                time.Now().Add(time.Hour).Unix(),
		"preferred_username": subject + "-name",
	}).SignedString([]byte(testAuth.Secret))
	require.NoError(t, err)
	return token
}

func (s testServer) do(t *testing.T, method, path, subject string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, subject))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func today() model.Date {
	return model.Today(time.Now(), time.UTC)
}

func TestDashboardRequiresAuthentication(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/api/dashboard/stats/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	appErr := decode[AppError](t, w)
	assert.Equal(t, CodeUnauthorized, appErr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboardStatsForNewUser(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/api/dashboard/stats/", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"total_activities": 0,
		"completed_activities": 0,
		"pending_activities": 0,
		"completion_rate": 0,
		"current_streak": 0,
		"today_activities": []
	}`, w.Body.String())
}

func TestDashboardStatsAfterLogging(t *testing.T) {
	s := setupTestServer(t)
	now := today()

	days := []struct {
		date   model.Date
		status string
	}{
		{now, "completed"},
		{now.AddDays(-1), "completed"},
		{now.AddDays(-2), "pending"},
		{now.AddDays(-4), "completed"},
	}
	for i, d := range days {
		w := s.do(t, http.MethodPost, "/api/activities/", "alice", map[string]interface{}{
			"topic":  fmt.Sprintf("topic %d", i),
			"date":   d.date.String(),
			"status": d.status,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w := s.do(t, http.MethodPost, "/api/activities/", "bob", map[string]interface{}{"topic": "not alice's"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/dashboard/stats/", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[DashboardStatsResponse](t, w)

	assert.Equal(t, 4, stats.TotalActivities)
	assert.Equal(t, 3, stats.CompletedActivities)
	assert.Equal(t, 1, stats.PendingActivities)
	assert.Equal(t, 75.0, stats.CompletionRate)
	assert.Equal(t, 3, stats.CurrentStreak)
	require.Len(t, stats.TodayActivities, 1)
	assert.Equal(t, "topic 0", stats.TodayActivities[0].Topic)
	assert.Equal(t, now.String(), stats.TodayActivities[0].Date)
}

func TestCreateActivityValidation(t *testing.T) {
	s := setupTestServer(t)

	cases := []struct {
		name  string
		body  interface{}
		field string
	}{
		{"missing topic", map[string]interface{}{"description": "x"}, "topic"},
		{"blank topic", map[string]interface{}{"topic": "   "}, "topic"},
		{"bad status", map[string]interface{}{"topic": "x", "status": "archived"}, "status"},
		{"unknown category", map[string]interface{}{"topic": "x", "category": 9999}, "category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/activities/", "alice", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			var body struct {
				Code    string       `json:"code"`
				Details []FieldError `json:"details"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, CodeValidation, body.Code)
			require.NotEmpty(t, body.Details)
			assert.Equal(t, tc.field, body.Details[0].Field)
		})
	}

	w := s.do(t, http.MethodPost, "/api/activities/", "alice", map[string]interface{}{"topic": "x", "date": "16/10/2026"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityLifecycle(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/api/categories/", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	categories := decode[[]CategoryResponse](t, w)
	require.Len(t, categories, len(repository.DefaultCategories))
	backend := categories[0]
	assert.Equal(t, "Backend", backend.Name)

	w = s.do(t, http.MethodPost, "/api/activities/", "alice", map[string]interface{}{
		"topic":       "Gin middleware",
		"description": "request ids",
		"category":    backend.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[ActivityResponse](t, w)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, today().String(), created.Date)
	require.NotNil(t, created.CategoryName)
	assert.Equal(t, "Backend", *created.CategoryName)
	assert.Equal(t, "#10B981", *created.CategoryColor)

	path := fmt.Sprintf("/api/activities/%d/", created.ID)

	w = s.do(t, http.MethodGet, path, "mallory", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodDelete, path, "mallory", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPatch, path, "alice", map[string]interface{}{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	patched := decode[ActivityResponse](t, w)
	assert.Equal(t, "completed", patched.Status)
	assert.Equal(t, "request ids", patched.Description)
	assert.Equal(t, &backend.ID, patched.Category)

	w = s.do(t, http.MethodPatch, path, "alice", map[string]interface{}{"category": nil})
	require.Equal(t, http.StatusOK, w.Code)
	cleared := decode[ActivityResponse](t, w)
	assert.Nil(t, cleared.Category)
	assert.Nil(t, cleared.CategoryName)

	w = s.do(t, http.MethodPut, path, "alice", map[string]interface{}{"description": "no topic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, path, "alice", map[string]interface{}{"topic": "Gin routing", "category": backend.ID})
	require.Equal(t, http.StatusOK, w.Code)
	replaced := decode[ActivityResponse](t, w)
	assert.Equal(t, "Gin routing", replaced.Topic)
	assert.Empty(t, replaced.Description)
	assert.Equal(t, "completed", replaced.Status)

	w = s.do(t, http.MethodGet, path, "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, path, "alice", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, path, "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/activities/abc/", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListActivitiesFilters(t *testing.T) {
	s := setupTestServer(t)
	now := today()

	for _, body := range []map[string]interface{}{
		{"topic": "SQL joins", "date": now.AddDays(-1).String(), "status": "completed"},
		{"topic": "Goroutines", "description": "worker pools"},
		{"topic": "Docker layers", "status": "completed"},
	} {
		w := s.do(t, http.MethodPost, "/api/activities/", "alice", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	topicsOf := func(path string) []string {
		w := s.do(t, http.MethodGet, path, "alice", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out []string
		for _, a := range decode[[]ActivityResponse](t, w) {
			out = append(out, a.Topic)
		}
		return out
	}

	assert.Equal(t, []string{"Docker layers", "Goroutines", "SQL joins"}, topicsOf("/api/activities/"))
	assert.Equal(t, []string{"Docker layers", "SQL joins"}, topicsOf("/api/activities/?status=completed"))
	assert.Equal(t, []string{"SQL joins"}, topicsOf("/api/activities/?date="+now.AddDays(-1).String()))
	assert.Equal(t, []string{"Goroutines"}, topicsOf("/api/activities/?search=WORKER"))
	assert.Equal(t, []string{"SQL joins", "Goroutines", "Docker layers"}, topicsOf("/api/activities/?ordering=date,created_at"))

	w := s.do(t, http.MethodGet, "/api/activities/?status=archived", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/activities/?date=yesterday", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/activities/", "bob", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestProfile(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/api/auth/profile/", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[ProfileResponse](t, w)
	assert.Equal(t, "alice", profile.ExternalID)
	assert.Equal(t, "alice-name", profile.Username)
	assert.NotZero(t, profile.ID)

	w = s.do(t, http.MethodGet, "/api/auth/profile/", "alice", nil)
	again := decode[ProfileResponse](t, w)
	assert.Equal(t, profile.ID, again.ID)
}

func TestHealthAndMetrics(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	s.do(t, http.MethodGet, "/api/dashboard/stats/", "alice", nil)
	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "skillup_dashboard_requests_total")
}

func TestAccessLogIncludesTokenSubject(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := setupTestServerWithLogger(t, zap.New(core))

	w := s.do(t, http.MethodGet, "/api/auth/profile/", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	s.do(t, http.MethodGet, "/healthz", "", nil)

	entries := logs.FilterMessage("request").AllUntimed()
	require.Len(t, entries, 2)

	authed := entries[0].ContextMap()
	assert.Equal(t, "alice", authed["subject"])
	assert.Equal(t, "/api/auth/profile/", authed["path"])
	assert.Contains(t, authed, "user_id")

	anonymous := entries[1].ContextMap()
	assert.NotContains(t, anonymous, "subject")
	assert.NotContains(t, anonymous, "user_id")
}

func TestDashboardMetricCountsHTTPRequestsOnly(t *testing.T) {
	s := setupTestServer(t)
	before := dashboardRequestsTotal(t, "ok")

	alice, err := repository.NewUserRepository(s.db).EnsureExternal(t.Context(), "alice", "alice")
	require.NoError(t, err)
	_, err = s.dashboard.ComputeStats(t.Context(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, before, dashboardRequestsTotal(t, "ok"))

	w := s.do(t, http.MethodGet, "/api/dashboard/stats/", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before+1, dashboardRequestsTotal(t, "ok"))
}

func dashboardRequestsTotal(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "skillup_dashboard_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
