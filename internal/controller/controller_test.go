package controller

import (
	"bytes"
	"codepath_backend/internal/config"
	"codepath_backend/internal/middleware"
	"codepath_backend/internal/repository"
	"codepath_backend/internal/service"
	"codepath_backend/internal/testutil"
	"codepath_backend/internal/util"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "controller-test-secret-with-32-chars!!"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: testSecret},
		Webhook: config.WebhookConfig{Secret: "whsec_dGVzdA=="},
	}
	cache := repository.NewCacheRepository(nil)
	users := repository.NewUserRepository(db)
	rules := service.NewRulesHolder(nil)

	progress := service.NewProgressService(
		db, users,
		repository.NewCatalogRepository(db),
		repository.NewProgressRepository(db),
		repository.NewStreakRepository(db),
		repository.NewBadgeRepository(db),
		repository.NewGoalRepository(db),
		cache, rules,
	)
	userSync := service.NewUserSyncService(users, cache, cfg.Webhook)
	progressCtl := NewProgressController(progress)
	goalCtl := NewGoalController(service.NewGoalService(repository.NewGoalRepository(db)))
	helpCtl := NewHelpController(service.NewHelpService(config.AIConfig{}))

	r := gin.New()
	r.POST("/api/webhooks/identity", NewWebhookController(userSync).HandleIdentityEvent)
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg, userSync))
	api.GET("/stats", progressCtl.GetStats)
	api.POST("/lessons/:id/complete", progressCtl.CompleteLesson)
	api.POST("/goals", goalCtl.CreateGoal)
	api.PATCH("/goals/:id", goalCtl.UpdateGoalProgress)
	api.POST("/help", helpCtl.Ask)

	return &testServer{router: r, db: db, cfg: cfg}
}

func (s *testServer) token(t *testing.T, externalID string) string {
	t.Helper()
	tok, err := util.GenerateJWT(externalID, externalID+"@example.com", "test", testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestCompleteLesson_Envelope(t *testing.T) {
	s := newTestServer(t)
	cat := testutil.CreateCatalog(t, s.db, "python", 30)
	tok := s.token(t, "user_1")
	path := "/api/lessons/" + strconv.Itoa(int(cat.Lessons[0].ID)) + "/complete"

	w, env := s.do(t, http.MethodPost, path, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, env.Code)
	assert.Equal(t, "success", env.Message)

	var res service.CompletionResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 30, res.XPEarned)
	assert.Equal(t, 30, res.TotalXP)
	assert.Equal(t, 1, res.Streak)
	assert.False(t, res.AlreadyCompleted)
	assert.NotNil(t, res.BadgesUnlocked)

	_, env = s.do(t, http.MethodPost, path, tok, nil)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.AlreadyCompleted)
	assert.Equal(t, 30, res.TotalXP)
}

func TestCompleteLesson_Errors(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "user_1")

	w, env := s.do(t, http.MethodPost, "/api/lessons/999/complete", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/lessons/abc/complete", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", env.Message)

	w, _ = s.do(t, http.MethodGet, "/api/stats", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	forged, err := util.GenerateJWT("user_1", "", "test", "some-other-secret-of-sufficient-len", time.Hour)
	require.NoError(t, err)
	w, _ = s.do(t, http.MethodGet, "/api/stats", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 首次访问自动创建本地用户
	w, env = s.do(t, http.MethodGet, "/api/stats", s.token(t, "user_new"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats service.UserStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, "user_new", stats.User.ExternalID)
	assert.Equal(t, 0, stats.CompletedLessons)
}

func TestGoalEndpoints(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, "user_1")

	w, _ := s.do(t, http.MethodPost, "/api/goals", tok, gin.H{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/goals", tok, gin.H{"title": "Five lessons", "type": "lessons", "targetValue": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	var goal struct {
		ID        string `json:"id"`
		Completed bool   `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &goal))

	w, env = s.do(t, http.MethodPatch, "/api/goals/"+goal.ID, tok, gin.H{"currentValue": 5})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &goal))
	assert.True(t, goal.Completed)

	w, _ = s.do(t, http.MethodPatch, "/api/goals/"+goal.ID, s.token(t, "user_2"), gin.H{"currentValue": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHelp_UnavailableWithoutAIConfig(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodPost, "/api/help", s.token(t, "user_1"), gin.H{"question": "What is a closure?"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.Code)
}

func TestWebhook_RejectsUnsignedRequests(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodPost, "/api/webhooks/identity", "", gin.H{"type": "user.created", "data": gin.H{"id": "user_9"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, util.ErrInvalidSignature.Error(), env.Message)
}

func TestWebhook_AcceptsSignedEvent(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"type":"user.created","data":{"id":"user_9","first_name":"Linus"}}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/identity", bytes.NewReader(body))
	req.Header.Set(service.HeaderWebhookID, "msg_1")
	req.Header.Set(service.HeaderWebhookTimestamp, ts)
	req.Header.Set(service.HeaderWebhookSignature, "v1,"+service.SignWebhook(s.cfg.Webhook.Secret, "msg_1", ts, body))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	s.db.Table("users").Where("external_id = ?", "user_9").Count(&count)
	assert.EqualValues(t, 1, count)
}
