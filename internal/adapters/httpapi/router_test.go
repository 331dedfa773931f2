package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"xpilot/internal/core/abtest"
	accountEntity "xpilot/internal/core/account"
	"xpilot/internal/core/apperr"
	engagementapp "xpilot/internal/core/engagement/service"
	generationapp "xpilot/internal/core/generation/service"
	postEntity "xpilot/internal/core/post"
	"xpilot/internal/core/promotion"
	"xpilot/internal/core/usage"
	userEntity "xpilot/internal/core/user"
	accountPort "xpilot/internal/ports/account"
	postPort "xpilot/internal/ports/post"
	promotionPort "xpilot/internal/ports/promotion"
	userPort "xpilot/internal/ports/user"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testKey = []byte("router-secret")

type MockUserUseCase struct {
	LoginFunc    func(ctx context.Context, username, password string) (*userPort.LoginResponse, error)
	RegisterFunc func(ctx context.Context, name, username, password string) (*userPort.UserDTO, error)
	GetUserFunc  func(ctx context.Context, userID string) (*userEntity.User, error)
}

func (m *MockUserUseCase) LoginUser(ctx context.Context, username, password string) (*userPort.LoginResponse, error) {
	return m.LoginFunc(ctx, username, password)
}
func (m *MockUserUseCase) RegisterUser(ctx context.Context, name, username, password string) (*userPort.UserDTO, error) {
	return m.RegisterFunc(ctx, name, username, password)
}
func (m *MockUserUseCase) GetUser(ctx context.Context, userID string) (*userEntity.User, error) {
	return m.GetUserFunc(ctx, userID)
}

type MockQuotaUseCase struct {
	CanProceedFunc func(ctx context.Context, userID string, isPro bool, dailyLimit int) usage.Quota
}

func (m *MockQuotaUseCase) CanProceed(ctx context.Context, userID string, isPro bool, dailyLimit int) usage.Quota {
	return m.CanProceedFunc(ctx, userID, isPro, dailyLimit)
}

type MockAccountUseCase struct {
	ConnectFunc func(ctx context.Context, in accountPort.ConnectInput) (*accountEntity.TwitterAccount, error)
}

func (m *MockAccountUseCase) ConnectAccount(ctx context.Context, in accountPort.ConnectInput) (*accountEntity.TwitterAccount, error) {
	return m.ConnectFunc(ctx, in)
}
func (m *MockAccountUseCase) ListAccounts(context.Context, string) ([]*accountEntity.TwitterAccount, error) {
	return []*accountEntity.TwitterAccount{}, nil
}

type MockPromotionUseCase struct{}

func (MockPromotionUseCase) Get(context.Context, string) (*promotion.Settings, error) {
	return &promotion.Settings{Template: "Try [link]"}, nil
}
func (MockPromotionUseCase) Update(_ context.Context, _ string, in promotionPort.UpdateInput) (*promotion.Settings, error) {
	if in.Enabled && in.LinkURL == "" {
		return nil, apperr.New(apperr.KindInvalid, "link_url is required")
	}
	return &promotion.Settings{Enabled: in.Enabled, LinkURL: in.LinkURL, Template: in.Template}, nil
}

type MockGenerationUseCase struct {
	GenerateFunc func(ctx context.Context, userID, targetText string) (*generationapp.Draft, error)
}

func (m *MockGenerationUseCase) GenerateQuote(ctx context.Context, userID, targetText string) (*generationapp.Draft, error) {
	return m.GenerateFunc(ctx, userID, targetText)
}
func (m *MockGenerationUseCase) GenerateReply(ctx context.Context, userID, targetText string) (*generationapp.Draft, error) {
	return m.GenerateFunc(ctx, userID, targetText)
}

type MockPostUseCase struct {
	CreateFunc func(ctx context.Context, in postPort.CreateInput) (*postEntity.Post, error)
	DeleteFunc func(ctx context.Context, userID, postID string) error
}

func (m *MockPostUseCase) CreateScheduled(ctx context.Context, in postPort.CreateInput) (*postEntity.Post, error) {
	return m.CreateFunc(ctx, in)
}
func (m *MockPostUseCase) List(context.Context, string, postEntity.Status) ([]*postEntity.Post, error) {
	return nil, nil
}
func (m *MockPostUseCase) Get(context.Context, string, string) (*postEntity.Post, error) {
	return nil, apperr.New(apperr.KindNotFound, "post not found")
}
func (m *MockPostUseCase) Reschedule(context.Context, string, string, time.Time) (*postEntity.Post, error) {
	return nil, apperr.New(apperr.KindConflict, "post is not scheduled")
}
func (m *MockPostUseCase) UpdateText(context.Context, string, string, string) (*postEntity.Post, error) {
	return nil, nil
}
func (m *MockPostUseCase) PostNow(context.Context, string, string) (*postEntity.Post, error) {
	return nil, apperr.New(apperr.KindAuthExpired, "token expired")
}
func (m *MockPostUseCase) Delete(ctx context.Context, userID, postID string) error {
	return m.DeleteFunc(ctx, userID, postID)
}

type MockEngagementUseCase struct {
	calls []string
	last  engagementapp.Input
}

func (m *MockEngagementUseCase) record(name string, in engagementapp.Input) (*postEntity.Post, error) {
	m.calls = append(m.calls, name)
	m.last = in
	return &postEntity.Post{Status: postEntity.StatusScheduled}, nil
}
func (m *MockEngagementUseCase) PostSimpleRetweet(_ context.Context, in engagementapp.Input) (*postEntity.Post, error) {
	return nil, apperr.New(apperr.KindRateLimitExceeded, "too many engagements")
}
func (m *MockEngagementUseCase) PostQuoteRT(_ context.Context, in engagementapp.Input) (*postEntity.Post, error) {
	return m.record("quote", in)
}
func (m *MockEngagementUseCase) PostReply(_ context.Context, in engagementapp.Input) (*postEntity.Post, error) {
	return m.record("reply", in)
}
func (m *MockEngagementUseCase) ScheduleRetweet(_ context.Context, in engagementapp.Input) (*postEntity.Post, error) {
	return m.record("schedule-retweet", in)
}
func (m *MockEngagementUseCase) ScheduleReply(_ context.Context, in engagementapp.Input) (*postEntity.Post, error) {
	return m.record("schedule-reply", in)
}

type MockAnalyticsUseCase struct{}

func (MockAnalyticsUseCase) ABTests(context.Context, string) ([]abtest.Group, error) {
	return []abtest.Group{}, nil
}
func (MockAnalyticsUseCase) TopPosts(_ context.Context, _ string, limit int) ([]*postEntity.Post, error) {
	return make([]*postEntity.Post, limit), nil
}
func (MockAnalyticsUseCase) SyncMetrics(context.Context, string, string) (*postEntity.Post, error) {
	return nil, apperr.New(apperr.KindExternalService, "x api down")
}

type harness struct {
	engine      *gin.Engine
	users       *MockUserUseCase
	quota       *MockQuotaUseCase
	accounts    *MockAccountUseCase
	generation  *MockGenerationUseCase
	posts       *MockPostUseCase
	engagements *MockEngagementUseCase
}

func newHarness() *harness {
	gin.SetMode(gin.TestMode)
	h := &harness{
		users: &MockUserUseCase{
			GetUserFunc: func(context.Context, string) (*userEntity.User, error) {
				return &userEntity.User{Plan: userEntity.PlanFree}, nil
			},
		},
		quota: &MockQuotaUseCase{
			CanProceedFunc: func(_ context.Context, _ string, _ bool, limit int) usage.Quota {
				return usage.Quota{Allowed: true, Remaining: limit - 2, Limit: limit}
			},
		},
		accounts:    &MockAccountUseCase{},
		generation:  &MockGenerationUseCase{},
		posts:       &MockPostUseCase{},
		engagements: &MockEngagementUseCase{},
	}
	h.engine = SetupRoutes(UseCases{
		Users:       h.users,
		Quota:       h.quota,
		Accounts:    h.accounts,
		Promotions:  MockPromotionUseCase{},
		Generation:  h.generation,
		Posts:       h.posts,
		Engagements: h.engagements,
		Analytics:   MockAnalyticsUseCase{},
	}, RouterConfig{JWTKey: testKey, FreeDailyLimit: 5, Logger: zap.NewNop()})
	return h
}

func token(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.StandardClaims{Subject: userID, ExpiresAt: time.Now().Add(time.Hour).Unix()}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)
	return s
}

type call struct {
	method string
	path   string
	body   interface{}
	userID string
	lang   string
}

func (h *harness) do(t *testing.T, c call) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, c.userID))
	}
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestHealthz(t *testing.T) {
	w, body := newHarness().do(t, call{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness()
	for _, path := range []string{"/me/quota", "/posts", "/accounts", "/analytics/top-posts"} {
		w, _ := h.do(t, call{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestLoginFailureIsUnauthorized(t *testing.T) {
	h := newHarness()
	h.users.LoginFunc = func(context.Context, string, string) (*userPort.LoginResponse, error) {
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}
	w, body := h.do(t, call{method: http.MethodPost, path: "/login", body: map[string]string{"username": "sara", "password": "wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "unauthenticated", body["kind"])
}

func TestRegisterValidatesInput(t *testing.T) {
	h := newHarness()
	w, body := h.do(t, call{method: http.MethodPost, path: "/register", body: map[string]string{"username": "sara"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid", body["kind"])

	h.users.RegisterFunc = func(_ context.Context, name, username, _ string) (*userPort.UserDTO, error) {
		return &userPort.UserDTO{ID: "u1", Name: name, Username: username, Plan: "free"}, nil
	}
	w, body = h.do(t, call{method: http.MethodPost, path: "/register", body: map[string]string{"name": "Sara", "username": "sara", "password": "long-enough"}})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sara", body["username"])
}

func TestQuotaUsesConfiguredLimit(t *testing.T) {
	w, body := newHarness().do(t, call{method: http.MethodGet, path: "/me/quota", userID: "user-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, body["limit"])
	assert.EqualValues(t, 3, body["remaining"])
}

func TestQuotaExceededIsLocalized(t *testing.T) {
	h := newHarness()
	h.generation.GenerateFunc = func(context.Context, string, string) (*generationapp.Draft, error) {
		return nil, apperr.New(apperr.KindQuotaExceeded, "daily limit reached")
	}

	w, body := h.do(t, call{method: http.MethodPost, path: "/generate/quote", userID: "user-1", body: map[string]string{"target_text": "hello"}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "quota_exceeded", body["kind"])
	assert.Contains(t, body["error"], "Upgrade to Pro")

	w, body = h.do(t, call{method: http.MethodPost, path: "/generate/reply", userID: "user-1", lang: "ja-JP,ja;q=0.9", body: map[string]string{"target_text": "hello"}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, body["error"], "上限")
}

func TestCreatePostPassesUserFromToken(t *testing.T) {
	h := newHarness()
	var got postPort.CreateInput
	h.posts.CreateFunc = func(_ context.Context, in postPort.CreateInput) (*postEntity.Post, error) {
		got = in
		return &postEntity.Post{ID: uuid.Must(uuid.NewV4()), Text: in.Text, Status: postEntity.StatusScheduled}, nil
	}
	at := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	w, body := h.do(t, call{method: http.MethodPost, path: "/posts", userID: "user-7", body: map[string]interface{}{
		"text":          "launch day",
		"scheduled_for": at,
		"ab_test_id":    "t1",
	}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-7", got.UserID)
	assert.True(t, at.Equal(got.ScheduledFor))
	assert.Equal(t, "t1", got.ABTestID)
	assert.Equal(t, "scheduled", body["status"])
}

func TestErrorKindsMapToStatus(t *testing.T) {
	h := newHarness()
	h.posts.DeleteFunc = func(context.Context, string, string) error {
		return apperr.New(apperr.KindForbidden, "not your post")
	}
	tests := []struct {
		method string
		path   string
		body   interface{}
		status int
	}{
		{http.MethodGet, "/posts/abc", nil, http.StatusNotFound},
		{http.MethodPatch, "/posts/abc/schedule", map[string]interface{}{"scheduled_for": time.Now()}, http.StatusConflict},
		{http.MethodPost, "/posts/abc/publish", nil, http.StatusUnauthorized},
		{http.MethodDelete, "/posts/abc", nil, http.StatusForbidden},
		{http.MethodPost, "/posts/abc/metrics/sync", nil, http.StatusBadGateway},
		{http.MethodPost, "/engagements/retweet", map[string]string{"target_tweet_id": "111"}, http.StatusTooManyRequests},
		{http.MethodPut, "/promotion", map[string]interface{}{"enabled": true}, http.StatusBadRequest},
		{http.MethodGet, "/analytics/top-posts?limit=abc", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		w, _ := h.do(t, call{method: tt.method, path: tt.path, body: tt.body, userID: "user-1"})
		assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestScheduleEngagementDispatchesByAction(t *testing.T) {
	h := newHarness()
	at := time.Now().Add(time.Hour)

	w, _ := h.do(t, call{method: http.MethodPost, path: "/engagements/schedule", userID: "user-1", body: map[string]interface{}{
		"target_tweet_id": "111", "action": "quote", "comment": "so true", "scheduled_for": at,
	}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, postEntity.RetweetQuote, h.engagements.last.RetweetType)

	w, _ = h.do(t, call{method: http.MethodPost, path: "/engagements/schedule", userID: "user-1", body: map[string]interface{}{
		"target_tweet_id": "111", "action": "reply", "comment": "agreed", "scheduled_for": at,
	}})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := h.do(t, call{method: http.MethodPost, path: "/engagements/schedule", userID: "user-1", body: map[string]interface{}{
		"target_tweet_id": "111", "action": "like",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid", body["kind"])
	assert.Equal(t, []string{"schedule-retweet", "schedule-reply"}, h.engagements.calls)
}

func TestTopPostsLimit(t *testing.T) {
	w, body := newHarness().do(t, call{method: http.MethodGet, path: "/analytics/top-posts?limit=3", userID: "user-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["posts"], 3)
}
