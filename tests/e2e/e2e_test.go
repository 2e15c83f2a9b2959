package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"roomrental/internal/database"
	"roomrental/internal/domain"
	"roomrental/internal/middleware"
	"roomrental/internal/modules/admin"
	"roomrental/internal/modules/auth"
	"roomrental/internal/modules/notification"
	"roomrental/internal/modules/rental"
	jwtsvc "roomrental/internal/pkg/jwt"
	"roomrental/internal/repository"
)

const testRoom = "西門教室"

type testSuite struct {
	router *gin.Engine
}

type apiResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *errorDetail           `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupSuite(t *testing.T) *testSuite {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repository.Migrate(db))

	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	requestRepo := repository.NewRentalRequestRepository(db)

	for _, name := range []string{testRoom, "板橋教室"} {
		require.NoError(t, locationRepo.Upsert(ctx, name))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(ctx, &domain.User{
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}))

	j := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	// No broker in tests; the notification service degrades to the live feed.
	hub := notification.NewHub()
	notifService := notification.NewService(nil, "", hub)
	notifHandler := notification.NewHandler(hub)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	rentalHandler := rental.NewHandler(rental.NewService(requestRepo, locationRepo, notifService))
	adminHandler := admin.NewHandler(admin.NewService(requestRepo, userRepo, notifService))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	authHandler.RegisterRoutes(v1)
	rentalHandler.RegisterRoutes(v1)

	protected := v1.Group("/")
	protected.Use(middleware.Auth(j))
	{
		authHandler.RegisterProtectedRoutes(protected)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(middleware.AdminOnly())
		{
			adminHandler.RegisterRoutes(adminGroup)
			notifHandler.RegisterRoutes(adminGroup)
		}
	}

	return &testSuite{router: r}
}

func (s *testSuite) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
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

	var out apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func (s *testSuite) loginAdmin(t *testing.T) string {
	t.Helper()

	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "admin",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func submitBody(date, slot string) gin.H {
	return gin.H{
		"location":  testRoom,
		"date":      date,
		"time_slot": slot,
		"name":      "陳小明",
		"phone":     "0912345678",
		"email":     "ming@example.com",
	}
}

func TestBookingFlow(t *testing.T) {
	s := setupSuite(t)
	date := futureDate(7)

	// Submit a request for the afternoon slot.
	w, resp := s.do(t, http.MethodPost, "/api/v1/rentals", "", submitBody(date, "13:00-16:00"))
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	request := resp.Data["request"].(map[string]interface{})
	reference := request["reference"].(string)
	assert.NotEmpty(t, reference)
	assert.Equal(t, "pending", request["status"])

	// The slot disappears from availability.
	w, resp = s.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/rentals/slots?location=%s&date=%s", testRoom, date), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	slots := resp.Data["slots"].([]interface{})
	require.Len(t, slots, 2)
	for _, raw := range slots {
		slot := raw.(map[string]interface{})
		assert.NotEqual(t, "13:00-16:00", slot["id"])
	}

	// A second submission for the same slot is rejected.
	w, resp = s.do(t, http.MethodPost, "/api/v1/rentals", "", submitBody(date, "13:00-16:00"))
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SLOT_CONFLICT", resp.Error.Code)

	// Admin approves it.
	token := s.loginAdmin(t)

	w, resp = s.do(t, http.MethodGet, "/api/v1/admin/rentals", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	requests := resp.Data["requests"].([]interface{})
	require.Len(t, requests, 1)
	id := int64(requests[0].(map[string]interface{})["id"].(float64))

	w, resp = s.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/admin/rentals/%d/decision", id), token, gin.H{"action": "approve"})
	require.Equal(t, http.StatusOK, w.Code)
	decided := resp.Data["request"].(map[string]interface{})
	assert.Equal(t, "approved", decided["status"])

	// A second decision hits the pending-only guard.
	w, resp = s.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/admin/rentals/%d/decision", id), token, gin.H{"action": "reject"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)

	// The requester can check the outcome by reference.
	w, resp = s.do(t, http.MethodGet, "/api/v1/rentals/"+reference, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	byRef := resp.Data["request"].(map[string]interface{})
	assert.Equal(t, "approved", byRef["status"])
}

func TestSubmitValidation(t *testing.T) {
	s := setupSuite(t)
	date := futureDate(7)

	cases := []struct {
		name     string
		mutate   func(gin.H)
		wantCode string
	}{
		{"missing name", func(b gin.H) { b["name"] = "" }, "VALIDATION_ERROR"},
		{"unknown location", func(b gin.H) { b["location"] = "不存在教室" }, "VALIDATION_ERROR"},
		{"unknown slot", func(b gin.H) { b["time_slot"] = "21:00-23:00" }, "VALIDATION_ERROR"},
		{"past date", func(b gin.H) { b["date"] = "2020-01-01" }, "VALIDATION_ERROR"},
		{"bad phone", func(b gin.H) { b["phone"] = "091234567" }, "VALIDATION_ERROR"},
		{"bad email", func(b gin.H) { b["email"] = "not-an-email" }, "VALIDATION_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := submitBody(date, "09:00-12:00")
			tc.mutate(body)

			w, resp := s.do(t, http.MethodPost, "/api/v1/rentals", "", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestFullyBookedDates(t *testing.T) {
	s := setupSuite(t)
	date := futureDate(10)

	for _, slot := range []string{"09:00-12:00", "13:00-16:00", "18:00-21:00"} {
		w, _ := s.do(t, http.MethodPost, "/api/v1/rentals", "", submitBody(date, slot))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, resp := s.do(t, http.MethodGet, "/api/v1/rentals/full-dates?location="+testRoom, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dates := resp.Data["dates"].([]interface{})
	require.Len(t, dates, 1)
	assert.Equal(t, date, dates[0])

	// The other location is unaffected.
	w, resp = s.do(t, http.MethodGet, "/api/v1/rentals/full-dates?location=板橋教室", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data["dates"])
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	s := setupSuite(t)

	// Anonymous.
	w, resp := s.do(t, http.MethodGet, "/api/v1/admin/rentals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, resp.Error)

	// Regular member.
	w, resp = s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "member1",
		"password": "abc123",
		"confirm":  "abc123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	memberToken := resp.Data["token"].(string)

	w, _ = s.do(t, http.MethodGet, "/api/v1/admin/rentals", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserManagement(t *testing.T) {
	s := setupSuite(t)
	token := s.loginAdmin(t)

	w, _ := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "booker",
		"password": "abc123",
		"confirm":  "abc123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := s.do(t, http.MethodGet, "/api/v1/admin/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := resp.Data["users"].([]interface{})
	require.Len(t, users, 2)

	var adminID, memberID int64
	for _, raw := range users {
		u := raw.(map[string]interface{})
		switch u["username"] {
		case "admin":
			adminID = int64(u["id"].(float64))
		case "booker":
			memberID = int64(u["id"].(float64))
		}
	}
	require.NotZero(t, adminID)
	require.NotZero(t, memberID)

	// Promote the member.
	w, resp = s.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/admin/users/%d/toggle-role", memberID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", resp.Data["user"].(map[string]interface{})["role"])

	// Changing your own role is refused.
	w, resp = s.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/admin/users/%d/toggle-role", adminID), token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SELF_MANAGEMENT", resp.Error.Code)

	// Delete the other account.
	w, _ = s.do(t, http.MethodDelete,
		fmt.Sprintf("/api/v1/admin/users/%d", memberID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.do(t, http.MethodGet, "/api/v1/admin/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data["users"].([]interface{}), 1)
}

func TestAuthFlow(t *testing.T) {
	s := setupSuite(t)

	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "booker",
		"password": "abc123",
		"confirm":  "abc123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	token := resp.Data["token"].(string)
	require.NotEmpty(t, token)

	// Duplicate username.
	w, resp = s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "booker",
		"password": "abc123",
		"confirm":  "abc123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "USERNAME_TAKEN", resp.Error.Code)

	// Change password, then the old one stops working.
	w, _ = s.do(t, http.MethodPost, "/api/v1/auth/change-password", token, gin.H{
		"old_password":     "abc123",
		"new_password":     "xyz789",
		"confirm_password": "xyz789",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "booker",
		"password": "abc123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "booker",
		"password": "xyz789",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
