package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"calorietracker/internal/testutil"
	"calorietracker/middlewares"
	"calorietracker/services"
	"calorietracker/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	hub    *services.RealtimeHub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	log := utils.DiscardLogger()

	hub := services.NewRealtimeHub(log)
	users := services.NewUserService(db)
	foods := services.NewFoodService(db)
	meals := services.NewMealService(db, foods, hub, log)
	_, err := foods.SeedCatalog(context.Background())
	require.NoError(t, err)

	r := SetupRouter(Deps{
		Auth:        services.NewAuthService(db, "test-secret", time.Hour, log),
		Users:       users,
		Foods:       foods,
		Meals:       meals,
		Summaries:   services.NewSummaryService(db, meals, users, log),
		Hub:         hub,
		Log:         log,
		Registry:    prometheus.NewRegistry(),
		AuthLimiter: middlewares.NewRateLimiter(1000, 1000),
	})
	return &testServer{router: r, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
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
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": "Ada", "email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["token"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "calorietracker_http_requests_total")
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": "Ada", "email": "ada@b.co", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode[map[string]any](t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@b.co", user["email"])
	assert.NotContains(t, user, "password")

	w = s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": "Ada", "email": "ada@b.co", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": "Ada", "email": "x@b.co", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@b.co", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[map[string]any](t, w)["token"].(string)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@b.co", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/auth/profile", token, gin.H{"dailyCalorieGoal": 1800})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[map[string]any](t, w)
	assert.Equal(t, "profile updated successfully", updated["message"])
	prof := updated["user"].(map[string]any)
	assert.EqualValues(t, 1800, prof["dailyCalorieGoal"])

	w = s.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stored := decode[map[string]any](t, w)["user"].(map[string]any)
	assert.EqualValues(t, 1800, stored["dailyCalorieGoal"])

	w = s.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMealsAndSummary(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "ada@b.co")

	w := s.do(t, http.MethodPost, "/api/foods", token, gin.H{"name": "Toast", "calories": 100, "protein": 10, "carbs": 20, "fat": 5, "serving": "1 slice"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	toast := decode[map[string]any](t, w)
	toastID := toast["id"]

	w = s.do(t, http.MethodGet, "/api/food-items", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]any](t, w), len(services.Catalog)+1)

	w = s.do(t, http.MethodPost, "/api/meals", token, gin.H{"foodItemId": toastID, "quantity": 1, "mealType": "breakfast", "date": "2024-01-15"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entryID := decode[map[string]any](t, w)["id"]

	w = s.do(t, http.MethodPost, "/api/meals", token, gin.H{"foodItemId": toastID, "quantity": 1, "mealType": "brunch", "date": "2024-01-15"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/meals/%v", entryID), token, gin.H{"quantity": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[map[string]any](t, w)
	assert.EqualValues(t, 100, updated["calories"])
	assert.EqualValues(t, 300, updated["totalCalories"])

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/meals/%v", entryID), token, gin.H{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/meals?date=2024-01-15", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]any](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/meals?date=15-01-2024", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/summary/2024-01-15", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[map[string]any](t, w)
	assert.EqualValues(t, 300, sum["totalCalories"])
	assert.EqualValues(t, 30, sum["totalProtein"])
	meals := sum["meals"].(map[string]any)
	assert.Len(t, meals["breakfast"], 1)
	assert.Len(t, meals["snacks"], 0)

	w = s.do(t, http.MethodGet, "/api/reports/weekly?end=2024-01-15", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rep := decode[struct {
		Range string               `json:"range"`
		Days  []services.ReportDay `json:"days"`
	}](t, w)
	assert.Equal(t, "weekly", rep.Range)
	require.Len(t, rep.Days, 7)
	assert.Equal(t, services.ReportDay{Date: "2024-01-15", Calories: 300, Remaining: 1700}, rep.Days[6])

	w = s.do(t, http.MethodGet, "/api/reports/daily", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/meals/%v", entryID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/meals/%v", entryID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/progress/history", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogFoodsAreReadOnly(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "ada@b.co")

	w := s.do(t, http.MethodGet, "/api/foods", token, nil)
	foods := decode[[]map[string]any](t, w)
	id := foods[0]["id"]

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/foods/%v", id), token, gin.H{"name": "Changed"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/foods/%v", id), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, "/api/foods/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRealtimeSummaryEvents(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "ada@b.co")

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.Connections(1) == 1 }, 2*time.Second, 10*time.Millisecond)

	w := s.do(t, http.MethodGet, "/api/foods", token, nil)
	banana := decode[[]map[string]any](t, w)[0]
	w = s.do(t, http.MethodPost, "/api/meals", token, gin.H{"foodItemId": banana["id"], "quantity": 2, "mealType": "snacks", "date": "2024-01-15"})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev struct {
		Kind    string `json:"kind"`
		Summary struct {
			Date          string `json:"date"`
			TotalCalories int64  `json:"totalCalories"`
		} `json:"summary"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "summary.updated", ev.Kind)
	assert.Equal(t, "2024-01-15", ev.Summary.Date)
	assert.EqualValues(t, 210, ev.Summary.TotalCalories)
}
