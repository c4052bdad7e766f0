package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/service"
	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/storage/storagetest"
)

var testSecret = []byte("test-secret")

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(context.Context, string) (string, error) {
	return g.text, g.err
}

type server struct {
	router *gin.Engine
	store  storage.Provider
	user   models.User
	token  string
}

func newServer(t *testing.T, gen stubGenerator) server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storagetest.OpenSQLite(t)
	clock := calendar.Fixed(time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC))
	svc := service.New(store, gen, service.WithClock(clock))
	u := storagetest.CreateUser(t, store, 20)

	token, err := GenerateToken(testSecret, u.ID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return server{router: NewRouter(svc, testSecret), store: store, user: u, token: token}
}

func (s server) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return out
}

func TestAuthMiddleware(t *testing.T) {
	s := newServer(t, stubGenerator{text: "ok"})

	expired, _ := GenerateToken(testSecret, s.user.ID, -time.Minute)
	wrongKey, _ := GenerateToken([]byte("other"), s.user.ID, time.Hour)
	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: s.user.ID})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not-a-token", want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + wrongKey, want: http.StatusUnauthorized},
		{name: "alg none", header: "Bearer " + unsigned, want: http.StatusUnauthorized},
		{name: "valid bearer", header: "Bearer " + s.token, want: http.StatusOK},
		{name: "valid without prefix", header: s.token, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestHealthzIsPublic(t *testing.T) {
	s := newServer(t, stubGenerator{})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get(constants.RequestIDHeader) == "" {
		t.Error("response is missing a request id")
	}
}

func TestCompleteTaskEndpoint(t *testing.T) {
	s := newServer(t, stubGenerator{})
	task := storagetest.CreateTask(t, s.store, s.user.ID, 15)
	path := "/api/v1/tasks/" + task.ID + "/complete"

	w := s.do(t, http.MethodPost, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["awarded"] != true || body["points_delta"] != float64(15) || body["streak_days"] != float64(1) {
		t.Errorf("first response = %v", body)
	}

	body = decode(t, s.do(t, http.MethodPost, path, nil))
	if body["awarded"] != false || body["points_delta"] != float64(0) {
		t.Errorf("second response = %v", body)
	}

	if w := s.do(t, http.MethodPost, "/api/v1/tasks/missing/complete", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown task status = %d, want 404", w.Code)
	}
}

func TestClaimRewardEndpoint(t *testing.T) {
	s := newServer(t, stubGenerator{})
	cheap := storagetest.CreateReward(t, s.store, s.user.ID, 10)
	pricey := storagetest.CreateReward(t, s.store, s.user.ID, 500)

	tests := []struct {
		name        string
		rewardID    string
		wantOutcome string
		wantBalance float64
	}{
		{name: "claimed", rewardID: cheap.ID, wantOutcome: "claimed", wantBalance: 10},
		{name: "already claimed", rewardID: cheap.ID, wantOutcome: "already_claimed", wantBalance: 10},
		{name: "insufficient", rewardID: pricey.ID, wantOutcome: "insufficient_balance", wantBalance: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/rewards/"+tt.rewardID+"/claim", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			body := decode(t, w)
			if body["outcome"] != tt.wantOutcome || body["balance"] != tt.wantBalance {
				t.Errorf("response = %v", body)
			}
		})
	}
}

func TestSessionEndpoints(t *testing.T) {
	s := newServer(t, stubGenerator{})

	w := s.do(t, http.MethodPost, "/api/v1/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", w.Code, w.Body.String())
	}
	id, _ := decode(t, w)["session_id"].(string)
	if id == "" {
		t.Fatal("missing session_id")
	}

	note := "deep work"
	body := decode(t, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/end", map[string]any{"note": note}))
	if body["ended"] != true {
		t.Errorf("first end = %v", body)
	}
	body = decode(t, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/end", nil))
	if body["ended"] != false {
		t.Errorf("second end = %v", body)
	}

	missing := "missing"
	if w := s.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{"task_id": missing}); w.Code != http.StatusNotFound {
		t.Errorf("start with unknown task status = %d, want 404", w.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	t.Run("generated", func(t *testing.T) {
		s := newServer(t, stubGenerator{text: "Well done."})
		w := s.do(t, http.MethodGet, "/api/v1/summary?day=2024-05-10", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		body := decode(t, w)
		if body["day"] != "2024-05-10" || body["content"] != "Well done." {
			t.Errorf("response = %v", body)
		}
	})

	t.Run("generation failure", func(t *testing.T) {
		s := newServer(t, stubGenerator{err: errors.New("upstream down")})
		if w := s.do(t, http.MethodGet, "/api/v1/summary", nil); w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", w.Code)
		}
	})

	t.Run("future day", func(t *testing.T) {
		s := newServer(t, stubGenerator{text: "x"})
		if w := s.do(t, http.MethodGet, "/api/v1/summary?day=2030-01-01", nil); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestDashboardMoodAndLedger(t *testing.T) {
	s := newServer(t, stubGenerator{})

	w := s.do(t, http.MethodPost, "/api/v1/moods", map[string]any{"mood": "happy", "notes": "sunny"})
	if w.Code != http.StatusCreated {
		t.Fatalf("mood status = %d, body %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodPost, "/api/v1/moods", map[string]any{"mood": "ecstatic"}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid mood status = %d, want 400", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Write report", "points": 5, "category": "work"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create task status = %d, body %s", w.Code, w.Body.String())
	}
	taskID, _ := decode(t, w)["id"].(string)
	s.do(t, http.MethodPost, "/api/v1/tasks/"+taskID+"/complete", nil)

	dash := decode(t, s.do(t, http.MethodGet, "/api/v1/dashboard", nil))
	if dash["completed_today"] != float64(1) {
		t.Errorf("completed_today = %v", dash["completed_today"])
	}
	mood, _ := dash["mood"].(map[string]any)
	if mood["mood"] != "happy" {
		t.Errorf("mood = %v", dash["mood"])
	}

	ledger := decode(t, s.do(t, http.MethodGet, "/api/v1/ledger?limit=5", nil))
	entries, _ := ledger["transactions"].([]any)
	if len(entries) != 1 {
		t.Errorf("transactions = %v", ledger["transactions"])
	}
	if w := s.do(t, http.MethodGet, "/api/v1/ledger?limit=0", nil); w.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", w.Code)
	}
}

func TestParseTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-1", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if _, err := GenerateToken(nil, "user-1", time.Minute); err == nil {
		t.Error("GenerateToken() without secret should fail")
	}
}
