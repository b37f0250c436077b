package httptransport_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ErlanBelekov/mobile-signup/internal/cache"
	"github.com/ErlanBelekov/mobile-signup/internal/dispatch"
	"github.com/ErlanBelekov/mobile-signup/internal/domain"
	"github.com/ErlanBelekov/mobile-signup/internal/health"
	"github.com/ErlanBelekov/mobile-signup/internal/token"
	httptransport "github.com/ErlanBelekov/mobile-signup/internal/transport/http"
	"github.com/ErlanBelekov/mobile-signup/internal/transport/http/handler"
	"github.com/ErlanBelekov/mobile-signup/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testMobile = "+919876543210"

type memUsers struct {
	mu      sync.Mutex
	byPhone map[string]*domain.User
}

func (r *memUsers) FindByMobile(_ context.Context, mobile string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byPhone[mobile]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byPhone {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) Create(_ context.Context, mobile string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byPhone[mobile]; ok {
		return u, nil
	}
	u := &domain.User{ID: int64(len(r.byPhone) + 1), MobileNumber: mobile, IsVerified: true, CreatedAt: time.Now()}
	r.byPhone[mobile] = u
	return u, nil
}

type captureQueue struct {
	mu   sync.Mutex
	jobs []dispatch.Job
}

func (q *captureQueue) Enqueue(job dispatch.Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return true
}

func (q *captureQueue) last(t *testing.T) dispatch.Job {
	t.Helper()
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		t.Fatal("no sms job enqueued")
	}
	return q.jobs[len(q.jobs)-1]
}

type server struct {
	engine *gin.Engine
	queue  *captureQueue
}

func newServer(t *testing.T, issuer *token.Issuer) *server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store := cache.NewMemoryStore()
	users := &memUsers{byPhone: make(map[string]*domain.User)}
	queue := &captureQueue{}

	registration := usecase.NewRegistrationUsecase(users, store, logger)
	checker := health.NewChecker(map[string]health.Pinger{"cache": store}, logger, prometheus.NewRegistry())

	var signupHandler *handler.SignupHandler
	if issuer != nil {
		signupHandler = handler.NewSignupHandler(registration, queue, issuer, logger)
	} else {
		signupHandler = handler.NewSignupHandler(registration, queue, nil, logger)
	}

	engine := httptransport.NewRouter(logger,
		handler.NewHealthHandler(checker),
		signupHandler,
		handler.NewUserHandler(registration, logger),
		issuer,
	)
	return &server{engine: engine, queue: queue}
}

func (s *server) do(method, path, body, bearer string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestRouter_SignupFlow(t *testing.T) {
	issuer := token.NewIssuer([]byte("router-test-secret-32-chars!!!!!"))
	s := newServer(t, issuer)

	w := s.do(http.MethodPost, "/api/v1/auth/signup/request-otp", `{"mobile_number":"`+testMobile+`"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("request-otp status = %d, body = %s", w.Code, w.Body.String())
	}
	code := s.queue.last(t).Code

	w = s.do(http.MethodPost, "/api/v1/auth/signup/verify", `{"mobile_number":"`+testMobile+`","otp_code":"`+code+`"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("verify status = %d, body = %s", w.Code, w.Body.String())
	}
	accessToken, _ := decode(t, w)["access_token"].(string)
	if accessToken == "" {
		t.Fatal("verify returned no access_token")
	}

	// The code is single-use.
	w = s.do(http.MethodPost, "/api/v1/auth/signup/verify", `{"mobile_number":"`+testMobile+`","otp_code":"`+code+`"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("replayed verify status = %d, want 400", w.Code)
	}

	// Registered numbers cannot start a new signup.
	w = s.do(http.MethodPost, "/api/v1/auth/signup/request-otp", `{"mobile_number":"`+testMobile+`"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("second request-otp status = %d, want 400", w.Code)
	}

	w = s.do(http.MethodGet, "/api/v1/users/me", "", accessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["mobile_number"]; got != testMobile {
		t.Errorf("me mobile_number = %v", got)
	}
}

func TestRouter_MeRequiresToken(t *testing.T) {
	s := newServer(t, token.NewIssuer([]byte("router-test-secret-32-chars!!!!!")))

	if w := s.do(http.MethodGet, "/api/v1/users/me", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRouter_MeNotMountedWithoutIssuer(t *testing.T) {
	s := newServer(t, nil)

	if w := s.do(http.MethodGet, "/api/v1/users/me", "", "anything"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRouter_RootAndHealth(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK || decode(t, w)["message"] != "API is working!" {
		t.Errorf("root = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
	if w := s.do(http.MethodGet, "/readyz", "", ""); w.Code != http.StatusOK {
		t.Errorf("readyz status = %d, want 200", w.Code)
	}
}
