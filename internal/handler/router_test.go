package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/studenthub/internal/metrics"
	"github.com/hitoshi/studenthub/internal/middleware"
	"github.com/hitoshi/studenthub/internal/model"
)

type mockRouterSessionFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockRouterSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

var _ middleware.SessionFinder = (*mockRouterSessionFinder)(nil)

type okHealthChecker struct{}

func (okHealthChecker) Ping() error { return nil }

// validSessionFinder は任意のセッションIDを有効として解決するテスト用Finderを返す。
func validSessionFinder() *mockRouterSessionFinder {
	return &mockRouterSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:        id,
				UserID:    "user-123",
				ExpiresAt: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}
}

func newTestRouter(t *testing.T, weatherRequireAuth bool, finder middleware.SessionFinder) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	return NewRouter(&RouterDeps{
		SessionFinder:     finder,
		CORSAllowedOrigin: "http://localhost:3000",

		AuthService: &mockAuthService{},
		AuthConfig: AuthHandlerConfig{
			BaseURL:       "http://localhost:8080",
			SessionMaxAge: 86400,
		},

		WeatherService:     &mockWeatherService{},
		WeatherKeyFn:       staticKey("test-key"),
		WeatherRequireAuth: weatherRequireAuth,

		Metrics:       metrics.NewCollector(reg),
		MetricsGather: reg,
		Health:        okHealthChecker{},
	})
}

func TestRouter_LoginEndpoint_Redirects(t *testing.T) {
	router := newTestRouter(t, true, &mockRouterSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/api/login", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Errorf("GET /api/login status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter(t, true, &mockRouterSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, true, &mockRouterSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /metrics status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_MeEndpoint_RequiresSession(t *testing.T) {
	router := newTestRouter(t, true, &mockRouterSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/auth/user status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRouter_MeEndpoint_WithValidSession(t *testing.T) {
	router := newTestRouter(t, true, validSessionFinder())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /api/auth/user status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_WeatherGuardedByDefault(t *testing.T) {
	router := newTestRouter(t, true, &mockRouterSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Boston", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/weather/Boston status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRouter_WeatherWithSession(t *testing.T) {
	router := newTestRouter(t, true, validSessionFinder())

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Boston", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /api/weather/Boston status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_WeatherUnguardedWhenConfigured(t *testing.T) {
	router := newTestRouter(t, false, &mockRouterSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Boston", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /api/weather/Boston status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_WeatherForecastAlias(t *testing.T) {
	router := newTestRouter(t, false, &mockRouterSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Boston/forecast", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /api/weather/Boston/forecast status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_WeatherMissingCity_Returns400(t *testing.T) {
	router := newTestRouter(t, false, &mockRouterSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("GET /api/weather/ status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	router := newTestRouter(t, true, &mockRouterSessionFinder{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
}
