package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/studenthub/internal/model"
	"github.com/hitoshi/studenthub/internal/weather"
)

// --- モック定義 ---

type mockWeatherService struct {
	currentFn  func(ctx context.Context, apiKey, city string) (*model.CurrentWeather, error)
	forecastFn func(ctx context.Context, apiKey, city string) (*model.Forecast, error)
}

func (m *mockWeatherService) Current(ctx context.Context, apiKey, city string) (*model.CurrentWeather, error) {
	if m.currentFn != nil {
		return m.currentFn(ctx, apiKey, city)
	}
	return &model.CurrentWeather{}, nil
}

func (m *mockWeatherService) Forecast(ctx context.Context, apiKey, city string) (*model.Forecast, error) {
	if m.forecastFn != nil {
		return m.forecastFn(ctx, apiKey, city)
	}
	return &model.Forecast{}, nil
}

var _ WeatherServiceInterface = (*mockWeatherService)(nil)

// recordingMetrics は記録された呼び出しを保持するテスト用コレクタ。
type recordingMetrics struct {
	successes []string
	failures  []string
	statuses  []int
}

func (m *recordingMetrics) RecordLookupSuccess(mode string) {
	m.successes = append(m.successes, mode)
}

func (m *recordingMetrics) RecordLookupFailure(mode string, reason string) {
	m.failures = append(m.failures, mode+":"+reason)
}

func (m *recordingMetrics) RecordVendorStatus(statusCode int) {
	m.statuses = append(m.statuses, statusCode)
}

func (m *recordingMetrics) RecordVendorLatency(time.Duration) {}

var _ WeatherMetrics = (*recordingMetrics)(nil)

// --- ヘルパー ---

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

func staticKey(key string) func() string {
	return func() string { return key }
}

// --- テスト ---

func TestGetWeather_Current_ReturnsCanonicalJSON(t *testing.T) {
	var gotAPIKey, gotCity string

	svc := &mockWeatherService{
		currentFn: func(ctx context.Context, apiKey, city string) (*model.CurrentWeather, error) {
			gotAPIKey = apiKey
			gotCity = city
			return &model.CurrentWeather{
				Main: model.WeatherMain{Temp: 72.5, FeelsLike: 70.1, Humidity: 65, Pressure: 1013},
				Weather: []model.WeatherCondition{
					{Main: "Partly", Description: "Partly cloudy", Icon: "icon.png"},
				},
				Wind: model.Wind{Speed: 8.1},
				Name: "Boston",
			}, nil
		},
	}
	h := NewWeatherHandler(svc, staticKey("test-key"), &recordingMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Boston", nil)
	req = withChiURLParam(req, "city", "Boston")
	w := httptest.NewRecorder()

	h.GetWeather(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotAPIKey != "test-key" {
		t.Errorf("apiKey = %q, want %q", gotAPIKey, "test-key")
	}
	if gotCity != "Boston" {
		t.Errorf("city = %q, want %q", gotCity, "Boston")
	}

	var body model.CurrentWeather
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Name != "Boston" {
		t.Errorf("Name = %q, want %q", body.Name, "Boston")
	}
	if body.Main.Temp != 72.5 {
		t.Errorf("Main.Temp = %v, want %v", body.Main.Temp, 72.5)
	}
}

func TestGetWeather_ForecastType_CallsForecast(t *testing.T) {
	forecastCalled := false

	svc := &mockWeatherService{
		forecastFn: func(ctx context.Context, apiKey, city string) (*model.Forecast, error) {
			forecastCalled = true
			return &model.Forecast{List: []model.ForecastEntry{{Dt: 1748736000}}}, nil
		},
	}
	h := NewWeatherHandler(svc, staticKey("test-key"), &recordingMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Boston?type=forecast", nil)
	req = withChiURLParam(req, "city", "Boston")
	w := httptest.NewRecorder()

	h.GetWeather(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !forecastCalled {
		t.Error("expected Forecast to be called for type=forecast")
	}
}

func TestGetWeather_InvalidType_Returns400(t *testing.T) {
	h := NewWeatherHandler(&mockWeatherService{}, staticKey("test-key"), &recordingMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Boston?type=hourly", nil)
	req = withChiURLParam(req, "city", "Boston")
	w := httptest.NewRecorder()

	h.GetWeather(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetForecast_AliasRoute_CallsForecast(t *testing.T) {
	forecastCalled := false

	svc := &mockWeatherService{
		forecastFn: func(ctx context.Context, apiKey, city string) (*model.Forecast, error) {
			forecastCalled = true
			return &model.Forecast{}, nil
		},
	}
	h := NewWeatherHandler(svc, staticKey("test-key"), &recordingMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Boston/forecast", nil)
	req = withChiURLParam(req, "city", "Boston")
	w := httptest.NewRecorder()

	h.GetForecast(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !forecastCalled {
		t.Error("expected Forecast to be called")
	}
}

func TestMissingCity_Returns400(t *testing.T) {
	h := NewWeatherHandler(&mockWeatherService{}, staticKey("test-key"), &recordingMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/", nil)
	w := httptest.NewRecorder()

	h.MissingCity(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	body := parseAPIErrorResponse(t, w)
	if body["message"] != "City parameter is required" {
		t.Errorf("message = %q, want %q", body["message"], "City parameter is required")
	}
}

func TestGetWeather_WhitespaceCity_Returns400(t *testing.T) {
	h := NewWeatherHandler(&mockWeatherService{}, staticKey("test-key"), &recordingMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/%20%20", nil)
	req = withChiURLParam(req, "city", "  ")
	w := httptest.NewRecorder()

	h.GetWeather(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetWeather_MissingAPIKey_Returns500WithoutVendorCall(t *testing.T) {
	vendorCalled := false

	svc := &mockWeatherService{
		currentFn: func(ctx context.Context, apiKey, city string) (*model.CurrentWeather, error) {
			vendorCalled = true
			return &model.CurrentWeather{}, nil
		},
	}
	metrics := &recordingMetrics{}
	h := NewWeatherHandler(svc, staticKey(""), metrics)

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Boston", nil)
	req = withChiURLParam(req, "city", "Boston")
	w := httptest.NewRecorder()

	h.GetWeather(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if vendorCalled {
		t.Error("vendor must not be called when API key is not configured")
	}

	body := parseAPIErrorResponse(t, w)
	if body["message"] != "Weather API key not configured" {
		t.Errorf("message = %q, want %q", body["message"], "Weather API key not configured")
	}

	if len(metrics.failures) != 1 || metrics.failures[0] != "current:key_missing" {
		t.Errorf("failures = %v, want [current:key_missing]", metrics.failures)
	}
}

func TestGetWeather_CityNotFound_Returns404(t *testing.T) {
	svc := &mockWeatherService{
		currentFn: func(ctx context.Context, apiKey, city string) (*model.CurrentWeather, error) {
			return nil, weather.ErrCityNotFound
		},
	}
	metrics := &recordingMetrics{}
	h := NewWeatherHandler(svc, staticKey("test-key"), metrics)

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Atlantis", nil)
	req = withChiURLParam(req, "city", "Atlantis")
	w := httptest.NewRecorder()

	h.GetWeather(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	body := parseAPIErrorResponse(t, w)
	if body["message"] != "City not found" {
		t.Errorf("message = %q, want %q", body["message"], "City not found")
	}

	if len(metrics.failures) != 1 || metrics.failures[0] != "current:city_not_found" {
		t.Errorf("failures = %v, want [current:city_not_found]", metrics.failures)
	}
}

func TestGetWeather_UpstreamError_Returns500GenericMessage(t *testing.T) {
	svc := &mockWeatherService{
		currentFn: func(ctx context.Context, apiKey, city string) (*model.CurrentWeather, error) {
			return nil, &weather.UpstreamError{StatusCode: http.StatusBadGateway}
		},
	}
	metrics := &recordingMetrics{}
	h := NewWeatherHandler(svc, staticKey("test-key"), metrics)

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Boston", nil)
	req = withChiURLParam(req, "city", "Boston")
	w := httptest.NewRecorder()

	h.GetWeather(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	body := parseAPIErrorResponse(t, w)
	if body["message"] != "Failed to fetch weather data" {
		t.Errorf("message = %q, want %q", body["message"], "Failed to fetch weather data")
	}

	// ベンダーのステータスコードはメトリクスにのみ残る
	if len(metrics.statuses) != 1 || metrics.statuses[0] != http.StatusBadGateway {
		t.Errorf("vendor statuses = %v, want [502]", metrics.statuses)
	}
}

func TestGetWeather_SuccessRecordsMetrics(t *testing.T) {
	svc := &mockWeatherService{}
	metrics := &recordingMetrics{}
	h := NewWeatherHandler(svc, staticKey("test-key"), metrics)

	req := httptest.NewRequest(http.MethodGet, "/api/weather/Boston", nil)
	req = withChiURLParam(req, "city", "Boston")
	w := httptest.NewRecorder()

	h.GetWeather(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(metrics.successes) != 1 || metrics.successes[0] != "current" {
		t.Errorf("successes = %v, want [current]", metrics.successes)
	}
}
