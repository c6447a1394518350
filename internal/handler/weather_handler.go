package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/studenthub/internal/middleware"
	"github.com/hitoshi/studenthub/internal/model"
	"github.com/hitoshi/studenthub/internal/weather"
)

// 取得モード。クエリパラメータtypeの値と対応する。
const (
	modeCurrent  = "current"
	modeForecast = "forecast"
)

// WeatherServiceInterface は天気ハンドラーが必要とするサービスインターフェース。
type WeatherServiceInterface interface {
	// Current は指定都市の現在の天気を標準形で返す。
	Current(ctx context.Context, apiKey, city string) (*model.CurrentWeather, error)
	// Forecast は指定都市の日次予報を標準形で返す。
	Forecast(ctx context.Context, apiKey, city string) (*model.Forecast, error)
}

// WeatherMetrics は天気ハンドラーが記録するメトリクスのインターフェース。
// metrics.Collectorの部分集合として定義する。
type WeatherMetrics interface {
	RecordLookupSuccess(mode string)
	RecordLookupFailure(mode string, reason string)
	RecordVendorStatus(statusCode int)
	RecordVendorLatency(duration time.Duration)
}

// noopMetrics はメトリクス未設定時のフォールバック。
type noopMetrics struct{}

func (noopMetrics) RecordLookupSuccess(string)         {}
func (noopMetrics) RecordLookupFailure(string, string) {}
func (noopMetrics) RecordVendorStatus(int)             {}
func (noopMetrics) RecordVendorLatency(time.Duration)  {}

// WeatherHandler は天気取得のHTTPハンドラー。
// APIキーはリクエストのたびに解決する。未設定の場合はベンダー呼び出しを
// 一切行わずに失敗させる。
type WeatherHandler struct {
	service WeatherServiceInterface
	keyFn   func() string
	metrics WeatherMetrics
}

// NewWeatherHandler はWeatherHandlerを生成する。
// keyFnはリクエスト時にAPIキーを解決する関数（通常はconfig.LookupWeatherAPIKey）。
// collectorがnilの場合はメトリクスを記録しない。
func NewWeatherHandler(service WeatherServiceInterface, keyFn func() string, collector WeatherMetrics) *WeatherHandler {
	if collector == nil {
		collector = noopMetrics{}
	}
	return &WeatherHandler{
		service: service,
		keyFn:   keyFn,
		metrics: collector,
	}
}

// GetWeather は都市名とモードから天気データを返す。
// GET /api/weather/{city}?type={current|forecast}
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("type")
	if mode == "" {
		mode = modeCurrent
	}
	if mode != modeCurrent && mode != modeForecast {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_TYPE",
			Message:  "type must be current or forecast",
			Category: "validation",
			Action:   "Use type=current or type=forecast.",
		})
		return
	}

	h.lookup(w, r, chi.URLParam(r, "city"), mode)
}

// GetForecast は予報専用の別名ルート。
// GET /api/weather/{city}/forecast
func (h *WeatherHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, chi.URLParam(r, "city"), modeForecast)
}

// MissingCity は都市名が空のリクエストに400を返す。
// GET /api/weather/
func (h *WeatherHandler) MissingCity(w http.ResponseWriter, r *http.Request) {
	middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewCityRequiredError())
}

// lookup は天気取得の共通処理。
// ベンダー由来の失敗はすべてここで捕捉し、統一エラーフォーマットへ写像する。
// 生のトランスポートエラーがクライアントへ漏れることはない。
func (h *WeatherHandler) lookup(w http.ResponseWriter, r *http.Request, city, mode string) {
	city = strings.TrimSpace(city)
	if city == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewCityRequiredError())
		return
	}

	// APIキーはリクエスト時に解決する。未設定の場合はベンダーを呼ばずに失敗させる。
	apiKey := h.keyFn()
	if apiKey == "" {
		slog.Error("weather API key not configured",
			slog.String("city", city),
			slog.String("mode", mode),
		)
		h.metrics.RecordLookupFailure(mode, "key_missing")
		middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewWeatherKeyMissingError())
		return
	}

	start := time.Now()

	var result any
	var err error
	switch mode {
	case modeForecast:
		result, err = h.service.Forecast(r.Context(), apiKey, city)
	default:
		result, err = h.service.Current(r.Context(), apiKey, city)
	}

	h.metrics.RecordVendorLatency(time.Since(start))

	if err != nil {
		h.writeLookupError(w, err, city, mode)
		return
	}

	h.metrics.RecordLookupSuccess(mode)
	h.metrics.RecordVendorStatus(http.StatusOK)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// writeLookupError はベンダー由来のエラーをHTTPレスポンスへ写像する。
// 都市未解決のみ404として区別し、それ以外は詳細をログに残して
// 一般的な500メッセージを返す。
func (h *WeatherHandler) writeLookupError(w http.ResponseWriter, err error, city, mode string) {
	if errors.Is(err, weather.ErrCityNotFound) {
		slog.Warn("city not found",
			slog.String("city", city),
			slog.String("mode", mode),
		)
		h.metrics.RecordLookupFailure(mode, "city_not_found")
		h.metrics.RecordVendorStatus(http.StatusBadRequest)
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewCityNotFoundError())
		return
	}

	var upstreamErr *weather.UpstreamError
	if errors.As(err, &upstreamErr) {
		slog.Error("weather vendor error",
			slog.String("city", city),
			slog.String("mode", mode),
			slog.Int("vendor_status", upstreamErr.StatusCode),
		)
		h.metrics.RecordLookupFailure(mode, "upstream")
		h.metrics.RecordVendorStatus(upstreamErr.StatusCode)
		middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewWeatherFetchError())
		return
	}

	slog.Error("weather lookup failed",
		slog.String("city", city),
		slog.String("mode", mode),
		slog.String("error", err.Error()),
	)
	h.metrics.RecordLookupFailure(mode, "transport")
	middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewWeatherFetchError())
}
