package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/studenthub/internal/metrics"
	"github.com/hitoshi/studenthub/internal/middleware"
	"github.com/hitoshi/studenthub/internal/web"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBのPingを想定している。
type HealthChecker interface {
	Ping() error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 天気
	WeatherService     WeatherServiceInterface
	WeatherKeyFn       func() string
	WeatherRequireAuth bool

	// ページ
	WebHandler *web.Handler

	// 運用
	Metrics       *metrics.Collector
	MetricsGather prometheus.Gatherer
	Health        HealthChecker
	Logger        *slog.Logger
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → (Session)
//
// 認証ルート（/api/login等）はセッションゲートの外に配置する。
// 天気ルートはWeatherRequireAuthに応じてゲートの内外どちらかに置かれる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	weatherHandler := NewWeatherHandler(deps.WeatherService, deps.WeatherKeyFn, deps.Metrics)

	sessionGate := middleware.NewSessionMiddleware(deps.SessionFinder)
	pageGate := middleware.NewPageSessionMiddleware(deps.SessionFinder, "/")

	// --- 認証不要のルート ---

	// OAuthフロー
	r.Get("/api/login", authHandler.Login)
	r.Get("/api/auth/google/callback", authHandler.Callback)
	r.Get("/api/logout", authHandler.Logout)

	// ヘルスチェック
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if deps.Health != nil {
			if err := deps.Health.Ping(); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	// Prometheusスクレイプ
	if deps.MetricsGather != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGather))
	}

	// --- セッションゲートの内側のAPI ---
	r.Group(func(r chi.Router) {
		r.Use(sessionGate)
		r.Get("/api/auth/user", authHandler.Me)
	})

	// --- 天気API ---
	// ソースの重複実装はガードの有無で食い違っていたため、ここで明示的に解決する:
	// デフォルトはセッションゲートの内側。設定で外に出せる。
	r.Route("/api/weather", func(r chi.Router) {
		if deps.WeatherRequireAuth {
			r.Use(sessionGate)
		}
		r.Get("/", weatherHandler.MissingCity)
		r.Get("/{city}", weatherHandler.GetWeather)
		r.Get("/{city}/forecast", weatherHandler.GetForecast)
	})

	// --- ページ ---
	if deps.WebHandler != nil {
		r.Get("/", deps.WebHandler.Landing)
		r.Group(func(r chi.Router) {
			r.Use(pageGate)
			r.Get("/dashboard", deps.WebHandler.Dashboard)
			r.Get("/maps", deps.WebHandler.Maps)
			r.Get("/weather", deps.WebHandler.Weather)
			r.Get("/spotify", deps.WebHandler.Spotify)
		})
	}

	return r
}
