// Package web はダッシュボードのページ描画を提供する。
// 認証・天気APIの上に乗る薄いプレゼンテーション層で、
// 埋め込みテンプレートによるサーバーサイドレンダリングを行う。
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/studenthub/internal/middleware"
	"github.com/hitoshi/studenthub/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// UserGetter はページ描画に必要なユーザー取得のインターフェース。
// auth.Serviceの部分集合として定義する。
type UserGetter interface {
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
}

// Handler はダッシュボードページのHTTPハンドラー。
type Handler struct {
	tmpl  *template.Template
	users UserGetter
}

// NewHandler はテンプレートをパースしてHandlerを生成する。
func NewHandler(users UserGetter) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Handler{
		tmpl:  tmpl,
		users: users,
	}, nil
}

// pageData はテンプレートへ渡すリクエストスコープのデータ。
type pageData struct {
	Title    string
	User     *model.User
	School   string
	Features FeatureSet
}

// Landing はログイン前のランディングページを描画する。
// GET /
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	h.render(w, "landing.html", pageData{Title: "Student Hub"})
}

// Dashboard はログイン後のダッシュボードを描画する。
// GET /dashboard （ページ用セッションゲートの内側）
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	school := r.URL.Query().Get("school")
	h.render(w, "dashboard.html", pageData{
		Title:    "Dashboard - Student Hub",
		User:     user,
		School:   school,
		Features: FeaturesForSchool(school),
	})
}

// Maps は地図ページを描画する。
// GET /maps
func (h *Handler) Maps(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	h.render(w, "maps.html", pageData{
		Title: "Maps - Student Hub",
		User:  user,
	})
}

// Weather は天気ページを描画する。
// GET /weather
func (h *Handler) Weather(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	h.render(w, "weather.html", pageData{
		Title: "Weather - Student Hub",
		User:  user,
	})
}

// Spotify はミュージックプレイリストページを描画する。
// 機能フラグで許可された学校のみアクセスでき、
// それ以外はダッシュボードへリダイレクトする。
// GET /spotify?school=xxx
func (h *Handler) Spotify(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	school := r.URL.Query().Get("school")
	features := FeaturesForSchool(school)
	if !features.MusicPlayer {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	h.render(w, "spotify.html", pageData{
		Title:    "Music Player - Student Hub",
		User:     user,
		School:   school,
		Features: features,
	})
}

// currentUser はコンテキストの認証済みユーザーIDからユーザーを取得する。
// 取得できない場合はランディングへリダイレクトしfalseを返す。
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load user for page",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}

	return user, true
}

// render はテンプレートを実行してHTMLレスポンスを書き込む。
func (h *Handler) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
	}
}
