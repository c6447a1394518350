package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/studenthub/internal/middleware"
	"github.com/hitoshi/studenthub/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getUserByIDFn    func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return &model.Session{ID: "session-123", UserID: "user-123"}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, userID)
	}
	return &model.User{ID: userID}, nil
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		BaseURL:       "http://localhost:8080",
		CookieSecure:  false,
		SessionMaxAge: 86400,
	}
}

// findCookie はレスポンスから指定名のCookieを探すヘルパー。
func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- テスト ---

func TestLogin_SetsStateCookieAndRedirects(t *testing.T) {
	var gotState string

	svc := &mockAuthService{
		getLoginURLFn: func(state string) string {
			gotState = state
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/login", nil)
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}

	// stateクッキーが設定されること
	stateCookie := findCookie(t, w, "oauth_state")
	if stateCookie == nil {
		t.Fatal("expected oauth_state cookie to be set")
	}
	if !stateCookie.HttpOnly {
		t.Error("state cookie should be HTTP only")
	}
	if stateCookie.Value != gotState {
		t.Errorf("cookie state = %q, login URL state = %q", stateCookie.Value, gotState)
	}

	// リダイレクト先にstateが含まれること
	location := w.Header().Get("Location")
	if !strings.Contains(location, "state="+gotState) {
		t.Errorf("Location %q does not contain state parameter", location)
	}
}

func TestCallback_ValidStateAndCode_SetsSessionCookieAndRedirects(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			if code != "auth-code-123" {
				t.Errorf("code = %q, want %q", code, "auth-code-123")
			}
			return &model.Session{ID: "new-session-id", UserID: "user-123"}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=auth-code-123&state=state-abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-abc"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}

	// セッションCookieが設定されること
	sessionCookie := findCookie(t, w, "session_id")
	if sessionCookie == nil {
		t.Fatal("expected session_id cookie to be set")
	}
	if sessionCookie.Value != "new-session-id" {
		t.Errorf("session cookie value = %q, want %q", sessionCookie.Value, "new-session-id")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie should be HTTP only")
	}

	// ダッシュボードへリダイレクトされること
	location := w.Header().Get("Location")
	if location != "http://localhost:8080/dashboard" {
		t.Errorf("Location = %q, want %q", location, "http://localhost:8080/dashboard")
	}
}

func TestCallback_StateMismatch_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=auth-code&state=evil-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "real-state"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCallback_MissingStateCookie_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=auth-code&state=some-state", nil)
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCallback_MissingCode_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=state-abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-abc"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCallback_ServiceError_Returns500(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (*model.Session, error) {
			return nil, errors.New("exchange failed")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=bad-code&state=state-abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-abc"})
	w := httptest.NewRecorder()

	h.Callback(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestLogout_DeletesSessionAndClearsCookie(t *testing.T) {
	var deletedSessionID string

	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			deletedSessionID = sessionID
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-to-delete"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
	if deletedSessionID != "session-to-delete" {
		t.Errorf("deleted session ID = %q, want %q", deletedSessionID, "session-to-delete")
	}

	// Cookieがクリアされること
	cleared := findCookie(t, w, "session_id")
	if cleared == nil {
		t.Fatal("expected session_id cookie in response")
	}
	if cleared.Value != "" || cleared.MaxAge != -1 {
		t.Errorf("cookie not cleared: value=%q maxAge=%d", cleared.Value, cleared.MaxAge)
	}
}

func TestLogout_WithoutCookie_StillRedirects(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}
}

func TestMe_AuthenticatedUser_ReturnsProfile(t *testing.T) {
	svc := &mockAuthService{
		getUserByIDFn: func(ctx context.Context, userID string) (*model.User, error) {
			return &model.User{
				ID:        userID,
				Email:     "user@example.com",
				FirstName: "Test",
				LastName:  "Student",
			}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-123"))
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["id"] != "user-123" {
		t.Errorf("id = %q, want %q", body["id"], "user-123")
	}
	if body["email"] != "user@example.com" {
		t.Errorf("email = %q, want %q", body["email"], "user@example.com")
	}
	if body["firstName"] != "Test" {
		t.Errorf("firstName = %q, want %q", body["firstName"], "Test")
	}
	if body["lastName"] != "Student" {
		t.Errorf("lastName = %q, want %q", body["lastName"], "Student")
	}
}

func TestMe_NoUserInContext_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMe_UserNotFound_Returns401(t *testing.T) {
	svc := &mockAuthService{
		getUserByIDFn: func(ctx context.Context, userID string) (*model.User, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "ghost-user"))
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
