// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// クライアントに返すメッセージと原因カテゴリを含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, weather, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeCityRequired      = "CITY_REQUIRED"
	ErrCodeCityNotFound      = "CITY_NOT_FOUND"
	ErrCodeWeatherKeyMissing = "WEATHER_KEY_MISSING"
	ErrCodeWeatherFetch      = "WEATHER_FETCH_FAILED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// NewCityRequiredError は都市名未指定エラーを生成する。
func NewCityRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeCityRequired,
		Message:  "City parameter is required",
		Category: "validation",
		Action:   "Specify a city name in the request path.",
	}
}

// NewCityNotFoundError はベンダーが都市を解決できなかった場合のエラーを生成する。
func NewCityNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeCityNotFound,
		Message:  "City not found",
		Category: "weather",
		Action:   "Check the spelling of the city name.",
	}
}

// NewWeatherKeyMissingError はAPIキー未設定エラーを生成する。
func NewWeatherKeyMissingError() *APIError {
	return &APIError{
		Code:     ErrCodeWeatherKeyMissing,
		Message:  "Weather API key not configured",
		Category: "system",
		Action:   "Contact the administrator.",
	}
}

// NewWeatherFetchError は天気データ取得失敗の汎用エラーを生成する。
// 原因の詳細はログにのみ残し、クライアントには一般的なメッセージを返す。
func NewWeatherFetchError() *APIError {
	return &APIError{
		Code:     ErrCodeWeatherFetch,
		Message:  "Failed to fetch weather data",
		Category: "weather",
		Action:   "Wait a moment and try again.",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication required",
		Category: "auth",
		Action:   "Log in and try again.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "auth",
		Action:   "Log in again.",
	}
}
