package weather

import (
	"errors"
	"fmt"
)

// ErrCityNotFound はベンダーが都市を解決できなかったことを表す。
// ベンダー固有のエラー表現（HTTP 400）から正規化される。
var ErrCityNotFound = errors.New("city not found")

// UpstreamError はベンダーに到達したが想定外の失敗ステータスが返ったことを表す。
// ベンダーのHTTPステータスコードを保持する。
type UpstreamError struct {
	StatusCode int
}

// Error はerrorインターフェースを実装する。
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("weather vendor returned status %d", e.StatusCode)
}
