// Package weather は天気ベンダーのレスポンスをアプリケーション標準形へ
// 正規化するアダプター層を提供する。
// ベンダーAPIの呼び出しと、current/forecast両モードの変換ロジックを含む。
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

const (
	// defaultBaseURL はweatherapi.comのAPIベースURL。
	defaultBaseURL = "https://api.weatherapi.com/v1"
	// forecastDays は予報リクエストで要求する日数。
	forecastDays = 5
)

// URLValidator は外部URLの事前検証のインターフェース。
// security.OutboundGuardServiceの部分集合として定義する。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// Client は天気ベンダーAPIのクライアント。
// current.json と forecast.json の2エンドポイントを呼び出す。
// リクエスト前にURLを検証し、レスポンスボディは最大サイズ制限付きで読み込む。
type Client struct {
	httpClient  *http.Client
	validator   URLValidator
	logger      *slog.Logger
	baseURL     string // テスト用にエンドポイントを差し替え可能
	maxBodySize int64
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, validator URLValidator, maxBodySize int64, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  httpClient,
		validator:   validator,
		logger:      logger,
		baseURL:     defaultBaseURL,
		maxBodySize: maxBodySize,
	}
}

// FetchCurrent は指定都市の現在の天気をベンダーから取得する。
// 都市が解決できない場合はErrCityNotFound、その他の失敗ステータスは
// UpstreamErrorを返す。ネットワーク障害はラップして返す。
func (c *Client) FetchCurrent(ctx context.Context, apiKey, city string) (*currentResponse, error) {
	params := url.Values{
		"key": {apiKey},
		"q":   {city},
		"aqi": {"no"},
	}

	var result currentResponse
	if err := c.get(ctx, "/current.json", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchForecast は指定都市の日次予報をベンダーから取得する。
// 要求日数は固定（forecastDays）。エラー規約はFetchCurrentと同じ。
func (c *Client) FetchForecast(ctx context.Context, apiKey, city string) (*forecastResponse, error) {
	params := url.Values{
		"key":    {apiKey},
		"q":      {city},
		"days":   {fmt.Sprintf("%d", forecastDays)},
		"aqi":    {"no"},
		"alerts": {"no"},
	}

	var result forecastResponse
	if err := c.get(ctx, "/forecast.json", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// get はベンダーAPIへのGETリクエストを実行し、レスポンスをデコードする。
// ベンダーはHTTP 400で「都市が見つからない」を表現するため、
// ここでErrCityNotFoundへ正規化する。
func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	reqURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse vendor URL: %w", err)
	}
	reqURL.RawQuery = params.Encode()

	// SSRF検証: ベンダーURLの差し替えに備えてリクエスト毎に検証する
	if err := c.validator.ValidateURL(reqURL.String()); err != nil {
		c.logger.Error("weather vendor URL rejected",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("vendor URL validation failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create vendor request: %w", err)
	}
	req.Header.Set("User-Agent", "StudentHub/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("weather vendor request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("weather vendor request failed: %w", err)
	}
	defer resp.Body.Close()

	// レスポンスボディを読み込み（最大サイズ制限付き）
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read vendor response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// ベンダー固有の「見つからない」規約: HTTP 400
		if resp.StatusCode == http.StatusBadRequest {
			c.logger.Info("weather vendor reported no match",
				slog.String("path", path),
				slog.String("vendor_message", vendorErrorMessage(body)),
			)
			return ErrCityNotFound
		}

		c.logger.Error("weather vendor returned error status",
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
			slog.String("vendor_message", vendorErrorMessage(body)),
		)
		return &UpstreamError{StatusCode: resp.StatusCode}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to parse vendor response: %w", err)
	}

	return nil
}

// vendorErrorMessage はエラーレスポンスからベンダーのメッセージを抽出する。
// パースできない場合は空文字列を返す（ログ用途のため失敗は無視する）。
func vendorErrorMessage(body []byte) string {
	var ve vendorErrorResponse
	if err := json.Unmarshal(body, &ve); err != nil {
		return ""
	}
	return ve.Error.Message
}
