package weather

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hitoshi/studenthub/internal/model"
)

// VendorClient はベンダーAPIクライアントのインターフェース。
// Clientを抽象化してテスタビリティを向上させる。
type VendorClient interface {
	FetchCurrent(ctx context.Context, apiKey, city string) (*currentResponse, error)
	FetchForecast(ctx context.Context, apiKey, city string) (*forecastResponse, error)
}

// TextSanitizer は第三者由来テキストのサニタイズのインターフェース。
// security.TextSanitizerServiceの部分集合として定義する。
type TextSanitizer interface {
	Sanitize(raw string) string
}

// Service はベンダーレスポンスの取得と標準形への正規化を行う。
// 標準形はベンダーに依存しない。ベンダーを差し替えてもこの層から上の形は変わらない。
// キャッシュもリトライも行わない。副作用はベンダーへのHTTP呼び出しのみ。
type Service struct {
	client    VendorClient
	sanitizer TextSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(client VendorClient, sanitizer TextSanitizer) *Service {
	return &Service{
		client:    client,
		sanitizer: sanitizer,
	}
}

// Current は指定都市の現在の天気を標準形で返す。
func (s *Service) Current(ctx context.Context, apiKey, city string) (*model.CurrentWeather, error) {
	resp, err := s.client.FetchCurrent(ctx, apiKey, city)
	if err != nil {
		return nil, err
	}
	return s.toCurrent(resp), nil
}

// Forecast は指定都市の日次予報を標準形で返す。
// 暦日ごとに1件へ重複排除し、時系列昇順に並べ、最大5件に切り詰める。
func (s *Service) Forecast(ctx context.Context, apiKey, city string) (*model.Forecast, error) {
	resp, err := s.client.FetchForecast(ctx, apiKey, city)
	if err != nil {
		return nil, err
	}
	return s.toForecast(resp), nil
}

// toCurrent はベンダーのcurrentレスポンスを標準形へ変換する。
func (s *Service) toCurrent(v *currentResponse) *model.CurrentWeather {
	text := s.sanitizer.Sanitize(v.Current.Condition.Text)

	return &model.CurrentWeather{
		Main: model.WeatherMain{
			Temp:      v.Current.TempF,
			FeelsLike: v.Current.FeelslikeF,
			Humidity:  v.Current.Humidity,
			Pressure:  v.Current.PressureMb,
		},
		Weather: []model.WeatherCondition{
			{
				Main:        conditionMain(text),
				Description: text,
				Icon:        v.Current.Condition.Icon,
			},
		},
		Wind: model.Wind{
			Speed: v.Current.WindMph,
		},
		Name: s.sanitizer.Sanitize(v.Location.Name),
	}
}

// toForecast はベンダーのforecastレスポンスを標準形へ変換する。
// ベンダーは通常1日1エントリを返すが、重複排除・昇順ソート・5件制限は
// この層の不変条件としてここで保証する。
func (s *Service) toForecast(v *forecastResponse) *model.Forecast {
	seen := make(map[string]bool, len(v.Forecast.ForecastDay))
	entries := make([]model.ForecastEntry, 0, len(v.Forecast.ForecastDay))

	for _, day := range v.Forecast.ForecastDay {
		if seen[day.Date] {
			continue
		}
		seen[day.Date] = true

		text := s.sanitizer.Sanitize(day.Day.Condition.Text)
		entries = append(entries, model.ForecastEntry{
			Dt: dayTimestamp(day),
			Main: model.ForecastMain{
				TempMax: day.Day.MaxTempF,
				TempMin: day.Day.MinTempF,
			},
			Weather: []model.WeatherCondition{
				{
					Main:        conditionMain(text),
					Description: text,
				},
			},
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Dt < entries[j].Dt
	})

	if len(entries) > forecastDays {
		entries = entries[:forecastDays]
	}

	return &model.Forecast{List: entries}
}

// conditionMain は天候テキストの先頭1語を粗い分類として抽出する。
// UI側のアイコン選択に使用される。
func conditionMain(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// dayTimestamp は予報エントリのUnix秒タイムスタンプを決定する。
// ベンダーのdate_epochを優先し、0の場合はdate文字列をUTCでパースする。
func dayTimestamp(day vendorForecastDay) int64 {
	if day.DateEpoch > 0 {
		return day.DateEpoch
	}
	t, err := time.Parse("2006-01-02", day.Date)
	if err != nil {
		return 0
	}
	return t.Unix()
}
