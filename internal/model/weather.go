// Package model はドメインモデルを定義する。
package model

// CurrentWeather は現在の天気のアプリケーション標準形。
// どのベンダーのレスポンスから構築されてもこの形は変わらない。
// 単位は華氏・mph・ミリバールで固定。
type CurrentWeather struct {
	Main    WeatherMain        `json:"main"`
	Weather []WeatherCondition `json:"weather"`
	Wind    Wind               `json:"wind"`
	Name    string             `json:"name"`
}

// WeatherMain は気温・湿度・気圧のまとまり。
type WeatherMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
	Pressure  float64 `json:"pressure"`
}

// WeatherCondition は天候の分類とその説明。
// Mainはベンダーの天候テキストの先頭1語で、アイコン選択用の粗い分類として使う。
// Iconは現在天気のみに含まれ、予報エントリでは空になる。
type WeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// Wind は風速情報。
type Wind struct {
	Speed float64 `json:"speed"`
}

// Forecast は日次予報の標準形。
// Listは暦日ごとに1件、時系列昇順、最大5件。
type Forecast struct {
	List []ForecastEntry `json:"list"`
}

// ForecastEntry は1日分の予報サマリー。
type ForecastEntry struct {
	Dt      int64              `json:"dt"`
	Main    ForecastMain       `json:"main"`
	Weather []WeatherCondition `json:"weather"`
}

// ForecastMain は1日の最高・最低気温。
type ForecastMain struct {
	TempMax float64 `json:"temp_max"`
	TempMin float64 `json:"temp_min"`
}
