package weather

// vendorCondition はベンダーの天候情報。
type vendorCondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

// vendorLocation はベンダーの地点情報。
type vendorLocation struct {
	Name    string `json:"name"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// currentResponse はベンダーのcurrent.jsonレスポンス。
// 利用するフィールドのみを定義する。単位は華氏・mph・ミリバール。
type currentResponse struct {
	Location vendorLocation `json:"location"`
	Current  struct {
		TempF      float64         `json:"temp_f"`
		FeelslikeF float64         `json:"feelslike_f"`
		Humidity   int             `json:"humidity"`
		PressureMb float64         `json:"pressure_mb"`
		WindMph    float64         `json:"wind_mph"`
		Condition  vendorCondition `json:"condition"`
	} `json:"current"`
}

// forecastResponse はベンダーのforecast.jsonレスポンス。
type forecastResponse struct {
	Location vendorLocation `json:"location"`
	Forecast struct {
		ForecastDay []vendorForecastDay `json:"forecastday"`
	} `json:"forecast"`
}

// vendorForecastDay はベンダーの日次予報エントリ。
type vendorForecastDay struct {
	Date      string `json:"date"`       // "2006-01-02"形式
	DateEpoch int64  `json:"date_epoch"` // Unix秒。古いAPIバージョンでは0の場合がある
	Day       struct {
		MaxTempF  float64         `json:"maxtemp_f"`
		MinTempF  float64         `json:"mintemp_f"`
		Condition vendorCondition `json:"condition"`
	} `json:"day"`
}

// vendorErrorResponse はベンダーのエラーレスポンス。
// 例: {"error":{"code":1006,"message":"No matching location found."}}
type vendorErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
