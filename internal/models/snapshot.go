package models

// HourlySeries holds parallel hourly arrays merged from the marine and
// atmospheric upstreams. Time entries are provider-local ISO 8601 strings
// ("2006-01-02T15:04"); the wave arrays come from the marine response and the
// wind arrays from the weather response, so their lengths may differ.
type HourlySeries struct {
	Time          []string  `json:"time"`
	WaveHeight    []float64 `json:"wave_height"`
	WavePeriod    []float64 `json:"wave_period"`
	WaveDirection []float64 `json:"wave_direction"`
	WindSpeed     []float64 `json:"wind_speed"`
	WindDirection []float64 `json:"wind_direction"`
}

// EnvironmentalSnapshot is a point-in-time bundle of marine and wind data for
// a coordinate. Daily fields are today's peaks and are nil when the provider
// omitted them. Success is false only for negative cache entries recording a
// recent upstream failure.
type EnvironmentalSnapshot struct {
	Success       bool         `json:"success"`
	Latitude      float64      `json:"latitude"`
	Longitude     float64      `json:"longitude"`
	WaveHeightMax *float64     `json:"wave_height_max"`
	WavePeriodMax *float64     `json:"wave_period_max"`
	WindSpeedMax  *float64     `json:"wind_speed_max"`
	WindDirection *float64     `json:"wind_direction"`
	Hourly        HourlySeries `json:"hourly"`
	Timezone      string       `json:"timezone"`
}
