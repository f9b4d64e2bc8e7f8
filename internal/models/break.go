package models

// SurfBreak is the static reference record for a surf location. Records are
// seeded offline; the service only reads them. Name is the sole lookup key
// and matches case-insensitively.
type SurfBreak struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	State          string  `json:"state"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	WaveDirection  string  `json:"wave_direction"`
	BottomType     string  `json:"bottom_type"`
	BreakType      string  `json:"break_type"`
	SkillLevel     string  `json:"skill_level"`
	IdealWind      string  `json:"ideal_wind"`
	IdealTide      string  `json:"ideal_tide"`
	IdealSwellSize string  `json:"ideal_swell_size"`
}

// HasCoordinates reports whether the break carries usable coordinates.
// Zero values mean the seeding process had none; (0, 0) is open ocean off
// West Africa and never a real break.
func (b SurfBreak) HasCoordinates() bool {
	return b.Latitude != 0 && b.Longitude != 0
}

// BreakSummary is the list-view projection returned by the paginated
// /api/breaks endpoint.
type BreakSummary struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	State      string  `json:"state"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	SkillLevel string  `json:"skill_level"`
}

// BreakDetail is a SurfBreak optionally enriched with environmental data and
// a narrative forecast. Either enrichment may be absent when its upstream
// step failed; the static record is always present.
type BreakDetail struct {
	SurfBreak
	WeatherData *EnvironmentalSnapshot `json:"weather_data,omitempty"`
	Forecast    string                 `json:"forecast,omitempty"`
}
