// Package forecast reduces hourly environmental data into daily summaries and
// produces a narrative surf report through a generative text backend.
package forecast

import (
	"context"
	"fmt"
	"strings"

	"github.com/lucas-hudsn/wavereader/internal/models"
)

// TextBackend generates free text from a prompt. Model selection is fixed by
// the backend implementation.
type TextBackend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	hoursPerDay = 24
	maxDays     = 7

	noDailyData = "No daily data available"
)

// Generator builds narrative surf forecasts from a break record and an
// environmental snapshot.
type Generator struct {
	backend TextBackend
}

// NewGenerator creates a Generator using the given text backend.
func NewGenerator(backend TextBackend) *Generator {
	return &Generator{backend: backend}
}

// Generate produces a narrative forecast for the break. The snapshot must
// come from a successful fetch; callers skip generation otherwise. Returns
// the backend's text verbatim, or an error the caller is expected to reduce
// to an absent forecast.
func (g *Generator) Generate(ctx context.Context, brk models.SurfBreak, snapshot models.EnvironmentalSnapshot) (string, error) {
	prompt := buildPrompt(brk, summarizeDays(snapshot.Hourly))
	text, err := g.backend.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate forecast for %s: %w", brk.Name, err)
	}
	return text, nil
}

// summarizeDays partitions the hourly series into 24-element daily buckets
// (up to 7) and produces one summary line per bucket with data: max wave
// height and mean wind speed, dated from the bucket's first timestamp.
func summarizeDays(hourly models.HourlySeries) string {
	var lines []string
	for day := 0; day < maxDays; day++ {
		start := day * hoursPerDay
		if start >= len(hourly.Time) {
			break
		}
		end := start + hoursPerDay

		date := hourly.Time[start]
		if len(date) >= 10 {
			date = date[:10]
		}

		maxWave := sliceMax(hourly.WaveHeight, start, end)
		avgWind := sliceMean(hourly.WindSpeed, start, end)
		lines = append(lines, fmt.Sprintf("- %s: Max wave %.1fm, Avg wind %.0fkm/h", date, maxWave, avgWind))
	}
	if len(lines) == 0 {
		return noDailyData
	}
	return strings.Join(lines, "\n")
}

func sliceMax(vals []float64, start, end int) float64 {
	if start >= len(vals) {
		return 0
	}
	if end > len(vals) {
		end = len(vals)
	}
	max := vals[start]
	for _, v := range vals[start+1 : end] {
		if v > max {
			max = v
		}
	}
	return max
}

func sliceMean(vals []float64, start, end int) float64 {
	if start >= len(vals) {
		return 0
	}
	if end > len(vals) {
		end = len(vals)
	}
	sum := 0.0
	for _, v := range vals[start:end] {
		sum += v
	}
	return sum / float64(end-start)
}

// buildPrompt embeds the break's static attributes and the per-day summary
// into the report prompt.
func buildPrompt(brk models.SurfBreak, dailyConditions string) string {
	return fmt.Sprintf(`Generate a daily surf report for %s:

SURF BREAK INFORMATION:
- Name: %s
- Description: %s
- Break Type: %s
- Bottom Type: %s
- Wave Direction: %s
- Skill Level: %s
- Ideal Wind: %s
- Ideal Tide: %s
- Ideal Swell Size: %s

7-DAY FORECAST SUMMARY:
%s

Create a daily surf report with:
1. Week Overview (2-3 sentences)
2. Best Days (specific days and why)
3. Swell Trend
4. Wind Pattern
5. Recommended Sessions
6. Who Should Surf

Be specific and practical.`,
		orUnknown(brk.Name, "this break"),
		orUnknown(brk.Name, "Unknown"),
		orUnknown(brk.Description, "No description"),
		orUnknown(brk.BreakType, "Unknown"),
		orUnknown(brk.BottomType, "Unknown"),
		orUnknown(brk.WaveDirection, "Unknown"),
		orUnknown(brk.SkillLevel, "Unknown"),
		orUnknown(brk.IdealWind, "Unknown"),
		orUnknown(brk.IdealTide, "Unknown"),
		orUnknown(brk.IdealSwellSize, "Unknown"),
		dailyConditions,
	)
}

func orUnknown(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
