package forecast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lucas-hudsn/wavereader/internal/models"
)

type stubBackend struct {
	text   string
	err    error
	prompt string
}

func (s *stubBackend) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.text, s.err
}

func hourlyDays(days int, wave, wind float64) models.HourlySeries {
	h := models.HourlySeries{}
	for d := 0; d < days; d++ {
		for i := 0; i < 24; i++ {
			h.Time = append(h.Time, fmt.Sprintf("2026-09-%02dT00:00", d+1))
			h.WaveHeight = append(h.WaveHeight, wave)
			h.WindSpeed = append(h.WindSpeed, wind)
		}
	}
	return h
}

// TestSummarizeDays_BucketsByDay verifies that the hourly series is reduced
// to one line per 24-hour bucket with the bucket's max wave and mean wind.
func TestSummarizeDays_BucketsByDay(t *testing.T) {
	h := models.HourlySeries{}
	for i := 0; i < 48; i++ {
		day := "2026-08-30"
		if i >= 24 {
			day = "2026-08-31"
		}
		h.Time = append(h.Time, day+"T00:00")
		h.WaveHeight = append(h.WaveHeight, float64(i%24)/10)
		h.WindSpeed = append(h.WindSpeed, 10)
	}

	got := summarizeDays(h)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("summarizeDays() produced %d lines, want 2:\n%s", len(lines), got)
	}
	if want := "- 2026-08-30: Max wave 2.3m, Avg wind 10km/h"; lines[0] != want {
		t.Errorf("summarizeDays() line 0 = %q, want %q", lines[0], want)
	}
	if !strings.HasPrefix(lines[1], "- 2026-08-31:") {
		t.Errorf("summarizeDays() line 1 = %q, want second day's date", lines[1])
	}
}

// TestSummarizeDays_PartialFinalBucket verifies that a trailing bucket with
// fewer than 24 hours still produces a line.
func TestSummarizeDays_PartialFinalBucket(t *testing.T) {
	h := hourlyDays(1, 1.5, 12)
	h.Time = append(h.Time, "2026-08-31T00:00", "2026-08-31T01:00")
	h.WaveHeight = append(h.WaveHeight, 2.0, 2.5)
	h.WindSpeed = append(h.WindSpeed, 20, 22)

	got := summarizeDays(h)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("summarizeDays() produced %d lines, want 2:\n%s", len(lines), got)
	}
	if want := "- 2026-08-31: Max wave 2.5m, Avg wind 21km/h"; lines[1] != want {
		t.Errorf("summarizeDays() final line = %q, want %q", lines[1], want)
	}
}

// TestSummarizeDays_CapsAtSevenDays verifies that extra buckets past day 7
// are ignored.
func TestSummarizeDays_CapsAtSevenDays(t *testing.T) {
	h := hourlyDays(7, 1.0, 10)
	for i := 0; i < 24; i++ {
		h.Time = append(h.Time, "2026-09-06T00:00")
		h.WaveHeight = append(h.WaveHeight, 9.9)
		h.WindSpeed = append(h.WindSpeed, 99)
	}

	got := summarizeDays(h)
	if n := len(strings.Split(got, "\n")); n != 7 {
		t.Errorf("summarizeDays() produced %d lines, want 7", n)
	}
	if strings.Contains(got, "9.9") {
		t.Error("summarizeDays() included data past the 7-day window")
	}
}

// TestSummarizeDays_EmptySeries verifies the no-data marker for an empty
// hourly series.
func TestSummarizeDays_EmptySeries(t *testing.T) {
	if got := summarizeDays(models.HourlySeries{}); got != noDailyData {
		t.Errorf("summarizeDays(empty) = %q, want %q", got, noDailyData)
	}
}

// TestGenerator_Generate_PromptContents verifies the prompt embeds the
// break's attributes and the daily summary.
func TestGenerator_Generate_PromptContents(t *testing.T) {
	backend := &stubBackend{text: "A solid week ahead."}
	g := NewGenerator(backend)

	brk := models.SurfBreak{
		Name:           "Bells Beach",
		Description:    "Iconic point break",
		State:          "VIC",
		BreakType:      "Point",
		BottomType:     "Reef",
		WaveDirection:  "SW",
		SkillLevel:     "Intermediate",
		IdealWind:      "NW",
		IdealTide:      "Mid",
		IdealSwellSize: "4-8ft",
	}
	snapshot := models.EnvironmentalSnapshot{Success: true, Hourly: hourlyDays(2, 1.8, 12)}

	text, err := g.Generate(context.Background(), brk, snapshot)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "A solid week ahead." {
		t.Errorf("Generate() = %q, want backend text verbatim", text)
	}

	for _, want := range []string{
		"Bells Beach",
		"Iconic point break",
		"- Break Type: Point",
		"- Ideal Swell Size: 4-8ft",
		"7-DAY FORECAST SUMMARY:",
		"Max wave 1.8m, Avg wind 12km/h",
		"Recommended Sessions",
	} {
		if !strings.Contains(backend.prompt, want) {
			t.Errorf("Generate() prompt missing %q", want)
		}
	}
}

// TestGenerator_Generate_UnknownFallbacks verifies that blank break fields
// are replaced with placeholders so the prompt never has empty bullets.
func TestGenerator_Generate_UnknownFallbacks(t *testing.T) {
	backend := &stubBackend{text: "ok"}
	g := NewGenerator(backend)

	_, err := g.Generate(context.Background(), models.SurfBreak{Name: "Secret Spot"}, models.EnvironmentalSnapshot{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, want := range []string{
		"- Description: No description",
		"- Break Type: Unknown",
		noDailyData,
	} {
		if !strings.Contains(backend.prompt, want) {
			t.Errorf("Generate() prompt missing fallback %q", want)
		}
	}
}

// TestGenerator_Generate_BackendError verifies the backend error is wrapped
// with the break name.
func TestGenerator_Generate_BackendError(t *testing.T) {
	backendErr := errors.New("model unavailable")
	g := NewGenerator(&stubBackend{err: backendErr})

	_, err := g.Generate(context.Background(), models.SurfBreak{Name: "Snapper Rocks"}, models.EnvironmentalSnapshot{})
	if err == nil {
		t.Fatal("Generate() error = nil, want wrapped backend error")
	}
	if !errors.Is(err, backendErr) {
		t.Errorf("Generate() error = %v, want wrapped %v", err, backendErr)
	}
	if !strings.Contains(err.Error(), "Snapper Rocks") {
		t.Errorf("Generate() error = %v, want break name in message", err)
	}
}
