package model

import (
	"math"
	"testing"
	"time"
)

func hourlyWindow(start time.Time, n int) ForecastWindow {
	w := ForecastWindow{StepHours: 1}
	for i := 0; i < n; i++ {
		w.Samples = append(w.Samples, ForecastSample{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
		})
	}
	return w
}

func TestForecastWindowValidate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := hourlyWindow(start, 4)
	if err := w.Validate(); err != nil {
		t.Fatalf("valid window rejected: %v", err)
	}

	empty := ForecastWindow{StepHours: 1}
	if err := empty.Validate(); err == nil {
		t.Fatal("empty window accepted")
	}

	gap := hourlyWindow(start, 4)
	gap.Samples[2].Timestamp = gap.Samples[2].Timestamp.Add(10 * time.Minute)
	if err := gap.Validate(); err == nil {
		t.Fatal("misaligned window accepted")
	}

	jitter := hourlyWindow(start, 4)
	jitter.Samples[2].Timestamp = jitter.Samples[2].Timestamp.Add(500 * time.Millisecond)
	jitter.Samples[3].Timestamp = jitter.Samples[3].Timestamp.Add(500 * time.Millisecond)
	if err := jitter.Validate(); err != nil {
		t.Fatalf("sub-second jitter rejected: %v", err)
	}

	neg := hourlyWindow(start, 2)
	neg.Samples[1].LoadKW = -1
	if err := neg.Validate(); err == nil {
		t.Fatal("negative load accepted")
	}

	nan := hourlyWindow(start, 2)
	nan.Samples[0].SpotPrice = math.NaN()
	if err := nan.Validate(); err == nil {
		t.Fatal("NaN price accepted")
	}
}

func TestForecastWindowSlice(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := hourlyWindow(start, 5)

	s := w.Slice(1, 3)
	if s.Steps() != 3 || !s.Start().Equal(start.Add(time.Hour)) {
		t.Fatalf("slice: steps %d start %v", s.Steps(), s.Start())
	}

	// Clipped at the tail.
	s = w.Slice(3, 10)
	if s.Steps() != 2 {
		t.Fatalf("clipped slice: steps %d want 2", s.Steps())
	}

	s = w.Slice(7, 3)
	if s.Steps() != 0 {
		t.Fatalf("out-of-range slice: steps %d want 0", s.Steps())
	}
}

func TestForecastWindowEnd(t *testing.T) {
	start := time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC)
	w := hourlyWindow(start, 2)
	if got, want := w.End(), start.Add(2*time.Hour); !got.Equal(want) {
		t.Fatalf("end: got %v want %v", got, want)
	}
}

func TestSplitMonths(t *testing.T) {
	// 2024-01-31 22:00 .. 2024-02-01 01:00, hourly.
	start := time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC)
	w := hourlyWindow(start, 4)
	parts := w.SplitMonths()
	if len(parts) != 2 {
		t.Fatalf("parts: got %d want 2", len(parts))
	}
	if parts[0].Steps() != 2 || parts[1].Steps() != 2 {
		t.Fatalf("part sizes: %d, %d", parts[0].Steps(), parts[1].Steps())
	}
	if parts[1].Start().Month() != time.February {
		t.Fatalf("second part starts %v", parts[1].Start())
	}
}

func TestSplitWeeks(t *testing.T) {
	// Sunday 2024-01-07 22:00 .. Monday 2024-01-08 01:00 crosses an ISO week
	// boundary at midnight.
	start := time.Date(2024, 1, 7, 22, 0, 0, 0, time.UTC)
	w := hourlyWindow(start, 4)
	parts := w.SplitWeeks()
	if len(parts) != 2 {
		t.Fatalf("parts: got %d want 2", len(parts))
	}
	if parts[0].Steps() != 2 {
		t.Fatalf("first part steps: got %d want 2", parts[0].Steps())
	}
	if wd := parts[1].Start().Weekday(); wd != time.Monday {
		t.Fatalf("second part starts on %v", wd)
	}
}
