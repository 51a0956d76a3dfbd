package forecast

import (
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	w, err := Generate(SyntheticConfig{}, start, 48*time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if w.Steps() != 48 {
		t.Fatalf("steps: %d", w.Steps())
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("generated window invalid: %v", err)
	}

	var nightPV, noonPV float64
	for _, s := range w.Samples {
		h := s.Timestamp.Hour()
		if h == 1 {
			nightPV += s.ProductionKW
		}
		if h == 12 {
			noonPV += s.ProductionKW
		}
		if s.LoadKW <= 0 {
			t.Fatalf("load at %s is %v", s.Timestamp, s.LoadKW)
		}
	}
	// Oslo in June: dark at 01:00 UTC+2-ish is not guaranteed, but solar
	// noon must outproduce the night hour.
	if noonPV <= nightPV {
		t.Fatalf("noon PV %v not above night PV %v", noonPV, nightPV)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	a, err := Generate(SyntheticConfig{}, start, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(SyntheticConfig{}, start, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("sample %d differs: %+v vs %+v", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestGenerate_PriceShape(t *testing.T) {
	cfg := SyntheticConfig{DayPrice: 2, NightPrice: 1}
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	w, err := Generate(cfg, start, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range w.Samples {
		h := s.Timestamp.Hour()
		want := 1.0
		if h >= 7 && h < 22 {
			want = 2.0
		}
		if s.SpotPrice != want {
			t.Fatalf("price at hour %d: got %v want %v", h, s.SpotPrice, want)
		}
	}
}

func TestGenerate_Rejections(t *testing.T) {
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if _, err := Generate(SyntheticConfig{StepMinutes: 7}, start, 24*time.Hour); err == nil {
		t.Fatal("odd step accepted")
	}
	if _, err := Generate(SyntheticConfig{}, start, 30*time.Minute); err == nil {
		t.Fatal("too-short span accepted")
	}
}
