package forecast

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kilianp07/bessopt/core/model"
)

const sampleCSV = `timestamp,production_kw,load_kw,price
2024-06-10T00:00:00Z,0,2.5,0.6
2024-06-10T01:00:00Z,0,2.1,0.55
2024-06-10T02:00:00Z,0.4,2,0.5
`

func TestReadCSV(t *testing.T) {
	w, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if w.Steps() != 3 {
		t.Fatalf("steps: %d", w.Steps())
	}
	if w.StepHours != 1 {
		t.Fatalf("step hours: %v", w.StepHours)
	}
	if w.Samples[0].LoadKW != 2.5 || w.Samples[2].ProductionKW != 0.4 {
		t.Fatalf("samples: %+v", w.Samples)
	}
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if !w.Start().Equal(want) {
		t.Fatalf("start: %v", w.Start())
	}
}

func TestReadCSV_Rejections(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"wrong header", "time,prod,load,cost\n2024-06-10T00:00:00Z,0,1,1\n"},
		{"bad timestamp", "timestamp,production_kw,load_kw,price\n10/06/2024,0,1,1\n2024-06-10T01:00:00Z,0,1,1\n"},
		{"bad number", "timestamp,production_kw,load_kw,price\n2024-06-10T00:00:00Z,x,1,1\n2024-06-10T01:00:00Z,0,1,1\n"},
		{"single sample", "timestamp,production_kw,load_kw,price\n2024-06-10T00:00:00Z,0,1,1\n"},
		{"misaligned", "timestamp,production_kw,load_kw,price\n2024-06-10T00:00:00Z,0,1,1\n2024-06-10T01:00:00Z,0,1,1\n2024-06-10T02:30:00Z,0,1,1\n"},
		{"negative load", "timestamp,production_kw,load_kw,price\n2024-06-10T00:00:00Z,0,-1,1\n2024-06-10T01:00:00Z,0,1,1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tc.doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCSVRoundTrip(t *testing.T) {
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	in := model.ForecastWindow{StepHours: 0.25}
	for i := 0; i < 4; i++ {
		in.Samples = append(in.Samples, model.ForecastSample{
			Timestamp:    start.Add(time.Duration(i) * 15 * time.Minute),
			ProductionKW: float64(i) * 1.5,
			LoadKW:       3.25,
			SpotPrice:    0.61,
		})
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if out.StepHours != 0.25 {
		t.Fatalf("step hours: %v", out.StepHours)
	}
	for i := range in.Samples {
		if !out.Samples[i].Timestamp.Equal(in.Samples[i].Timestamp) ||
			out.Samples[i].ProductionKW != in.Samples[i].ProductionKW ||
			out.Samples[i].LoadKW != in.Samples[i].LoadKW ||
			out.Samples[i].SpotPrice != in.Samples[i].SpotPrice {
			t.Fatalf("sample %d: got %+v want %+v", i, out.Samples[i], in.Samples[i])
		}
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.Steps() != 3 {
		t.Fatalf("steps: %d", w.Steps())
	}
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("missing file accepted")
	}
}
