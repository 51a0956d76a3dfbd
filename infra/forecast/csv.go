// Package forecast loads forecast windows from CSV files and generates
// synthetic scenarios for trials.
package forecast

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kilianp07/bessopt/core/model"
)

var csvHeader = []string{"timestamp", "production_kw", "load_kw", "price"}

// LoadCSV reads a forecast window from path. The file must carry the exact
// header "timestamp,production_kw,load_kw,price" with RFC3339 timestamps at
// a uniform timestep.
func LoadCSV(path string) (model.ForecastWindow, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ForecastWindow{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV decodes a forecast window from r.
func ReadCSV(r io.Reader) (model.ForecastWindow, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return model.ForecastWindow{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return model.ForecastWindow{}, fmt.Errorf("expected header %v, got %v", csvHeader, header)
	}
	for i, h := range csvHeader {
		if header[i] != h {
			return model.ForecastWindow{}, fmt.Errorf("expected header %v, got %v", csvHeader, header)
		}
	}

	var samples []model.ForecastSample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.ForecastWindow{}, fmt.Errorf("line %d: %w", line, err)
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return model.ForecastWindow{}, fmt.Errorf("line %d: timestamp: %w", line, err)
		}
		prod, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return model.ForecastWindow{}, fmt.Errorf("line %d: production: %w", line, err)
		}
		load, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return model.ForecastWindow{}, fmt.Errorf("line %d: load: %w", line, err)
		}
		price, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return model.ForecastWindow{}, fmt.Errorf("line %d: price: %w", line, err)
		}
		samples = append(samples, model.ForecastSample{
			Timestamp:    ts,
			ProductionKW: prod,
			LoadKW:       load,
			SpotPrice:    price,
		})
	}
	if len(samples) < 2 {
		return model.ForecastWindow{}, fmt.Errorf("need at least two samples to infer the timestep, got %d", len(samples))
	}

	step := samples[1].Timestamp.Sub(samples[0].Timestamp)
	w := model.ForecastWindow{Samples: samples, StepHours: step.Hours()}
	if err := w.Validate(); err != nil {
		return model.ForecastWindow{}, err
	}
	return w, nil
}

// WriteCSV writes a forecast window in the format LoadCSV reads.
func WriteCSV(w io.Writer, fw model.ForecastWindow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range fw.Samples {
		rec := []string{
			s.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(s.ProductionKW, 'f', -1, 64),
			strconv.FormatFloat(s.LoadKW, 'f', -1, 64),
			strconv.FormatFloat(s.SpotPrice, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
