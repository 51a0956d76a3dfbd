package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/infra/logger"
)

// InfluxSink writes window solve events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	base := strings.TrimSuffix(cfg.InfluxURL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopRecorder if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.SolveRecorder {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopRecorder{}
	}
	return sink
}

// RecordWindowSolve writes the solve event as one line-protocol point.
func (s *InfluxSink) RecordWindowSolve(ev coremetrics.WindowSolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("window_solve").
		AddTag("run_id", ev.RunID).
		AddTag("mode", ev.Mode).
		AddTag("feasible", strconv.FormatBool(ev.Feasible)).
		AddField("steps", ev.Steps).
		AddField("objective", round3(ev.Objective)).
		AddField("energy_cost", round3(ev.EnergyCost)).
		AddField("tariff_cost", round3(ev.TariffCost)).
		AddField("degradation_cost", round3(ev.DegradationCost)).
		AddField("peak_kw", round3(ev.PeakKW)).
		AddField("final_soc_kwh", round3(ev.FinalSoCKWh)).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.WindowStart)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
