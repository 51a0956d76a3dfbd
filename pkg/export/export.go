// Package export writes run results for downstream reporting tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/bessopt/core/sim"
)

// WriteJSON writes the full run result, ledger included, to w.
func WriteJSON(w io.Writer, res *sim.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes the executed plan to w, one row per timestep.
func WriteCSV(w io.Writer, res *sim.RunResult) error {
	cw := csv.NewWriter(w)
	header := []string{"timestamp", "charge_kw", "discharge_kw", "import_kw", "export_kw", "curtail_kw", "soc_kwh", "spot_price"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range res.Steps {
		rec := []string{
			s.Timestamp.Format(time.RFC3339),
			fmtF(s.ChargeKW),
			fmtF(s.DischargeKW),
			fmtF(s.ImportKW),
			fmtF(s.ExportKW),
			fmtF(s.CurtailKW),
			fmtF(s.SoCKWh),
			fmtF(s.SpotPrice),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtF(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
