package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/geo-analytics/internal/analysis"
	"github.com/sells-group/geo-analytics/internal/model"
	"github.com/sells-group/geo-analytics/internal/report"
)

// Output formats for reports.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var printer = message.NewPrinter(language.English)

// analysisView is what analyze prints. ID and CreatedAt are only set once the
// analysis has been saved.
type analysisView struct {
	ID        string          `json:"id,omitempty" yaml:"id,omitempty"`
	CreatedAt *time.Time      `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Report    analysis.Report `json:"report" yaml:"report"`
	MapURL    string          `json:"map_url" yaml:"map_url"`
}

func viewOf(res *report.Result) analysisView {
	v := analysisView{Report: res.Report, MapURL: res.MapURL}
	if res.Record.ID != "" {
		created := res.Record.CreatedAt
		v.ID = res.Record.ID
		v.CreatedAt = &created
	}
	return v
}

// writeAnalysis renders v in the given format.
func writeAnalysis(out io.Writer, format string, v analysisView) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "encode json")
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	case formatText, "":
		formatReport(out, v)
		return nil
	default:
		return eris.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

// formatReport writes a human-readable report to out.
func formatReport(out io.Writer, v analysisView) {
	r := v.Report
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if v.ID != "" {
		_, _ = fmt.Fprintf(w, "Analysis:\t%s\n", v.ID)
		_, _ = fmt.Fprintf(w, "Saved:\t%s\n", v.CreatedAt.Format("2006-01-02 15:04"))
	}
	_, _ = fmt.Fprintf(w, "Location:\t%.4f, %.4f\n", r.Latitude, r.Longitude)
	_, _ = fmt.Fprintf(w, "Air quality index:\t%d\n", r.AQI)
	_, _ = fmt.Fprintf(w, "Land cost:\t%s\n", formatMoney(r.LandCost))
	_, _ = fmt.Fprintln(w, "\t")
	_, _ = fmt.Fprintf(w, "Ground stability:\t%s\n", r.GroundStability)
	_, _ = fmt.Fprintf(w, "Flood risk:\t%s\n", r.FloodRisk)
	_, _ = fmt.Fprintf(w, "Earthquake risk:\t%s\n", r.EarthquakeRisk)
	_, _ = fmt.Fprintf(w, "Tsunami risk:\t%s\n", r.TsunamiRisk)
	_, _ = fmt.Fprintf(w, "Landslide risk:\t%s\n", r.LandslideRisk)
	_ = w.Flush()

	_, _ = fmt.Fprintln(out, "\nUrban planning")
	writeList(out, "Optimal", r.UrbanPlanning.Optimal)
	writeList(out, "Dangerous", r.UrbanPlanning.Dangerous)
	writeList(out, "Avoid", r.UrbanPlanning.Avoid)
	for _, reason := range r.UrbanPlanning.Reasons {
		_, _ = fmt.Fprintf(out, "  * %s\n", reason)
	}

	_, _ = fmt.Fprintln(out, "\nEconomic prospects")
	for _, p := range r.EconomicProspects {
		_, _ = fmt.Fprintf(out, "  - %s\n", p)
	}

	c := r.ClimateForecast
	_, _ = fmt.Fprintln(out, "\nClimate forecast")
	_, _ = fmt.Fprintf(out, "  Temperature: %s, average %d°C\n", c.TemperatureTrend, c.AvgTemperature)
	_, _ = fmt.Fprintf(out, "  Humidity:    %s, average %d%%\n", c.HumidityTrend, c.AvgHumidity)
	_, _ = fmt.Fprintf(out, "  Disasters:   %s\n", c.DisasterTrend)

	if v.MapURL != "" {
		_, _ = fmt.Fprintf(out, "\nMap: %s\n", v.MapURL)
	}
}

func writeList(out io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintf(out, "  %s: %s\n", label, strings.Join(items, ", "))
}

// formatMoney renders whole currency units with thousands separators.
func formatMoney(v int) string {
	return printer.Sprintf("$%d", v)
}

// formatHistory writes a tabular list of saved analyses to out.
func formatHistory(out io.Writer, recs []model.AnalysisRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tLOCATION\tAQI\tLAND_COST\tGROUND\tFLOOD\tQUAKE\tTSUNAMI\tLANDSLIDE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t--------\t---\t---------\t------\t-----\t-----\t-------\t---------\t-------")

	for _, r := range recs {
		_, _ = fmt.Fprintf(w, "%s\t%.4f, %.4f\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.Latitude, r.Longitude,
			r.AQI,
			formatMoney(r.LandCost),
			r.GroundStability,
			r.FloodRisk,
			r.EarthquakeRisk,
			r.TsunamiRisk,
			r.LandslideRisk,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatBatch writes one line per batch item and a summary.
func formatBatch(out io.Writer, res *report.BatchResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tLOCATION\tAQI\tLAND_COST\tERROR")
	_, _ = fmt.Fprintln(w, "-\t--\t--------\t---\t---------\t-----")

	for _, item := range res.Items {
		if item.Result == nil {
			_, _ = fmt.Fprintf(w, "%d\t\t\t\t\t%s\n", item.Index+1, item.Error)
			continue
		}
		r := item.Result
		_, _ = fmt.Fprintf(w, "%d\t%s\t%.4f, %.4f\t%d\t%s\t\n",
			item.Index+1,
			truncateID(r.Record.ID),
			r.Report.Latitude, r.Report.Longitude,
			r.Report.AQI,
			formatMoney(r.Report.LandCost),
		)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\nSaved: %d  Failed: %d\n", res.Saved, res.Failed)
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
