// Package tabular reads coordinate lists and writes analysis history as CSV
// or XLSX.
package tabular

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-analytics/internal/geo"
	"github.com/sells-group/geo-analytics/internal/model"
)

// coordinateRow is one input line. Values stay text so that a bad cell only
// fails its own row.
type coordinateRow struct {
	Latitude  string `csv:"latitude"`
	Longitude string `csv:"longitude"`
}

// coordinate converts the row. A cell that is not a number becomes NaN,
// which geo.Validate reports as "must be a valid number".
func (r coordinateRow) coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: parseCell(r.Latitude), Longitude: parseCell(r.Longitude)}
}

func parseCell(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ReadCoordinates decodes a CSV with "latitude" and "longitude" header
// columns. Other columns are ignored.
func ReadCoordinates(r io.Reader) ([]geo.Coordinate, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []geo.Coordinate{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	header = normalizeHeader(header)
	if missing := missingColumns(header, "latitude", "longitude"); len(missing) > 0 {
		return nil, eris.Errorf("csv: missing columns %s", strings.Join(missing, ", "))
	}

	dec, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, eris.Wrap(err, "csv: new decoder")
	}

	coords := []geo.Coordinate{}
	for {
		var row coordinateRow
		err := dec.Decode(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: decode row %d", len(coords)+1)
		}
		coords = append(coords, row.coordinate())
	}
	return coords, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	return out
}

func missingColumns(header []string, want ...string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, w := range want {
		if !have[w] {
			missing = append(missing, w)
		}
	}
	return missing
}

// WriteCSV writes records with a header row.
func WriteCSV(w io.Writer, recs []model.AnalysisRecord) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if len(recs) == 0 {
		if err := enc.EncodeHeader(model.AnalysisRecord{}); err != nil {
			return eris.Wrap(err, "csv: encode header")
		}
	}
	for i := range recs {
		if err := enc.Encode(recs[i]); err != nil {
			return eris.Wrapf(err, "csv: encode record %d", i)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}
