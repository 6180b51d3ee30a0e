package tabular

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/geo-analytics/internal/geo"
	"github.com/sells-group/geo-analytics/internal/model"
)

// HistorySheet is the sheet WriteXLSX creates.
const HistorySheet = "History"

var historyHeader = []string{
	"id", "latitude", "longitude", "aqi",
	"ground_stability", "flood_risk", "earthquake_risk", "tsunami_risk", "landslide_risk",
	"land_cost", "model_version", "created_at",
}

// WriteXLSX writes records to a single "History" sheet with a header row.
func WriteXLSX(w io.Writer, recs []model.AnalysisRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(HistorySheet)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range historyHeader {
		header.AddCell().SetString(h)
	}

	for _, rec := range recs {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.ID)
		row.AddCell().SetFloat(rec.Latitude)
		row.AddCell().SetFloat(rec.Longitude)
		row.AddCell().SetInt(rec.AQI)
		row.AddCell().SetString(rec.GroundStability)
		row.AddCell().SetString(rec.FloodRisk)
		row.AddCell().SetString(rec.EarthquakeRisk)
		row.AddCell().SetString(rec.TsunamiRisk)
		row.AddCell().SetString(rec.LandslideRisk)
		row.AddCell().SetInt(rec.LandCost)
		row.AddCell().SetString(rec.ModelVersion)
		row.AddCell().SetString(rec.CreatedAt.UTC().Format(time.RFC3339))
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write")
	}
	return nil
}

// ReadXLSXCoordinates reads coordinates from the first sheet of an XLSX file
// whose header row has "latitude" and "longitude" columns.
func ReadXLSXCoordinates(path string) ([]geo.Coordinate, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: file has no sheets")
	}

	rows := f.Sheets[0].Rows
	if len(rows) == 0 {
		return []geo.Coordinate{}, nil
	}

	header := normalizeHeader(rowToStrings(rows[0]))
	if missing := missingColumns(header, "latitude", "longitude"); len(missing) > 0 {
		return nil, eris.Errorf("xlsx: missing columns %v", missing)
	}
	latCol, lonCol := indexOf(header, "latitude"), indexOf(header, "longitude")

	coords := make([]geo.Coordinate, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := rowToStrings(row)
		if isBlank(cells) {
			continue
		}
		coords = append(coords, coordinateRow{
			Latitude:  cellAt(cells, latCol),
			Longitude: cellAt(cells, lonCol),
		}.coordinate())
	}
	return coords, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
