package geo

import (
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

// SRID for WGS84 longitude/latitude.
const SRID = 4326

// mapPadding is the half-width, in degrees, of the embedded map viewport.
const mapPadding = 0.05

const osmEmbedURL = "https://www.openstreetmap.org/export/embed.html"

// Point returns c as a go-geom point (X = longitude, Y = latitude).
func Point(c Coordinate) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Longitude, c.Latitude}).SetSRID(SRID)
}

// EncodeEWKB encodes c as little-endian EWKB with SRID 4326.
func EncodeEWKB(c Coordinate) ([]byte, error) {
	data, err := ewkb.Marshal(Point(c), ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode EWKB")
	}
	return data, nil
}

// DecodeEWKB decodes an EWKB point produced by EncodeEWKB.
func DecodeEWKB(data []byte) (Coordinate, error) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return Coordinate{}, eris.Wrap(err, "geo: decode EWKB")
	}
	p, ok := g.(*geom.Point)
	if !ok {
		return Coordinate{}, eris.Errorf("geo: expected point, got %T", g)
	}
	if p.SRID() != SRID {
		return Coordinate{}, eris.Errorf("geo: unexpected SRID %d", p.SRID())
	}
	return Coordinate{Latitude: p.Y(), Longitude: p.X()}, nil
}

// Viewport returns the map bounds centred on c.
func Viewport(c Coordinate) *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(
		c.Longitude-mapPadding, c.Latitude-mapPadding,
		c.Longitude+mapPadding, c.Latitude+mapPadding,
	)
}

// MapEmbedURL returns an OpenStreetMap embed URL with a marker on c.
func MapEmbedURL(c Coordinate) string {
	b := Viewport(c)
	bbox := formatDegrees(b.Min(0)) + "," + formatDegrees(b.Min(1)) + "," +
		formatDegrees(b.Max(0)) + "," + formatDegrees(b.Max(1))
	marker := formatDegrees(c.Latitude) + "," + formatDegrees(c.Longitude)

	q := url.Values{}
	q.Set("bbox", bbox)
	q.Set("layer", "mapnik")
	q.Set("marker", marker)
	return osmEmbedURL + "?" + q.Encode()
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
