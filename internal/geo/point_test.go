package geo

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint(t *testing.T) {
	p := Point(Coordinate{Latitude: 40.7128, Longitude: -74.006})
	assert.Equal(t, -74.006, p.X())
	assert.Equal(t, 40.7128, p.Y())
	assert.Equal(t, SRID, p.SRID())
}

func TestEWKB_RoundTrip(t *testing.T) {
	c := Coordinate{Latitude: -33.8688, Longitude: 151.2093}

	data, err := EncodeEWKB(c)
	require.NoError(t, err)
	// byte order + type + SRID + 2 float64
	assert.Len(t, data, 1+4+4+16)

	got, err := DecodeEWKB(data)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestDecodeEWKB_Garbage(t *testing.T) {
	_, err := DecodeEWKB([]byte{0x01, 0x02})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geo: decode EWKB")
}

func TestViewport(t *testing.T) {
	b := Viewport(Coordinate{Latitude: 10, Longitude: 20})
	assert.InDelta(t, 19.95, b.Min(0), 1e-9)
	assert.InDelta(t, 9.95, b.Min(1), 1e-9)
	assert.InDelta(t, 20.05, b.Max(0), 1e-9)
	assert.InDelta(t, 10.05, b.Max(1), 1e-9)
}

func TestMapEmbedURL(t *testing.T) {
	raw := MapEmbedURL(Coordinate{Latitude: 10, Longitude: 20})
	require.True(t, strings.HasPrefix(raw, "https://www.openstreetmap.org/export/embed.html?"))

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "mapnik", q.Get("layer"))
	assert.Equal(t, "10,20", q.Get("marker"))

	parts := strings.Split(q.Get("bbox"), ",")
	require.Len(t, parts, 4)
	assert.Equal(t, "19.95", parts[0])
	assert.Equal(t, "20.05", parts[2])
}
