package filter

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// wkt writes the PostGIS text form of g. Coordinates are written from
// their parsed values, never copied from the request.
func wkt(g orb.Geometry) string {
	var b strings.Builder

	switch g := g.(type) {
	case orb.Point:
		b.WriteString("POINT(")
		writePoint(&b, g)
		b.WriteString(")")
	case orb.LineString:
		b.WriteString("LINESTRING")
		writePoints(&b, g)
	case orb.MultiPoint:
		b.WriteString("MULTIPOINT")
		writePoints(&b, g)
	case orb.Polygon:
		b.WriteString("POLYGON")
		writePolygon(&b, g)
	case orb.Bound:
		b.WriteString("POLYGON")
		writePolygon(&b, g.ToPolygon())
	case orb.MultiLineString:
		b.WriteString("MULTILINESTRING(")
		for i, ls := range g {
			if i > 0 {
				b.WriteByte(',')
			}
			writePoints(&b, ls)
		}
		b.WriteString(")")
	case orb.MultiPolygon:
		b.WriteString("MULTIPOLYGON(")
		for i, p := range g {
			if i > 0 {
				b.WriteByte(',')
			}
			writePolygon(&b, p)
		}
		b.WriteString(")")
	}

	return b.String()
}

func writePolygon(b *strings.Builder, p orb.Polygon) {
	b.WriteByte('(')
	for i, ring := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		writePoints(b, ring)
	}
	b.WriteByte(')')
}

func writePoints(b *strings.Builder, points []orb.Point) {
	b.WriteByte('(')
	for i, p := range points {
		if i > 0 {
			b.WriteByte(',')
		}
		writePoint(b, p)
	}
	b.WriteByte(')')
}

func writePoint(b *strings.Builder, p orb.Point) {
	b.WriteString(formatNumber(p[0]))
	b.WriteByte(' ')
	b.WriteString(formatNumber(p[1]))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
