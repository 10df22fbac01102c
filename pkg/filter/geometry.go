package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type gmlKind int

const (
	gmlUnknown gmlKind = iota
	gmlPoint
	gmlLineString
	gmlLinearRing
	gmlPolygon
	gmlMultiPoint
	gmlMultiLineString
	gmlMultiPolygon
	gmlBox
	gmlEnvelope
)

var gmlKinds = map[string]gmlKind{
	"Point":           gmlPoint,
	"LineString":      gmlLineString,
	"LinearRing":      gmlLinearRing,
	"Polygon":         gmlPolygon,
	"MultiPoint":      gmlMultiPoint,
	"MultiLineString": gmlMultiLineString,
	"MultiCurve":      gmlMultiLineString,
	"MultiPolygon":    gmlMultiPolygon,
	"MultiSurface":    gmlMultiPolygon,
	"Box":             gmlBox,
	"Envelope":        gmlEnvelope,
}

// geometryOperand synthesises the SQL geometry literal for a GML
// geometry or envelope element.
func (t *translation) geometryOperand(n *Node) (string, error) {
	swap := false
	if srsName, ok := n.Attribute("srsName"); ok {
		srs, err := parseSRSName(srsName)
		if err != nil {
			return "", err
		}
		if srs.SRID != t.schema.SRID {
			return "", newError(InvalidSrs, "srsName %q does not match layer SRID %d", srsName, t.schema.SRID)
		}
		swap = srs.LatLon && t.schema.DegreeUnits
	}

	r := gmlReader{swap: swap}
	g, err := r.geometry(n)
	if err != nil {
		return "", err
	}

	return t.geometryLiteral(g), nil
}

func (t *translation) geometryLiteral(g orb.Geometry) string {
	return fmt.Sprintf("%s('%s'::geometry,%d)", t.dialect.function("setsrid"), wkt(g), t.schema.SRID)
}

// gmlReader converts GML2/GML3 elements to orb geometries.
type gmlReader struct {
	swap bool
}

func (r gmlReader) geometry(n *Node) (orb.Geometry, error) {
	var (
		g   orb.Geometry
		err error
	)
	switch gmlKinds[n.Name] {
	case gmlPoint:
		g, err = r.point(n)
	case gmlLineString:
		g, err = r.lineString(n)
	case gmlPolygon:
		g, err = r.polygon(n)
	case gmlMultiPoint:
		g, err = r.multiPoint(n)
	case gmlMultiLineString:
		g, err = r.multiLineString(n)
	case gmlMultiPolygon:
		g, err = r.multiPolygon(n)
	case gmlBox, gmlEnvelope:
		return r.envelope(n)
	default:
		return nil, newError(InvalidGeometry, "unsupported geometry %q", n.Name)
	}
	if err != nil {
		return nil, err
	}

	if err := validateGeometry(g); err != nil {
		return nil, wrapError(InvalidGeometry, err, "bad geometry %s", n.Name)
	}
	return g, nil
}

func (r gmlReader) point(n *Node) (orb.Point, error) {
	points, err := r.coordinates(n)
	if err != nil {
		return orb.Point{}, err
	}
	if len(points) != 1 {
		return orb.Point{}, newError(InvalidGeometry, "Point expects one position, found %d", len(points))
	}
	return points[0], nil
}

func (r gmlReader) lineString(n *Node) (orb.LineString, error) {
	points, err := r.coordinates(n)
	if err != nil {
		return nil, err
	}
	return orb.LineString(points), nil
}

func (r gmlReader) ring(n *Node) (orb.Ring, error) {
	if n == nil || gmlKinds[n.Name] != gmlLinearRing {
		return nil, newError(InvalidGeometry, "polygon boundary expects a LinearRing")
	}
	points, err := r.coordinates(n)
	if err != nil {
		return nil, err
	}
	return orb.Ring(points), nil
}

// polygon reads outerBoundaryIs/innerBoundaryIs (GML2) or
// exterior/interior (GML3) rings.
func (r gmlReader) polygon(n *Node) (orb.Polygon, error) {
	var (
		polygon  orb.Polygon
		exterior bool
	)
	for _, boundary := range n.Elements() {
		switch boundary.Name {
		case "outerBoundaryIs", "exterior":
			if exterior {
				return nil, newError(InvalidGeometry, "polygon has more than one exterior ring")
			}
			ring, err := r.ring(firstElement(boundary))
			if err != nil {
				return nil, err
			}
			polygon = append(orb.Polygon{ring}, polygon...)
			exterior = true
		case "innerBoundaryIs", "interior":
			ring, err := r.ring(firstElement(boundary))
			if err != nil {
				return nil, err
			}
			polygon = append(polygon, ring)
		default:
			return nil, newError(InvalidGeometry, "unexpected %q in Polygon", boundary.Name)
		}
	}
	if !exterior {
		return nil, newError(InvalidGeometry, "polygon has no exterior ring")
	}
	return polygon, nil
}

func (r gmlReader) multiPoint(n *Node) (orb.MultiPoint, error) {
	members, err := memberGeometries(n, "pointMember", "pointMembers")
	if err != nil {
		return nil, err
	}
	mp := make(orb.MultiPoint, 0, len(members))
	for _, m := range members {
		if gmlKinds[m.Name] != gmlPoint {
			return nil, newError(InvalidGeometry, "MultiPoint member must be a Point, found %q", m.Name)
		}
		p, err := r.point(m)
		if err != nil {
			return nil, err
		}
		mp = append(mp, p)
	}
	return mp, nil
}

func (r gmlReader) multiLineString(n *Node) (orb.MultiLineString, error) {
	members, err := memberGeometries(n, "lineStringMember", "curveMember", "curveMembers")
	if err != nil {
		return nil, err
	}
	mls := make(orb.MultiLineString, 0, len(members))
	for _, m := range members {
		if gmlKinds[m.Name] != gmlLineString {
			return nil, newError(InvalidGeometry, "%s member must be a LineString, found %q", n.Name, m.Name)
		}
		ls, err := r.lineString(m)
		if err != nil {
			return nil, err
		}
		mls = append(mls, ls)
	}
	return mls, nil
}

func (r gmlReader) multiPolygon(n *Node) (orb.MultiPolygon, error) {
	members, err := memberGeometries(n, "polygonMember", "surfaceMember", "surfaceMembers")
	if err != nil {
		return nil, err
	}
	mp := make(orb.MultiPolygon, 0, len(members))
	for _, m := range members {
		if gmlKinds[m.Name] != gmlPolygon {
			return nil, newError(InvalidGeometry, "%s member must be a Polygon, found %q", n.Name, m.Name)
		}
		p, err := r.polygon(m)
		if err != nil {
			return nil, err
		}
		mp = append(mp, p)
	}
	return mp, nil
}

// envelope reads a GML2 Box or a GML3 Envelope. Corners are kept as
// given; a lower corner above the upper one is rejected.
func (r gmlReader) envelope(n *Node) (orb.Bound, error) {
	var (
		corners []orb.Point
		err     error
	)

	lower, upper := n.Child("lowerCorner"), n.Child("upperCorner")
	if lower != nil || upper != nil {
		if lower == nil || upper == nil {
			return orb.Bound{}, newError(InvalidGeometry, "Envelope requires lowerCorner and upperCorner")
		}
		for _, corner := range []*Node{lower, upper} {
			points, err := r.positions(corner.Content(), dimension(corner, n))
			if err != nil {
				return orb.Bound{}, err
			}
			corners = append(corners, points...)
		}
	} else {
		corners, err = r.coordinates(n)
		if err != nil {
			return orb.Bound{}, err
		}
	}

	if len(corners) != 2 {
		return orb.Bound{}, newError(InvalidGeometry, "%s expects two corners, found %d", n.Name, len(corners))
	}
	lo, hi := corners[0], corners[1]
	if lo[0] > hi[0] || lo[1] > hi[1] {
		return orb.Bound{}, newError(InvalidGeometry, "%s lower corner is above upper corner", n.Name)
	}

	return orb.Bound{Min: lo, Max: hi}, nil
}

// coordinates collects the positions carried by the children of n:
// coordinates, coord, pos and posList.
func (r gmlReader) coordinates(n *Node) ([]orb.Point, error) {
	var points []orb.Point
	for _, c := range n.Elements() {
		var (
			ps  []orb.Point
			err error
		)
		switch c.Name {
		case "coordinates":
			ps, err = r.tuples(c)
		case "coord":
			var p orb.Point
			p, err = r.coord(c)
			ps = []orb.Point{p}
		case "pos", "posList":
			ps, err = r.positions(c.Content(), dimension(c, n))
		default:
			err = newError(InvalidGeometry, "unexpected %q in %s", c.Name, n.Name)
		}
		if err != nil {
			return nil, err
		}
		points = append(points, ps...)
	}

	if len(points) == 0 {
		return nil, newError(InvalidGeometry, "%s has no coordinates", n.Name)
	}
	return points, nil
}

// tuples parses GML2 "x1,y1 x2,y2" honouring the cs and ts attributes.
func (r gmlReader) tuples(n *Node) ([]orb.Point, error) {
	cs, ok := n.Attribute("cs")
	if !ok || cs == "" {
		cs = ","
	}
	ts, ok := n.Attribute("ts")
	if !ok || ts == "" {
		ts = " "
	}

	var tuples []string
	if strings.TrimSpace(ts) == "" {
		tuples = strings.Fields(n.Content())
	} else {
		for _, tuple := range strings.Split(n.Content(), ts) {
			if tuple = strings.TrimSpace(tuple); tuple != "" {
				tuples = append(tuples, tuple)
			}
		}
	}

	points := make([]orb.Point, 0, len(tuples))
	for _, tuple := range tuples {
		axes := strings.Split(tuple, cs)
		if len(axes) != 2 && len(axes) != 3 {
			return nil, newError(InvalidGeometry, "bad coordinate tuple %q", tuple)
		}
		p, err := r.makePoint(axes[0], axes[1])
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// coord parses a GML2 <coord><X/><Y/></coord>.
func (r gmlReader) coord(n *Node) (orb.Point, error) {
	x, y := n.Child("X"), n.Child("Y")
	if x == nil || y == nil {
		return orb.Point{}, newError(InvalidGeometry, "coord requires X and Y")
	}
	return r.makePoint(x.Content(), y.Content())
}

// positions parses GML3 space separated axes grouped by dim.
func (r gmlReader) positions(text string, dim int) ([]orb.Point, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields)%dim != 0 {
		return nil, newError(InvalidGeometry, "position list %q does not match dimension %d", text, dim)
	}

	points := make([]orb.Point, 0, len(fields)/dim)
	for i := 0; i < len(fields); i += dim {
		p, err := r.makePoint(fields[i], fields[i+1])
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func (r gmlReader) makePoint(xs, ys string) (orb.Point, error) {
	x, ok := parseCoordinate(xs)
	if !ok {
		return orb.Point{}, newError(InvalidGeometry, "bad coordinate %q", xs)
	}
	y, ok := parseCoordinate(ys)
	if !ok {
		return orb.Point{}, newError(InvalidGeometry, "bad coordinate %q", ys)
	}
	if r.swap {
		return orb.Point{y, x}, nil
	}
	return orb.Point{x, y}, nil
}

// dimension reads srsDimension from the position element or its parent.
// z values are dropped.
func dimension(nodes ...*Node) int {
	for _, n := range nodes {
		if v, ok := n.Attribute("srsDimension"); ok {
			if d, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && (d == 2 || d == 3) {
				return d
			}
		}
	}
	return 2
}

// memberGeometries returns the geometries wrapped by the member
// properties of a multi geometry.
func memberGeometries(n *Node, memberNames ...string) ([]*Node, error) {
	var members []*Node
	for _, c := range n.Elements() {
		known := false
		for _, name := range memberNames {
			if c.Name == name {
				known = true
				break
			}
		}
		if !known {
			return nil, newError(InvalidGeometry, "unexpected %q in %s", c.Name, n.Name)
		}
		members = append(members, c.Elements()...)
	}
	if len(members) == 0 {
		return nil, newError(InvalidGeometry, "%s has no members", n.Name)
	}
	return members, nil
}

func firstElement(n *Node) *Node {
	if elements := n.Elements(); len(elements) > 0 {
		return elements[0]
	}
	return nil
}

// validateGeometry checks the shape constraints PostGIS enforces on
// geometry literals.
func validateGeometry(geom orb.Geometry) error {
	switch g := geom.(type) {
	case orb.Point:
		return nil
	case orb.MultiPoint:
		if len(g) == 0 {
			return fmt.Errorf("multipoint is empty")
		}
		return nil
	case orb.LineString:
		if len(g) < 2 {
			return fmt.Errorf("linestring must have at least 2 points, has %d", len(g))
		}
		return nil
	case orb.MultiLineString:
		for i, ls := range g {
			if err := validateGeometry(ls); err != nil {
				return fmt.Errorf("multilinestring[%d]: %w", i, err)
			}
		}
		return nil
	case orb.Polygon:
		for i, ring := range g {
			if len(ring) < 4 {
				return fmt.Errorf("ring %d must have at least 4 points, has %d", i, len(ring))
			}
			if !ring[0].Equal(ring[len(ring)-1]) {
				return fmt.Errorf("ring %d is not closed", i)
			}
		}
		return nil
	case orb.MultiPolygon:
		for i, p := range g {
			if err := validateGeometry(p); err != nil {
				return fmt.Errorf("multipolygon[%d]: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown geometry type: %T", geom)
	}
}

// parseCoordinate accepts finite decimal numbers only. NaN, Inf and hex
// floats are rejected.
func parseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
