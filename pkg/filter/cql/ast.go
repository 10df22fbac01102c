package cql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/geowfs/wfs-gateway/pkg/filter"
)

var spatialElements = map[string]string{
	"equals":     "Equals",
	"disjoint":   "Disjoint",
	"touches":    "Touches",
	"within":     "Within",
	"overlaps":   "Overlaps",
	"crosses":    "Crosses",
	"intersects": "Intersects",
	"contains":   "Contains",
	"dwithin":    "DWithin",
	"beyond":     "Beyond",
}

// logical joins operands under one And/Or element; a single operand is
// returned as is.
func logical(tag string, operands []*filter.Node) *filter.Node {
	if len(operands) == 1 {
		return operands[0]
	}
	return filter.NewElement(tag, nil, operands...)
}

func negate(n *filter.Node) *filter.Node {
	return filter.NewElement("Not", nil, n)
}

func propertyName(name string) *filter.Node {
	return filter.NewElement("PropertyName", nil, filter.NewText(name))
}

func literal(value string) *filter.Node {
	return filter.NewElement("Literal", nil, filter.NewText(value))
}

// likePattern uses the SQL wildcards, with backslash as escape.
func likePattern(property *filter.Node, pattern string, caseSensitive bool) *filter.Node {
	attr := map[string]string{
		"wildCard":   "%",
		"singleChar": "_",
		"escape":     `\`,
	}
	if !caseSensitive {
		attr["matchCase"] = "false"
	}
	return filter.NewElement("PropertyIsLike", attr, property, literal(pattern))
}

func envelope(coords [4]string, srsName string) *filter.Node {
	var attr map[string]string
	if srsName != "" {
		attr = map[string]string{"srsName": srsName}
	}
	return filter.NewElement("Envelope", attr,
		filter.NewElement("lowerCorner", nil, filter.NewText(coords[0]+" "+coords[1])),
		filter.NewElement("upperCorner", nil, filter.NewText(coords[2]+" "+coords[3])),
	)
}

// gmlGeometry converts WKT text to the GML3 element the translator reads.
func gmlGeometry(text string) (*filter.Node, error) {
	g, err := wkt.Unmarshal(text)
	if err != nil {
		return nil, err
	}

	switch g := g.(type) {
	case orb.Point:
		return gmlPoint(g), nil
	case orb.LineString:
		return gmlLineString(g), nil
	case orb.Polygon:
		return gmlPolygon(g), nil
	case orb.MultiPoint:
		members := make([]*filter.Node, 0, len(g))
		for _, p := range g {
			members = append(members, filter.NewElement("pointMember", nil, gmlPoint(p)))
		}
		return filter.NewElement("MultiPoint", nil, members...), nil
	case orb.MultiLineString:
		members := make([]*filter.Node, 0, len(g))
		for _, ls := range g {
			members = append(members, filter.NewElement("lineStringMember", nil, gmlLineString(ls)))
		}
		return filter.NewElement("MultiLineString", nil, members...), nil
	case orb.MultiPolygon:
		members := make([]*filter.Node, 0, len(g))
		for _, p := range g {
			members = append(members, filter.NewElement("polygonMember", nil, gmlPolygon(p)))
		}
		return filter.NewElement("MultiPolygon", nil, members...), nil
	default:
		return nil, fmt.Errorf("unsupported geometry %s", g.GeoJSONType())
	}
}

func gmlPoint(p orb.Point) *filter.Node {
	return filter.NewElement("Point", nil, filter.NewElement("pos", nil, filter.NewText(posList(p))))
}

func gmlLineString(ls orb.LineString) *filter.Node {
	return filter.NewElement("LineString", nil, filter.NewElement("posList", nil, filter.NewText(posList(ls...))))
}

func gmlPolygon(p orb.Polygon) *filter.Node {
	boundaries := make([]*filter.Node, 0, len(p))
	for i, ring := range p {
		tag := "interior"
		if i == 0 {
			tag = "exterior"
		}
		boundaries = append(boundaries, filter.NewElement(tag, nil,
			filter.NewElement("LinearRing", nil,
				filter.NewElement("posList", nil, filter.NewText(posList(ring...))))))
	}
	return filter.NewElement("Polygon", nil, boundaries...)
}

func posList(points ...orb.Point) string {
	axes := make([]string, 0, 2*len(points))
	for _, p := range points {
		axes = append(axes,
			strconv.FormatFloat(p[0], 'f', -1, 64),
			strconv.FormatFloat(p[1], 'f', -1, 64),
		)
	}
	return strings.Join(axes, " ")
}
