package filter

import (
	"math"
	"strconv"
	"strings"
)

var topologicalPredicates = map[Operator]string{
	OpEquals:     "equals",
	OpDisjoint:   "disjoint",
	OpTouches:    "touches",
	OpWithin:     "within",
	OpOverlaps:   "overlaps",
	OpCrosses:    "crosses",
	OpIntersects: "intersects",
	OpContains:   "contains",
}

func (t *translation) spatial(n *Node, op Operator) error {
	switch op {
	case OpBBox:
		return t.bbox(n)
	case OpDWithin, OpBeyond:
		return t.distance(n, op)
	default:
		return t.topological(n, op)
	}
}

// topological renders pred("geom",<geometry>).
func (t *translation) topological(n *Node, op Operator) error {
	operands := n.Elements()
	if len(operands) != 2 {
		return newError(InvalidFilter, "%s expects a PropertyName and a geometry", op)
	}

	column, err := t.geometryColumn(operands[0])
	if err != nil {
		return err
	}
	geometry, err := t.geometryOperand(operands[1])
	if err != nil {
		return err
	}

	t.write(t.dialect.function(topologicalPredicates[op]), "(", QuoteIdentifier(column), ",", geometry, ")")

	return nil
}

// distance renders Distance(centroid("geom"),centroid(<geometry>)) < d.
// Layers in degrees use the great-circle distance.
func (t *translation) distance(n *Node, op Operator) error {
	operands := n.Elements()
	if len(operands) != 3 || operands[2].Name != "Distance" {
		return newError(InvalidFilter, "%s expects a PropertyName, a geometry and a Distance", op)
	}

	column, err := t.geometryColumn(operands[0])
	if err != nil {
		return err
	}
	geometry, err := t.geometryOperand(operands[1])
	if err != nil {
		return err
	}
	value, err := distanceValue(operands[2])
	if err != nil {
		return err
	}

	distanceFn := "Distance"
	if t.schema.DegreeUnits {
		distanceFn = "distance_sphere"
	}
	centroid := t.dialect.function("centroid")

	t.write(t.dialect.function(distanceFn), "(",
		centroid, "(", QuoteIdentifier(column), "),",
		centroid, "(", geometry, "))")

	if op == OpDWithin {
		t.write(" < ", value)
	} else {
		t.write(" > ", value)
	}

	return nil
}

// distanceValue converts a Distance element to meters.
func distanceValue(n *Node) (string, error) {
	units, ok := n.Attribute("units")
	if !ok {
		return "", newError(InvalidUnits, "Distance requires a units attribute")
	}

	var factor float64
	switch {
	case units == "meters" || strings.HasSuffix(units, "#metre"):
		factor = 1
	case units == "kilometers" || strings.HasSuffix(units, "#kilometre"):
		factor = 1000
	default:
		return "", newError(InvalidUnits, "units %q not supported, use 'meters' or 'kilometers'", units)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(n.Content()), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", newError(InvalidFilter, "distance %q is not a number", strings.TrimSpace(n.Content()))
	}

	return formatNumber(v * factor), nil
}

// bbox renders not(disjoint("geom",<envelope>)). Without a PropertyName
// every geometry column of the layer is tested.
func (t *translation) bbox(n *Node) error {
	operands := n.Elements()

	var (
		columns  []string
		envelope *Node
	)
	switch len(operands) {
	case 1:
		columns = t.schema.GeometryColumns
		envelope = operands[0]
	case 2:
		column, err := t.geometryColumn(operands[0])
		if err != nil {
			return err
		}
		columns = []string{column}
		envelope = operands[1]
	default:
		return newError(InvalidFilter, "BBOX expects an optional PropertyName and an envelope")
	}

	if len(columns) == 0 {
		return newError(UnknownProperty, "layer %q has no geometry column", t.layer)
	}
	if kind := gmlKinds[envelope.Name]; kind != gmlBox && kind != gmlEnvelope {
		return newError(InvalidGeometry, "BBOX expects a Box or Envelope, found %q", envelope.Name)
	}

	literal, err := t.geometryOperand(envelope)
	if err != nil {
		return err
	}

	t.writeBBox(columns, literal)
	return nil
}

func (t *translation) writeBBox(columns []string, envelope string) {
	if len(columns) > 1 {
		t.write("(")
	}
	for i, column := range columns {
		if i > 0 {
			t.write(" OR ")
		}
		t.write("not(", t.dialect.function("disjoint"), "(", QuoteIdentifier(column), ",", envelope, "))")
	}
	if len(columns) > 1 {
		t.write(")")
	}
}

// geometryColumn resolves a PropertyName that must name a geometry column.
func (t *translation) geometryColumn(n *Node) (string, error) {
	column, err := t.column(n)
	if err != nil {
		return "", err
	}
	if !t.schema.IsGeometry(column.Name) {
		return "", newError(UnknownProperty, "property %q is not a geometry column", column.Name)
	}
	return column.Name, nil
}
