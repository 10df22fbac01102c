package filter

import (
	"regexp"
	"strconv"
	"strings"
)

var positionalProperty = regexp.MustCompile(`^\*\[\s*(?:position\(\)\s*=\s*)?(\d+)\s*\]$`)

// propertyName resolves and writes a double-quoted column name.
func (t *translation) propertyName(n *Node) (Column, error) {
	column, err := t.column(n)
	if err != nil {
		return Column{}, err
	}
	t.write(QuoteIdentifier(column.Name))
	return column, nil
}

// column resolves a PropertyName node against the layer schema.
func (t *translation) column(n *Node) (Column, error) {
	if OperatorOf(n) != OpPropertyName {
		return Column{}, newError(InvalidFilter, "expected PropertyName, found %q", n.Name)
	}

	name, err := t.resolveProperty(n.Content())
	if err != nil {
		return Column{}, err
	}

	column, ok := t.schema.Column(name)
	if !ok {
		return Column{}, newError(UnknownProperty, "property %q is not available on layer %q", name, t.layer)
	}
	return column, nil
}

func (t *translation) resolveProperty(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", newError(InvalidFilter, "empty PropertyName")
	}

	if m := positionalProperty.FindStringSubmatch(name); m != nil {
		position, err := strconv.Atoi(m[1])
		if err != nil {
			return "", wrapError(InvalidFilter, err, "invalid property position %q", m[1])
		}
		column, err := t.catalog.ColumnAt(t.ctx, t.layer, position)
		if err != nil {
			return "", wrapError(UnknownProperty, err, "no property at position %d", position)
		}
		return column, nil
	}

	steps := strings.Split(name, "/")
	switch len(steps) {
	case 1:
	case 2:
		if localName(steps[0]) != localName(t.layer) {
			return "", newError(UnknownProperty, "property %q does not belong to layer %q", name, t.layer)
		}
		name = steps[1]
	default:
		return "", newError(UnknownProperty, "unsupported property path %q", name)
	}

	name = strings.TrimSuffix(name, "[1]")
	return localName(name), nil
}

// localName strips a namespace prefix.
func localName(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (t *translation) featureIDs(nodes []*Node) error {
	kind := OpUnknown
	values := make([]string, 0, len(nodes))

	for _, n := range nodes {
		op := OperatorOf(n)
		if op.Class() != ClassIdentifier {
			return newError(InvalidFilter, "%q cannot be combined with feature identifiers", n.Name)
		}
		if kind != OpUnknown && op != kind {
			return newError(ConflictingIdKind, "FeatureId and GmlObjectId cannot be mixed")
		}
		kind = op

		attr := "fid"
		if op == OpGmlObjectId {
			attr = "id"
		}
		v, ok := n.Attribute(attr)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return newError(InvalidFilter, "%s requires a %s attribute", n.Name, attr)
		}
		values = append(values, v)
	}

	return t.writeFeatureIDs(values)
}

// writeFeatureIDs writes "id" = 'v1' OR "id" = 'v2' ...
func (t *translation) writeFeatureIDs(values []string) error {
	if t.schema.IDColumn == "" {
		return newError(FeatureIdMismatch, "layer %q has no identifier column", t.layer)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		id, err := t.splitFeatureID(v)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	column := QuoteIdentifier(t.schema.IDColumn)
	for i, id := range ids {
		if i > 0 {
			t.write(" OR ")
		}
		t.write(column, " = ", quote(id))
	}

	return nil
}

// splitFeatureID checks the layer prefix of layer.id and returns id.
func (t *translation) splitFeatureID(v string) (string, error) {
	i := strings.LastIndex(v, ".")
	if i < 0 {
		return v, nil
	}

	prefix, id := v[:i], v[i+1:]
	if localName(prefix) != localName(t.layer) {
		return "", newError(FeatureIdMismatch, "feature id %q must match %s.id", v, t.layer)
	}
	if id == "" {
		return "", newError(InvalidFilter, "feature id %q has no identifier", v)
	}

	return id, nil
}
