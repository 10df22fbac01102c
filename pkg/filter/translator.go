package filter

import (
	"context"
	"fmt"
	"strings"
)

const defaultMaxDepth = 64

// Dialect selects the spatial function names written into the SQL.
type Dialect int

const (
	// DialectLegacy writes un-prefixed names (setsrid, disjoint, Distance, ...).
	DialectLegacy Dialect = iota
	// DialectPostGIS writes ST_ prefixed names required by PostGIS 2 and later.
	DialectPostGIS
)

var postgisFunctions = map[string]string{
	"setsrid":         "ST_SetSRID",
	"equals":          "ST_Equals",
	"disjoint":        "ST_Disjoint",
	"touches":         "ST_Touches",
	"within":          "ST_Within",
	"overlaps":        "ST_Overlaps",
	"crosses":         "ST_Crosses",
	"intersects":      "ST_Intersects",
	"contains":        "ST_Contains",
	"Distance":        "ST_Distance",
	"distance_sphere": "ST_DistanceSphere",
	"centroid":        "ST_Centroid",
}

// ParseDialect maps "legacy" and "postgis" to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "", "legacy":
		return DialectLegacy, nil
	case "postgis", "st":
		return DialectPostGIS, nil
	default:
		return DialectLegacy, fmt.Errorf("unknown sql dialect %q", s)
	}
}

func (d Dialect) String() string {
	if d == DialectPostGIS {
		return "postgis"
	}
	return "legacy"
}

func (d Dialect) function(name string) string {
	if d == DialectPostGIS {
		if st, ok := postgisFunctions[name]; ok {
			return st
		}
	}
	return name
}

type Option func(*Translator)

func WithDialect(d Dialect) Option {
	return func(t *Translator) {
		t.dialect = d
	}
}

// WithMaxDepth bounds the nesting depth of predicates and expressions.
func WithMaxDepth(depth int) Option {
	return func(t *Translator) {
		if depth > 0 {
			t.maxDepth = depth
		}
	}
}

// Translator compiles Filter Encoding trees into SQL boolean expressions.
// It holds no per-call state and is safe for concurrent use.
type Translator struct {
	catalog  Catalog
	dialect  Dialect
	maxDepth int
}

func NewTranslator(catalog Catalog, opts ...Option) *Translator {
	t := &Translator{
		catalog:  catalog,
		dialect:  DialectLegacy,
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Translator) Dialect() Dialect {
	return t.dialect
}

// Translate renders the <Filter> element root as a WHERE-ready expression
// over the table of layer.
func (t *Translator) Translate(ctx context.Context, layer string, root *Node) (string, error) {
	tr, err := t.begin(ctx, layer)
	if err != nil {
		return "", err
	}

	if err := tr.filter(root); err != nil {
		return "", err
	}

	return tr.buf.String(), nil
}

// TranslateXML decodes src and translates it.
func (t *Translator) TranslateXML(ctx context.Context, layer string, src []byte) (string, error) {
	root, err := DecodeBytes(src)
	if err != nil {
		return "", err
	}
	return t.Translate(ctx, layer, root)
}

func (t *Translator) begin(ctx context.Context, layer string) (*translation, error) {
	schema, err := t.catalog.DescribeLayer(ctx, layer)
	if err != nil {
		return nil, wrapError(SchemaError, err, "cannot describe layer %q", layer)
	}

	return &translation{
		ctx:      ctx,
		catalog:  t.catalog,
		dialect:  t.dialect,
		maxDepth: t.maxDepth,
		layer:    layer,
		schema:   schema,
	}, nil
}

// translation is the state of one Translate call.
type translation struct {
	ctx      context.Context
	catalog  Catalog
	dialect  Dialect
	maxDepth int
	layer    string
	schema   *Schema
	buf      strings.Builder
	depth    int
}

func (t *translation) write(parts ...string) {
	for _, p := range parts {
		t.buf.WriteString(p)
	}
}

func (t *translation) enter() error {
	t.depth++
	if t.depth > t.maxDepth {
		return newError(InvalidFilter, "filter nesting exceeds %d levels", t.maxDepth)
	}
	return nil
}

func (t *translation) leave() {
	t.depth--
}

func (t *translation) filter(root *Node) error {
	if root == nil || root.Type != ElementNode || root.Name != "Filter" {
		return newError(InvalidFilter, "root element must be Filter")
	}

	children := root.Elements()
	if len(children) == 0 {
		return newError(InvalidFilter, "empty Filter")
	}

	if OperatorOf(children[0]).Class() == ClassIdentifier {
		return t.featureIDs(children)
	}

	if len(children) > 1 {
		return newError(InvalidFilter, "Filter must contain exactly one predicate, found %d", len(children))
	}

	return t.predicate(children[0])
}

// predicate dispatches a boolean-valued node.
func (t *translation) predicate(n *Node) error {
	if err := t.enter(); err != nil {
		return err
	}
	defer t.leave()

	op := OperatorOf(n)
	switch op.Class() {
	case ClassComparison:
		return t.comparison(n, op)
	case ClassLogical:
		return t.logical(n, op)
	case ClassSpatial:
		return t.spatial(n, op)
	case ClassIdentifier:
		return newError(InvalidFilter, "%s cannot be nested in a predicate", n.Name)
	default:
		return newError(InvalidFilter, "unexpected element %q", n.Name)
	}
}
