package filter

// Class groups operators by the translator that renders them.
type Class int

const (
	ClassUnknown Class = iota
	ClassComparison
	ClassLogical
	ClassSpatial
	ClassIdentifier
	ClassExpression
)

// Operator is the decoded kind of a Filter Encoding element.
type Operator int

const (
	OpUnknown Operator = iota

	OpEqualTo
	OpNotEqualTo
	OpLessThan
	OpGreaterThan
	OpLessThanOrEqualTo
	OpGreaterThanOrEqualTo
	OpLike
	OpNull
	OpBetween

	OpAnd
	OpOr
	OpNot

	OpEquals
	OpDisjoint
	OpTouches
	OpWithin
	OpOverlaps
	OpCrosses
	OpIntersects
	OpContains
	OpDWithin
	OpBeyond
	OpBBox

	OpFeatureId
	OpGmlObjectId

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpLiteral
	OpPropertyName
	OpFunction
)

var operatorTags = map[string]Operator{
	"PropertyIsEqualTo":              OpEqualTo,
	"PropertyIsNotEqualTo":           OpNotEqualTo,
	"PropertyIsLessThan":             OpLessThan,
	"PropertyIsGreaterThan":          OpGreaterThan,
	"PropertyIsLessThanOrEqualTo":    OpLessThanOrEqualTo,
	"PropertyIsGreaterThanOrEqualTo": OpGreaterThanOrEqualTo,
	"PropertyIsLike":                 OpLike,
	"PropertyIsNull":                 OpNull,
	"PropertyIsBetween":              OpBetween,
	"And":                            OpAnd,
	"Or":                             OpOr,
	"Not":                            OpNot,
	"Equals":                         OpEquals,
	"Disjoint":                       OpDisjoint,
	"Touches":                        OpTouches,
	"Within":                         OpWithin,
	"Overlaps":                       OpOverlaps,
	"Crosses":                        OpCrosses,
	"Intersects":                     OpIntersects,
	"Contains":                       OpContains,
	"DWithin":                        OpDWithin,
	"Beyond":                         OpBeyond,
	"BBOX":                           OpBBox,
	"FeatureId":                      OpFeatureId,
	"GmlObjectId":                    OpGmlObjectId,
	"Add":                            OpAdd,
	"Sub":                            OpSub,
	"Mul":                            OpMul,
	"Div":                            OpDiv,
	"Literal":                        OpLiteral,
	"PropertyName":                   OpPropertyName,
	"Function":                       OpFunction,
}

var operatorNames = func() map[Operator]string {
	names := make(map[Operator]string, len(operatorTags))
	for tag, op := range operatorTags {
		names[op] = tag
	}
	return names
}()

// OperatorOf decodes the operator of an element node. Text nodes and
// unknown tags decode to OpUnknown.
func OperatorOf(n *Node) Operator {
	if n == nil || n.Type != ElementNode {
		return OpUnknown
	}
	return operatorTags[n.Name]
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "unknown"
}

func (o Operator) Class() Class {
	switch {
	case o >= OpEqualTo && o <= OpBetween:
		return ClassComparison
	case o >= OpAnd && o <= OpNot:
		return ClassLogical
	case o >= OpEquals && o <= OpBBox:
		return ClassSpatial
	case o == OpFeatureId || o == OpGmlObjectId:
		return ClassIdentifier
	case o >= OpAdd && o <= OpFunction:
		return ClassExpression
	default:
		return ClassUnknown
	}
}
