package filter

import "strings"

var comparisonOperators = map[Operator]string{
	OpEqualTo:              " = ",
	OpNotEqualTo:           " != ",
	OpLessThan:             " < ",
	OpGreaterThan:          " > ",
	OpLessThanOrEqualTo:    " <= ",
	OpGreaterThanOrEqualTo: " >= ",
}

// PostgreSQL boolean literals for the 1/0 filter convention.
var booleanLiterals = map[string]string{
	"1": "'t'",
	"0": "'f'",
}

func (t *translation) comparison(n *Node, op Operator) error {
	switch op {
	case OpLike:
		return t.like(n)
	case OpNull:
		return t.null(n)
	case OpBetween:
		return t.between(n)
	default:
		return t.binaryComparison(n, op)
	}
}

func (t *translation) binaryComparison(n *Node, op Operator) error {
	operands := n.Elements()
	if len(operands) != 2 {
		return newError(InvalidFilter, "%s expects two operands, found %d", op, len(operands))
	}
	left, right := operands[0], operands[1]
	insensitive := !matchCase(n)

	if insensitive {
		t.write("lower(")
	}
	column, err := t.operand(left)
	if err != nil {
		return err
	}
	if insensitive {
		t.write(")")
	}

	t.write(comparisonOperators[op])

	if insensitive {
		t.write("lower(")
	}
	if b, ok := booleanRewrite(op, column, right); ok {
		t.write(b)
	} else if err := t.expression(right); err != nil {
		return err
	}
	if insensitive {
		t.write(")")
	}

	return nil
}

// operand renders n and returns its column when n is a PropertyName.
func (t *translation) operand(n *Node) (*Column, error) {
	if OperatorOf(n) == OpPropertyName {
		if err := t.enter(); err != nil {
			return nil, err
		}
		defer t.leave()

		c, err := t.propertyName(n)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
	return nil, t.expression(n)
}

func booleanRewrite(op Operator, column *Column, right *Node) (string, bool) {
	if op != OpEqualTo && op != OpNotEqualTo {
		return "", false
	}
	if column == nil || !column.IsBoolean() || OperatorOf(right) != OpLiteral {
		return "", false
	}
	b, ok := booleanLiterals[strings.TrimSpace(right.Content())]
	return b, ok
}

func matchCase(n *Node) bool {
	v, ok := n.Attribute("matchCase")
	if !ok {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "false", "0":
		return false
	default:
		return true
	}
}

// like renders "col" Like E'pattern'.
func (t *translation) like(n *Node) error {
	wildCard, okWild := n.Attribute("wildCard")
	singleChar, okSingle := n.Attribute("singleChar")
	escape, okEscape := n.Attribute("escape")
	if !okEscape {
		escape, okEscape = n.Attribute("escapeChar")
	}
	if !okWild || !okSingle || !okEscape || wildCard == "" || singleChar == "" || escape == "" {
		return newError(InvalidFilter, "PropertyIsLike requires wildCard, singleChar and escape attributes")
	}

	operands := n.Elements()
	if len(operands) != 2 || OperatorOf(operands[0]) != OpPropertyName || OperatorOf(operands[1]) != OpLiteral {
		return newError(InvalidFilter, "PropertyIsLike expects a PropertyName and a Literal")
	}

	if _, err := t.propertyName(operands[0]); err != nil {
		return err
	}

	keyword := " Like "
	if !matchCase(n) {
		keyword = " ILike "
	}
	t.write(keyword, "E'", likePattern(operands[1].Content(), wildCard, singleChar, escape), "'")

	return nil
}

// likePattern rewrites a filter pattern into the body of an E'' string in
// one left-to-right pass, so substituted text is never rewritten again.
func likePattern(s, wildCard, singleChar, escape string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], escape):
			b.WriteString(`\\`)
			i += len(escape)
		case strings.HasPrefix(s[i:], wildCard):
			b.WriteByte('%')
			i += len(wildCard)
		case strings.HasPrefix(s[i:], singleChar):
			b.WriteByte('_')
			i += len(singleChar)
		default:
			switch c := s[i]; c {
			case '\'':
				b.WriteString("''")
			case '\\':
				b.WriteString(`\\\\`)
			case '%', '_':
				b.WriteString(`\\`)
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}
			i++
		}
	}
	return b.String()
}

func (t *translation) null(n *Node) error {
	operands := n.Elements()
	if len(operands) != 1 || OperatorOf(operands[0]) != OpPropertyName {
		return newError(InvalidFilter, "PropertyIsNull expects one PropertyName")
	}

	if _, err := t.propertyName(operands[0]); err != nil {
		return err
	}
	t.write(" isnull")

	return nil
}

// between renders expr Between low And high.
func (t *translation) between(n *Node) error {
	operands := n.Elements()
	if len(operands) != 3 || operands[1].Name != "LowerBoundary" || operands[2].Name != "UpperBoundary" {
		return newError(InvalidFilter, "PropertyIsBetween expects an expression, LowerBoundary and UpperBoundary")
	}

	if err := t.expression(operands[0]); err != nil {
		return err
	}

	for i, keyword := range []string{" Between ", " And "} {
		bound := operands[i+1].Elements()
		if len(bound) != 1 {
			return newError(InvalidFilter, "%s expects one expression", operands[i+1].Name)
		}
		t.write(keyword)
		if err := t.expression(bound[0]); err != nil {
			return err
		}
	}

	return nil
}
