package filter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var arithmeticOperators = map[Operator]string{
	OpAdd: " + ",
	OpSub: " - ",
	OpMul: " * ",
	OpDiv: " / ",
}

var numericLiteral = regexp.MustCompile(`^\+?(\d+\.?\d*|\.\d+)([eE]\+?\d+)?$`)

// expression renders a scalar expression node.
func (t *translation) expression(n *Node) error {
	if err := t.enter(); err != nil {
		return err
	}
	defer t.leave()

	switch op := OperatorOf(n); op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return t.arithmetic(n, op)
	case OpLiteral:
		if n.Quoted {
			t.write(quote(n.Content()))
			return nil
		}
		t.write(literal(n.Content()))
		return nil
	case OpPropertyName:
		_, err := t.propertyName(n)
		return err
	case OpFunction:
		return t.function(n)
	default:
		return newError(InvalidFilter, "%q is not an expression", n.Name)
	}
}

// arithmetic renders (left op right). Every arithmetic node brackets
// itself, so operands never need to be inspected for precedence.
func (t *translation) arithmetic(n *Node, op Operator) error {
	operands := n.Elements()
	if len(operands) != 2 {
		return newError(InvalidFilter, "%s expects two operands, found %d", op, len(operands))
	}

	t.write("(")
	if err := t.expression(operands[0]); err != nil {
		return err
	}
	t.write(arithmeticOperators[op])
	if err := t.expression(operands[1]); err != nil {
		return err
	}
	t.write(")")

	return nil
}

// literal quotes text that starts with a letter or contains '-'.
// Other text is written as-is only when it is a plain number.
func literal(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "''"
	}

	first, _ := utf8.DecodeRuneInString(text)
	if unicode.IsLetter(first) || strings.Contains(text, "-") {
		return quote(text)
	}
	if !numericLiteral.MatchString(trimmed) {
		return quote(text)
	}

	return trimmed
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteIdentifier double-quotes a column or table name.
func QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
