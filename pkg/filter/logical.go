package filter

// logical renders (a AND b ...), (a OR b ...) and not(a).
func (t *translation) logical(n *Node, op Operator) error {
	operands := n.Elements()

	if op == OpNot {
		if len(operands) != 1 {
			return newError(InvalidFilter, "Not expects one predicate, found %d", len(operands))
		}
		t.write("not(")
		if err := t.predicate(operands[0]); err != nil {
			return err
		}
		t.write(")")
		return nil
	}

	if len(operands) < 2 {
		return newError(InvalidFilter, "%s expects at least two predicates, found %d", op, len(operands))
	}

	separator := " AND "
	if op == OpOr {
		separator = " OR "
	}

	t.write("(")
	for i, operand := range operands {
		if i > 0 {
			t.write(separator)
		}
		if err := t.predicate(operand); err != nil {
			return err
		}
	}
	t.write(")")

	return nil
}
