package filter

import "strings"

var unaryFunctions = map[string]string{
	"abs":     "abs",
	"acos":    "acos",
	"asin":    "asin",
	"atan":    "atan",
	"cbrt":    "cbrt",
	"ceil":    "ceil",
	"ceiling": "ceil",
	"cos":     "cos",
	"cot":     "cot",
	"degrees": "degrees",
	"exp":     "exp",
	"floor":   "floor",
	"ln":      "ln",
	"log":     "log",
	"radians": "radians",
	"round":   "round",
	"sin":     "sin",
	"sqrt":    "sqrt",
	"tan":     "tan",
	"trunc":   "trunc",
	"length":  "length",
}

var aggregateFunctions = map[string]string{
	"avg":   "avg",
	"min":   "min",
	"max":   "max",
	"count": "count",
}

// function renders <Function name="..."> with a single argument.
// Aggregates become a scalar subquery over the layer table.
func (t *translation) function(n *Node) error {
	raw, ok := n.Attribute("name")
	name := strings.ToLower(strings.TrimSpace(raw))
	if !ok || name == "" {
		return newError(InvalidFilter, "Function requires a name attribute")
	}

	args := n.Elements()
	if len(args) != 1 {
		return newError(InvalidFilter, "function %s expects one argument, found %d", name, len(args))
	}

	if sqlName, ok := unaryFunctions[name]; ok {
		t.write(sqlName, "(")
		if err := t.expression(args[0]); err != nil {
			return err
		}
		t.write(")")
		return nil
	}

	if sqlName, ok := aggregateFunctions[name]; ok {
		t.write("(Select ", sqlName, "(")
		if err := t.expression(args[0]); err != nil {
			return err
		}
		t.write(") from ", t.sourceTable(), ")")
		return nil
	}

	return newError(InvalidFilter, "unknown function %q", raw)
}

func (t *translation) sourceTable() string {
	if t.schema.Table != "" {
		return t.schema.Table
	}
	return QuoteIdentifier(t.layer)
}
