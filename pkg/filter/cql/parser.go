package cql

import (
	"fmt"
	"slices"
	"strings"

	"github.com/geowfs/wfs-gateway/pkg/filter"
)

// ParseError is the type of error returned by parse.
type ParseError struct {
	// Source column position where the error occurred.
	Position int
	// Error message.
	Message string
}

// Error returns a formatted version of the error, including the position.
func (e ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: %s", e.Position, e.Message)
}

type parser struct {
	lexer *lexer
	pos   int    // position of last token (tok)
	tok   Token  // last lexed token
	val   string // string value of last token (or "")
}

// Parse compiles a CQL text filter into a <Filter> element tree.
//
// Parse uses panic/recover internally so recursive-descent methods can
// signal errors without threading (*filter.Node, error) through every call.
// ParseError panics are caught here and returned as normal errors;
// any other panic (bug) is re-raised.
func Parse(src []byte) (root *filter.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(ParseError); ok {
				root = nil
				err = pe
			} else {
				panic(r)
			}
		}
	}()

	lexer := newLexer(src)
	p := parser{lexer: lexer}
	p.next()

	predicate := p.expression()
	p.expect(eol)

	return filter.NewElement("Filter", nil, predicate), nil
}

// expression parses a logic expression.
//
// term ( "or" term )*
func (p *parser) expression() *filter.Node {
	terms := []*filter.Node{p.term()}

	for p.matches(or) {
		p.next()
		terms = append(terms, p.term())
	}

	return logical("Or", terms)
}

// term parses an AND expression.
//
// factor ( "and" factor )*
func (p *parser) term() *filter.Node {
	factors := []*filter.Node{p.factor()}

	for p.matches(and) {
		p.next()
		factors = append(factors, p.factor())
	}

	return logical("And", factors)
}

// factor parses a negation, a grouped expression or a predicate.
//
// "not" factor | "(" expression ")" | predicate
func (p *parser) factor() *filter.Node {
	switch p.tok {
	case not:
		p.next()
		return negate(p.factor())
	case lbracket:
		p.next()
		expr := p.expression()
		p.expect(rbracket)
		p.next()
		return expr
	default:
		return p.predicate()
	}
}

// predicate parses a spatial function call or a property test.
//
// IDENTIFIER "(" arguments ")"
// IDENTIFIER ( "=" | "!=" | "<>" | "<" | "<=" | ">" | ">=" ) operand
// IDENTIFIER [ "not" ] ( "like" | "ilike" | "~" ) STRING
// IDENTIFIER [ "not" ] "between" value "and" value
// IDENTIFIER "is" [ "not" ] "null"
func (p *parser) predicate() *filter.Node {
	p.expect(identifier)
	name := p.val
	pos := p.pos
	p.next()

	if p.matches(lbracket) {
		return p.spatial(pos, name)
	}

	property := propertyName(name)

	if tag, ok := comparisonElements[p.tok]; ok {
		p.next()
		return filter.NewElement(tag, nil, property, p.operand())
	}

	negated := false
	if p.matches(not) {
		negated = true
		p.next()
	}

	var expr *filter.Node
	switch p.tok {
	case like, ilike:
		caseSensitive := p.tok == like
		p.next()
		p.expect(stringLit)
		expr = likePattern(property, p.val, caseSensitive)
		p.next()
	case between:
		p.next()
		lower := p.value()
		p.expect(and)
		p.next()
		upper := p.value()
		expr = filter.NewElement("PropertyIsBetween", nil,
			property,
			filter.NewElement("LowerBoundary", nil, lower),
			filter.NewElement("UpperBoundary", nil, upper),
		)
	case is:
		if negated {
			panic(p.errorf("expected like or between instead of %s", p.tok))
		}
		p.next()
		if p.matches(not) {
			negated = true
			p.next()
		}
		p.expect(null)
		p.next()
		expr = filter.NewElement("PropertyIsNull", nil, property)
	default:
		panic(p.errorf("expected operator instead of %s", p.tok))
	}

	if negated {
		return negate(expr)
	}
	return expr
}

// spatial parses the arguments of a spatial function.
//
// bbox "(" IDENTIFIER "," number "," number "," number "," number [ "," STRING ] ")"
// dwithin|beyond "(" IDENTIFIER "," STRING "," number "," ( IDENTIFIER | STRING ) ")"
// intersects|... "(" IDENTIFIER "," STRING ")"
func (p *parser) spatial(pos int, name string) *filter.Node {
	fn := strings.ToLower(name)
	p.next()

	p.expect(identifier)
	property := propertyName(p.val)
	p.next()

	var expr *filter.Node
	switch {
	case fn == "bbox":
		var coords [4]string
		for i := range coords {
			p.expectNext(comma)
			p.expect(number)
			coords[i] = p.val
			p.next()
		}
		srsName := ""
		if p.matches(comma) {
			p.next()
			p.expect(stringLit)
			srsName = p.val
			p.next()
		}
		expr = filter.NewElement("BBOX", nil, property, envelope(coords, srsName))
	case fn == "dwithin" || fn == "beyond":
		p.expectNext(comma)
		geometry := p.geometry()
		p.expectNext(comma)
		p.expect(number)
		distance := p.val
		p.next()
		p.expectNext(comma)
		if !p.matches(identifier, stringLit) {
			panic(p.errorf("expected distance units instead of %s", p.tok))
		}
		units := p.val
		p.next()
		expr = filter.NewElement(spatialElements[fn], nil,
			property,
			geometry,
			filter.NewElement("Distance", map[string]string{"units": units}, filter.NewText(distance)),
		)
	case spatialElements[fn] != "":
		p.expectNext(comma)
		expr = filter.NewElement(spatialElements[fn], nil, property, p.geometry())
	default:
		panic(ParseError{pos, fmt.Sprintf("unknown function %q", name)})
	}

	p.expect(rbracket)
	p.next()
	return expr
}

// geometry parses a WKT string literal into a GML element.
func (p *parser) geometry() *filter.Node {
	p.expect(stringLit)
	g, err := gmlGeometry(p.val)
	if err != nil {
		panic(p.errorf("invalid geometry: %s", err))
	}
	p.next()
	return g
}

// operand parses a value or a property name.
func (p *parser) operand() *filter.Node {
	if p.matches(identifier) {
		n := propertyName(p.val)
		p.next()
		return n
	}
	return p.value()
}

// value parses a literal (string, number or boolean).
func (p *parser) value() *filter.Node {
	var n *filter.Node

	switch p.tok {
	case stringLit:
		n = filter.NewStringLiteral(p.val)
	case number:
		n = literal(p.val)
	case boolean:
		if strings.EqualFold(p.val, "true") {
			n = literal("1")
		} else {
			n = literal("0")
		}
	default:
		panic(p.errorf("expected value instead of %s", p.tok))
	}

	p.next()
	return n
}

// next parses the next token into p.tok.
func (p *parser) next() {
	p.pos, p.tok, p.val = p.lexer.Scan()
	if p.tok == illegal {
		panic(p.errorf("%s", p.val))
	}
}

// matches returns true if current token matches one of the given tokens.
func (p *parser) matches(tokens ...Token) bool {
	return slices.Contains(tokens, p.tok)
}

// expect panics if current token is not the expected token.
func (p *parser) expect(tok Token) {
	if p.tok != tok {
		panic(p.errorf("expected %s instead of %s", tok, p.tok))
	}
}

// expectNext checks the current token and moves past it.
func (p *parser) expectNext(tok Token) {
	p.expect(tok)
	p.next()
}

// errorf formats an error with the current position.
func (p *parser) errorf(format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	return ParseError{p.pos, message}
}
