package cql

import "strings"

type Token int

const (
	illegal Token = iota
	eol
	and
	or
	not
	equal
	notEqual
	gte
	greater
	lte
	less
	like
	ilike
	is
	null
	between
	lbracket
	rbracket
	comma
	stringLit
	number
	identifier
	boolean
)

var tokenNames = map[Token]string{
	illegal:    "illegal",
	eol:        "eol",
	and:        "and",
	or:         "or",
	not:        "not",
	equal:      "equal",
	notEqual:   "notEqual",
	gte:        "gte",
	greater:    "greater",
	lte:        "lte",
	less:       "less",
	like:       "like",
	ilike:      "ilike",
	is:         "is",
	null:       "null",
	between:    "between",
	lbracket:   "lbracket",
	rbracket:   "rbracket",
	comma:      "comma",
	stringLit:  "stringLit",
	number:     "number",
	identifier: "identifier",
	boolean:    "boolean",
}

func (t Token) String() string {
	return tokenNames[t]
}

var keywords = map[string]Token{
	"and":     and,
	"or":      or,
	"not":     not,
	"like":    like,
	"ilike":   ilike,
	"is":      is,
	"null":    null,
	"between": between,
	"true":    boolean,
	"false":   boolean,
}

func keyword(name string) (Token, bool) {
	tok, ok := keywords[strings.ToLower(name)]
	return tok, ok
}

// Filter Encoding element of each binary comparison token.
var comparisonElements = map[Token]string{
	equal:    "PropertyIsEqualTo",
	notEqual: "PropertyIsNotEqualTo",
	greater:  "PropertyIsGreaterThan",
	gte:      "PropertyIsGreaterThanOrEqualTo",
	less:     "PropertyIsLessThan",
	lte:      "PropertyIsLessThanOrEqualTo",
}
