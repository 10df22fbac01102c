package cql

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Lexer", func() {
	Context("Scan", func() {
		type testCase struct {
			input  string
			output string
		}

		tests := []testCase{
			// ===== OPERATORS =====
			{input: "=", output: "equal eol"},
			{input: "!=", output: "notEqual eol"},
			{input: "<>", output: "notEqual eol"},
			{input: "<", output: "less eol"},
			{input: "<=", output: "lte eol"},
			{input: ">", output: "greater eol"},
			{input: ">=", output: "gte eol"},
			{input: "~", output: "like eol"},
			{input: "= != <> < <= > >= ~", output: "equal notEqual notEqual less lte greater gte like eol"},

			// ===== KEYWORDS =====
			{input: "and or not", output: "and or not eol"},
			{input: "AND Or NOT", output: "and or not eol"},
			{input: "like ILIKE", output: "like ilike eol"},
			{input: "is null", output: "is null eol"},
			{input: "IS NOT NULL", output: "is not null eol"},
			{input: "between", output: "between eol"},
			{input: "true False", output: "boolean boolean eol"},

			// ===== PUNCTUATION =====
			{input: "()", output: "lbracket rbracket eol"},
			{input: "( , )", output: "lbracket comma rbracket eol"},

			// ===== STRINGS =====
			{input: "'test'", output: "stringLit eol"},
			{input: "'hello world'", output: "stringLit eol"},
			{input: "''", output: "stringLit eol"},
			{input: "'it''s'", output: "stringLit eol"},
			{input: "'test=value' 'x'", output: "stringLit stringLit eol"},

			// ===== QUOTED IDENTIFIERS =====
			{input: `"road name"`, output: "identifier eol"},
			{input: `""`, output: "illegal eol"},

			// ===== NUMBERS =====
			{input: "100", output: "number eol"},
			{input: "3.14", output: "number eol"},
			{input: ".5", output: "number eol"},
			{input: "-2", output: "number eol"},
			{input: "-0.5", output: "number eol"},
			{input: "1e3", output: "number eol"},
			{input: "2.5E-2", output: "number eol"},
			{input: "1.2.3", output: "illegal eol"},
			{input: "1e", output: "illegal eol"},
			{input: "12abc", output: "illegal eol"},

			// ===== IDENTIFIERS =====
			{input: "name", output: "identifier eol"},
			{input: "road_2", output: "identifier eol"},
			{input: "app:name", output: "identifier eol"},
			{input: "roads.name", output: "identifier eol"},
			{input: "android organic island", output: "identifier identifier identifier eol"},

			// ===== WHITESPACE HANDLING =====
			{input: "", output: "eol"},
			{input: "   ", output: "eol"},
			{input: "\t\n", output: "eol"},
			{input: "name   =   'test'", output: "identifier equal stringLit eol"},

			// ===== COMPLETE FILTERS =====
			{input: "name='test'", output: "identifier equal stringLit eol"},
			{input: "lanes >= 2 and name like 'Ma%'", output: "identifier gte number and identifier like stringLit eol"},
			{input: "name is not null", output: "identifier is not null eol"},
			{input: "lanes between 1 and 4", output: "identifier between number and number eol"},
			{input: "bbox(geom, 0, 0, 1, 1)", output: "identifier lbracket identifier comma number comma number comma number comma number rbracket eol"},
			{input: "intersects(geom, 'POINT(1 2)')", output: "identifier lbracket identifier comma stringLit rbracket eol"},

			// ===== ILLEGAL TOKENS =====
			{input: "!", output: "illegal eol"},
			{input: "@", output: "illegal eol"},
			{input: "#", output: "illegal eol"},
			{input: ";", output: "illegal eol"},
			{input: "-", output: "illegal eol"},
			{input: "'unclosed", output: "illegal eol"},
			{input: `"unclosed`, output: "illegal eol"},
		}

		for _, test := range tests {
			test := test // capture range variable
			It("should tokenize: "+test.input, func() {
				l := newLexer([]byte(test.input))

				tokens := []string{}
				for {
					_, tok, _ := l.Scan()
					tokens = append(tokens, tok.String())
					if tok == eol || tok == illegal {
						break
					}
				}
				if tokens[len(tokens)-1] == "illegal" {
					tokens = append(tokens, "eol")
				}

				output := strings.Join(tokens, " ")
				Expect(strings.TrimSpace(output)).To(Equal(test.output))
			})
		}
	})

	Context("Values", func() {
		It("should unquote strings", func() {
			_, tok, val := newLexer([]byte("'it''s'")).Scan()
			Expect(tok).To(Equal(stringLit))
			Expect(val).To(Equal("it's"))
		})

		It("should keep number text", func() {
			_, tok, val := newLexer([]byte(" -12.50 ")).Scan()
			Expect(tok).To(Equal(number))
			Expect(val).To(Equal("-12.50"))
		})

		It("should report token positions", func() {
			l := newLexer([]byte("a = 'b'"))
			pos, _, _ := l.Scan()
			Expect(pos).To(Equal(0))
			pos, _, _ = l.Scan()
			Expect(pos).To(Equal(2))
			pos, _, _ = l.Scan()
			Expect(pos).To(Equal(4))
		})
	})
})
