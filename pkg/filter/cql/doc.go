// Package cql parses a small CQL text dialect into Filter Encoding element
// trees, so text filters go through the same SQL translator as XML ones.
//
// Grammar
//
// --- PARSER RULES ---
//
// expression  : term ( "or" term )* ;
// term        : factor ( "and" factor )* ;
//
// factor      : "not" factor
//             | "(" expression ")"
//             | predicate ;
//
// predicate   : IDENTIFIER ( "=" | "!=" | "<>" | "<" | "<=" | ">" | ">=" ) operand
//             | IDENTIFIER [ "not" ] ( "like" | "ilike" | "~" ) STRING
//             | IDENTIFIER [ "not" ] "between" value "and" value
//             | IDENTIFIER "is" [ "not" ] "null"
//             | "bbox" "(" IDENTIFIER "," NUMBER "," NUMBER "," NUMBER "," NUMBER [ "," STRING ] ")"
//             | ( "dwithin" | "beyond" ) "(" IDENTIFIER "," WKT "," NUMBER "," UNITS ")"
//             | SPATIAL "(" IDENTIFIER "," WKT ")" ;
//
// operand     : value | IDENTIFIER ;
// value       : STRING | NUMBER | BOOLEAN ;
//
// --- LEXER RULES ---
//
// IDENTIFIER  : [a-zA-Z_][a-zA-Z0-9_.:]* | '"' .+? '"' ;
// STRING      : "'" ( "''" | . )*? "'" ;
// NUMBER      : "-"? ( [0-9]+ ( "." [0-9]* )? | "." [0-9]+ ) ( [eE] [+-]? [0-9]+ )? ;
// BOOLEAN     : "true" | "false" ;
// SPATIAL     : "equals" | "disjoint" | "touches" | "within" | "overlaps"
//             | "crosses" | "intersects" | "contains" ;
// WKT         : STRING holding a Point, LineString, Polygon or Multi* geometry
//
// Like patterns use % and _ as wildcards and backslash as escape. Booleans
// become the literals 1 and 0, which the translator rewrites for boolean
// columns.
package cql
