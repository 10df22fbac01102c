// Package filter compiles OGC Filter Encoding (1.0 and 1.1) predicates
// into PostgreSQL/PostGIS boolean expressions.
//
// The input is a decoded <Filter> element tree (see Decode). The output is
// SQL text ready to be placed after WHERE:
//
//	<Filter>
//	  <PropertyIsEqualTo>
//	    <PropertyName>status</PropertyName>
//	    <Literal>1</Literal>
//	  </PropertyIsEqualTo>
//	</Filter>
//
// renders, when status is a boolean column,
//
//	"status" = 't'
//
// Supported elements
//
//	comparison  PropertyIsEqualTo, PropertyIsNotEqualTo, PropertyIsLessThan,
//	            PropertyIsGreaterThan, PropertyIsLessThanOrEqualTo,
//	            PropertyIsGreaterThanOrEqualTo, PropertyIsLike,
//	            PropertyIsNull, PropertyIsBetween
//	logical     And, Or, Not
//	spatial     Equals, Disjoint, Touches, Within, Overlaps, Crosses,
//	            Intersects, Contains, DWithin, Beyond, BBOX
//	identifier  FeatureId, GmlObjectId
//	expression  Add, Sub, Mul, Div, Literal, PropertyName, Function
//
// Geometries are read from GML2 or GML3 (Point, LineString, Polygon,
// MultiPoint, MultiLineString/MultiCurve, MultiPolygon/MultiSurface, Box and
// Envelope) and written as setsrid('WKT'::geometry,srid) literals. Column
// names are always double-quoted and literal text single-quoted unless it
// is a plain number.
//
// Schema questions (column names and types, identifier column, geometry
// columns, SRID) are answered by a Catalog. Every failure is an *Error
// carrying an ErrorKind; no SQL is returned with an error.
package filter
