package models

import "github.com/paulmach/orb"

// Feature is one row of a layer, with its geometry decoded.
type Feature struct {
	ID         string
	Geometry   orb.Geometry
	Properties map[string]any
}

// FeatureCollection is the result of a GetFeature query.
type FeatureCollection struct {
	Layer         string
	Columns       []string
	Features      []Feature
	// NumberMatched is -1 when the total was not counted.
	NumberMatched int
}

// FeatureQuery selects rows of one layer.
type FeatureQuery struct {
	Layer  *Layer
	Where  string
	Limit  uint64
	Offset uint64
}
