package output

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/geowfs/wfs-gateway/internal/models"
)

type GeoJSON struct{}

func (GeoJSON) ContentType() string {
	return "application/geo+json"
}

func (GeoJSON) Extension() string {
	return "geojson"
}

func (GeoJSON) Encode(w io.Writer, fc *models.FeatureCollection) error {
	collection := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		feature := geojson.NewFeature(f.Geometry)
		if f.ID != "" {
			feature.ID = f.ID
		}
		for k, v := range f.Properties {
			// secondary geometry columns
			if g, ok := v.(orb.Geometry); ok {
				feature.Properties[k] = geojson.NewGeometry(g)
				continue
			}
			feature.Properties[k] = v
		}
		collection.Append(feature)
	}

	collection.ExtraMembers = geojson.Properties{
		"name":           fc.Layer,
		"numberReturned": len(fc.Features),
	}
	if fc.NumberMatched >= 0 {
		collection.ExtraMembers["numberMatched"] = fc.NumberMatched
	}

	return json.NewEncoder(w).Encode(collection)
}
