package filter

import (
	"context"
	"strings"

	"github.com/paulmach/orb"
)

// TranslateEnvelope renders a KVP bbox "xmin,ymin,xmax,ymax[,srsName]"
// as a BBOX test over every geometry column of the layer.
func (t *Translator) TranslateEnvelope(ctx context.Context, layer string, bbox string) (string, error) {
	tr, err := t.begin(ctx, layer)
	if err != nil {
		return "", err
	}

	parts := strings.Split(bbox, ",")
	if len(parts) != 4 && len(parts) != 5 {
		return "", newError(InvalidBbox, "bbox must match xmin,ymin,xmax,ymax")
	}

	var v [4]float64
	for i := range v {
		f, ok := parseCoordinate(parts[i])
		if !ok {
			return "", newError(InvalidBbox, "bbox value %q is not a number", parts[i])
		}
		v[i] = f
	}

	if len(parts) == 5 {
		srs, err := parseSRSName(parts[4])
		if err != nil {
			return "", err
		}
		if srs.SRID != tr.schema.SRID {
			return "", newError(InvalidSrs, "bbox srsName %q does not match layer SRID %d", parts[4], tr.schema.SRID)
		}
		if srs.LatLon && tr.schema.DegreeUnits {
			v = [4]float64{v[1], v[0], v[3], v[2]}
		}
	}

	if v[0] > v[2] || v[1] > v[3] {
		return "", newError(InvalidBbox, "bbox minimum is greater than maximum")
	}

	if len(tr.schema.GeometryColumns) == 0 {
		return "", newError(UnknownProperty, "layer %q has no geometry column", layer)
	}

	bound := orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}
	tr.writeBBox(tr.schema.GeometryColumns, tr.geometryLiteral(bound))

	return tr.buf.String(), nil
}

// TranslateFeatureIDs renders a KVP FEATUREID list "layer.1,layer.2".
func (t *Translator) TranslateFeatureIDs(ctx context.Context, layer string, ids string) (string, error) {
	tr, err := t.begin(ctx, layer)
	if err != nil {
		return "", err
	}

	var values []string
	for _, id := range strings.Split(ids, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			return "", newError(InvalidFilter, "empty feature id in %q", ids)
		}
		values = append(values, id)
	}

	if err := tr.writeFeatureIDs(values); err != nil {
		return "", err
	}

	return tr.buf.String(), nil
}
