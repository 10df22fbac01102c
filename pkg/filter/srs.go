package filter

import (
	"strconv"
	"strings"
)

// SRS is a parsed srsName.
type SRS struct {
	SRID int
	// LatLon is set for URN/URI forms, whose EPSG axis order puts
	// latitude first on geographic systems.
	LatLon bool
}

var srsPrefixes = []struct {
	prefix string
	latLon bool
}{
	{"urn:ogc:def:crs:epsg:", true},
	{"urn:x-ogc:def:crs:epsg:", true},
	{"http://www.opengis.net/def/crs/epsg/", true},
	{"http://www.opengis.net/gml/srs/epsg.xml#", false},
	{"epsg:", false},
}

// parseSRSName accepts EPSG:n, urn:ogc:def:crs:EPSG::n (optionally
// versioned), urn:x-ogc:def:crs:EPSG:n, http://www.opengis.net/def/crs/EPSG/0/n
// and http://www.opengis.net/gml/srs/epsg.xml#n, case-insensitively.
func parseSRSName(name string) (SRS, error) {
	lower := strings.ToLower(strings.TrimSpace(name))

	for _, p := range srsPrefixes {
		if !strings.HasPrefix(lower, p.prefix) {
			continue
		}
		code := lower[len(p.prefix):]
		if i := strings.LastIndexAny(code, ":/"); i >= 0 {
			code = code[i+1:]
		}
		srid, err := strconv.Atoi(code)
		if err != nil || srid <= 0 {
			break
		}
		return SRS{SRID: srid, LatLon: p.latLon}, nil
	}

	return SRS{}, newError(InvalidSrs, "srsName %q isn't valid", name)
}
