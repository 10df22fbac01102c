// Package output encodes feature collections in the GetFeature output formats.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/geowfs/wfs-gateway/internal/models"
)

// Encoder writes a feature collection in one format.
type Encoder interface {
	ContentType() string
	// Extension is the file extension used in Content-Disposition.
	Extension() string
	Encode(w io.Writer, fc *models.FeatureCollection) error
}

// ForFormat resolves an OUTPUTFORMAT value. An empty format is GeoJSON.
func ForFormat(format string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json", "geojson", "application/json", "application/geo+json":
		return GeoJSON{}, nil
	case "xlsx", "excel", xlsxContentType:
		return XLSX{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
