package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/xuri/excelize/v2"

	"github.com/geowfs/wfs-gateway/internal/models"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxSheetName    = 31
)

// XLSX writes one sheet named after the layer: a header row with the id,
// the layer columns and the geometry as WKT, then one row per feature.
type XLSX struct{}

func (XLSX) ContentType() string {
	return xlsxContentType
}

func (XLSX) Extension() string {
	return "xlsx"
}

func (XLSX) Encode(w io.Writer, fc *models.FeatureCollection) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(fc.Layer)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := []any{"id"}
	for _, c := range fc.Columns {
		header = append(header, c)
	}
	header = append(header, "geometry")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}

	for i, feature := range fc.Features {
		row := make([]any, 0, len(header))
		row = append(row, feature.ID)
		for _, c := range fc.Columns {
			row = append(row, cellValue(feature.Properties[c]))
		}
		if feature.Geometry != nil {
			row = append(row, wkt.MarshalString(feature.Geometry))
		} else {
			row = append(row, nil)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	return f.Write(w)
}

func cellValue(v any) any {
	switch t := v.(type) {
	case orb.Geometry:
		return wkt.MarshalString(t)
	case map[string]any, []any:
		return fmt.Sprint(t)
	default:
		return v
	}
}

// sheetName strips the characters Excel rejects and truncates to 31 runes.
func sheetName(layer string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, layer)
	if name == "" {
		name = "features"
	}
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return name
}
