// Package export serializes extracted card records. Output shape is the
// same across formats: one row/object per card, every schema field present,
// null (JSON) or an empty cell (CSV/XLSX) where a field did not resolve.
package export

import (
	"github.com/rotisserie/eris"

	"github.com/cardsift/cardsift/internal/model"
)

// Format selects an output serialization.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatAll   Format = "all"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatExcel, FormatAll:
		return Format(s), nil
	}
	return "", eris.Errorf("export: unknown format %q (want json, csv, excel, or all)", s)
}

// Extension returns the file extension for a concrete format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	case FormatExcel:
		return ".xlsx"
	}
	return ""
}

// WriteAll writes the records under basename in the selected format, or all
// three formats for FormatAll. Returns the paths written.
func WriteAll(records []model.CardRecord, basename string, format Format) ([]string, error) {
	formats := []Format{format}
	if format == FormatAll {
		formats = []Format{FormatJSON, FormatCSV, FormatExcel}
	}

	var paths []string
	for _, f := range formats {
		path := basename + f.Extension()
		var err error
		switch f {
		case FormatJSON:
			err = WriteJSON(records, path)
		case FormatCSV:
			err = WriteCSV(records, path)
		case FormatExcel:
			err = WriteXLSX(records, path)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// columns is the fixed output column order shared by CSV and XLSX.
func columns() []string {
	fields := model.AllFields()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = string(f)
	}
	return cols
}

// row renders one record in column order; nil fields become empty cells.
func row(r *model.CardRecord) []string {
	fields := model.AllFields()
	out := make([]string, len(fields))
	for i, f := range fields {
		if v := r.Field(f); v != nil {
			out[i] = *v
		}
	}
	return out
}
