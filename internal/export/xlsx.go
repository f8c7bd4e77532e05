package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/cardsift/cardsift/internal/model"
)

// WriteXLSX writes records to a single-sheet workbook with the same column
// order and empty-cell semantics as the CSV output.
func WriteXLSX(records []model.CardRecord, path string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Cards")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range columns() {
		header.AddCell().Value = col
	}

	for i := range records {
		r := sheet.AddRow()
		for _, val := range row(&records[i]) {
			r.AddCell().Value = val
		}
	}

	if err := file.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}
