package export

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/cardsift/cardsift/internal/model"
)

// WriteCSV writes records as CSV with a fixed column order and empty cells
// for unresolved fields. The header row is always written, even with zero
// records.
func WriteCSV(records []model.CardRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(columns()); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for i := range records {
		if err := w.Write(row(&records[i])); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}
