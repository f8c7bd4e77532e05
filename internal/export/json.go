package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/cardsift/cardsift/internal/model"
)

// WriteJSON writes records as an indented JSON array. Unresolved fields
// serialize as explicit nulls; an empty record set writes "[]".
func WriteJSON(records []model.CardRecord, path string) error {
	if records == nil {
		records = []model.CardRecord{}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return eris.Wrap(err, "export: marshal json")
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "export: write json")
	}
	return nil
}
