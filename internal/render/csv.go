package render

import (
	"encoding/csv"
	"io"

	"github.com/bighogz/fintable/internal/models"
)

// CSV writes records with a header row of JSON field names and raw values.
func CSV(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(models.Fields))
	for i, f := range models.Fields {
		header[i] = string(f)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := make([]string, len(models.Fields))
		for i, f := range models.Fields {
			row[i] = Raw(r, f)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
