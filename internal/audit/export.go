package audit

import (
	"encoding/csv"
	"io"
	"time"
)

// WriteCSV serialises audit entries for download.
func WriteCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"At", "Actor", "Action", "Entity", "EntityID"}); err != nil {
		return err
	}
	for _, entry := range entries {
		record := []string{
			entry.At.Format(time.RFC3339),
			entry.Actor,
			entry.Action,
			entry.Entity,
			entry.EntityID,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
