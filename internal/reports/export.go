package reports

import (
	"encoding/csv"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteFunnelCSV serialises a funnel report for download. Counts use
// grouped digits so large pipelines stay readable in spreadsheets.
func WriteFunnelCSV(w io.Writer, report FunnelReport) error {
	printer := message.NewPrinter(language.English)
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"GeneratedAt", "Stage", "Count", "Share"}); err != nil {
		return err
	}
	generated := report.GeneratedAt.Format(time.RFC3339)
	for _, row := range report.Stages {
		share := 0.0
		if report.Total > 0 {
			share = float64(row.Count) / float64(report.Total)
		}
		record := []string{
			generated,
			string(row.Stage),
			printer.Sprintf("%d", row.Count),
			printer.Sprintf("%.1f%%", share*100),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
