package exporter

import (
	"strconv"

	"icwfixtures/pkg/contracts/domain"
)

// PanelSummary locates one panel inside the combined dataset file
type PanelSummary struct {
	DatasetID int
	NObs      int
	NControl  int
	NTreat    int
	FirstRow  int // 1-based data row, header excluded
	LastRow   int
}

// SummarizePanels returns one summary per panel in file order
func SummarizePanels(ds *domain.Dataset) []PanelSummary {
	summaries := make([]PanelSummary, 0, len(ds.Panels))
	row := 1
	for _, p := range ds.Panels {
		n := len(p.Observations)
		summaries = append(summaries, PanelSummary{
			DatasetID: p.DatasetID,
			NObs:      p.NObs,
			NControl:  p.NControl,
			NTreat:    p.NTreat,
			FirstRow:  row,
			LastRow:   row + n - 1,
		})
		row += n
	}
	return summaries
}

// SummaryHeaders returns the column names of a panel summary row
func SummaryHeaders() []string {
	return []string{"dataset_id", "n_obs", "n_control", "n_treat", "first_row", "last_row"}
}

// Row renders the summary in SummaryHeaders order
func (s PanelSummary) Row() []string {
	return []string{
		strconv.Itoa(s.DatasetID),
		strconv.Itoa(s.NObs),
		strconv.Itoa(s.NControl),
		strconv.Itoa(s.NTreat),
		strconv.Itoa(s.FirstRow),
		strconv.Itoa(s.LastRow),
	}
}

// ExportPanelSummary writes the summaries as a CSV file with a BOM so that
// spreadsheet tools pick up the encoding
func (w *CSVWriter) ExportPanelSummary(summaries []PanelSummary, filePath string) error {
	records := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, s.Row())
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   SummaryHeaders(),
		Records:   records,
		BOMPrefix: true,
	})
}
