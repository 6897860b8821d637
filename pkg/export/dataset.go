// Package export renders weekly history as CSV or PDF reports.
package export

import (
	"fmt"
	"strconv"

	"github.com/mklimuk/semester-pilot/pkg/model"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Format names a report encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

func (f Format) IsValid() bool {
	return f == FormatCSV || f == FormatPDF
}

var historyHeaders = []string{"Week", "Date", "Completed", "Total", "Score"}

// HistoryDataset lays out weekly history oldest week first.
func HistoryDataset(history []model.HistoryEntry) Dataset {
	rows := make([]map[string]string, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		rows = append(rows, map[string]string{
			"Week":      strconv.Itoa(h.Week),
			"Date":      h.Date,
			"Completed": strconv.Itoa(h.Stats.Completed),
			"Total":     strconv.Itoa(h.Stats.Total),
			"Score":     strconv.Itoa(h.Score) + "%",
		})
	}
	return Dataset{Headers: historyHeaders, Rows: rows}
}

// History renders the weekly history in the requested format.
func History(s *model.RootState, format Format) ([]byte, error) {
	data := HistoryDataset(s.WeeklyHistory)
	switch format {
	case FormatCSV:
		return NewCSVExporter().Render(data)
	case FormatPDF:
		title := "Weekly History"
		if s.User != nil && s.User.Name != "" {
			title = fmt.Sprintf("Weekly History - %s", s.User.Name)
		}
		return NewPDFExporter().Render(data, title)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
