package export

import (
	"encoding/csv"
	"io"

	"github.com/spektr-org/resagg/engine"
)

// WriteCSV writes table in wide layout: a header row of labels, then one row
// per index. Short columns are padded with empty cells.
func WriteCSV(w io.Writer, table *engine.AggregatedTable) error {
	data := engine.BuildTable("", table)

	cw := csv.NewWriter(w)
	header := make([]string, len(data.Columns))
	for i, c := range data.Columns {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range data.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
