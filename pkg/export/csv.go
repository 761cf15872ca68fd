package export

import (
	"encoding/csv"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/tabrun/tabrun/pkg/columnar"
	"github.com/tabrun/tabrun/pkg/errors"
)

// writeCSV writes a header of column names followed by one line per row.
// Null cells render as empty fields.
func writeCSV(w io.Writer, tbl *columnar.Table, compress bool) error {
	if compress {
		gz := gzip.NewWriter(w)
		if err := writeCSV(gz, tbl, false); err != nil {
			gz.Close()
			return err
		}
		if err := gz.Close(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "closing gzip stream")
		}
		return nil
	}

	cw := csv.NewWriter(w)
	names := tbl.ColumnNames()

	if err := cw.Write(names); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "writing csv header")
	}

	line := make([]string, len(names))
	it := tbl.Iter()
	for it.Next() {
		row := it.Row()
		for i, name := range names {
			line[i] = formatCell(row[name])
		}
		if err := cw.Write(line); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "writing csv row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "flushing csv")
	}
	return nil
}
