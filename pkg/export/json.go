package export

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/tabrun/tabrun/pkg/columnar"
	"github.com/tabrun/tabrun/pkg/errors"
)

// writeJSON writes one JSON object per line, column name to value. Null
// cells serialize as JSON null.
func writeJSON(w io.Writer, tbl *columnar.Table, compress bool) error {
	if compress {
		gz := gzip.NewWriter(w)
		if err := writeJSON(gz, tbl, false); err != nil {
			gz.Close()
			return err
		}
		if err := gz.Close(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "closing gzip stream")
		}
		return nil
	}

	enc := json.NewEncoder(w)
	it := tbl.Iter()
	for it.Next() {
		if err := enc.Encode(it.Row()); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "encoding json row")
		}
	}
	return nil
}
