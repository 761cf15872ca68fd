// Package export writes a finished table to CSV, JSON lines or Arrow IPC.
// Export lives outside the runner core: callers hand it the Table a run
// produced and an io.Writer or path.
package export

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/tabrun/tabrun/pkg/columnar"
	"github.com/tabrun/tabrun/pkg/errors"
)

// Format identifies an export format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatArrow Format = "arrow"
)

// Options configures an export.
type Options struct {
	Format Format
	// Compress gzips the output (CSV and JSON only).
	Compress bool
}

// Write exports the table to w in the configured format.
func Write(w io.Writer, tbl *columnar.Table, opts Options) error {
	switch opts.Format {
	case FormatCSV:
		return writeCSV(w, tbl, opts.Compress)
	case FormatJSON:
		return writeJSON(w, tbl, opts.Compress)
	case FormatArrow:
		if opts.Compress {
			return errors.New(errors.ErrorTypeValidation, "arrow export does not support gzip")
		}
		return writeArrow(w, tbl)
	default:
		return errors.Newf(errors.ErrorTypeValidation, "unknown export format %q", opts.Format)
	}
}

// WriteFile exports the table to a file path.
func WriteFile(path string, tbl *columnar.Table, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "creating export file")
	}

	if err := Write(f, tbl, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "closing export file")
	}
	return nil
}

// formatCell renders a cell value as text; nulls render as the empty
// string.
func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", val)
	}
}
