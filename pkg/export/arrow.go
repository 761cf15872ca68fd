package export

import (
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/tabrun/tabrun/pkg/columnar"
	"github.com/tabrun/tabrun/pkg/errors"
)

// arrowType maps a declared column type to its Arrow type. Any columns
// are rendered as strings since Arrow has no variant type.
func arrowType(t columnar.ColumnType) arrow.DataType {
	switch t {
	case columnar.ColumnTypeInt:
		return arrow.PrimitiveTypes.Int64
	case columnar.ColumnTypeFloat:
		return arrow.PrimitiveTypes.Float64
	case columnar.ColumnTypeBool:
		return arrow.FixedWidthTypes.Boolean
	case columnar.ColumnTypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ns
	default:
		return arrow.BinaryTypes.String
	}
}

// writeArrow writes the table as a single Arrow IPC file record batch.
func writeArrow(w io.Writer, tbl *columnar.Table) error {
	schema := tbl.Schema()
	fields := make([]arrow.Field, len(schema))
	for i, fs := range schema {
		fields[i] = arrow.Field{
			Name:     fs.Name,
			Type:     arrowType(fs.Type),
			Nullable: true,
		}
	}
	arrowSchema := arrow.NewSchema(fields, nil)

	pool := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(pool, arrowSchema)
	defer builder.Release()

	for i, fs := range schema {
		col, _ := tbl.Column(fs.Name)
		if err := appendColumn(builder.Field(i), col); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile,
				fmt.Sprintf("building arrow column %q", fs.Name))
		}
	}

	rec := builder.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(arrowSchema), ipc.WithAllocator(pool))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "creating arrow writer")
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "writing arrow record batch")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "closing arrow writer")
	}
	return nil
}

// appendColumn copies one store column into an Arrow array builder.
func appendColumn(b array.Builder, col columnar.Column) error {
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			b.AppendNull()
			continue
		}
		if err := appendArrowValue(b, col.Get(i)); err != nil {
			return err
		}
	}
	return nil
}

func appendArrowValue(builder array.Builder, value interface{}) error {
	switch b := builder.(type) {
	case *array.Int64Builder:
		switch v := value.(type) {
		case int64:
			b.Append(v)
		case int:
			b.Append(int64(v))
		default:
			b.AppendNull()
		}

	case *array.Float64Builder:
		switch v := value.(type) {
		case float64:
			b.Append(v)
		case float32:
			b.Append(float64(v))
		default:
			b.AppendNull()
		}

	case *array.BooleanBuilder:
		if v, ok := value.(bool); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}

	case *array.TimestampBuilder:
		if v, ok := value.(time.Time); ok {
			b.Append(arrow.Timestamp(v.UnixNano()))
		} else {
			b.AppendNull()
		}

	case *array.StringBuilder:
		if v, ok := value.(string); ok {
			b.Append(v)
		} else {
			b.Append(fmt.Sprintf("%v", value))
		}

	default:
		return fmt.Errorf("unsupported builder type: %T", builder)
	}
	return nil
}
