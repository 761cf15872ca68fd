package columnar

import (
	"fmt"
	"sync"
	"time"

	"github.com/tabrun/tabrun/pkg/errors"
	"github.com/tabrun/tabrun/pkg/record"
)

// FieldSchema describes a single column: its name and declared type.
type FieldSchema struct {
	Name string
	Type ColumnType
}

// ColumnStore provides schema-evolving columnar storage for records.
// Columns are created on first sight of a field name, back-filled with
// nulls for prior rows, and widened when a later row supplies a value the
// declared type cannot hold. All columns have equal length after every
// AppendRow.
type ColumnStore struct {
	mu       sync.RWMutex
	columns  map[string]Column
	order    []string
	rowCount int
}

// NewColumnStore creates an empty column store.
func NewColumnStore() *ColumnStore {
	return &ColumnStore{
		columns: make(map[string]Column),
	}
}

// createColumn creates a new column of the specified type
func createColumn(colType ColumnType) Column {
	switch colType {
	case ColumnTypeString:
		return NewStringColumn()
	case ColumnTypeInt:
		return NewIntColumn()
	case ColumnTypeFloat:
		return NewFloatColumn()
	case ColumnTypeBool:
		return NewBoolColumn()
	case ColumnTypeTimestamp:
		return NewTimestampColumn()
	default:
		return NewAnyColumn()
	}
}

// inferColumnType maps a value to its natural column type. Unsupported
// kinds report an unrepresentable-value error.
func inferColumnType(value interface{}) (ColumnType, error) {
	switch value.(type) {
	case string:
		return ColumnTypeString, nil
	case int, int32, int64, uint, uint32:
		return ColumnTypeInt, nil
	case float32, float64:
		return ColumnTypeFloat, nil
	case bool:
		return ColumnTypeBool, nil
	case time.Time:
		return ColumnTypeTimestamp, nil
	default:
		return ColumnTypeAny, errors.Newf(errors.ErrorTypeUnrepresentable,
			"no column representation for value of type %T", value)
	}
}

// widenedType resolves the common type for a column holding values of type
// a when a value of type b arrives. Int and Float share Float; every other
// conflict falls back to the universal Any type.
func widenedType(a, b ColumnType) ColumnType {
	if a == b {
		return a
	}
	if a == ColumnTypeAny || b == ColumnTypeAny {
		return ColumnTypeAny
	}
	if (a == ColumnTypeInt && b == ColumnTypeFloat) || (a == ColumnTypeFloat && b == ColumnTypeInt) {
		return ColumnTypeFloat
	}
	return ColumnTypeAny
}

// convertColumn rebuilds a column under a wider type, carrying every cell
// (including nulls) across without loss.
func convertColumn(old Column, target ColumnType) (Column, error) {
	fresh := createColumn(target)
	for i := 0; i < old.Len(); i++ {
		if old.IsNull(i) {
			fresh.AppendNull()
			continue
		}
		if err := fresh.Append(old.Get(i)); err != nil {
			return nil, fmt.Errorf("converting column to %s at row %d: %w", target, i, err)
		}
	}
	return fresh, nil
}

// AppendRow adds one record as a new row. Fields are processed in the
// record's insertion order; columns the record does not mention receive a
// trailing null so every column ends at the same length.
func (s *ColumnStore) AppendRow(rec *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range rec.Fields() {
		if err := s.appendValue(f.Name, f.Value); err != nil {
			return err
		}
	}

	// Pad columns the record did not touch
	for _, name := range s.order {
		if _, ok := rec.Get(name); !ok {
			s.columns[name].AppendNull()
		}
	}

	s.rowCount++
	return nil
}

func (s *ColumnStore) appendValue(name string, value interface{}) error {
	col, exists := s.columns[name]

	if value == nil {
		if !exists {
			col = s.addColumn(name, ColumnTypeAny)
		}
		col.AppendNull()
		return nil
	}

	valueType, err := inferColumnType(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeUnrepresentable,
			fmt.Sprintf("field %q", name))
	}

	if !exists {
		col = s.addColumn(name, valueType)
	} else if target := widenedType(col.Type(), valueType); target != col.Type() {
		widened, convErr := convertColumn(col, target)
		if convErr != nil {
			return errors.Wrap(convErr, errors.ErrorTypeData,
				fmt.Sprintf("widening column %q", name))
		}
		s.columns[name] = widened
		col = widened
	}

	if err := col.Append(value); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData,
			fmt.Sprintf("appending to column %q", name))
	}
	return nil
}

// addColumn registers a new column back-filled with nulls for prior rows.
func (s *ColumnStore) addColumn(name string, colType ColumnType) Column {
	col := createColumn(colType)
	for i := 0; i < s.rowCount; i++ {
		col.AppendNull()
	}
	s.columns[name] = col
	s.order = append(s.order, name)
	return col
}

// GetColumn retrieves a column by name
func (s *ColumnStore) GetColumn(name string) (Column, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, exists := s.columns[name]
	return col, exists
}

// RowCount returns the number of rows
func (s *ColumnStore) RowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rowCount
}

// ColumnCount returns the number of columns
func (s *ColumnStore) ColumnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.columns)
}

// ColumnNames returns column names in creation order.
func (s *ColumnStore) ColumnNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Schema returns the current per-column declared types in creation order.
func (s *ColumnStore) Schema() []FieldSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields := make([]FieldSchema, 0, len(s.order))
	for _, name := range s.order {
		fields = append(fields, FieldSchema{Name: name, Type: s.columns[name].Type()})
	}
	return fields
}

// MemoryUsage returns total memory usage in bytes
func (s *ColumnStore) MemoryUsage() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	total += 64
	total += int64(len(s.columns) * 32)

	for name, col := range s.columns {
		total += int64(len(name))
		total += col.MemoryUsage()
	}

	return total
}

// Clear removes all data from the store
func (s *ColumnStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, col := range s.columns {
		col.Clear()
	}
	s.columns = make(map[string]Column)
	s.order = s.order[:0]
	s.rowCount = 0
}

// Table is the finished, read-only view of a column store handed back to
// callers after a run. Row i corresponds to input task i.
type Table struct {
	store *ColumnStore
}

// NewTable wraps a column store in its read-only view.
func NewTable(store *ColumnStore) *Table {
	return &Table{store: store}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.store.RowCount()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return t.store.ColumnCount()
}

// ColumnNames returns column names in creation order.
func (t *Table) ColumnNames() []string {
	return t.store.ColumnNames()
}

// Schema returns per-column declared types in creation order.
func (t *Table) Schema() []FieldSchema {
	return t.store.Schema()
}

// Column retrieves a column by name.
func (t *Table) Column(name string) (Column, bool) {
	return t.store.GetColumn(name)
}

// Value returns the cell at (row, column name); nil for null cells.
func (t *Table) Value(row int, name string) (interface{}, error) {
	col, ok := t.store.GetColumn(name)
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	if row < 0 || row >= col.Len() {
		return nil, fmt.Errorf("row %d out of range [0, %d)", row, col.Len())
	}
	return col.Get(row), nil
}

// Row returns one row as a map from column name to value. Null cells map
// to nil.
func (t *Table) Row(index int) (map[string]interface{}, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	if index < 0 || index >= t.store.rowCount {
		return nil, fmt.Errorf("row %d out of range [0, %d)", index, t.store.rowCount)
	}

	row := make(map[string]interface{}, len(t.store.order))
	for _, name := range t.store.order {
		row[name] = t.store.columns[name].Get(index)
	}
	return row, nil
}

// Iterator provides sequential access to table rows
type Iterator struct {
	table *Table
	index int
}

// Iter creates a new iterator over the table's rows.
func (t *Table) Iter() *Iterator {
	return &Iterator{table: t, index: -1}
}

// Next advances to the next row
func (it *Iterator) Next() bool {
	it.index++
	return it.index < it.table.NumRows()
}

// Index returns the current row index.
func (it *Iterator) Index() int {
	return it.index
}

// Row returns the current row
func (it *Iterator) Row() map[string]interface{} {
	row, _ := it.table.Row(it.index)
	return row
}
