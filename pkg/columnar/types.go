// Package columnar provides the schema-evolving columnar table that
// aggregates per-task records. Columns carry a declared type plus per-cell
// validity; when a row supplies a value the declared type cannot hold, the
// store widens the column (Int to Float, anything else to Any) without
// losing already stored values.
package columnar

import (
	"fmt"
	"time"
)

// ColumnType represents the declared data type of a column
type ColumnType int

const (
	ColumnTypeString ColumnType = iota
	ColumnTypeInt
	ColumnTypeFloat
	ColumnTypeBool
	ColumnTypeTimestamp
	// ColumnTypeAny is the universal variant type a column widens to when
	// no concrete type can hold all of its observed values.
	ColumnTypeAny
)

// String returns the type name used in schemas and exports.
func (t ColumnType) String() string {
	switch t {
	case ColumnTypeString:
		return "string"
	case ColumnTypeInt:
		return "int"
	case ColumnTypeFloat:
		return "float"
	case ColumnTypeBool:
		return "bool"
	case ColumnTypeTimestamp:
		return "timestamp"
	case ColumnTypeAny:
		return "any"
	default:
		return "unknown"
	}
}

// Column is the base interface for all column types. Get returns nil for
// null cells; Append rejects values the column's type cannot hold.
type Column interface {
	Type() ColumnType
	Len() int
	Get(i int) interface{}
	IsNull(i int) bool
	Append(value interface{}) error
	AppendNull()
	Clear()
	MemoryUsage() int64
}

// StringColumn stores text values
type StringColumn struct {
	values []string
	valid  []bool
}

// NewStringColumn creates a new string column
func NewStringColumn() *StringColumn {
	return &StringColumn{
		values: make([]string, 0, 1024),
		valid:  make([]bool, 0, 1024),
	}
}

func (c *StringColumn) Type() ColumnType { return ColumnTypeString }
func (c *StringColumn) Len() int         { return len(c.values) }
func (c *StringColumn) IsNull(i int) bool {
	return !c.valid[i]
}

func (c *StringColumn) Get(i int) interface{} {
	if !c.valid[i] {
		return nil
	}
	return c.values[i]
}

func (c *StringColumn) Append(value interface{}) error {
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	c.values = append(c.values, str)
	c.valid = append(c.valid, true)
	return nil
}

func (c *StringColumn) AppendNull() {
	c.values = append(c.values, "")
	c.valid = append(c.valid, false)
}

func (c *StringColumn) Clear() {
	c.values = c.values[:0]
	c.valid = c.valid[:0]
}

func (c *StringColumn) MemoryUsage() int64 {
	var total int64
	for _, v := range c.values {
		total += int64(len(v)) + 16 // string bytes + header
	}
	total += int64(len(c.valid))
	return total
}

// IntColumn stores integer values
type IntColumn struct {
	values   []int64
	valid    []bool
	min, max int64
	seen     bool
}

// NewIntColumn creates a new integer column
func NewIntColumn() *IntColumn {
	return &IntColumn{
		values: make([]int64, 0, 1024),
		valid:  make([]bool, 0, 1024),
	}
}

func (c *IntColumn) Type() ColumnType { return ColumnTypeInt }
func (c *IntColumn) Len() int         { return len(c.values) }
func (c *IntColumn) IsNull(i int) bool {
	return !c.valid[i]
}

func (c *IntColumn) Get(i int) interface{} {
	if !c.valid[i] {
		return nil
	}
	return c.values[i]
}

func (c *IntColumn) Append(value interface{}) error {
	var intVal int64
	switch v := value.(type) {
	case int:
		intVal = int64(v)
	case int32:
		intVal = int64(v)
	case int64:
		intVal = v
	case uint:
		intVal = int64(v)
	case uint32:
		intVal = int64(v)
	default:
		return fmt.Errorf("expected int, got %T", value)
	}

	if !c.seen {
		c.min = intVal
		c.max = intVal
		c.seen = true
	} else {
		if intVal < c.min {
			c.min = intVal
		}
		if intVal > c.max {
			c.max = intVal
		}
	}

	c.values = append(c.values, intVal)
	c.valid = append(c.valid, true)
	return nil
}

func (c *IntColumn) AppendNull() {
	c.values = append(c.values, 0)
	c.valid = append(c.valid, false)
}

func (c *IntColumn) Clear() {
	c.values = c.values[:0]
	c.valid = c.valid[:0]
	c.min = 0
	c.max = 0
	c.seen = false
}

func (c *IntColumn) MemoryUsage() int64 {
	return int64(len(c.values)*8 + len(c.valid))
}

// FloatColumn stores floating point values. Integers append losslessly,
// which lets an Int column widen to Float instead of Any.
type FloatColumn struct {
	values []float64
	valid  []bool
}

// NewFloatColumn creates a new float column
func NewFloatColumn() *FloatColumn {
	return &FloatColumn{
		values: make([]float64, 0, 1024),
		valid:  make([]bool, 0, 1024),
	}
}

func (c *FloatColumn) Type() ColumnType { return ColumnTypeFloat }
func (c *FloatColumn) Len() int         { return len(c.values) }
func (c *FloatColumn) IsNull(i int) bool {
	return !c.valid[i]
}

func (c *FloatColumn) Get(i int) interface{} {
	if !c.valid[i] {
		return nil
	}
	return c.values[i]
}

func (c *FloatColumn) Append(value interface{}) error {
	var floatVal float64
	switch v := value.(type) {
	case float64:
		floatVal = v
	case float32:
		floatVal = float64(v)
	case int:
		floatVal = float64(v)
	case int32:
		floatVal = float64(v)
	case int64:
		floatVal = float64(v)
	default:
		return fmt.Errorf("expected float, got %T", value)
	}

	c.values = append(c.values, floatVal)
	c.valid = append(c.valid, true)
	return nil
}

func (c *FloatColumn) AppendNull() {
	c.values = append(c.values, 0)
	c.valid = append(c.valid, false)
}

func (c *FloatColumn) Clear() {
	c.values = c.values[:0]
	c.valid = c.valid[:0]
}

func (c *FloatColumn) MemoryUsage() int64 {
	return int64(len(c.values)*8 + len(c.valid))
}

// BoolColumn stores boolean values bit-packed, 64 per word
type BoolColumn struct {
	values []uint64
	valid  []bool
	count  int
}

// NewBoolColumn creates a new boolean column
func NewBoolColumn() *BoolColumn {
	return &BoolColumn{
		values: make([]uint64, 0, 16),
		valid:  make([]bool, 0, 1024),
	}
}

func (c *BoolColumn) Type() ColumnType { return ColumnTypeBool }
func (c *BoolColumn) Len() int         { return c.count }
func (c *BoolColumn) IsNull(i int) bool {
	return !c.valid[i]
}

func (c *BoolColumn) Get(i int) interface{} {
	if !c.valid[i] {
		return nil
	}
	wordIndex := i / 64
	bitIndex := i % 64
	return (c.values[wordIndex] & (1 << bitIndex)) != 0
}

func (c *BoolColumn) Append(value interface{}) error {
	boolVal, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}

	c.appendBit(boolVal)
	c.valid = append(c.valid, true)
	return nil
}

func (c *BoolColumn) AppendNull() {
	c.appendBit(false)
	c.valid = append(c.valid, false)
}

func (c *BoolColumn) appendBit(b bool) {
	wordIndex := c.count / 64
	bitIndex := c.count % 64

	if wordIndex >= len(c.values) {
		c.values = append(c.values, 0)
	}
	if b {
		c.values[wordIndex] |= (1 << bitIndex)
	}
	c.count++
}

func (c *BoolColumn) Clear() {
	c.values = c.values[:0]
	c.valid = c.valid[:0]
	c.count = 0
}

func (c *BoolColumn) MemoryUsage() int64 {
	return int64(len(c.values)*8 + len(c.valid))
}

// TimestampColumn stores timestamps as Unix nanoseconds
type TimestampColumn struct {
	values []int64
	valid  []bool
}

// NewTimestampColumn creates a new timestamp column
func NewTimestampColumn() *TimestampColumn {
	return &TimestampColumn{
		values: make([]int64, 0, 1024),
		valid:  make([]bool, 0, 1024),
	}
}

func (c *TimestampColumn) Type() ColumnType { return ColumnTypeTimestamp }
func (c *TimestampColumn) Len() int         { return len(c.values) }
func (c *TimestampColumn) IsNull(i int) bool {
	return !c.valid[i]
}

func (c *TimestampColumn) Get(i int) interface{} {
	if !c.valid[i] {
		return nil
	}
	return time.Unix(0, c.values[i]).UTC()
}

func (c *TimestampColumn) Append(value interface{}) error {
	t, ok := value.(time.Time)
	if !ok {
		return fmt.Errorf("expected timestamp, got %T", value)
	}

	c.values = append(c.values, t.UnixNano())
	c.valid = append(c.valid, true)
	return nil
}

func (c *TimestampColumn) AppendNull() {
	c.values = append(c.values, 0)
	c.valid = append(c.valid, false)
}

func (c *TimestampColumn) Clear() {
	c.values = c.values[:0]
	c.valid = c.valid[:0]
}

func (c *TimestampColumn) MemoryUsage() int64 {
	return int64(len(c.values)*8 + len(c.valid))
}

// AnyColumn is the universal variant column. Cells keep their original
// dynamic type; a nil entry with valid=false is a null.
type AnyColumn struct {
	values []interface{}
	valid  []bool
}

// NewAnyColumn creates a new variant column
func NewAnyColumn() *AnyColumn {
	return &AnyColumn{
		values: make([]interface{}, 0, 1024),
		valid:  make([]bool, 0, 1024),
	}
}

func (c *AnyColumn) Type() ColumnType { return ColumnTypeAny }
func (c *AnyColumn) Len() int         { return len(c.values) }
func (c *AnyColumn) IsNull(i int) bool {
	return !c.valid[i]
}

func (c *AnyColumn) Get(i int) interface{} {
	if !c.valid[i] {
		return nil
	}
	return c.values[i]
}

func (c *AnyColumn) Append(value interface{}) error {
	c.values = append(c.values, value)
	c.valid = append(c.valid, true)
	return nil
}

func (c *AnyColumn) AppendNull() {
	c.values = append(c.values, nil)
	c.valid = append(c.valid, false)
}

func (c *AnyColumn) Clear() {
	c.values = c.values[:0]
	c.valid = c.valid[:0]
}

func (c *AnyColumn) MemoryUsage() int64 {
	return int64(len(c.values)*16 + len(c.valid))
}
