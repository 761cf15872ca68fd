package columnar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolColumnBitPacking(t *testing.T) {
	c := NewBoolColumn()

	// Cross a word boundary
	for i := 0; i < 70; i++ {
		require.NoError(t, c.Append(i%3 == 0))
	}
	c.AppendNull()

	assert.Equal(t, 71, c.Len())
	for i := 0; i < 70; i++ {
		assert.Equal(t, i%3 == 0, c.Get(i), "bit %d", i)
		assert.False(t, c.IsNull(i))
	}
	assert.True(t, c.IsNull(70))
	assert.Nil(t, c.Get(70))
}

func TestIntColumnRejectsFloat(t *testing.T) {
	c := NewIntColumn()
	assert.Error(t, c.Append(1.5))
	assert.NoError(t, c.Append(int64(3)))
}

func TestFloatColumnAcceptsInts(t *testing.T) {
	c := NewFloatColumn()
	require.NoError(t, c.Append(int64(2)))
	require.NoError(t, c.Append(3.5))
	assert.Equal(t, 2.0, c.Get(0))
	assert.Equal(t, 3.5, c.Get(1))
}

func TestStringColumnNulls(t *testing.T) {
	c := NewStringColumn()
	require.NoError(t, c.Append("a"))
	c.AppendNull()
	require.NoError(t, c.Append("b"))

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "a", c.Get(0))
	assert.Nil(t, c.Get(1))
	assert.Equal(t, "b", c.Get(2))
}

func TestAnyColumnHoldsMixedValues(t *testing.T) {
	c := NewAnyColumn()
	require.NoError(t, c.Append(int64(1)))
	require.NoError(t, c.Append("two"))
	require.NoError(t, c.Append(true))
	c.AppendNull()

	assert.Equal(t, int64(1), c.Get(0))
	assert.Equal(t, "two", c.Get(1))
	assert.Equal(t, true, c.Get(2))
	assert.True(t, c.IsNull(3))
}

func TestWidenedTypeResolution(t *testing.T) {
	assert.Equal(t, ColumnTypeFloat, widenedType(ColumnTypeInt, ColumnTypeFloat))
	assert.Equal(t, ColumnTypeFloat, widenedType(ColumnTypeFloat, ColumnTypeInt))
	assert.Equal(t, ColumnTypeInt, widenedType(ColumnTypeInt, ColumnTypeInt))
	assert.Equal(t, ColumnTypeAny, widenedType(ColumnTypeString, ColumnTypeFloat))
	assert.Equal(t, ColumnTypeAny, widenedType(ColumnTypeBool, ColumnTypeString))
	assert.Equal(t, ColumnTypeAny, widenedType(ColumnTypeAny, ColumnTypeInt))
}

func TestColumnTypeString(t *testing.T) {
	assert.Equal(t, "float", ColumnTypeFloat.String())
	assert.Equal(t, "any", ColumnTypeAny.String())
	assert.Equal(t, "unknown", ColumnType(99).String())
}
