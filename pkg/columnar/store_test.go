package columnar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabrun/tabrun/pkg/errors"
	"github.com/tabrun/tabrun/pkg/record"
)

func row(pairs ...interface{}) *record.Record {
	r := record.New()
	for i := 0; i < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1])
	}
	return r
}

func assertEqualLengths(t *testing.T, s *ColumnStore) {
	t.Helper()
	for _, name := range s.ColumnNames() {
		col, ok := s.GetColumn(name)
		require.True(t, ok)
		assert.Equal(t, s.RowCount(), col.Len(), "column %q length", name)
	}
}

func TestAppendRowBasic(t *testing.T) {
	s := NewColumnStore()

	require.NoError(t, s.AppendRow(row("reward", 1.0, "steps", int64(10))))
	require.NoError(t, s.AppendRow(row("reward", 2.0, "steps", int64(20))))

	assert.Equal(t, 2, s.RowCount())
	assert.Equal(t, 2, s.ColumnCount())
	assertEqualLengths(t, s)

	col, ok := s.GetColumn("reward")
	require.True(t, ok)
	assert.Equal(t, ColumnTypeFloat, col.Type())
	assert.Equal(t, 1.0, col.Get(0))
	assert.Equal(t, 2.0, col.Get(1))
}

func TestNewColumnBackfilledWithNulls(t *testing.T) {
	s := NewColumnStore()

	require.NoError(t, s.AppendRow(row("reward", 1.0)))
	require.NoError(t, s.AppendRow(row("reward", 2.0, "note", "ok")))

	note, ok := s.GetColumn("note")
	require.True(t, ok)
	require.Equal(t, 2, note.Len())
	assert.True(t, note.IsNull(0))
	assert.Nil(t, note.Get(0))
	assert.Equal(t, "ok", note.Get(1))
	assertEqualLengths(t, s)
}

func TestMissingFieldPadding(t *testing.T) {
	s := NewColumnStore()

	require.NoError(t, s.AppendRow(row("f", 1.0, "g", "a")))
	require.NoError(t, s.AppendRow(row("g", "b")))
	require.NoError(t, s.AppendRow(row("f", 3.0, "g", "c")))

	f, _ := s.GetColumn("f")
	assert.Equal(t, 1.0, f.Get(0))
	assert.True(t, f.IsNull(1))
	assert.Equal(t, 3.0, f.Get(2))

	g, _ := s.GetColumn("g")
	assert.Equal(t, "a", g.Get(0))
	assert.Equal(t, "b", g.Get(1))
	assert.Equal(t, "c", g.Get(2))
	assertEqualLengths(t, s)
}

func TestIntToFloatWidening(t *testing.T) {
	s := NewColumnStore()

	require.NoError(t, s.AppendRow(row("x", int64(1))))
	require.NoError(t, s.AppendRow(row("x", 2.5)))

	x, _ := s.GetColumn("x")
	assert.Equal(t, ColumnTypeFloat, x.Type())
	assert.Equal(t, 1.0, x.Get(0))
	assert.Equal(t, 2.5, x.Get(1))
}

func TestWideningToAny(t *testing.T) {
	s := NewColumnStore()

	// number, number, text: all three survive under a widened type
	require.NoError(t, s.AppendRow(row("v", 1.0)))
	require.NoError(t, s.AppendRow(row("v", 2.0)))
	require.NoError(t, s.AppendRow(row("v", "three")))

	v, _ := s.GetColumn("v")
	assert.Equal(t, ColumnTypeAny, v.Type())
	assert.Equal(t, 1.0, v.Get(0))
	assert.Equal(t, 2.0, v.Get(1))
	assert.Equal(t, "three", v.Get(2))
	assertEqualLengths(t, s)
}

func TestWideningPreservesNulls(t *testing.T) {
	s := NewColumnStore()

	require.NoError(t, s.AppendRow(row("a", int64(1), "b", true)))
	require.NoError(t, s.AppendRow(row("b", false)))
	require.NoError(t, s.AppendRow(row("a", "text", "b", true)))

	a, _ := s.GetColumn("a")
	assert.Equal(t, ColumnTypeAny, a.Type())
	assert.Equal(t, int64(1), a.Get(0))
	assert.True(t, a.IsNull(1))
	assert.Equal(t, "text", a.Get(2))
}

func TestExplicitNullValue(t *testing.T) {
	s := NewColumnStore()

	require.NoError(t, s.AppendRow(row("x", nil, "y", 1.0)))
	require.NoError(t, s.AppendRow(row("x", 2.0, "y", 2.0)))

	x, _ := s.GetColumn("x")
	assert.True(t, x.IsNull(0))
	assert.Equal(t, 2.0, x.Get(1))
	assertEqualLengths(t, s)
}

func TestUnrepresentableValue(t *testing.T) {
	s := NewColumnStore()

	err := s.AppendRow(row("bad", map[string]int{"a": 1}))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnrepresentable))
}

func TestTimestampColumn(t *testing.T) {
	s := NewColumnStore()
	now := time.Now().UTC().Truncate(time.Nanosecond)

	require.NoError(t, s.AppendRow(row("at", now)))

	at, _ := s.GetColumn("at")
	assert.Equal(t, ColumnTypeTimestamp, at.Type())
	assert.Equal(t, now, at.Get(0))
}

func TestColumnOrderIsStable(t *testing.T) {
	s := NewColumnStore()

	require.NoError(t, s.AppendRow(row("c", 1.0, "a", 2.0)))
	require.NoError(t, s.AppendRow(row("a", 3.0, "b", 4.0)))

	assert.Equal(t, []string{"c", "a", "b"}, s.ColumnNames())
}

func TestTableAccess(t *testing.T) {
	s := NewColumnStore()
	require.NoError(t, s.AppendRow(row("reward", 1.0)))
	require.NoError(t, s.AppendRow(row("reward", 2.0, "note", "ok")))
	require.NoError(t, s.AppendRow(row("reward", 3.0)))

	tbl := NewTable(s)
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumCols())
	assert.Equal(t, []string{"reward", "note"}, tbl.ColumnNames())

	schema := tbl.Schema()
	require.Len(t, schema, 2)
	assert.Equal(t, FieldSchema{Name: "reward", Type: ColumnTypeFloat}, schema[0])
	assert.Equal(t, FieldSchema{Name: "note", Type: ColumnTypeString}, schema[1])

	v, err := tbl.Value(1, "note")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	v, err = tbl.Value(0, "note")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = tbl.Value(5, "note")
	assert.Error(t, err)
	_, err = tbl.Value(0, "missing")
	assert.Error(t, err)

	r, err := tbl.Row(2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, r["reward"])
	assert.Nil(t, r["note"])
}

func TestTableIterator(t *testing.T) {
	s := NewColumnStore()
	require.NoError(t, s.AppendRow(row("i", int64(0))))
	require.NoError(t, s.AppendRow(row("i", int64(1))))

	it := NewTable(s).Iter()
	var seen []int64
	for it.Next() {
		seen = append(seen, it.Row()["i"].(int64))
	}
	assert.Equal(t, []int64{0, 1}, seen)
}

func TestClear(t *testing.T) {
	s := NewColumnStore()
	require.NoError(t, s.AppendRow(row("x", 1.0)))
	s.Clear()

	assert.Equal(t, 0, s.RowCount())
	assert.Equal(t, 0, s.ColumnCount())
}
