package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabrun/tabrun/pkg/columnar"
	"github.com/tabrun/tabrun/pkg/record"
)

func sampleTable(t *testing.T) *columnar.Table {
	t.Helper()
	s := columnar.NewColumnStore()

	require.NoError(t, s.AppendRow(record.New().Set("reward", 1.0).Set("steps", int64(10))))
	require.NoError(t, s.AppendRow(record.New().Set("reward", 2.5).Set("steps", int64(20)).Set("note", "ok")))
	require.NoError(t, s.AppendRow(record.New().Set("reward", 3.0).Set("steps", int64(30))))

	return columnar.NewTable(s)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(t), Options{Format: FormatCSV}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"reward", "steps", "note"}, rows[0])
	assert.Equal(t, []string{"1", "10", ""}, rows[1])
	assert.Equal(t, []string{"2.5", "20", "ok"}, rows[2])
	assert.Equal(t, []string{"3", "30", ""}, rows[3])
}

func TestWriteCSVGzip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(t), Options{Format: FormatCSV, Compress: true}))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	raw, err := io.ReadAll(gz)
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	assert.True(t, strings.HasPrefix(string(raw), "reward,steps,note\n"))
}

func TestWriteJSONLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(t), Options{Format: FormatJSON}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var row map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &row))
	assert.Equal(t, 1.0, row["reward"])
	assert.Nil(t, row["note"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &row))
	assert.Equal(t, "ok", row["note"])
}

func TestWriteArrow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(t), Options{Format: FormatArrow}))
	assert.NotZero(t, buf.Len())

	// Arrow IPC files start with the magic bytes.
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("ARROW1")))
}

func TestWriteArrowRejectsCompression(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sampleTable(t), Options{Format: FormatArrow, Compress: true})
	assert.Error(t, err)
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sampleTable(t), Options{Format: "parquet"})
	assert.Error(t, err)
}

func TestFormatCell(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "true", formatCell(true))
	assert.Equal(t, "42", formatCell(int64(42)))
	assert.Equal(t, "1.5", formatCell(1.5))
	assert.Equal(t, "text", formatCell("text"))
	assert.Equal(t, "2026-01-02T03:04:05Z", formatCell(at))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteFile(path, sampleTable(t), Options{Format: FormatCSV}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reward,steps,note")
}
