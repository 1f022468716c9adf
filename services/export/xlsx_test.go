package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/confadmin/core/table"
)

func TestXLSX(t *testing.T) {
	tbl := table.Table{Columns: []table.Column{
		{Key: "name", Label: "Name"},
		{Key: "stars", Label: "Stars"},
		{Key: "active", Label: "Active"},
		{Key: "scanned_at", Label: "Scanned at"},
	}}
	rows := []table.Row{
		{ID: "1", Cells: map[string]table.Cell{
			"name": table.Text("Serena"), "stars": table.Int(5), "active": table.Bool(true),
			"scanned_at": table.DateTime(time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)),
		}},
		{ID: "2", Cells: map[string]table.Cell{"name": table.Text("Ihusi"), "stars": table.Int(4)}},
	}

	data, err := Bytes("QR logs of a very long conference name", tbl, rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	assert.Equal(t, "QR logs of a very long conferen", sheets[0])

	got, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Name", "Stars", "Active", "Scanned at"}, got[0])
	assert.Equal(t, "Serena", got[1][0])
	assert.Equal(t, "5", got[1][1])
	assert.Equal(t, "TRUE", got[1][2])
	assert.Equal(t, []string{"Ihusi", "4"}, got[2][:2])

	style, err := f.GetCellStyle(sheets[0], "A1")
	require.NoError(t, err)
	assert.NotZero(t, style)
}
