// Package export renders console tables into spreadsheets.
package export

import (
	"bytes"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/confadmin/core/table"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	defaultColWidth = 18.0
	maxSheetName    = 31
)

// XLSX writes every row of t (already filtered) into a single sheet with a bold header row.
// Numbers, booleans and dates keep their raw cell types.
func XLSX(w io.Writer, sheet string, t table.Table, rows []table.Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = "Export"
	}
	if len(sheet) > maxSheetName {
		sheet = sheet[:maxSheetName]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22}) // m/d/yy h:mm
	if err != nil {
		return errors.Wrap(err, "creating date style")
	}

	for col, c := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.Wrap(err, "converting coordinates")
		}
		if err := f.SetCellValue(sheet, cell, c.Label); err != nil {
			return errors.Wrapf(err, "setting header cell %s", cell)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return errors.Wrap(err, "setting header style")
		}
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheet, colName, colName, defaultColWidth); err != nil {
			return errors.Wrap(err, "setting column width")
		}
	}

	for r, row := range rows {
		for col, c := range t.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return errors.Wrap(err, "converting coordinates")
			}
			value := cellValue(row.Cells[c.Key])
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return errors.Wrapf(err, "setting cell %s", cell)
			}
			if _, ok := value.(time.Time); ok {
				if err := f.SetCellStyle(sheet, cell, cell, dateStyle); err != nil {
					return errors.Wrap(err, "setting date style")
				}
			}
		}
	}

	if len(t.Columns) > 0 {
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return errors.Wrap(err, "freezing header")
		}
	}

	_, err = f.WriteTo(w)
	return errors.Wrap(err, "writing xlsx")
}

// Bytes is XLSX into a buffer.
func Bytes(sheet string, t table.Table, rows []table.Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := XLSX(&buf, sheet, t, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellValue(c table.Cell) interface{} {
	switch v := c.Value.(type) {
	case int, float64, bool:
		return v
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.UTC()
	}
	return c.Text
}
