package validator

import (
	"fmt"
	"strings"

	"github.com/gabe/rcbt/internal/config"
	"github.com/tealeg/xlsx/v3"
)

// SheetInfo summarizes one worksheet of a workbook
type SheetInfo struct {
	Name string `json:"name" yaml:"name"`
	Rows int    `json:"rows" yaml:"rows"`
	Cols int    `json:"cols" yaml:"cols"`
}

// Inspect lists the sheets of an .xlsx workbook. It is a preview only;
// content checks belong to the server.
func Inspect(path string) ([]SheetInfo, error) {
	if !strings.EqualFold(MediaTypeOf(path), config.MediaTypeXLSX) {
		return nil, fmt.Errorf("inspect supports .xlsx workbooks only: %s", path)
	}
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	out := make([]SheetInfo, 0, len(wb.Sheets))
	for _, sh := range wb.Sheets {
		out = append(out, SheetInfo{Name: sh.Name, Rows: sh.MaxRow, Cols: sh.MaxCol})
	}
	return out, nil
}
