package ledger

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExportHeader is the column row of CSV and XLSX exports.
var ExportHeader = []string{"类型", "卡名", "业务", "开始", "时长", "月支", "会员卖出"}

// Rows flattens the ledger into one export row per item.
func Rows(s Snapshot) [][]string {
	var rows [][]string
	s.Walk(func(kind CardKind, cardName string, it Item) {
		rows = append(rows, []string{
			kind.Label(),
			cardName,
			it.Title,
			it.StartMonth,
			it.Duration.String(),
			it.Cost.String(),
			it.VipPrice.String(),
		})
	})
	return rows
}

// WriteCSV writes the ledger as CSV with a UTF-8 BOM so spreadsheet tools
// pick up the Chinese header.
func WriteCSV(w io.Writer, s Snapshot) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(Rows(s)); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// WriteXLSX writes the same rows as WriteCSV into a single-sheet workbook.
func WriteXLSX(w io.Writer, s Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "账单明细"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	if err := writeRow(f, sheet, 1, ExportHeader); err != nil {
		return err
	}
	for r, row := range Rows(s) {
		if err := writeRow(f, sheet, r+2, row); err != nil {
			return err
		}
	}
	for _, w := range []struct {
		from, to string
		width    float64
	}{{"A", "A", 8}, {"B", "C", 18}, {"D", "G", 10}} {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

// ExportFileName returns the download name used for an export of s.
func ExportFileName(s Snapshot, ext string) string {
	if ext == "json" {
		return fmt.Sprintf("Unicom_Backup_%s.json", s.CurrentDate)
	}
	return fmt.Sprintf("Unicom_Bill_%s.%s", s.CurrentDate, ext)
}
