// Package export renders priced quotes into downloadable workbooks.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/warp/panel-estimator/pricing"
	"github.com/xuri/excelize/v2"
)

// DisplayPlaces is the currency rounding applied to every exported figure.
const DisplayPlaces = 2

// QuoteWorkbook builds a single-sheet workbook with the quote's BOM lines
// followed by the pricing breakdown. Figures are rounded for display only;
// the breakdown itself comes from the full-precision result.
func QuoteWorkbook(q pricing.Quote, result pricing.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := sheetNameFor(q)
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F"}
	widths := []float64{16, 40, 12, 10, 14, 16}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	// ── Header ──────────────────────────────────────────────────────────

	f.SetCellValue(sheetName, "A1", sanitizeCell(q.ProjectName))
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetCellValue(sheetName, "A2", "Client: "+sanitizeCell(q.ClientName))
	f.SetCellValue(sheetName, "A3", "Quote: "+q.ID+" ("+string(q.Status)+")")

	headers := []string{"Part", "Description", "Category", "Qty", "Unit cost", "Line total"}
	for i, h := range headers {
		f.SetCellValue(sheetName, columns[i]+"5", h)
	}
	f.SetCellStyle(sheetName, "A5", "F5", headerStyle)

	// ── BOM lines ───────────────────────────────────────────────────────

	row := 6
	for _, item := range q.Items {
		r := fmt.Sprint(row)
		f.SetCellValue(sheetName, "A"+r, sanitizeCell(item.PartNumber))
		f.SetCellValue(sheetName, "B"+r, sanitizeCell(item.Description))
		f.SetCellValue(sheetName, "C"+r, string(item.Category))
		f.SetCellValue(sheetName, "D"+r, item.Quantity.InexactFloat64())
		f.SetCellValue(sheetName, "E"+r, item.UnitCost.Round(DisplayPlaces).InexactFloat64())
		f.SetCellValue(sheetName, "F"+r, item.Total().Round(DisplayPlaces).InexactFloat64())
		row++
	}

	// ── Breakdown ───────────────────────────────────────────────────────

	row++
	lines := result.Round(DisplayPlaces).Lines()
	for i, line := range lines {
		r := fmt.Sprint(row)
		f.SetCellValue(sheetName, "E"+r, line.Label)
		f.SetCellValue(sheetName, "F"+r, line.Value.InexactFloat64())
		if i == len(lines)-1 {
			f.SetCellStyle(sheetName, "E"+r, "F"+r, totalStyle)
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetNameFor returns a sheet name within Excel's 31 character limit.
func sheetNameFor(q pricing.Quote) string {
	name := strings.NewReplacer("/", "-", "\\", "-", "?", "", "*", "", "[", "", "]", "", ":", "").Replace(q.ID)
	if name == "" {
		name = "Quote"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

// sanitizeCell stops user text from being read as a formula.
func sanitizeCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}
