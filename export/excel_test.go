package export_test

import (
	"bytes"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/panel-estimator/export"
	"github.com/warp/panel-estimator/pricing"
	"github.com/xuri/excelize/v2"
)

func sampleQuote() pricing.Quote {
	return pricing.Quote{
		ID:          "Q-1001",
		ProjectName: "=Main switchboard",
		ClientName:  "Acme",
		Status:      pricing.StatusSent,
		Items: []pricing.BOMItem{
			{PartNumber: "BRK-400", Description: "400A breaker", Category: pricing.CategoryMaterial, Quantity: decimal.NewFromInt(2), UnitCost: decimal.NewFromInt(2500)},
			{PartNumber: "TRM-10", Description: "Terminal block", Category: pricing.CategoryMaterial, Quantity: decimal.NewFromInt(20), UnitCost: decimal.NewFromInt(150)},
			{PartNumber: "LAB", Description: "Assembly", Category: pricing.CategoryLabor, Quantity: decimal.NewFromInt(40), UnitCost: decimal.NewFromInt(50)},
		},
		Params: pricing.Params{
			MarginMode:      pricing.ModeMarkup,
			MarginPercent:   decimal.NewFromInt(15),
			AdditionalCosts: decimal.NewFromInt(350),
			DiscountPercent: decimal.NewFromInt(2),
			TaxRatePercent:  decimal.NewFromInt(10),
		},
	}
}

func TestQuoteWorkbook(t *testing.T) {
	// GIVEN: The priced switchboard quote
	q := sampleQuote()
	result, err := q.Price()
	require.NoError(t, err)

	// WHEN: Exporting
	data, err := export.QuoteWorkbook(q, result)
	require.NoError(t, err)

	// THEN: The workbook has the header, BOM lines and breakdown
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Q-1001"}, f.GetSheetList())
	sheet := "Q-1001"

	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "'=Main switchboard", title, "formula-like text is escaped")

	part, err := f.GetCellValue(sheet, "A6")
	require.NoError(t, err)
	assert.Equal(t, "BRK-400", part)

	lineTotal, err := f.GetCellValue(sheet, "F7")
	require.NoError(t, err)
	assert.Equal(t, "3000", lineTotal)

	// 3 BOM rows (6-8), a blank row, then 8 breakdown rows from 10
	label, err := f.GetCellValue(sheet, "E17")
	require.NoError(t, err)
	assert.Equal(t, "Final value", label)
	final, err := f.GetCellValue(sheet, "F17")
	require.NoError(t, err)
	assert.Equal(t, "12774.3", final)
}

func TestQuoteWorkbook_SheetNameSanitized(t *testing.T) {
	q := sampleQuote()
	q.ID = "2025/05:[draft]"
	result, err := q.Price()
	require.NoError(t, err)

	data, err := export.QuoteWorkbook(q, result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"2025-05draft"}, f.GetSheetList())
}

func TestQuoteWorkbook_SheetNameTruncatedByCharacters(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"AЩит-распределительный-номер-1", "AЩит-распределительный-номер-1"},
		{"Щит-распределительный-номер-1-главный", "Щит-распределительный-номер-1-г"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			q := sampleQuote()
			q.ID = tt.id
			result, err := q.Price()
			require.NoError(t, err)

			data, err := export.QuoteWorkbook(q, result)
			require.NoError(t, err)

			f, err := excelize.OpenReader(bytes.NewReader(data))
			require.NoError(t, err)
			defer f.Close()
			sheets := f.GetSheetList()
			require.Len(t, sheets, 1)
			assert.Equal(t, tt.want, sheets[0])
			assert.True(t, utf8.ValidString(sheets[0]))
		})
	}
}
