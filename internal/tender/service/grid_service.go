package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
	"github.com/johnsondatabase/tender-sub001/internal/tender/grid"
	"github.com/johnsondatabase/tender-sub001/internal/tender/store"
)

// Export scopes.
const (
	ExportFiltered = "filtered" // currently visible/filtered/sorted rows
	ExportAll      = "all"      // full dataset, visible columns only
)

// GridService runs the detail grid session against the line-item cache:
// query evaluation with footer aggregates, selection stats, and the Excel
// export.
type GridService struct {
	store *store.Store
	log   *zap.Logger
}

func NewGridService(st *store.Store, log *zap.Logger) *GridService {
	return &GridService{store: st, log: log}
}

// GridResult is one evaluated grid query: the visible rows plus the footer
// totals recomputed from exactly those rows.
type GridResult struct {
	Items  []entity.LineItem `json:"items"`
	Totals grid.Totals       `json:"totals"`
}

// Query applies search, column conditions and sort to the base dataset.
func (s *GridService) Query(ctx context.Context, q grid.Query) *GridResult {
	items := grid.Apply(s.store.LineItems(), q, time.Now())
	return &GridResult{
		Items:  items,
		Totals: grid.Aggregate(items),
	}
}

// Refresh is the externally triggerable line-item refetch entry point.
func (s *GridService) Refresh(ctx context.Context) error {
	return s.store.RefreshLineItems(ctx)
}

// Export produces the tabular export: header row from the visible columns
// in display order, data rows from either the current filtered view or the
// full dataset.
func (s *GridService) Export(ctx context.Context, q grid.Query, scope string, settings grid.Settings) (*excelize.File, string, error) {
	canonical := grid.Canonical()
	settings = grid.Reconcile(settings, canonical)
	columns := grid.VisibleColumns(settings, canonical)
	if len(columns) == 0 {
		return nil, "", fmt.Errorf("no visible columns to export")
	}

	rows := s.store.LineItems()
	if scope != ExportAll {
		rows = grid.Apply(rows, q, time.Now())
	}

	f := excelize.NewFile()
	sheet := "LineItems"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		cell := name + "1"
		f.SetCellValue(sheet, cell, col.Title)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, item := range rows {
		for colIdx, col := range columns {
			name, _ := excelize.ColumnNumberToName(colIdx + 1)
			cell := fmt.Sprintf("%s%d", name, rowIdx+2)
			switch col.Field {
			case "quota":
				f.SetCellValue(sheet, cell, item.Quota)
			case "won_quantity":
				f.SetCellValue(sheet, cell, item.WonQuantity)
			case "unit_price":
				f.SetCellValue(sheet, cell, item.UnitPrice)
			default:
				f.SetCellValue(sheet, cell, grid.CellString(item, col.Field))
			}
		}
	}

	filename := fmt.Sprintf("line_items_%s.xlsx", time.Now().Format("20060102_150405"))
	return f, filename, nil
}
