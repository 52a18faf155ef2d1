package service

import (
	"fmt"
	"io"

	"github.com/invcheck/invcheck/backend"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Inventories"

var exportHeaders = []string{
	"ID", "Level3 - GBGF", "Manager Name", "Legal Entity", "Owner ID", "Name",
	"Empl Class", "Brand", "Model", "IMEI/MEID", "Device Type", "Asset ID",
	"Inventory Check", "Remark", "Confirmed",
}

// WriteInventoriesXLSX writes rows as a single-sheet workbook. A row counts as
// confirmed when the backend locked it or confirmed reports it.
func WriteInventoriesXLSX(out io.Writer, rows []backend.Inventory, confirmed func(id int) bool) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for r, inv := range rows {
		done := inv.IsConfirmed() || (confirmed != nil && confirmed(inv.Id))
		values := []any{
			inv.Id, inv.Gbgf, inv.ManagerName, inv.LegalEntity, inv.OwnerId, inv.Name,
			inv.EmplClass, inv.Brand, inv.Model, inv.ImeiMeid, inv.DeviceType, inv.AssetId,
			inv.InventoryCheck, inv.Remark, done,
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", inv.Id, err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(exportHeaders))
	if err := f.SetColWidth(exportSheet, "A", last, 15); err != nil {
		return err
	}

	return f.Write(out)
}
