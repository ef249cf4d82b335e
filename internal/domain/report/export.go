package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Resumen"

// ExportXLSX renders the summary as a single-sheet workbook and returns its bytes with a dated filename.
func ExportXLSX(s *Summary) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, "", fmt.Errorf("failed to name sheet: %w", err)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	rows := [][]any{
		{"Reporte de cartera", s.GeneratedAt.Format("2006-01-02 15:04")},
		{},
		{"Prestamos", ""},
		{"Total", s.Loans.Total},
		{"Activos", s.Loans.Active},
		{"Completados", s.Loans.Completed},
		{"Vencidos", s.Loans.Overdue},
		{"Cancelados", s.Loans.Cancelled},
		{"Total prestado", s.Loans.TotalLent.StringFixed(2)},
		{"Total con interes", s.Loans.TotalWithInterest.StringFixed(2)},
		{},
		{"Cuotas pendientes", ""},
		{"Cantidad", s.Pending.Count},
		{"Monto pendiente", s.Pending.Amount.StringFixed(2)},
		{},
		{"Pagos del mes", ""},
		{"Cantidad", s.MonthPayment.Count},
		{"Monto recaudado", s.MonthPayment.Collected.StringFixed(2)},
		{},
		{"Clientes", ""},
		{"Total", s.Clients.Total},
		{"Activos", s.Clients.Active},
		{},
		{"Usuarios", ""},
		{"Total", s.Users.Total},
		{"Activos", s.Users.Active},
		{"Administradores", s.Users.Admins},
		{"Cobradores", s.Users.Collectors},
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, "", fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
		if row[1] == "" {
			_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
		}
	}
	_ = f.SetCellStyle(exportSheet, "A1", "A1", titleStyle)
	_ = f.SetColWidth(exportSheet, "A", "A", 24)
	_ = f.SetColWidth(exportSheet, "B", "B", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("reporte_cartera_%s.xlsx", s.GeneratedAt.Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
