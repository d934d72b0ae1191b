package report

import (
	"fmt"

	"finca/internal/core"
)

// Format renders the fixed-layout text report. It is a pure function of its
// inputs: no locale, no timezone, no clock.
//
//	[ Reporte semanal ]
//	Rango: 2024-01-01 - 2024-01-07
//	Ingresos = 700.000 COP
//	Gastos = 300.000 COP
//	Total Ganancias = 400.000 COP
func Format(period Period, dr DateRange, totals Totals) string {
	return fmt.Sprintf(
		"[ %s ]\n"+
			"Rango: %s - %s\n"+
			"Ingresos = %s\n"+
			"Gastos = %s\n"+
			"Total Ganancias = %s",
		period.Title(),
		dr.Start.ISO(), dr.End.ISO(),
		core.Money{Amount: totals.Income}.Format(),
		core.Money{Amount: totals.Expense}.Format(),
		core.Money{Amount: totals.Net()}.Format(),
	)
}
