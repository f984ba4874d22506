package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/betinha/rental-core/internal/finance"
	"github.com/betinha/rental-core/internal/model"
)

const eventsSheet = "Eventos"

var eventHeaders = []string{
	"Data", "Cliente", "Telefone", "Endereço", "Status", "Pagamento", "Transporte",
	"Receita", "Custo itens", "Custo equipe", "Custo transporte", "Despesas extras",
	"Lucro líquido", "Margem (%)",
}

// EventsXLSX renders one row per event with its persisted financials and a
// totals row at the bottom. Dates are shown in loc.
func EventsXLSX(events []model.Event, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(eventsSheet)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	for i, header := range eventHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(eventsSheet, cell, header)
	}

	var totals [7]decimal.Decimal
	row := 2
	for _, ev := range events {
		f.SetCellValue(eventsSheet, fmt.Sprintf("A%d", row), ev.EventDate.In(loc).Format("02/01/2006 15:04"))
		f.SetCellValue(eventsSheet, fmt.Sprintf("B%d", row), ev.ClientName)
		f.SetCellValue(eventsSheet, fmt.Sprintf("C%d", row), ev.ClientPhone)
		f.SetCellValue(eventsSheet, fmt.Sprintf("D%d", row), ev.Address)
		f.SetCellValue(eventsSheet, fmt.Sprintf("E%d", row), string(ev.Status))
		f.SetCellValue(eventsSheet, fmt.Sprintf("F%d", row), string(ev.FinancialStatus))
		f.SetCellValue(eventsSheet, fmt.Sprintf("G%d", row), transportLabel(ev))

		amounts := [7]decimal.Decimal{
			ev.TotalRevenue, ev.TotalCostItems, ev.TotalCostLabor, ev.TotalCostTransport,
			ev.ExtraExpenses, ev.NetProfit, ev.ProfitMargin,
		}
		for i, amount := range amounts {
			cell, _ := excelize.CoordinatesToCellName(8+i, row)
			f.SetCellValue(eventsSheet, cell, finance.Round(amount).InexactFloat64())
			totals[i] = totals[i].Add(amount)
		}
		row++
	}

	f.SetCellValue(eventsSheet, fmt.Sprintf("A%d", row), "Total")
	// Margins don't add up; the totals row shows the overall margin instead.
	totals[6] = finance.Margin(totals[5], totals[0])
	for i, amount := range totals {
		cell, _ := excelize.CoordinatesToCellName(8+i, row)
		f.SetCellValue(eventsSheet, cell, finance.Round(amount).InexactFloat64())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func transportLabel(ev model.Event) string {
	switch ev.TransportType {
	case model.TransportFleet:
		if ev.Vehicle != nil {
			return "Frota: " + ev.Vehicle.Name
		}
		return "Frota"
	case model.TransportIndividual:
		return "Individual"
	default:
		return "Sem transporte"
	}
}
