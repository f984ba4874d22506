package report

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/betinha/rental-core/internal/calendar"
	"github.com/betinha/rental-core/internal/finance"
	"github.com/betinha/rental-core/internal/model"
)

const qrSize = 256 // px

// QuotePDF renders the client quote of an event loaded with its items and
// team: venue, date, booked items at their snapshot prices and the total.
// Internal costs never appear on it. The QR code carries the event id.
func QuotePDF(ev *model.Event, loc *time.Location) ([]byte, error) {
	if ev == nil {
		return nil, errors.New("quote: nil event")
	}

	qrPNG, err := qrPNGBytes(ev.ID.String())
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	imgName := "qr_" + ev.ID.String()
	pdf.RegisterImageOptionsReader(imgName, imgOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, 160, 10, 35, 35, false, imgOpts, 0, "")

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(140, 10, tr("Orçamento"), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(140, 5, "Ref. "+ev.ID.String(), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	field := func(label, value string) {
		if value == "" {
			return
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(30, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(110, 6, tr(value), "", "L", false)
	}
	field("Cliente:", ev.ClientName)
	field("Telefone:", ev.ClientPhone)
	field("E-mail:", ev.ClientEmail)
	field("Data:", calendar.FormatEventDate(ev.EventDate, loc))
	field("Local:", ev.Address)
	if guests := ev.GuestAdults + ev.GuestKids; guests > 0 {
		field("Convidados:", fmt.Sprintf("%d adultos, %d crianças", ev.GuestAdults, ev.GuestKids))
	}
	pdf.SetY(max(pdf.GetY(), 50))
	pdf.Ln(4)

	// Items table.
	widths := []float64{95, 20, 35, 35}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Item", "Qtd.", "Valor unit.", "Subtotal"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	total := decimal.Zero
	for _, it := range ev.Items {
		name := "Item"
		if it.CatalogItem != nil {
			name = it.CatalogItem.Name
		}
		subtotal := it.UnitPriceSnapshot.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(subtotal)

		pdf.CellFormat(widths[0], 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, strconv.Itoa(it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, money(it.UnitPriceSnapshot), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(subtotal), "1", 1, "R", false, 0, "")
	}
	if len(ev.Items) == 0 {
		pdf.CellFormat(185, 7, tr("Nenhum item reservado."), "1", 1, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(150, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, money(total), "1", 1, "R", false, 0, "")

	if len(ev.Team) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(185, 7, "Equipe", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, m := range ev.Team {
			if m.Employee == nil {
				continue
			}
			pdf.CellFormat(185, 6, tr(fmt.Sprintf("%s (%s)", m.Employee.Name, m.Employee.Role)), "", 1, "L", false, 0, "")
		}
	}

	if ev.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(185, 5, tr(ev.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func qrPNGBytes(text string) ([]byte, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	png, err := qr.PNG(qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return png, nil
}

func money(d decimal.Decimal) string {
	return "R$ " + finance.Format(d)
}
