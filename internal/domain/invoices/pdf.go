package invoices

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"pet-clinic-ops/internal/domain/pets"
)

func renderPDF(w io.Writer, opts Options, inv Invoice, owner pets.Owner) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, opts.ClinicName, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Invoice", "1", 1, "C", false, 0, "")

	detail(pdf, "Invoice ID", inv.ID)
	detail(pdf, "Date", inv.CreatedAt.Format("2006-01-02 15:04"))
	detail(pdf, "Owner", owner.Name)
	if owner.Phone != "" {
		detail(pdf, "Phone", owner.Phone)
	}
	detail(pdf, "Payment method", inv.PaymentMethod)
	pdf.Ln(4)

	// Líneas
	widths := []float64{80, 25, 35, 40}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range []string{"Description", "Qty", "Unit price", "Subtotal"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, l := range inv.Lines {
		pdf.CellFormat(widths[0], 8, l.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, strconv.Itoa(l.Quantity)+" "+l.Unit, "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 8, money(opts.Currency, l.UnitPrice.StringFixed(2)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 8, money(opts.Currency, l.Subtotal.StringFixed(2)), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	detail(pdf, "Subtotal", money(opts.Currency, inv.Subtotal.StringFixed(2)))
	detail(pdf, "Discount", money(opts.Currency, inv.Discount.StringFixed(2)))
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(45, 10, "Total", "1", 0, "", false, 0, "")
	pdf.CellFormat(0, 10, money(opts.Currency, inv.Total.StringFixed(2)), "1", 1, "", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetY(pdf.GetY() + 8)
	pdf.CellFormat(0, 8, "This is a computer generated invoice", "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice pdf: %w", err)
	}
	return nil
}

func detail(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(45, 8, label, "1", 0, "", false, 0, "")
	pdf.CellFormat(0, 8, value, "1", 1, "", false, 0, "")
}

func money(currency, amount string) string {
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}
