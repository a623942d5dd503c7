package usecase

import (
	"bytes"
	"fmt"
	"time"

	"chauffeur-booking/internal/data/entity"

	"github.com/phpdave11/gofpdf"
)

// BuildInvoicePDF renders a one-page A4 invoice.
func BuildInvoicePDF(business string, inv *entity.Invoice, today time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, false)
	pdf.SetAuthor(business, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, business)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No : "+inv.InvoiceNumber)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issue Date : "+inv.IssueDate.Format(entity.DateLayout))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Due Date   : "+inv.DueDate.Format(entity.DateLayout))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Status     : "+string(inv.EffectiveStatus(today)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Bill To:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, inv.CustomerName)
	pdf.Ln(7)
	pdf.Cell(0, 7, inv.CustomerEmail)
	pdf.Ln(7)
	if inv.CustomerPhone != "" {
		pdf.Cell(0, 7, inv.CustomerPhone)
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(140, 8, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, item := range inv.LineItems {
		pdf.CellFormat(140, 8, item.Description, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, money(item.Amount), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.CellFormat(140, 7, "Subtotal", "T", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, money(inv.Subtotal), "T", 1, "R", false, 0, "")
	pdf.CellFormat(140, 7, "Tax", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, money(inv.TaxAmount), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(140, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, money(inv.TotalAmount), "", 1, "R", false, 0, "")

	if inv.PaidAt != nil {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		method := ""
		if inv.PaymentMethod != nil {
			method = " by " + *inv.PaymentMethod
		}
		pdf.Cell(0, 6, fmt.Sprintf("Paid on %s%s. Thank you.", inv.PaidAt.Format(entity.DateLayout), method))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
