package service

import (
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/JaddaouiAyoub/Location-voitures/internal/repository"
)

// Company block rendered at the top of every invoice.
const (
	companyName    = "CAR RENTAL COMPANY"
	companyAddress = "123 Rental Street, City, Country"
	companyContact = "Phone: +1 234 567 890 | Email: contact@carrental.com"
	vatRate        = 0.20
)

// InvoiceService renders a fixed-layout PDF invoice from a rental's joined
// record. Generation is a pure function of the rental data: no state is
// kept between calls and the same rental always yields the same document.
type InvoiceService struct {
	rentals *repository.RentalRepo
}

func NewInvoiceService(rentals *repository.RentalRepo) *InvoiceService {
	if rentals == nil {
		panic("nil repository passed to NewInvoiceService")
	}
	return &InvoiceService{rentals: rentals}
}

// InvoiceNumber formats a rental id as the zero-padded invoice reference.
func InvoiceNumber(rentalID uint64) string {
	return fmt.Sprintf("INV-%06d", rentalID)
}

// Generate fetches the rental and streams the PDF into w. Returns
// repository.ErrRentalNotFound when the rental does not exist. The encoder
// emits pages incrementally, so w can be an HTTP response writer.
func (s *InvoiceService) Generate(ctx context.Context, rentalID uint64, w io.Writer) error {
	rental, err := s.rentals.GetDetail(ctx, rentalID)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(v float64) string { return tr(fmt.Sprintf("%.2f€", v)) }
	pdf.AddPage()

	// Company header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, companyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, companyAddress, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, companyContact, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Invoice Number: "+InvoiceNumber(rental.ID), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, "Date: "+rental.CreatedAt.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.Ln(8)

	// Customer block
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, "CUSTOMER INFORMATION", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Name: "+rental.UserName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Email: "+rental.UserEmail, "", 1, "L", false, 0, "")
	phone := "N/A"
	if rental.UserPhone != nil && *rental.UserPhone != "" {
		phone = *rental.UserPhone
	}
	pdf.CellFormat(0, 5, "Phone: "+phone, "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// Rental block
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, "RENTAL DETAILS", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Vehicle: %s %s (%d)", rental.Brand, rental.CarModel, rental.Year), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Rental Period: %s - %s",
		rental.StartDate.Format("02/01/2006"), rental.EndDate.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Status: "+rental.Status, "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// Pricing table: one line item (days x daily rate)
	days := RentalDays(rental.StartDate, rental.EndDate)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(100, 6, "Description", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, "Days", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, "Amount", "", 1, "R", false, 0, "")
	x, y := pdf.GetX(), pdf.GetY()
	pdf.Line(x, y, x+180, y)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(100, 6, tr(fmt.Sprintf("Car Rental (%.2f€/day)", rental.PricePerDay)), "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%d", days), "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, money(rental.TotalPrice), "", 1, "R", false, 0, "")
	pdf.Ln(4)
	x, y = pdf.GetX(), pdf.GetY()
	pdf.Line(x, y, x+180, y)
	pdf.Ln(2)

	// Totals: flat 20% VAT on top of the rental price
	vat := rental.TotalPrice * vatRate
	total := rental.TotalPrice + vat
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(140, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, money(rental.TotalPrice), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(140, 6, "VAT (20%):", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, money(vat), "", 1, "R", false, 0, "")
	pdf.Ln(2)
	x, y = pdf.GetX(), pdf.GetY()
	pdf.Line(x, y, x+180, y)
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(140, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, money(total), "", 1, "R", false, 0, "")

	// Footer
	pdf.SetY(-40)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 4, "Thank you for your business!", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 4, "For any questions, please contact us at contact@carrental.com", "", 1, "C", false, 0, "")

	return pdf.Output(w)
}
