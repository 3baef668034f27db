package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"toyrental/internal/domain"
)

var ErrNotFound = errors.New("reservation not found")

const dateLayout = "2006-01-02"

type ReservationSource interface {
	List(ctx context.Context) ([]domain.Reservation, error)
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
}

type EquipmentSource interface {
	List(ctx context.Context) ([]domain.Equipment, error)
}

// Service renders reservation and equipment listings as PDF documents.
type Service struct {
	reservations ReservationSource
	equipment    EquipmentSource
}

func NewService(reservations ReservationSource, equipment EquipmentSource) *Service {
	return &Service{reservations: reservations, equipment: equipment}
}

func (s *Service) ReservationsPDF(ctx context.Context) ([]byte, error) {
	reservations, err := s.reservations.List(ctx)
	if err != nil {
		return nil, err
	}

	pdf := newDoc("Reservations")

	widths := []float64{30, 40, 35, 25, 25, 15, 20}
	headers := []string{"Reference", "Equipment", "Client", "Start", "End", "Days", "State"}
	tableHeader(pdf, widths, headers)

	pdf.SetFont("Helvetica", "", 9)
	for i := range reservations {
		r := &reservations[i]
		state := "active"
		if r.Finalized {
			state = "finalized"
		}
		name := ""
		if r.Equipment != nil {
			name = r.Equipment.Name
		}
		cells := []string{
			shortRef(r.Reference),
			name,
			r.ClientName,
			r.StartDate.Format(dateLayout),
			r.EndDate.Format(dateLayout),
			fmt.Sprintf("%d", r.DurationDays()),
			state,
		}
		tableRow(pdf, widths, cells)
	}

	return output(pdf)
}

func (s *Service) EquipmentPDF(ctx context.Context) ([]byte, error) {
	items, err := s.equipment.List(ctx)
	if err != nil {
		return nil, err
	}

	pdf := newDoc("Equipment")

	widths := []float64{60, 80, 30}
	tableHeader(pdf, widths, []string{"Name", "Description", "Status"})

	pdf.SetFont("Helvetica", "", 9)
	for i := range items {
		e := &items[i]
		tableRow(pdf, widths, []string{e.Name, e.Description, string(e.Status)})
	}

	return output(pdf)
}

// VoucherPDF renders a single-reservation pickup voucher. The QR code
// carries the reservation reference for scanning at the counter.
func (s *Service) VoucherPDF(ctx context.Context, reservationID int64) ([]byte, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	pdf := newDoc("Pickup voucher")

	name := fmt.Sprintf("equipment #%d", res.EquipmentID)
	if res.Equipment != nil {
		name = res.Equipment.Name
	}

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Reference: %s", res.Reference),
		fmt.Sprintf("Item: %s", name),
		fmt.Sprintf("Client: %s", res.ClientName),
		fmt.Sprintf("Period: %s to %s (%d days)",
			res.StartDate.Format(dateLayout), res.EndDate.Format(dateLayout), res.DurationDays()),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}

	png, err := qrcode.Encode(res.Reference, qrcode.Medium, 512)
	if err != nil {
		return nil, err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("voucher-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("voucher-qr", 75, pdf.GetY()+10, 60, 60, false, opts, 0, "")

	return output(pdf)
}

func newDoc(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 8, "Generated "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(12)
	return pdf
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, headers []string) {
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func tableRow(pdf *gofpdf.Fpdf, widths []float64, cells []string) {
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
