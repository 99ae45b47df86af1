package report

import (
	"fmt"
	"io"
	"sort"

	"agrirent-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	RentalsSheet = "Rental requests"
	SummarySheet = "Summary"
)

var rentalHeader = []string{
	"ID", "Equipment", "Farmer", "Start", "End (exclusive)", "Billed days", "Status",
	"Machine fee", "Delivery fee", "Deposit", "Total", "Receiver", "Phone", "Address", "Created",
}

// RentalExporter renders rental requests as an xlsx workbook for operators.
type RentalExporter struct{}

func NewRentalExporter() *RentalExporter {
	return &RentalExporter{}
}

// Write renders rentals into a two-sheet workbook and writes it to w.
func (e *RentalExporter) Write(w io.Writer, rentals []domain.RentalRequest) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", RentalsSheet)
	if err := writeRow(f, RentalsSheet, 1, toCells(rentalHeader)); err != nil {
		return err
	}
	boldHeader(f, RentalsSheet, len(rentalHeader))

	for i, rt := range rentals {
		row := []interface{}{
			rt.ID, rt.EquipmentID, rt.FarmerID, rt.StartDate.String(), rt.EndDate.String(),
			rt.RentalDurationDays, string(rt.Status),
			cents(rt.MachineFeeCents), cents(rt.DeliveryFeeCents), cents(rt.SecurityDepositCents), cents(rt.TotalAmountCents),
			rt.ReceiverName, rt.ReceiverPhone, rt.DeliveryAddress, rt.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := writeRow(f, RentalsSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", SummarySheet, err)
	}
	if err := writeSummary(f, rentals); err != nil {
		return err
	}
	return f.Write(w)
}

func writeSummary(f *excelize.File, rentals []domain.RentalRequest) error {
	type totals struct {
		count int
		cents int64
	}
	byStatus := make(map[domain.RentalStatus]*totals)
	for _, rt := range rentals {
		t, ok := byStatus[rt.Status]
		if !ok {
			t = &totals{}
			byStatus[rt.Status] = t
		}
		t.count++
		t.cents += rt.TotalAmountCents
	}

	statuses := make([]string, 0, len(byStatus))
	for s := range byStatus {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	if err := writeRow(f, SummarySheet, 1, []interface{}{"Status", "Requests", "Total"}); err != nil {
		return err
	}
	boldHeader(f, SummarySheet, 3)
	for i, s := range statuses {
		t := byStatus[domain.RentalStatus(s)]
		if err := writeRow(f, SummarySheet, i+2, []interface{}{s, t.count, cents(t.cents)}); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func boldHeader(f *excelize.File, sheet string, columns int) {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return
	}
	end, _ := excelize.CoordinatesToCellName(columns, 1)
	_ = f.SetCellStyle(sheet, "A1", end, style)
}

func toCells(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// cents renders minor units as a decimal amount.
func cents(v int64) float64 {
	return float64(v) / 100
}
