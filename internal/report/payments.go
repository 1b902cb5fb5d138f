// Package report renders spreadsheet exports.
package report

import (
	"fmt"
	"io"

	"trainingdesk/internal/model"

	"github.com/xuri/excelize/v2"
)

const paymentSheet = "Payments"

var paymentHeaders = []string{
	"receipt_id", "requested_by", "reason", "service_days", "amount", "status", "approved_by", "approved_at", "created_at",
}

// WritePayments writes payments as a single-sheet xlsx workbook to w, with a
// header row and a closing total over the listed amounts.
func WritePayments(w io.Writer, payments []model.Payment) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), paymentSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, h := range paymentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(paymentSheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header: %w", err)
		}
	}

	for r, p := range payments {
		amount, _ := p.Amount.Float64()
		approvedBy, approvedAt := "", ""
		if p.Approver != nil {
			approvedBy = p.Approver.Username
		}
		if p.ApprovedAt != nil {
			approvedAt = p.ApprovedAt.Format("2006-01-02 15:04")
		}
		requester := p.RequestedBy.String()
		if p.Requester != nil {
			requester = p.Requester.Username
		}

		row := []any{
			p.ReceiptID, requester, p.Reason, p.ServiceDays, amount, string(p.Status), approvedBy, approvedAt,
			p.CreatedAt.Format("2006-01-02 15:04"),
		}
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(paymentSheet, cell, v); err != nil {
				return fmt.Errorf("failed to set cell value: %w", err)
			}
		}
	}

	totalRow := len(payments) + 2
	label, _ := excelize.CoordinatesToCellName(4, totalRow)
	sum, _ := excelize.CoordinatesToCellName(5, totalRow)
	if err := f.SetCellValue(paymentSheet, label, "total"); err != nil {
		return fmt.Errorf("failed to set total label: %w", err)
	}
	if len(payments) > 0 {
		first, _ := excelize.CoordinatesToCellName(5, 2)
		last, _ := excelize.CoordinatesToCellName(5, totalRow-1)
		if err := f.SetCellFormula(paymentSheet, sum, fmt.Sprintf("SUM(%s:%s)", first, last)); err != nil {
			return fmt.Errorf("failed to set total formula: %w", err)
		}
	} else if err := f.SetCellValue(paymentSheet, sum, 0); err != nil {
		return fmt.Errorf("failed to set total: %w", err)
	}

	if err := f.SetColWidth(paymentSheet, "A", "A", 38); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
