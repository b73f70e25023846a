package dataprocessing

import (
	"errors"
	"log/slog"
	"strings"

	"expensascli/internal/normalize"
	"expensascli/pkg/contracts/domain"
)

// Source sheet column contract: A is ignored, B/C/D are hierarchical labels,
// E expense type, F date, G voucher code, H combined vendor+identifier text,
// I memo, J amount.
const (
	colCategory = 1
	colSubcat   = 2
	colSubsub   = 3
	colType     = 4
	colDate     = 5
	colVoucher  = 6
	colVendor   = 7
	colMemo     = 8
	colAmount   = 9
)

// registers carries the last seen hierarchical labels while folding over a
// sheet. A fresh value is threaded through the fold row by row; there is no
// state outside it, and it never survives across files.
type registers struct {
	category       string
	subcategory    string
	subsubcategory string
}

// apply returns the registers updated by one row. A non-blank category cell
// starts a new top-level section, so both lower registers reset even when the
// source leaves them visually unchanged.
func (r registers) apply(category, subcat, subsub string) registers {
	if category != "" {
		r.category = category
		r.subcategory = ""
		r.subsubcategory = ""
	}
	if subcat != "" {
		r.subcategory = subcat
	}
	if subsub != "" {
		r.subsubcategory = subsub
	}
	return r
}

// Reconstruct folds over the rows of one sheet and emits one expense record
// per data row, using the carried-forward labels for the sparsely filled
// hierarchy columns. Subtotal rows are excluded entirely and rows whose date
// or amount cannot be normalized become rejections, never silent drops.
func Reconstruct(rows [][]string, sourceFile string, fallback *normalize.YearMonth) ([]*domain.Expense, []domain.Rejection) {
	var records []*domain.Expense
	var rejections []domain.Rejection
	reg := registers{}

	for i, row := range rows {
		if rowBlank(row) {
			continue
		}
		category := cell(row, colCategory)
		subcat := cell(row, colSubcat)
		subsub := cell(row, colSubsub)

		// Aggregate rows are not transactions. Skip without touching the
		// registers, so a "TOTAL Administración" line never becomes the
		// subcategory of the rows after it.
		if normalize.IsTotalMarker(category) || normalize.IsTotalMarker(subcat) || normalize.IsTotalMarker(subsub) {
			continue
		}

		reg = reg.apply(category, subcat, subsub)

		voucher := cell(row, colVoucher)
		vendorName, taxID := normalize.Vendor(cell(row, colVendor))
		memo := cell(row, colMemo)

		rawAmount := cell(row, colAmount)
		if rawAmount == "" {
			continue
		}
		amount, err := normalize.Amount(rawAmount)
		if errors.Is(err, normalize.ErrTotalRow) {
			continue
		}
		hasIdentity := voucher != "" || vendorName != "" || memo != ""
		if err != nil {
			if hasIdentity {
				rejections = append(rejections, domain.Rejection{
					SourceFile: sourceFile,
					RowIndex:   i + 1,
					Reason:     "importe inválido: " + rawAmount,
				})
			}
			continue
		}
		if !hasIdentity {
			continue
		}

		date, dateObs, err := normalize.Date(cell(row, colDate), fallback)
		if err != nil {
			rejections = append(rejections, domain.Rejection{
				SourceFile: sourceFile,
				RowIndex:   i + 1,
				Reason:     "fecha inválida: " + cell(row, colDate),
			})
			continue
		}

		rec := &domain.Expense{
			Date:           date,
			VoucherCode:    voucher,
			Category:       reg.category,
			Subcategory:    reg.subcategory,
			Subsubcategory: reg.subsubcategory,
			Rubric:         Classify(vendorName, reg.category, reg.subcategory, memo),
			VendorName:     vendorName,
			VendorTaxID:    taxID,
			ExpenseType:    cell(row, colType),
			Memo:           memo,
			AmountARS:      amount,
			SourceFile:     sourceFile,
		}
		if dateObs != "" {
			rec.AddObservation(dateObs)
		}
		records = append(records, rec)
	}

	slog.Debug("reconstructed sheet",
		slog.String("source", sourceFile),
		slog.Int("records", len(records)),
		slog.Int("rejections", len(rejections)))
	return records, rejections
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
