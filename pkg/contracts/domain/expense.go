package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OutputColumns is the stable column order of the consolidated table. Append
// targets must carry exactly this header; see consolidate.CheckAppendSchema.
var OutputColumns = []string{
	"fecha",
	"código",
	"categoría",
	"subcategoría",
	"sub-subcategoría",
	"rubro",
	"acreedor",
	"ID acreedor",
	"tipo de gasto",
	"descripción",
	"monto ARS",
	"monto USD",
	"tipo de cambio",
	"datos fiscales",
	"observaciones",
	"origen",
}

// DateLayout is the textual date form used across source sheets, reference
// CSVs and the consolidated table.
const DateLayout = "02/01/2006"

// Expense is one consolidated expense line reconstructed from a monthly
// worksheet. Amounts are ARS by source; USD and the applied rate are derived
// and stay unset when no exchange rate is resolvable for the date.
type Expense struct {
	Date           time.Time
	VoucherCode    string
	Category       string
	Subcategory    string
	Subsubcategory string
	Rubric         string
	VendorName     string
	VendorTaxID    string
	ExpenseType    string
	Memo           string
	AmountARS      decimal.Decimal
	AmountUSD      decimal.NullDecimal
	FXRate         decimal.NullDecimal
	FiscalData     string
	Observations   []string
	SourceFile     string
}

// AddObservation appends an advisory tag. Tags are additive; nothing ever
// removes or overwrites one.
func (e *Expense) AddObservation(tag string) {
	e.Observations = append(e.Observations, tag)
}

// HasObservation reports whether the record already carries the given tag.
func (e *Expense) HasObservation(tag string) bool {
	for _, o := range e.Observations {
		if o == tag {
			return true
		}
	}
	return false
}

// CSVRow renders the record in OutputColumns order.
func (e *Expense) CSVRow() []string {
	dateStr := ""
	if !e.Date.IsZero() {
		dateStr = e.Date.Format(DateLayout)
	}
	usd := ""
	if e.AmountUSD.Valid {
		usd = e.AmountUSD.Decimal.StringFixed(2)
	}
	fx := ""
	if e.FXRate.Valid {
		fx = e.FXRate.Decimal.StringFixed(2)
	}
	return []string{
		dateStr,
		e.VoucherCode,
		e.Category,
		e.Subcategory,
		e.Subsubcategory,
		e.Rubric,
		e.VendorName,
		e.VendorTaxID,
		e.ExpenseType,
		e.Memo,
		e.AmountARS.StringFixed(2),
		usd,
		fx,
		e.FiscalData,
		strings.Join(e.Observations, "; "),
		e.SourceFile,
	}
}

// Rejection is a run-level record of a source row that could not become an
// Expense. Rejected rows never reach the consolidated table but the reason is
// retained instead of being silently dropped.
type Rejection struct {
	SourceFile string
	RowIndex   int
	Reason     string
}
