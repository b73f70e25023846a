package refseries

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"expensascli/pkg/contracts/domain"
)

// JoinFX resolves the applicable exchange rate for every record and derives
// the USD amount. Records whose date resolves no rate keep both fields unset
// and gain the missing-FX observation; the join never drops a record.
func JoinFX(records []*domain.Expense, fx *Series) {
	missing := 0
	for _, r := range records {
		if r.Date.IsZero() {
			r.AddObservation(domain.ObsMissingFX)
			missing++
			continue
		}
		rate, ok := fx.RateFor(r.Date)
		if !ok || rate.IsZero() {
			r.AddObservation(domain.ObsMissingFX)
			missing++
			continue
		}
		r.FXRate = decimal.NullDecimal{Decimal: rate, Valid: true}
		usd := r.AmountARS.DivRound(rate, 2)
		r.AmountUSD = decimal.NullDecimal{Decimal: usd, Valid: true}
	}
	if missing > 0 {
		slog.Warn("records without resolvable exchange rate", slog.Int("count", missing))
	}
}
