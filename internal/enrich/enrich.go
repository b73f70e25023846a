// Package enrich resolves vendor fiscal data from a CUIT by querying a
// public registry. Lookups are cached and rate limited so a consolidation
// run over many workbooks does not hammer the upstream site.
package enrich

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound reports that the registry has no entry for the queried CUIT.
var ErrNotFound = errors.New("enrich: taxpayer not found")

// FiscalInfo is the registry record for one taxpayer.
type FiscalInfo struct {
	Name        string
	CUIT        string
	TaxCategory string
	PersonType  string
}

// String renders the record as the single fiscal-data cell written to the
// consolidated output.
func (f FiscalInfo) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{f.Name, f.CUIT, f.TaxCategory, f.PersonType} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " / ")
}

// Lookup resolves fiscal data for a CUIT.
type Lookup interface {
	Fiscal(ctx context.Context, cuit string) (FiscalInfo, error)
}

// LookupFunc adapts a plain function to the Lookup interface.
type LookupFunc func(ctx context.Context, cuit string) (FiscalInfo, error)

func (f LookupFunc) Fiscal(ctx context.Context, cuit string) (FiscalInfo, error) {
	return f(ctx, cuit)
}
