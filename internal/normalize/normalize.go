// Package normalize holds the pure cell-level normalizers: canonical text,
// dates, es-AR currency amounts and CUIT tax identifiers. Everything here is
// side-effect free; callers decide what a reject means.
package normalize

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"expensascli/pkg/contracts/domain"
)

// ErrTotalRow signals that an amount cell carries a subtotal/total marker.
// The row must be skipped entirely, this is not a parse failure.
var ErrTotalRow = errors.New("subtotal/total marker row")

// ErrUnparseable signals a cell whose content could not be normalized.
var ErrUnparseable = errors.New("unparseable cell value")

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	cuitRe       = regexp.MustCompile(`(20|2[3-7]|30|3[3-4])[- .]?(\d{8})[- .]?(\d)`)
	stripper     = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Text lowercases, strips diacritics and collapses whitespace. All
// case/diacritic-insensitive matching in the pipeline goes through here.
func Text(s string) string {
	stripped, _, err := transform.String(stripper, s)
	if err != nil {
		stripped = s
	}
	stripped = strings.ToLower(strings.TrimSpace(stripped))
	return whitespaceRe.ReplaceAllString(stripped, " ")
}

// IsTotalMarker reports whether a cell represents an aggregate row marker
// ("TOTAL Administración", "Subtotal", ...). Match is case and diacritic
// insensitive.
func IsTotalMarker(s string) bool {
	t := Text(s)
	return strings.HasPrefix(t, "total") || t == "subtotal" || t == "totales"
}

// YearMonth is a calendar month, used for date fallbacks and monthly series.
type YearMonth struct {
	Year  int
	Month time.Month
}

// EndOfMonth returns the last day of the month at midnight UTC.
func (ym YearMonth) EndOfMonth() time.Time {
	return time.Date(ym.Year, ym.Month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

var dateLayouts = []string{"02/01/2006", "02-01-2006", "2006-01-02"}

// Date parses a cell into a calendar date. Textual day/month/year forms and
// Excel serial numbers are accepted. When the cell is unparseable and a
// fallback month is known (inferred from the file name), the last day of that
// month is used and the returned observation says so; otherwise ErrUnparseable.
func Date(raw string, fallback *YearMonth) (time.Time, string, error) {
	s := strings.TrimSpace(raw)
	if s != "" {
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, "", nil
			}
		}
		if d, ok := fromExcelSerial(s); ok {
			return d, "", nil
		}
	}
	if fallback != nil {
		return fallback.EndOfMonth(), domain.ObsInferredDate, nil
	}
	return time.Time{}, "", ErrUnparseable
}

// fromExcelSerial converts an Excel serial day number to a date. The range
// guard keeps ordinary numeric cells (amounts, codes) from being read as
// dates: 21916..73050 covers 1960 through 2099.
func fromExcelSerial(s string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial < 21916 || serial > 73050 {
		return time.Time{}, false
	}
	base := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(serial)), true
}

// Amount parses an es-AR formatted amount ("1.685.187,00"): grouping dots are
// stripped, the decimal comma becomes a decimal point. A total marker in the
// cell returns ErrTotalRow; anything else non-numeric returns ErrUnparseable.
func Amount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrUnparseable
	}
	if IsTotalMarker(s) || strings.HasSuffix(Text(s), "total") {
		return decimal.Zero, ErrTotalRow
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, " ", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrUnparseable
	}
	return d, nil
}

// TaxID scans free text for a CUIT token: a two-digit prefix from the valid
// enumeration {20,23..27,30,33,34}, eight digits, one check digit, separators
// optional. Returns the canonical hyphenated form, or "" when no valid token
// exists; absence is missing data, not an error.
func TaxID(text string) string {
	m := cuitRe.FindStringSubmatch(Text(text))
	if m == nil {
		return ""
	}
	return m[1] + "-" + m[2] + "-" + m[3]
}

// Vendor splits the combined payee cell into the vendor name (kept verbatim,
// trimmed) and the normalized tax identifier found in it, if any.
func Vendor(cell string) (name, taxID string) {
	return strings.TrimSpace(cell), TaxID(cell)
}

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

var (
	// Explicit non-digit guards instead of \b: names like
	// "expensas_11_2024.xlsx" delimit the tokens with underscores, which
	// \b treats as word characters.
	numericYMRe = regexp.MustCompile(`(?:^|[^0-9])(0?[1-9]|1[0-2])[-_/](20\d{2})(?:[^0-9]|$)`)
	yearRe      = regexp.MustCompile(`(20\d{2})`)
)

// MonthYearFromFilename infers the period a workbook covers from its file
// name, accepting "mm-yyyy" style tokens and Spanish month names. Returns nil
// when nothing matches.
func MonthYearFromFilename(name string) *YearMonth {
	s := Text(name)
	if m := numericYMRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return &YearMonth{Year: year, Month: time.Month(month)}
	}
	for mname, month := range spanishMonths {
		if strings.Contains(s, mname) {
			if y := yearRe.FindString(s); y != "" {
				year, _ := strconv.Atoi(y)
				return &YearMonth{Year: year, Month: month}
			}
		}
	}
	return nil
}
