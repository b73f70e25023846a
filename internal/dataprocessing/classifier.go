package dataprocessing

import (
	"strings"

	"expensascli/internal/normalize"
	"expensascli/pkg/contracts/domain"
)

// rubricRule maps a normalized keyword to a rubric. Rules are evaluated in
// order and the first match wins; the order below is a contract, not a hint.
type rubricRule struct {
	keyword string
	rubric  string
}

var rubricRules = []rubricRule{
	{"segur", "Seguridad"},
	{"energ", "Energía"},
	{"jardin", "Jardinería"},
	{"manten", "Mantenimiento"},
	{"obra", "Obras"},
	{"legales", "Legales"},
	{"luz", "Energía"},
	{"electric", "Energía"},
	{"gas", "Energía"},
	{"impres", "Administración"},
	{"admin", "Administración"},
	{"correo", "Administración"},
	{"librer", "Administración"},
}

// Classify maps the free-text parts of a record (vendor name, hierarchical
// labels, memo) to a rubric. The parts are concatenated, lowercased and
// diacritic-stripped before matching. No match yields the explicit
// unclassified rubric, never an empty string.
func Classify(parts ...string) string {
	blob := normalize.Text(strings.Join(parts, " "))
	for _, rule := range rubricRules {
		if strings.Contains(blob, rule.keyword) {
			return rule.rubric
		}
	}
	return domain.RubricUnclassified
}
