package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"expensascli/pkg/contracts/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"security keyword", []string{"Vigilancia Norte", "Seguridad", "", "ronda nocturna"}, "Seguridad"},
		{"energy via luz", []string{"Edesur", "", "", "factura de luz"}, "Energía"},
		{"energy diacritics", []string{"", "ENERGÍA ELÉCTRICA", "", ""}, "Energía"},
		{"gardening", []string{"", "Jardinería", "", "poda"}, "Jardinería"},
		{"maintenance", []string{"", "", "", "mantenimiento ascensor"}, "Mantenimiento"},
		{"works", []string{"", "Obras", "", ""}, "Obras"},
		{"legal", []string{"Estudio Pérez", "Legales", "", ""}, "Legales"},
		{"admin via printing", []string{"", "", "", "impresiones"}, "Administración"},
		{"no match", []string{"Proveedor X", "Varios", "", "compra"}, domain.RubricUnclassified},
		{"empty", nil, domain.RubricUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.parts...))
		})
	}
}

// Rule order is a contract: "segur" is evaluated before "energ", so a memo
// matching both resolves to Seguridad.
func TestClassifyFirstMatchWins(t *testing.T) {
	assert.Equal(t, "Seguridad", Classify("seguro de energía"))
}

func TestClassifyNeverEmpty(t *testing.T) {
	assert.NotEmpty(t, Classify(""))
	assert.NotEmpty(t, Classify("texto sin palabras clave"))
}
