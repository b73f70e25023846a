package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"expensascli/internal/errors"
)

// ReportCounts holds the per-class totals the markdown audit report states.
type ReportCounts struct {
	Records        int
	Duplicates     int
	NonPositive    int
	Outliers       int
	Weekends       int
	AboveInflation int
	Rejections     int
}

// WriteReport renders a short markdown audit report.
func WriteReport(path string, counts ReportCounts) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).WithContext("path", path)
	}

	var b strings.Builder
	b.WriteString("# Informe de Auditoría de Gastos\n\n")
	fmt.Fprintf(&b, "Total de gastos analizados: %d\n\n", counts.Records)
	b.WriteString("## Anomalías Detectadas\n\n")
	writeLine(&b, "Duplicados", counts.Duplicates)
	writeLine(&b, "Montos cero/negativos", counts.NonPositive)
	writeLine(&b, "Valores atípicos", counts.Outliers)
	writeLine(&b, "Operaciones en fin de semana", counts.Weekends)
	writeLine(&b, "Crecimiento sobre inflación", counts.AboveInflation)
	writeLine(&b, "Filas rechazadas", counts.Rejections)

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.NewStorageError("failed to write audit report", err).WithContext("path", path)
	}
	return nil
}

func writeLine(b *strings.Builder, label string, count int) {
	if count > 0 {
		fmt.Fprintf(b, "- %s: %d registros encontrados\n", label, count)
	} else {
		fmt.Fprintf(b, "- %s: no se encontraron registros\n", label)
	}
}
