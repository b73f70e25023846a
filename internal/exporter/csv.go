// Package exporter writes the consolidated table and its analysis views to
// their sinks: CSV files, the multi-sheet audit workbook, the markdown audit
// report, or standard output.
package exporter

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"expensascli/internal/errors"
)

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options. In append mode
// the header is written only when the file does not exist yet.
func WriteCSV(filePath string, options WriteOptions) error {
	slog.Info("writing CSV file",
		slog.String("path", filePath),
		slog.Bool("append", options.Append),
		slog.Int("records", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).WithContext("path", filePath)
	}

	flags := os.O_CREATE | os.O_WRONLY
	writeHeader := len(options.Headers) > 0
	if options.Append {
		flags |= os.O_APPEND
		if _, err := os.Stat(filePath); err == nil {
			writeHeader = false
		}
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		return errors.NewStorageError("failed to open output file", err).WithContext("path", filePath)
	}
	defer file.Close()

	if options.BOMPrefix && writeHeader {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return errors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if writeHeader {
		if err := writer.Write(options.Headers); err != nil {
			return errors.NewStorageError("failed to write header row", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError("failed to write record", err).WithContext("row", i)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVTo streams headers and records to an arbitrary writer. Used for the
// stdout sink when the run has neither an output nor an append target.
func WriteCSVTo(w io.Writer, headers []string, records [][]string) error {
	writer := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return errors.NewStorageError("failed to write header row", err)
		}
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError("failed to write record", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadHeader returns the first row of an existing CSV file, tolerating a
// UTF-8 BOM. Used for append-target schema checks.
func ReadHeader(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.NewStorageError("failed to open CSV file", err).WithContext("path", filePath)
	}
	defer file.Close()

	bom := make([]byte, 3)
	n, _ := io.ReadFull(file, bom)
	if n != 3 || bom[0] != 0xEF || bom[1] != 0xBB || bom[2] != 0xBF {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, errors.NewStorageError("failed to rewind CSV file", err)
		}
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewParsingError("failed to read CSV header", err).WithContext("path", filePath)
	}
	return header, nil
}
