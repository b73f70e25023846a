package consolidate

import (
	"fmt"
	"os"

	"expensascli/internal/errors"
	"expensascli/internal/exporter"
	"expensascli/pkg/contracts/domain"
)

// CheckAppendSchema verifies that an existing append target carries exactly
// the consolidated table's header. A missing file passes, the first write
// will create it. Any mismatch is fatal for the run; nothing may be appended
// under a different schema.
func CheckAppendSchema(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	header, err := exporter.ReadHeader(path)
	if err != nil {
		return err
	}
	if len(header) != len(domain.OutputColumns) {
		return errors.NewSchemaError(
			fmt.Sprintf("append target has %d columns, expected %d", len(header), len(domain.OutputColumns)),
			nil).WithContext("path", path)
	}
	for i, col := range domain.OutputColumns {
		if header[i] != col {
			return errors.NewSchemaError(
				fmt.Sprintf("append target column %d is %q, expected %q", i+1, header[i], col),
				nil).WithContext("path", path)
		}
	}
	return nil
}
