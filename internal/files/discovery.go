// Package files locates the monthly workbooks a consolidation run reads.
package files

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"expensascli/internal/errors"
)

// CollectWorkbooks expands a mix of directories, glob patterns and plain
// paths into the list of .xlsx files to process, in a deterministic order:
// each argument's matches are sorted lexicographically by path, duplicates
// removed while keeping first occurrence. Excel lock files ("~$...") are
// ignored.
func CollectWorkbooks(inputs []string) ([]string, error) {
	var found []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		switch {
		case err == nil && info.IsDir():
			matches, err := filepath.Glob(filepath.Join(input, "*.xlsx"))
			if err != nil {
				return nil, errors.NewStorageError("failed to scan directory", err).WithContext("dir", input)
			}
			sort.Strings(matches)
			found = append(found, matches...)
		case strings.ContainsAny(input, "*?["):
			matches, err := filepath.Glob(input)
			if err != nil {
				return nil, errors.NewValidationError("invalid glob pattern", err).WithContext("pattern", input)
			}
			sort.Strings(matches)
			found = append(found, matches...)
		default:
			found = append(found, input)
		}
	}

	seen := make(map[string]bool, len(found))
	var uniq []string
	for _, f := range found {
		name := filepath.Base(f)
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			continue
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		uniq = append(uniq, f)
	}
	return uniq, nil
}
