// Package pathvar reads and splits the PATH variable of a target.
package pathvar

import (
	"context"
	"fmt"
	"strings"
)

// Source provides the raw PATH value of an environment.
type Source interface {
	PathVar(ctx context.Context) (string, error)
	PathListSeparator() string
}

// Split breaks raw into its entries in lookup order. Duplicates and empty
// entries between separators are kept; an empty raw value has no entries.
func Split(raw, sep string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, sep)
}

// Inspect returns the ordered PATH entries of src.
func Inspect(ctx context.Context, src Source) ([]string, error) {
	raw, err := src.PathVar(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read PATH: %w", err)
	}
	return Split(raw, src.PathListSeparator()), nil
}
