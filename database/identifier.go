package database

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidType       = errors.New("invalid column type")
)

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	// type name with an optional (n) or (n, m) suffix, as SQLite accepts it
	typePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*(\(\s*[+-]?\d+\s*(,\s*[+-]?\d+\s*)?\))?$`)
)

// ValidateIdentifier checks a table or column name before it is interpolated into SQL text.
// Identifiers cannot be bound as parameters, so only plain names are accepted.
func ValidateIdentifier(id string) error {
	if !identPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return nil
}

// ValidateColumnType checks a declared type copied from a source schema into a CREATE TABLE.
// An empty type is valid (no declared type).
func ValidateColumnType(t string) error {
	if t == "" {
		return nil
	}
	if !typePattern.MatchString(strings.TrimSpace(t)) {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	return nil
}

func quoteWith(id string, q string) string {
	return q + strings.ReplaceAll(id, q, q+q) + q
}
