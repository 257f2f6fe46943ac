// Package pattern extracts structured fields (customer, part number,
// revision) from manufacturing filenames using ordered regular expressions.
// For each field the earliest-defined pattern that matches wins; absence is
// reported explicitly rather than guessed.
package pattern
