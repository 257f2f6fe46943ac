package pattern

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fields holds the structured tokens extracted from a filename. Empty
// strings mean the field was not found.
type Fields struct {
	Customer   string
	PartNumber string
	Revision   string
}

// Complete reports whether both hierarchy fields (part number and
// revision) were found.
func (f Fields) Complete() bool {
	return f.PartNumber != "" && f.Revision != ""
}

// Part number patterns in priority order. Matching starts at the beginning
// of the stem: shop convention puts the part number first.
var partPatterns = []*regexp.Regexp{
	// Alpha prefix with numeric body: ABC-123, TRW-10045A
	regexp.MustCompile(`(?i)^([A-Z]{2,6}-\d{2,6}[A-Z0-9]*)`),
	// Purely numeric with optional dash suffix: 10045, 10045-01
	regexp.MustCompile(`^(\d{3,8}(?:-\d{1,4})?)`),
	// Generic alphanumeric token with separators: A1B2-C3. Requires at
	// least one digit so plain words are not mistaken for part numbers.
	regexp.MustCompile(`(?i)^([A-Z]*\d[A-Z0-9]*(?:-[A-Z0-9]+)*)`),
}

// Revision patterns in priority order: REV-A style first, then bare R1 and
// V2 shorthand. Each requires separator or boundary context so part-number
// digits are not misread as revisions.
var revisionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:^|[ _-])REV[ _-]?([A-Z]|\d{1,2})(?:[ _.-]|$)`),
	regexp.MustCompile(`(?i)(?:^|[ _-])R(\d{1,2})(?:[ _.-]|$)`),
	regexp.MustCompile(`(?i)(?:^|[ _-])V(\d{1,2})(?:[ _.-]|$)`),
}

// customerPrefix recognizes an explicit customer tag ahead of the part
// number, written as "Customer__rest-of-name".
var customerPrefix = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 ]{0,31})__`)

var titleCaser = cases.Title(language.AmericanEnglish)

// Extractor applies the ordered patterns to filenames.
type Extractor struct{}

// NewExtractor returns a ready extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract pulls fields from a bare filename (no directory components). The
// extension is ignored for matching.
func (e *Extractor) Extract(filename string) Fields {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	var fields Fields
	if m := customerPrefix.FindStringSubmatch(stem); m != nil {
		fields.Customer = CanonicalCustomer(m[1])
		stem = stem[len(m[0]):]
	}

	for _, re := range partPatterns {
		if m := re.FindStringSubmatch(stem); m != nil {
			fields.PartNumber = strings.ToUpper(m[1])
			break
		}
	}

	// Search for the revision after the part number so tokens inside the
	// part number itself are never consumed twice.
	rest := stem
	if fields.PartNumber != "" {
		rest = stem[len(fields.PartNumber):]
	}
	for _, re := range revisionPatterns {
		if m := re.FindStringSubmatch(rest); m != nil {
			fields.Revision = strings.ToUpper(m[1])
			break
		}
	}

	return fields
}

// CanonicalCustomer normalizes a customer name for use as a folder name:
// trimmed, title-cased, inner whitespace collapsed.
func CanonicalCustomer(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(name))
}
