package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"steward/internal/pattern"
)

// canonical matches PARTNUMBER_REV-X_description.ext. The description must
// start with a letter so a trailing revision digit is never absorbed.
var canonical = regexp.MustCompile(`^([A-Z0-9]+(?:-[A-Z0-9]+)*)_REV-([A-Z]|\d{1,2})_([A-Za-z][A-Za-z0-9-]*)\.[A-Za-z0-9]+$`)

// Verdict is the result of checking one filename.
type Verdict struct {
	Filename  string
	Compliant bool
	Fields    pattern.Fields
	// Suggested holds the canonical rename target when one can be built
	// from the extracted fields. Empty when fields are missing.
	Suggested string
	// Violation describes why the name is non-compliant and whether manual
	// review is needed.
	Violation string
}

// Namer checks names against the canonical convention.
type Namer struct {
	extractor *pattern.Extractor
}

// NewNamer builds a Namer backed by the shared pattern extractor.
func NewNamer(extractor *pattern.Extractor) *Namer {
	if extractor == nil {
		extractor = pattern.NewExtractor()
	}
	return &Namer{extractor: extractor}
}

// Check validates a bare filename. Non-compliant names get a suggestion
// when both part number and revision were extracted; otherwise the verdict
// carries a violation requiring manual review.
func (n *Namer) Check(filename string) Verdict {
	base := filepath.Base(filename)
	verdict := Verdict{Filename: base, Fields: n.extractor.Extract(base)}

	if m := canonical.FindStringSubmatch(base); m != nil {
		verdict.Compliant = true
		verdict.Fields.PartNumber = m[1]
		verdict.Fields.Revision = m[2]
		return verdict
	}

	if !verdict.Fields.Complete() {
		missing := make([]string, 0, 2)
		if verdict.Fields.PartNumber == "" {
			missing = append(missing, "part number")
		}
		if verdict.Fields.Revision == "" {
			missing = append(missing, "revision")
		}
		verdict.Violation = fmt.Sprintf("cannot determine %s; manual review required", strings.Join(missing, " and "))
		return verdict
	}

	verdict.Suggested = Canonical(verdict.Fields.PartNumber, verdict.Fields.Revision, descriptionFrom(base, verdict.Fields), filepath.Ext(base))
	verdict.Violation = "name does not match PARTNUMBER_REV-X_description convention"
	return verdict
}

// Canonical assembles a convention-compliant filename from its parts. The
// extension may be passed with or without the leading dot.
func Canonical(part, revision, description, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	description = slugify(description)
	if description == "" {
		description = "file"
	}
	return fmt.Sprintf("%s_REV-%s_%s.%s", strings.ToUpper(part), strings.ToUpper(revision), description, strings.ToLower(ext))
}

// descriptionFrom recovers a description token from whatever remains of the
// stem after the extracted fields are stripped.
func descriptionFrom(base string, fields pattern.Fields) string {
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if idx := strings.Index(stem, "__"); idx >= 0 && fields.Customer != "" {
		stem = stem[idx+2:]
	}
	upper := strings.ToUpper(stem)
	if fields.PartNumber != "" {
		if idx := strings.Index(upper, fields.PartNumber); idx >= 0 {
			stem = stem[idx+len(fields.PartNumber):]
		}
	}
	if fields.Revision != "" {
		re := regexp.MustCompile(`(?i)(?:^|[ _-])(?:REV[ _-]?|R|V)` + regexp.QuoteMeta(fields.Revision) + `(?:[ _.-]|$)`)
		if loc := re.FindStringIndex(stem); loc != nil {
			stem = stem[:loc[0]] + " " + stem[loc[1]:]
		}
	}
	return slugify(stem)
}

// slugify lowercases and reduces a fragment to letters, digits, and
// hyphens, collapsing separator runs.
func slugify(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	var b strings.Builder
	lastHyphen := false
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if !lastHyphen && b.Len() > 0 {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
