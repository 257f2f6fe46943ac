// Package naming validates filenames against the shop naming convention
// PARTNUMBER_REV-X_description.ext and suggests canonical names from
// extracted fields. Missing fields are flagged as violations for manual
// review rather than guessed.
package naming
