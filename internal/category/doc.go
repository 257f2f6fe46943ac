// Package category maps file extensions to the shop folder taxonomy. The
// lookup is pure and total: every extension resolves to a category, with
// HOLDING as the catch-all for anything unrecognized.
package category
