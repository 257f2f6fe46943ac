// Package organize runs the categorization pipeline: scan a directory,
// extract part fields, check the naming convention, and move each file
// into the managed folder taxonomy.
package organize
