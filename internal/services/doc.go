// Package services defines the shared error taxonomy used by steward's
// pipeline stages and HTTP layer to classify failures consistently.
package services
