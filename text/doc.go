// Package text provides normalization for extracted text runs.
//
// PDF content streams deliver text with typographic quotes, soft hyphens,
// stray control characters, and irregular whitespace. [Clean] folds all of
// that into plain single-spaced strings so the statistics and classification
// stages compare text on equal footing:
//
//	s := text.Clean("Revi­sion History’s  notes\n")
//	// "Revision History's notes"
//
// The transforms recompose combining sequences (NFC), drop Unicode format
// characters, replace curly quotes and long dashes with their ASCII
// equivalents, and collapse whitespace runs to single spaces.
package text
