// Package importer turns bank statement files into categorized, deduplicated
// transaction candidates and commits them to an account.
package importer

import "errors"

// File-level import errors. Row-level problems never surface as errors; the
// offending row is skipped.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format, please use CSV, OFX or QFX")
	ErrDecodeFailed      = errors.New("failed to decode statement")
	ErrNoHeader          = errors.New("CSV file has no header row")
	ErrMissingDateColumn = errors.New("could not find date column in CSV")
	ErrNoTransactions    = errors.New("no transactions found in file")
	ErrInvalidAmount     = errors.New("invalid amount")
)
