package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// FileType identifies a supported statement format.
type FileType string

// Supported file types.
const (
	FileTypeCSV FileType = "csv"
	FileTypeOFX FileType = "ofx"
	FileTypeQFX FileType = "qfx"
)

// Format describes a supported statement format.
type Format struct {
	Extension   string
	Name        string
	Description string
}

// SupportedFormats lists the formats the importer accepts.
func SupportedFormats() []Format {
	return []Format{
		{
			Extension:   string(FileTypeCSV),
			Name:        "CSV (Comma-Separated Values)",
			Description: "Standard CSV export from most banks. Must include a date column and either an amount column or debit/credit columns.",
		},
		{
			Extension:   string(FileTypeOFX),
			Name:        "OFX (Open Financial Exchange)",
			Description: "Standard financial data format supported by most banks.",
		},
		{
			Extension:   string(FileTypeQFX),
			Name:        "QFX (Quicken Financial Exchange)",
			Description: "Quicken-specific format, similar to OFX.",
		},
	}
}

// DetectFileType maps a filename's extension to a file type.
func DetectFileType(filename string) (FileType, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return FileTypeCSV, nil
	case ".ofx":
		return FileTypeOFX, nil
	case ".qfx":
		return FileTypeQFX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

// ParseFile parses content according to the filename's extension. The
// extension is checked before any bytes are read.
func ParseFile(ctx context.Context, filename string, content []byte, dateFormat string) (FileType, []model.ImportCandidate, error) {
	fileType, err := DetectFileType(filename)
	if err != nil {
		return "", nil, err
	}

	var candidates []model.ImportCandidate
	switch fileType {
	case FileTypeCSV:
		candidates, err = ParseCSV(ctx, content, dateFormat)
	default:
		candidates, err = ParseOFX(ctx, content)
	}
	if err != nil {
		return fileType, nil, err
	}

	if len(candidates) == 0 {
		return fileType, nil, ErrNoTransactions
	}
	return fileType, candidates, nil
}
