package excel

import (
	"fmt"
	"path/filepath"
	"strings"

	"anovalab/domain/core"
)

// Format identifies the container of a study file
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from a file extension. Files without an
// extension are read as CSV.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", "":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", core.ErrUnsupportedInput, filepath.Ext(path))
	}
}

// FormatForContentType maps an HTTP content type to a format
func FormatForContentType(contentType string) (Format, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch ct {
	case "text/csv", "application/csv", "text/plain":
		return FormatCSV, true
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX, true
	default:
		return "", false
	}
}
