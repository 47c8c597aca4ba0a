package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"anovalab/domain/core"
	"anovalab/domain/experiment"
	"anovalab/internal"
	"anovalab/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader reads study observations from CSV or Excel files
type DataReader struct {
	filePath string
	opts     ReadOptions
	logger   *internal.Logger
}

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(filePath string, opts ReadOptions, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{filePath: filePath, opts: opts, logger: logger.With("excel")}
}

// Name identifies the source by file path
func (r *DataReader) Name() string {
	return r.filePath
}

// Observations reads and parses the whole file
func (r *DataReader) Observations(ctx context.Context) ([]experiment.Observation, error) {
	format, err := DetectFormat(r.filePath)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("reading %s file: %s", format, r.filePath)

	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", strings.ToUpper(string(format)), err)
	}
	defer f.Close()

	return Read(ctx, f, format, r.opts, r.logger)
}

// Read parses study rows in the given format
func Read(ctx context.Context, in io.Reader, format Format, opts ReadOptions, logger *internal.Logger) ([]experiment.Observation, error) {
	switch format {
	case FormatXLSX:
		return ReadXLSX(ctx, in, opts, logger)
	case FormatCSV:
		return ReadCSV(ctx, in, opts, logger)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedInput, format)
	}
}

// ReadCSV parses comma-separated study rows from an arbitrary reader
func ReadCSV(ctx context.Context, in io.Reader, opts ReadOptions, logger *internal.Logger) ([]experiment.Observation, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	readStart := time.Now()
	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, RawRow{Line: line, Fields: record})
	}
	if logger != nil {
		logger.Debug("CSV read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	}

	return processRows(ctx, rows, opts, logger)
}

// ReadXLSX parses study rows from the first (or configured) sheet of a workbook
func ReadXLSX(ctx context.Context, in io.Reader, opts ReadOptions, logger *internal.Logger) ([]experiment.Observation, error) {
	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrUnsupportedInput)
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if logger != nil {
		logger.Debug("sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(records))
	}

	rows := make([]RawRow, 0, len(records))
	for i, record := range records {
		rows = append(rows, RawRow{Line: i + 1, Fields: record})
	}
	return processRows(ctx, rows, opts, logger)
}

// processRows skips the header row and blank rows, then parses the rest
func processRows(ctx context.Context, rows []RawRow, opts ReadOptions, logger *internal.Logger) ([]experiment.Observation, error) {
	if len(rows) <= 1 {
		return nil, nil
	}

	observations := make([]experiment.Observation, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blank(row.Fields) {
			continue
		}

		o, err := ParseRow(row)
		if err != nil {
			if !opts.SkipMalformed {
				return nil, err
			}
			skipped++
			if logger != nil {
				logger.Warn("skipping row: %v", err)
			}
			continue
		}
		observations = append(observations, o)
	}

	if logger != nil {
		logger.Info("parsed %d observations (%d skipped)", len(observations), skipped)
	}
	return observations, nil
}

// numericColumns is the count of leading columns that must be present.
// Flag columns may be missing: spreadsheets drop trailing blank cells.
const numericColumns = 5

// ParseRow converts one data row into an observation. Absent flag columns
// read as blank, which is false.
func ParseRow(row RawRow) (experiment.Observation, error) {
	if len(row.Fields) < numericColumns {
		return experiment.Observation{}, core.NewMalformedRecordError(row.Line, Columns[len(row.Fields)],
			fmt.Errorf("expected %d fields, got %d", len(Columns), len(row.Fields)))
	}
	field := func(i int) string {
		if i >= len(row.Fields) {
			return ""
		}
		return strings.TrimSpace(row.Fields[i])
	}

	subject, err := strconv.Atoi(field(0))
	if err != nil {
		return experiment.Observation{}, core.NewMalformedRecordError(row.Line, Columns[0], err)
	}

	var durations [4]float64
	for i := range durations {
		v, err := strconv.ParseFloat(field(i+1), 64)
		if err != nil {
			return experiment.Observation{}, core.NewMalformedRecordError(row.Line, Columns[i+1], err)
		}
		durations[i] = v
	}

	o := experiment.Observation{
		Subject:           subject,
		CreateGameTime:    durations[0],
		FindGameTime:      durations[1],
		RSVPTime:          durations[2],
		UpdateProfileTime: durations[3],
		FiltersOn:         ParseFlag(field(5)),
		TutorialGiven:     ParseFlag(field(6)),
	}
	if err := o.Validate(); err != nil {
		return experiment.Observation{}, fmt.Errorf("line %d: %w", row.Line, err)
	}
	return o, nil
}

// ParseFlag accepts yes, true and 1 (any case) as true; anything else is false
func ParseFlag(token string) bool {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

var _ ports.ObservationSource = (*DataReader)(nil)
