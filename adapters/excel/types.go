package excel

// Columns is the fixed schema of a study file, in column order. The header
// row is skipped by position, so its spelling is not checked.
var Columns = []string{
	"subject",
	"createGameTime",
	"findGameTime",
	"rsvpTime",
	"updateProfileTime",
	"filtersOn",
	"tutorialGiven",
}

// RawRow is one data row as read from the file, before parsing
type RawRow struct {
	Line   int
	Fields []string
}

// ReadOptions controls how rows are turned into observations
type ReadOptions struct {
	// SkipMalformed logs and drops rows that fail to parse instead of
	// aborting the whole read
	SkipMalformed bool
	// Sheet selects the worksheet of an .xlsx file; empty means the first one
	Sheet string
}
