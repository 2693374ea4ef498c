package constants

// Format is an output rendering for result tables.
type Format string

const (
	// FormatText renders aligned, human-readable columns.
	FormatText Format = "text"

	// FormatCSV renders comma-separated values with a header row.
	FormatCSV Format = "csv"

	// FormatJSON renders an array of row objects.
	FormatJSON Format = "json"
)

// Valid returns true if the format is a recognized value.
func (f Format) Valid() bool {
	switch f {
	case FormatText, FormatCSV, FormatJSON:
		return true
	}
	return false
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}
