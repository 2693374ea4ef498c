package table

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/csv"

	"github.com/nvandessel/lastmile/internal/constants"
)

// Write renders rec to w in the given format.
func Write(w io.Writer, rec arrow.Record, format constants.Format) error {
	switch format {
	case constants.FormatText:
		return WriteText(w, rec)
	case constants.FormatCSV:
		return WriteCSV(w, rec)
	case constants.FormatJSON:
		return WriteJSON(w, rec)
	default:
		return fmt.Errorf("unknown format %q (valid: text, csv, json)", format)
	}
}

// WriteCSV writes a header row followed by one line per record row.
func WriteCSV(w io.Writer, rec arrow.Record) error {
	cw := csv.NewWriter(w, rec.Schema(), csv.WithHeader(true))
	if err := cw.Write(rec); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	if err := cw.Flush(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteText writes aligned columns. Floats are rounded to one decimal.
func WriteText(w io.Writer, rec arrow.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	names := make([]string, rec.NumCols())
	for i, f := range rec.Schema().Fields() {
		names[i] = f.Name
	}
	fmt.Fprintln(tw, strings.Join(names, "\t"))

	cells := make([]string, rec.NumCols())
	for row := 0; row < int(rec.NumRows()); row++ {
		for col := range cells {
			cells[col] = formatCell(rec.Column(col), row, 1)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// WriteJSON writes the record as an array of objects keyed by column name,
// at full precision.
func WriteJSON(w io.Writer, rec arrow.Record) error {
	rows := Rows(rec)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// Rows converts the record into one map per row.
func Rows(rec arrow.Record) []map[string]any {
	rows := make([]map[string]any, rec.NumRows())
	fields := rec.Schema().Fields()
	for row := range rows {
		m := make(map[string]any, len(fields))
		for col, f := range fields {
			m[f.Name] = cellValue(rec.Column(col), row)
		}
		rows[row] = m
	}
	return rows
}

func cellValue(col arrow.Array, row int) any {
	if col.IsNull(row) {
		return nil
	}
	switch c := col.(type) {
	case *array.String:
		return c.Value(row)
	case *array.Float64:
		return c.Value(row)
	case *array.Int64:
		return c.Value(row)
	default:
		return c.ValueStr(row)
	}
}

func formatCell(col arrow.Array, row int, decimals int) string {
	if col.IsNull(row) {
		return "-"
	}
	switch c := col.(type) {
	case *array.Float64:
		return strconv.FormatFloat(c.Value(row), 'f', decimals, 64)
	case *array.Int64:
		return strconv.FormatInt(c.Value(row), 10)
	case *array.String:
		return c.Value(row)
	default:
		return c.ValueStr(row)
	}
}
