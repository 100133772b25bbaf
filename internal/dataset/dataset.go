package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Required columns of the input CSV.
const (
	ColumnTitle       = "Tieu_de"
	ColumnDescription = "Description"
	ColumnContent     = "Noi_dung_tin_bai"
)

var requiredColumns = []string{ColumnTitle, ColumnDescription, ColumnContent}

// Row is one raw dataset row before preparation.
type Row struct {
	Index       int
	Title       string
	Description string
	Content     string
}

// Dataset is an in-memory UTF-8 CSV with its header preserved, so the final
// join can re-emit every original column.
type Dataset struct {
	header []string
	rows   [][]string
	colIdx map[string]int
}

// Load reads and validates the CSV at path. Schema problems (missing
// required columns, empty dataset, null cells in required columns) are fatal
// and reported together.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset validation failed: dataset is empty")
	}

	ds := &Dataset{
		header: records[0],
		rows:   records[1:],
		colIdx: make(map[string]int, len(records[0])),
	}
	for i, name := range ds.header {
		ds.colIdx[strings.TrimSpace(name)] = i
	}

	if errs := ds.validate(); len(errs) > 0 {
		return nil, fmt.Errorf("dataset validation failed: %s", strings.Join(errs, "; "))
	}

	return ds, nil
}

func (d *Dataset) validate() []string {
	var errs []string

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := d.colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("missing columns: %s", strings.Join(missing, ", ")))
	}

	if len(d.rows) == 0 {
		errs = append(errs, "dataset is empty")
	}

	for _, col := range requiredColumns {
		idx, ok := d.colIdx[col]
		if !ok {
			continue
		}
		nulls := 0
		for _, row := range d.rows {
			if idx >= len(row) || row[idx] == "" {
				nulls++
			}
		}
		if nulls > 0 {
			errs = append(errs, fmt.Sprintf("column %q has %d null values", col, nulls))
		}
	}

	return errs
}

// Len reports the number of data rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Header returns the original column names.
func (d *Dataset) Header() []string {
	out := make([]string, len(d.header))
	copy(out, d.header)
	return out
}

// RawRow returns the unmodified CSV cells of row i.
func (d *Dataset) RawRow(i int) []string {
	return d.rows[i]
}

// Row returns the typed view of row i.
func (d *Dataset) Row(i int) Row {
	return Row{
		Index:       i,
		Title:       d.cell(i, ColumnTitle),
		Description: d.cell(i, ColumnDescription),
		Content:     d.cell(i, ColumnContent),
	}
}

func (d *Dataset) cell(i int, col string) string {
	idx, ok := d.colIdx[col]
	if !ok {
		return ""
	}
	row := d.rows[i]
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Stats summarizes the dataset for logging at run start.
type Stats struct {
	TotalRecords     int
	AvgTitleLength   float64
	AvgDescLength    float64
	AvgContentLength float64
}

// Describe computes dataset statistics.
func (d *Dataset) Describe() Stats {
	stats := Stats{TotalRecords: d.Len()}
	if d.Len() == 0 {
		return stats
	}

	var title, desc, content int
	for i := range d.rows {
		row := d.Row(i)
		title += len([]rune(row.Title))
		desc += len([]rune(row.Description))
		content += len([]rune(row.Content))
	}
	n := float64(d.Len())
	stats.AvgTitleLength = float64(title) / n
	stats.AvgDescLength = float64(desc) / n
	stats.AvgContentLength = float64(content) / n
	return stats
}
