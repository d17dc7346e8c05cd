package grid

import (
	"fmt"

	"trade-dashboard/src/models"
)

const (
	DefaultPageSize = 10
	EmptyText       = "No records found."
)

var DefaultPageSizes = []int{10, 25, 50, 100}

// Record is what the grid needs from a row type.
type Record interface {
	Field(key string) interface{}
	// NaturalKey returns a unique id when the record has one.
	NaturalKey() (string, bool)
}

// Payloader is implemented by records that carry a raw JSON payload.
type Payloader interface {
	Payload() *string
}

// -----------------------------------------------------------------------------

type Column struct {
	Key    string
	Label  string
	Width  int
	Format Formatter
}

// Action is a per-row operation shown in the action column. It never takes
// part in sorting or filtering.
type Action struct {
	Name  string // inspect | edit | delete
	Label string
}

type Row struct {
	Key        string
	Cells      []string
	HasPayload bool
}

// Options controls one render. Zero values fall back to the defaults.
type Options struct {
	Page      int
	Size      int
	Sizes     []int
	EmptyText string
	Actions   []Action
}

// Page is a render-ready slice of a result set.
type Page struct {
	Columns   []Column
	Actions   []Action
	Rows      []Row
	Page      int
	PageCount int
	Size      int
	Sizes     []int
	Total     int
	Loading   bool
	Empty     bool
	EmptyText string
	Failed    bool
	Message   string
}

// -----------------------------------------------------------------------------

// Render paginates records client-side and formats every visible cell.
func Render[T Record](result models.MQueryResult[T], columns []Column, opts Options) Page {
	sizes := opts.Sizes
	if len(sizes) == 0 {
		sizes = DefaultPageSizes
	}
	size := normalizeSize(opts.Size, sizes)

	page := Page{
		Columns:   columns,
		Actions:   opts.Actions,
		Size:      size,
		Sizes:     sizes,
		Page:      1,
		PageCount: 1,
		EmptyText: opts.EmptyText,
	}
	if page.EmptyText == "" {
		page.EmptyText = EmptyText
	}

	switch result.Status {
	case models.StatusLoading:
		page.Loading = true
		return page
	case models.StatusFailure:
		page.Failed = true
		page.Message = result.Message
		return page
	case models.StatusIdle:
		return page
	}

	records := result.Records
	page.Total = len(records)
	if page.Total == 0 {
		page.Empty = true
		return page
	}

	page.PageCount = (page.Total + size - 1) / size
	page.Page = clamp(opts.Page, 1, page.PageCount)

	keys := RowKeys(records)
	start := (page.Page - 1) * size
	end := start + size
	if end > page.Total {
		end = page.Total
	}

	page.Rows = make([]Row, 0, end-start)
	for i := start; i < end; i++ {
		page.Rows = append(page.Rows, renderRow(records[i], keys[i], columns))
	}
	return page
}

// -----------------------------------------------------------------------------

func renderRow[T Record](record T, key string, columns []Column) Row {
	row := Row{Key: key, Cells: make([]string, len(columns))}
	for i, col := range columns {
		row.Cells[i] = FormatCell(col, record.Field(col.Key))
	}
	if p, ok := any(record).(Payloader); ok {
		row.HasPayload = p.Payload() != nil && *p.Payload() != ""
	}
	return row
}

// -----------------------------------------------------------------------------

// FormatCell applies the column formatter, falling back to the raw value when
// the formatter fails or panics.
func FormatCell(col Column, value interface{}) (text string) {
	if col.Format == nil {
		return Raw(value)
	}
	defer func() {
		if r := recover(); r != nil {
			text = Raw(value)
		}
	}()
	formatted, err := col.Format(value)
	if err != nil {
		return Raw(value)
	}
	return formatted
}

// -----------------------------------------------------------------------------

// RowKeys returns one unique key per record. Natural keys are used when every
// record has one and they are all distinct; otherwise every row gets a
// positional key, which is only valid for the current result set.
func RowKeys[T Record](records []T) []string {
	keys := make([]string, len(records))
	seen := make(map[string]struct{}, len(records))
	natural := true
	for i, r := range records {
		k, ok := r.NaturalKey()
		if !ok {
			natural = false
			break
		}
		if _, dup := seen[k]; dup {
			natural = false
			break
		}
		seen[k] = struct{}{}
		keys[i] = k
	}
	if natural {
		return keys
	}
	for i := range records {
		keys[i] = fmt.Sprintf("row-%d", i+1)
	}
	return keys
}

// FindByKey returns the record whose row key is key.
func FindByKey[T Record](records []T, key string) (T, bool) {
	for i, k := range RowKeys(records) {
		if k == key {
			return records[i], true
		}
	}
	var zero T
	return zero, false
}

// -----------------------------------------------------------------------------

func normalizeSize(size int, sizes []int) int {
	for _, s := range sizes {
		if s == size {
			return size
		}
	}
	for _, s := range sizes {
		if s == DefaultPageSize {
			return s
		}
	}
	return sizes[0]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
