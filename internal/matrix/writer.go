package matrix

import (
	"fmt"

	"github.com/rpattn/profilematrix/internal/domain"
	"github.com/rpattn/profilematrix/pkg/keypath"
)

const (
	DefaultItemLabel     = "item name"
	DefaultValueLabel    = "set value"
	DefaultPresenceGlyph = "◯"
	DefaultIndent        = "  "
)

// Sheet is the cell sink the writer populates. Rows and columns are 1-based.
type Sheet interface {
	SetCell(row, col int, value any) error
}

// Layout controls where and how the matrix is drawn.
type Layout struct {
	OriginRow     int
	OriginCol     int
	ItemLabel     string
	ValueLabel    string
	PresenceGlyph string
	Indent        string
}

// DefaultLayout draws at A1 with the standard labels.
func DefaultLayout() Layout {
	return Layout{
		OriginRow:     1,
		OriginCol:     1,
		ItemLabel:     DefaultItemLabel,
		ValueLabel:    DefaultValueLabel,
		PresenceGlyph: DefaultPresenceGlyph,
		Indent:        DefaultIndent,
	}
}

func (l Layout) normalized() Layout {
	if l.OriginRow <= 0 {
		l.OriginRow = 1
	}
	if l.OriginCol <= 0 {
		l.OriginCol = 1
	}
	if l.ItemLabel == "" {
		l.ItemLabel = DefaultItemLabel
	}
	if l.ValueLabel == "" {
		l.ValueLabel = DefaultValueLabel
	}
	if l.PresenceGlyph == "" {
		l.PresenceGlyph = DefaultPresenceGlyph
	}
	return l
}

// Stats summarizes what the writer emitted.
type Stats struct {
	HeaderColumns   int
	BodyRows        int
	PlaceholderRows int
	MarkedCells     int
	// LastRow is the sheet row of the final body row (the header row when the body is empty).
	LastRow int
}

// Writer renders a Collection as a presence matrix.
type Writer struct {
	layout Layout
}

// NewWriter creates a writer with the given layout.
func NewWriter(layout Layout) *Writer {
	return &Writer{layout: layout.normalized()}
}

// Layout returns the effective layout.
func (w *Writer) Layout() Layout {
	return w.layout
}

// Write emits the header row followed by one row per (path, value) pair.
// Empty cells are not written, so a template's own content below the
// origin survives wherever the matrix has nothing to say.
func (w *Writer) Write(sheet Sheet, records []domain.Record, collection Collection) (Stats, error) {
	layout := w.layout
	stats := Stats{HeaderColumns: 2 + len(records)}

	row := layout.OriginRow
	header := make([]any, 0, stats.HeaderColumns)
	header = append(header, layout.ItemLabel, layout.ValueLabel)
	for _, record := range records {
		header = append(header, record.ID)
	}
	if err := w.writeRow(sheet, row, header); err != nil {
		return stats, fmt.Errorf("write header: %w", err)
	}
	stats.LastRow = row

	prevDisplay := ""
	havePrev := false
	resolved := make([]domain.Value, len(records))
	cells := make([]any, stats.HeaderColumns)

	for _, descriptor := range collection.Descriptors {
		display := descriptor.DisplayName(layout.Indent)
		values := collection.Values(descriptor)

		if len(values) == 0 {
			clearCells(cells)
			if !havePrev || prevDisplay != display {
				cells[0] = display
			}
			row++
			if err := w.writeRow(sheet, row, cells); err != nil {
				return stats, fmt.Errorf("write row for %s: %w", descriptor.Path, err)
			}
			prevDisplay, havePrev = display, true
			stats.BodyRows++
			stats.PlaceholderRows++
			stats.LastRow = row
			continue
		}

		for i, record := range records {
			resolved[i] = resolve(record, descriptor.Path)
		}

		for _, value := range values {
			clearCells(cells)
			if !havePrev || prevDisplay != display {
				cells[0] = display
			}
			cells[1] = value.CellValue()
			for i := range records {
				if !resolved[i].IsMissing() && resolved[i].Equal(value) {
					cells[2+i] = layout.PresenceGlyph
					stats.MarkedCells++
				}
			}
			row++
			if err := w.writeRow(sheet, row, cells); err != nil {
				return stats, fmt.Errorf("write row for %s: %w", descriptor.Path, err)
			}
			prevDisplay, havePrev = display, true
			stats.BodyRows++
			stats.LastRow = row
		}
	}

	return stats, nil
}

func (w *Writer) writeRow(sheet Sheet, row int, cells []any) error {
	for offset, value := range cells {
		if isBlank(value) {
			continue
		}
		col := w.layout.OriginCol + offset
		if err := sheet.SetCell(row, col, value); err != nil {
			return fmt.Errorf("set cell (%d,%d): %w", row, col, err)
		}
	}
	return nil
}

// resolve returns the normalized value at path in the record's profile, or
// the missing sentinel when the path does not resolve.
func resolve(record domain.Record, path keypath.Path) domain.Value {
	raw, ok := keypath.Resolve(record.Profile, path)
	if !ok {
		return domain.Missing()
	}
	return domain.Normalize(raw)
}

func clearCells(cells []any) {
	for i := range cells {
		cells[i] = nil
	}
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}
