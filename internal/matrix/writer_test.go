package matrix

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rpattn/profilematrix/internal/domain"
)

func render(t *testing.T, layout Layout, records []domain.Record) (*Grid, Stats) {
	t.Helper()
	collection, err := Collect(records)
	if err != nil {
		t.Fatalf("collect returned error: %v", err)
	}
	grid := NewGrid()
	stats, err := NewWriter(layout).Write(grid, records, collection)
	if err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	return grid, stats
}

func assertRows(t *testing.T, got [][]any, want [][]any) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d:\n%v", len(want), len(got), got)
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Fatalf("row %d mismatch:\n got %#v\nwant %#v", i+1, got[i], want[i])
		}
	}
}

func TestWriterRoleAndTagsExample(t *testing.T) {
	records := mustRecords(t, `[
		{"id": "u1", "profile": {"role": "admin", "tags": ["a", "b"]}},
		{"id": "u2", "profile": {"role": "user", "tags": ["b", "a"]}}
	]`)

	grid, stats := render(t, DefaultLayout(), records)

	assertRows(t, grid.Rows(), [][]any{
		{"item name", "set value", "u1", "u2"},
		{"role", "admin", "◯", ""},
		{"", "user", "", "◯"},
		{"tags", `["a", "b"]`, "◯", ""},
		{"", `["b", "a"]`, "", "◯"},
	})
	if stats.HeaderColumns != 4 || stats.BodyRows != 4 || stats.MarkedCells != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestWriterMissingFieldNeverMatches(t *testing.T) {
	records := mustRecords(t, `[
		{"id": "u1", "profile": {"role": "admin", "nick": null, "bio": ""}},
		{"id": "u2", "profile": {"other": 1}}
	]`)

	grid, _ := render(t, DefaultLayout(), records)

	assertRows(t, grid.Rows(), [][]any{
		{"item name", "set value", "u1", "u2"},
		{"bio", "", "◯", ""},
		{"nick", "", "◯", ""},
		{"other", int64(1), "", "◯"},
		{"role", "admin", "◯", ""},
	})
}

func TestWriterNestedProfilesAndPlaceholders(t *testing.T) {
	records := mustRecords(t, `[
		{"id": "u1", "profile": {"name": "x", "address": {"city": "Kyoto", "geo": {"lat": 35.0}}}},
		{"id": "u2", "profile": {"name": "x", "address": {"city": "Osaka"}, "active": true}}
	]`)

	grid, stats := render(t, DefaultLayout(), records)

	assertRows(t, grid.Rows(), [][]any{
		{"item name", "set value", "u1", "u2"},
		{"active", true, "", "◯"},
		{"name", "x", "◯", "◯"},
		{"address", "", "", ""},
		{"  city", "Kyoto", "◯", ""},
		{"", "Osaka", "", "◯"},
		{"  geo", "", "", ""},
		{"    lat", int64(35), "◯", ""},
	})
	if stats.PlaceholderRows != 2 {
		t.Fatalf("expected 2 placeholder rows, got %d", stats.PlaceholderRows)
	}
}

func TestWriterLabelDedupOnlyAgainstPreviousRow(t *testing.T) {
	records := mustRecords(t, `[
		{"id": "u1", "profile": {"a": {"x": 1, "y": 2}, "b": {"x": 3}}}
	]`)

	grid, _ := render(t, DefaultLayout(), records)

	assertRows(t, grid.Rows(), [][]any{
		{"item name", "set value", "u1"},
		{"a", "", ""},
		{"b", "", ""},
		{"  x", int64(1), "◯"},
		{"  y", int64(2), "◯"},
		{"  x", int64(3), "◯"},
	})
}

func TestWriterContiguousEqualDisplayNamesShareLabel(t *testing.T) {
	records := mustRecords(t, `[
		{"id": "u1", "profile": {"a": {"x": 1}, "b": {"x": 2}}}
	]`)

	grid, _ := render(t, DefaultLayout(), records)

	assertRows(t, grid.Rows(), [][]any{
		{"item name", "set value", "u1"},
		{"a", "", ""},
		{"b", "", ""},
		{"  x", int64(1), "◯"},
		{"", int64(2), "◯"},
	})
}

func TestWriterHonoursOrigin(t *testing.T) {
	records := mustRecords(t, `[{"id": "u1", "profile": {"role": "admin"}}]`)

	layout := DefaultLayout()
	layout.OriginRow = 6
	layout.OriginCol = 2
	grid, stats := render(t, layout, records)

	if grid.Cell(6, 2) != "item name" || grid.Cell(6, 4) != "u1" {
		t.Fatalf("header not written at origin: %v", grid.Rows())
	}
	if grid.Cell(7, 2) != "role" || grid.Cell(7, 3) != "admin" || grid.Cell(7, 4) != "◯" {
		t.Fatalf("body not written below origin: %v", grid.Rows())
	}
	if grid.Cell(1, 1) != "" {
		t.Fatalf("expected nothing above origin")
	}
	if stats.LastRow != 7 {
		t.Fatalf("expected last row 7, got %d", stats.LastRow)
	}
}

func TestWriterHeaderWidthAndLeafCoverage(t *testing.T) {
	inputs := []string{
		`[]`,
		`[{"id": "u1", "profile": {}}]`,
		`[{"id": "u1", "profile": {"a": 1}}, {"id": "u2", "profile": {"b": {"c": [1, {"d": 2}]}}}, {"id": "u3", "profile": {"a": "1"}}]`,
	}
	for i, input := range inputs {
		t.Run(fmt.Sprintf("input-%d", i), func(t *testing.T) {
			records := mustRecords(t, input)
			collection, err := Collect(records)
			if err != nil {
				t.Fatalf("collect returned error: %v", err)
			}
			grid := NewGrid()
			stats, err := NewWriter(DefaultLayout()).Write(grid, records, collection)
			if err != nil {
				t.Fatalf("write returned error: %v", err)
			}
			if stats.HeaderColumns != 2+len(records) {
				t.Fatalf("header width %d, want %d", stats.HeaderColumns, 2+len(records))
			}
			expectedRows := 0
			for _, d := range collection.Descriptors {
				n := len(collection.Values(d))
				if n == 0 {
					n = 1
				}
				expectedRows += n
			}
			if stats.BodyRows != expectedRows {
				t.Fatalf("body rows %d, want %d", stats.BodyRows, expectedRows)
			}
		})
	}
}

func TestWriterIsIdempotent(t *testing.T) {
	input := `[
		{"id": "u1", "profile": {"m": {"b": [1, 2], "a": {"z": null}}, "n": 1.5, "mixed": "1"}},
		{"id": "u2", "profile": {"m": {"a": {"z": null}, "b": [1, 2]}, "n": 2, "mixed": 1}},
		{"id": "u3", "profile": {"mixed": [1], "n": false}}
	]`

	first, _ := render(t, DefaultLayout(), mustRecords(t, input))
	second, _ := render(t, DefaultLayout(), mustRecords(t, input))

	if !reflect.DeepEqual(first.Rows(), second.Rows()) {
		t.Fatalf("expected identical output across runs:\n%v\n%v", first.Rows(), second.Rows())
	}
}

func TestWriterPresenceLawOnMixedTypes(t *testing.T) {
	records := mustRecords(t, `[
		{"id": "u1", "profile": {"v": "1"}},
		{"id": "u2", "profile": {"v": 1}},
		{"id": "u3", "profile": {"v": 1.0}},
		{"id": "u4", "profile": {"v": [1]}}
	]`)

	grid, _ := render(t, DefaultLayout(), records)

	assertRows(t, grid.Rows(), [][]any{
		{"item name", "set value", "u1", "u2", "u3", "u4"},
		{"v", int64(1), "", "◯", "◯", ""},
		{"", "1", "◯", "", "", ""},
		{"", "[1]", "", "", "", "◯"},
	})
}

type failingSheet struct {
	failAfter int
	calls     int
}

func (f *failingSheet) SetCell(row, col int, value any) error {
	f.calls++
	if f.calls > f.failAfter {
		return errors.New("disk full")
	}
	return nil
}

func TestWriterPropagatesSheetErrors(t *testing.T) {
	records := mustRecords(t, `[{"id": "u1", "profile": {"role": "admin"}}]`)
	collection, err := Collect(records)
	if err != nil {
		t.Fatalf("collect returned error: %v", err)
	}

	for _, failAfter := range []int{0, 3} {
		sheet := &failingSheet{failAfter: failAfter}
		if _, err := NewWriter(DefaultLayout()).Write(sheet, records, collection); err == nil {
			t.Fatalf("expected error when sheet fails after %d calls", failAfter)
		}
	}
}

func TestWriterFallsBackToDefaultLabels(t *testing.T) {
	records := mustRecords(t, `[{"id": "u1", "profile": {"role": "admin"}}]`)

	cases := map[string]Layout{
		"zero layout":   {},
		"empty labels":  {OriginRow: 1, OriginCol: 1, PresenceGlyph: "x", Indent: "  "},
		"only item set": {ItemLabel: "", ValueLabel: "value"},
	}
	for name, layout := range cases {
		t.Run(name, func(t *testing.T) {
			grid, _ := render(t, layout, records)
			rows := grid.Rows()
			if len(rows) == 0 {
				t.Fatalf("expected a header row")
			}
			if rows[0][0] != DefaultItemLabel {
				t.Fatalf("item label %#v, want %q", rows[0][0], DefaultItemLabel)
			}
			wantValue := layout.ValueLabel
			if wantValue == "" {
				wantValue = DefaultValueLabel
			}
			if rows[0][1] != wantValue {
				t.Fatalf("value label %#v, want %q", rows[0][1], wantValue)
			}
		})
	}
}
