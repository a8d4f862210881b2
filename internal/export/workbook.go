package export

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrTemplateHasNoSheets is returned when a template workbook has no worksheet to write into.
var ErrTemplateHasNoSheets = errors.New("template workbook has no sheets")

// Workbook adapts an excelize file to the matrix writer's Sheet contract,
// always targeting a single worksheet.
type Workbook struct {
	file      *excelize.File
	sheet     string
	templated bool
}

// NewWorkbook creates a fresh workbook with a single sheet named sheetName.
func NewWorkbook(sheetName string) (*Workbook, error) {
	f := excelize.NewFile()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, errors.New("new workbook has no sheets")
	}
	if strings.TrimSpace(sheetName) != "" && sheetName != sheets[0] {
		if err := f.SetSheetName(sheets[0], sheetName); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}
	return &Workbook{file: f, sheet: f.GetSheetList()[0]}, nil
}

// OpenTemplate opens the template at path and targets its first sheet.
// The template file itself is never modified; SaveAtomic writes a copy.
func OpenTemplate(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", path, err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrTemplateHasNoSheets, path)
	}
	return &Workbook{file: f, sheet: sheets[0], templated: true}, nil
}

// SheetName returns the targeted worksheet.
func (w *Workbook) SheetName() string {
	return w.sheet
}

// Templated reports whether the workbook was opened from a template.
func (w *Workbook) Templated() bool {
	return w.templated
}

// SetCell writes value at the 1-based (row, col) coordinate.
func (w *Workbook) SetCell(row, col int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return w.file.SetCellValue(w.sheet, cell, value)
}

// Decorate bolds the header row, freezes the label columns and header,
// and widens the label columns. Only fresh workbooks are decorated;
// templates keep their own formatting.
func (w *Workbook) Decorate(headerRow, firstCol, lastCol int) error {
	if w.templated {
		return nil
	}
	if lastCol < firstCol {
		lastCol = firstCol
	}
	styleID, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	start, err := excelize.CoordinatesToCellName(firstCol, headerRow)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(lastCol, headerRow)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(w.sheet, start, end, styleID); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	labelStart, err := excelize.ColumnNumberToName(firstCol)
	if err != nil {
		return err
	}
	labelEnd, err := excelize.ColumnNumberToName(firstCol + 1)
	if err != nil {
		return err
	}
	if err := w.file.SetColWidth(w.sheet, labelStart, labelEnd, 24); err != nil {
		return fmt.Errorf("set label column width: %w", err)
	}

	topLeft, err := excelize.CoordinatesToCellName(firstCol+2, headerRow+1)
	if err != nil {
		return err
	}
	if err := w.file.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      firstCol + 1,
		YSplit:      headerRow,
		TopLeftCell: topLeft,
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("freeze panes: %w", err)
	}
	return nil
}

// SaveAtomic writes the workbook to a temporary file next to path and
// renames it into place, so a failed run never leaves a partial file.
func (w *Workbook) SaveAtomic(path string) (int64, error) {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp output file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = tempFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	buffered := bufio.NewWriterSize(tempFile, 1<<20)
	written, err := w.file.WriteTo(buffered)
	if err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return 0, fmt.Errorf("flush workbook: %w", err)
	}
	if err := tempFile.Chmod(0o644); err != nil {
		return 0, fmt.Errorf("chmod output file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return 0, fmt.Errorf("sync output file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return 0, fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return 0, fmt.Errorf("promote output file: %w", err)
	}
	cleanup = false
	return written, nil
}

// Close releases the workbook's resources.
func (w *Workbook) Close() error {
	return w.file.Close()
}
