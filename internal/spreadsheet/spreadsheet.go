package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"media-converter/internal/filesystem"
	"media-converter/internal/logging"
	"media-converter/internal/mediatypes"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedPair is returned for input/output extension pairs with no converter.
var ErrUnsupportedPair = errors.New("spreadsheet conversion not supported")

// Cell is a single non-empty cell value at a zero-based position.
type Cell struct {
	Row   int
	Col   int
	Value string
}

// Sheet is one worksheet read from a workbook, in source order.
type Sheet struct {
	Name  string
	Cells []Cell
}

// Supports reports whether converting from inExt to outExt is possible.
func Supports(inExt, outExt string) bool {
	return mediatypes.NormalizeFormat(inExt) == "xls" && mediatypes.NormalizeFormat(outExt) == "xlsx"
}

// Convert rewrites a legacy .xls workbook as .xlsx, keeping sheet names,
// sheet order and every cell value. Formatting is not carried over.
func Convert(ctx context.Context, input, output string) error {
	if !Supports(filepath.Ext(input), filepath.Ext(output)) {
		return fmt.Errorf("%s to %s: %w", filepath.Ext(input), filepath.Ext(output), ErrUnsupportedPair)
	}

	sheets, err := ReadXLS(ctx, input)
	if err != nil {
		return err
	}
	return WriteXLSX(ctx, sheets, output)
}

// ReadXLS reads every sheet of a BIFF (.xls) workbook.
func ReadXLS(ctx context.Context, path string) (sheets []Sheet, err error) {
	// The BIFF parser panics on some malformed records.
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("failed to read xls workbook: %v", r)
		}
	}()

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close %s: %v", path, err)
		}
	}()

	wb, err := xls.OpenReader(f, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to read xls workbook: %w", err)
	}

	for i := 0; i < wb.NumSheets(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}

		sheet := Sheet{Name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				continue
			}
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				if v := row.Col(c); v != "" {
					sheet.Cells = append(sheet.Cells, Cell{Row: r, Col: c, Value: v})
				}
			}
		}
		logging.Debug("Read sheet %q: %d cells", sheet.Name, len(sheet.Cells))
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// WriteXLSX writes sheets to a new .xlsx workbook. A workbook always has at
// least one sheet, so an empty input still produces a single blank sheet.
func WriteXLSX(ctx context.Context, sheets []Sheet, output string) (err error) {
	wb := excelize.NewFile()
	defer func() {
		if cerr := wb.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	const defaultSheet = "Sheet1"
	used := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := uniqueSheetName(sheetName(sheet.Name, i), used)
		if i == 0 {
			if name != defaultSheet {
				if err := wb.SetSheetName(defaultSheet, name); err != nil {
					return fmt.Errorf("failed to name sheet %q: %w", name, err)
				}
			}
		} else if _, err := wb.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		for _, c := range sheet.Cells {
			ref, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
			if err != nil {
				return fmt.Errorf("sheet %q: %w", name, err)
			}
			if err := wb.SetCellValue(name, ref, cellValue(c.Value)); err != nil {
				return fmt.Errorf("sheet %q cell %s: %w", name, ref, err)
			}
		}
	}

	if err := wb.SaveAs(output); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// cellValue returns v as a float64 when it is the canonical spelling of a
// finite number, so "42" and "3.5" stay numeric while "007" or "1e3" keep
// their text.
func cellValue(v string) any {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return v
	}
	if strconv.FormatFloat(n, 'f', -1, 64) != v {
		return v
	}
	return n
}

// sheetName makes name acceptable to Excel: no more than 31 characters and
// none of : \ / ? * [ ].
func sheetName(name string, index int) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	if name == "" {
		name = "Sheet" + strconv.Itoa(index+1)
	}
	return name
}

// uniqueSheetName appends " (2)", " (3)", ... to name until it differs from
// every name in used, ignoring case as Excel does, and records the result.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := " (" + strconv.Itoa(n) + ")"
		base := []rune(name)
		if limit := 31 - len(suffix); len(base) > limit {
			base = base[:limit]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
