package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

const (
	sheetNav     = "Nav"
	sheetSidebar = "Sidebar"
)

// xlsxRenderer writes a link inventory workbook for editors reviewing the
// navigation outside the repository.
type xlsxRenderer struct{}

func (xlsxRenderer) Format() config.Format { return config.FormatXLSX }

func (xlsxRenderer) Render(site *nav.Site) ([]File, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetNav); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetSidebar); err != nil {
		return nil, err
	}

	navRows := [][]any{{"Location", "Depth", "Text", "Link"}}
	sidebarRows := [][]any{{"Section", "Location", "Kind", "Depth", "Text", "Link"}}
	for _, e := range site.Entries() {
		if e.Kind == nav.EntryNav {
			navRows = append(navRows, []any{e.Location(), len(e.Trail), e.Text, e.Link})
			continue
		}
		kind := "item"
		switch {
		case e.Kind == nav.EntrySidebarGroup:
			kind = "group"
		case e.Declared:
			kind = "nested group"
		}
		sidebarRows = append(sidebarRows, []any{e.Section, e.Location(), kind, len(e.Trail), e.Text, e.Link})
	}

	if err := writeSheet(f, sheetNav, navRows, []float64{40, 8, 24, 40}); err != nil {
		return nil, err
	}
	if err := writeSheet(f, sheetSidebar, sidebarRows, []float64{16, 60, 14, 8, 24, 40}); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return []File{{Path: "links.xlsx", Data: buf.Bytes()}}, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, widths []float64) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}
