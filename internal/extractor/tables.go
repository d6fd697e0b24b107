package extractor

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Column detection thresholds, in PDF points. A horizontal gap wider than
// columnGap separates two cells; a gap wider than wordGap separates two
// words inside one cell.
const (
	columnGap = 15.0
	wordGap   = 1.0
)

// extractByContent reconstructs each page from raw positioned text objects:
// pieces are grouped into rows by Y coordinate, rows into cells by X gaps.
// Runs of consecutive multi-cell rows become detected table regions, and the
// same rows also render into the page's plain text, so the text-line
// fallback always sees everything the table path saw.
func extractByContent(r *pdf.Reader, numPages int) *Document {
	doc := &Document{}
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rows := buildRows(content.Text)
		if len(rows) == 0 {
			continue
		}

		var lines []string
		for _, row := range rows {
			lines = append(lines, strings.Join(row, "  "))
		}

		doc.Pages = append(doc.Pages, Page{
			Text:   strings.Join(lines, "\n"),
			Tables: detectTables(rows),
		})
	}
	return doc
}

// buildRows groups positioned text pieces into rows of cells.
func buildRows(text []pdf.Text) [][]string {
	type piece struct {
		x float64
		s string
	}
	rowMap := make(map[int][]piece)
	for _, t := range text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		// Round Y to the nearest integer to group pieces into rows.
		yKey := int(math.Round(t.Y))
		rowMap[yKey] = append(rowMap[yKey], piece{x: t.X, s: t.S})
	}

	// PDF Y runs bottom-to-top, so rows sort descending.
	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var rows [][]string
	for _, y := range yKeys {
		pieces := rowMap[y]
		sort.Slice(pieces, func(a, b int) bool {
			return pieces[a].x < pieces[b].x
		})

		var cells []string
		var cell strings.Builder
		var prevEnd float64
		for j, p := range pieces {
			if j > 0 {
				gap := p.x - prevEnd
				switch {
				case gap > columnGap:
					cells = append(cells, strings.TrimSpace(cell.String()))
					cell.Reset()
				case gap > wordGap && !strings.HasSuffix(cell.String(), " "):
					cell.WriteByte(' ')
				}
			}
			cell.WriteString(p.s)
			prevEnd = p.x + approxWidth(p.s)
		}
		if s := strings.TrimSpace(cell.String()); s != "" {
			cells = append(cells, s)
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

// approxWidth estimates rendered text width when the PDF library doesn't
// report piece extents. Statements are mostly ~10pt body text, so half the
// font size per character is close enough for gap comparisons.
func approxWidth(s string) float64 {
	return float64(len(s)) * 5.0
}

// detectTables finds maximal runs of at least two consecutive rows that each
// split into two or more cells. Rows inside a region are padded to the
// region's widest row so downstream column indexing is safe.
func detectTables(rows [][]string) []Table {
	var tables []Table
	var run [][]string

	flush := func() {
		if len(run) >= 2 {
			width := 0
			for _, row := range run {
				if len(row) > width {
					width = len(row)
				}
			}
			table := make(Table, 0, len(run))
			for _, row := range run {
				padded := make([]string, width)
				copy(padded, row)
				table = append(table, padded)
			}
			tables = append(tables, table)
		}
		run = nil
	}

	for _, row := range rows {
		if len(row) >= 2 {
			run = append(run, row)
			continue
		}
		flush()
	}
	flush()

	return tables
}
