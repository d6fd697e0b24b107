package extractor

// Table is a machine-detected tabular region: rows of cell text. The first
// row is whatever the layout put first, which may or may not be a header —
// that judgement belongs to the row extractor, not here.
type Table [][]string

// Page is the extracted content of a single document page.
type Page struct {
	Text   string
	Tables []Table
}

// Document is the extraction facility's output for one statement file.
type Document struct {
	Pages []Page
}

// AllText returns the full document text with pages joined by newlines.
func (d *Document) AllText() string {
	out := ""
	for i, p := range d.Pages {
		if i > 0 {
			out += "\n"
		}
		out += p.Text
	}
	return out
}

// FirstPageText returns the text of the first page, or "" for an empty
// document. Statement metadata lives on the first page.
func (d *Document) FirstPageText() string {
	if len(d.Pages) == 0 {
		return ""
	}
	return d.Pages[0].Text
}
