package extractor

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractDocument reads a statement PDF and returns per-page text plus any
// tabular regions the layout analysis could detect. It tries multiple
// extraction methods: the structured PDF library first (the only path that
// yields tables), then the external pdftotext command, then OCR for
// scanned statements. A document that produces no readable text by any
// method is an unrecoverable error — no partial result is returned.
func ExtractDocument(filePath string) (*Document, error) {
	doc, libErr := extractWithLibrary(filePath)
	if libErr == nil && isReadableDocument(doc) {
		return doc, nil
	}

	// Library failed or returned garbage — try external pdftotext.
	textPages, popplerErr := extractWithPdftotext(filePath)
	if popplerErr == nil && isReadableText(textPages) {
		return documentFromText(textPages), nil
	}

	// Last resort: the statement may be a scan with no text layer.
	ocrPages, ocrErr := ExtractTextOCR(filePath)
	if ocrErr == nil && isReadableText(ocrPages) {
		return documentFromText(ocrPages), nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("statement text extraction failed: %v; the PDF may use custom font encodings or be image-based", libErr)
	}
	return nil, fmt.Errorf("no readable text could be extracted from %s; the file may be image-based or use undecodable font encodings", filePath)
}

func documentFromText(pages []string) *Document {
	doc := &Document{}
	for _, p := range pages {
		doc.Pages = append(doc.Pages, Page{Text: p})
	}
	return doc
}

// extractWithLibrary uses ledongthuc/pdf. The coordinate-based method is
// tried first because it is the only one that can recover table structure;
// the plainer methods are text-only fallbacks for PDFs whose content
// streams the row reconstruction cannot handle.
func extractWithLibrary(filePath string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	doc = extractByContent(r, numPages)
	if isReadableDocument(doc) {
		return doc, nil
	}

	pages := extractByRow(r, numPages)
	if isReadableText(pages) {
		return documentFromText(pages), nil
	}

	pages = extractByPagePlainText(r, numPages)
	if isReadableText(pages) {
		return documentFromText(pages), nil
	}

	plainText := extractByReaderPlainText(r)
	if isReadableText([]string{plainText}) {
		return documentFromText([]string{plainText}), nil
	}

	return doc, nil
}

// extractByRow uses GetTextByRow, which preserves line structure well on
// cleanly generated PDFs.
func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByPagePlainText uses Page.GetPlainText with a per-page font map.
func extractByPagePlainText(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fontNames := page.Fonts()
		fonts := make(map[string]*pdf.Font)
		for _, name := range fontNames {
			f := page.Font(name)
			fonts[name] = &f
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

// extractByReaderPlainText extracts the whole document at once.
func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// extractWithPdftotext uses the external pdftotext command (poppler-utils)
// for PDFs the Go library cannot handle. Text only — no table recovery.
func extractWithPdftotext(filePath string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %v", err)
	}

	numPages := pdfinfoPageCount(filePath)
	if numPages == 0 {
		numPages = 1
	}

	// Extract each page separately to preserve page boundaries.
	var pages []string
	for i := 1; i <= numPages; i++ {
		pageStr := strconv.Itoa(i)
		out, err := exec.Command("pdftotext", "-layout", "-f", pageStr, "-l", pageStr, filePath, "-").Output()
		if err != nil {
			continue
		}
		text := strings.TrimSpace(string(out))
		if text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		out, err := exec.Command("pdftotext", "-layout", filePath, "-").Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext failed: %v", err)
		}
		text := strings.TrimSpace(string(out))
		if text == "" {
			return nil, fmt.Errorf("pdftotext produced no output")
		}
		return []string{text}, nil
	}

	return pages, nil
}

func pdfinfoPageCount(filePath string) int {
	out, err := exec.Command("pdfinfo", filePath).Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
			if err == nil {
				return n
			}
		}
	}
	return 0
}

// statementWords appear in virtually all bank and card statements. If the
// extracted text contains none of them, it is likely garbage from an
// identity-encoded font.
var statementWords = []string{
	"account", "statement", "balance", "date", "payment", "amount",
	"total", "credit", "debit", "transaction", "card", "deposit",
	"withdrawal", "purchase", "merchant", "period", "page", "number",
	"available", "interest",
}

func containsStatementWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range statementWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// textQuality returns the ratio of basic readable ASCII characters to total
// characters. A strict ASCII check — unicode.IsLetter is too broad and
// matches the accented garbage that identity-encoded fonts produce.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(".,-/:;()'\"$%&@#!?+=*", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// isReadableText requires >50 chars, >60% readable ASCII, and at least one
// word a statement would contain.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsStatementWords(pages)
}

func isReadableDocument(doc *Document) bool {
	if doc == nil {
		return false
	}
	var pages []string
	for _, p := range doc.Pages {
		pages = append(pages, p.Text)
	}
	return isReadableText(pages)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
