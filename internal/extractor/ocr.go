package extractor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ExtractTextOCR recovers text from a scanned statement that has no text
// layer: pages are rasterized with pdftoppm and read with Tesseract, one
// page per returned string. Requires poppler-utils and tesseract-ocr on
// PATH.
func ExtractTextOCR(filePath string) ([]string, error) {
	for _, tool := range []string{"pdftoppm", "tesseract"} {
		if _, err := exec.LookPath(tool); err != nil {
			return nil, fmt.Errorf("%s not available, cannot OCR scanned statement: %w", tool, err)
		}
	}

	tmpDir, err := os.MkdirTemp("", "fincheck-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("staging OCR workspace: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	images, err := rasterizePages(filePath, tmpDir)
	if err != nil {
		return nil, err
	}

	var pages []string
	var pageErr error
	for _, img := range images {
		text, err := ocrPage(img)
		if err != nil {
			// One unreadable page doesn't sink the statement; keep the
			// last error in case every page fails.
			pageErr = err
			continue
		}
		if text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		if pageErr != nil {
			return nil, fmt.Errorf("OCR produced no text from %d page images: %w", len(images), pageErr)
		}
		return nil, fmt.Errorf("OCR produced no text from %d page images", len(images))
	}
	return pages, nil
}

// rasterizePages renders each statement page to a PNG in dir and returns the
// image paths in page order. 300 DPI resolves statement body text, which
// typically prints around 8pt.
func rasterizePages(filePath, dir string) ([]string, error) {
	prefix := filepath.Join(dir, "page")
	out, err := exec.Command("pdftoppm", "-r", "300", "-png", filePath, prefix).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("rasterizing %s: %v (%s)", filePath, err, strings.TrimSpace(string(out)))
	}

	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images for %s", filePath)
	}
	// pdftoppm zero-pads page numbers, so lexicographic order is page order.
	sort.Strings(matches)
	return matches, nil
}

// ocrPage runs Tesseract over one page image and returns its trimmed text.
// PSM 4 (single column, variable text sizes) fits the stacked label/value
// and transaction-row layout of statement pages.
func ocrPage(imgPath string) (string, error) {
	out, err := exec.Command("tesseract", imgPath, "stdout", "-l", "eng", "--psm", "4").Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed on %s: %w", filepath.Base(imgPath), err)
	}
	return strings.TrimSpace(string(out)), nil
}
