package service

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ragkit/indexer-be/types"
)

// DocumentLoader produces an ordered, restartable sequence of page-level
// documents from a source file.
type DocumentLoader interface {
	Load(path string, req types.IngestRequest) ([]types.Document, error)
}

// PDFService loads PDF files page by page using the poppler command line
// tools, falling back to OCR for pages with no extractable text layer.
type PDFService struct {
	ocrEnabled bool // Whether to attempt tesseract OCR on empty pages
}

func NewPDFService() *PDFService {
	return &PDFService{ocrEnabled: true}
}

// Load reads a PDF file and returns one Document per page, in page order.
// Returns ErrSourceNotFound if the path does not exist and ErrParseFailed if
// the file cannot be parsed as a PDF.
func (s *PDFService) Load(path string, req types.IngestRequest) ([]types.Document, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", types.ErrSourceNotFound, path)
	}

	totalPages, err := getNumPages(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrParseFailed, err)
	}
	log.Println("Total pages: ", totalPages)

	title := req.Title
	if title == "" {
		title = GetFileNameWithoutExt(path)
	}
	source := req.Source
	if source == "" {
		source = path
	}

	documents := make([]types.Document, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text, err := s.extractText(path, pageNum)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d: %v", pageNum, err)
			continue // Skip failed pages instead of returning error
		}

		text = cleanText(text)
		if text == "" {
			continue
		}

		documents = append(documents, types.Document{
			Content: text,
			Metadata: types.DocumentMetadata{
				Title:      title,
				Source:     source,
				PageNum:    pageNum,
				TotalPages: totalPages,
				Tags:       req.Tags,
			},
		})
	}

	return documents, nil
}

// GetFileNameWithoutExt extracts filename without extension from a file path
func GetFileNameWithoutExt(path string) string {
	base := filepath.Base(path)
	if idx := strings.LastIndex(base, "."); idx != -1 {
		base = base[:idx]
	}
	return base
}

// extractText attempts to extract text from a specific page using multiple methods
func (s *PDFService) extractText(path string, pageNumber int) (string, error) {
	text, err := extractTextWithPdftotext(path, pageNumber)
	if err == nil && text != "" {
		return text, nil
	}
	if !s.ocrEnabled {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	text, err = extractTextWithTesseract(path, pageNumber)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}

// extractTextWithPdftotext extracts text from a single page using the
// pdftotext utility.
func extractTextWithPdftotext(path string, pageNumber int) (string, error) {
	cmd := exec.Command("pdftotext", "-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		path, "-")
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed for page %d: %w", pageNumber, err)
	}
	if trimmed := strings.TrimSpace(out.String()); len(trimmed) > 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

// extractTextWithTesseract extracts text using OCR when pdftotext yields
// nothing, which happens for scanned pages without a text layer.
func extractTextWithTesseract(path string, pageNumber int) (string, error) {
	log.Println("Try extracting with tesseract")
	tempFolder, err := os.MkdirTemp("", "indexer-ocr-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempFolder)

	convertCmd := exec.Command("pdftoppm", "-f", strconv.Itoa(pageNumber), "-l", strconv.Itoa(pageNumber), "-png", path, filepath.Join(tempFolder, "page"))
	if err := convertCmd.Run(); err != nil {
		return "", fmt.Errorf("error converting page %d to image: %w", pageNumber, err)
	}
	pattern := filepath.Join(tempFolder, "page-*.png")
	files, err := filepath.Glob(pattern)
	if err != nil || len(files) == 0 {
		return "", fmt.Errorf("failed to read image files: %w", err)
	}
	ocrCmd := exec.Command("tesseract",
		files[0],
		"stdout",
		"--oem", "3",
		"--psm", "3",
	)
	var out bytes.Buffer
	ocrCmd.Stdout = &out
	if err := ocrCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	if trimmed := strings.TrimSpace(out.String()); len(trimmed) > 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

// getNumPages uses pdfinfo to get the total number of pages in a PDF file
func getNumPages(path string) (int, error) {
	cmd := exec.Command("pdfinfo", path)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %v", err)
	}

	scanner := bufio.NewScanner(&out)
	re := regexp.MustCompile(`Pages:\s+(\d+)`)
	for scanner.Scan() {
		if matches := re.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}

	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

func cleanText(text string) string {
	replacements := map[string]string{
		"\u0000": "",   // Null character
		"\ufffd": "",   // Unicode replacement character
		"\u001b": "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
		"  ":     " ",  // Multiple spaces to single space
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}
	return strings.TrimSpace(cleaned)
}
