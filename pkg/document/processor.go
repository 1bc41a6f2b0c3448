// Package document extracts plain text from uploaded files and splits it into
// overlapping word chunks.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// SupportedExtensions lists what ExtractText understands
var SupportedExtensions = []string{".pdf", ".txt", ".md", ".html", ".htm"}

// Chunk is a run of consecutive words from a document
type Chunk struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

type Processor struct {
	chunkSize    int
	chunkOverlap int
}

// NewProcessor returns a Processor; non-positive sizes and overlaps that would
// stall the window fall back to the defaults.
func NewProcessor(chunkSize, chunkOverlap int) *Processor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
		if chunkOverlap >= chunkSize {
			chunkOverlap = 0
		}
	}
	return &Processor{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// IsSupported reports whether the file name has an extension ExtractText handles
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ExtractText reads the file at path and returns its cleaned text
func (p *Processor) ExtractText(path string) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = extractPDF(path)
	case ".txt", ".md":
		text, err = extractPlain(path)
	case ".html", ".htm":
		text, err = extractHTML(path)
	default:
		return "", fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
	if err != nil {
		return "", err
	}

	return CleanText(text), nil
}

func extractPDF(path string) (text string, err error) {
	// The pdf reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("error reading PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("error reading PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("error reading PDF page %d: %w", i, err)
		}
		if pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// extractPlain reads UTF-8 text, falling back to Latin-1 for anything else
func extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return decodeText(data)
}

func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(decoded), nil
}

func extractHTML(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	html, err := decodeText(data)
	if err != nil {
		return "", err
	}
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML: %w", err)
	}
	return markdown, nil
}

// CleanText collapses every whitespace run to a single space and trims the ends
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ChunkText splits text into windows of chunkSize words, each starting
// chunkSize-chunkOverlap words after the previous one.
func (p *Processor) ChunkText(text string) []Chunk {
	words := strings.Fields(text)
	step := p.chunkSize - p.chunkOverlap

	var chunks []Chunk
	for i := 0; i < len(words); i += step {
		end := i + p.chunkSize
		if end > len(words) {
			end = len(words)
		}
		window := words[i:end]
		chunks = append(chunks, Chunk{
			ID:        len(chunks),
			Text:      strings.Join(window, " "),
			WordCount: len(window),
		})
	}
	return chunks
}
