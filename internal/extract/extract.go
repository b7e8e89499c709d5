// Package extract turns uploaded files into plain text and writes filled
// copies of DOCX templates.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither DOCX, PDF nor text.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrInvalidDocument is returned when a file claims a format but cannot be read as one.
	ErrInvalidDocument = errors.New("invalid document")
)

// Format is the document family used to pick an extractor.
type Format string

const (
	FormatUnknown Format = ""
	FormatDOCX    Format = "docx"
	FormatPDF     Format = "pdf"
	FormatText    Format = "text"
)

const (
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPDF  = "application/pdf"
)

// Detect resolves the format from the content type, falling back to the
// file extension for generic types such as application/octet-stream.
func Detect(contentType, filename string) Format {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch {
	case mt == MIMEDOCX:
		return FormatDOCX
	case mt == MIMEPDF:
		return FormatPDF
	case strings.HasPrefix(mt, "text/"):
		return FormatText
	}

	switch strings.ToLower(path.Ext(filename)) {
	case ".docx":
		return FormatDOCX
	case ".pdf":
		return FormatPDF
	case ".txt", ".md", ".text":
		return FormatText
	}
	return FormatUnknown
}

// Extract returns the plain text of a document. Line endings are normalized
// to "\n" and invalid UTF-8 is dropped.
func Extract(r io.ReaderAt, size int64, contentType, filename string) (string, error) {
	var (
		text string
		err  error
	)
	switch Detect(contentType, filename) {
	case FormatDOCX:
		text, err = docxText(r, size)
	case FormatPDF:
		text, err = pdfText(r, size)
	case FormatText:
		var b []byte
		b, err = io.ReadAll(io.NewSectionReader(r, 0, size))
		text = string(b)
	default:
		return "", fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, filename, contentType)
	}
	if err != nil {
		return "", err
	}
	return normalize(text), nil
}

func normalize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func pdfText(r io.ReaderAt, size int64) (text string, err error) {
	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("%w: pdf: %v", ErrInvalidDocument, p)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrInvalidDocument, err)
	}
	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf text: %v", ErrInvalidDocument, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}
