// Package extract turns uploaded documents into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadableDocument is returned when a PDF cannot be parsed
var ErrUnreadableDocument = errors.New("unreadable document")

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether an upload should be treated as a PDF
func IsPDF(filename, contentType string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	if strings.HasPrefix(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	return bytes.HasPrefix(data, pdfMagic)
}

// Text extracts the text of an uploaded file. PDFs are parsed; anything
// else is decoded as UTF-8 with invalid sequences replaced.
func Text(filename, contentType string, data []byte) (string, error) {
	if IsPDF(filename, contentType, data) {
		return PDFText(data)
	}
	return DecodeUTF8(data), nil
}

// PDFText returns the plain text content of all pages of a PDF
func PDFText(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadableDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	return buf.String(), nil
}

// DecodeUTF8 converts raw bytes to a string, replacing invalid UTF-8
func DecodeUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}
