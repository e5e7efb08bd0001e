package convert

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

const (
	// MaxFileBytes is the inclusive upload size limit.
	MaxFileBytes = 10 << 20 // 10 MB
	// minContentChars guards against files that converted "successfully"
	// into nothing useful.
	minContentChars = 10
)

var (
	// ErrUnsupportedFormat marks an extension the converter cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrFileTooLarge marks an input above MaxFileBytes.
	ErrFileTooLarge = errors.New("file too large")
	// ErrEmptyContent marks a conversion that produced near-empty output.
	// This is a content problem with the file, not a decode failure.
	ErrEmptyContent = errors.New("file appears to be empty or corrupted")
)

// ToText converts an uploaded file into plain text by its extension.
// Supported: .pdf, .docx, .txt. Legacy .doc is rejected as unsupported.
func ToText(filename string, data []byte) (string, error) {
	if len(data) > MaxFileBytes {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, len(data), MaxFileBytes)
	}

	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		text, err = pdfToText(data)
	case ".docx":
		text, err = docxToText(data)
	case ".txt":
		text = txtToText(data)
	case ".doc":
		return "", fmt.Errorf("%w: legacy .doc, save as .docx and retry", ErrUnsupportedFormat)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", fmt.Errorf("convert %s failed: %w", filename, err)
	}

	if len(strings.TrimSpace(text)) < minContentChars {
		return "", fmt.Errorf("%s: %w", filename, ErrEmptyContent)
	}
	return text, nil
}

func pdfToText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	readerAt := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// txtToText decodes UTF-8, falling back to latin-1 when the bytes are not
// valid UTF-8.
func txtToText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
