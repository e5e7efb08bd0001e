package convert

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToText_Txt(t *testing.T) {
	text, err := ToText("notes.txt", []byte("Plain text survives conversion unchanged."))
	require.NoError(t, err)
	require.Equal(t, "Plain text survives conversion unchanged.", text)
}

func TestToText_TxtLatin1Fallback(t *testing.T) {
	// 0xE9 is é in latin-1 but invalid UTF-8 on its own.
	data := []byte("caf\xe9 culture is part of wellness")
	text, err := ToText("cafe.txt", data)
	require.NoError(t, err)
	require.Contains(t, text, "café")
}

func TestToText_UnsupportedExtension(t *testing.T) {
	_, err := ToText("image.png", []byte("not really an image but long enough"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestToText_LegacyDocRejected(t *testing.T) {
	_, err := ToText("report.doc", []byte("legacy binary word payload data"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestToText_FileTooLarge(t *testing.T) {
	_, err := ToText("big.txt", make([]byte, MaxFileBytes+1))
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestToText_NearEmptyContent(t *testing.T) {
	_, err := ToText("empty.txt", []byte("   x    "))
	require.ErrorIs(t, err, ErrEmptyContent)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestToText_Docx(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph of the document.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph follows.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := ToText("doc.docx", buildDocx(t, docXML))
	require.NoError(t, err)
	require.Contains(t, text, "First paragraph of the document.")
	require.Contains(t, text, "Second paragraph follows.")

	// Paragraphs become separate lines.
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 2)
}

func TestToText_DocxMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ToText("broken.docx", buf.Bytes())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrEmptyContent, "decode errors stay distinct from content errors")
}

func TestToText_CorruptPdf(t *testing.T) {
	_, err := ToText("broken.pdf", []byte("definitely not a pdf stream"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnsupportedFormat)
}
