package extractor

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXExtract(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
    <w:p><w:r><w:t>Col A</w:t><w:tab/><w:t>Col B</w:t></w:r></w:p>
    <w:p><w:r><w:t></w:t></w:r></w:p>
    <w:p><w:r><w:t>Line one</w:t><w:br/><w:t>line two</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := DOCX{}.Extract(buildDOCX(t, doc))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "First paragraph\nCol A\tCol B\nLine one\nline two"
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestDOCXExtractNotAnArchive(t *testing.T) {
	if _, err := (DOCX{}).Extract([]byte("plain text pretending to be docx")); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestDOCXExtractCorruptDocumentXML(t *testing.T) {
	// Valid zip, truncated XML inside: must be a parse error, not a silent
	// partial result.
	raw := buildDOCX(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
    <w:p><w:r><w:t>Truncat`)

	_, err := DOCX{}.Extract(raw)
	if err == nil || !strings.Contains(err.Error(), "decode document.xml") {
		t.Fatalf("err = %v, want decode error", err)
	}
}

func TestDOCXExtractMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, _ := w.Create("word/styles.xml")
	f.Write([]byte("<styles/>"))
	w.Close()

	_, err := DOCX{}.Extract(buf.Bytes())
	if err == nil || !strings.Contains(err.Error(), "document.xml") {
		t.Fatalf("err = %v, want missing document.xml", err)
	}
}
