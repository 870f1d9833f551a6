package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextPlainPassthrough(t *testing.T) {
	got, err := Text([]byte("Senior Go Engineer.\nRemote."), "text/plain", "jd.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Senior Go Engineer") {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextDocx(t *testing.T) {
	docXML := `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body>` +
		`<w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	data := buildDocx(t, docXML)

	got, err := Text(data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "jd.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "First paragraph") || !strings.Contains(got, "Second paragraph") {
		t.Fatalf("missing paragraphs: %q", got)
	}
}

func TestTextDocxSniffedFromZipMime(t *testing.T) {
	data := buildDocx(t, `<w:document><w:body><w:p><w:t>Sniffed</w:t></w:p></w:body></w:document>`)
	got, err := Text(data, "application/zip", "upload.bin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Sniffed") {
		t.Fatalf("expected docx sniffing from zip contents, got %q", got)
	}
}

func TestTextPDFInvalid(t *testing.T) {
	if _, err := Text([]byte("%PDF-not really"), "application/pdf", "jd.pdf"); err == nil {
		t.Fatalf("expected error for corrupt pdf")
	}
}

func TestTextUnknownMimeFallsBackToText(t *testing.T) {
	got, err := Text([]byte("raw bytes"), "", "notes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "raw bytes" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}
