package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextFromBytesDOCX(t *testing.T) {
	doc := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>STATEMENT OF FACTS</w:t></w:r></w:p>
    <w:p><w:r><w:t>Vessel: MV Example</w:t></w:r></w:p>
    <w:p><w:r><w:t>Arrival 2024-01-01 08:00</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := TextFromBytes(context.Background(), doc, MimeDOCX, "sof.docx")
	if err != nil {
		t.Fatalf("TextFromBytes: %v", err)
	}
	for _, want := range []string{"STATEMENT OF FACTS", "MV Example", "Arrival 2024-01-01 08:00"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected extracted text to contain %q, got:\n%s", want, text)
		}
	}
	if !strings.Contains(text, "\n") {
		t.Fatalf("expected paragraph breaks preserved as newlines")
	}
}

func TestTextFromBytesUnsupported(t *testing.T) {
	_, err := TextFromBytes(context.Background(), []byte("plain text"), "text/plain", "notes.txt")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestNormalizeMimeTypeZipSniffsDocx(t *testing.T) {
	doc := buildDocx(t, "<w:document/>")
	if got := NormalizeMimeType("application/zip", "upload.bin", doc); got != MimeDOCX {
		t.Fatalf("expected docx mime from zip sniff, got %s", got)
	}
}

func TestNormalizeMimeTypeExtensionFallback(t *testing.T) {
	if got := NormalizeMimeType("application/octet-stream", "voyage.pdf", nil); got != MimePDF {
		t.Fatalf("expected pdf mime from extension, got %s", got)
	}
	if got := NormalizeMimeType("application/octet-stream", "voyage.docx", nil); got != MimeDOCX {
		t.Fatalf("expected docx mime from extension, got %s", got)
	}
}

func TestSupported(t *testing.T) {
	if !Supported(MimePDF, "a.pdf") {
		t.Fatalf("pdf should be supported")
	}
	if !Supported(MimeDOCX, "a.docx") {
		t.Fatalf("docx should be supported")
	}
	if Supported("text/plain", "a.txt") {
		t.Fatalf("plain text should not be supported")
	}
}
