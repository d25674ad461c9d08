package services

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	svc := NewFileExtractService()

	text, err := svc.ExtractText("notes.txt", []byte("line one\r\n\r\n\r\nline two\r\n"))
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if strings.Contains(text, "\r") {
		t.Error("carriage returns not normalized")
	}
	if strings.Contains(text, "\n\n\n") {
		t.Error("blank runs not collapsed")
	}
	if !strings.Contains(text, "line one") || !strings.Contains(text, "line two") {
		t.Errorf("content lost: %q", text)
	}
}

func TestExtractPlainTextEmpty(t *testing.T) {
	svc := NewFileExtractService()
	if _, err := svc.ExtractText("empty.txt", []byte("   \n  ")); err == nil {
		t.Error("expected error for blank file")
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	svc := NewFileExtractService()
	if _, err := svc.ExtractText("image.png", []byte{1, 2, 3}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestExtractDOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>Hello &amp; welcome</w:t></w:r></w:p><w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p></w:body></w:document>`))
	zw.Close()

	svc := NewFileExtractService()
	text, err := svc.ExtractText("doc.docx", buf.Bytes())
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if !strings.Contains(text, "Hello & welcome") {
		t.Errorf("entity decoding failed: %q", text)
	}
	if !strings.Contains(text, "Second paragraph") {
		t.Errorf("paragraph lost: %q", text)
	}
}

func TestExtractDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("other.xml")
	w.Write([]byte("<x/>"))
	zw.Close()

	svc := NewFileExtractService()
	if _, err := svc.ExtractText("doc.docx", buf.Bytes()); err == nil {
		t.Error("expected error when document.xml is absent")
	}
}

func TestStripDOCXMLTabs(t *testing.T) {
	got := stripDOCXML([]byte(`<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t></w:r></w:p>`))
	if !strings.Contains(got, "a\tb") {
		t.Errorf("tab not preserved: %q", got)
	}
}
