package adapters

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"doc-narrator-api/config"
)

func TestDoclingExtractor_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1alpha/convert/file" {
			t.Fatal("Unexpected path:", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal("Failed to parse the multipart form:", err)
		}
		if got := r.FormValue("to_formats"); got != "md" {
			t.Fatal("Expected markdown output to be requested, got", got)
		}

		file, header, err := r.FormFile("files")
		if err != nil {
			t.Fatal("Missing the document part:", err)
		}
		defer func() {
			_ = file.Close()
		}()
		if header.Filename != "paper.pdf" {
			t.Fatal("Unexpected filename:", header.Filename)
		}
		content, err := io.ReadAll(file)
		if err != nil {
			t.Fatal("Failed to read the document part:", err)
		}
		if string(content) != "%PDF-1.7 fake document" {
			t.Fatal("Unexpected document content")
		}

		_, _ = w.Write([]byte(`{"document":{"md_content":"# Converted\n\nBody."},"status":"success"}`))
	}))
	defer server.Close()

	extractor := NewDoclingExtractor(NewContentFetcher(NewZerologWrapper()),
		&config.DoclingConfig{ApiUrl: server.URL}, NewZerologWrapper())

	text, err := extractor.Extract(context.Background(), "paper.pdf",
		strings.NewReader("%PDF-1.7 fake document"))
	if err != nil {
		t.Fatal("Failed to extract:", err)
	}
	if text != "# Converted\n\nBody." {
		t.Fatal("Unexpected extracted text:", text)
	}
}

func TestDoclingExtractor_Extract_FailedConversion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"document":{"md_content":""},"status":"failure"}`))
	}))
	defer server.Close()

	extractor := NewDoclingExtractor(NewContentFetcher(NewZerologWrapper()),
		&config.DoclingConfig{ApiUrl: server.URL}, NewZerologWrapper())

	_, err := extractor.Extract(context.Background(), "paper.pdf", strings.NewReader("%PDF"))
	if err == nil {
		t.Fatal("Expected an error for a failed conversion")
	}
	if !strings.Contains(err.Error(), "failure") {
		t.Fatal("Expected the conversion status in the error, got", err)
	}
}
