package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"doc-narrator-api/application/ports/outbound"
	"doc-narrator-api/config"
)

type doclingConvertResponse struct {
	Document struct {
		MdContent string `json:"md_content"`
	} `json:"document"`
	Status string `json:"status"`
}

type doclingExtractor struct {
	ContentFetcher
	logger        outbound.LoggerPort
	doclingConfig *config.DoclingConfig
}

// NewDoclingExtractor builds the client for the docling-serve document
// conversion service. OCR and layout analysis happen entirely on that side;
// this adapter only ships bytes and collects markdown.
func NewDoclingExtractor(contentFetcher ContentFetcher, doclingConfig *config.DoclingConfig, logger outbound.LoggerPort) outbound.DocumentExtractorPort {
	return &doclingExtractor{
		ContentFetcher: contentFetcher,
		logger:         logger,
		doclingConfig:  doclingConfig,
	}
}

func (d *doclingExtractor) Extract(ctx context.Context, filename string, document io.Reader) (string, error) {
	req, err := d.getRequest(ctx, filename, document)
	if err != nil {
		d.logger.Error(err, "Failed to construct the HTTP request for document conversion")
		return "", err
	}

	payload, err := d.FetchContent(req)
	if err != nil {
		return "", err
	}

	var converted doclingConvertResponse
	if err := json.Unmarshal(payload, &converted); err != nil {
		d.logger.Error(err, "Failed to unmarshal the conversion response")
		return "", err
	}
	if converted.Status != "" && converted.Status != "success" {
		return "", fmt.Errorf("document conversion finished with status %q", converted.Status)
	}

	return converted.Document.MdContent, nil
}

func (d *doclingExtractor) getRequest(ctx context.Context, filename string, document io.Reader) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, document); err != nil {
		return nil, err
	}
	if err := writer.WriteField("to_formats", "md"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.doclingConfig.ApiUrl+"/v1alpha/convert/file", &body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return req, nil
}
