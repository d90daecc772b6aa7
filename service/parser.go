package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/chrispoponi/contractflowai-web-sub001/config"
	"github.com/chrispoponi/contractflowai-web-sub001/model"
)

// Extractor turns a document into a raw extraction.
type Extractor interface {
	Extract(ctx context.Context, doc *Object) (model.RawExtraction, error)
}

// PrimaryParserRequest is the body sent to the structured-extraction service.
type PrimaryParserRequest struct {
	DocumentBase64 string `json:"document_base64"`
	MimeType       string `json:"mime_type"`
}

// PrimaryParser calls the preferred structured-extraction service.
type PrimaryParser struct {
	url        string
	token      string
	httpClient *http.Client
}

var _ Extractor = (*PrimaryParser)(nil)

func NewPrimaryParser(cfg *config.ParserConfig, httpClient *http.Client) *PrimaryParser {
	return &PrimaryParser{
		url:        cfg.PrimaryURL,
		token:      cfg.PrimaryToken,
		httpClient: httpClient,
	}
}

// Extract submits the base64-encoded document and returns whatever JSON object
// comes back.
func (p *PrimaryParser) Extract(ctx context.Context, doc *Object) (model.RawExtraction, error) {
	if p.url == "" {
		return nil, fmt.Errorf("primary parser: %w", ErrNotConfigured)
	}

	reqBody := PrimaryParserRequest{
		DocumentBase64: base64.StdEncoding.EncodeToString(doc.Data),
		MimeType:       doc.ContentType,
	}

	var result model.RawExtraction
	if err := postJSON(ctx, p.httpClient, p.url, reqBody, p.token, &result); err != nil {
		return nil, fmt.Errorf("primary parser: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("primary parser: empty response")
	}

	return result, nil
}
