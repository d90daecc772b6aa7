package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chrispoponi/contractflowai-web-sub001/config"
	"github.com/chrispoponi/contractflowai-web-sub001/model"
)

// PageRenderer converts a document into page images (data URIs or URLs).
type PageRenderer interface {
	Render(ctx context.Context, doc *Object) ([]string, error)
}

// VisionExtractor extracts contract fields from page images.
type VisionExtractor interface {
	ExtractImages(ctx context.Context, images []string) (model.RawExtraction, error)
}

// ImageConverterResponse is returned by the PDF-to-image service.
type ImageConverterResponse struct {
	Images []string `json:"images"`
}

// VisionParserRequest is the body sent to the vision parser.
type VisionParserRequest struct {
	Images []string `json:"images"`
}

// ImageConverter posts the raw document bytes to the conversion service.
type ImageConverter struct {
	url        string
	httpClient *http.Client
}

var _ PageRenderer = (*ImageConverter)(nil)

func NewImageConverter(cfg *config.ParserConfig, httpClient *http.Client) *ImageConverter {
	return &ImageConverter{url: cfg.ImageConverterURL, httpClient: httpClient}
}

func (c *ImageConverter) Render(ctx context.Context, doc *Object) ([]string, error) {
	if c.url == "" {
		return nil, fmt.Errorf("image converter: %w", ErrNotConfigured)
	}

	raw, err := postBody(ctx, c.httpClient, c.url, doc.ContentType, doc.Data, "")
	if err != nil {
		return nil, fmt.Errorf("image converter: %w", err)
	}

	var resp ImageConverterResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("image converter: failed to parse response: %w", err)
	}
	return resp.Images, nil
}

// VisionParser calls the image-based extraction service.
type VisionParser struct {
	url        string
	token      string
	httpClient *http.Client
}

var _ VisionExtractor = (*VisionParser)(nil)

func NewVisionParser(cfg *config.ParserConfig, httpClient *http.Client) *VisionParser {
	return &VisionParser{url: cfg.VisionURL, token: cfg.VisionToken, httpClient: httpClient}
}

func (p *VisionParser) ExtractImages(ctx context.Context, images []string) (model.RawExtraction, error) {
	if p.url == "" {
		return nil, fmt.Errorf("vision parser: %w", ErrNotConfigured)
	}

	var result model.RawExtraction
	if err := postJSON(ctx, p.httpClient, p.url, VisionParserRequest{Images: images}, p.token, &result); err != nil {
		return nil, fmt.Errorf("vision parser: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("vision parser: empty response")
	}

	return result, nil
}

// DataURI wraps a document as a single inline image, the fallback when page
// conversion is unavailable.
func DataURI(doc *Object) string {
	return "data:" + doc.ContentType + ";base64," + base64.StdEncoding.EncodeToString(doc.Data)
}
