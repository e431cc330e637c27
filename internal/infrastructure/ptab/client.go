package ptab

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/turtacn/KeyIP-Continuity/internal/domain/proceeding"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/upstream"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

const (
	proceedingsPath = "/proceedings"
	documentsPath   = "/documents"
	downloadPath    = "/documents/%s/download"

	proceedingsPageSize = "1000"
	documentsPageSize   = "500"

	contentTypePDF    = "application/pdf"
	contentTypeBinary = "application/octet-stream"
)

// Client talks to the proceedings registry.  It satisfies proceeding.Finder
// and proceeding.DocumentLister.
type Client struct {
	http   *upstream.Client
	logger logging.Logger
}

var (
	_ proceeding.Finder         = (*Client)(nil)
	_ proceeding.DocumentLister = (*Client)(nil)
)

// NewClient wraps an upstream client configured for the proceedings registry.
func NewClient(hc *upstream.Client, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{http: hc, logger: logger}
}

// FindProceedings queries one field.  A 404 means no proceedings and is not
// an error.
func (c *Client) FindProceedings(ctx context.Context, field proceeding.Field, value string) ([]proceeding.Proceeding, error) {
	value = strings.TrimSpace(value)
	if field == "" || value == "" {
		return nil, errors.InvalidParam("proceedings query needs a field and a value")
	}

	var resp proceedingsResponse
	_, err := c.http.DoJSON(ctx, upstream.Request{
		Path:     proceedingsPath,
		Query:    url.Values{string(field): {value}, "recordTotalQuantity": {proceedingsPageSize}},
		Endpoint: "proceedings",
	}, &resp)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if resp.Results == nil {
		return nil, errors.Malformed("proceedings response is missing results").
			WithDetail(fmt.Sprintf("%s=%s", field, value))
	}

	out := make([]proceeding.Proceeding, 0, len(*resp.Results))
	for _, r := range *resp.Results {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// ListDocuments returns the docket of one proceeding in registry order.
func (c *Client) ListDocuments(ctx context.Context, proceedingNumber string) ([]proceeding.Document, error) {
	number := strings.TrimSpace(proceedingNumber)
	if number == "" {
		return nil, errors.InvalidParam("proceeding number is required")
	}

	var resp documentsResponse
	_, err := c.http.DoJSON(ctx, upstream.Request{
		Path: documentsPath,
		Query: url.Values{
			string(proceeding.FieldProceedingNumber): {number},
			"recordTotalQuantity":                    {documentsPageSize},
		},
		Endpoint: "documents",
	}, &resp)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.New(errors.ErrCodeProceedingNotFound, "no documents for proceeding "+number)
		}
		return nil, err
	}
	if resp.Results == nil {
		return nil, errors.Malformed("documents response is missing results").WithDetail(number)
	}

	out := make([]proceeding.Document, 0, len(*resp.Results))
	for _, r := range *resp.Results {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Download
// ─────────────────────────────────────────────────────────────────────────────

// Download is an open document stream.  The caller must close Body.
type Download struct {
	Body          io.ReadCloser
	Filename      string
	ContentType   string
	ContentLength int64
}

// Disposition renders the inline Content-Disposition header for d.
func (d *Download) Disposition() string {
	return mime.FormatMediaType("inline", map[string]string{"filename": d.Filename})
}

// Download opens the raw bytes of one document.  The body is streamed
// through unparsed.
func (c *Client) Download(ctx context.Context, documentID string) (*Download, error) {
	id := strings.TrimSpace(documentID)
	if id == "" {
		return nil, errors.InvalidParam("document identifier is required")
	}

	resp, err := c.http.Open(ctx, upstream.Request{
		Path:     fmt.Sprintf(downloadPath, url.PathEscape(id)),
		Accept:   contentTypeBinary,
		Endpoint: "download",
	})
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, errors.NotFound("document " + id + " not found")
	case resp.StatusCode >= 400:
		resp.Body.Close()
		return nil, errors.New(errors.ErrCodeExternalService,
			fmt.Sprintf("ptab: document download returned %d", resp.StatusCode))
	}

	filename := filenameFrom(resp.Header.Get("Content-Disposition"), id)
	d := &Download{
		Body:          resp.Body,
		Filename:      filename,
		ContentType:   contentTypeFor(filename, resp.Header.Get("Content-Type")),
		ContentLength: resp.ContentLength,
	}
	c.logger.WithContext(ctx).Debug("document download opened",
		logging.String("document_id", id),
		logging.String("filename", d.Filename),
		logging.String("content_type", d.ContentType))
	return d, nil
}

// filenameFrom extracts the filename parameter of a Content-Disposition
// header, falling back to fallback.
func filenameFrom(disposition, fallback string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := strings.TrimSpace(params["filename"]); name != "" {
				return path.Base(name)
			}
		}
	}
	return fallback
}

func contentTypeFor(filename, upstreamType string) string {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return contentTypePDF
	}
	if upstreamType != "" {
		return upstreamType
	}
	return contentTypeBinary
}

//Personal.AI order the ending
