package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rappahq/docex-be/internal/worker/domain"
)

// Request is the payload sent to the extraction backend
type Request struct {
	JobID       string `json:"job_id"`
	StoragePath string `json:"storage_path"`
	FileType    string `json:"file_type"`
	TemplateID  string `json:"template_id,omitempty"`
}

type fieldResponse struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type extractResponse struct {
	DocumentType string          `json:"document_type"`
	Confidence   float64         `json:"confidence"`
	Fields       []fieldResponse `json:"fields"`
}

// Client calls the extraction backend over HTTP
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new extraction backend client
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Extract submits a document for extraction and returns the parsed result.
// Network failures and 5xx responses are wrapped as retryable errors so the
// caller can requeue the job; 4xx responses are permanent.
func (c *Client) Extract(ctx context.Context, req *Request) (*domain.ExtractionResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extract request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build extract request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewRetryableError(fmt.Errorf("extraction request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, domain.NewRetryableError(fmt.Errorf("failed to read extraction response: %w", err))
	}

	c.logger.Debug("Extraction backend responded",
		slog.String("job_id", req.JobID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	switch {
	case resp.StatusCode >= 500:
		return nil, domain.NewRetryableError(fmt.Errorf("extraction backend error: status %d: %s", resp.StatusCode, respBody))
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("extraction rejected: status %d: %s", resp.StatusCode, respBody)
	}

	var parsed extractResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	result := &domain.ExtractionResult{
		DocumentType: parsed.DocumentType,
		Confidence:   parsed.Confidence,
		Fields:       make([]domain.ExtractedField, 0, len(parsed.Fields)),
	}
	for _, f := range parsed.Fields {
		result.Fields = append(result.Fields, domain.ExtractedField{
			Name:       f.Name,
			Value:      f.Value,
			Confidence: f.Confidence,
		})
	}

	return result, nil
}
