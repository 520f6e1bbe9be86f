package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/goliatone/go-cropadvice/pkg/contract"
	"github.com/goliatone/go-cropadvice/pkg/model"
)

const (
	defaultTimeout          = 60 * time.Second
	defaultMaxResponseBytes = 1 << 20
	defaultUserAgent        = "go-cropadvice"
	statusBodyPreview       = 512
)

// ErrResponseTooLarge is returned when the engine response exceeds the
// configured cap.
var ErrResponseTooLarge = errors.New("classifier: response too large")

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient swaps the underlying *http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout bounds each Classify call. Zero disables the bound; the
// caller's context still applies.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxResponseBytes caps how much of the response body is read.
func WithMaxResponseBytes(n int64) HTTPOption {
	return func(c *HTTPClient) {
		if n > 0 {
			c.maxResponseBytes = n
		}
	}
}

// WithContract validates every decoded response before conversion.
func WithContract(validator ResponseValidator) HTTPOption {
	return func(c *HTTPClient) {
		c.validator = validator
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) HTTPOption {
	return func(c *HTTPClient) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// HTTPClient posts images to the engine's predict endpoint as
// multipart/form-data with "crop" and "file" fields.
type HTTPClient struct {
	predictURL       string
	client           *http.Client
	timeout          time.Duration
	maxResponseBytes int64
	validator        ResponseValidator
	userAgent        string
}

var _ Classifier = (*HTTPClient)(nil)

// NewHTTPClient targets the engine at endpoint, e.g. "http://localhost:8000".
func NewHTTPClient(endpoint string, options ...HTTPOption) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return nil, fmt.Errorf("classifier: parse endpoint: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("classifier: endpoint %q must use http or https", endpoint)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("classifier: endpoint %q has no host", endpoint)
	}

	c := &HTTPClient{
		predictURL:       base.JoinPath(contract.PredictPath).String(),
		client:           http.DefaultClient,
		timeout:          defaultTimeout,
		maxResponseBytes: defaultMaxResponseBytes,
		userAgent:        defaultUserAgent,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// PredictURL reports the resolved predict endpoint.
func (c *HTTPClient) PredictURL() string {
	return c.predictURL
}

// Classify uploads the image and decodes the engine's JSON response.
func (c *HTTPClient) Classify(ctx context.Context, req Request) (model.ClassificationResult, error) {
	if err := validateRequest(req); err != nil {
		return model.ClassificationResult{}, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, contentType, err := encodeForm(req)
	if err != nil {
		return model.ClassificationResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.predictURL, body)
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("classifier: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("classifier: post predict: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("classifier: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.ClassificationResult{}, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       preview(payload),
		}
	}
	if int64(len(payload)) > c.maxResponseBytes {
		return model.ClassificationResult{}, fmt.Errorf("%w: exceeds %s", ErrResponseTooLarge, humanize.IBytes(uint64(c.maxResponseBytes)))
	}

	return c.decode(payload)
}

func (c *HTTPClient) decode(payload []byte) (model.ClassificationResult, error) {
	if c.validator != nil {
		var raw any
		if err := json.Unmarshal(payload, &raw); err != nil {
			return model.ClassificationResult{}, fmt.Errorf("classifier: decode response: %w", err)
		}
		if err := c.validator.ValidateResponse(raw); err != nil {
			return model.ClassificationResult{}, fmt.Errorf("classifier: %w", err)
		}
	}

	var result model.ClassificationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("classifier: decode response: %w", err)
	}
	return result, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeForm(req Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("crop", model.NormalizeCropName(req.Crop)); err != nil {
		return nil, "", fmt.Errorf("classifier: write crop field: %w", err)
	}

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = "image"
	}
	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("classifier: create file part: %w", err)
	}
	if _, err := io.Copy(part, req.Image); err != nil {
		return nil, "", fmt.Errorf("classifier: copy image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("classifier: close form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func preview(payload []byte) string {
	if len(payload) > statusBodyPreview {
		payload = payload[:statusBodyPreview]
	}
	return strings.TrimSpace(string(payload))
}
