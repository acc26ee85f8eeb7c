// services/ocr.go - OCR.space document analysis client
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// TextExtractor extracts the text of an uploaded identity document.
// The verification gate treats any error as "service unavailable" and
// degrades to pending, so implementations must never block forever.
type TextExtractor interface {
	ExtractText(fileName, contentType string, data []byte) (string, error)
}

// OCRSpaceClient calls the OCR.space parse API with a hard request
// timeout. No database lock is ever held across a call.
type OCRSpaceClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool   `json:"IsErroredOnProcessing"`
	ErrorMessage          any    `json:"ErrorMessage"`
	OCRExitCode           int    `json:"OCRExitCode"`
	SearchablePDFURL      string `json:"SearchablePDFURL"`
}

// NewOCRSpaceClientFromEnv returns nil when OCRSPACE_API_KEY is unset;
// the gate then runs in degraded mode and leaves uploads pending.
func NewOCRSpaceClientFromEnv() *OCRSpaceClient {
	apiKey := os.Getenv("OCRSPACE_API_KEY")
	if apiKey == "" {
		return nil
	}
	endpoint := os.Getenv("OCRSPACE_ENDPOINT")
	if endpoint == "" {
		endpoint = "https://api.ocr.space/parse/image"
	}
	return &OCRSpaceClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *OCRSpaceClient) ExtractText(fileName, contentType string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.WriteField("apikey", c.apiKey); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d, body: %s", ErrServiceUnavailable, resp.StatusCode, string(raw))
	}

	var parsed ocrSpaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode ocr response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("ocr processing error: %v", parsed.ErrorMessage)
	}
	if len(parsed.ParsedResults) == 0 {
		return "", nil
	}
	return parsed.ParsedResults[0].ParsedText, nil
}
