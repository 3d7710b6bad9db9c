package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mind-engage/gearscore/internal/affixdb"
	"github.com/mind-engage/gearscore/internal/logger"
)

// GeminiClient calls the generateContent endpoint of the Gemini API.
type GeminiClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration // first retry delay, doubled per attempt
	HTTPClient *http.Client
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
		APIKey:     apiKey,
		Model:      model,
		Timeout:    60 * time.Second,
		MaxRetries: 2,
		Backoff:    800 * time.Millisecond,
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

func (c *GeminiClient) ExtractDrop(ctx context.Context, r io.Reader, mimeType string) (DropExtraction, error) {
	img, err := io.ReadAll(r)
	if err != nil {
		return DropExtraction{}, fmt.Errorf("read image: %w", err)
	}
	if len(img) == 0 {
		return DropExtraction{}, fmt.Errorf("%w: empty image", ErrRecognition)
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(img)
	}
	text, err := c.generate(ctx, []part{
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(img)}},
		{Text: dropPrompt},
	})
	if err != nil {
		return DropExtraction{}, err
	}
	d, err := ParseDrop(text)
	if err != nil {
		logger.Warnf("[ocr] rejected drop record: %v", err)
		return DropExtraction{}, err
	}
	return d, nil
}

func (c *GeminiClient) ExtractAffixDB(ctx context.Context, raw string) (affixdb.DB, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty input text", ErrRecognition)
	}
	text, err := c.generate(ctx, []part{{Text: affixDBPrompt(affixdb.TemperTags, raw)}})
	if err != nil {
		return nil, err
	}
	db, err := ParseAffixDB(text)
	if err != nil {
		logger.Debugf("[ocr] model output: %s", text)
		return nil, err
	}
	return db, nil
}

func (c *GeminiClient) endpoint() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = "https://generativelanguage.googleapis.com/v1beta"
	}
	return base + "/models/" + c.Model + ":generateContent"
}

// generate sends one prompt and returns the first candidate's text. 429 and
// 5xx answers are retried with Retry-After or exponential backoff.
func (c *GeminiClient) generate(ctx context.Context, parts []part) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("%w: GOOGLE_API_KEY is not set", ErrRecognition)
	}
	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{{"role": "user", "parts": parts}},
		"generationConfig": map[string]any{
			"temperature":      0,
			"responseMimeType": "application/json",
		},
	})
	if err != nil {
		return "", err
	}

	httpc := c.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: c.Timeout}
	}
	maxRetries := max(c.MaxRetries, 0)
	url := c.endpoint()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt == 0 {
			logger.Debugf("[ocr] POST %s model=%s bytes=%d", url, c.Model, len(body))
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.APIKey)

		resp, err := httpc.Do(req)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRecognition, err)
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("%w: read response: %v", ErrRecognition, err)
		}

		if resp.StatusCode/100 == 2 {
			return candidateText(raw)
		}

		msg := strings.TrimSpace(gjson.GetBytes(raw, "error.message").String())
		if msg == "" {
			msg = resp.Status
		}
		lastErr = fmt.Errorf("%w: status=%d: %s", ErrRecognition, resp.StatusCode, msg)
		if !retryable(resp.StatusCode) || attempt == maxRetries {
			break
		}
		wait := c.retryDelay(attempt, resp.Header.Get("Retry-After"))
		logger.Warnf("[ocr] %v, retrying in %s", lastErr, wait)
		select {
		case <-ctx.Done():
			return "", errors.Join(lastErr, ctx.Err())
		case <-time.After(wait):
		}
	}
	return "", lastErr
}

func candidateText(raw []byte) (string, error) {
	if reason := gjson.GetBytes(raw, "promptFeedback.blockReason"); reason.Exists() {
		return "", fmt.Errorf("%w: prompt blocked: %s", ErrRecognition, reason.String())
	}
	var sb strings.Builder
	gjson.GetBytes(raw, "candidates.0.content.parts").ForEach(func(_, p gjson.Result) bool {
		sb.WriteString(p.Get("text").String())
		return true
	})
	text := strings.TrimSpace(sb.String())
	if text == "" {
		finish := gjson.GetBytes(raw, "candidates.0.finishReason").String()
		return "", fmt.Errorf("%w: empty candidate (finishReason=%q)", ErrRecognition, finish)
	}
	return text, nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// maxRetryDelay caps every wait, including server supplied Retry-After values.
const maxRetryDelay = 8 * time.Second

func (c *GeminiClient) retryDelay(attempt int, retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
		return min(time.Duration(secs)*time.Second, maxRetryDelay)
	}
	base := c.Backoff
	if base <= 0 {
		base = 800 * time.Millisecond
	}
	return min(base<<attempt, maxRetryDelay)
}
