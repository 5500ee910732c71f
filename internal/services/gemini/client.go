package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"scribe/internal/services"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultHTTPTimeout = 5 * time.Minute
	defaultRetryCount  = 5
	defaultRetryDelay  = time.Second
)

// Config captures the runtime settings required to talk to the API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	RetryCount     int
	RetryDelay     time.Duration
	TimeoutSeconds int
}

// Client issues generation requests and accumulates token usage for one run.
type Client struct {
	cfg        Config
	httpClient *http.Client
	sleeper    func(time.Duration)

	mu    sync.Mutex
	usage Usage
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			RetryCount:     cfg.RetryCount,
			RetryDelay:     cfg.RetryDelay,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		sleeper:    time.Sleep,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.RetryCount <= 0 {
		client.cfg.RetryCount = defaultRetryCount
	}
	if client.cfg.RetryDelay <= 0 {
		client.cfg.RetryDelay = defaultRetryDelay
	}
	return client
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// TranscribeAudio uploads the audio file and asks the model to transcribe
// it. Prompt tokens for audio-bearing calls are booked in the audio-input
// category.
func (c *Client) TranscribeAudio(ctx context.Context, audioPath, prompt string) (string, error) {
	if err := c.requireKey("transcribe"); err != nil {
		return "", err
	}
	file, err := c.uploadFile(ctx, audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrAPI, "gemini", "upload",
			fmt.Sprintf("audio upload failed for %s", filepath.Base(audioPath)), err)
	}

	request := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{FileData: &fileData{FileURI: file.URI, MimeType: file.MimeType}},
			},
		}},
	}
	text, usage, err := c.generateWithRetry(ctx, request)
	if err != nil {
		return "", services.Wrap(services.ErrAPI, "gemini", "transcribe", "audio transcription failed", err)
	}
	c.addUsage(Usage{AudioInputTokens: usage.PromptTokens, OutputTokens: usage.OutputTokens})
	return text, nil
}

// FormatText asks the model to reformat raw transcript text.
func (c *Client) FormatText(ctx context.Context, rawText, prompt string) (string, error) {
	return c.textOperation(ctx, "format", rawText, prompt)
}

// SummarizeText asks the model to summarize the given text.
func (c *Client) SummarizeText(ctx context.Context, text, prompt string) (string, error) {
	return c.textOperation(ctx, "summarize", text, prompt)
}

func (c *Client) textOperation(ctx context.Context, operation, text, prompt string) (string, error) {
	if err := c.requireKey(operation); err != nil {
		return "", err
	}
	request := generateRequest{
		Contents: []content{{
			Parts: []part{{Text: prompt + "\n\n" + text}},
		}},
	}
	result, usage, err := c.generateWithRetry(ctx, request)
	if err != nil {
		return "", services.Wrap(services.ErrAPI, "gemini", operation, "text "+operation+" failed", err)
	}
	c.addUsage(Usage{InputTokens: usage.PromptTokens, OutputTokens: usage.OutputTokens})
	return result, nil
}

// addUsage folds one call's counters into the run total. Concurrent segment
// transcriptions share this client, so the accumulator is lock-guarded.
func (c *Client) addUsage(usage Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage = c.usage.Add(usage)
}

// Usage returns the accumulated token usage for this run.
func (c *Client) Usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// CostSummary prices the accumulated usage for reporting.
func (c *Client) CostSummary() CostSummary {
	return c.Usage().Summarize(c.cfg.Model)
}

func (c *Client) requireKey(operation string) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrAPI, "gemini", operation,
			"API key not configured; set gemini.api_key or GEMINI_API_KEY", nil)
	}
	return nil
}

// statusError tags an HTTP failure with its status code so retry logic can
// classify it without inspecting message text.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gemini request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Is lets errors.Is match retryable status errors against the shared
// transient sentinel.
func (e *statusError) Is(target error) bool {
	return target == services.ErrTransient && e.transient()
}

func (e *statusError) transient() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

// isTransient reports whether the failure is worth retrying. The set is
// closed: tagged HTTP status errors and network timeouts, nothing else.
func isTransient(err error) bool {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.transient()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return false
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text     string    `json:"text,omitempty"`
	FileData *fileData `json:"file_data,omitempty"`
}

type fileData struct {
	FileURI  string `json:"file_uri"`
	MimeType string `json:"mime_type"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type callUsage struct {
	PromptTokens int64
	OutputTokens int64
}

func (c *Client) generateWithRetry(ctx context.Context, request generateRequest) (string, callUsage, error) {
	attempts := c.cfg.RetryCount
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// Backoff before attempt k (0-indexed) is delay * 2^(k-1).
			delay := c.cfg.RetryDelay << (attempt - 1)
			c.sleeper(delay)
			if ctx.Err() != nil {
				return "", callUsage{}, ctx.Err()
			}
		}
		text, usage, err := c.generateOnce(ctx, request)
		if err == nil {
			return text, usage, nil
		}
		if !isTransient(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", callUsage{}, err
		}
		lastErr = err
	}
	return "", callUsage{}, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) generateOnce(ctx context.Context, request generateRequest) (string, callUsage, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	encoded, err := json.Marshal(request)
	if err != nil {
		return "", callUsage{}, fmt.Errorf("gemini request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", callUsage{}, fmt.Errorf("gemini request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", callUsage{}, fmt.Errorf("gemini request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", callUsage{}, fmt.Errorf("gemini request: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", callUsage{}, &statusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", callUsage{}, fmt.Errorf("gemini request: decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", callUsage{}, fmt.Errorf("gemini request: api error: %s", strings.TrimSpace(decoded.Error.Message))
	}

	usage := callUsage{
		PromptTokens: decoded.UsageMetadata.PromptTokenCount,
		OutputTokens: decoded.UsageMetadata.CandidatesTokenCount,
	}
	var builder strings.Builder
	for _, candidate := range decoded.Candidates {
		for _, p := range candidate.Content.Parts {
			builder.WriteString(p.Text)
		}
		break
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", usage, errors.New("gemini request: empty response text")
	}
	return text, usage, nil
}

type uploadedFile struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
}

type uploadResponse struct {
	File uploadedFile `json:"file"`
}

// uploadFile pushes the audio bytes to the file service and returns the
// reference a generation request can cite. Uploads are not retried; a
// transient failure here restarts the whole transcription attempt at a
// higher level if at all.
func (c *Client) uploadFile(ctx context.Context, path string) (uploadedFile, error) {
	var empty uploadedFile

	file, err := os.Open(path)
	if err != nil {
		return empty, fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return empty, fmt.Errorf("build upload metadata: %w", err)
	}
	meta := map[string]any{"file": map[string]any{"display_name": filepath.Base(path)}}
	if err := json.NewEncoder(metaPart).Encode(meta); err != nil {
		return empty, fmt.Errorf("encode upload metadata: %w", err)
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", mimeTypeFor(path))
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return empty, fmt.Errorf("build upload body: %w", err)
	}
	if _, err := io.Copy(mediaPart, file); err != nil {
		return empty, fmt.Errorf("read audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return empty, fmt.Errorf("finish upload body: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/upload/v1beta/files"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buffer)
	if err != nil {
		return empty, fmt.Errorf("new upload request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	req.Header.Set("X-Goog-Upload-Protocol", "multipart")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return empty, &statusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded uploadResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return empty, fmt.Errorf("decode upload response: %w", err)
	}
	if decoded.File.URI == "" {
		return empty, errors.New("upload response missing file uri")
	}
	if decoded.File.MimeType == "" {
		decoded.File.MimeType = mimeTypeFor(path)
	}
	return decoded.File, nil
}

var audioMimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
}

func mimeTypeFor(path string) string {
	if mime, ok := audioMimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "audio/mpeg"
}
