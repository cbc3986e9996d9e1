// Package telephony provides the HTTP client for the call provider backing
// CATI interviews. The provider owns call records and recordings; this
// client only consumes its read contract.
package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/fieldscope/verity/pkg/formatting"
)

// Call is a provider call record.
type Call struct {
	ID              string    `json:"id"`
	SurveyRef       string    `json:"survey_ref"`
	Destination     string    `json:"destination"`
	RecordingRef    string    `json:"recording_ref,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds int       `json:"duration_seconds"`
}

// Recording is fetched call audio.
type Recording struct {
	Data        []byte
	ContentType string
}

// System defines the call provider contract consumed by the media resolver.
type System interface {
	GetCall(ctx context.Context, callID string) (*Call, error)
	ListCalls(ctx context.Context, surveyRef string) ([]Call, error)
	FetchRecording(ctx context.Context, callID string) (*Recording, error)
}

// Provider errors.
var (
	ErrCallNotFound      = errors.New("call not found")
	ErrRecordingNotFound = errors.New("recording not found")
	ErrRecordingTooLarge = errors.New("recording exceeds size limit")
)

type client struct {
	base    string
	apiKey  string
	maxSize int64
	http    *http.Client
	logger  *slog.Logger
}

// New creates a telephony client from the given configuration.
func New(cfg *Config, logger *slog.Logger) System {
	return &client{
		base:    cfg.BaseURL,
		apiKey:  cfg.APIKey,
		maxSize: cfg.MaxRecordingSizeBytes(),
		http:    &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger.With("system", "telephony"),
	}
}

func (c *client) GetCall(ctx context.Context, callID string) (*Call, error) {
	var call Call
	path := "/calls/" + url.PathEscape(callID)
	if err := c.getJSON(ctx, path, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

func (c *client) ListCalls(ctx context.Context, surveyRef string) ([]Call, error) {
	var calls []Call
	path := "/calls?survey=" + url.QueryEscape(surveyRef)
	if err := c.getJSON(ctx, path, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

func (c *client) FetchRecording(ctx context.Context, callID string) (*Recording, error) {
	path := "/calls/" + url.PathEscape(callID) + "/recording"

	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRecordingNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch recording %s: unexpected status %d", callID, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read recording %s: %w", callID, err)
	}
	if int64(len(data)) > c.maxSize {
		return nil, fmt.Errorf("recording %s over %s: %w",
			callID, formatting.FormatBytes(c.maxSize, 0), ErrRecordingTooLarge)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.logger.Debug("recording fetched",
		"call", callID,
		"size", formatting.FormatBytes(int64(len(data)), 1),
		"content_type", contentType,
	)
	return &Recording{Data: data, ContentType: contentType}, nil
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrCallNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("call provider %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode call provider response: %w", err)
	}
	return nil
}

func (c *client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build call provider request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call provider request %s: %w", path, err)
	}
	return resp, nil
}
