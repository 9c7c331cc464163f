package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/interfaces"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/utils/safe"
)

const (
	defaultBaseURL = "https://api.deepgram.com"
	defaultModel   = "nova-2"

	// Transcription latency is proportional to media duration; the HTTP
	// client carries a generous ceiling and the caller's context enforces
	// the media-proportional deadline.
	defaultTimeout = 10 * time.Minute
)

// Client is a REST client to a Deepgram-compatible speech-to-text API. The
// provider-specific response shape never leaves this package: Transcribe
// returns a provider-neutral result with per-utterance speaker labels.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ interfaces.SpeechToText = &Client{}

// Config holds speech-to-text provider settings
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// New creates a speech-to-text client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, goerr.New("speech-to-text API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	sttModel := cfg.Model
	if sttModel == "" {
		sttModel = defaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      sttModel,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type listenResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
		} `json:"channels"`
		Utterances []struct {
			Start      float64 `json:"start"`
			End        float64 `json:"end"`
			Transcript string  `json:"transcript"`
			Speaker    int     `json:"speaker"`
		} `json:"utterances"`
	} `json:"results"`
}

// Transcribe submits the media URL for transcription and normalizes the
// response. The call blocks until the provider finishes; pass a context with
// a deadline proportional to the media duration.
func (c *Client) Transcribe(ctx context.Context, audioURL string, opts interfaces.TranscribeOptions) (*interfaces.TranscribeResult, error) {
	if audioURL == "" {
		return nil, goerr.New("audio URL is required")
	}

	query := url.Values{}
	query.Set("model", c.model)
	query.Set("utterances", "true")
	query.Set("smart_format", "true")
	if opts.Diarize {
		query.Set("diarize", "true")
	}
	if opts.LanguageCode != "" {
		query.Set("language", opts.LanguageCode)
	} else {
		query.Set("detect_language", "true")
	}

	payload, err := json.Marshal(map[string]string{"url": audioURL})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal transcription request")
	}

	endpoint := fmt.Sprintf("%s/v1/listen?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create transcription request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "transcription request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("transcription provider returned error",
			goerr.V("status", resp.Status),
		)
	}

	var parsed listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to decode transcription response")
	}

	result := &interfaces.TranscribeResult{
		DurationSec: parsed.Metadata.Duration,
	}
	if len(parsed.Results.Channels) > 0 {
		result.DetectedLanguage = parsed.Results.Channels[0].DetectedLanguage
	}

	for _, u := range parsed.Results.Utterances {
		result.Utterances = append(result.Utterances, model.Utterance{
			Speaker:  fmt.Sprintf("Speaker %d", u.Speaker+1),
			Text:     u.Transcript,
			StartSec: u.Start,
			EndSec:   u.End,
		})
	}

	return result, nil
}
