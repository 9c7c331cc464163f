package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/interfaces"
	"github.com/memora-app/memora/pkg/domain/types"
	"github.com/memora-app/memora/pkg/utils/safe"
)

const defaultTimeout = 30 * time.Second

// Client is a REST client to the meeting-bot provider. The bot joins a live
// call, records it, and exposes a poll-only status feed; this client only
// observes that lifecycle.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ interfaces.BotProvider = &Client{}

// Config holds bot provider settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// New creates a bot provider client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, goerr.New("bot provider base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, goerr.New("bot provider API key is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type mediaRef struct {
	Data struct {
		DownloadURL string `json:"download_url"`
	} `json:"data"`
}

type botResponse struct {
	ID            string `json:"id"`
	StatusChanges []struct {
		Code      string `json:"code"`
		CreatedAt string `json:"created_at"`
	} `json:"status_changes"`
	Recordings []struct {
		MediaShortcuts struct {
			AudioMixed *mediaRef `json:"audio_mixed"`
			VideoMixed *mediaRef `json:"video_mixed"`
		} `json:"media_shortcuts"`
	} `json:"recordings"`
}

// CreateBot asks the provider to join the meeting and returns the bot ID.
func (c *Client) CreateBot(ctx context.Context, meetingURL, displayName string) (string, error) {
	if meetingURL == "" {
		return "", goerr.New("meeting URL is required")
	}

	body := map[string]any{
		"meeting_url": meetingURL,
		"bot_name":    displayName,
	}

	var created botResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/v1/bot", body, &created); err != nil {
		return "", goerr.Wrap(err, "failed to create bot", goerr.V("meeting_url", meetingURL))
	}
	if created.ID == "" {
		return "", goerr.New("bot provider returned no bot ID")
	}

	return created.ID, nil
}

// GetStatus returns the bot's current observed state, mapped from the
// provider's status codes.
func (c *Client) GetStatus(ctx context.Context, botID string) (types.BotStatus, error) {
	bot, err := c.getBot(ctx, botID)
	if err != nil {
		return types.BotStatusUnknown, err
	}

	if len(bot.StatusChanges) == 0 {
		return types.BotStatusCreated, nil
	}

	latest := bot.StatusChanges[len(bot.StatusChanges)-1].Code
	return mapStatusCode(latest), nil
}

// Stop makes the bot leave the call. The provider keeps post-processing the
// recording; this does not discard it.
func (c *Client) Stop(ctx context.Context, botID string) error {
	url := fmt.Sprintf("%s/api/v1/bot/%s/leave_call", c.baseURL, botID)
	if err := c.doJSON(ctx, http.MethodPost, url, nil, nil); err != nil {
		return goerr.Wrap(err, "failed to stop bot", goerr.V("bot_id", botID))
	}
	return nil
}

// RecordingURL returns a retrievable URL for the bot's recording, preferring
// an audio track and falling back to video. Only valid once recordings are
// available.
func (c *Client) RecordingURL(ctx context.Context, botID string) (string, error) {
	bot, err := c.getBot(ctx, botID)
	if err != nil {
		return "", err
	}

	for _, rec := range bot.Recordings {
		if audio := rec.MediaShortcuts.AudioMixed; audio != nil && audio.Data.DownloadURL != "" {
			return audio.Data.DownloadURL, nil
		}
	}
	for _, rec := range bot.Recordings {
		if video := rec.MediaShortcuts.VideoMixed; video != nil && video.Data.DownloadURL != "" {
			return video.Data.DownloadURL, nil
		}
	}

	return "", goerr.New("bot has no retrievable recording media", goerr.V("bot_id", botID))
}

func (c *Client) getBot(ctx context.Context, botID string) (*botResponse, error) {
	if botID == "" {
		return nil, goerr.New("bot ID is required")
	}

	var bot botResponse
	url := fmt.Sprintf("%s/api/v1/bot/%s", c.baseURL, botID)
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &bot); err != nil {
		return nil, goerr.Wrap(err, "failed to get bot", goerr.V("bot_id", botID))
	}

	return &bot, nil
}

func mapStatusCode(code string) types.BotStatus {
	switch code {
	case "ready", "created":
		return types.BotStatusCreated
	case "joining_call", "in_call_not_recording":
		return types.BotStatusJoining
	case "in_waiting_room":
		return types.BotStatusWaitingRoom
	case "in_call_recording", "recording":
		return types.BotStatusRecording
	case "call_ended":
		return types.BotStatusEnded
	case "done", "media_expired":
		return types.BotStatusRecordingAvailable
	case "fatal", "error":
		return types.BotStatusFailed
	default:
		return types.BotStatusUnknown
	}
}

func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal request body")
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return goerr.Wrap(err, "failed to create request", goerr.V("url", url))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "request failed", goerr.V("method", method), goerr.V("url", url))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return goerr.New("unexpected response status",
			goerr.V("method", method),
			goerr.V("url", url),
			goerr.V("status", resp.Status),
		)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return goerr.Wrap(err, "failed to decode response", goerr.V("url", url))
		}
	}

	return nil
}
