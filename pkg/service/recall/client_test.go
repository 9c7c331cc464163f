package recall_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/memora-app/memora/pkg/domain/types"
	"github.com/memora-app/memora/pkg/service/recall"
)

func newClient(t *testing.T, baseURL string) *recall.Client {
	t.Helper()
	client, err := recall.New(recall.Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
	})
	gt.NoError(t, err).Required()
	return client
}

func TestCreateBot(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.Value(t, r.URL.Path).Equal("/api/v1/bot")
		gotAuth = r.Header.Get("Authorization")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"bot-123"}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)

	botID, err := client.CreateBot(context.Background(), "https://zoom.us/j/9876", "Memora Notetaker")
	gt.NoError(t, err).Required()
	gt.Value(t, botID).Equal("bot-123")
	gt.Value(t, gotAuth).Equal("Token test-key")
	gt.Value(t, gotBody["meeting_url"]).Equal("https://zoom.us/j/9876")
	gt.Value(t, gotBody["bot_name"]).Equal("Memora Notetaker")
}

func TestCreateBotRequiresMeetingURL(t *testing.T) {
	client := newClient(t, "http://localhost:1")

	_, err := client.CreateBot(context.Background(), "", "Memora Notetaker")
	gt.Error(t, err)
}

func TestGetStatusMapsLatestCode(t *testing.T) {
	cases := []struct {
		name   string
		codes  []string
		expect types.BotStatus
	}{
		{"no changes yet", nil, types.BotStatusCreated},
		{"joining", []string{"ready", "joining_call"}, types.BotStatusJoining},
		{"waiting room", []string{"joining_call", "in_waiting_room"}, types.BotStatusWaitingRoom},
		{"recording", []string{"joining_call", "in_call_recording"}, types.BotStatusRecording},
		{"ended", []string{"in_call_recording", "call_ended"}, types.BotStatusEnded},
		{"recording available", []string{"call_ended", "done"}, types.BotStatusRecordingAvailable},
		{"failed", []string{"joining_call", "fatal"}, types.BotStatusFailed},
		{"unrecognized code", []string{"something_new"}, types.BotStatusUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gt.Value(t, r.URL.Path).Equal("/api/v1/bot/bot-1")

				changes := []map[string]string{}
				for _, code := range tc.codes {
					changes = append(changes, map[string]string{"code": code})
				}
				resp := map[string]any{"id": "bot-1", "status_changes": changes}
				w.Header().Set("Content-Type", "application/json")
				gt.NoError(t, json.NewEncoder(w).Encode(resp))
			}))
			defer srv.Close()

			client := newClient(t, srv.URL)

			status, err := client.GetStatus(context.Background(), "bot-1")
			gt.NoError(t, err).Required()
			gt.Value(t, status).Equal(tc.expect)
		})
	}
}

func TestStop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.Value(t, r.URL.Path).Equal("/api/v1/bot/bot-9/leave_call")
		called = true
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)

	gt.NoError(t, client.Stop(context.Background(), "bot-9"))
	gt.Value(t, called).Equal(true)
}

func TestRecordingURLPrefersAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "bot-1",
			"recordings": [{
				"media_shortcuts": {
					"audio_mixed": {"data": {"download_url": "https://media.example.com/audio.mp3"}},
					"video_mixed": {"data": {"download_url": "https://media.example.com/video.mp4"}}
				}
			}]
		}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)

	url, err := client.RecordingURL(context.Background(), "bot-1")
	gt.NoError(t, err).Required()
	gt.Value(t, url).Equal("https://media.example.com/audio.mp3")
}

func TestRecordingURLFallsBackToVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "bot-1",
			"recordings": [{
				"media_shortcuts": {
					"video_mixed": {"data": {"download_url": "https://media.example.com/video.mp4"}}
				}
			}]
		}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)

	url, err := client.RecordingURL(context.Background(), "bot-1")
	gt.NoError(t, err).Required()
	gt.Value(t, url).Equal("https://media.example.com/video.mp4")
}

func TestRecordingURLNoMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "bot-1", "recordings": []}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)

	_, err := client.RecordingURL(context.Background(), "bot-1")
	gt.Error(t, err)
}

func TestProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)

	_, err := client.GetStatus(context.Background(), "bot-1")
	gt.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	_, err := recall.New(recall.Config{APIKey: "k"})
	gt.Error(t, err)

	_, err = recall.New(recall.Config{BaseURL: "http://localhost"})
	gt.Error(t, err)
}
