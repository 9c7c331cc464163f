package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/memora-app/memora/pkg/domain/interfaces"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/domain/types"
	"github.com/memora-app/memora/pkg/repository/memory"
	"github.com/memora-app/memora/pkg/service/chunk"
	"github.com/memora-app/memora/pkg/service/embedding"
	"github.com/memora-app/memora/pkg/service/index"
	"github.com/memora-app/memora/pkg/usecase"
	"github.com/memora-app/memora/pkg/utils/async"
)

type fakeEmbedder struct {
	mu        sync.Mutex
	dimension int
	fail      bool
	calls     int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, goerr.Wrap(embedding.ErrProviderUnavailable, "provider down")
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, f.dimension)
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dimension }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeVector struct {
	mu     sync.Mutex
	points map[int64]model.Fragment
	hits   []*model.SearchHit
}

func newFakeVector() *fakeVector {
	return &fakeVector{points: make(map[int64]model.Fragment)}
}

func (f *fakeVector) EnsureCollection(ctx context.Context, containerID model.ContainerID) bool {
	return true
}

func (f *fakeVector) DeleteBySource(ctx context.Context, containerID model.ContainerID, sourceID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, frag := range f.points {
		if frag.SourceID == sourceID {
			delete(f.points, id)
		}
	}
	return nil
}

func (f *fakeVector) Upsert(ctx context.Context, containerID model.ContainerID, meta model.SourceMeta, fragments []model.Fragment, vectors [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, frag := range fragments {
		f.points[frag.PointID()] = frag
	}
	return nil
}

func (f *fakeVector) Search(ctx context.Context, containerID model.ContainerID, queryVector []float32, topK int) ([]*model.SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits, nil
}

func (f *fakeVector) DropCollection(ctx context.Context, containerID model.ContainerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = make(map[int64]model.Fragment)
	return nil
}

func (f *fakeVector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.points)
}

type fakeSTT struct {
	mu     sync.Mutex
	result *interfaces.TranscribeResult
	err    error
	calls  int
}

func (f *fakeSTT) Transcribe(ctx context.Context, audioURL string, opts interfaces.TranscribeOptions) (*interfaces.TranscribeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeBots struct {
	mu       sync.Mutex
	statuses map[string]types.BotStatus
	nextID   int
	stopped  []string
	recURL   string
	recErr   error
}

func newFakeBots() *fakeBots {
	return &fakeBots{
		statuses: make(map[string]types.BotStatus),
		recURL:   "https://media.example.com/rec.mp3",
	}
}

func (f *fakeBots) CreateBot(ctx context.Context, meetingURL, displayName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("bot-%d", f.nextID)
	f.statuses[id] = types.BotStatusJoining
	return id, nil
}

func (f *fakeBots) GetStatus(ctx context.Context, botID string) (types.BotStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.statuses[botID]
	if !ok {
		return types.BotStatusUnknown, errors.New("unknown bot")
	}
	return status, nil
}

func (f *fakeBots) Stop(ctx context.Context, botID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, botID)
	return nil
}

func (f *fakeBots) RecordingURL(ctx context.Context, botID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recErr != nil {
		return "", f.recErr
	}
	return f.recURL, nil
}

type fakeMedia struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: make(map[string][]byte)}
}

func (f *fakeMedia) Upload(ctx context.Context, objectName string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectName] = data
	return nil
}

func (f *fakeMedia) SignedURL(ctx context.Context, objectName string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[objectName]; !ok {
		return "", errors.New("object not found")
	}
	return "https://storage.example.com/" + objectName + "?signed", nil
}

type testEnv struct {
	uc      *usecase.UseCases
	repo    *memory.Memory
	vectors *fakeVector
	embed   *fakeEmbedder
	stt     *fakeSTT
	bots    *fakeBots
	media   *fakeMedia
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := memory.New()
	vectors := newFakeVector()
	embed := &fakeEmbedder{dimension: 4}
	stt := &fakeSTT{
		result: &interfaces.TranscribeResult{
			Utterances: []model.Utterance{
				{Speaker: "Speaker 1", Text: "Hello everyone.", StartSec: 0},
				{Speaker: "Speaker 2", Text: "Hi, let's get started.", StartSec: 3.5},
			},
			DurationSec:      120,
			DetectedLanguage: "en",
		},
	}
	bots := newFakeBots()
	media := newFakeMedia()

	coordinator, err := index.New(chunk.New(), embed, vectors)
	gt.NoError(t, err).Required()

	dispatcher, err := async.NewDispatcher(4)
	gt.NoError(t, err).Required()
	t.Cleanup(dispatcher.Release)

	uc := usecase.New(repo, coordinator, dispatcher,
		usecase.WithSpeechToText(stt),
		usecase.WithBotProvider(bots),
		usecase.WithMediaStorage(media),
	)

	return &testEnv{
		uc:      uc,
		repo:    repo,
		vectors: vectors,
		embed:   embed,
		stt:     stt,
		bots:    bots,
		media:   media,
	}
}

func (e *testEnv) newContainer(t *testing.T) *model.Container {
	t.Helper()
	container, err := e.uc.CreateContainer(context.Background(), "Test Container")
	gt.NoError(t, err).Required()
	return container
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestIngestText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	container := env.newContainer(t)

	source, err := env.uc.IngestText(ctx, container.ID, types.SourceKindText, "Planning notes", "The deadline is March 15. We ship after review.")
	gt.NoError(t, err).Required()
	gt.Value(t, source.Kind).Equal(types.SourceKindText)
	gt.Value(t, source.TranscriptionStatus).Equal(types.TranscriptionNone)

	// Indexing converges in the background
	waitFor(t, func() bool { return env.vectors.count() > 0 })

	got, err := env.uc.GetSource(ctx, source.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.RawContent).Equal("The deadline is March 15. We ship after review.")
}

func TestIngestTextValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	container := env.newContainer(t)

	_, err := env.uc.IngestText(ctx, container.ID, types.SourceKindText, "empty", "   ")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrEmptyContent)).True()

	_, err = env.uc.IngestText(ctx, model.NewContainerID(), types.SourceKindText, "orphan", "body")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrContainerNotFound)).True()

	_, err = env.uc.IngestText(ctx, container.ID, types.SourceKindMeeting, "wrong kind", "body")
	gt.Error(t, err)
}

func TestIngestMedia(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	container := env.newContainer(t)

	source, err := env.uc.IngestMedia(ctx, container.ID, types.SourceKindVoiceNote, "Memo", "audio/mpeg", strings.NewReader("fake-audio-bytes"))
	gt.NoError(t, err).Required()
	gt.String(t, source.FileRef).NotEqual("")

	// The pipeline runs in the background: transcript stored, status done,
	// content indexed.
	waitFor(t, func() bool {
		got, err := env.uc.GetSource(ctx, source.ID)
		return err == nil && got.TranscriptionStatus == types.TranscriptionDone
	})

	transcript, err := env.repo.Transcript().Get(ctx, source.ID)
	gt.NoError(t, err).Required()
	gt.String(t, transcript.Content).Contains("[00:00] Speaker 1: Hello everyone.")
	gt.Value(t, transcript.LanguageCode).Equal("en")
	gt.Array(t, transcript.Speakers).Length(2)

	waitFor(t, func() bool { return env.vectors.count() > 0 })
}

func TestTranscriptionFailureIsIsolated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	container := env.newContainer(t)

	source, err := env.uc.IngestMedia(ctx, container.ID, types.SourceKindMeeting, "Weekly sync", "audio/mpeg", strings.NewReader("bytes"))
	gt.NoError(t, err).Required()

	waitFor(t, func() bool {
		got, _ := env.uc.GetSource(ctx, source.ID)
		return got != nil && got.TranscriptionStatus == types.TranscriptionDone
	})
	waitFor(t, func() bool { return env.vectors.count() > 0 })
	indexedBefore := env.embed.callCount()

	// Keep the previous transcript around, then make the provider fail
	prior, err := env.repo.Transcript().Get(ctx, source.ID)
	gt.NoError(t, err).Required()

	env.stt.mu.Lock()
	env.stt.err = errors.New("deadline exceeded")
	env.stt.mu.Unlock()

	gt.NoError(t, env.uc.Retranscribe(ctx, source.ID))

	waitFor(t, func() bool {
		got, _ := env.uc.GetSource(ctx, source.ID)
		return got != nil && got.TranscriptionStatus == types.TranscriptionError
	})

	got, err := env.uc.GetSource(ctx, source.ID)
	gt.NoError(t, err).Required()
	gt.String(t, got.TranscriptionError).NotEqual("")

	// The stored transcript from the successful run is untouched
	kept, err := env.repo.Transcript().Get(ctx, source.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, kept.Content).Equal(prior.Content)

	// No indexing was triggered by the failed run
	gt.Value(t, env.embed.callCount()).Equal(indexedBefore)
}

func TestRetranscribeOverwrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	container := env.newContainer(t)

	source, err := env.uc.IngestMedia(ctx, container.ID, types.SourceKindMeeting, "Standup", "audio/mpeg", strings.NewReader("bytes"))
	gt.NoError(t, err).Required()

	waitFor(t, func() bool {
		got, _ := env.uc.GetSource(ctx, source.ID)
		return got != nil && got.TranscriptionStatus == types.TranscriptionDone
	})

	env.stt.mu.Lock()
	env.stt.result = &interfaces.TranscribeResult{
		Utterances: []model.Utterance{
			{Speaker: "Speaker 1", Text: "Second pass content.", StartSec: 0},
		},
		DurationSec:      60,
		DetectedLanguage: "en",
	}
	env.stt.mu.Unlock()

	gt.NoError(t, env.uc.Retranscribe(ctx, source.ID))

	// Retranscribe leaves the source in-flight before it returns, so a poller
	// reading it right away cannot see pending and trigger a second run.
	got, err := env.uc.GetSource(ctx, source.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.TranscriptionStatus).NotEqual(types.TranscriptionPending)

	waitFor(t, func() bool {
		transcript, err := env.repo.Transcript().Get(ctx, source.ID)
		return err == nil && strings.Contains(transcript.Content, "Second pass content.")
	})

	got, err = env.uc.GetSource(ctx, source.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.TranscriptionStatus).Equal(types.TranscriptionDone)
}

func TestCaptureLiveMeeting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	container := env.newContainer(t)

	source, err := env.uc.CaptureLiveMeeting(ctx, container.ID, "https://zoom.us/j/9876", "")
	gt.NoError(t, err).Required()
	gt.Value(t, source.Kind).Equal(types.SourceKindMeeting)
	gt.Value(t, source.Platform).Equal(types.PlatformZoom)
	gt.String(t, source.RecallBotID).NotEqual("")
	gt.Value(t, source.TranscriptionStatus).Equal(types.TranscriptionPending)

	status, err := env.uc.CaptureStatus(ctx, source.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, status).Equal(types.BotStatusJoining)

	gt.NoError(t, env.uc.StopCapture(ctx, source.ID))
	gt.Array(t, env.bots.stopped).Length(1)
}

func TestCaptureValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	container := env.newContainer(t)

	_, err := env.uc.CaptureLiveMeeting(ctx, container.ID, "  ", "name")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrEmptyMeetingURL)).True()

	_, err = env.uc.CaptureLiveMeeting(ctx, model.NewContainerID(), "https://zoom.us/j/1", "name")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrContainerNotFound)).True()
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	container := env.newContainer(t)

	env.vectors.hits = []*model.SearchHit{
		{SourceID: 1, SourceName: "Planning notes", Position: 0, Text: "The deadline is March 15.", Score: 0.92},
	}

	hits, err := env.uc.Search(ctx, container.ID, "when is the deadline", 0)
	gt.NoError(t, err).Required()
	gt.Array(t, hits).Length(1)
	gt.Value(t, hits[0].SourceName).Equal("Planning notes")

	_, err = env.uc.Search(ctx, container.ID, "   ", 5)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrEmptyQuery)).True()
}

func TestSearchDegradesWhenProviderDown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	container := env.newContainer(t)

	env.embed.mu.Lock()
	env.embed.fail = true
	env.embed.mu.Unlock()

	_, err := env.uc.Search(ctx, container.ID, "anything", 5)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrSearchUnavailable)).True()
}

func TestDeleteSourceEvictsVectors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	container := env.newContainer(t)

	source, err := env.uc.IngestText(ctx, container.ID, types.SourceKindText, "Note", "Short note body.")
	gt.NoError(t, err).Required()

	waitFor(t, func() bool { return env.vectors.count() > 0 })

	gt.NoError(t, env.uc.DeleteSource(ctx, source.ID))
	gt.Value(t, env.vectors.count()).Equal(0)

	_, err = env.uc.GetSource(ctx, source.ID)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrSourceNotFound)).True()
}

func TestDeleteContainerCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	container := env.newContainer(t)

	_, err := env.uc.IngestText(ctx, container.ID, types.SourceKindText, "Note A", "First body.")
	gt.NoError(t, err).Required()
	_, err = env.uc.IngestText(ctx, container.ID, types.SourceKindText, "Note B", "Second body.")
	gt.NoError(t, err).Required()

	waitFor(t, func() bool { return env.vectors.count() > 0 })

	gt.NoError(t, env.uc.DeleteContainer(ctx, container.ID))

	gt.Value(t, env.vectors.count()).Equal(0)

	_, err = env.uc.GetContainer(ctx, container.ID)
	gt.Error(t, err)

	sources, err := env.repo.Source().ListByContainer(ctx, container.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, sources).Length(0)
}

// finalizeFailRepo rejects the source update that marks transcription done,
// leaving every other write intact.
type finalizeFailRepo struct {
	interfaces.Repository
}

func (r *finalizeFailRepo) Source() interfaces.SourceRepository {
	return &finalizeFailSourceRepo{SourceRepository: r.Repository.Source()}
}

type finalizeFailSourceRepo struct {
	interfaces.SourceRepository
}

func (r *finalizeFailSourceRepo) Update(ctx context.Context, source *model.Source) (*model.Source, error) {
	if source.TranscriptionStatus == types.TranscriptionDone {
		return nil, goerr.New("write rejected")
	}
	return r.SourceRepository.Update(ctx, source)
}

func TestTranscriptionFinalizeFailureLandsOnSource(t *testing.T) {
	ctx := context.Background()

	repo := &finalizeFailRepo{Repository: memory.New()}
	vectors := newFakeVector()
	embed := &fakeEmbedder{dimension: 4}
	stt := &fakeSTT{
		result: &interfaces.TranscribeResult{
			Utterances: []model.Utterance{
				{Speaker: "Speaker 1", Text: "Hello everyone.", StartSec: 0},
			},
			DurationSec:      60,
			DetectedLanguage: "en",
		},
	}

	coordinator, err := index.New(chunk.New(), embed, vectors)
	gt.NoError(t, err).Required()

	dispatcher, err := async.NewDispatcher(4)
	gt.NoError(t, err).Required()
	t.Cleanup(dispatcher.Release)

	uc := usecase.New(repo, coordinator, dispatcher,
		usecase.WithSpeechToText(stt),
		usecase.WithMediaStorage(newFakeMedia()),
	)

	container, err := uc.CreateContainer(ctx, "Test Container")
	gt.NoError(t, err).Required()

	source, err := uc.IngestMedia(ctx, container.ID, types.SourceKindVoiceNote, "Memo", "audio/mpeg", strings.NewReader("fake-audio-bytes"))
	gt.NoError(t, err).Required()

	// The rejected finalize write must still land on the source as an error
	// status with a readable reason, never leave it parked in processing.
	waitFor(t, func() bool {
		got, err := uc.GetSource(ctx, source.ID)
		return err == nil && got.TranscriptionStatus == types.TranscriptionError
	})

	got, err := uc.GetSource(ctx, source.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.TranscriptionError).Equal("failed to finalize transcription")
}
