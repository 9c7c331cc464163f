package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/model"
	"github.com/memora-app/memora/pkg/domain/types"
	"github.com/memora-app/memora/pkg/usecase"
	"github.com/memora-app/memora/pkg/utils/errutil"
)

// maxMediaUploadSize bounds a single media upload request body
const maxMediaUploadSize = 512 << 20

// statusFor maps use case errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrContainerNotFound),
		errors.Is(err, usecase.ErrSourceNotFound):
		return http.StatusNotFound

	case errors.Is(err, usecase.ErrEmptyContent),
		errors.Is(err, usecase.ErrEmptyName),
		errors.Is(err, usecase.ErrEmptyMeetingURL),
		errors.Is(err, usecase.ErrEmptyQuery),
		errors.Is(err, usecase.ErrNotMediaSource),
		errors.Is(err, usecase.ErrNotCaptureBot):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrSearchUnavailable),
		errors.Is(err, usecase.ErrTranscriptionUnavailable),
		errors.Is(err, usecase.ErrCaptureUnavailable),
		errors.Is(err, usecase.ErrUploadUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body) //nolint:errcheck // header already committed
}

func containerIDParam(r *http.Request) model.ContainerID {
	return model.ContainerID(chi.URLParam(r, "containerID"))
}

func sourceIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "sourceID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid source ID", goerr.V("raw", raw))
	}
	return id, nil
}

type containerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func toContainerResponse(c *model.Container) containerResponse {
	return containerResponse{
		ID:        string(c.ID),
		Name:      c.Name,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

type sourceResponse struct {
	ID                  int64  `json:"id"`
	ContainerID         string `json:"container_id"`
	Kind                string `json:"kind"`
	Name                string `json:"name"`
	Platform            string `json:"platform,omitempty"`
	MeetingURL          string `json:"meeting_url,omitempty"`
	TranscriptionStatus string `json:"transcription_status"`
	TranscriptionError  string `json:"transcription_error,omitempty"`
}

func toSourceResponse(s *model.Source) sourceResponse {
	return sourceResponse{
		ID:                  s.ID,
		ContainerID:         string(s.ContainerID),
		Kind:                s.Kind.String(),
		Name:                s.Name,
		Platform:            s.Platform.String(),
		MeetingURL:          s.MeetingURL,
		TranscriptionStatus: s.TranscriptionStatus.Normalize().String(),
		TranscriptionError:  s.TranscriptionError,
	}
}

func (s *Server) createContainer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	container, err := s.uc.CreateContainer(r.Context(), req.Name)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	respondJSON(w, http.StatusCreated, toContainerResponse(container))
}

func (s *Server) listContainers(w http.ResponseWriter, r *http.Request) {
	containers, err := s.uc.ListContainers(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	resp := make([]containerResponse, len(containers))
	for i, c := range containers {
		resp[i] = toContainerResponse(c)
	}
	respondJSON(w, http.StatusOK, map[string]any{"containers": resp})
}

func (s *Server) getContainer(w http.ResponseWriter, r *http.Request) {
	container, err := s.uc.GetContainer(r.Context(), containerIDParam(r))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	respondJSON(w, http.StatusOK, toContainerResponse(container))
}

func (s *Server) deleteContainer(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.DeleteContainer(r.Context(), containerIDParam(r)); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.uc.ListSources(r.Context(), containerIDParam(r))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	resp := make([]sourceResponse, len(sources))
	for i, src := range sources {
		resp[i] = toSourceResponse(src)
	}
	respondJSON(w, http.StatusOK, map[string]any{"sources": resp})
}

func (s *Server) getSource(w http.ResponseWriter, r *http.Request) {
	id, err := sourceIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	source, err := s.uc.GetSource(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	respondJSON(w, http.StatusOK, toSourceResponse(source))
}

func (s *Server) ingestText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind    string `json:"kind"`
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	kind := types.SourceKind(req.Kind)
	source, err := s.uc.IngestText(r.Context(), containerIDParam(r), kind, req.Name, req.Content)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	// Indexing converges in the background
	respondJSON(w, http.StatusAccepted, toSourceResponse(source))
}

func (s *Server) ingestMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMediaUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid multipart body"), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "media file is required"), http.StatusBadRequest)
		return
	}
	defer file.Close() //nolint:errcheck // read-only file handle

	kind := types.SourceKind(r.FormValue("kind"))
	if kind == "" {
		kind = types.SourceKindUpload
	}
	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	source, err := s.uc.IngestMedia(r.Context(), containerIDParam(r), kind, name, header.Header.Get("Content-Type"), file)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	respondJSON(w, http.StatusAccepted, toSourceResponse(source))
}

func (s *Server) deleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := sourceIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	if err := s.uc.DeleteSource(r.Context(), id); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) retranscribe(w http.ResponseWriter, r *http.Request) {
	id, err := sourceIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	if err := s.uc.Retranscribe(r.Context(), id); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	topK := 0
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid top_k"), http.StatusBadRequest)
			return
		}
		topK = parsed
	}

	hits, err := s.uc.Search(r.Context(), containerIDParam(r), query, topK)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	type hitResponse struct {
		SourceID   int64   `json:"source_id"`
		SourceName string  `json:"source_name"`
		Kind       string  `json:"kind"`
		Position   int     `json:"position"`
		Text       string  `json:"text"`
		Score      float64 `json:"score"`
	}

	resp := make([]hitResponse, len(hits))
	for i, h := range hits {
		resp[i] = hitResponse{
			SourceID:   h.SourceID,
			SourceName: h.SourceName,
			Kind:       h.Kind.String(),
			Position:   h.Position,
			Text:       h.Text,
			Score:      h.Score,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"hits": resp})
}

func (s *Server) captureMeeting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContainerID string `json:"container_id"`
		MeetingURL  string `json:"meeting_url"`
		Name        string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	source, err := s.uc.CaptureLiveMeeting(r.Context(), model.ContainerID(req.ContainerID), req.MeetingURL, req.Name)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	respondJSON(w, http.StatusAccepted, toSourceResponse(source))
}

func (s *Server) captureStatus(w http.ResponseWriter, r *http.Request) {
	id, err := sourceIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	status, err := s.uc.CaptureStatus(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": status.String()})
}

func (s *Server) stopCapture(w http.ResponseWriter, r *http.Request) {
	id, err := sourceIDParam(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	if err := s.uc.StopCapture(r.Context(), id); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
