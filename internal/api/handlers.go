package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/davitk/edureel/internal/models"
)

// RunStore is the progress-tracking surface the handlers need. Satisfied by
// *progress.Store; narrowed to an interface so handler tests can fake it.
type RunStore interface {
	Create(ctx context.Context, topic string) (*models.Run, error)
	SetStage(ctx context.Context, id uuid.UUID, stage models.RunStage) error
	Complete(ctx context.Context, id uuid.UUID, result *models.RunResult) error
	Fail(ctx context.Context, id uuid.UUID, runErr error) error
	Get(ctx context.Context, id uuid.UUID) (*models.Run, error)
}

// Runner executes one full generation. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, topic string, onStage func(models.RunStage)) (*models.RunResult, error)
}

// Speaker converts text to audio. Satisfied by *services.SpeechService.
type Speaker interface {
	Synthesize(ctx context.Context, text string) (json.RawMessage, error)
}

type Handler struct {
	store    RunStore
	pipeline Runner
	speech   Speaker

	// notFound reports whether a store error means "unknown run id" rather
	// than a store failure.
	notFound func(error) bool
}

func NewHandler(store RunStore, p Runner, speech Speaker, notFound func(error) bool) *Handler {
	return &Handler{
		store:    store,
		pipeline: p,
		speech:   speech,
		notFound: notFound,
	}
}

// CreateVideo handles POST /v1/videos. It registers the run, kicks off the
// pipeline in the background, and returns 202 immediately — generation takes
// minutes, not request-scoped seconds.
func (h *Handler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Topic == "" {
		respondError(w, http.StatusBadRequest, "Topic is required")
		return
	}

	run, err := h.store.Create(r.Context(), req.Topic)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create run")
		return
	}

	// Detach from the request context: the run outlives this request.
	go h.execute(context.Background(), run.ID, req.Topic)

	respondJSON(w, http.StatusAccepted, models.CreateVideoResponse{
		RunID:  run.ID,
		Status: run.Stage,
	})
}

func (h *Handler) execute(ctx context.Context, id uuid.UUID, topic string) {
	result, err := h.pipeline.Run(ctx, topic, func(stage models.RunStage) {
		if serr := h.store.SetStage(ctx, id, stage); serr != nil {
			log.Printf("[API] run %s: failed to record stage %s: %v", id, stage, serr)
		}
	})
	if err != nil {
		log.Printf("[API] run %s failed: %v", id, err)
		if serr := h.store.Fail(ctx, id, err); serr != nil {
			log.Printf("[API] run %s: failed to record failure: %v", id, serr)
		}
		return
	}

	if serr := h.store.Complete(ctx, id, result); serr != nil {
		log.Printf("[API] run %s: failed to record completion: %v", id, serr)
	}
}

// GetVideo handles GET /v1/videos/{id}
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	run, err := h.store.Get(r.Context(), id)
	if err != nil {
		if h.notFound != nil && h.notFound(err) {
			respondError(w, http.StatusNotFound, "Run not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to fetch run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// TextToSpeech handles POST /v1/text-to-speech. The provider's response is
// passed through verbatim (base64 audio payload included).
func (h *Handler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req models.SpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "Text is required")
		return
	}

	raw, err := h.speech.Synthesize(r.Context(), req.Text)
	if err != nil {
		log.Printf("[API] text-to-speech failed: %v", err)
		respondError(w, http.StatusBadGateway, "Speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
