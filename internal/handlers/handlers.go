// Package handlers exposes the HTTP API. Handlers validate input, call
// one pipeline, and map the error taxonomy onto status codes; they hold
// no business logic of their own.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"sci-cast/internal/errs"
	"sci-cast/internal/mirror"
	"sci-cast/internal/models"
)

// Extractor turns uploaded document bytes into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename, mimeType string) (string, error)
}

// ScriptService generates and trims podcast scripts.
type ScriptService interface {
	Generate(ctx context.Context, extractedText, title, hostName, guestName, category string) (string, error)
	Trim(ctx context.Context, script string, targetLength int, title, hostName, guestName string) (string, error)
}

// Synthesizer converts scripts to audio and lists voices.
type Synthesizer interface {
	Synthesize(ctx context.Context, script, voiceID string) ([]byte, error)
	Voices(ctx context.Context) []models.Voice
	Healthy(ctx context.Context) bool
}

// CatalogService owns podcast listing and persistence.
type CatalogService interface {
	ListAll() ([]models.Podcast, error)
	Save(p models.Podcast) (models.Podcast, error)
}

// Mirror replicates local state to remote storage.
type Mirror interface {
	Configured() bool
	SyncAll(ctx context.Context) (mirror.Result, error)
	UploadAudio(ctx context.Context, name string) error
	UploadCatalog(ctx context.Context) error
	FetchRemoteCatalog(ctx context.Context) []models.Podcast
	AudioURL(name string) string
}

// Handlers carries the wired pipelines for every route.
type Handlers struct {
	extractor   Extractor
	scripts     ScriptService
	synth       Synthesizer
	catalog     CatalogService
	mirror      Mirror
	storage     *mirror.SupabaseStore
	baseURL     string
	audioDir    string
	cerebrasSet bool
}

// Config wires a Handlers value. Nil fields disable the routes that
// need them.
type Config struct {
	Extractor   Extractor
	Scripts     ScriptService
	Synth       Synthesizer
	Catalog     CatalogService
	Mirror      Mirror
	Storage     *mirror.SupabaseStore
	BaseURL     string
	AudioDir    string
	CerebrasSet bool
}

// New builds the Handlers.
func New(cfg Config) *Handlers {
	return &Handlers{
		extractor:   cfg.Extractor,
		scripts:     cfg.Scripts,
		synth:       cfg.Synth,
		catalog:     cfg.Catalog,
		mirror:      cfg.Mirror,
		storage:     cfg.Storage,
		baseURL:     cfg.BaseURL,
		audioDir:    cfg.AudioDir,
		cerebrasSet: cfg.CerebrasSet,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto status codes: validation 400,
// permission 401, not-found 404, provider and everything else 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *errs.ValidationError
		pe *errs.PermissionError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Msg})
	case errors.As(err, &pe):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": pe.Msg})
	case errs.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
