package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sci-cast/internal/catalog"
	"sci-cast/internal/errs"
	"sci-cast/internal/middleware"
	"sci-cast/internal/models"
)

// ListPodcasts handles GET /api/podcasts: the seed record first, then
// every stored record.
func (h *Handlers) ListPodcasts(w http.ResponseWriter, r *http.Request) {
	podcasts, err := h.catalog.ListAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"podcasts": podcasts})
}

type savePodcastRequest struct {
	Title       string `json:"title"`
	Host        string `json:"host"`
	Category    string `json:"category"`
	Description string `json:"description"`
	AudioURL    string `json:"audioUrl"`
	Script      string `json:"script"`
	VoiceID     string `json:"voice_id"`
	VoiceName   string `json:"voice_name"`
}

// SavePodcast handles POST /api/save-podcast. Requires an
// authenticated caller; the user's name backfills missing host
// metadata.
func (h *Handlers) SavePodcast(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, &errs.PermissionError{Msg: "authentication required"})
		return
	}

	var req savePodcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid request body"))
		return
	}
	if req.Title == "" {
		writeError(w, errs.Validation("title is required"))
		return
	}

	host := req.Host
	if host == "" {
		host = user.Name
	}
	if host == "" {
		host = user.Email
	}

	saved, err := h.catalog.Save(models.Podcast{
		Title:       req.Title,
		Host:        host,
		Listens:     "0",
		Duration:    catalog.StubDuration(),
		Category:    req.Category,
		AudioURL:    req.AudioURL,
		Description: req.Description,
		Script:      req.Script,
		VoiceID:     req.VoiceID,
		VoiceName:   req.VoiceName,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		UserID:      user.ID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"podcast": saved})
}

// AddPodcast handles POST /api/podcasts/add: multipart metadata plus an
// audio file. The file lands in the local audio directory, is mirrored
// when storage is configured, and the record points at the mirrored URL
// with a site-relative fallback.
func (h *Handlers) AddPodcast(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+4096)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "File too large. Maximum size is 10MB."})
		return
	}

	title := r.FormValue("title")
	if title == "" {
		writeError(w, errs.Validation("title is required"))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, errs.Validation("no audio file provided"))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || strings.Contains(name, "..") || !strings.HasSuffix(name, ".mp3") {
		writeError(w, errs.Validation("audio file must be an mp3"))
		return
	}

	if err := os.MkdirAll(h.audioDir, 0o755); err != nil {
		writeError(w, err)
		return
	}
	dst, err := os.Create(filepath.Join(h.audioDir, name))
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeError(w, err)
		return
	}
	dst.Close()

	audioURL := "/audio/" + name
	if h.mirror.Configured() {
		if err := h.mirror.UploadAudio(r.Context(), name); err != nil {
			log.Printf("mirror upload for %s failed: %v", name, err)
		} else if url := h.mirror.AudioURL(name); url != "" {
			audioURL = url
		}
	}

	saved, err := h.catalog.Save(models.Podcast{
		Title:       title,
		Host:        r.FormValue("host"),
		Listens:     "0",
		Duration:    catalog.StubDuration(),
		Category:    r.FormValue("category"),
		AudioURL:    audioURL,
		Description: r.FormValue("description"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if h.mirror.Configured() {
		if err := h.mirror.UploadCatalog(r.Context()); err != nil {
			log.Printf("mirror catalog upload failed: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"podcast": saved})
}

// SyncPodcasts handles POST /api/podcasts/sync.
func (h *Handlers) SyncPodcasts(w http.ResponseWriter, r *http.Request) {
	res, err := h.mirror.SyncAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// StorageDebug handles GET /api/storage/debug: bucket state plus the
// remote catalog as the mirror sees it.
func (h *Handlers) StorageDebug(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeJSON(w, http.StatusOK, map[string]any{"configured": false})
		return
	}

	info := h.storage.Describe(r.Context())
	remote := h.mirror.FetchRemoteCatalog(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"configured":    true,
		"bucket":        info,
		"remoteCatalog": remote,
	})
}
