package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"sci-cast/internal/errs"
)

// maxScriptChars is the synthesis input ceiling: the whole script goes
// to the TTS provider in one request.
const maxScriptChars = 10000

type generateAudioRequest struct {
	Script  string `json:"script"`
	VoiceID string `json:"voiceId"`
}

// GenerateAudio handles POST /api/generate-audio, answering with raw
// MP3 bytes.
func (h *Handlers) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	var req generateAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid request body"))
		return
	}
	if req.Script == "" {
		writeError(w, errs.Validation("no script provided"))
		return
	}
	if len(req.Script) > maxScriptChars {
		writeError(w, errs.Validation("script too long: maximum is %d characters", maxScriptChars))
		return
	}

	audio, err := h.synth.Synthesize(r.Context(), req.Script, req.VoiceID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="podcast.mp3"`)
	w.Write(audio)
}

// Voices handles GET /api/voices.
func (h *Handlers) Voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"voices": h.synth.Voices(r.Context())})
}

// ServeAudioFile handles GET /audio/{filename}, serving local assets.
func (h *Handlers) ServeAudioFile(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	if filename == "" || strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.audioDir, filename))
}
