package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"sci-cast/internal/errs"
)

type generateScriptRequest struct {
	Text      string `json:"text"`
	Title     string `json:"title"`
	HostName  string `json:"hostName"`
	GuestName string `json:"guestName"`
	Category  string `json:"category"`
}

// GenerateScript handles POST /api/generate-script.
func (h *Handlers) GenerateScript(w http.ResponseWriter, r *http.Request) {
	var req generateScriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid request body"))
		return
	}
	if req.Text == "" {
		writeError(w, errs.Validation("no text provided"))
		return
	}

	title := req.Title
	if title == "" {
		category := req.Category
		if category == "" {
			category = "Science"
		}
		title = fmt.Sprintf("Research on %s", category)
	}
	hostName := req.HostName
	if hostName == "" {
		hostName = "Sci-Cast Host"
	}

	script, err := h.scripts.Generate(r.Context(), req.Text, title, hostName, req.GuestName, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"script": script})
}

type trimScriptRequest struct {
	Script       string `json:"script"`
	TargetLength int    `json:"targetLength"`
	Title        string `json:"title"`
	HostName     string `json:"hostName"`
	GuestName    string `json:"guestName"`
}

type trimScriptResponse struct {
	TrimmedScript  string `json:"trimmedScript"`
	OriginalLength int    `json:"originalLength"`
	NewLength      int    `json:"newLength"`
}

// TrimScript handles POST /api/trim-script.
func (h *Handlers) TrimScript(w http.ResponseWriter, r *http.Request) {
	var req trimScriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Validation("invalid request body"))
		return
	}
	if req.Script == "" {
		writeError(w, errs.Validation("no script provided"))
		return
	}
	if req.TargetLength <= 0 {
		writeError(w, errs.Validation("targetLength must be positive"))
		return
	}

	trimmed, err := h.scripts.Trim(r.Context(), req.Script, req.TargetLength, req.Title, req.HostName, req.GuestName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trimScriptResponse{
		TrimmedScript:  trimmed,
		OriginalLength: len(req.Script),
		NewLength:      len(trimmed),
	})
}
