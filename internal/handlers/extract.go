package handlers

import (
	"io"
	"net/http"
)

// maxUploadBytes caps document uploads at 10 MiB.
const maxUploadBytes = 10 << 20

type extractResponse struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
}

// ExtractText handles POST /api/extract-text: a multipart upload under
// the "file" field, answered with the extracted text.
func (h *Handlers) ExtractText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+4096)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "File too large. Maximum size is 10MB."})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file provided"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "File too large. Maximum size is 10MB."})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, err)
		return
	}

	text, err := h.extractor.Extract(r.Context(), data, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No text could be extracted from the file"})
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Text:     text,
		Filename: header.Filename,
		Size:     len(data),
	})
}
