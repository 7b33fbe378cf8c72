package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sci-cast/internal/errs"
	"sci-cast/internal/middleware"
	"sci-cast/internal/mirror"
	"sci-cast/internal/models"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, _, _ string) (string, error) {
	return f.text, f.err
}

type fakeScripts struct {
	script  string
	trimmed string
	err     error
}

func (f *fakeScripts) Generate(_ context.Context, _, _, _, _, _ string) (string, error) {
	return f.script, f.err
}

func (f *fakeScripts) Trim(_ context.Context, script string, targetLength int, _, _, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(script) <= targetLength {
		return script, nil
	}
	return f.trimmed, nil
}

type fakeSynth struct {
	audio   []byte
	err     error
	voices  []models.Voice
	healthy bool
}

func (f *fakeSynth) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	return f.audio, f.err
}

func (f *fakeSynth) Voices(context.Context) []models.Voice { return f.voices }
func (f *fakeSynth) Healthy(context.Context) bool          { return f.healthy }

type fakeCatalog struct {
	podcasts []models.Podcast
	saved    *models.Podcast
	err      error
}

func (f *fakeCatalog) ListAll() ([]models.Podcast, error) {
	return f.podcasts, f.err
}

func (f *fakeCatalog) Save(p models.Podcast) (models.Podcast, error) {
	if f.err != nil {
		return models.Podcast{}, f.err
	}
	p.ID = 2
	f.saved = &p
	return p, nil
}

type fakeMirror struct {
	configured bool
	result     mirror.Result
	err        error
	remote     []models.Podcast
	uploads    []string
}

func (f *fakeMirror) Configured() bool { return f.configured }

func (f *fakeMirror) SyncAll(context.Context) (mirror.Result, error) {
	return f.result, f.err
}

func (f *fakeMirror) UploadAudio(_ context.Context, name string) error {
	f.uploads = append(f.uploads, name)
	return f.err
}

func (f *fakeMirror) UploadCatalog(context.Context) error { return f.err }

func (f *fakeMirror) FetchRemoteCatalog(context.Context) []models.Podcast { return f.remote }

func (f *fakeMirror) AudioURL(name string) string {
	if !f.configured {
		return ""
	}
	return "https://cdn.example.com/audio/" + name
}

func multipartBody(t *testing.T, field, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestExtractText(t *testing.T) {
	h := New(Config{Extractor: &fakeExtractor{text: "Hello world"}})

	body, ct := multipartBody(t, "file", "notes.txt", "Hello world", nil)
	req := httptest.NewRequest("POST", "/api/extract-text", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ExtractText(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp extractResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Hello world", resp.Text)
	assert.Equal(t, "notes.txt", resp.Filename)
	assert.Equal(t, 11, resp.Size)
}

func TestExtractTextNoFile(t *testing.T) {
	h := New(Config{Extractor: &fakeExtractor{}})

	body, ct := multipartBody(t, "other", "x.txt", "data", nil)
	req := httptest.NewRequest("POST", "/api/extract-text", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ExtractText(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExtractTextUnsupportedType(t *testing.T) {
	h := New(Config{Extractor: &fakeExtractor{err: errs.Validation("unsupported file type")}})

	body, ct := multipartBody(t, "file", "slides.pptx", "data", nil)
	req := httptest.NewRequest("POST", "/api/extract-text", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ExtractText(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unsupported file type")
}

func TestGenerateScript(t *testing.T) {
	h := New(Config{Scripts: &fakeScripts{script: "Host: Welcome."}})

	req := httptest.NewRequest("POST", "/api/generate-script",
		strings.NewReader(`{"text":"paper content","title":"Deep Nets"}`))
	rr := httptest.NewRecorder()
	h.GenerateScript(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Host: Welcome.")
}

func TestGenerateScriptMissingText(t *testing.T) {
	h := New(Config{Scripts: &fakeScripts{}})

	req := httptest.NewRequest("POST", "/api/generate-script", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	h.GenerateScript(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGenerateScriptProviderFailure(t *testing.T) {
	h := New(Config{Scripts: &fakeScripts{err: &errs.ProviderError{Provider: "cerebras", StatusCode: 502, Body: "bad gateway"}}})

	req := httptest.NewRequest("POST", "/api/generate-script", strings.NewReader(`{"text":"content"}`))
	rr := httptest.NewRecorder()
	h.GenerateScript(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "cerebras API error: 502")
}

func TestTrimScriptReportsLengths(t *testing.T) {
	h := New(Config{Scripts: &fakeScripts{trimmed: "short"}})

	req := httptest.NewRequest("POST", "/api/trim-script",
		strings.NewReader(`{"script":"`+strings.Repeat("a", 100)+`","targetLength":10}`))
	rr := httptest.NewRecorder()
	h.TrimScript(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp trimScriptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "short", resp.TrimmedScript)
	assert.Equal(t, 100, resp.OriginalLength)
	assert.Equal(t, 5, resp.NewLength)
}

func TestGenerateAudio(t *testing.T) {
	h := New(Config{Synth: &fakeSynth{audio: []byte("mp3bytes")}})

	req := httptest.NewRequest("POST", "/api/generate-audio",
		strings.NewReader(`{"script":"Host: Hello.","voiceId":"v1"}`))
	rr := httptest.NewRecorder()
	h.GenerateAudio(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "audio/mpeg", rr.Header().Get("Content-Type"))
	assert.Equal(t, "mp3bytes", rr.Body.String())
}

func TestGenerateAudioScriptTooLong(t *testing.T) {
	h := New(Config{Synth: &fakeSynth{}})

	payload, err := json.Marshal(map[string]string{"script": strings.Repeat("a", maxScriptChars+1)})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/generate-audio", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	h.GenerateAudio(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVoices(t *testing.T) {
	h := New(Config{Synth: &fakeSynth{voices: []models.Voice{{VoiceID: "v1", Name: "Rachel"}}}})

	rr := httptest.NewRecorder()
	h.Voices(rr, httptest.NewRequest("GET", "/api/voices", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Rachel")
}

func TestListPodcasts(t *testing.T) {
	h := New(Config{Catalog: &fakeCatalog{podcasts: []models.Podcast{{ID: 1, Title: "Seed"}}}})

	rr := httptest.NewRecorder()
	h.ListPodcasts(rr, httptest.NewRequest("GET", "/api/podcasts", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Seed")
}

func TestSavePodcastRequiresAuth(t *testing.T) {
	h := New(Config{Catalog: &fakeCatalog{}})

	req := httptest.NewRequest("POST", "/api/save-podcast", strings.NewReader(`{"title":"Ep"}`))
	rr := httptest.NewRecorder()
	h.SavePodcast(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSavePodcastFillsDefaults(t *testing.T) {
	cat := &fakeCatalog{}
	h := New(Config{Catalog: cat})

	req := httptest.NewRequest("POST", "/api/save-podcast", strings.NewReader(`{"title":"Ep","script":"Host: Hi."}`))
	ctx := context.WithValue(req.Context(), middleware.UserContextKey,
		&models.User{ID: "user-1", Email: "a@b.c", Name: "Ada"})
	rr := httptest.NewRecorder()
	h.SavePodcast(rr, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, cat.saved)
	assert.Equal(t, "Ada", cat.saved.Host)
	assert.Equal(t, "user-1", cat.saved.UserID)
	assert.Equal(t, "0", cat.saved.Listens)
	assert.NotEmpty(t, cat.saved.Duration)
	assert.NotEmpty(t, cat.saved.CreatedAt)
}

func TestAddPodcastStoresFileAndMirrors(t *testing.T) {
	cat := &fakeCatalog{}
	m := &fakeMirror{configured: true}
	h := New(Config{Catalog: cat, Mirror: m, AudioDir: t.TempDir()})

	body, ct := multipartBody(t, "audio", "new-episode.mp3", "mp3data",
		map[string]string{"title": "New Episode", "host": "Ada"})
	req := httptest.NewRequest("POST", "/api/podcasts/add", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.AddPodcast(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, cat.saved)
	assert.Equal(t, "https://cdn.example.com/audio/new-episode.mp3", cat.saved.AudioURL)
	assert.Equal(t, []string{"new-episode.mp3"}, m.uploads)
}

func TestAddPodcastWithoutMirrorUsesRelativeURL(t *testing.T) {
	cat := &fakeCatalog{}
	h := New(Config{Catalog: cat, Mirror: &fakeMirror{}, AudioDir: t.TempDir()})

	body, ct := multipartBody(t, "audio", "ep.mp3", "mp3data", map[string]string{"title": "Ep"})
	req := httptest.NewRequest("POST", "/api/podcasts/add", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.AddPodcast(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, cat.saved)
	assert.Equal(t, "/audio/ep.mp3", cat.saved.AudioURL)
}

func TestSyncPodcasts(t *testing.T) {
	h := New(Config{Mirror: &fakeMirror{configured: true, result: mirror.Result{Success: true, UploadedFiles: 2}}})

	rr := httptest.NewRecorder()
	h.SyncPodcasts(rr, httptest.NewRequest("POST", "/api/podcasts/sync", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"uploadedFiles":2`)
}

func TestSyncPodcastsNotConfigured(t *testing.T) {
	h := New(Config{Mirror: &fakeMirror{err: &errs.ProviderError{Provider: "supabase", Err: assert.AnError}}})

	rr := httptest.NewRecorder()
	h.SyncPodcasts(rr, httptest.NewRequest("POST", "/api/podcasts/sync", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHealthDegraded(t *testing.T) {
	h := New(Config{Synth: &fakeSynth{healthy: false}, Mirror: &fakeMirror{configured: true}, CerebrasSet: true})

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest("GET", "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"elevenlabs":false`)
}

func TestHealthOK(t *testing.T) {
	h := New(Config{Synth: &fakeSynth{healthy: true}, Mirror: &fakeMirror{configured: true}, CerebrasSet: true})

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest("GET", "/api/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestStorageDebugUnconfigured(t *testing.T) {
	h := New(Config{Mirror: &fakeMirror{}})

	rr := httptest.NewRecorder()
	h.StorageDebug(rr, httptest.NewRequest("GET", "/api/storage/debug", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"configured":false`)
}

func TestFeed(t *testing.T) {
	h := New(Config{
		Catalog: &fakeCatalog{podcasts: []models.Podcast{{ID: 1, Title: "Seed Episode", Description: "d", AudioURL: "/audio/TDSM.mp3"}}},
		BaseURL: "https://sci-cast.example.com",
	})

	rr := httptest.NewRecorder()
	h.Feed(rr, httptest.NewRequest("GET", "/rss", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "rss+xml")
	assert.Contains(t, rr.Body.String(), "Seed Episode")
}

func TestServeAudioFileRejectsTraversal(t *testing.T) {
	h := New(Config{AudioDir: t.TempDir()})

	req := httptest.NewRequest("GET", "/audio/x", nil)
	req = mux.SetURLVars(req, map[string]string{"filename": "../secret.mp3"})
	rr := httptest.NewRecorder()
	h.ServeAudioFile(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
