package mirror

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sci-cast/internal/errs"
)

type fakeStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failPath string
	downErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Upload(_ context.Context, objectPath, _ string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if objectPath == f.failPath {
		return errors.New("upload refused")
	}
	f.objects[objectPath] = data
	return nil
}

func (f *fakeStore) Download(_ context.Context, objectPath string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downErr != nil {
		return nil, f.downErr
	}
	data, ok := f.objects[objectPath]
	if !ok {
		return nil, &errs.NotFoundError{Resource: objectPath}
	}
	return data, nil
}

func (f *fakeStore) PublicURL(objectPath string) string {
	return "https://cdn.example.com/" + objectPath
}

func writeLocalFiles(t *testing.T, audioNames ...string) (catalogPath, audioDir string) {
	t.Helper()
	root := t.TempDir()
	catalogPath = filepath.Join(root, "data", "podcasts.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(catalogPath), 0o755))
	require.NoError(t, os.WriteFile(catalogPath, []byte(`[{"id":2,"title":"Ep","audioUrl":"/audio/ep.mp3"}]`), 0o644))

	audioDir = filepath.Join(root, "audio")
	require.NoError(t, os.MkdirAll(audioDir, 0o755))
	for _, name := range audioNames {
		require.NoError(t, os.WriteFile(filepath.Join(audioDir, name), []byte("mp3 "+name), 0o644))
	}
	return catalogPath, audioDir
}

func TestSyncAllUploadsCatalogAndAudio(t *testing.T) {
	store := newFakeStore()
	catalogPath, audioDir := writeLocalFiles(t, "one.mp3", "two.mp3")
	svc := NewService(store, catalogPath, audioDir)

	res, err := svc.SyncAll(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.UploadedFiles)
	assert.Zero(t, res.FailedFiles)
	assert.Contains(t, store.objects, "data/podcasts.json")
	assert.Contains(t, store.objects, "audio/one.mp3")
	assert.Contains(t, store.objects, "audio/two.mp3")
}

func TestSyncAllIsolatesFailures(t *testing.T) {
	store := newFakeStore()
	store.failPath = "audio/bad.mp3"
	catalogPath, audioDir := writeLocalFiles(t, "bad.mp3", "good.mp3")
	svc := NewService(store, catalogPath, audioDir)

	res, err := svc.SyncAll(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.UploadedFiles)
	assert.Equal(t, 1, res.FailedFiles)
	assert.Contains(t, store.objects, "audio/good.mp3")
	require.Len(t, res.Details, 1)
	assert.Contains(t, res.Details[0], "bad.mp3")
}

func TestSyncAllEmptyAudioDir(t *testing.T) {
	store := newFakeStore()
	catalogPath, audioDir := writeLocalFiles(t)
	svc := NewService(store, catalogPath, audioDir)

	res, err := svc.SyncAll(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, res.UploadedFiles)
	assert.Contains(t, store.objects, "data/podcasts.json")
}

func TestSyncAllCatalogFailureAborts(t *testing.T) {
	store := newFakeStore()
	store.failPath = "data/podcasts.json"
	catalogPath, audioDir := writeLocalFiles(t, "one.mp3")
	svc := NewService(store, catalogPath, audioDir)

	_, err := svc.SyncAll(context.Background())

	assert.Error(t, err)
	assert.NotContains(t, store.objects, "audio/one.mp3")
}

func TestSyncAllWithoutStore(t *testing.T) {
	svc := NewService(nil, "catalog.json", "audio")

	_, err := svc.SyncAll(context.Background())

	var pe *errs.ProviderError
	assert.ErrorAs(t, err, &pe)
}

func TestFetchRemoteCatalogRewritesRelativeURLs(t *testing.T) {
	store := newFakeStore()
	store.objects["data/podcasts.json"] = []byte(`[
		{"id":2,"title":"Local","audioUrl":"/audio/local.mp3"},
		{"id":3,"title":"Absolute","audioUrl":"https://elsewhere.example.com/x.mp3"}
	]`)
	svc := NewService(store, "", "")

	podcasts := svc.FetchRemoteCatalog(context.Background())

	require.Len(t, podcasts, 2)
	assert.Equal(t, "https://cdn.example.com/audio/local.mp3", podcasts[0].AudioURL)
	assert.Equal(t, "https://elsewhere.example.com/x.mp3", podcasts[1].AudioURL)
}

func TestFetchRemoteCatalogLegacyPath(t *testing.T) {
	store := newFakeStore()
	store.objects["podcasts.json"] = []byte(`[{"id":2,"title":"Legacy"}]`)
	svc := NewService(store, "", "")

	podcasts := svc.FetchRemoteCatalog(context.Background())

	require.Len(t, podcasts, 1)
	assert.Equal(t, "Legacy", podcasts[0].Title)
}

func TestFetchRemoteCatalogFailureReturnsNil(t *testing.T) {
	store := newFakeStore()
	store.downErr = &errs.ProviderError{Provider: "supabase", StatusCode: 500, Body: "outage"}
	svc := NewService(store, "", "")

	assert.Nil(t, svc.FetchRemoteCatalog(context.Background()))
}

func TestFetchRemoteCatalogMissingEverywhere(t *testing.T) {
	svc := NewService(newFakeStore(), "", "")

	assert.Nil(t, svc.FetchRemoteCatalog(context.Background()))
}
