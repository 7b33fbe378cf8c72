// Package mirror keeps a remote object-storage copy of the catalog and
// audio assets. The local filesystem stays canonical: the mirror is a
// best-effort replica, and per-file upload failures never abort a sync.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"sci-cast/internal/errs"
	"sci-cast/internal/models"
)

// Remote catalog object paths, tried in order on fetch.
const (
	catalogObjectPath = "data/podcasts.json"
	legacyCatalogPath = "podcasts.json"
)

// maxConcurrentUploads bounds parallel audio uploads during a sync.
const maxConcurrentUploads = 4

// ObjectStore is the remote store the mirror writes to. Implemented by
// SupabaseStore.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) error
	Download(ctx context.Context, objectPath string) ([]byte, error)
	PublicURL(objectPath string) string
}

// Service mirrors the catalog file and the audio directory to an
// ObjectStore.
type Service struct {
	store       ObjectStore
	catalogPath string
	audioDir    string
}

// NewService builds a mirror Service. store may be nil when remote
// storage is not configured; every operation then reports failure
// without touching the network.
func NewService(store ObjectStore, catalogPath, audioDir string) *Service {
	return &Service{store: store, catalogPath: catalogPath, audioDir: audioDir}
}

// Configured reports whether a remote store is wired in.
func (s *Service) Configured() bool {
	return s.store != nil
}

// AudioURL returns the public mirror URL for an audio asset, or ""
// when remote storage is not configured.
func (s *Service) AudioURL(name string) string {
	if s.store == nil {
		return ""
	}
	return s.store.PublicURL("audio/" + name)
}

// Result summarizes one sync run. UploadedFiles and FailedFiles count
// audio assets only; the catalog upload is a precondition for the run.
type Result struct {
	Success       bool     `json:"success"`
	UploadedFiles int      `json:"uploadedFiles"`
	FailedFiles   int      `json:"failedFiles"`
	Details       []string `json:"details,omitempty"`
}

// SyncAll uploads the catalog file and every mp3 in the audio directory
// to the remote store. A catalog upload failure aborts the run; audio
// uploads run concurrently and each failure is recorded while the rest
// proceed. An empty audio directory is a successful sync of zero files.
func (s *Service) SyncAll(ctx context.Context) (Result, error) {
	if s.store == nil {
		return Result{}, &errs.ProviderError{Provider: "supabase", Err: fmt.Errorf("storage not configured")}
	}

	if err := s.UploadCatalog(ctx); err != nil {
		return Result{}, err
	}

	var res Result
	var mu sync.Mutex

	files, err := s.audioFiles()
	if err != nil {
		res.Details = append(res.Details, fmt.Sprintf("scan audio dir: %v", err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUploads)
	for _, name := range files {
		name := name
		g.Go(func() error {
			uerr := s.UploadAudio(gctx, name)
			mu.Lock()
			defer mu.Unlock()
			if uerr != nil {
				res.FailedFiles++
				res.Details = append(res.Details, fmt.Sprintf("%s: %v", name, uerr))
			} else {
				res.UploadedFiles++
			}
			return nil
		})
	}
	g.Wait()

	res.Success = true
	return res, nil
}

// UploadCatalog pushes the local catalog file to the remote catalog
// path.
func (s *Service) UploadCatalog(ctx context.Context) error {
	data, err := os.ReadFile(s.catalogPath)
	if err != nil {
		return fmt.Errorf("read local catalog: %w", err)
	}
	if err := s.store.Upload(ctx, catalogObjectPath, "application/json", data); err != nil {
		return fmt.Errorf("upload catalog: %w", err)
	}
	return nil
}

// UploadAudio pushes one file from the audio directory to audio/<name>.
func (s *Service) UploadAudio(ctx context.Context, name string) error {
	data, err := os.ReadFile(filepath.Join(s.audioDir, name))
	if err != nil {
		return fmt.Errorf("read audio file: %w", err)
	}
	if err := s.store.Upload(ctx, "audio/"+name, "audio/mpeg", data); err != nil {
		return fmt.Errorf("upload audio: %w", err)
	}
	return nil
}

// FetchRemoteCatalog reads the mirrored catalog, trying the current
// path then the legacy root path, and rewrites site-relative audio URLs
// to public mirror URLs. Any failure returns nil: the mirror is an
// optional replica and the caller falls back to local data.
func (s *Service) FetchRemoteCatalog(ctx context.Context) []models.Podcast {
	if s.store == nil {
		return nil
	}

	data, err := s.store.Download(ctx, catalogObjectPath)
	if err != nil {
		if !errs.IsNotFound(err) {
			log.Printf("fetch remote catalog: %v", err)
			return nil
		}
		data, err = s.store.Download(ctx, legacyCatalogPath)
		if err != nil {
			if !errs.IsNotFound(err) {
				log.Printf("fetch remote catalog (legacy path): %v", err)
			}
			return nil
		}
	}

	podcasts, err := decodePodcasts(data)
	if err != nil {
		log.Printf("decode remote catalog: %v", err)
		return nil
	}

	for i, p := range podcasts {
		if p.AudioURL == "" || strings.HasPrefix(p.AudioURL, "http") {
			continue
		}
		name := p.AudioURL
		if j := strings.LastIndex(name, "/"); j >= 0 {
			name = name[j+1:]
		}
		podcasts[i].AudioURL = s.store.PublicURL("audio/" + name)
	}
	return podcasts
}

func decodePodcasts(data []byte) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	if err := json.Unmarshal(data, &podcasts); err != nil {
		return nil, err
	}
	return podcasts, nil
}

func (s *Service) audioFiles() ([]string, error) {
	entries, err := os.ReadDir(s.audioDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".mp3") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
