package catalog

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"sci-cast/internal/models"
)

// SeedPodcast is the permanent demo episode. It is a fixture, never a
// stored row: listings prepend it, stores never contain it.
func SeedPodcast() models.Podcast {
	return models.Podcast{
		ID:          1,
		Title:       "TDSM: Triplet Diffusion for Skeleton-Text Matching in Zero-Shot Action Recognition",
		Host:        "Dr. Alex Chen",
		Listens:     "3,247,891",
		Duration:    "2:32",
		Category:    "AI & Machine Learning",
		AudioURL:    "/audio/TDSM.mp3",
		Description: "Deep dive into cutting-edge research on skeleton-based action recognition using triplet diffusion models.",
		Featured:    true,
	}
}

// Service owns the catalog: the seed record plus the backing store,
// reconciled against the local audio directory.
type Service struct {
	store    Store
	audioDir string
}

// NewService builds a catalog Service over store, scanning audioDir for
// orphaned audio files on listing.
func NewService(store Store, audioDir string) *Service {
	return &Service{store: store, audioDir: audioDir}
}

// ListAll returns the seed record followed by every stored record in
// insertion order. Audio files on disk that no record references are
// adopted as minimal records and persisted before returning.
func (s *Service) ListAll() ([]models.Podcast, error) {
	stored, err := s.store.Read()
	if err != nil {
		return nil, err
	}

	all := append([]models.Podcast{SeedPodcast()}, stored...)

	adopted := s.scanAudioDir(all)
	if len(adopted) > 0 {
		if err := s.store.Write(append(stored, adopted...)); err != nil {
			log.Printf("persisting adopted audio files failed: %v", err)
		}
		all = append(all, adopted...)
	}

	return all, nil
}

// Save allocates the next id and appends the record to the store. The
// id is max over stored ids with a floor of 1, plus one; two concurrent
// savers can therefore allocate the same id. Single-writer deployments
// only.
func (s *Service) Save(p models.Podcast) (models.Podcast, error) {
	stored, err := s.store.Read()
	if err != nil {
		return models.Podcast{}, err
	}

	maxID := 1
	for _, existing := range stored {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	p.ID = maxID + 1

	if err := s.store.Write(append(stored, p)); err != nil {
		return models.Podcast{}, err
	}
	return p, nil
}

// scanAudioDir finds mp3 files not referenced by any known record and
// builds minimal entries for them, ids continuing from the current max.
func (s *Service) scanAudioDir(known []models.Podcast) []models.Podcast {
	if s.audioDir == "" {
		return nil
	}
	entries, err := os.ReadDir(s.audioDir)
	if err != nil {
		return nil
	}

	referenced := make(map[string]bool, len(known))
	maxID := 1
	for _, p := range known {
		if p.ID > maxID {
			maxID = p.ID
		}
		if i := strings.LastIndex(p.AudioURL, "/"); i >= 0 {
			referenced[p.AudioURL[i+1:]] = true
		} else if p.AudioURL != "" {
			referenced[p.AudioURL] = true
		}
	}

	var adopted []models.Podcast
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".mp3") || referenced[name] {
			continue
		}
		maxID++
		base := strings.TrimSuffix(name, ".mp3")
		adopted = append(adopted, models.Podcast{
			ID:          maxID,
			Title:       titleFromFilename(base),
			Host:        "Unknown Host",
			Listens:     "0",
			Duration:    "0:00",
			Category:    "Uncategorized",
			AudioURL:    "/audio/" + name,
			Description: fmt.Sprintf("Auto-generated podcast from %s", base),
		})
	}
	return adopted
}

// titleFromFilename turns "quantum-error-correction" into
// "Quantum Error Correction".
func titleFromFilename(base string) string {
	words := strings.Split(base, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// StubDuration fabricates a display duration between 1:00 and 4:59.
// Real duration derivation would need to decode the MP3.
func StubDuration() string {
	minutes := rand.Intn(4) + 1
	seconds := rand.Intn(60)
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
