package feed

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eduncan911/podcast"

	"sci-cast/internal/models"
)

// BaseURL resolves the public site URL for feed links: the configured
// base URL when set, otherwise the request host with the forwarded
// scheme.
func BaseURL(configured string, r *http.Request) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "https"
		if r.Header.Get("X-Forwarded-Proto") != "" {
			scheme = r.Header.Get("X-Forwarded-Proto")
		}
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GenerateRSS renders the catalog as a podcast RSS feed. Relative audio
// URLs are resolved against the base URL; absolute mirror URLs pass
// through unchanged.
func GenerateRSS(podcasts []models.Podcast, baseURL string) (string, error) {
	p := podcast.New(
		"Sci-Cast",
		baseURL,
		"Research papers turned into podcast episodes.",
		&time.Time{}, &time.Time{},
	)

	for _, ep := range podcasts {
		item := podcast.Item{
			Title:       ep.Title,
			Description: description(ep),
		}
		if ep.CreatedAt != "" {
			if ts, err := time.Parse(time.RFC3339, ep.CreatedAt); err == nil {
				item.AddPubDate(&ts)
			}
		}

		audioURL := ep.AudioURL
		if audioURL != "" && !strings.HasPrefix(audioURL, "http") {
			audioURL = baseURL + audioURL
		}
		if audioURL != "" {
			item.AddEnclosure(audioURL, podcast.MP3, 0)
		} else {
			item.Link = baseURL
		}

		if _, err := p.AddItem(item); err != nil {
			return "", fmt.Errorf("add feed item %d: %w", ep.ID, err)
		}
	}

	return p.String(), nil
}

func description(ep models.Podcast) string {
	if ep.Description != "" {
		return ep.Description
	}
	return fmt.Sprintf("Episode hosted by %s.", ep.Host)
}
