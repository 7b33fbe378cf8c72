// Package catalog maintains the podcast catalog: a seeded demo record
// plus every episode users have generated, persisted to a flat JSON
// file or a Postgres table depending on deployment.
package catalog

import "sci-cast/internal/models"

// Store persists the full podcast list. Write replaces the stored list
// wholesale; there is no partial update.
type Store interface {
	Read() ([]models.Podcast, error)
	Write(podcasts []models.Podcast) error
}
