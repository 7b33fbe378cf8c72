package catalog

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"sci-cast/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS podcasts (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	host TEXT NOT NULL DEFAULT '',
	listens TEXT NOT NULL DEFAULT '0',
	duration TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	audio_url TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	featured BOOLEAN NOT NULL DEFAULT FALSE,
	script TEXT NOT NULL DEFAULT '',
	voice_id TEXT NOT NULL DEFAULT '',
	voice_name TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	user_id TEXT NOT NULL DEFAULT ''
);`

// PostgresStore keeps the catalog in a podcasts table.
type PostgresStore struct {
	db *sqlx.DB
}

// OpenPostgres connects to the database and ensures the schema exists.
func OpenPostgres(databaseURL string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure podcasts schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing connection, used in tests.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Read loads all podcasts ordered by id.
func (s *PostgresStore) Read() ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := s.db.Select(&podcasts, `SELECT id, title, host, listens, duration, category, audio_url,
		description, featured, script, voice_id, voice_name, created_at, user_id
		FROM podcasts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select podcasts: %w", err)
	}
	return podcasts, nil
}

// Write replaces the stored list by upserting every record and removing
// rows absent from the new list, all in one transaction.
func (s *PostgresStore) Write(podcasts []models.Podcast) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin catalog write: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int, 0, len(podcasts))
	for _, p := range podcasts {
		ids = append(ids, p.ID)
		_, err := tx.NamedExec(`INSERT INTO podcasts
			(id, title, host, listens, duration, category, audio_url, description, featured,
			 script, voice_id, voice_name, created_at, user_id)
			VALUES
			(:id, :title, :host, :listens, :duration, :category, :audio_url, :description, :featured,
			 :script, :voice_id, :voice_name, :created_at, :user_id)
			ON CONFLICT (id) DO UPDATE SET
			 title = EXCLUDED.title, host = EXCLUDED.host, listens = EXCLUDED.listens,
			 duration = EXCLUDED.duration, category = EXCLUDED.category,
			 audio_url = EXCLUDED.audio_url, description = EXCLUDED.description,
			 featured = EXCLUDED.featured, script = EXCLUDED.script,
			 voice_id = EXCLUDED.voice_id, voice_name = EXCLUDED.voice_name,
			 created_at = EXCLUDED.created_at, user_id = EXCLUDED.user_id`, p)
		if err != nil {
			return fmt.Errorf("upsert podcast %d: %w", p.ID, err)
		}
	}

	query, args, err := deleteAbsentQuery(ids)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("prune removed podcasts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog write: %w", err)
	}
	return nil
}

func deleteAbsentQuery(ids []int) (string, []interface{}, error) {
	if len(ids) == 0 {
		return "DELETE FROM podcasts", nil, nil
	}
	query, args, err := sqlx.In("DELETE FROM podcasts WHERE id NOT IN (?)", ids)
	if err != nil {
		return "", nil, fmt.Errorf("build prune query: %w", err)
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args, nil
}
