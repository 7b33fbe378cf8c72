// Package config reads all environment configuration once at startup.
// Nothing else in the codebase touches os.Getenv; values are passed down
// explicitly from the composition root.
package config

import "os"

// Config holds every runtime setting. Absence of a provider credential
// gates which pipeline paths are reachable; the pipelines degrade rather
// than fail when a key is missing.
type Config struct {
	Port    string
	BaseURL string

	OpenAIKey     string
	CerebrasKey   string
	ElevenLabsKey string

	SupabaseURL   string
	SupabaseKey   string
	StorageBucket string

	// DatabaseURL switches the catalog to the Postgres store when set;
	// otherwise the flat-file store at CatalogPath is used.
	DatabaseURL string
	CatalogPath string
	AudioDir    string
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Port:          getenv("PORT", "8080"),
		BaseURL:       os.Getenv("BASE_URL"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		CerebrasKey:   os.Getenv("CEREBRAS_API_KEY"),
		ElevenLabsKey: os.Getenv("ELEVENLABS_API_KEY"),
		SupabaseURL:   os.Getenv("SUPABASE_URL"),
		SupabaseKey:   os.Getenv("SUPABASE_KEY"),
		StorageBucket: getenv("STORAGE_BUCKET", "sci-cast"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		CatalogPath:   getenv("CATALOG_PATH", "public/data/podcasts.json"),
		AudioDir:      getenv("AUDIO_DIR", "public/audio"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
