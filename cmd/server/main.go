package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	supabase "github.com/supabase-community/supabase-go"
	"golang.org/x/time/rate"

	"sci-cast/internal/catalog"
	"sci-cast/internal/config"
	"sci-cast/internal/extract"
	"sci-cast/internal/handlers"
	"sci-cast/internal/llm"
	"sci-cast/internal/middleware"
	"sci-cast/internal/mirror"
	"sci-cast/internal/script"
	"sci-cast/internal/tts"
)

// Model assignments per provider.
const (
	extractModel  = "gpt-4-turbo"
	generateModel = "llama-4-scout-17b-16e-instruct"
	trimModel     = "gpt-4o"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded")
	}

	cfg := config.Load()

	// Catalog store: Postgres when a database URL is configured, the
	// flat JSON file otherwise.
	var store catalog.Store
	if cfg.DatabaseURL != "" {
		pg, err := catalog.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open postgres catalog: %v", err)
		}
		defer pg.Close()
		store = pg
		log.Println("Using Postgres catalog store")
	} else {
		store = catalog.NewFileStore(cfg.CatalogPath)
		log.Printf("Using file catalog store at %s", cfg.CatalogPath)
	}
	catalogSvc := catalog.NewService(store, cfg.AudioDir)

	// LLM clients are only constructed when their credential is present
	// so the pipelines see a plain nil and degrade cleanly.
	var extractor, generator, trimmer script.Completer
	if cfg.OpenAIKey != "" {
		c, err := llm.New(cfg.OpenAIKey, "openai", extractModel, llm.WithTimeout(120*time.Second))
		if err != nil {
			log.Fatalf("openai extract client: %v", err)
		}
		extractor = c
		t, err := llm.New(cfg.OpenAIKey, "openai", trimModel, llm.WithTimeout(120*time.Second))
		if err != nil {
			log.Fatalf("openai trim client: %v", err)
		}
		trimmer = t
	}
	if cfg.CerebrasKey != "" {
		c, err := llm.New(cfg.CerebrasKey, "cerebras", generateModel,
			llm.WithBaseURL(llm.CerebrasBaseURL), llm.WithTimeout(120*time.Second))
		if err != nil {
			log.Fatalf("cerebras client: %v", err)
		}
		generator = c
	}

	extractPipeline := extract.New(extractor, generator)
	scriptSvc := script.NewGenerator(generator, trimmer)
	ttsClient := tts.NewClient(cfg.ElevenLabsKey)

	// Supabase backs both the storage mirror and token verification.
	var (
		storageStore *mirror.SupabaseStore
		verifier     middleware.TokenVerifier
	)
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
		if err != nil {
			log.Fatalf("supabase client: %v", err)
		}
		storageStore = mirror.NewSupabaseStore(client, cfg.StorageBucket)
		verifier = middleware.NewSupabaseVerifier(client)
		log.Printf("Supabase storage enabled, bucket %s", cfg.StorageBucket)
	} else {
		log.Println("Supabase not configured: auth and mirroring disabled")
	}

	// The nil check avoids handing NewService a typed-nil interface.
	var objStore mirror.ObjectStore
	if storageStore != nil {
		objStore = storageStore
	}
	mirrorSvc := mirror.NewService(objStore, cfg.CatalogPath, cfg.AudioDir)

	h := handlers.New(handlers.Config{
		Extractor:   extractPipeline,
		Scripts:     scriptSvc,
		Synth:       ttsClient,
		Catalog:     catalogSvc,
		Mirror:      mirrorSvc,
		Storage:     storageStore,
		BaseURL:     cfg.BaseURL,
		AudioDir:    cfg.AudioDir,
		CerebrasSet: cfg.CerebrasKey != "",
	})

	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/extract-text", h.ExtractText).Methods(http.MethodPost)
	api.HandleFunc("/generate-script", h.GenerateScript).Methods(http.MethodPost)
	api.HandleFunc("/trim-script", h.TrimScript).Methods(http.MethodPost)
	api.HandleFunc("/generate-audio", h.GenerateAudio).Methods(http.MethodPost)
	api.HandleFunc("/voices", h.Voices).Methods(http.MethodGet)
	api.HandleFunc("/podcasts", h.ListPodcasts).Methods(http.MethodGet)
	api.HandleFunc("/podcasts/add", h.AddPodcast).Methods(http.MethodPost)
	api.HandleFunc("/podcasts/sync", h.SyncPodcasts).Methods(http.MethodPost)
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	api.HandleFunc("/storage/debug", h.StorageDebug).Methods(http.MethodGet)

	// Saving requires an authenticated caller and is rate limited per
	// user.
	limiter := middleware.NewRateLimiter(rate.Limit(1), 5)
	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(middleware.Auth(verifier), limiter.Middleware)
	authed.HandleFunc("/save-podcast", h.SavePodcast).Methods(http.MethodPost)

	r.HandleFunc("/audio/{filename}", h.ServeAudioFile).Methods(http.MethodGet)
	r.HandleFunc("/rss", h.Feed).Methods(http.MethodGet)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
