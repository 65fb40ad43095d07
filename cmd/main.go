package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docqa/internal/api"
	"docqa/internal/chromemdb"
	"docqa/internal/config"
	"docqa/internal/db"
	"docqa/internal/embedding"
	"docqa/internal/index"
	"docqa/internal/llmservice"
	"docqa/internal/rag"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a document to ingest, then exit")
	query := flag.String("query", "", "Question to answer once, then exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	log.Debug().Interface("config", cfg).Msg("Loaded config")

	svc, engine := buildPipeline(cfg)

	ctx := context.Background()
	if *filePath != "" {
		ingestFile(ctx, svc, *filePath)
		return
	}
	if *query != "" {
		askOnce(ctx, engine, *query)
		return
	}

	handler := api.NewAppHandler(api.AppDeps{
		Ingestor: svc,
		Engine:   engine,
		Deleter:  svc,
	})
	log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func buildPipeline(cfg *config.Config) (*index.Service, *rag.Engine) {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	store := buildStore(cfg)

	indexer := index.NewIndexer(embedder, store, cfg.Store.VectorSize)
	svc := index.NewService(indexer, cfg)

	llm, err := llmservice.NewClient(&cfg.ChatLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat LLM")
	}

	retriever := index.NewRetriever(embedder, store, cfg.RAG.TopK)
	engine := rag.NewEngine(llm, retriever, cfg)
	return svc, engine
}

func buildStore(cfg *config.Config) index.VectorStore {
	switch cfg.Store.Backend {
	case "postgres":
		dbClient, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		return db.NewStore(db.NewDB(dbClient, cfg.Database.Debug))
	default:
		inMemory := cfg.Store.Path == ""
		store, err := chromemdb.NewVectorDBManager(cfg.Store.Path, cfg.Store.Collection, inMemory)
		if err != nil {
			log.Fatal().Err(err).Msg("Error creating vector database manager")
		}
		return store
	}
}

func ingestFile(ctx context.Context, svc *index.Service, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading document")
	}

	chunks, err := svc.IndexDocument(ctx, filepath.Base(path), data)
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting document")
	}
	log.Info().Int("chunks", chunks).Msgf("Ingested %s", path)
}

func askOnce(ctx context.Context, engine *rag.Engine, query string) {
	result := engine.Ask(ctx, query, "", nil)

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	sources, _ := json.Marshal(result.Sources)
	fmt.Printf("%s\n\n", sources)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", result.Answer)
}
