package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"ragdesk/internal/answerer"
	"ragdesk/internal/chunker"
	"ragdesk/internal/completion"
	"ragdesk/internal/config"
	"ragdesk/internal/domain"
	"ragdesk/internal/embedding"
	"ragdesk/internal/index"
	"ragdesk/internal/loader"
	"ragdesk/internal/retriever"
	"ragdesk/internal/service"
	"ragdesk/internal/tui"
	"ragdesk/internal/vectorstore"
	"ragdesk/internal/vectorstore/memory"
	"ragdesk/internal/vectorstore/qdrant"
	"ragdesk/internal/vectorstore/sqlite"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragdesk/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Assemble components
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "openai", "":
		emb = embedding.NewOpenAI(embedding.Config{
			APIKeyEnv: cfg.Embedder.APIKeyEnv,
			BaseURL:   cfg.Embedder.BaseURL,
			Model:     cfg.Embedder.Model,
			BatchSize: cfg.Embedder.BatchSize,
		})
	case "simple":
		emb = embedding.NewSimple(cfg.Embedder.Dimension)
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var store vectorstore.Store
	switch cfg.Store.Type {
	case "sqlite", "":
		store, err = sqlite.Open(cfg.Store.Path)
		if err != nil {
			log.Fatalf("failed to open index: %v", err)
		}
	case "memory":
		store = memory.New()
	case "qdrant":
		if cfg.Store.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		store = qdrant.New(qdrant.Config{
			URL:        cfg.Store.Qdrant.URL,
			APIKey:     cfg.Store.Qdrant.APIKey,
			Collection: cfg.Store.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Store.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown vector store: %s", cfg.Store.Type)
	}
	defer store.Close()

	splitter, err := chunker.NewSplitter(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	if err != nil {
		log.Fatalf("invalid chunker config: %v", err)
	}

	ix := index.New(store, emb)
	ret := retriever.New(ix, cfg.Retriever.TopK, cfg.Retriever.Threshold)
	completer := completion.NewOpenAI(completion.Config{
		APIKeyEnv: cfg.Completion.APIKeyEnv,
		BaseURL:   cfg.Completion.BaseURL,
		Model:     cfg.Completion.Model,
	})
	ans := answerer.New(completer)
	assistant := service.New(loader.NewRegistry(), splitter, ix, ret, ans, logger)

	// Files named on the command line are ingested before the chat
	// starts.
	if args := flag.Args(); len(args) > 0 {
		files := make([]service.File, 0, len(args))
		for _, name := range args {
			data, err := os.ReadFile(name)
			if err != nil {
				log.Fatalf("failed to read %s: %v", name, err)
			}
			files = append(files, service.File{Name: name, Data: data})
		}
		for _, r := range assistant.IngestBatch(context.Background(), files) {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", r.File, r.Err)
				continue
			}
			fmt.Printf("%s: %d chunk(s) added\n", r.File, r.ChunksAdded)
		}
	}

	m := tui.New(assistant)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
