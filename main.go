// Command rag-orchestrator wires the Knowledge DAO, Answer Extractor,
// Intent Classifier, Entity Extractor, Session Memory, Schedule Interface,
// and Orchestrator into a running HTTP server (SPEC_FULL.md §6). Grounded
// on the teacher's main.go construction order (pool/driver/embedder/llm,
// then compose into a chat.Service), generalized from a flag-driven CLI
// with subcommands into a single long-running server process.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frontdesk/rag-orchestrator/api"
	"github.com/frontdesk/rag-orchestrator/config"
	"github.com/frontdesk/rag-orchestrator/database"
	"github.com/frontdesk/rag-orchestrator/embeddings"
	"github.com/frontdesk/rag-orchestrator/extractor"
	"github.com/frontdesk/rag-orchestrator/intent"
	"github.com/frontdesk/rag-orchestrator/knowledge"
	"github.com/frontdesk/rag-orchestrator/kv"
	"github.com/frontdesk/rag-orchestrator/lexical"
	"github.com/frontdesk/rag-orchestrator/logging"
	"github.com/frontdesk/rag-orchestrator/memory"
	"github.com/frontdesk/rag-orchestrator/orchestrator"
	"github.com/frontdesk/rag-orchestrator/schedule"
	"github.com/frontdesk/rag-orchestrator/vectorindex"
)

func main() {
	logger := logging.New()
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv, cleanup, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed: %v", err)
		os.Exit(1)
	}
	defer cleanup()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed: %v", err)
		}
	}()

	logger.Info("listening on :%s (vector backend %s, embedding provider %s)", cfg.Port, cfg.VectorBackend, cfg.EmbeddingProvider)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}

// build constructs every component in dependency order and returns the
// ready-to-serve *api.Server plus a cleanup func that releases backing
// connections.
func build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*api.Server, func(), error) {
	store := kv.New(kv.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})

	vectors, vectorsCleanup, err := buildVectorIndex(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("vector index setup: %w", err)
	}
	if err := vectors.EnsureCollection(ctx); err != nil {
		vectorsCleanup()
		_ = store.Close()
		return nil, nil, fmt.Errorf("ensure vector collection: %w", err)
	}

	rawEmbedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		vectorsCleanup()
		_ = store.Close()
		return nil, nil, fmt.Errorf("embedder setup: %w", err)
	}
	embedder := embeddings.NewCachingEmbedder(rawEmbedder, store, logger)

	lexicon := lexical.New()
	dao := knowledge.New(vectors, lexicon, embedder, store, logger)
	ext := extractor.New(embedder)
	classifier := intent.New(cfg.IntentModelPath, logger)
	mem := memory.New(store)
	sched := schedule.New(store)

	orch := orchestrator.New(dao, ext, classifier, mem, sched, logger)

	srv := api.New(cfg, logger, orch, dao, sched, mem, store, vectors)

	cleanup := func() {
		vectorsCleanup()
		if err := store.Close(); err != nil {
			logger.Warn("close kv store: %v", err)
		}
	}
	return srv, cleanup, nil
}

// buildVectorIndex selects the Qdrant or Postgres backend per
// config.Config.VectorBackend (SPEC_FULL.md §6).
func buildVectorIndex(ctx context.Context, cfg config.Config) (vectorindex.Index, func(), error) {
	switch cfg.VectorBackend {
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connection: %w", err)
		}
		idx := vectorindex.NewPostgresIndex(pool, cfg.EmbeddingDim)
		return idx, func() { _ = idx.Close() }, nil

	case "qdrant", "":
		port := 6334
		if cfg.QdrantPort != "" {
			if _, err := fmt.Sscanf(cfg.QdrantPort, "%d", &port); err != nil {
				return nil, nil, fmt.Errorf("parse QDRANT_PORT %q: %w", cfg.QdrantPort, err)
			}
		}
		idx, err := vectorindex.NewQdrantIndex(ctx, cfg.QdrantHost, port, cfg.CollectionName, cfg.EmbeddingDim)
		if err != nil {
			return nil, nil, fmt.Errorf("qdrant connection: %w", err)
		}
		return idx, func() { _ = idx.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown vector backend: %s", cfg.VectorBackend)
	}
}
