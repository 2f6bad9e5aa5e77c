// cmd/recall-mcp is the entry point for the Recall MCP (Model Context
// Protocol) server. It wires the PostgreSQL vector store, the optional Neo4j
// graph store and the OpenAI clients into the memory facade, then serves the
// memory tools over stdio.
//
// Startup sequence:
//  1. Load configuration from environment variables (plus optional YAML file).
//  2. Open the PostgreSQL store and apply the schema.
//  3. Connect to Neo4j when RECALL_ENABLE_GRAPH is set.
//  4. Build the OpenAI chat and embedding clients.
//  5. Create the MCP server over the memory facade.
//  6. Serve JSON-RPC 2.0 requests from stdin, writing responses to stdout.
//
// CRITICAL: ALL logging MUST go to stderr.  Any bytes written to stdout that
// are not valid JSON-RPC 2.0 response frames will corrupt the protocol.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/recallkit/recall/internal/api/mcp"
	"github.com/recallkit/recall/internal/config"
	"github.com/recallkit/recall/internal/llm"
	"github.com/recallkit/recall/internal/memory"
	"github.com/recallkit/recall/internal/storage"
	"github.com/recallkit/recall/internal/storage/neo4j"
	"github.com/recallkit/recall/internal/storage/postgres"
)

func main() {
	// Redirect the default logger to stderr so that any incidental log calls
	// (e.g. from imported packages) never pollute the stdout JSON-RPC stream.
	log.SetOutput(os.Stderr)
	log.SetPrefix("recall-mcp: ")
	log.SetFlags(log.LstdFlags)

	// Load configuration from environment variables.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Set up a root context that is cancelled on SIGINT / SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("received shutdown signal")
		cancel()
	}()

	// Open the PostgreSQL vector store.
	store, err := postgres.NewStore(cfg.Postgres.DSN(), cfg.Postgres.Collection)
	if err != nil {
		log.Fatalf("failed to open postgres store: %v", err)
	}
	defer store.Close()

	if !store.VectorSearchAvailable() {
		log.Println("warning: pgvector extension missing, semantic search disabled")
	}

	// Connect the graph store only when enabled; the facade skips relation
	// handling entirely when it is nil.
	var graph storage.GraphStore
	if cfg.Memory.EnableGraph {
		graphStore, err := neo4j.NewStore(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
		if err != nil {
			log.Fatalf("failed to connect to neo4j: %v", err)
		}
		defer func() {
			if err := graphStore.Close(context.Background()); err != nil {
				log.Printf("neo4j close error: %v", err)
			}
		}()
		graph = graphStore
		log.Printf("graph store enabled at %s", cfg.Neo4j.URI)
	}

	// Build the OpenAI clients. The embedder is wrapped in an LRU cache so
	// repeated queries do not burn embedding calls.
	text := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	})

	embedder, err := llm.NewCachedEmbeddingGenerator(
		llm.NewOpenAIEmbeddingClient(llm.OpenAIEmbeddingConfig{
			APIKey:     cfg.LLM.APIKey,
			Model:      cfg.Embedder.Model,
			Dimensions: cfg.Embedder.Dimension,
		}),
		cfg.Embedder.CacheSize,
	)
	if err != nil {
		log.Fatalf("failed to create embedding cache: %v", err)
	}

	client := memory.NewClient(cfg, store, graph, text, embedder)
	srv := mcp.NewServer(client)

	// Wrap the server in a StdioTransport that reads line-delimited JSON-RPC
	// from stdin and writes responses to stdout.  All logging inside the
	// transport is directed to stderr.
	transport := mcp.NewStdioTransport(srv, os.Stdin, os.Stdout)

	log.Printf("ready, serving JSON-RPC 2.0 on stdin/stdout (model=%s embedder=%s)",
		text.GetModel(), embedder.GetModel())

	if err := transport.Serve(ctx); err != nil {
		// A non-nil error here is normal (context cancellation) or indicates a
		// fatal stdin/stdout problem.  Either way it is informational only.
		log.Printf("transport stopped: %v", err)
	}
}
