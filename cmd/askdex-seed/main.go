// Command askdex-seed loads data into an askdex deployment: the items
// command chunks and embeds corpus documents and posts them to a running
// server, the faq command writes curated question/answer pairs straight
// into the FAQ store in Redis.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/askdex/internal/config"
	dbRedis "github.com/kailas-cloud/askdex/internal/db/redis"
	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/category"
	domfaq "github.com/kailas-cloud/askdex/internal/domain/faq"
	"github.com/kailas-cloud/askdex/internal/domain/item"
	"github.com/kailas-cloud/askdex/internal/ingest"
	logpkg "github.com/kailas-cloud/askdex/internal/logger"
	faqrepo "github.com/kailas-cloud/askdex/internal/repository/faq"
	chiTransport "github.com/kailas-cloud/askdex/internal/transport/chi"
	openaiProv "github.com/kailas-cloud/askdex/internal/transport/openai"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the CLI; split out so tests can drive the real command tree.
func newApp() *cli.App {
	return &cli.App{
		Name:  "askdex-seed",
		Usage: "Load corpus documents and FAQ entries into an askdex deployment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Configuration environment (local, dev, prod)",
				Value:   config.GetEnv(),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "items",
				Usage:  "Chunk, embed and index corpus documents through a running server",
				Action: itemsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dir",
						Aliases:  []string{"d"},
						Usage:    "Directory with corpus documents (one *.yaml per document)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "server",
						Usage: "Base URL of the running askdex server",
						Value: "http://localhost:8080",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "Bearer token for the server API (defaults to the first configured key)",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Target chunk length in characters",
						Value: ingest.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Characters shared by adjacent chunks",
						Value: ingest.DefaultChunkOverlap,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Items per POST /v1/items request",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent embedding workers",
						Value: 4,
					},
				},
			},
			{
				Name:   "faq",
				Usage:  "Load FAQ entries from a YAML file into the FAQ store",
				Action: faqCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "YAML file with question/answer entries",
						Required: true,
					},
				},
			},
		},
	}
}

func itemsCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is not configured; the items command embeds chunks locally")
	}

	logger, err := logpkg.NewLogger(c.String("env"), cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	docs, err := readCorpus(c.String("dir"))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no corpus documents found in %s", c.String("dir"))
	}

	apiKey := c.String("api-key")
	if apiKey == "" && len(cfg.Auth.APIKeys) > 0 {
		apiKey = cfg.Auth.APIKeys[0]
	}

	// The document instruction must match the server's, otherwise seeded
	// vectors and query vectors end up in different spaces.
	var embedder domain.Embedder = openaiProv.NewEmbedder(&openaiProv.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Index.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	if cfg.Embedding.DocumentInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.Embedding.DocumentInstruction)
	}

	indexer := newServerIndexer(c.String("server"), apiKey, c.Int("batch-size"))

	// No tagger: the server tags untagged items on add.
	pipeline, err := ingest.New(indexer, embedder,
		ingest.WithChunkSize(c.Int("chunk-size")),
		ingest.WithChunkOverlap(c.Int("chunk-overlap")),
		ingest.WithPoolSize(c.Int("pool-size")),
		ingest.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Server: %s\n", c.String("server"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintf(os.Stderr, "Documents: %d\n", len(docs))
	fmt.Fprintln(os.Stderr)

	report, err := pipeline.Ingest(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %d/%d chunks from %d documents in %s\n",
		report.Indexed, report.Chunks, report.Documents, report.Elapsed.Round(time.Millisecond))
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d chunks failed", report.Failed, report.Chunks)
	}
	return nil
}

func faqCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(cfg.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is not configured; the FAQ store lives in Redis")
	}

	entries, err := readFAQ(c.String("file"))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no FAQ entries found in %s", c.String("file"))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		return fmt.Errorf("database is not ready: %w", err)
	}

	// Keys derive from the normalized question, so re-running the same
	// file overwrites entries in place.
	repo := faqrepo.NewRedis(store)
	for _, e := range entries {
		if err := repo.Put(ctx, e); err != nil {
			return fmt.Errorf("failed to store entry %q: %w", e.Question(), err)
		}
	}

	fmt.Fprintf(os.Stderr, "Loaded %d FAQ entries from %s\n", len(entries), c.String("file"))
	return nil
}

// corpusSchema is the on-disk shape of one corpus document.
type corpusSchema struct {
	Title    string `yaml:"title"`
	Category string `yaml:"category"` // optional, defaults to general
	Text     string `yaml:"text"`
}

// readCorpus reads every *.yaml/*.yml file in dir as one document each.
// Files load in filename order, so chunk insertion order is reproducible.
func readCorpus(dir string) ([]ingest.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	docs := make([]ingest.Document, 0, len(names))
	for _, name := range names {
		doc, err := readCorpusFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// readCorpusFile reads a single corpus document.
func readCorpusFile(path string) (ingest.Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return ingest.Document{}, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	var f corpusSchema
	if err := yaml.Unmarshal(data, &f); err != nil {
		return ingest.Document{}, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	if strings.TrimSpace(f.Title) == "" {
		return ingest.Document{}, fmt.Errorf("document %s: title is required", path)
	}
	if strings.TrimSpace(f.Text) == "" {
		return ingest.Document{}, fmt.Errorf("document %s: text is required", path)
	}

	cat := category.General
	if f.Category != "" {
		cat = category.Category(strings.ToLower(f.Category))
		if !cat.IsValid() {
			return ingest.Document{}, fmt.Errorf("document %s: unknown category %q", path, f.Category)
		}
	}

	return ingest.Document{Title: f.Title, Text: f.Text, Category: cat}, nil
}

// faqSchema is the on-disk shape of an FAQ file.
type faqSchema struct {
	Entries []struct {
		Question string `yaml:"question"`
		Answer   string `yaml:"answer"`
	} `yaml:"entries"`
}

// readFAQ reads and validates an FAQ file.
func readFAQ(path string) ([]domfaq.Entry, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read FAQ file %s: %w", path, err)
	}

	var f faqSchema
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse FAQ file %s: %w", path, err)
	}

	entries := make([]domfaq.Entry, 0, len(f.Entries))
	for i, raw := range f.Entries {
		e, err := domfaq.New(raw.Question, raw.Answer)
		if err != nil {
			return nil, fmt.Errorf("FAQ file %s: entries[%d]: %w", path, i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// serverIndexer posts item batches to a running askdex server. The index
// lives in the server process, so seeding goes through the item API.
type serverIndexer struct {
	baseURL   string
	apiKey    string
	batchSize int
	client    *http.Client
}

func newServerIndexer(baseURL, apiKey string, batchSize int) *serverIndexer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &serverIndexer{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		batchSize: batchSize,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Add posts the items in batches of at most batchSize, stopping at the
// first rejected batch.
func (s *serverIndexer) Add(items ...item.Item) error {
	for start := 0; start < len(items); start += s.batchSize {
		end := start + s.batchSize
		if end > len(items) {
			end = len(items)
		}
		if err := s.postBatch(items[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *serverIndexer) postBatch(batch []item.Item) error {
	req := chiTransport.AddItemsRequest{
		Items: make([]chiTransport.ItemPayload, 0, len(batch)),
	}
	for i := range batch {
		it := &batch[i]
		req.Items = append(req.Items, chiTransport.ItemPayload{
			ID:          it.ID(),
			Title:       it.Title(),
			Description: it.Description(),
			Category:    string(it.Category()),
			Tags:        it.Tags(),
			Vector:      it.Vector(),
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, s.baseURL+"/v1/items", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var apiErr chiTransport.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return fmt.Errorf("server rejected batch: %s (%s)", apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("server rejected batch: HTTP %d", resp.StatusCode)
	}

	var result chiTransport.AddItemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if result.Failed > 0 {
		for _, ir := range result.Items {
			if ir.Error != nil {
				return fmt.Errorf("item %s rejected: %s", ir.ID, ir.Error.Message)
			}
		}
		return fmt.Errorf("%d of %d items rejected", result.Failed, len(batch))
	}
	return nil
}
