// Command huurrag drives the retrieval pipeline from the shell: ingest a
// corpus, search or ask it, evaluate retrieval quality, compare chunking
// strategies, or crawl a documentation site into the corpus directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"huurrag/internal/chunker"
	"huurrag/internal/comparator"
	"huurrag/internal/config"
	"huurrag/internal/crawler"
	"huurrag/internal/embedder"
	"huurrag/internal/evaluator"
	"huurrag/internal/index"
	"huurrag/internal/llm"
	"huurrag/internal/loader"
	"huurrag/internal/rag"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	log.SetOutput(os.Stderr)

	var (
		cfgPath  = flag.String("config", "huurrag.yaml", "path to YAML config file")
		strategy = flag.String("strategy", "", "chunking strategy: recursive, tokens, sentence, statute")
		size     = flag.Int("size", 0, "chunk size in bytes (tokens for the tokens strategy)")
		overlap  = flag.Int("overlap", -1, "chunk overlap in bytes (tokens for the tokens strategy)")
		topK     = flag.Int("topk", 0, "number of chunks to retrieve")
		dataDir  = flag.String("data", "", "corpus directory")

		ingest   = flag.Bool("ingest", false, "chunk, embed and index the corpus (upserts into the existing collection)")
		rebuild  = flag.Bool("rebuild", false, "drop the collection before ingesting")
		search   = flag.String("search", "", "search the index and print the top-k chunks")
		ask      = flag.String("ask", "", "ask a question and print a grounded answer")
		eval     = flag.Bool("eval", false, "evaluate retrieval against the labelled question set")
		compare  = flag.Bool("compare", false, "compare the default chunking configurations")
		crawl    = flag.String("crawl", "", "crawl a documentation site into the corpus directory")
		parallel = flag.Bool("parallel", false, "run compared strategies concurrently")
		keep     = flag.Bool("keep-index", false, "keep per-strategy collections after a comparison")
		out      = flag.String("out", "", "write the comparison report as JSON to this file")
		showVer  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("huurrag %s (driver: %s, build: %s)\n", version, index.DriverName, index.BuildMode)
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *strategy != "" {
		cfg.Chunking.Strategy = *strategy
	}
	if *size > 0 {
		cfg.Chunking.Size = *size
	}
	if *overlap >= 0 {
		cfg.Chunking.Overlap = *overlap
	}
	if *topK > 0 {
		cfg.Retrieval.TopK = *topK
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, action{
		ingest:   *ingest,
		rebuild:  *rebuild,
		search:   *search,
		ask:      *ask,
		eval:     *eval,
		compare:  *compare,
		crawl:    *crawl,
		parallel: *parallel,
		keep:     *keep,
		out:      *out,
	}); err != nil {
		log.Fatal(err)
	}
}

type action struct {
	ingest   bool
	rebuild  bool
	search   string
	ask      string
	eval     bool
	compare  bool
	crawl    string
	parallel bool
	keep     bool
	out      string
}

func run(ctx context.Context, cfg *config.Config, act action) error {
	// Crawling needs no index or embedder.
	if act.crawl != "" {
		c := crawler.New(&crawler.HTTPFetcher{}, cfg.DataDir, cfg.Crawler.MaxDepth, cfg.Crawler.MaxPages)
		pages, err := c.Crawl(ctx, act.crawl)
		if err != nil {
			return fmt.Errorf("crawl: %w", err)
		}
		log.Printf("crawled %d pages into %s", pages, cfg.DataDir)
		return nil
	}

	idx, err := index.Open(cfg.Index.Backend, cfg.Index.DBPath, cfg.Index.QdrantAddr)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer func() { _ = idx.Close() }()

	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedding.Provider,
		BaseURL:   cfg.Embedding.BaseURL,
		Model:     cfg.Embedding.Model,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	defer func() { _ = emb.Close() }()

	chunkCfg := chunker.Config{
		Strategy: chunker.Strategy(cfg.Chunking.Strategy),
		Size:     cfg.Chunking.Size,
		Overlap:  cfg.Chunking.Overlap,
	}
	if err := chunkCfg.Validate(); err != nil {
		return err
	}

	switch {
	case act.ingest:
		return runIngest(ctx, cfg, idx, emb, chunkCfg, act.rebuild)
	case act.search != "":
		return runSearch(ctx, cfg, idx, emb, chunkCfg, act.search)
	case act.ask != "":
		return runAsk(ctx, cfg, idx, emb, chunkCfg, act.ask)
	case act.eval:
		return runEval(ctx, cfg, idx, emb, chunkCfg)
	case act.compare:
		return runCompare(ctx, cfg, idx, emb, act)
	default:
		flag.Usage()
		return fmt.Errorf("no action given: use -ingest, -search, -ask, -eval, -compare or -crawl")
	}
}

func runIngest(ctx context.Context, cfg *config.Config, idx index.Index, emb embedder.Embedder, chunkCfg chunker.Config, rebuild bool) error {
	docs, err := loader.Load(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	pipeline := rag.New(idx, emb, nil, chunkCfg, cfg.Retrieval.TopK)
	var chunks int
	if rebuild {
		chunks, err = pipeline.Ingest(ctx, docs)
	} else {
		chunks, err = pipeline.Upsert(ctx, docs)
	}
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	log.Printf("indexed %d documents as %d chunks into %s (model %s, dim %d)",
		len(docs), chunks, pipeline.Collection(), emb.Model(), emb.Dimension())
	return nil
}

func runSearch(ctx context.Context, cfg *config.Config, idx index.Index, emb embedder.Embedder, chunkCfg chunker.Config, query string) error {
	pipeline := rag.New(idx, emb, nil, chunkCfg, cfg.Retrieval.TopK)
	hits, err := pipeline.Search(ctx, query, cfg.Retrieval.TopK)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	for i, hit := range hits {
		fmt.Printf("%d. %s (score %.4f)\n%s\n\n", i+1, hit.ChunkID, hit.Score, hit.Chunk.Text)
	}
	return nil
}

func runAsk(ctx context.Context, cfg *config.Config, idx index.Index, emb embedder.Embedder, chunkCfg chunker.Config, question string) error {
	completer, err := llm.NewOpenAIClient("", cfg.Embedding.BaseURL, cfg.LLM.Model)
	if err != nil {
		return fmt.Errorf("init completion model: %w", err)
	}

	pipeline := rag.New(idx, emb, completer, chunkCfg, cfg.Retrieval.TopK)
	answer, hits, err := pipeline.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Println(answer)
	fmt.Println()
	for _, hit := range hits {
		fmt.Printf("  [%s] score %.4f\n", hit.ChunkID, hit.Score)
	}
	return nil
}

func runEval(ctx context.Context, cfg *config.Config, idx index.Index, emb embedder.Embedder, chunkCfg chunker.Config) error {
	questions, err := evaluator.LoadQuestions(cfg.Questions)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	collection := index.CollectionKey(emb.Model(), string(chunkCfg.Strategy), chunkCfg.Size, chunkCfg.Overlap)
	report, err := evaluator.Evaluate(ctx, questions, idx, collection, emb.EmbedQuery, cfg.Retrieval.TopK)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	fmt.Printf("collection: %s\n", collection)
	fmt.Printf("hit@%d: %.3f\nmrr: %.3f\n", report.K, report.HitAtK, report.MRR)
	for _, q := range report.PerQuestion {
		switch {
		case q.Skipped:
			fmt.Printf("  skip  %s\n", q.Question)
		case q.Hit:
			fmt.Printf("  @%-3d %s\n", q.Rank, q.Question)
		default:
			fmt.Printf("  miss  %s\n", q.Question)
		}
	}
	return nil
}

func runCompare(ctx context.Context, cfg *config.Config, idx index.Index, emb embedder.Embedder, act action) error {
	docs, err := loader.Load(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	questions, err := evaluator.LoadQuestions(cfg.Questions)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	comp := comparator.New(idx, emb)
	reports, err := comp.Compare(ctx, docs, questions, comparator.Options{
		K:         cfg.Retrieval.TopK,
		Parallel:  act.parallel,
		KeepIndex: act.keep,
	})
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	fmt.Print(comparator.FormatTable(reports))

	if act.out != "" {
		f, err := os.Create(act.out)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := comparator.WriteJSON(f, emb.Model(), reports); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Printf("wrote comparison report to %s", act.out)
	}
	return nil
}
