package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cognicore/commentprep/internal/llm"
	"github.com/cognicore/commentprep/pkg/commentprep"
	"github.com/cognicore/commentprep/pkg/commentprep/config"
	"github.com/cognicore/commentprep/pkg/commentprep/keywords"
	"github.com/cognicore/commentprep/pkg/commentprep/record"
	"github.com/cognicore/commentprep/pkg/commentprep/sentiment"
	"github.com/cognicore/commentprep/pkg/commentprep/store"
	"github.com/cognicore/commentprep/pkg/commentprep/store/sqlite"
)

type options struct {
	configPath   string
	stoplistPath string
	lexiconPath  string
	field        string
	workers      int
	keywords     int
	dbPath       string
	classifier   sentiment.Classifier
}

type report struct {
	RunID    string             `json:"run_id"`
	Rows     int                `json:"rows"`
	Errors   int                `json:"errors"`
	Keywords []keywords.Keyword `json:"keywords,omitempty"`
}

func main() {
	var (
		input        = flag.String("input", "", "Path to JSONL input (default stdin)")
		output       = flag.String("output", "", "Path to JSONL output (default stdout)")
		configPath   = flag.String("config", "", "Pipeline config YAML (optional)")
		stoplistPath = flag.String("stoplist", "", "Stoplist file, overrides the config (optional)")
		lexiconPath  = flag.String("lexicon", "", "Lexicon file, overrides the config (optional)")
		field        = flag.String("field", "text", "Name of the text field")
		workers      = flag.Int("workers", 0, "Concurrent rows (0 keeps the config value)")
		topKeywords  = flag.Int("keywords", 0, "Extract and report this many batch keywords (0 keeps the config)")
		dbPath       = flag.String("db", "", "SQLite run store (optional)")
		llmBase      = flag.String("llm-base", "", "Optional: OpenAI-compatible sentiment endpoint")
		llmModel     = flag.String("llm-model", "", "Optional: model name for sentiment")
		llmAPIKey    = flag.String("llm-api-key", "", "Optional: API key for the sentiment endpoint")
	)
	flag.Parse()

	in := io.Reader(os.Stdin)
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("open input: %v", err)
		}
		defer f.Close()
		in = f
	}

	out := io.Writer(os.Stdout)
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	opts := options{
		configPath:   *configPath,
		stoplistPath: *stoplistPath,
		lexiconPath:  *lexiconPath,
		field:        *field,
		workers:      *workers,
		keywords:     *topKeywords,
		dbPath:       *dbPath,
	}
	if *llmBase != "" {
		if *llmModel == "" {
			log.Fatal("--llm-model required with --llm-base")
		}
		opts.classifier = &llm.Client{BaseURL: *llmBase, Model: *llmModel, APIKey: *llmAPIKey}
	}

	rep, err := run(context.Background(), opts, in, out)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("run %s: %d rows, %d errors", rep.RunID, rep.Rows, rep.Errors)
	if len(rep.Keywords) > 0 {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			log.Fatalf("marshal report: %v", err)
		}
		fmt.Fprintln(os.Stderr, string(data))
	}
}

// run processes one JSONL batch from in and writes the annotated rows to
// out.
func run(ctx context.Context, opts options, in io.Reader, out io.Writer) (*report, error) {
	p, file, err := buildPreprocessor(opts)
	if err != nil {
		return nil, err
	}

	records, err := record.ReadJSONL(in)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	batch, err := p.ProcessBatch(ctx, records, opts.field)
	if err != nil {
		return nil, fmt.Errorf("process batch: %w", err)
	}
	for _, e := range batch.Errors {
		log.Printf("Warning: %v", e)
	}

	if opts.classifier != nil {
		if err := sentiment.Annotate(ctx, opts.classifier, batch); err != nil {
			return nil, fmt.Errorf("sentiment: %w", err)
		}
	}

	if err := record.WriteJSONL(out, batch.Records); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	if opts.dbPath != "" {
		if err := saveRun(ctx, opts.dbPath, batch, file); err != nil {
			return nil, err
		}
	}

	return &report{
		RunID:    batch.ID.String(),
		Rows:     len(batch.Records),
		Errors:   len(batch.Errors),
		Keywords: batch.Keywords,
	}, nil
}

func buildPreprocessor(opts options) (*commentprep.Preprocessor, config.File, error) {
	loader := config.Loader{
		ConfigPath:   opts.configPath,
		StoplistPath: opts.stoplistPath,
		LexiconPath:  opts.lexiconPath,
	}
	comp, err := loader.Load()
	if err != nil {
		return nil, config.File{}, fmt.Errorf("load configs: %w", err)
	}
	if opts.workers == 0 && opts.keywords == 0 {
		return comp.Preprocessor, comp.File, nil
	}

	// Flags override the file.
	pre := comp.Options
	if opts.workers > 0 {
		pre.Workers = opts.workers
		comp.File.Workers = opts.workers
	}
	if opts.keywords > 0 {
		pre.ExtractKeywords = true
		pre.TopNKeywords = opts.keywords
		comp.File.ExtractKeywords = true
		comp.File.TopNKeywords = opts.keywords
	}
	p, err := commentprep.New(pre)
	if err != nil {
		return nil, config.File{}, fmt.Errorf("build preprocessor: %w", err)
	}
	return p, comp.File, nil
}

func saveRun(ctx context.Context, dbPath string, batch *commentprep.Batch, file config.File) error {
	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	optionsJSON, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	if err := st.SaveRun(ctx, store.FromBatch(batch, string(optionsJSON))); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}
