// Package worker loads many rules documents concurrently into a corpus.
package worker

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/crules/internal/cache"
	"github.com/ppiankov/crules/internal/logging"
	"github.com/ppiankov/crules/internal/parser"
	"github.com/ppiankov/crules/internal/rules"
	"github.com/ppiankov/crules/internal/source"
)

// Fetcher downloads a document from a URL
type Fetcher interface {
	FetchWithRetry(ctx context.Context, rawURL string) (*source.FetchResult, error)
}

// LoadResult describes one loaded document
type LoadResult struct {
	Location string
	Name     string
	Edition  *rules.Edition
	Stats    parser.Stats // zero when Cached
	Cached   bool
	Err      error
}

// GetError returns the load error, if any
func (r *LoadResult) GetError() error {
	return r.Err
}

// Loader reads, fetches and parses rules documents. Local paths and "-"
// (stdin) are read directly; http(s) URLs go through the fetcher and the
// per-host limiter.
type Loader struct {
	fetcher Fetcher
	cache   cache.Cache // nil disables caching
	limiter *Limiter
	workers int
	logger  *slog.Logger
}

// NewLoader creates a loader. cache and limiter may be nil.
func NewLoader(fetcher Fetcher, c cache.Cache, limiter *Limiter, workers int, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = logging.Discard()
	}
	if limiter == nil {
		limiter = NewLimiter(0, 1)
	}
	return &Loader{
		fetcher: fetcher,
		cache:   c,
		limiter: limiter,
		workers: workers,
		logger:  logger,
	}
}

// LoadOne loads a single document
func (l *Loader) LoadOne(ctx context.Context, location string) *LoadResult {
	result := &LoadResult{Location: location}

	doc, err := l.read(ctx, location)
	if err != nil {
		result.Err = err
		return result
	}
	result.Name = doc.Name

	key := cache.Key(doc.Text)
	if l.cache != nil {
		if edition, ok := l.cache.Get(key); ok {
			l.logger.Debug("cache hit", "document", doc.Name, "key", key)
			result.Edition = edition
			result.Cached = true
			return result
		}
	}

	edition, stats := parser.ParseWithStats(doc.Text)
	result.Edition = &edition
	result.Stats = stats

	l.logger.Debug("parsed document",
		"document", doc.Name,
		"effective_date", edition.EffectiveDate,
		"lines", stats.Lines,
		"rules", stats.Rules,
		"examples", stats.Examples,
		"glossary_terms", stats.GlossaryTerms,
	)
	if stats.DroppedLines > 0 || stats.DroppedExamples > 0 || stats.DroppedTerms > 0 {
		l.logger.Info("dropped unrecognised content",
			"document", doc.Name,
			"lines", stats.DroppedLines,
			"examples", stats.DroppedExamples,
			"terms", stats.DroppedTerms,
		)
	}
	if stats.Rules == 0 {
		l.logger.Warn("no rules found; is this a comprehensive rules text file?", "document", doc.Name)
	}

	if l.cache != nil {
		if err := l.cache.Set(key, result.Edition); err != nil {
			l.logger.Warn("cache write failed", "document", doc.Name, "error", err)
		}
	}

	return result
}

func (l *Loader) read(ctx context.Context, location string) (*source.Document, error) {
	if !source.IsURL(location) {
		return source.ReadFile(location)
	}

	if l.fetcher == nil {
		return nil, fmt.Errorf("%s: fetching is not configured", location)
	}
	if err := l.limiter.Wait(ctx, location); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	fetched, err := l.fetcher.FetchWithRetry(ctx, location)
	if err != nil {
		return nil, err
	}
	return &fetched.Document, nil
}

type loadJob struct {
	loader   *Loader
	location string
}

func (j *loadJob) Execute(ctx context.Context) Result {
	return j.loader.LoadOne(ctx, j.location)
}

// Load loads every location concurrently. Successfully loaded documents
// are added to the corpus in the order the locations were given; the
// returned results line up with locations. Repeated document names get a
// numeric suffix ("cr.txt", "cr-2.txt") so each stays addressable.
func (l *Loader) Load(ctx context.Context, locations []string) (*rules.Corpus, []*LoadResult) {
	corpus := &rules.Corpus{}
	if len(locations) == 0 {
		return corpus, []*LoadResult{}
	}

	pool := NewPool(ctx, l.workers)
	pool.Start()

	for _, location := range locations {
		if !pool.Submit(&loadJob{loader: l, location: location}) {
			break
		}
	}

	results := pool.Wait()

	loaded := make([]*LoadResult, len(locations))
	names := make(map[string]int)
	for i, location := range locations {
		var lr *LoadResult
		if i < len(results) && results[i] != nil {
			lr = results[i].(*LoadResult)
		} else {
			lr = &LoadResult{Location: location, Err: fmt.Errorf("not loaded: %w", context.Cause(ctx))}
		}
		loaded[i] = lr
		if lr.Err == nil {
			lr.Name = uniqueName(lr.Name, names)
			corpus.Add(lr.Name, *lr.Edition)
		}
	}

	return corpus, loaded
}

// uniqueName returns name, or name with "-N" before its extension when
// name was already used.
func uniqueName(name string, used map[string]int) string {
	used[name]++
	if used[name] == 1 {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := used[name]; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", base, n, ext)
		if used[candidate] == 0 {
			used[candidate] = 1
			return candidate
		}
	}
}

// ReadLocations reads document locations from a file, one per line.
// Blank lines and lines starting with # are skipped; duplicates are
// dropped.
func ReadLocations(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var locations []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			locations = append(locations, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return locations, nil
}
