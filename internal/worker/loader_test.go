package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/crules/internal/cache"
	"github.com/ppiankov/crules/internal/source"
)

const testDocument = `Magic: The Gathering Comprehensive Rules

These rules are effective as of February 7, 2025.

Introduction

Intro text.

Contents

1. Game Concepts
Glossary
Credits

1. Game Concepts

100. General

100.1. These Magic rules apply to any Magic game.

100.1a A two-player game is a game that begins with only two players.

Example: Two players sit down.

Glossary

Active Player
The player whose turn it is.

Credits

Everyone.
`

// mockFetcher serves documents from memory
type mockFetcher struct {
	docs  map[string]string
	calls int32
}

func (f *mockFetcher) FetchWithRetry(ctx context.Context, rawURL string) (*source.FetchResult, error) {
	atomic.AddInt32(&f.calls, 1)
	text, ok := f.docs[rawURL]
	if !ok {
		return nil, &source.StatusError{Code: 404, Status: "404 Not Found"}
	}
	return &source.FetchResult{
		Document: source.Document{Name: source.NameFromURL(rawURL), Text: text},
		FinalURL: rawURL,
	}, nil
}

func writeDocument(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoader_LoadOneFile(t *testing.T) {
	path := writeDocument(t, "MagicCompRules.txt", testDocument)
	loader := NewLoader(nil, nil, nil, 1, nil)

	result := loader.LoadOne(context.Background(), path)
	if result.Err != nil {
		t.Fatalf("LoadOne: %v", result.Err)
	}
	if result.Edition.EffectiveDate != "February 7, 2025" {
		t.Errorf("unexpected date %q", result.Edition.EffectiveDate)
	}
	if result.Stats.Rules != 4 || result.Stats.Examples != 1 {
		t.Errorf("unexpected stats %+v", result.Stats)
	}
	if r, ok := result.Edition.Lookup("100.1a"); !ok || len(r.Examples) != 1 {
		t.Errorf("expected 100.1a with one example, got %v", r)
	}
}

func TestLoader_LoadOneURL(t *testing.T) {
	url := "https://media.example.com/rules/MagicCompRules.txt"
	fetcher := &mockFetcher{docs: map[string]string{url: testDocument}}
	loader := NewLoader(fetcher, nil, nil, 1, nil)

	result := loader.LoadOne(context.Background(), url)
	if result.Err != nil {
		t.Fatalf("LoadOne: %v", result.Err)
	}
	if result.Name != "MagicCompRules.txt" {
		t.Errorf("unexpected name %q", result.Name)
	}
}

func TestLoader_URLWithoutFetcher(t *testing.T) {
	loader := NewLoader(nil, nil, nil, 1, nil)
	result := loader.LoadOne(context.Background(), "https://example.com/cr.txt")
	if result.Err == nil {
		t.Fatal("expected error when fetching is not configured")
	}
}

func TestLoader_CacheHit(t *testing.T) {
	path := writeDocument(t, "cr.txt", testDocument)
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	loader := NewLoader(nil, c, nil, 1, nil)

	first := loader.LoadOne(context.Background(), path)
	if first.Err != nil || first.Cached {
		t.Fatalf("first load: cached=%v err=%v", first.Cached, first.Err)
	}

	second := loader.LoadOne(context.Background(), path)
	if second.Err != nil {
		t.Fatalf("second load: %v", second.Err)
	}
	if !second.Cached {
		t.Error("expected second load to hit the cache")
	}
	if second.Edition != first.Edition {
		t.Error("expected the cached edition to be shared")
	}
}

func TestLoader_LoadKeepsOrder(t *testing.T) {
	urls := []string{
		"https://a.example.com/first.txt",
		"https://b.example.com/missing.txt",
		"https://c.example.com/third.txt",
	}
	fetcher := &mockFetcher{docs: map[string]string{
		urls[0]: testDocument,
		urls[2]: strings.Replace(testDocument, "February 7, 2025", "April 4, 2025", 1),
	}}
	loader := NewLoader(fetcher, nil, nil, 3, nil)

	corpus, results := loader.Load(context.Background(), urls)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Location != urls[i] {
			t.Errorf("result %d is for %s", i, r.Location)
		}
	}

	var statusErr *source.StatusError
	if !errors.As(results[1].Err, &statusErr) || statusErr.Code != 404 {
		t.Errorf("expected 404 for missing document, got %v", results[1].Err)
	}

	if len(corpus.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(corpus.Documents))
	}
	if corpus.Documents[0].Name != "first.txt" || corpus.Documents[1].Name != "third.txt" {
		t.Errorf("unexpected document order %q, %q", corpus.Documents[0].Name, corpus.Documents[1].Name)
	}
	if got := corpus.Documents[1].Edition.EffectiveDate; got != "April 4, 2025" {
		t.Errorf("unexpected date %q", got)
	}
	if _, ok := corpus.Lookup("third.txt", "100.1"); !ok {
		t.Error("expected 100.1 in third.txt")
	}
}

func TestLoader_LoadEmpty(t *testing.T) {
	loader := NewLoader(nil, nil, nil, 2, nil)
	corpus, results := loader.Load(context.Background(), nil)
	if len(corpus.Documents) != 0 || len(results) != 0 {
		t.Errorf("expected empty corpus, got %d documents %d results", len(corpus.Documents), len(results))
	}
}

func TestLoader_LoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := NewLoader(&mockFetcher{}, nil, nil, 1, nil)
	corpus, results := loader.Load(ctx, []string{"https://example.com/a.txt", "https://example.com/b.txt"})

	if len(results) != 2 {
		t.Fatalf("expected a result per location, got %d", len(results))
	}
	for _, r := range results {
		if r.Err == nil {
			t.Errorf("expected error for %s", r.Location)
		}
	}
	if len(corpus.Documents) != 0 {
		t.Errorf("expected no documents, got %d", len(corpus.Documents))
	}
}

func TestReadLocations(t *testing.T) {
	content := `# editions
https://media.example.com/2025.txt

./local/cr.txt
https://media.example.com/2025.txt
  # indented comment
`
	path := writeDocument(t, "locations.txt", content)

	locations, err := ReadLocations(path)
	if err != nil {
		t.Fatalf("ReadLocations: %v", err)
	}
	want := []string{"https://media.example.com/2025.txt", "./local/cr.txt"}
	if len(locations) != len(want) {
		t.Fatalf("expected %v, got %v", want, locations)
	}
	for i := range want {
		if locations[i] != want[i] {
			t.Errorf("location %d: got %q want %q", i, locations[i], want[i])
		}
	}

	if _, err := ReadLocations(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoader_LoadDuplicateNames(t *testing.T) {
	urls := []string{
		"https://media.example.com/2023/MagicCompRules.txt",
		"https://media.example.com/2024/MagicCompRules.txt",
		"https://media.example.com/2025/MagicCompRules.txt",
	}
	fetcher := &mockFetcher{docs: map[string]string{
		urls[0]: strings.Replace(testDocument, "February 7, 2025", "June 9, 2023", 1),
		urls[1]: strings.Replace(testDocument, "February 7, 2025", "August 2, 2024", 1),
		urls[2]: testDocument,
	}}
	loader := NewLoader(fetcher, nil, nil, 3, nil)

	corpus, results := loader.Load(context.Background(), urls)

	want := []string{"MagicCompRules.txt", "MagicCompRules-2.txt", "MagicCompRules-3.txt"}
	dates := []string{"June 9, 2023", "August 2, 2024", "February 7, 2025"}
	for i, name := range want {
		if results[i].Name != name {
			t.Errorf("result %d: got name %q want %q", i, results[i].Name, name)
		}
		doc, ok := corpus.Document(name)
		if !ok {
			t.Errorf("document %q not found", name)
			continue
		}
		if doc.Edition.EffectiveDate != dates[i] {
			t.Errorf("document %q: got date %q want %q", name, doc.Edition.EffectiveDate, dates[i])
		}
	}
}

func TestUniqueName(t *testing.T) {
	used := make(map[string]int)
	got := []string{
		uniqueName("cr.txt", used),
		uniqueName("cr.txt", used),
		uniqueName("cr-2.txt", used),
		uniqueName("rules", used),
		uniqueName("rules", used),
	}
	want := []string{"cr.txt", "cr-2.txt", "cr-2-2.txt", "rules", "rules-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d: got %q want %q", i, got[i], want[i])
		}
	}
}
