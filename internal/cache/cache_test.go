package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/crules/internal/rules"
)

func testEdition() *rules.Edition {
	e := rules.NewEdition()
	e.EffectiveDate = "June 9, 2023"
	r := rules.NewRule("100", "General")
	r.Subrules = []*rules.Rule{rules.NewRule("100.1", "Sub")}
	e.Rules = []*rules.Rule{r}
	e.Glossary["Flying"] = "Evasion."
	return &e
}

func TestKey(t *testing.T) {
	a := Key("Introduction\n")
	b := Key("Introduction\n")
	c := Key("Introduction\r\n")

	if a != b {
		t.Error("same text should produce the same key")
	}
	if a == c {
		t.Error("different text should produce different keys")
	}
	if !strings.HasPrefix(a, "crules-"+formatVersion+"-") {
		t.Errorf("unexpected key %q", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	e := testEdition()

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set("k", e); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || got != e {
		t.Fatal("expected the stored edition back")
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(10*time.Millisecond, time.Minute)
	_ = c.Set("k", testEdition())
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "editions")
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("k", testEdition()); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.EffectiveDate != "June 9, 2023" {
		t.Errorf("unexpected date %q", got.EffectiveDate)
	}
	if _, ok := got.Lookup("100.1"); !ok {
		t.Error("rule tree not restored")
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	if err := c.Set("k", testEdition()); err != nil {
		t.Fatalf("Set: %v", err)
	}

	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(c.path("k"), old, old); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestDiskCache_Corrupt(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("corrupt entry should miss")
	}
	if err := c.Delete("k"); err != nil {
		t.Errorf("deleting a missing entry should succeed, got %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir, time.Hour)
	if err := disk.Set("k", testEdition()); err != nil {
		t.Fatal(err)
	}

	memory := NewMemoryCache(time.Minute, time.Minute)
	c := &LayeredCache{memory: memory, disk: disk}

	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected disk hit")
	}
	if _, ok := memory.Get("k"); !ok {
		t.Error("disk hit should be promoted to memory")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after clear")
	}
}

func TestNewLayeredCache(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Hour)
	e := testEdition()
	if err := c.Set("k", e); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || got != e {
		t.Error("expected memory tier to return the same edition")
	}
	if err := c.Delete("k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}
