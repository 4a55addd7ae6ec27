package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/daybook/internal/clock"
)

func TestHighlight(t *testing.T) {
	got := highlight("had <mark>coffee</mark> with <mark>John</mark>.", "<mark>", "</mark>")
	want := "had " + markStyle.Render("coffee") + " with " + markStyle.Render("John") + "."
	if got != want {
		t.Errorf("highlight = %q, want %q", got, want)
	}
}

func TestHighlightLeavesUnclosedMarker(t *testing.T) {
	in := "a <mark>dangling"
	if got := highlight(in, "<mark>", "</mark>"); got != in {
		t.Errorf("got %q, want input unchanged", got)
	}
	if got := highlight(in, "", ""); got != in {
		t.Errorf("empty markers: got %q", got)
	}
}

func TestLoadConfigFlagOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("db: "+filepath.Join(dir, "file.db")+"\ntimezone: America/New_York\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DAYBOOK_DB", "")

	oldCfg, oldDB := cfgPath, dbPath
	t.Cleanup(func() { cfgPath, dbPath = oldCfg, oldDB })

	cfgPath, dbPath = path, ""
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.DB != filepath.Join(dir, "file.db") {
		t.Errorf("db = %q", cfg.DB)
	}
	if cfg.Timezone != "America/New_York" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}

	dbPath = filepath.Join(dir, "flag.db")
	cfg, err = loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.DB != dbPath {
		t.Errorf("db = %q, want flag value %q", cfg.DB, dbPath)
	}
}

func TestOpenAppWiresSQLiteArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("archive:\n  cache_size: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DAYBOOK_DB", "")
	t.Setenv("DAYBOOK_BACKEND", "")
	t.Setenv("DAYBOOK_SYNTH_PROVIDER", "")

	oldCfg, oldDB := cfgPath, dbPath
	t.Cleanup(func() { cfgPath, dbPath = oldCfg, oldDB })
	cfgPath, dbPath = path, filepath.Join(dir, "daybook.db")

	a, err := openApp()
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	defer a.Close()

	if a.gen != nil {
		t.Error("expected no generator without a provider")
	}
	if _, err := a.store.Upsert(t.Context(), "2024-01-01", "# Entry"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	entry, err := a.store.Get(t.Context(), "2024-01-01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Content != "# Entry" {
		t.Errorf("content = %q", entry.Content)
	}

	b, err := a.bridge()
	if err != nil || b != nil {
		t.Errorf("bridge = %v, %v; want nil without a source", b, err)
	}
}

func TestAppTodayUsesClockAndZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	// 03:00 UTC on Jan 2 is still Jan 1 in New York.
	a := &app{clock: clock.Fixed(time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)), loc: ny}
	if got := a.today(); got != "2024-01-01" {
		t.Errorf("today = %q, want 2024-01-01", got)
	}
}
