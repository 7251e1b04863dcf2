package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBuildDefaults(t *testing.T) {
	cfg, err := Build("", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.Store.RetryAttempts != 3 || cfg.Store.RetryBase != 200*time.Millisecond {
		t.Errorf("store retry = %+v", cfg.Store)
	}
	if cfg.Matcher.MinSharedWords != 2 {
		t.Errorf("MinSharedWords = %d", cfg.Matcher.MinSharedWords)
	}
}

func TestBuildReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "listen_addr: \":9090\"\nmatcher:\n  min_shared_words: 3\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Build(path, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.Matcher.MinSharedWords != 3 {
		t.Errorf("MinSharedWords = %d", cfg.Matcher.MinSharedWords)
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	data := "column_aliases:\n  narration: [libelle]\ncategories:\n  - category: Purchase\n    keywords: [achat]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if got := rules.ColumnAliases["narration"]; len(got) != 1 || got[0] != "libelle" {
		t.Errorf("aliases = %v", rules.ColumnAliases)
	}
	if len(rules.Categories) != 1 || rules.Categories[0].Keywords[0] != "achat" {
		t.Errorf("categories = %v", rules.Categories)
	}
}
