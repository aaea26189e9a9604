package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Catalog.DataDir != "data" {
		t.Errorf("expected DataDir=data, got %s", cfg.Catalog.DataDir)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default embedding model, got %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimension != 1536 {
		t.Errorf("expected Dimension=1536, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Recommend.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Recommend.TopK)
	}
	if cfg.Recommend.FilteredTopK != 5 {
		t.Errorf("expected FilteredTopK=5, got %d", cfg.Recommend.FilteredTopK)
	}
	if cfg.Explain.Model != "llama-3.1-8b-instant" {
		t.Errorf("expected default explain model, got %s", cfg.Explain.Model)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "courserec.yaml")

	content := `
catalog:
  data_dir: /srv/courses
embedding:
  provider: ollama
  model: all-minilm
  dimension: 384
recommend:
  top_k: 10
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Catalog.DataDir != "/srv/courses" {
		t.Errorf("expected DataDir=/srv/courses, got %s", cfg.Catalog.DataDir)
	}
	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("expected provider=ollama, got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimension != 384 {
		t.Errorf("expected Dimension=384, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Recommend.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Recommend.TopK)
	}
	// Unset sections keep defaults
	if cfg.Explain.TimeoutSeconds != 15 {
		t.Errorf("expected TimeoutSeconds=15, got %d", cfg.Explain.TimeoutSeconds)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "courserec.yaml")

	if err := os.WriteFile(configPath, []byte("catalog: ["), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Recommend.TopK != 3 {
		t.Errorf("expected defaults when no config file, got TopK=%d", cfg.Recommend.TopK)
	}

	content := "recommend:\n  top_k: 7\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "courserec.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Recommend.TopK != 7 {
		t.Errorf("expected TopK=7 from courserec.yaml, got %d", cfg.Recommend.TopK)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "out.yaml")

	cfg := DefaultConfig()
	cfg.Recommend.TopK = 9
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Recommend.TopK != 9 {
		t.Errorf("expected TopK=9 after round trip, got %d", loaded.Recommend.TopK)
	}
}
