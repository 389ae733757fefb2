package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rendis/batchml/internal/expressions"
	"github.com/rendis/batchml/pkg/schema"
)

// Settings holds the application configuration.
// Priority: flags > env vars > settings.json > defaults.
type Settings struct {
	ServiceURL string `json:"service_url"`
	OutDir     string `json:"out_dir"`
	LogLevel   string `json:"log_level"`
	ListenAddr string `json:"listen_addr"`
	Timeout    string `json:"timeout"`
}

func defaultSettings() Settings {
	return Settings{
		ServiceURL: "http://localhost:8000",
		OutDir:     ".",
		LogLevel:   "info",
		ListenAddr: ":8000",
		Timeout:    "30s",
	}
}

func batchmlDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".batchml"
	}
	return filepath.Join(home, ".batchml")
}

func settingsPath() string {
	return filepath.Join(batchmlDir(), "settings.json")
}

func loadSettings(path string, getenv func(string) string) Settings {
	s := defaultSettings()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &s)
	}

	// Layer 3: env vars override.
	for key, field := range map[string]*string{
		"BATCHML_SERVICE_URL": &s.ServiceURL,
		"BATCHML_OUT_DIR":     &s.OutDir,
		"BATCHML_LOG_LEVEL":   &s.LogLevel,
		"BATCHML_LISTEN_ADDR": &s.ListenAddr,
		"BATCHML_TIMEOUT":     &s.Timeout,
	} {
		if v := getenv(key); v != "" {
			*field = v
		}
	}
	return s
}

// TimeoutDuration parses Timeout; an unparsable value selects the default.
func (s Settings) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(s.Timeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// loadWorkspace reads a workspace file. YAML files are converted to JSON
// first so the workspace types decode with their JSON rules.
func loadWorkspace(path string) (*schema.Workspace, error) {
	data, err := readStructured(path)
	if err != nil {
		return nil, err
	}
	var ws schema.Workspace
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&ws); err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeInvalidInput, "decode workspace %s", path).WithCause(err)
	}
	return &ws, nil
}

// loadRecipeConfig reads a YAML or JSON recipe config. An empty path
// yields nil, which selects every default.
func loadRecipeConfig(path string) (*schema.RecipeConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var rc schema.RecipeConfig
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeInvalidInput, "decode config %s", path).WithCause(err)
	}
	return &rc, nil
}

// loadSnapshot reads a guard snapshot {signals, completed}. An empty path
// yields the empty snapshot.
func loadSnapshot(path string) (expressions.Snapshot, error) {
	var snap expressions.Snapshot
	if path == "" {
		return snap, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("read signals: %w", err)
	}
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return snap, schema.NewErrorf(schema.ErrCodeInvalidInput, "decode signals %s", path).WithCause(err)
	}
	return snap, nil
}

func readStructured(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, schema.NewErrorf(schema.ErrCodeInvalidInput, "decode %s", path).WithCause(err)
		}
		return json.Marshal(doc)
	}
	return data, nil
}
