package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the main configuration for vaultorg. It is loaded once at
// startup and treated as immutable for the duration of a run.
type Config struct {
	VaultRoot     string `toml:"vault_root"`
	BaseDir       string `toml:"base_dir"`
	LogDir        string `toml:"log_dir"`
	Workers       int    `toml:"workers"`
	Preview       bool   `toml:"preview"`
	MaxPathLength int    `toml:"max_path_length"`

	Index      IndexConfig       `toml:"index"`
	Scan       ScanConfig        `toml:"scan"`
	Folders    FolderConfig      `toml:"folders"`
	Dates      DateConfig        `toml:"dates"`
	Extensions map[string]string `toml:"extensions"` // extension -> MIME overrides
	Rules      []RuleConfig      `toml:"rules"`
}

// IndexConfig configures the checksum registry. This uses a tagged union
// pattern - the Type field determines which other fields are relevant.
type IndexConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ScanConfig configures file discovery.
type ScanConfig struct {
	Ignore []string `toml:"ignore"`
}

// FolderConfig configures the vault folder layout.
type FolderConfig struct {
	Subcategories bool `toml:"subcategories"`
	DateDepth     int  `toml:"date_depth"` // 1=year, 2=+month, 3=+day
}

// DateConfig configures date resolution. SourceOrder lists extractor
// source tags in priority order; it breaks ties when two extractors
// report the same timestamp field with equal provenance.
type DateConfig struct {
	SourceOrder []string `toml:"source_order"`
}

// RuleConfig is one classification rule record. Rules are evaluated by
// descending priority; ties keep declaration order.
type RuleConfig struct {
	Name         string            `toml:"name"`
	Priority     int               `toml:"priority"`
	Category     string            `toml:"category"`
	Subcategory  string            `toml:"subcategory,omitempty"`
	MIMEPatterns []string          `toml:"mime_patterns"`
	ExtPatterns  []string          `toml:"ext_patterns"`
	Conditions   []ConditionConfig `toml:"conditions"`
}

// ConditionConfig is a metadata predicate attached to a rule.
type ConditionConfig struct {
	Field string `toml:"field"`
	Op    string `toml:"op"` // "exists", "equals", "contains"
	Value string `toml:"value,omitempty"`
}

// NewConfig creates a Config with the provided paths and sensible
// defaults, including the built-in rule set.
func NewConfig(vaultRoot, baseDir string) *Config {
	return &Config{
		VaultRoot:     vaultRoot,
		BaseDir:       baseDir,
		LogDir:        filepath.Join(baseDir, "log"),
		Workers:       4,
		MaxPathLength: 240,
		Index: IndexConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Scan: ScanConfig{
			Ignore: []string{".*", "*.tmp", "*.part"},
		},
		Folders: FolderConfig{
			Subcategories: true,
			DateDepth:     3,
		},
		Dates: DateConfig{
			SourceOrder: []string{"exif", "document", "media", "filesystem"},
		},
		Rules: DefaultRules(),
	}
}

// DefaultRules is the built-in classification rule set. Users can extend
// or replace it in the config file; the coarse MIME fallback catches
// whatever no rule covers.
func DefaultRules() []RuleConfig {
	return []RuleConfig{
		{
			Name:         "raw-photos",
			Priority:     100,
			Category:     "photos",
			Subcategory:  "raw",
			MIMEPatterns: []string{"image/x-canon-cr2", "image/x-nikon-nef", "image/x-sony-arw", "image/x-adobe-dng"},
			ExtPatterns:  []string{"cr2", "nef", "arw", "dng", "raf", "orf"},
		},
		{
			Name:         "camera-photos",
			Priority:     80,
			Category:     "photos",
			Subcategory:  "camera",
			MIMEPatterns: []string{"image/jpeg", "image/heic", "image/tiff"},
			Conditions:   []ConditionConfig{{Field: "camera_make", Op: "exists"}},
		},
		{
			Name:         "pdf-documents",
			Priority:     70,
			Category:     "documents",
			Subcategory:  "pdf",
			MIMEPatterns: []string{"application/pdf"},
		},
		{
			Name:         "ebooks",
			Priority:     60,
			Category:     "documents",
			Subcategory:  "ebooks",
			MIMEPatterns: []string{"application/epub+zip"},
			ExtPatterns:  []string{"epub", "mobi", "azw3"},
		},
		{
			Name:         "music",
			Priority:     50,
			Category:     "audio",
			Subcategory:  "music",
			MIMEPatterns: []string{"audio/*"},
			Conditions:   []ConditionConfig{{Field: "track_count", Op: "exists"}},
		},
		{
			Name:         "disk-images",
			Priority:     50,
			Category:     "archives",
			Subcategory:  "disk-images",
			MIMEPatterns: []string{"application/x-iso9660-image"},
			ExtPatterns:  []string{"iso", "img", "dmg"},
		},
		{
			Name:         "text-notes",
			Priority:     40,
			Category:     "documents",
			Subcategory:  "text",
			MIMEPatterns: []string{"text/plain", "text/markdown"},
			ExtPatterns:  []string{"txt", "md"},
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the
// provided Config. An existing file is never overwritten.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
