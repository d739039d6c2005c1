package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file.
const FileName = "stmtimport.yaml"

// Environment overrides.
const (
	EnvLogLevel   = "STMTIMPORT_LOG_LEVEL"
	EnvLogFormat  = "STMTIMPORT_LOG_FORMAT"
	EnvVATEnabled = "STMTIMPORT_VAT_ENABLED"
)

// Config represents the top-level stmtimport.yaml configuration.
type Config struct {
	Business     BusinessConfig `yaml:"business"`
	BankAccounts []BankAccount  `yaml:"bank_accounts,omitempty"`
	VAT          VATConfig      `yaml:"vat"`
	Paths        PathsConfig    `yaml:"paths"`
	Logging      LoggingConfig  `yaml:"logging"`
	Git          GitConfig      `yaml:"git"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
}

// BankAccount ties a bank's exports to a mapping template and a
// general-ledger account.
type BankAccount struct {
	Name       string `yaml:"name"`
	GLAccount  string `yaml:"gl_account"`
	Template   string `yaml:"template"`
	Currency   string `yaml:"currency,omitempty"`
	FilePrefix string `yaml:"file_prefix,omitempty"` // matched against import file names
}

// VATConfig controls whether postings carry VAT fields.
type VATConfig struct {
	Enabled        bool   `yaml:"enabled"`
	DefaultCode    string `yaml:"default_code,omitempty"`
	DefaultAccount string `yaml:"default_account,omitempty"`
}

// PathsConfig holds workspace-relative directories and files.
type PathsConfig struct {
	Templates string `yaml:"templates"`
	Rules     string `yaml:"rules"`
	Exports   string `yaml:"exports"`
	Import    string `yaml:"import"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a stmtimport.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillPaths()
	return cfg, nil
}

// LoadWorkspace reads <root>/stmtimport.yaml after loading <root>/.env, then
// applies environment overrides. Variables already set in the environment
// win over .env entries.
func LoadWorkspace(root string) (*Config, error) {
	envFile := filepath.Join(root, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg, err := Load(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides logging and VAT settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := lookup(EnvVATEnabled); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvVATEnabled, err)
		}
		c.VAT.Enabled = b
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(businessName, entityType string) *Config {
	cfg := &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		VAT: VATConfig{
			DefaultCode:    "VM81",
			DefaultAccount: "1170",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "stmtimport",
			AuthorEmail: "stmtimport@localhost",
		},
	}
	cfg.fillPaths()
	return cfg
}

func (c *Config) fillPaths() {
	if c.Paths.Templates == "" {
		c.Paths.Templates = "templates"
	}
	if c.Paths.Rules == "" {
		c.Paths.Rules = filepath.Join("rules", "posting-rules.yaml")
	}
	if c.Paths.Exports == "" {
		c.Paths.Exports = "exports"
	}
	if c.Paths.Import == "" {
		c.Paths.Import = "import"
	}
}

// Resolve joins a workspace-relative path onto root; absolute paths are
// returned unchanged.
func Resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// BankFor returns the bank account whose file prefix starts the base name
// of fileName, ignoring case. The longest prefix wins.
func (c *Config) BankFor(fileName string) (BankAccount, bool) {
	base := strings.ToLower(filepath.Base(fileName))
	best, found := BankAccount{}, false
	for _, b := range c.BankAccounts {
		p := strings.ToLower(b.FilePrefix)
		if p == "" || !strings.HasPrefix(base, p) {
			continue
		}
		if !found || len(p) > len(best.FilePrefix) {
			best, found = b, true
		}
	}
	return best, found
}

// Bank returns the bank account with the given name, ignoring case.
func (c *Config) Bank(name string) (BankAccount, bool) {
	for _, b := range c.BankAccounts {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return BankAccount{}, false
}
