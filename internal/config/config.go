// Package config loads and validates the harvester configuration at startup.
//
// Values come from three layers, later layers winning: built-in defaults,
// an optional YAML file (list-valued tunables live there), and environment
// variables (a .env file is loaded first when present).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/harvester.yaml"

// Config holds all runtime configuration for the harvester service.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	LogLevel    string `yaml:"log_level"`

	// Store schema capability: "1", "2", "3" or "auto".
	SchemaVersion string `yaml:"schema_version"`

	Search   SearchConfig   `yaml:"search"`
	Sources  SourcesConfig  `yaml:"sources"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Fetch    FetchConfig    `yaml:"fetch"`
	LLM      LLMConfig      `yaml:"llm"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

// SearchConfig configures the web search provider.
type SearchConfig struct {
	APIKey          string   `yaml:"api_key"`
	Endpoint        string   `yaml:"endpoint"`
	Queries         []string `yaml:"queries"`
	SiteSuffixes    []string `yaml:"site_suffixes"`
	Freshness       string   `yaml:"freshness"` // qdr window: d, w, m
	ResultsPerQuery int      `yaml:"results_per_query"`
	Country         string   `yaml:"country"`
	Language        string   `yaml:"language"`
}

// SourcesConfig holds the curated domain lists and tier vocabularies.
type SourcesConfig struct {
	AllowedDomains   []string `yaml:"allowed_domains"`
	GovSuffixes      []string `yaml:"gov_suffixes"`
	CentralDomains   []string `yaml:"central_domains"`
	CentralKeywords  []string `yaml:"central_keywords"`
	RegionalKeywords []string `yaml:"regional_keywords"`
	StateCodes       []string `yaml:"state_codes"`
}

// SweepConfig holds the pipeline tunables.
type SweepConfig struct {
	MaxCandidates       int     `yaml:"max_candidates"`
	FollowLinks         int     `yaml:"follow_links"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	RecentWindow        int     `yaml:"recent_window"`
}

// FetchConfig bounds every outbound page and document fetch.
type FetchConfig struct {
	PageTimeout     time.Duration `yaml:"page_timeout"`
	DocumentTimeout time.Duration `yaml:"document_timeout"`
	MaxBytes        int64         `yaml:"max_bytes"`
	RatePerSecond   float64       `yaml:"rate_per_second"`
	UserAgent       string        `yaml:"user_agent"`
}

// LLMConfig selects the structured extraction service.
type LLMConfig struct {
	Provider string        `yaml:"provider"` // "openai", "anthropic" or "" (fallback only)
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ScheduleConfig configures the periodic sweep.
type ScheduleConfig struct {
	IntervalHours int           `yaml:"interval_hours"`
	LockTTL       time.Duration `yaml:"lock_ttl"`
	RunOnStart    bool          `yaml:"run_on_start"`
}

// Load reads the .env file, the YAML file and environment variables and
// returns a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv("HARVESTER_CONFIG")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "HARVESTER_PORT")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.SchemaVersion, "STORE_SCHEMA_VERSION")

	setString(&c.Search.APIKey, "SERPAPI_KEY")
	setString(&c.Search.Endpoint, "SERPAPI_ENDPOINT")
	setString(&c.Search.Freshness, "SEARCH_FRESHNESS")
	if v := os.Getenv("SEARCH_QUERIES"); v != "" {
		c.Search.Queries = splitList(v, "|")
	}

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.Model, "LLM_MODEL")

	if err := setInt(&c.Sweep.MaxCandidates, "SWEEP_MAX_CANDIDATES"); err != nil {
		return err
	}
	if err := setInt(&c.Sweep.FollowLinks, "SWEEP_FOLLOW_LINKS"); err != nil {
		return err
	}
	if err := setInt(&c.Schedule.IntervalHours, "SWEEP_INTERVAL_HOURS"); err != nil {
		return err
	}
	if s := os.Getenv("SIMILARITY_THRESHOLD"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("SIMILARITY_THRESHOLD must be a number, got %q", s)
		}
		c.Sweep.SimilarityThreshold = v
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Sweep.SimilarityThreshold <= 0 || c.Sweep.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got %v", c.Sweep.SimilarityThreshold)
	}
	if c.Sweep.MaxCandidates < 1 {
		return fmt.Errorf("max candidates must be a positive integer, got %d", c.Sweep.MaxCandidates)
	}
	if c.Sweep.FollowLinks < 0 || c.Sweep.FollowLinks > 2 {
		return fmt.Errorf("follow links must be between 0 and 2, got %d", c.Sweep.FollowLinks)
	}
	if c.Schedule.IntervalHours < 1 {
		return fmt.Errorf("SWEEP_INTERVAL_HOURS must be a positive integer, got %d", c.Schedule.IntervalHours)
	}
	switch c.LLM.Provider {
	case "", "openai", "anthropic":
	default:
		return fmt.Errorf("unknown LLM provider %q", c.LLM.Provider)
	}
	switch c.SchemaVersion {
	case "1", "2", "3", "auto":
	default:
		return fmt.Errorf("STORE_SCHEMA_VERSION must be 1, 2, 3 or auto, got %q", c.SchemaVersion)
	}
	if len(c.Search.Queries) == 0 {
		return errors.New("at least one search query is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", key, s)
	}
	*dst = v
	return nil
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
