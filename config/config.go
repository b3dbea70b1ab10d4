package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

// Duration lets yaml values like "30m" or "1h" unmarshal into a
// time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type AppConfig struct {
	Logging         LoggingConfig         `yaml:"logging"`
	FederalRegister FederalRegisterConfig `yaml:"federal_register"`
	Queue           QueueConfig           `yaml:"queue"`
	LLM             LLMConfig             `yaml:"llm"`
	SummaryQuota    SummaryQuotaConfig    `yaml:"summary_quota"`
	Scheduler       SchedulerConfig       `yaml:"scheduler"`
	API             APIConfig             `yaml:"api"`
	MongoURI        string                `yaml:"mongo_uri"`
	MongoDBName     string                `yaml:"mongo_db_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FederalRegisterConfig configures the upstream order listing API.
type FederalRegisterConfig struct {
	// BaseURL is the API root, e.g. https://www.federalregister.gov/api/v1
	BaseURL string `yaml:"base_url"`

	// StartDate is the inclusive lower bound of the historical window,
	// formatted as 2006-01-02. Every refresh fetches from StartDate
	// through today.
	StartDate string `yaml:"start_date"`

	// PageSize is the per_page value sent to the listing endpoint.
	PageSize int `yaml:"page_size"`

	// FeedURL is the RSS feed polled between full refreshes to spot
	// new documents early. Empty disables the feed watcher.
	FeedURL string `yaml:"feed_url"`
}

// QueueConfig holds the summary queue tunables. They are plain config
// values rather than package constants so tests can run with small ones.
type QueueConfig struct {
	// MaxConcurrentRequests caps how many items one ProcessBatch call
	// may take from the eligible set.
	MaxConcurrentRequests int `yaml:"max_concurrent_requests"`

	// MaxRetries is the attempts ceiling for failed items.
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the fixed gate since last_attempt before a failed
	// item becomes eligible again. Independent of the attempt count.
	RetryDelay Duration `yaml:"retry_delay"`

	// ProcessingTimeout resets items stuck in processing (e.g. after a
	// crash mid-batch) back to eligible once last_attempt is older
	// than this.
	ProcessingTimeout Duration `yaml:"processing_timeout"`
}

// LLMConfig selects and configures the summarization backend. The
// provider is fixed at startup; backends are never mixed at runtime.
type LLMConfig struct {
	// Provider is "gemini" (API-key backend) or "vertex" (GCP-hosted
	// inference backend).
	Provider string `yaml:"provider"`

	Model string `yaml:"model"`

	// VertexProject and VertexLocation are only read when Provider is
	// "vertex".
	VertexProject  string `yaml:"vertex_project"`
	VertexLocation string `yaml:"vertex_location"`
}

// SummaryQuotaConfig defines rate/daily limits for summarization LLM calls.
type SummaryQuotaConfig struct {
	// RequestsPerMinute is the max request rate for summarization LLM
	// calls. Zero or below means no limit.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// RequestsPerDay is the daily ceiling for summarization LLM calls.
	// Zero or below means no limit.
	RequestsPerDay int `yaml:"requests_per_day"`
}

type SchedulerConfig struct {
	// RefreshInterval is the period between full snapshot refreshes.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// FeedPollInterval is the period between RSS feed polls.
	FeedPollInterval Duration `yaml:"feed_poll_interval"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`

	// AllowRegeneration gates the manual summary regeneration endpoint.
	// Normally disabled outside development.
	AllowRegeneration bool `yaml:"allow_regeneration"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	applyDefaults(&c)
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func applyDefaults(c *AppConfig) {
	if c.FederalRegister.BaseURL == "" {
		c.FederalRegister.BaseURL = "https://www.federalregister.gov/api/v1"
	}
	if c.FederalRegister.StartDate == "" {
		c.FederalRegister.StartDate = "2025-01-20"
	}
	if c.FederalRegister.PageSize <= 0 {
		c.FederalRegister.PageSize = 100
	}
	if c.Queue.MaxConcurrentRequests <= 0 {
		c.Queue.MaxConcurrentRequests = 5
	}
	if c.Queue.MaxRetries <= 0 {
		c.Queue.MaxRetries = 3
	}
	if c.Queue.RetryDelay <= 0 {
		c.Queue.RetryDelay = Duration(30 * time.Minute)
	}
	if c.Queue.ProcessingTimeout <= 0 {
		c.Queue.ProcessingTimeout = Duration(2 * time.Hour)
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.0-flash"
	}
	if c.Scheduler.RefreshInterval <= 0 {
		c.Scheduler.RefreshInterval = Duration(time.Hour)
	}
	if c.Scheduler.FeedPollInterval <= 0 {
		c.Scheduler.FeedPollInterval = Duration(10 * time.Minute)
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
