package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"storyweaver/internal/domain"
)

const (
	configPathEnv     = "STORYWEAVER_CONFIG"
	serverAddrEnv     = "STORYWEAVER_ADDR"
	databaseDSNEnv    = "DATABASE_DSN"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv    = "OPENAI_MODEL"
	feedRefreshKeyEnv = "FEED_REFRESH_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Prompts  PromptsConfig  `yaml:"prompts"`
	Feeds    FeedsConfig    `yaml:"feeds"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN disables
// persistence; the service then runs with in-process caches only.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// OpenAIConfig defines how to contact the chat-completion API.
type OpenAIConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"apiKey"`
	MaxTokens int    `yaml:"maxTokens"`
}

// PromptsConfig points at the prompt template directory.
type PromptsConfig struct {
	Dir string `yaml:"dir"`
}

// FeedsConfig maps categories to their curated feed URLs and controls
// fetching and background refresh.
type FeedsConfig struct {
	Sources             map[domain.Category][]string `yaml:"sources"`
	FetchTimeoutSeconds int                          `yaml:"fetchTimeoutSeconds"`
	Refresh             RefreshConfig                `yaml:"refresh"`
}

// FetchTimeout resolves the per-feed fetch timeout.
func (f FeedsConfig) FetchTimeout() time.Duration {
	if f.FetchTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(f.FetchTimeoutSeconds) * time.Second
}

// RefreshConfig gates and schedules the feed refresh operation.
type RefreshConfig struct {
	Key             string `yaml:"key"`
	IntervalMinutes int    `yaml:"intervalMinutes"`
	Limit           int    `yaml:"limit"`
}

// Interval resolves the background refresh cadence; zero disables it.
func (r RefreshConfig) Interval() time.Duration {
	if r.IntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(r.IntervalMinutes) * time.Minute
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Feeds.Sources) == 0 {
		cfg.Feeds.Sources = defaultConfig().Feeds.Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(feedRefreshKeyEnv); v != "" {
		c.Feeds.Refresh.Key = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server = override.Server
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.MaxTokens > 0 {
		base.OpenAI.MaxTokens = override.OpenAI.MaxTokens
	}

	if override.Prompts.Dir != "" {
		base.Prompts = override.Prompts
	}

	if len(override.Feeds.Sources) > 0 {
		base.Feeds.Sources = override.Feeds.Sources
	}
	if override.Feeds.FetchTimeoutSeconds > 0 {
		base.Feeds.FetchTimeoutSeconds = override.Feeds.FetchTimeoutSeconds
	}
	if override.Feeds.Refresh.Key != "" {
		base.Feeds.Refresh.Key = override.Feeds.Refresh.Key
	}
	if override.Feeds.Refresh.IntervalMinutes > 0 {
		base.Feeds.Refresh.IntervalMinutes = override.Feeds.Refresh.IntervalMinutes
	}
	if override.Feeds.Refresh.Limit > 0 {
		base.Feeds.Refresh.Limit = override.Feeds.Refresh.Limit
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		OpenAI: OpenAIConfig{
			Endpoint:  "https://api.openai.com/v1/chat/completions",
			Model:     "gpt-4o",
			MaxTokens: 1000,
		},
		Prompts: PromptsConfig{Dir: "prompts"},
		Feeds: FeedsConfig{
			FetchTimeoutSeconds: 10,
			Refresh:             RefreshConfig{Limit: 20},
			Sources: map[domain.Category][]string{
				domain.CategoryScience: {
					"https://www.sciencedaily.com/rss/all.xml",
					"https://feeds.feedburner.com/ScienceDaily",
				},
				domain.CategoryPositive: {
					"https://www.goodnewsnetwork.org/feed/",
					"https://feeds.feedburner.com/GoodNewsNetwork",
				},
				domain.CategoryEducation: {
					"https://www.edutopia.org/rss.xml",
					"https://feeds.feedburner.com/Edutopia",
				},
				domain.CategoryNature: {
					"https://www.nationalgeographic.com/kids/feed/",
					"https://feeds.nationalgeographic.com/ng/News/News_Main",
				},
				domain.CategorySports: {
					"https://www.si.com/rss/si_kids.rss",
					"https://feeds.feedburner.com/SportsIllustrated",
				},
				domain.CategoryArts: {
					"https://www.arts.gov/rss.xml",
					"https://feeds.feedburner.com/ArtsJournal",
				},
				domain.CategoryTechnology: {
					"https://feeds.feedburner.com/TechCrunch",
					"https://feeds.feedburner.com/ArsTechnica",
				},
				domain.CategoryAnimals: {
					"https://www.nationalgeographic.com/animals/feed/",
					"https://feeds.feedburner.com/NationalGeographicAnimals",
				},
			},
		},
	}
}
