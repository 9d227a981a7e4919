package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storyweaver/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.OpenAI.Endpoint)
	require.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	require.Equal(t, 1000, cfg.OpenAI.MaxTokens)
	require.Equal(t, "prompts", cfg.Prompts.Dir)
	require.Equal(t, 10*time.Second, cfg.Feeds.FetchTimeout())
	require.Len(t, cfg.Feeds.Sources, len(domain.AllCategories()), "every category ships with curated feeds")
	for _, category := range domain.AllCategories() {
		require.NotEmpty(t, cfg.Feeds.Sources[category], "category %s has no feeds", category)
	}
}

func TestLoadFromFile(t *testing.T) {
	raw := `
server:
  addr: ":9090"
logging:
  level: debug
openai:
  model: gpt-4o-mini
feeds:
  fetchTimeoutSeconds: 5
  refresh:
    key: file-key
    intervalMinutes: 30
  sources:
    science:
      - https://example.com/science.xml
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	t.Setenv("STORYWEAVER_CONFIG", path)

	cfg := Load()
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	require.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.OpenAI.Endpoint, "unset fields keep their defaults")
	require.Equal(t, 5*time.Second, cfg.Feeds.FetchTimeout())
	require.Equal(t, "file-key", cfg.Feeds.Refresh.Key)
	require.Equal(t, 30*time.Minute, cfg.Feeds.Refresh.Interval())
	require.Equal(t, []string{"https://example.com/science.xml"}, cfg.Feeds.Sources[domain.CategoryScience])
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	raw := `
openai:
  model: gpt-4o-mini
  apiKey: file-api-key
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	t.Setenv("STORYWEAVER_CONFIG", path)
	t.Setenv("STORYWEAVER_ADDR", ":7070")
	t.Setenv("OPENAI_MODEL", "gpt-env")
	t.Setenv("OPENAI_API_KEY", "env-api-key")
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("FEED_REFRESH_KEY", "env-refresh")

	cfg := Load()
	require.Equal(t, ":7070", cfg.Server.Addr)
	require.Equal(t, "gpt-env", cfg.OpenAI.Model)
	require.Equal(t, "env-api-key", cfg.OpenAI.APIKey)
	require.Equal(t, "postgres://env", cfg.Database.DSN)
	require.Equal(t, "env-refresh", cfg.Feeds.Refresh.Key)
}

func TestLoadUnreadableFileFallsBack(t *testing.T) {
	t.Setenv("STORYWEAVER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	require.Equal(t, ":8080", cfg.Server.Addr)
}

func TestRefreshIntervalDisabledByDefault(t *testing.T) {
	cfg := Load()
	require.Zero(t, cfg.Feeds.Refresh.Interval(), "background refresh is opt-in")
}
