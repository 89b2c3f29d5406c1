package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Store.Driver)
	assert.Equal(t, "leads_db.json", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 1200, cfg.LLM.MaxTokens)
	assert.Equal(t, 30, cfg.LLM.TimeoutSecs)
	assert.Equal(t, "newsapi", cfg.News.Provider)
	assert.Equal(t, "https://newsapi.org", cfg.News.BaseURL)
	assert.Equal(t, 3, cfg.News.PageSize)
	assert.Equal(t, 10, cfg.News.TimeoutSecs)
	assert.Equal(t, 10, cfg.Web.TimeoutSecs)
	assert.Equal(t, 2000, cfg.Web.MaxChars)
	assert.Equal(t, 8, cfg.Web.MaxParagraphs)
	assert.Equal(t, "data/contexts.json", cfg.Context.Path)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, "Lead", cfg.Salesforce.Object)
	assert.Equal(t, "AI_Pre_Call_Briefing__c", cfg.Salesforce.BriefingField)
	assert.Equal(t, 15, cfg.Salesforce.TimeoutSecs)
	assert.Equal(t, 15, cfg.Notion.TimeoutSecs)
	assert.Empty(t, cfg.Monitoring.WebhookURL)
	assert.Equal(t, 0.25, cfg.Monitoring.FailureRateThreshold)
	assert.Equal(t, 300, cfg.Monitoring.CheckIntervalSecs)

	assert.False(t, cfg.LLMConfigured())
	assert.False(t, cfg.NewsConfigured())
	assert.False(t, cfg.SalesforceConfigured())
	assert.False(t, cfg.NotionConfigured())
	assert.NoError(t, cfg.Validate("serve"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
  format: console
server:
  port: 9090
news:
  page_size: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.News.PageSize)
	// Defaults still apply for unset values
	assert.Equal(t, 2000, cfg.Web.MaxChars)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("BRIEFING_STORE_DRIVER", "postgres")
	t.Setenv("BRIEFING_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("BRIEFING_SERVER_PORT", "3000")
	t.Setenv("BRIEFING_ANTHROPIC_KEY", "sk-ant-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "sk-ant-test", cfg.Anthropic.Key)
	assert.True(t, cfg.LLMConfigured())
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)

	env := "BRIEFING_NEWS_KEY=abc123\nBRIEFING_SALESFORCE_USERNAME=your.salesforce@email.com\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644))
	t.Cleanup(func() {
		os.Unsetenv("BRIEFING_NEWS_KEY")            //nolint:errcheck
		os.Unsetenv("BRIEFING_SALESFORCE_USERNAME") //nolint:errcheck
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.News.Key)
	assert.True(t, cfg.NewsConfigured())
	// Placeholder from the sample env file counts as unset.
	assert.False(t, IsSet(cfg.Salesforce.Username))
}

func TestIsSet(t *testing.T) {
	assert.False(t, IsSet(""))
	assert.False(t, IsSet("   "))
	assert.False(t, IsSet("gsk_YourGroqAPIKey"))
	assert.False(t, IsSet("YourNewsAPIKey"))
	assert.False(t, IsSet("your.salesforce@email.com"))
	assert.True(t, IsSet("sk-ant-123"))
}

func TestProviderConfigured(t *testing.T) {
	cfg := &Config{}
	cfg.LLM.Provider = "gemini"
	cfg.Anthropic.Key = "sk-ant"
	assert.False(t, cfg.LLMConfigured())
	cfg.Gemini.Key = "AIza-test"
	assert.True(t, cfg.LLMConfigured())

	cfg.News.Provider = "jina"
	cfg.News.Key = "newsapi-key"
	assert.False(t, cfg.NewsConfigured())
	cfg.Jina.Key = "jina-key"
	assert.True(t, cfg.NewsConfigured())
}

func TestSalesforceConfigured(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.SalesforceConfigured())

	cfg.Salesforce.ClientID = "cid"
	cfg.Salesforce.Username = "ops@example.com"
	cfg.Salesforce.KeyPath = "/secrets/sf.key"
	assert.True(t, cfg.SalesforceJWT())
	assert.True(t, cfg.SalesforceConfigured())

	cfg = &Config{}
	cfg.Salesforce.ClientID = "cid"
	cfg.Salesforce.ClientSecret = "secret"
	cfg.Salesforce.Username = "ops@example.com"
	cfg.Salesforce.Password = "pw"
	assert.False(t, cfg.SalesforceJWT())
	assert.True(t, cfg.SalesforceConfigured())

	cfg.Salesforce.Username = "your.salesforce@email.com"
	assert.False(t, cfg.SalesforceConfigured())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8000
	cfg.LLM = LLMConfig{Provider: "anthropic", MaxTokens: 1200, TimeoutSecs: 30}
	cfg.News = NewsConfig{Provider: "newsapi", PageSize: 3, TimeoutSecs: 10}
	cfg.Web = WebConfig{TimeoutSecs: 10, MaxChars: 2000, MaxParagraphs: 8}
	cfg.Salesforce.TimeoutSecs = 15
	cfg.Store = StoreConfig{Driver: "json", Path: "leads_db.json"}
	return cfg
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	// Port is irrelevant for one-shot runs.
	assert.NoError(t, cfg.Validate("brief"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateProviders(t *testing.T) {
	cfg := validDefaults()
	cfg.LLM.Provider = "groq"
	cfg.News.Provider = "bing"

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
	assert.Contains(t, err.Error(), "news.provider")
}

func TestValidateBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.News.PageSize = 0
	cfg.Web.MaxChars = 0
	cfg.LLM.TimeoutSecs = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "news.page_size must be between 1 and 20")
	assert.Contains(t, err.Error(), "web.max_chars must be > 0")
	assert.Contains(t, err.Error(), "llm.timeout_secs must be > 0")
}

func TestValidateStore(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required for postgres")

	cfg.Store.DatabaseURL = "postgres://localhost/briefings"
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Store.Driver = "mongo"
	err = cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")

	// The local store is not used when Salesforce is configured.
	cfg.Salesforce.ClientID = "cid"
	cfg.Salesforce.Username = "ops@example.com"
	cfg.Salesforce.KeyPath = "/secrets/sf.key"
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateMonitoring(t *testing.T) {
	cfg := validDefaults()
	cfg.Monitoring.FailureRateThreshold = 0
	assert.NoError(t, cfg.Validate("serve"), "threshold is ignored without a webhook")

	cfg.Monitoring.WebhookURL = "https://hooks.example.com/alerts"
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitoring.failure_rate_threshold")

	cfg.Monitoring.FailureRateThreshold = 0.5
	assert.NoError(t, cfg.Validate("serve"))
}
