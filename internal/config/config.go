package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	News       NewsConfig       `yaml:"news" mapstructure:"news"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Web        WebConfig        `yaml:"web" mapstructure:"web"`
	Context    ContextConfig    `yaml:"context" mapstructure:"context"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LLMConfig selects and bounds the briefing generator's model call.
type LLMConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	MaxTokens   int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NewsConfig configures the news lookup.
type NewsConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	PageSize    int    `yaml:"page_size" mapstructure:"page_size"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// JinaConfig holds Jina Search settings, used when news.provider is "jina".
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// WebConfig configures the website extractor.
type WebConfig struct {
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxChars      int    `yaml:"max_chars" mapstructure:"max_chars"`
	MaxParagraphs int    `yaml:"max_paragraphs" mapstructure:"max_paragraphs"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ContextConfig points at the lead context fixture file.
type ContextConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// NotionConfig holds Notion API credentials and the lead context database ID.
type NotionConfig struct {
	Token       string `yaml:"token" mapstructure:"token"`
	ContextDB   string `yaml:"context_db" mapstructure:"context_db"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SalesforceConfig holds Salesforce auth and briefing field settings.
// Either JWT (client_id, username, key_path) or username-password
// (client_id, client_secret, username, password, security_token) auth is used.
type SalesforceConfig struct {
	ClientID      string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret  string  `yaml:"client_secret" mapstructure:"client_secret"`
	Username      string  `yaml:"username" mapstructure:"username"`
	Password      string  `yaml:"password" mapstructure:"password"`
	SecurityToken string  `yaml:"security_token" mapstructure:"security_token"`
	KeyPath       string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL      string  `yaml:"login_url" mapstructure:"login_url"`
	Object        string  `yaml:"object" mapstructure:"object"`
	BriefingField string  `yaml:"briefing_field" mapstructure:"briefing_field"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// StoreConfig configures the local briefing store used when Salesforce is not configured.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MonitoringConfig configures failure-rate alerting. Alerts are disabled
// when webhook_url is empty.
type MonitoringConfig struct {
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
}

// placeholders are sample values from the example env file. They count as unset.
var placeholders = map[string]bool{
	"gsk_yourgroqapikey":        true,
	"yournewsapikey":            true,
	"your.salesforce@email.com": true,
	"yoursalesforcepassword":    true,
	"yoursecuritytoken":         true,
	"your_api_key":              true,
	"changeme":                  true,
}

// IsSet reports whether v holds a real value (non-empty and not a sample placeholder).
func IsSet(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	return !placeholders[strings.ToLower(v)]
}

// LLMConfigured reports whether the selected LLM provider has an API key.
func (c *Config) LLMConfigured() bool {
	switch c.LLM.Provider {
	case "gemini":
		return IsSet(c.Gemini.Key)
	default:
		return IsSet(c.Anthropic.Key)
	}
}

// NewsConfigured reports whether the selected news provider has an API key.
func (c *Config) NewsConfigured() bool {
	switch c.News.Provider {
	case "jina":
		return IsSet(c.Jina.Key)
	default:
		return IsSet(c.News.Key)
	}
}

// SalesforceJWT reports whether JWT bearer credentials are complete.
func (c *Config) SalesforceJWT() bool {
	sf := c.Salesforce
	return IsSet(sf.ClientID) && IsSet(sf.Username) && IsSet(sf.KeyPath)
}

// SalesforceConfigured reports whether either Salesforce auth flow has complete credentials.
func (c *Config) SalesforceConfigured() bool {
	if c.SalesforceJWT() {
		return true
	}
	sf := c.Salesforce
	return IsSet(sf.ClientID) && IsSet(sf.ClientSecret) &&
		IsSet(sf.Username) && IsSet(sf.Password)
}

// NotionConfigured reports whether the lead context store should load from Notion.
func (c *Config) NotionConfigured() bool {
	return IsSet(c.Notion.Token) && IsSet(c.Notion.ContextDB)
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(".env"); err != nil {
		zap.L().Debug("config: no .env file loaded", zap.Error(err))
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BRIEFING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it on Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.max_tokens", 1200)
	v.SetDefault("llm.timeout_secs", 30)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("gemini.key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "")

	v.SetDefault("news.provider", "newsapi")
	v.SetDefault("news.key", "")
	v.SetDefault("news.base_url", "https://newsapi.org")
	v.SetDefault("news.page_size", 3)
	v.SetDefault("news.timeout_secs", 10)
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")

	v.SetDefault("web.timeout_secs", 10)
	v.SetDefault("web.max_chars", 2000)
	v.SetDefault("web.max_paragraphs", 8)
	v.SetDefault("web.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	v.SetDefault("context.path", "data/contexts.json")
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.context_db", "")
	v.SetDefault("notion.timeout_secs", 15)

	v.SetDefault("salesforce.client_id", "")
	v.SetDefault("salesforce.client_secret", "")
	v.SetDefault("salesforce.username", "")
	v.SetDefault("salesforce.password", "")
	v.SetDefault("salesforce.security_token", "")
	v.SetDefault("salesforce.key_path", "")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.object", "Lead")
	v.SetDefault("salesforce.briefing_field", "AI_Pre_Call_Briefing__c")
	v.SetDefault("salesforce.timeout_secs", 15)
	v.SetDefault("salesforce.rate_limit", 0)

	v.SetDefault("store.driver", "json")
	v.SetDefault("store.path", "leads_db.json")
	v.SetDefault("store.database_url", "")

	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("monitoring.failure_rate_threshold", 0.25)
	v.SetDefault("monitoring.check_interval_secs", 300)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
