package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the application's top-level configuration tree
type Config struct {
	Server   *ServerConfig   `yaml:"server" json:"server"`
	Database *DatabaseConfig `yaml:"database" json:"database"`
	Cache    *CacheConfig    `yaml:"cache" json:"cache"`
	Models   []ModelConfig   `yaml:"models" json:"models"`
	Speech   *SpeechConfig   `yaml:"speech" json:"speech"`
	Catalog  *CatalogConfig  `yaml:"catalog" json:"catalog"`
	Search   *SearchConfig   `yaml:"search" json:"search"`
	Channels *ChannelsConfig `yaml:"channels" json:"channels"`
	RateLimit *RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

// ServerConfig controls the HTTP listener and request-level deadlines
type ServerConfig struct {
	Port            int           `yaml:"port" json:"port"`
	Host            string        `yaml:"host" json:"host"`
	LogPath         string        `yaml:"log_path" json:"log_path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout" default:"45s"`
	WebsiteBaseURL  string        `yaml:"website_base_url" json:"website_base_url"`
}

// DatabaseConfig points at the selected ListingStore backend
type DatabaseConfig struct {
	Driver          string `yaml:"driver" json:"driver"` // "postgres" or "elasticsearch"
	DSN             string `yaml:"dsn" json:"dsn"`
	ElasticURL      string `yaml:"elastic_url" json:"elastic_url"`
	ElasticIndex    string `yaml:"elastic_index" json:"elastic_index"`
	MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns"`
}

// CacheConfig controls the Redis-backed read-through cache
type CacheConfig struct {
	Address  string         `yaml:"address" json:"address"`
	Password string         `yaml:"password" json:"password"`
	DB       int            `yaml:"db" json:"db"`
	Prefix   string         `yaml:"prefix" json:"prefix"`
	Disabled bool           `yaml:"disabled" json:"disabled"`
	TTL      CacheTTLConfig `yaml:"ttl" json:"ttl"`
}

// CacheTTLConfig sets the retention window for each cache class
type CacheTTLConfig struct {
	Intent    time.Duration `yaml:"intent" json:"intent" default:"10m"`
	QueryPlan time.Duration `yaml:"query_plan" json:"query_plan" default:"10m"`
	Search    time.Duration `yaml:"search" json:"search" default:"2m"`
	Catalog   time.Duration `yaml:"catalog" json:"catalog" default:"1h"`
	Stats     time.Duration `yaml:"stats" json:"stats" default:"5m"`
}

// ModelConfig describes one LLM tier; Source selects remote vs. local dispatch
type ModelConfig struct {
	Type       string                 `yaml:"type" json:"type"` // "chat" or "embedding"
	Source     string                 `yaml:"source" json:"source"` // "remote" or "ollama"
	ModelName  string                 `yaml:"model_name" json:"model_name"`
	BaseURL    string                 `yaml:"base_url" json:"base_url"`
	APIKey     string                 `yaml:"api_key" json:"api_key"`
	Dimension  int                    `yaml:"dimension" json:"dimension"`
	Parameters map[string]interface{} `yaml:"parameters" json:"parameters"`
}

// SpeechConfig describes the Whisper-backed transcription provider
type SpeechConfig struct {
	Source  string `yaml:"source" json:"source"`
	BaseURL string `yaml:"base_url" json:"base_url"`
	APIKey  string `yaml:"api_key" json:"api_key"`
	Model   string `yaml:"model" json:"model"`
}

// CatalogConfig controls the periodic snapshot refresh
type CatalogConfig struct {
	RefreshInterval   time.Duration `yaml:"refresh_interval" json:"refresh_interval" default:"15m"`
	KeywordAliasPaths []string      `yaml:"keyword_alias_paths" json:"keyword_alias_paths"`
}

// SearchConfig tunes the strategy ladder and scoring thresholds
type SearchConfig struct {
	MinScoreThreshold int `yaml:"min_score_threshold" json:"min_score_threshold" default:"30"`
	DefaultPageLimit  int `yaml:"default_page_limit" json:"default_page_limit" default:"20"`
	Strategy5Workers  int `yaml:"strategy5_workers" json:"strategy5_workers" default:"8"`
}

// ChannelsConfig holds per-channel transport credentials
type ChannelsConfig struct {
	TelegramBotToken    string `yaml:"telegram_bot_token" json:"telegram_bot_token"`
	WhatsAppVerifyToken string `yaml:"whatsapp_verify_token" json:"whatsapp_verify_token"`
	WhatsAppAccessToken string `yaml:"whatsapp_access_token" json:"whatsapp_access_token"`
	WhatsAppPhoneID     string `yaml:"whatsapp_phone_id" json:"whatsapp_phone_id"`
}

// RateLimitConfig tunes the per-IP token bucket, with a stricter bucket for voice
type RateLimitConfig struct {
	RequestsPerSecond      float64 `yaml:"requests_per_second" json:"requests_per_second" default:"5"`
	Burst                  int     `yaml:"burst" json:"burst" default:"10"`
	VoiceRequestsPerSecond float64 `yaml:"voice_requests_per_second" json:"voice_requests_per_second" default:"0.5"`
	VoiceBurst             int     `yaml:"voice_burst" json:"voice_burst" default:"2"`
}

// LoadConfig loads the YAML config file, substituting ${ENV_VAR} references
// from the raw bytes before handing the result to viper.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.kasioon")
	viper.AddConfigPath("/etc/kasioon/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	configFileContent, err := os.ReadFile(viper.ConfigFileUsed())
	if err != nil {
		return nil, fmt.Errorf("error reading config file content: %w", err)
	}

	re := regexp.MustCompile(`\${([^}]+)}`)
	result := re.ReplaceAllStringFunc(string(configFileContent), func(match string) string {
		envVar := match[2 : len(match)-1]
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})

	if err := viper.ReadConfig(strings.NewReader(result)); err != nil {
		return nil, fmt.Errorf("error applying env substitution to config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	fmt.Printf("Using configuration file: %s\n", viper.ConfigFileUsed())
	return &cfg, nil
}
