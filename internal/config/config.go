package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	BlogURL        string `mapstructure:"blog_url"`
	SourcesFile    string `mapstructure:"sources_file"`
	SourceIDs      string `mapstructure:"source_ids"`
	PublishersFile string `mapstructure:"publishers_file"`
	UserAgent      string `mapstructure:"user_agent"`
	ThrottleMode   string `mapstructure:"throttle_mode"`

	BatchSize            int           `mapstructure:"batch_size"`
	ArticleDelayMs       int64         `mapstructure:"article_delay_ms"`
	FetchTimeoutMs       int64         `mapstructure:"fetch_timeout_ms"`
	CrawlIntervalSeconds int64         `mapstructure:"crawl_interval"`
	ArticleDelay         time.Duration `mapstructure:"-"`
	FetchTimeout         time.Duration `mapstructure:"-"`
	CrawlInterval        time.Duration `mapstructure:"-"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`
	DatabaseURL string `mapstructure:"database_url"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "samvad-blog-archiver")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("blog_url", "https://beyondchats.com/blogs/")
	v.SetDefault("sources_file", "")
	v.SetDefault("source_ids", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("throttle_mode", "delay")
	v.SetDefault("batch_size", 5)
	v.SetDefault("article_delay_ms", 1000)
	v.SetDefault("fetch_timeout_ms", 30000)
	v.SetDefault("crawl_interval", 3600) // seconds
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/articles.db")
	v.SetDefault("database_url", "./data/articles.sqlite")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.BlogURL = strings.TrimSpace(cfg.BlogURL)
	cfg.ThrottleMode = strings.ToLower(strings.TrimSpace(cfg.ThrottleMode))

	if strings.TrimSpace(cfg.SourcesFile) == "" {
		if err := validateBlogURL(cfg.BlogURL); err != nil {
			return nil, err
		}
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("invalid batch_size (must be positive)")
	}
	if cfg.ArticleDelayMs < 0 {
		return nil, fmt.Errorf("invalid article_delay_ms (must not be negative)")
	}
	if cfg.FetchTimeoutMs <= 0 {
		return nil, fmt.Errorf("invalid fetch_timeout_ms (must be positive milliseconds)")
	}
	if cfg.CrawlIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid crawl_interval (must be positive seconds)")
	}
	switch cfg.ThrottleMode {
	case "delay", "rate":
	default:
		return nil, fmt.Errorf("invalid throttle_mode %q (expected delay or rate)", cfg.ThrottleMode)
	}

	cfg.ArticleDelay = time.Duration(cfg.ArticleDelayMs) * time.Millisecond
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutMs) * time.Millisecond
	cfg.CrawlInterval = time.Duration(cfg.CrawlIntervalSeconds) * time.Second

	return &cfg, nil
}

func validateBlogURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("blog_url is required when no sources_file is configured")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse blog_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("blog_url must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}
