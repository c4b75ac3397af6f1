package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"videosync/internal/domain"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	Import   ImportConfig   `yaml:"import"`
	Cache    CacheConfig    `yaml:"cache"`
	LogLevel string         `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type YouTubeConfig struct {
	APIKey      string        `yaml:"api_key"`
	ChannelID   string        `yaml:"channel_id"`
	APIBaseURL  string        `yaml:"api_base_url"`
	CaptionsURL string        `yaml:"captions_url"`
	Timeout     time.Duration `yaml:"timeout"`
	Referer     string        `yaml:"referer"`
}

type ImportConfig struct {
	Status       string `yaml:"status"`
	CategoryID   int64  `yaml:"category_id"`
	SlugPrefix   string `yaml:"slug_prefix"`
	TitleWordCap int    `yaml:"title_word_cap"`
	SlugTokenCap int    `yaml:"slug_token_cap"`
	SlugCharCap  int    `yaml:"slug_char_cap"`
	MaxPages     int    `yaml:"max_pages"`
	PageSize     int    `yaml:"page_size"`
	SkipExisting bool   `yaml:"skip_existing"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend"` // "memory" or "redis"
	RedisURL      string        `yaml:"redis_url"`
	PlaylistTTL   time.Duration `yaml:"playlist_ttl"`
	ItemsTTL      time.Duration `yaml:"items_ttl"`
	EnrichmentTTL time.Duration `yaml:"enrichment_ttl"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if !domain.ValidStatus(cfg.Import.Status) {
		return nil, fmt.Errorf("invalid import status %q", cfg.Import.Status)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.YouTube.APIBaseURL == "" {
		c.YouTube.APIBaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if c.YouTube.CaptionsURL == "" {
		c.YouTube.CaptionsURL = "https://www.youtube.com/api/timedtext"
	}
	if c.YouTube.Timeout == 0 {
		c.YouTube.Timeout = 15 * time.Second
	}
	if c.Import.Status == "" {
		c.Import.Status = domain.StatusDraft
	}
	if c.Import.TitleWordCap == 0 {
		c.Import.TitleWordCap = 5
	}
	if c.Import.SlugTokenCap == 0 {
		c.Import.SlugTokenCap = 5
	}
	if c.Import.SlugCharCap == 0 {
		c.Import.SlugCharCap = 60
	}
	if c.Import.MaxPages == 0 {
		c.Import.MaxPages = 3
	}
	if c.Import.PageSize == 0 {
		c.Import.PageSize = 50
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.PlaylistTTL == 0 {
		c.Cache.PlaylistTTL = time.Hour
	}
	if c.Cache.ItemsTTL == 0 {
		c.Cache.ItemsTTL = 10 * time.Minute
	}
	if c.Cache.EnrichmentTTL == 0 {
		c.Cache.EnrichmentTTL = 6 * time.Hour
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "videosync"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "content"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "cms_content"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
