// Package config loads and validates zoocards configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ZOOCARDS_SITE_BASE_URL.
const EnvPrefix = "ZOOCARDS"

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Output  OutputConfig  `mapstructure:"output"`
	DB      DBConfig      `mapstructure:"db"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SiteConfig locates the paginated animal listing.
type SiteConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	ListingPath string `mapstructure:"listing_path"`
	PageParam   string `mapstructure:"page_param"`
	StartPage   int    `mapstructure:"start_page"`
	// MaxPages caps pagination; 0 means until the first empty page.
	MaxPages int `mapstructure:"max_pages"`
}

// HTTPConfig configures the page fetcher.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
}

// ScraperConfig governs the scrape loop.
type ScraperConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// OutputConfig names the files written by scrape and convert.
type OutputConfig struct {
	RecordsCSV      string `mapstructure:"records_csv"`
	FlashcardsTxt   string `mapstructure:"flashcards_txt"`
	FlashcardFormat string `mapstructure:"flashcard_format"`
	SkipSentinels   bool   `mapstructure:"skip_sentinels"`
}

// DBConfig controls the optional Postgres record sink. An empty DSN disables it.
type DBConfig struct {
	DSN                    string `mapstructure:"dsn"`
	Table                  string `mapstructure:"table"`
	MaxConns               int32  `mapstructure:"max_conns"`
	MinConns               int32  `mapstructure:"min_conns"`
	MaxConnLifetimeMinutes int    `mapstructure:"max_conn_lifetime_minutes"`
}

// MetricsConfig sets where Prometheus metrics are dumped after a run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith builds a Config using v, which may already carry bound flags.
func LoadWith(v *viper.Viper, path string) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://www.londonzoo.org")
	v.SetDefault("site.listing_path", "/whats-here/animals")
	v.SetDefault("site.page_param", "page")
	v.SetDefault("site.start_page", 1)
	v.SetDefault("site.max_pages", 0)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.user_agent", "zoocards/0.1")
	v.SetDefault("http.respect_robots", true)
	v.SetDefault("scraper.delay", time.Second)
	v.SetDefault("output.records_csv", "london_zoo_animals.csv")
	v.SetDefault("output.flashcards_txt", "quizlet_format.txt")
	v.SetDefault("output.flashcard_format", "quizlet")
	v.SetDefault("output.skip_sentinels", true)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table", "animals")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("db.max_conn_lifetime_minutes", 30)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site.base_url must be an absolute URL, got %q", c.Site.BaseURL)
	}
	if c.Site.PageParam == "" {
		return fmt.Errorf("site.page_param must be set")
	}
	if c.Site.StartPage < 1 {
		return fmt.Errorf("site.start_page must be >= 1")
	}
	if c.Site.MaxPages < 0 {
		return fmt.Errorf("site.max_pages must be >= 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Scraper.Delay < 0 {
		return fmt.Errorf("scraper.delay must be >= 0")
	}
	if c.Output.RecordsCSV == "" {
		return fmt.Errorf("output.records_csv must be set")
	}
	if c.Output.FlashcardsTxt == "" {
		return fmt.Errorf("output.flashcards_txt must be set")
	}
	switch c.Output.FlashcardFormat {
	case "quizlet", "labelled":
	default:
		return fmt.Errorf("output.flashcard_format must be quizlet or labelled, got %q", c.Output.FlashcardFormat)
	}
	if c.DB.DSN != "" && c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("db.min_conns must not exceed db.max_conns")
	}
	return nil
}

// Timeout converts the HTTP timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// MaxConnLifetime converts the DB connection lifetime into a duration.
func (c Config) MaxConnLifetime() time.Duration {
	return time.Duration(c.DB.MaxConnLifetimeMinutes) * time.Minute
}
