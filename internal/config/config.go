// Package config loads the bot's configuration from a file with
// TRANSLIEN_ environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// RedditConfig carries the bot account's credentials.
type RedditConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	UserAgent    string `mapstructure:"user_agent"`
}

// Config is the full runtime configuration.
type Config struct {
	Reddit          RedditConfig `mapstructure:"reddit"`
	Subreddit       string       `mapstructure:"subreddit"`
	AuthorizedUsers []string     `mapstructure:"authorized_users"`

	// Languages is the working pair; a page detected as one gets a link
	// targeting the other.
	Languages []string `mapstructure:"languages"`

	WhitelistPath        string `mapstructure:"whitelist_path"`
	JournalPath          string `mapstructure:"journal_path"`
	InboxCachePath       string `mapstructure:"inbox_cache_path"`
	SubmissionsCachePath string `mapstructure:"submissions_cache_path"`
	CacheSize            int    `mapstructure:"cache_size"`

	LingvaInstance string        `mapstructure:"lingva_instance"`
	MetricsAddr    string        `mapstructure:"metrics_addr"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	LogLevel       string        `mapstructure:"log_level"`
}

// LangA returns the first working language code.
func (c *Config) LangA() string { return c.Languages[0] }

// LangB returns the second working language code.
func (c *Config) LangB() string { return c.Languages[1] }

func setDefaults(v *viper.Viper) {
	v.SetDefault("languages", []string{"en", "fr"})
	v.SetDefault("whitelist_path", "whitelist.json")
	v.SetDefault("journal_path", "replies.db")
	v.SetDefault("inbox_cache_path", "inbox.cache")
	v.SetDefault("submissions_cache_path", "submissions.cache")
	v.SetDefault("cache_size", 100)
	v.SetDefault("metrics_addr", ":9102")
	v.SetDefault("poll_interval", 30*time.Second)
	v.SetDefault("log_level", "info")
}

// Load reads the configuration file at path (JSON or YAML, by extension)
// and applies environment overrides. An empty path skips the file and
// relies on the environment alone.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TRANSLIEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Reddit.Username == "" {
		return fmt.Errorf("reddit.username is required")
	}
	if c.Subreddit == "" {
		return fmt.Errorf("subreddit is required")
	}
	if len(c.Languages) != 2 {
		return fmt.Errorf("exactly two working languages are required, got %d", len(c.Languages))
	}

	for i, l := range c.Languages {
		tag, err := language.Parse(l)
		if err != nil {
			return fmt.Errorf("invalid language %q: %w", l, err)
		}
		base, _ := tag.Base()
		c.Languages[i] = base.String()
	}
	if c.Languages[0] == c.Languages[1] {
		return fmt.Errorf("the two working languages must differ")
	}
	return nil
}
