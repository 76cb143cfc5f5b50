package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/spf13/viper"
)

type Config struct {
	Bot       botConfig       `toml:"bot" mapstructure:"bot"`
	Telegram  telegramConfig  `toml:"telegram" mapstructure:"telegram"`
	DB        dbConfig        `toml:"db" mapstructure:"db"`
	Log       logConfig       `toml:"log" mapstructure:"log"`
	RateLimit rateLimitConfig `toml:"ratelimit" mapstructure:"ratelimit"`
	Cache     cacheConfig     `toml:"cache" mapstructure:"cache"`
}

type botConfig struct {
	// Tag is the branding caption appended to delivered media.
	Tag           string  `toml:"tag" mapstructure:"tag"`
	Admins        []int64 `toml:"admins" mapstructure:"admins"`
	AdminUsername string  `toml:"admin_username" mapstructure:"admin_username"`
	Lang          string  `toml:"lang" mapstructure:"lang"`
}

type dbConfig struct {
	Path    string `toml:"path" mapstructure:"path"`
	Session string `toml:"session" mapstructure:"session"`
}

type logConfig struct {
	Level string `toml:"level" mapstructure:"level"`
	File  string `toml:"file" mapstructure:"file"`
}

type rateLimitConfig struct {
	Requests         int `toml:"requests" mapstructure:"requests"`
	WindowSec        int `toml:"window_sec" mapstructure:"window_sec"`
	StoryCooldownSec int `toml:"story_cooldown_sec" mapstructure:"story_cooldown_sec"`
}

type cacheConfig struct {
	NumCounters int64 `toml:"num_counters" mapstructure:"num_counters"`
	MaxCost     int64 `toml:"max_cost" mapstructure:"max_cost"`
	TTL         int64 `toml:"ttl" mapstructure:"ttl"`
}

func (r rateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSec) * time.Second
}

func (r rateLimitConfig) StoryCooldown() time.Duration {
	return time.Duration(r.StoryCooldownSec) * time.Second
}

var cfg *Config

// C returns the loaded configuration. Init must have been called first.
func C() *Config {
	return cfg
}

func (c *Config) IsAdmin(userID int64) bool {
	return slice.Contain(c.Bot.Admins, userID)
}

func Init() error {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/instgbot/")
	viper.SetConfigType("toml")
	viper.SetEnvPrefix("INSTGBOT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("bot.tag", "@instg_save_bot")
	viper.SetDefault("bot.lang", "ru")

	viper.SetDefault("telegram.timeout", 60)
	viper.SetDefault("telegram.flood_retry", 5)
	viper.SetDefault("telegram.rpc_retry", 5)

	viper.SetDefault("db.path", "data/instgbot.db")
	viper.SetDefault("db.session", "data/session.db")

	viper.SetDefault("log.level", "info")

	viper.SetDefault("ratelimit.requests", 5)
	viper.SetDefault("ratelimit.window_sec", 60)
	viper.SetDefault("ratelimit.story_cooldown_sec", 180)

	viper.SetDefault("cache.num_counters", 1e4)
	viper.SetDefault("cache.max_cost", 1<<28)
	viper.SetDefault("cache.ttl", 1800)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if cfg.Telegram.AppID == 0 || cfg.Telegram.AppHash == "" {
		return fmt.Errorf("telegram.app_id and telegram.app_hash are required")
	}
	return nil
}

func Set(key string, value any) {
	viper.Set(key, value)
}
