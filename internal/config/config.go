package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Guyuepp/Go-Like-Toggle/domain"
)

const (
	ModeFile    = "file"
	ModeBrowser = "browser"

	defaultTimeout   = 30
	defaultQueueSize = 1024
	defaultCacheDB   = 0
	defaultLockTTL   = 35
	defaultSelector  = ".like-button"
	defaultIDAttr    = "data-message-id"
	defaultLogLevel  = "info"
)

// Config is everything the CLI needs, read from the environment
type Config struct {
	BaseURL       string `validate:"required,url"`
	Path          string `validate:"required,startswith=/,contains={id}"`
	Selector      string `validate:"required"`
	IDAttribute   string `validate:"required"`
	LikedClass    string `validate:"required"`
	UnlikedClass  string `validate:"required,nefield=LikedClass"`
	SessionCookie string
	Timeout       time.Duration `validate:"gt=0"`
	QueueSize     int           `validate:"gt=0"`

	Mode     string `validate:"oneof=file browser"`
	PageFile string `validate:"required_if=Mode file"`
	PageURL  string `validate:"required_if=Mode browser"`
	Output   string
	Headless bool

	Cache   CacheConfig
	LockTTL time.Duration `validate:"gtfield=Timeout"` // the lock must outlive the request it guards

	LogLevel string `validate:"oneof=trace debug info warn warning error fatal panic"`
}

// CacheConfig enables the redis in-flight lock when Host is set
type CacheConfig struct {
	Host string
	Port string `validate:"required_with=Host"`
	Pass string
	DB   int `validate:"gte=0"`
}

// Enabled reports whether a redis server is configured
func (c CacheConfig) Enabled() bool {
	return c.Host != ""
}

// Addr is host:port
func (c CacheConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Classes returns the configured class pair
func (c *Config) Classes() domain.ClassPair {
	return domain.ClassPair{
		Liked:   c.LikedClass,
		Unliked: c.UnlikedClass,
	}
}

// Load reads .env files (missing files are fine) and the environment
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LIKE_PATH", domain.DefaultTogglePath)
	v.SetDefault("LIKE_SELECTOR", defaultSelector)
	v.SetDefault("LIKE_ID_ATTR", defaultIDAttr)
	v.SetDefault("LIKE_CLASS_LIKED", domain.DefaultLikedClass)
	v.SetDefault("LIKE_CLASS_UNLIKED", domain.DefaultUnlikedClass)
	v.SetDefault("CONTEXT_TIMEOUT", defaultTimeout)
	v.SetDefault("CLICK_QUEUE_SIZE", defaultQueueSize)
	v.SetDefault("PAGE_MODE", ModeFile)
	v.SetDefault("BROWSER_HEADLESS", true)
	v.SetDefault("CACHE_DB", defaultCacheDB)
	v.SetDefault("LOCK_TTL", defaultLockTTL)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	return v
}

// FromViper builds and validates a Config from v
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		BaseURL:       v.GetString("LIKE_BASE_URL"),
		Path:          v.GetString("LIKE_PATH"),
		Selector:      v.GetString("LIKE_SELECTOR"),
		IDAttribute:   v.GetString("LIKE_ID_ATTR"),
		LikedClass:    v.GetString("LIKE_CLASS_LIKED"),
		UnlikedClass:  v.GetString("LIKE_CLASS_UNLIKED"),
		SessionCookie: v.GetString("LIKE_SESSION_COOKIE"),
		Timeout:       time.Duration(v.GetInt("CONTEXT_TIMEOUT")) * time.Second,
		QueueSize:     v.GetInt("CLICK_QUEUE_SIZE"),
		Mode:          v.GetString("PAGE_MODE"),
		PageFile:      v.GetString("PAGE_FILE"),
		PageURL:       v.GetString("PAGE_URL"),
		Output:        v.GetString("OUTPUT_FILE"),
		Headless:      v.GetBool("BROWSER_HEADLESS"),
		Cache: CacheConfig{
			Host: v.GetString("CACHE_HOST"),
			Port: v.GetString("CACHE_PORT"),
			Pass: v.GetString("CACHE_PASS"),
			DB:   v.GetInt("CACHE_DB"),
		},
		LockTTL:  time.Duration(v.GetInt("LOCK_TTL")) * time.Second,
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
