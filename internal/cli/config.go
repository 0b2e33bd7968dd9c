package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cache backends selectable with cache.backend.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

const defaultListen = ":8080"

// Settings holds the user configuration shared by all commands.
type Settings struct {
	Cache  CacheSettings
	Redis  RedisSettings
	Server ServerSettings
}

// CacheSettings selects and tunes the step and render cache.
type CacheSettings struct {
	Backend string
	Dir     string

	// TTL overrides the lifetime of new entries. Zero keeps the defaults.
	TTL time.Duration
}

// RedisSettings configures the redis backend.
type RedisSettings struct {
	Addr     string
	DB       int
	Password string
}

// ServerSettings configures the serve command.
type ServerSettings struct {
	Listen  string
	DataDir string `mapstructure:"data_dir"`
}

func defaultSettings() Settings {
	return Settings{
		Cache:  CacheSettings{Backend: backendFile},
		Redis:  RedisSettings{Addr: "localhost:6379"},
		Server: ServerSettings{Listen: defaultListen},
	}
}

// LoadSettings reads configuration from path, or from config.toml in the
// config directory when path is empty, then applies RELIEF_ environment
// overrides (RELIEF_CACHE_BACKEND, RELIEF_REDIS_ADDR, ...). A missing
// default config file is not an error.
func LoadSettings(path string) (Settings, error) {
	v := viper.New()

	def := defaultSettings()
	v.SetDefault("cache.backend", def.Cache.Backend)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", time.Duration(0))
	v.SetDefault("redis.addr", def.Redis.Addr)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("server.listen", def.Server.Listen)
	v.SetDefault("server.data_dir", "")

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("RELIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	switch s.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (want file, redis or none)", s.Cache.Backend)
	}
	if s.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl: must not be negative")
	}
	if s.Cache.Backend == backendRedis && s.Redis.Addr == "" {
		return fmt.Errorf("redis.addr: required for the redis backend")
	}
	return nil
}

// cacheDir returns cache.dir, or the XDG cache directory when unset.
func (s Settings) cacheDir() (string, error) {
	if s.Cache.Dir != "" {
		return expandHome(s.Cache.Dir), nil
	}
	return cacheDir()
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
