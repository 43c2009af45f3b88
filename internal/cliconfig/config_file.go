package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	DSN               string            `toml:"dsn"`
	Tunnel            string            `toml:"tunnel"`
	Category          string            `toml:"category"`
	BufferSize        int               `toml:"buffer_size"`
	DrainTimeout      string            `toml:"drain_timeout"`
	HTTPTimeout       string            `toml:"http_timeout"`
	HTTPProxy         string            `toml:"http_proxy"`
	HTTPSProxy        string            `toml:"https_proxy"`
	NoProxy           string            `toml:"no_proxy"`
	CACertsPath       string            `toml:"ca_certs"`
	WatchCA           *bool             `toml:"watch_ca"`
	Compress          *bool             `toml:"compress"`
	RequestsPerSecond float64           `toml:"rps"`
	Burst             int               `toml:"burst"`
	Headers           map[string]string `toml:"headers"`
	LogLevel          string            `toml:"log_level"`

	Redis RedisFileConfig `toml:"redis"`
}

// RedisFileConfig is the [redis] table.
type RedisFileConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.envship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".envship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("dsn", fc.DSN, &cfg.DSN)
	s.setString("tunnel", fc.Tunnel, &cfg.Tunnel)
	s.setString("category", fc.Category, &cfg.Category)
	s.setString("http-proxy", fc.HTTPProxy, &cfg.HTTPProxy)
	s.setString("https-proxy", fc.HTTPSProxy, &cfg.HTTPSProxy)
	s.setString("no-proxy", fc.NoProxy, &cfg.NoProxy)
	s.setString("ca-certs", fc.CACertsPath, &cfg.CACertsPath)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("redis-addr", fc.Redis.Addr, &cfg.RedisAddr)
	s.setString("redis-password", fc.Redis.Password, &cfg.RedisPassword)
	s.setString("redis-prefix", fc.Redis.Prefix, &cfg.RedisPrefix)

	if err := s.setDuration("drain-timeout", fc.DrainTimeout, &cfg.DrainTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.Timeout); err != nil {
		return err
	}

	s.setFloat("rps", fc.RequestsPerSecond, &cfg.RequestsPerSecond)

	s.setInt("buffer-size", fc.BufferSize, &cfg.BufferSize)
	s.setInt("burst", fc.Burst, &cfg.Burst)
	s.setInt("redis-db", fc.Redis.DB, &cfg.RedisDB)

	s.setBool("watch-ca", fc.WatchCA, &cfg.WatchCA)
	s.setBool("compress", fc.Compress, &cfg.Compress)

	if len(fc.Headers) > 0 && !changed["header"] {
		cfg.Headers = make(map[string]string, len(fc.Headers))
		for k, v := range fc.Headers {
			cfg.Headers[k] = v
		}
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
