package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (ENVSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("dsn", os.Getenv("ENVSHIP_DSN"), &cfg.DSN)
	s.setString("tunnel", os.Getenv("ENVSHIP_TUNNEL"), &cfg.Tunnel)
	s.setString("category", os.Getenv("ENVSHIP_CATEGORY"), &cfg.Category)
	s.setString("http-proxy", os.Getenv("ENVSHIP_HTTP_PROXY"), &cfg.HTTPProxy)
	s.setString("https-proxy", os.Getenv("ENVSHIP_HTTPS_PROXY"), &cfg.HTTPSProxy)
	s.setString("no-proxy", os.Getenv("ENVSHIP_NO_PROXY"), &cfg.NoProxy)
	s.setString("ca-certs", os.Getenv("ENVSHIP_CA_CERTS"), &cfg.CACertsPath)
	s.setString("redis-addr", os.Getenv("ENVSHIP_REDIS_ADDR"), &cfg.RedisAddr)
	s.setString("redis-password", os.Getenv("ENVSHIP_REDIS_PASSWORD"), &cfg.RedisPassword)
	s.setString("redis-prefix", os.Getenv("ENVSHIP_REDIS_PREFIX"), &cfg.RedisPrefix)
	s.setString("log-level", os.Getenv("ENVSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("drain-timeout", os.Getenv("ENVSHIP_DRAIN_TIMEOUT"), &cfg.DrainTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("ENVSHIP_HTTP_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}

	if err := s.setFloatFromString("rps", os.Getenv("ENVSHIP_RPS"), &cfg.RequestsPerSecond); err != nil {
		return err
	}

	if err := s.setIntFromString("buffer-size", os.Getenv("ENVSHIP_BUFFER_SIZE"), &cfg.BufferSize); err != nil {
		return err
	}
	if err := s.setIntFromString("burst", os.Getenv("ENVSHIP_BURST"), &cfg.Burst); err != nil {
		return err
	}
	if err := s.setIntFromString("redis-db", os.Getenv("ENVSHIP_REDIS_DB"), &cfg.RedisDB); err != nil {
		return err
	}

	s.setBoolFromString("compress", os.Getenv("ENVSHIP_COMPRESS"), &cfg.Compress)
	s.setBoolFromString("watch-ca", os.Getenv("ENVSHIP_WATCH_CA"), &cfg.WatchCA)

	return nil
}
