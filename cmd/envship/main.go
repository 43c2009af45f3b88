package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/envship/internal/cliconfig"
)

const helpDescription = `
Deliver telemetry envelopes to a Sentry-compatible collector.

Highlights:
  - Honors the collector's rate limits per category and drops locally while limited.
  - Bounds in-flight deliveries and fails fast instead of queueing unboundedly.
  - Proxy, custom CA bundle and request pacing, configured via file, env, or flags.
  - Optional Redis counters so several senders share one view of dropped payloads.
`

var exampleUsage = strings.TrimSpace(`
  envship send --dsn https://<key>@o1.ingest.example.com/42 event.json
  cat envelope | envship send --category transaction -
  envship outcomes --redis-addr localhost:6379
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// loadConfig resolves the configuration: file, then ENVSHIP_* env, then flags.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	return cliconfig.ApplyEnvConfig(cfg, changed)
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.NewLogger(os.Stderr, cfg.LogLevel)

	root := &cobra.Command{
		Use:           "envship",
		Short:         "Deliver telemetry envelopes to a Sentry-compatible collector",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.envship/config.toml)")
	flags.StringVar(&cfg.DSN, "dsn", cfg.DSN, "project DSN, e.g. https://<key>@host/<project>")
	flags.StringVar(&cfg.Tunnel, "tunnel", cfg.Tunnel, "send every envelope to this URL instead of the DSN endpoint")
	flags.StringVar(&cfg.Category, "category", cfg.Category, "payload category (error, transaction, session, attachment)")

	flags.IntVar(&cfg.BufferSize, "buffer-size", cfg.BufferSize, "maximum in-flight deliveries")
	flags.DurationVar(&cfg.DrainTimeout, "drain-timeout", cfg.DrainTimeout, "how long to wait for in-flight deliveries on exit")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP timeout")

	flags.StringVar(&cfg.HTTPProxy, "http-proxy", cfg.HTTPProxy, "proxy for http destinations (default: $http_proxy)")
	flags.StringVar(&cfg.HTTPSProxy, "https-proxy", cfg.HTTPSProxy, "proxy for https destinations (default: $https_proxy)")
	flags.StringVar(&cfg.NoProxy, "no-proxy", cfg.NoProxy, "comma-separated hosts that bypass the proxy")
	flags.StringVar(&cfg.CACertsPath, "ca-certs", cfg.CACertsPath, "PEM bundle replacing the system roots")
	flags.BoolVar(&cfg.WatchCA, "watch-ca", cfg.WatchCA, "reload the CA bundle when the file changes")

	flags.BoolVar(&cfg.Compress, "compress", cfg.Compress, "gzip request bodies of 1KiB or more")
	flags.Float64Var(&cfg.RequestsPerSecond, "rps", cfg.RequestsPerSecond, "maximum requests per second (0 disables pacing)")
	flags.IntVar(&cfg.Burst, "burst", cfg.Burst, "request burst when pacing")
	flags.StringToStringVar(&cfg.Headers, "header", cfg.Headers, "extra request header as key=value (repeatable)")

	flags.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for shared outcome counters")
	flags.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password")
	flags.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database")
	flags.StringVar(&cfg.RedisPrefix, "redis-prefix", cfg.RedisPrefix, "key prefix for outcome counters")
	if err := flags.MarkHidden("redis-password"); err != nil {
		log.Info().Err(err).Msg("failed to hide redis-password flag")
	}

	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		newSendCommand(&cfg, &cfgPath),
		newOutcomesCommand(&cfg, &cfgPath),
	)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("envship")
		os.Exit(1)
	}
}

// setupLogger builds the process logger once the level is known.
func setupLogger(level string) zerolog.Logger {
	return cliconfig.NewLogger(os.Stderr, level)
}
