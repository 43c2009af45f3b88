package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bft-labs/envship/internal/cliconfig"
	"github.com/bft-labs/envship/pkg/delivery"
	"github.com/bft-labs/envship/pkg/envship"
	"github.com/bft-labs/envship/pkg/log"
	"github.com/bft-labs/envship/pkg/outcome"
	"github.com/bft-labs/envship/plugins/cawatcher"
)

// payload is one envelope read from a file or stdin.
type payload struct {
	source string
	body   []byte
}

func newSendCommand(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "send [file...]",
		Short: "Deliver envelopes read from files, or stdin when none or '-' is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := setupLogger(cfg.LogLevel)
			logger.Info().Interface("config", cfg.Masked()).Msg("configuration")

			payloads, err := readPayloads(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runSend(ctx, *cfg, logger, payloads)
		},
	}
}

func readPayloads(args []string, stdin io.Reader) ([]payload, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	out := make([]payload, 0, len(args))
	for _, name := range args {
		var (
			b   []byte
			err error
		)
		if name == "-" {
			b, err = io.ReadAll(stdin)
			name = "stdin"
		} else {
			b, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("read %s: empty payload", name)
		}
		out = append(out, payload{source: name, body: b})
	}
	return out, nil
}

func runSend(ctx context.Context, cfg cliconfig.Config, logger zerolog.Logger, payloads []payload) error {
	counts := outcome.NewMemoryRecorder()
	recorder := outcome.Recorder(counts)

	if cfg.RedisAddr != "" {
		rdb, err := newRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		recorder = outcome.Tee(counts, outcome.NewRedisRecorder(rdb, outcome.WithRedisPrefix(cfg.RedisPrefix)))
	}

	opts := []envship.Option{
		envship.WithLogger(log.NewZerologAdapterWithLogger(logger)),
		envship.WithRecorder(recorder),
	}
	if cfg.WatchCA {
		opts = append(opts, cawatcher.WithCAWatcher(cawatcher.Config{
			OnReload: func(err error) {
				if err != nil {
					logger.Warn().Err(err).Msg("CA bundle reload failed")
				}
			},
		}))
	}

	client, err := envship.New(cfg.ClientConfig(), opts...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	category := delivery.Category(cfg.Category)
	pendings := make([]*delivery.Pending, len(payloads))
	for i, p := range payloads {
		pendings[i] = client.Send(ctx, category, p.body)
	}

	var failed int
	for i, p := range pendings {
		res, err := p.Wait(ctx)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			logger.Info().Msg("received signal, stopping...")
			break
		}
		if err != nil {
			failed++
			logger.Error().Err(err).
				Str("source", payloads[i].source).
				Str("status", res.Status.String()).
				Int("code", res.Code).
				Msg("delivery failed")
			continue
		}
		logger.Debug().Str("source", payloads[i].source).Int("code", res.Code).Msg("delivered")
	}

	drained := client.Close(cfg.DrainTimeout)

	for _, o := range counts.Snapshot() {
		logger.Warn().
			Str("category", o.Category.String()).
			Str("reason", string(o.Reason)).
			Int64("quantity", o.Quantity).
			Msg("discarded")
	}
	logger.Info().
		Int("sent", len(payloads)-failed).
		Int("failed", failed).
		Bool("drained", drained).
		Msg("done")

	if failed > 0 {
		return fmt.Errorf("%d of %d deliveries failed", failed, len(payloads))
	}
	if !drained {
		return errors.New("drain timeout exceeded")
	}
	return nil
}

func newRedisClient(ctx context.Context, cfg cliconfig.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}
